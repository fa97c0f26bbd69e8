// Package printing turns POS documents into PDF files: the 80mm sale receipt
// and the sales report export. Documents are rendered from embedded HTML
// templates and printed by headless Chrome through chromedp.
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: 30 * time.Second})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	printer := NewDocumentPrinter(NewTemplateEngine(), renderer, "Corner Store")
//	pdf, err := printer.PrintReceipt(ctx, receipt)
package printing
