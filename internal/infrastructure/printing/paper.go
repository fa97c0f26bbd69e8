package printing

// PaperSize names the paper a document is printed on
type PaperSize string

const (
	PaperSizeA4        PaperSize = "A4"
	PaperSizeReceipt80 PaperSize = "RECEIPT_80MM"
	PaperSizeReceipt58 PaperSize = "RECEIPT_58MM"
)

// IsValid reports whether the paper size is known
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeReceipt80, PaperSizeReceipt58:
		return true
	}
	return false
}

// IsReceipt reports whether the paper is a continuous thermal roll
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt80 || p == PaperSizeReceipt58
}

// Dimensions returns width and height in millimeters. Receipt rolls report
// the height of a typical receipt; the renderer prints them as one long page.
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeReceipt80:
		return 80, 297
	case PaperSizeReceipt58:
		return 58, 297
	default:
		return 210, 297
	}
}

// Orientation is portrait or landscape
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns the margins used for A4 reports
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 10, Bottom: 12, Left: 10}
}

// ReceiptMargins returns the narrow margins of thermal receipts
func ReceiptMargins() Margins {
	return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
}
