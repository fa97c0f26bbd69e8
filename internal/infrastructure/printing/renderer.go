package printing

import (
	"context"
	"errors"
	"time"
)

// RenderErrorCode classifies a failed render
type RenderErrorCode string

const (
	ErrCodeRenderTimeout    RenderErrorCode = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     RenderErrorCode = "RENDER_FAILED"
	ErrCodeInvalidHTML      RenderErrorCode = "INVALID_HTML"
	ErrCodeInvalidPaperSize RenderErrorCode = "INVALID_PAPER_SIZE"
	ErrCodeTemplateNotFound RenderErrorCode = "TEMPLATE_NOT_FOUND"
)

// RenderRequest is one HTML document to turn into a PDF. Receipts use
// PaperSizeReceipt80 and come out as a single long page.
type RenderRequest struct {
	HTML        string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins // millimeters
	Title       string  // PDF metadata title
	FooterHTML  string  // repeated on every page; needs a bottom margin
	Timeout     time.Duration
}

// RenderResult is the produced PDF
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError reports why a receipt or report could not be rendered
type RenderError struct {
	Code    RenderErrorCode
	Message string
	Cause   error
}

// NewRenderError creates a RenderError
func NewRenderError(code RenderErrorCode, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// IsRenderTimeout reports whether err is a render that ran out of time
func IsRenderTimeout(err error) bool {
	var renderErr *RenderError
	return errors.As(err, &renderErr) && renderErr.Code == ErrCodeRenderTimeout
}
