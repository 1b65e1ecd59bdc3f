package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// MaxDocumentBytes is the largest accepted upload.
const MaxDocumentBytes = 5 << 20

// Engine names accepted by NewExtractor
const (
	EngineFitz = "fitz"
	EnginePure = "pure"
)

var (
	// ErrScannedOrEmpty means the document has no extractable text, typically a scanned image.
	ErrScannedOrEmpty = errors.New("document has no extractable text (scanned or empty)")
	// ErrNotPDF means the upload is not a PDF document.
	ErrNotPDF = errors.New("only PDF documents are supported")
	// ErrTooLarge means the upload exceeds MaxDocumentBytes.
	ErrTooLarge = fmt.Errorf("document exceeds %d MB limit", MaxDocumentBytes>>20)
)

// ExtractionError wraps a failure of the underlying PDF engine.
type ExtractionError struct {
	Engine string
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to parse PDF (%s): %v", e.Engine, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Extractor pulls raw text out of a document.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// NewExtractor returns the extractor for an engine name. An empty name selects MuPDF.
func NewExtractor(engine string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineFitz, "mupdf":
		return FitzExtractor{}, nil
	case EnginePure, "go":
		return PDFExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q (use %s or %s)", engine, EngineFitz, EnginePure)
	}
}

// FitzExtractor extracts text page by page with MuPDF.
type FitzExtractor struct{}

// Extract implements Extractor.
func (FitzExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", &ExtractionError{Engine: EngineFitz, Cause: err}
	}
	defer func() { _ = doc.Close() }()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", &ExtractionError{Engine: EngineFitz, Cause: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// PDFExtractor extracts text with the pure-Go ledongthuc/pdf reader.
type PDFExtractor struct{}

// Extract implements Extractor.
func (PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Engine: EnginePure, Cause: err}
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", &ExtractionError{Engine: EnginePure, Cause: err}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", &ExtractionError{Engine: EnginePure, Cause: err}
	}
	return buf.String(), nil
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\r\n "), []byte("%PDF-"))
}

// ExtractText validates an upload, extracts its text with ex and cleans it.
// Documents with no text after cleaning yield ErrScannedOrEmpty.
func ExtractText(ctx context.Context, ex Extractor, data []byte) (string, error) {
	if len(data) > MaxDocumentBytes {
		return "", ErrTooLarge
	}
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	raw, err := ex.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", ErrScannedOrEmpty
	}
	return text, nil
}
