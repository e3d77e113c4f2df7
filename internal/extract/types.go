package extract

import (
	"github.com/hstay/docextract/internal/llm"
	"github.com/hstay/docextract/internal/source"
)

// Request is a validated extraction request with a resolved source variant.
type Request struct {
	Source             source.Source
	DocumentTypeHint   string // optional constants.DocType* value
	IncludeOCRText     bool
	IncludeExtractions bool
}

// OCRPayload summarizes the OCR stage for the response. Text is nil unless
// the caller asked for it.
type OCRPayload struct {
	Text        *string `json:"text"`
	TextPreview string  `json:"text_preview"`
	CharCount   int     `json:"char_count"`
}

// Issue is a non-fatal observation surfaced to the caller.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// TimingsMS reports per-stage wall time in milliseconds. Validation is set
// for local sources, Download for remote ones.
type TimingsMS struct {
	Validation *int64 `json:"validation"`
	Download   *int64 `json:"download"`
	OCR        int64  `json:"ocr"`
	Detection  int64  `json:"detection"`
	Extraction int64  `json:"extraction"`
	Total      int64  `json:"total"`
}

// Result is everything the transport layer needs to assemble a response.
// Source carries the effective source (default bucket filled in) for echo.
type Result struct {
	Source                source.Source
	DocumentTypeRequested string
	DocumentTypeDetected  string
	OCR                   OCRPayload
	Fields                DocumentFields
	Extractions           []llm.Span // nil when extractions were not requested
	Issues                []Issue
	Timings               TimingsMS
}
