package llm

import "context"

// Span is one grounded extraction from the OCR text: a class label, the
// extracted text, and optionally where in the source text it was found.
type Span struct {
	ExtractionClass string         `json:"extraction_class"`
	ExtractionText  string         `json:"extraction_text"`
	Attributes      map[string]any `json:"attributes,omitempty"`
	StartPos        *int           `json:"start_pos,omitempty"`
	EndPos          *int           `json:"end_pos,omitempty"`
	GroupIndex      *int           `json:"group_index,omitempty"`
	ExtractionIndex *int           `json:"extraction_index,omitempty"`
}

type ExtractRequest struct {
	OCRText      string
	DocumentType string // constants.DocType* value steering few-shot examples
}

// FieldExtractor is the interface the orchestrator depends on.
type FieldExtractor interface {
	ExtractSpans(ctx context.Context, req ExtractRequest) ([]Span, []byte /*rawJSON*/, error)
}
