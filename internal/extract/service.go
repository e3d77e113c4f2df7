package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hstay/docextract/constants"
	"github.com/hstay/docextract/internal/common"
	"github.com/hstay/docextract/internal/llm"
	"github.com/hstay/docextract/internal/source"
)

// Service orchestrates resolution, OCR, document-type detection, and
// structured field extraction for a single request. The pipeline is linear:
// any stage failure aborts the request with a mapped error, never a partial
// response.
type Service struct {
	cfg      *common.Config
	resolver *source.Resolver
	text     TextExtractor
	fields   FieldExtractor
	logger   *slog.Logger
}

// FieldExtractor is Stage 2 as the orchestrator sees it: text in a known
// document class -> grounded extraction spans.
type FieldExtractor interface {
	ExtractSpans(ctx context.Context, ocrText, documentType string) ([]llm.Span, error)
}

func NewService(cfg *common.Config, resolver *source.Resolver, text TextExtractor, fields FieldExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, resolver: resolver, text: text, fields: fields, logger: logger}
}

// Process runs the extraction pipeline for req.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	totalStart := time.Now()
	timings := TimingsMS{}

	// Stage 1: resolve the document to local bytes.
	stageStart := time.Now()
	doc, err := s.resolver.Resolve(ctx, &req.Source)
	if err != nil {
		return nil, err
	}
	defer doc.Cleanup()
	stageMS := time.Since(stageStart).Milliseconds()
	if req.Source.Kind == source.KindLocal {
		timings.Validation = &stageMS
	} else {
		timings.Download = &stageMS
	}

	// Stage 2: OCR. Empty text is terminal, not retried.
	stageStart = time.Now()
	ocrRes, err := s.text.Extract(ctx, doc.Path)
	timings.OCR = time.Since(stageStart).Milliseconds()
	if err != nil {
		s.logger.Error("ocr failed", "path", doc.Path, "error", err)
		return nil, common.UpstreamError(common.CodeOCRError, "OCR engine failed", err)
	}
	ocrText := strings.TrimSpace(ocrRes.Text)
	if ocrText == "" {
		return nil, common.EmptyResultError(common.CodeEmptyOCRText,
			"OCR output is empty for the provided document")
	}

	// Stage 3: classify, reconciling with the caller's hint.
	stageStart = time.Now()
	detected := DetectDocumentType(ocrText)
	targetType, issues := reconcileDocumentType(req.DocumentTypeHint, detected)
	timings.Detection = time.Since(stageStart).Milliseconds()

	// Stage 4: structured extraction, only when requested.
	stageStart = time.Now()
	var spans []llm.Span
	if req.IncludeExtractions {
		spans, err = s.fields.ExtractSpans(ctx, ocrText, targetType)
		if err != nil {
			s.logger.Error("field extraction failed", "document_type", targetType, "error", err)
			return nil, common.UpstreamError(common.CodeExtractionError, "field extraction failed", err)
		}
	}
	fields := MapFields(targetType, spans, ocrText)
	timings.Extraction = time.Since(stageStart).Milliseconds()

	timings.Total = time.Since(totalStart).Milliseconds()

	result := &Result{
		Source:                req.Source,
		DocumentTypeRequested: req.DocumentTypeHint,
		DocumentTypeDetected:  targetType,
		OCR: OCRPayload{
			TextPreview: s.textPreview(ocrText),
			CharCount:   len(ocrText),
		},
		Fields:  fields,
		Issues:  issues,
		Timings: timings,
	}
	if req.IncludeOCRText {
		result.OCR.Text = &ocrText
	}
	if req.IncludeExtractions {
		if spans == nil {
			spans = []llm.Span{}
		}
		result.Extractions = spans
	}

	s.logger.Info("extraction complete",
		"source", req.Source.Kind.String(),
		"document_type", targetType,
		"ocr_chars", len(ocrText),
		"spans", len(spans),
		"total_ms", timings.Total,
	)
	return result, nil
}

// reconcileDocumentType applies the caller's hint: an inconclusive detection
// defers to the hint, a conflicting hint loses to detection. Either case is
// reported as an issue.
func reconcileDocumentType(hint, detected string) (string, []Issue) {
	issues := []Issue{}
	target := detected
	if hint == "" || hint == constants.DocTypeOther {
		return target, issues
	}
	if detected == constants.DocTypeOther {
		target = hint
		issues = append(issues, Issue{
			Code:     "DETECTION_INCONCLUSIVE",
			Message:  fmt.Sprintf("Document type detection was inconclusive; using requested type %s.", hint),
			Severity: SeverityWarning,
		})
	} else if hint != detected {
		issues = append(issues, Issue{
			Code:     "DOCUMENT_TYPE_MISMATCH",
			Message:  fmt.Sprintf("Requested type %s does not match detected type %s; proceeding with detected type.", hint, detected),
			Severity: SeverityWarning,
		})
	}
	return target, issues
}

func (s *Service) textPreview(text string) string {
	limit := s.cfg.OCR.PreviewChars
	if limit < 0 {
		limit = 0
	}
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
