package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hstay/docextract/constants"
	"github.com/hstay/docextract/internal/common"
	"github.com/hstay/docextract/internal/extract"
	"github.com/hstay/docextract/internal/llm"
	"github.com/hstay/docextract/internal/source"
)

type extractV1Request struct {
	Filename           string `json:"filename"`
	DocumentType       string `json:"document_type"`
	IncludeOCRText     *bool  `json:"include_ocr_text"`
	IncludeExtractions *bool  `json:"include_extractions"`
}

type extractV2Request struct {
	DocumentID     string `json:"document_id"`
	OrganizationID string `json:"organization_id"`
	PropertyID     string `json:"property_id"`
	DocumentURL    string `json:"document_url"`
	Bucket         string `json:"bucket"`
	ObjectKey      string `json:"object_key"`
	ObjectKeyAlt   string `json:"objectKey"` // camelCase alias accepted for compatibility

	DocumentType       string `json:"document_type"`
	IncludeOCRText     *bool  `json:"include_ocr_text"`
	IncludeExtractions *bool  `json:"include_extractions"`
}

type extractResponse struct {
	Filename              string                 `json:"filename,omitempty"`
	DocumentTypeRequested string                 `json:"document_type_requested,omitempty"`
	DocumentTypeDetected  string                 `json:"document_type_detected"`
	OCR                   extract.OCRPayload     `json:"ocr"`
	Fields                extract.DocumentFields `json:"fields"`
	Extractions           []llm.Span             `json:"extractions"`
	Issues                []extract.Issue        `json:"issues"`
	Timings               extract.TimingsMS      `json:"timings_ms"`
}

type extractResponseV2 struct {
	DocumentID     string  `json:"document_id"`
	OrganizationID string  `json:"organization_id"`
	PropertyID     string  `json:"property_id"`
	DocumentURL    *string `json:"document_url"`
	Bucket         *string `json:"bucket"`
	ObjectKey      *string `json:"object_key"`

	DocumentTypeRequested string                 `json:"document_type_requested,omitempty"`
	DocumentTypeDetected  string                 `json:"document_type_detected"`
	OCR                   extract.OCRPayload     `json:"ocr"`
	Fields                extract.DocumentFields `json:"fields"`
	Extractions           []llm.Span             `json:"extractions"`
	Issues                []extract.Issue        `json:"issues"`
	Timings               extract.TimingsMS      `json:"timings_ms"`
}

func (s *Server) handleExtractV1(w http.ResponseWriter, r *http.Request) {
	var req extractV1Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.InvalidInputError(common.CodeInvalidSource, "request body is not valid JSON"))
		return
	}

	v := common.NewValidator().
		Field("filename", req.Filename, common.Required).
		Field("document_type", req.DocumentType, documentTypeRule)
	if err := v.Error(common.CodeInvalidSource); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.Process(r.Context(), extract.Request{
		Source:             source.Local(req.Filename),
		DocumentTypeHint:   req.DocumentType,
		IncludeOCRText:     boolOrDefault(req.IncludeOCRText, true),
		IncludeExtractions: boolOrDefault(req.IncludeExtractions, true),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, extractResponse{
		Filename:              result.Source.Filename,
		DocumentTypeRequested: result.DocumentTypeRequested,
		DocumentTypeDetected:  result.DocumentTypeDetected,
		OCR:                   result.OCR,
		Fields:                result.Fields,
		Extractions:           result.Extractions,
		Issues:                result.Issues,
		Timings:               result.Timings,
	})
}

func (s *Server) handleExtractV2(w http.ResponseWriter, r *http.Request) {
	var req extractV2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.InvalidInputError(common.CodeInvalidSource, "request body is not valid JSON"))
		return
	}
	objectKey := req.ObjectKey
	if strings.TrimSpace(objectKey) == "" {
		objectKey = req.ObjectKeyAlt
	}

	v := common.NewValidator().
		Field("document_id", req.DocumentID, common.Required).
		Field("organization_id", req.OrganizationID, common.Required).
		Field("property_id", req.PropertyID, common.Required).
		Field("document_type", req.DocumentType, documentTypeRule)
	if err := v.Error(common.CodeInvalidSource); err != nil {
		s.writeError(w, err)
		return
	}

	src, err := source.Remote(req.DocumentURL, req.Bucket, objectKey)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.Process(r.Context(), extract.Request{
		Source:             src,
		DocumentTypeHint:   req.DocumentType,
		IncludeOCRText:     boolOrDefault(req.IncludeOCRText, true),
		IncludeExtractions: boolOrDefault(req.IncludeExtractions, true),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, extractResponseV2{
		DocumentID:            req.DocumentID,
		OrganizationID:        req.OrganizationID,
		PropertyID:            req.PropertyID,
		DocumentURL:           optional(result.Source.DocumentURL),
		Bucket:                optional(result.Source.Bucket),
		ObjectKey:             optional(result.Source.ObjectKey),
		DocumentTypeRequested: result.DocumentTypeRequested,
		DocumentTypeDetected:  result.DocumentTypeDetected,
		OCR:                   result.OCR,
		Fields:                result.Fields,
		Extractions:           result.Extractions,
		Issues:                result.Issues,
		Timings:               result.Timings,
	})
}

// documentTypeRule accepts an empty hint or a known document class.
func documentTypeRule(fieldName, value string) *common.ValidationError {
	if value == "" || constants.IsDocumentType(value) {
		return nil
	}
	return &common.ValidationError{
		Field:   fieldName,
		Message: "must be one of " + strings.Join(constants.DocumentTypes, ", "),
	}
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
