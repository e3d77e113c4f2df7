package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hstay/docextract/constants"
	"github.com/hstay/docextract/internal/common"
	"github.com/hstay/docextract/internal/extract"
	"github.com/hstay/docextract/internal/llm"
	"github.com/hstay/docextract/internal/source"
)

type stubText struct {
	text string
	err  error
}

func (s *stubText) Extract(_ context.Context, _ string) (extract.TextExtractionResult, error) {
	if s.err != nil {
		return extract.TextExtractionResult{}, s.err
	}
	return extract.TextExtractionResult{Text: s.text, SourceType: constants.IMAGE, Method: "image-ocr"}, nil
}

type stubFields struct {
	spans []llm.Span
}

func (s *stubFields) ExtractSpans(_ context.Context, _, _ string) ([]llm.Span, error) {
	return s.spans, nil
}

type stubURLFetcher struct {
	path  string
	calls int
}

func (f *stubURLFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.path, nil
}

type stubObjectFetcher struct {
	path  string
	calls int

	lastBucket string
	lastKey    string
}

func (f *stubObjectFetcher) FetchObject(_ context.Context, bucket, objectKey string) (string, error) {
	f.calls++
	f.lastBucket = bucket
	f.lastKey = objectKey
	return f.path, nil
}

type serverFixture struct {
	cfg   *common.Config
	urls  *stubURLFetcher
	store *stubObjectFetcher
	text  *stubText
	ts    *httptest.Server
}

func newFixture(t *testing.T) *serverFixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.png"), []byte("png"), 0o644))

	cfg := &common.Config{
		Source: common.SourceConfig{
			ImageDirectory:    dir,
			AllowedExtensions: constants.DefaultAllowedExtensions,
		},
		OCR: common.OCRConfig{PreviewChars: 240},
	}

	f := &serverFixture{
		cfg:   cfg,
		urls:  &stubURLFetcher{path: tempFile(t)},
		store: &stubObjectFetcher{path: tempFile(t)},
		text:  &stubText{text: "INCOME TAX DEPARTMENT\nABCDE1234F"},
	}

	resolver := source.NewResolver(cfg, f.urls, f.store, nil)
	svc := extract.NewService(cfg, resolver, f.text, &stubFields{spans: []llm.Span{
		{ExtractionClass: "pan_number", ExtractionText: "ABCDE1234F"},
	}}, nil)
	f.ts = httptest.NewServer(New(cfg, svc, nil).Handler())
	t.Cleanup(f.ts.Close)
	return f
}

func tempFile(t *testing.T) string {
	t.Helper()
	file, err := os.CreateTemp(t.TempDir(), "docextract-*.png")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	return file.Name()
}

func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestExtractV1Success(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename": "doc.png",
	})
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "doc.png", body["filename"])
	assert.Equal(t, constants.DocTypePAN, body["document_type_detected"])

	ocr, ok := body["ocr"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INCOME TAX DEPARTMENT\nABCDE1234F", ocr["text"])
	assert.NotEmpty(t, ocr["text_preview"])

	extractions, ok := body["extractions"].([]any)
	require.True(t, ok)
	require.Len(t, extractions, 1)

	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	panNumber, ok := fields["pan_number"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ABCDE1234F", panNumber["value"])

	timings, ok := body["timings_ms"].(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, timings["validation"])
	assert.Nil(t, timings["download"])
}

func TestExtractV1FlagsOff(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename":            "doc.png",
		"include_ocr_text":    false,
		"include_extractions": false,
	})
	require.Equal(t, http.StatusOK, status)

	ocr := body["ocr"].(map[string]any)
	assert.Nil(t, ocr["text"])
	assert.Nil(t, body["extractions"])
}

func TestExtractV1PathTraversal(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename": "../etc/passwd",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodePathTraversal, body["code"])
}

func TestExtractV1MissingFilename(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
}

func TestExtractV1UnknownDocumentType(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename":      "doc.png",
		"document_type": "DRIVING_LICENSE",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
}

func TestExtractV2UnknownDocumentType(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"document_url":  "https://example.com/doc.png",
		"document_type": "pan",
	}))
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
	assert.Zero(t, f.urls.calls)
}

func TestExtractV1MalformedJSON(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.ts.URL+"/v1/extract", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtractV1FileNotFound(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename": "missing.png",
	})
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, common.CodeSourceNotFound, body["code"])
}

func TestExtractV1EmptyOCRText(t *testing.T) {
	f := newFixture(t)
	f.text.text = "   \n  "

	status, body := postJSON(t, f.ts.URL+"/v1/extract", map[string]any{
		"filename": "doc.png",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, common.CodeEmptyOCRText, body["code"])
}

func v2Body(extra map[string]any) map[string]any {
	body := map[string]any{
		"document_id":     "doc-1",
		"organization_id": "org-1",
		"property_id":     "prop-1",
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestExtractV2URLSource(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"document_url": "https://example.com/doc.png",
	}))
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "doc-1", body["document_id"])
	assert.Equal(t, "org-1", body["organization_id"])
	assert.Equal(t, "prop-1", body["property_id"])
	assert.Equal(t, "https://example.com/doc.png", body["document_url"])
	assert.Nil(t, body["bucket"])
	assert.Nil(t, body["object_key"])
	assert.Equal(t, 1, f.urls.calls)
	assert.Zero(t, f.store.calls)

	timings := body["timings_ms"].(map[string]any)
	assert.NotNil(t, timings["download"])
	assert.Nil(t, timings["validation"])
}

func TestExtractV2ObjectKeyPrecedence(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"document_url": "https://example.com/doc.png",
		"bucket":       "docs-bucket",
		"object_key":   "org-1/doc.png",
	}))
	require.Equal(t, http.StatusOK, status)

	assert.Zero(t, f.urls.calls)
	assert.Equal(t, 1, f.store.calls)
	assert.Equal(t, "docs-bucket", f.store.lastBucket)
	assert.Equal(t, "org-1/doc.png", f.store.lastKey)
	assert.Equal(t, "docs-bucket", body["bucket"])
	assert.Equal(t, "org-1/doc.png", body["object_key"])
	assert.Nil(t, body["document_url"])
}

func TestExtractV2ObjectKeyCamelCaseAlias(t *testing.T) {
	f := newFixture(t)

	status, _ := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"bucket":    "docs-bucket",
		"objectKey": "org-1/doc.png",
	}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "org-1/doc.png", f.store.lastKey)
}

func TestExtractV2DefaultBucketEchoed(t *testing.T) {
	f := newFixture(t)
	f.cfg.GCS.DefaultBucket = "default-bucket"

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"object_key": "org-1/doc.png",
	}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "default-bucket", f.store.lastBucket)
	assert.Equal(t, "default-bucket", body["bucket"])
}

func TestExtractV2NoBucketAnywhere(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"object_key": "org-1/doc.png",
	}))
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
	assert.Zero(t, f.store.calls)
}

func TestExtractV2NoSource(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", v2Body(nil))
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
}

func TestExtractV2MissingIdentifiers(t *testing.T) {
	f := newFixture(t)

	status, body := postJSON(t, f.ts.URL+"/v2/extract", map[string]any{
		"document_id":  "doc-1",
		"document_url": "https://example.com/doc.png",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, common.CodeInvalidSource, body["code"])
	assert.Zero(t, f.urls.calls)
}

func TestExtractV2TempFileRemoved(t *testing.T) {
	f := newFixture(t)

	status, _ := postJSON(t, f.ts.URL+"/v2/extract", v2Body(map[string]any{
		"document_url": "https://example.com/doc.png",
	}))
	require.Equal(t, http.StatusOK, status)

	_, err := os.Stat(f.urls.path)
	assert.True(t, os.IsNotExist(err))
}

func TestExtractV2UnreachableURL(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	cfg := &common.Config{
		Source: common.SourceConfig{
			ImageDirectory:    dir,
			AllowedExtensions: constants.DefaultAllowedExtensions,
			MaxDownloadBytes:  1 << 20,
		},
		OCR: common.OCRConfig{PreviewChars: 240},
	}
	fetcher := source.NewHTTPFetcher(2*time.Second, cfg.Source.MaxDownloadBytes, nil)
	resolver := source.NewResolver(cfg, fetcher, nil, nil)
	svc := extract.NewService(cfg, resolver, f.text, &stubFields{}, nil)
	ts := httptest.NewServer(New(cfg, svc, nil).Handler())
	defer ts.Close()

	status, body := postJSON(t, ts.URL+"/v2/extract", v2Body(map[string]any{
		"document_url": "http://127.0.0.1:1/doc.png",
	}))
	require.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, common.CodeDownloadError, body["code"])
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+"/v1/extract", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Less(t, resp.StatusCode, 300)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Methods"))
}
