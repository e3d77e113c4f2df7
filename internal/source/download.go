package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hstay/docextract/constants"
	"github.com/hstay/docextract/internal/common"
)

// HTTPFetcher downloads a remote document to a local temporary file.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch implements URLFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", common.InvalidInputError(common.CodeInvalidURL, "document URL is malformed")
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", common.UpstreamError(common.CodeDownloadError, "document download failed", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Warn("download body close error", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", common.UpstreamError(common.CodeDownloadError,
			fmt.Sprintf("document download failed with status %d", resp.StatusCode), nil)
	}

	tmp, err := os.CreateTemp("", "docextract-*"+suffixFromURL(rawURL))
	if err != nil {
		return "", common.UpstreamError(common.CodeDownloadError, "unable to create temp file", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", common.UpstreamError(common.CodeDownloadError, "unable to write downloaded document", err)
	}
	if n > f.maxBytes {
		_ = os.Remove(tmp.Name())
		return "", common.UpstreamError(common.CodeDownloadError,
			fmt.Sprintf("downloaded file exceeds limit of %d bytes", f.maxBytes), nil)
	}

	f.logger.Debug("download ok",
		"url", rawURL,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tmp.Name(), nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return common.InvalidInputError(common.CodeInvalidURL, "document URL is malformed")
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return common.InvalidInputError(common.CodeInvalidURL, "document URL must use http or https")
	}
	if parsed.Hostname() == "" {
		return common.InvalidInputError(common.CodeInvalidURL, "document URL must include a hostname")
	}
	return nil
}

// suffixFromURL infers a file extension from the URL path so the OCR engine
// can pick a strategy. Extensions the engine does not recognize fall back to
// .png, so downloads with odd suffixes still take the image-OCR path.
func suffixFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ".png"
	}
	ext := strings.ToLower(filepath.Ext(parsed.Path))
	if constants.MapExtToFormat(ext) == "" {
		return ".png"
	}
	return ext
}
