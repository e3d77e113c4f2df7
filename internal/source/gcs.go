package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/hstay/docextract/internal/common"
)

// GCSFetcher downloads a GCS object to a local temporary file using
// server-side service-account credentials.
type GCSFetcher struct {
	client   *storage.Client
	cfg      *common.Config
	maxBytes int64
	logger   *slog.Logger
}

// NewGCSFetcher builds a storage client from the base64-encoded
// service-account JSON in cfg.GCS.Credentials. Returns an error when no
// credentials are configured; callers should then run without object-store
// support rather than fail at startup.
func NewGCSFetcher(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*GCSFetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := decodeCredentials(cfg.GCS.Credentials)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, common.WrapError(err, "initialize GCS client")
	}
	return &GCSFetcher{client: client, cfg: cfg, maxBytes: cfg.Source.MaxDownloadBytes, logger: logger}, nil
}

// FetchObject implements ObjectFetcher.
func (f *GCSFetcher) FetchObject(ctx context.Context, bucket, objectKey string) (string, error) {
	suffix := strings.ToLower(filepath.Ext(objectKey))
	if !f.cfg.ExtensionAllowed(suffix) {
		return "", common.UpstreamError(common.CodeGCSError,
			fmt.Sprintf("unsupported extension %q for gs://%s/%s", suffix, bucket, objectKey), nil)
	}

	obj := f.client.Bucket(bucket).Object(objectKey)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return "", common.UpstreamError(common.CodeGCSError,
			fmt.Sprintf("unable to read GCS object metadata for gs://%s/%s", bucket, objectKey), err)
	}
	if attrs.Size > f.maxBytes {
		return "", common.UpstreamError(common.CodeGCSError,
			fmt.Sprintf("GCS object exceeds limit of %d bytes", f.maxBytes), nil)
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return "", common.UpstreamError(common.CodeGCSError,
			fmt.Sprintf("failed to open gs://%s/%s", bucket, objectKey), err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			f.logger.Warn("gcs reader close error", "error", cerr)
		}
	}()

	tmp, err := os.CreateTemp("", "docextract-*"+suffix)
	if err != nil {
		return "", common.UpstreamError(common.CodeGCSError, "unable to create temp file", err)
	}

	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", common.UpstreamError(common.CodeGCSError,
			fmt.Sprintf("failed to download gs://%s/%s", bucket, objectKey), err)
	}

	f.logger.Debug("gcs download ok", "bucket", bucket, "object_key", objectKey, "bytes", n)
	return tmp.Name(), nil
}

func decodeCredentials(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if payload == "" {
		return nil, fmt.Errorf("GCS credentials are not configured")
	}
	if pad := len(payload) % 4; pad != 0 {
		payload += strings.Repeat("=", 4-pad)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("GCS credentials must be valid base64-encoded JSON: %w", err)
	}
	return raw, nil
}
