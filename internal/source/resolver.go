package source

import (
	"context"
	"log/slog"

	"github.com/hstay/docextract/internal/common"
)

// URLFetcher downloads a URL to a local temp file and returns its path.
type URLFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ObjectFetcher downloads an object-store blob to a local temp file.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, bucket, objectKey string) (string, error)
}

// Resolver turns a Source into local bytes. Remote fetchers are injected so
// tests can substitute fakes.
type Resolver struct {
	cfg    *common.Config
	urls   URLFetcher
	store  ObjectFetcher
	logger *slog.Logger
}

func NewResolver(cfg *common.Config, urls URLFetcher, store ObjectFetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, urls: urls, store: store, logger: logger}
}

// Resolve returns a local document for src. For object sources with no
// bucket, the configured default bucket is written back into src so callers
// can echo the effective bucket.
func (r *Resolver) Resolve(ctx context.Context, src *Source) (*ResolvedDocument, error) {
	switch src.Kind {
	case KindLocal:
		return r.resolveLocal(src.Filename)
	case KindURL:
		return r.resolveURL(ctx, src.DocumentURL)
	case KindObject:
		if src.Bucket == "" {
			src.Bucket = r.cfg.GCS.DefaultBucket
		}
		if src.Bucket == "" {
			return nil, common.InvalidInputError(common.CodeInvalidSource,
				"no GCS bucket supplied and no default bucket configured")
		}
		return r.resolveObject(ctx, src.Bucket, src.ObjectKey)
	default:
		return nil, common.InvalidInputError(common.CodeInvalidSource, "unknown document source")
	}
}

func (r *Resolver) resolveURL(ctx context.Context, url string) (*ResolvedDocument, error) {
	if r.urls == nil {
		return nil, common.UpstreamError(common.CodeDownloadError, "URL download is not configured", nil)
	}
	path, err := r.urls.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("document downloaded", "url", url, "path", path)
	return &ResolvedDocument{Path: path, Ext: extOf(path), temp: true}, nil
}

func (r *Resolver) resolveObject(ctx context.Context, bucket, objectKey string) (*ResolvedDocument, error) {
	if r.store == nil {
		return nil, common.UpstreamError(common.CodeGCSError, "GCS is not configured", nil)
	}
	path, err := r.store.FetchObject(ctx, bucket, objectKey)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("object downloaded", "bucket", bucket, "object_key", objectKey, "path", path)
	return &ResolvedDocument{Path: path, Ext: extOf(path), temp: true}, nil
}
