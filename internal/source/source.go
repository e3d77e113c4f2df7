// Package source resolves an extraction request's document to local bytes,
// from a constrained local directory, an HTTP(S) URL, or a GCS object.
package source

import (
	"os"
	"strings"

	"github.com/hstay/docextract/internal/common"
)

// Kind identifies where a document is sourced from.
type Kind int

const (
	KindLocal Kind = iota
	KindURL
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindURL:
		return "url"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Source is a tagged union built once at request-parse time. Exactly one
// variant is populated; precedence rules live in Remote, not in handlers.
type Source struct {
	Kind Kind

	// Local
	Filename string

	// URL
	DocumentURL string

	// Object. Bucket may be empty until the resolver fills in the
	// configured default.
	Bucket    string
	ObjectKey string
}

// Local builds a local-directory source for a v1 request.
func Local(filename string) Source {
	return Source{Kind: KindLocal, Filename: strings.TrimSpace(filename)}
}

// Remote builds a v2 source from optional URL and object fields. An object
// key takes precedence over a URL; supplying neither is a caller error.
func Remote(documentURL, bucket, objectKey string) (Source, error) {
	documentURL = strings.TrimSpace(documentURL)
	bucket = strings.TrimSpace(bucket)
	objectKey = strings.TrimSpace(objectKey)

	if objectKey != "" {
		return Source{Kind: KindObject, Bucket: bucket, ObjectKey: objectKey}, nil
	}
	if documentURL != "" {
		return Source{Kind: KindURL, DocumentURL: documentURL}, nil
	}
	return Source{}, common.InvalidInputError(common.CodeInvalidSource,
		"either document_url or object_key must be provided")
}

// ResolvedDocument is a request-scoped local copy of the source document.
type ResolvedDocument struct {
	Path string
	Ext  string
	temp bool
}

// Cleanup removes the backing temp file for remote sources. Safe to call
// for local sources, where it is a no-op.
func (d *ResolvedDocument) Cleanup() {
	if d == nil || !d.temp {
		return
	}
	_ = os.Remove(d.Path)
}
