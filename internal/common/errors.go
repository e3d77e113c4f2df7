package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for HTTP status mapping.
type ErrorKind int

const (
	// KindInvalidInput is a caller error: bad path, bad extension, malformed source spec.
	KindInvalidInput ErrorKind = iota
	// KindNotFound means the resolved local file is absent.
	KindNotFound
	// KindEmptyResult means OCR succeeded but yielded nothing usable.
	KindEmptyResult
	// KindUpstream means a dependency (OCR engine, LLM, download, object store) failed.
	KindUpstream
	// KindInternal is everything else.
	KindInternal
)

// Stable error codes returned in response bodies.
const (
	CodePathTraversal    = "PATH_TRAVERSAL"
	CodeInvalidExtension = "INVALID_FILE_EXTENSION"
	CodeInvalidSource    = "INVALID_DOCUMENT_SOURCE"
	CodeInvalidURL       = "INVALID_DOCUMENT_URL"
	CodeSourceNotFound   = "SOURCE_FILE_NOT_FOUND"
	CodeEmptyOCRText     = "EMPTY_OCR_TEXT"
	CodeOCRError         = "OCR_ERROR"
	CodeExtractionError  = "EXTRACTION_ERROR"
	CodeDownloadError    = "DOWNLOAD_ERROR"
	CodeGCSError         = "GCS_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error kind to a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindEmptyResult:
		return http.StatusUnprocessableEntity
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NewAppError(kind ErrorKind, code, message string, cause error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Cause: cause}
}

func InvalidInputError(code, message string) *AppError {
	return NewAppError(KindInvalidInput, code, message, nil)
}

func InvalidInputErrorf(code, format string, args ...interface{}) *AppError {
	return InvalidInputError(code, fmt.Sprintf(format, args...))
}

func NotFoundError(code, message string) *AppError {
	return NewAppError(KindNotFound, code, message, nil)
}

func EmptyResultError(code, message string) *AppError {
	return NewAppError(KindEmptyResult, code, message, nil)
}

func UpstreamError(code, message string, cause error) *AppError {
	return NewAppError(KindUpstream, code, message, cause)
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var app *AppError
	if errors.As(err, &app) {
		return app, true
	}
	return nil, false
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
