package constants

import "strings"

// Source formats accepted by the OCR engine.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// DefaultAllowedExtensions is the default allowlist for source documents.
// Override with the ALLOWED_EXTENSIONS environment variable.
var DefaultAllowedExtensions = []string{
	".png", ".jpg", ".jpeg", ".webp", ".tif", ".tiff", ".bmp", ".pdf",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to a source format, or "" if unknown.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "webp", "tif", "tiff", "bmp":
		return IMAGE
	default:
		return ""
	}
}
