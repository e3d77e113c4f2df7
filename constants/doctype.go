package constants

// Supported identity document classes.
const (
	DocTypePAN      = "PAN"
	DocTypeAadhaar  = "AADHAAR"
	DocTypePassport = "PASSPORT"
	DocTypeOther    = "OTHER"
)

// DocumentTypes holds the allowed values for the document_type request hint.
var DocumentTypes = []string{DocTypePAN, DocTypeAadhaar, DocTypePassport, DocTypeOther}

// IsDocumentType reports whether s is a known document class.
func IsDocumentType(s string) bool {
	for _, t := range DocumentTypes {
		if s == t {
			return true
		}
	}
	return false
}
