package llm

import (
	"strings"

	"github.com/hstay/docextract/constants"
)

// BuildSystemPrompt composes the system message describing the extraction
// task and the formatting rules the model must follow.
func BuildSystemPrompt(documentType string) string {
	parts := []string{
		"You extract structured fields from OCR text of identity documents (PAN, Aadhaar, Passport, ID Card, Voter ID).",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Produce grounded extractions for identifiers, names, dates, nationality, sex/gender, and address fields.",
		"For passports, MRZ (machine readable zone) lines may be present; extract them as 'mrz_line_1'/'mrz_line_2'.",
		"Each extraction must use the smallest exact text span possible from the source OCR text.",
		"Report character offsets of each span in 'start_pos'/'end_pos' when you can locate the span exactly; omit them otherwise.",
		"Never invent values that are not present in the text. If a field is not present, omit it.",
	}
	if documentType != "" && documentType != constants.DocTypeOther {
		parts = append(parts, "The document is expected to be of type "+documentType+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the OCR text with few-shot examples for the
// target document class. Very long OCR text is truncated; identity
// documents fit comfortably under the cap.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder

	for _, ex := range exampleDocuments(req.DocumentType) {
		b.WriteString("Example input:\n")
		b.WriteString(ex.Text)
		b.WriteString("\nExample extractions:\n")
		b.WriteString(ex.JSON)
		b.WriteString("\n\n")
	}

	ocr := strings.TrimSpace(req.OCRText)
	b.WriteString("OCR text:\n")
	if len(ocr) > maxPromptOCRChars {
		b.WriteString(ocr[:maxPromptOCRChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(ocr)
	}
	return b.String()
}

const maxPromptOCRChars = 8000

type exampleDoc struct {
	Text string
	JSON string
}

// exampleDocuments returns few-shot examples for the requested class. OTHER
// and unknown classes get the PAN example as a generic identity-document
// demonstration.
func exampleDocuments(documentType string) []exampleDoc {
	switch documentType {
	case constants.DocTypeAadhaar:
		return []exampleDoc{{
			Text: "Government of India\nName: SITA DEVI\nDOB: 02/11/1994\nFemale\n1234 5678 9012",
			JSON: `{"extractions":[` +
				`{"extraction_class":"full_name","extraction_text":"SITA DEVI","start_pos":28,"end_pos":37},` +
				`{"extraction_class":"date_of_birth","extraction_text":"02/11/1994","start_pos":43,"end_pos":53},` +
				`{"extraction_class":"gender","extraction_text":"Female","start_pos":54,"end_pos":60},` +
				`{"extraction_class":"aadhaar_number","extraction_text":"1234 5678 9012","start_pos":61,"end_pos":75}]}`,
		}}
	case constants.DocTypePassport:
		return []exampleDoc{{
			Text: "REPUBLIC OF INDIA\nPassport No: K1234567\nSurname: SHARMA\nGiven Names: ANITA\nNationality: INDIAN\nSex: F\nDate of Birth: 15/08/1990",
			JSON: `{"extractions":[` +
				`{"extraction_class":"passport_number","extraction_text":"K1234567","start_pos":31,"end_pos":39},` +
				`{"extraction_class":"surname","extraction_text":"SHARMA","start_pos":49,"end_pos":55},` +
				`{"extraction_class":"given_names","extraction_text":"ANITA","start_pos":69,"end_pos":74},` +
				`{"extraction_class":"nationality","extraction_text":"INDIAN","start_pos":88,"end_pos":94},` +
				`{"extraction_class":"sex","extraction_text":"F","start_pos":100,"end_pos":101},` +
				`{"extraction_class":"date_of_birth","extraction_text":"15/08/1990","start_pos":117,"end_pos":127}]}`,
		}}
	default:
		return []exampleDoc{{
			Text: "INCOME TAX DEPARTMENT\nName: RAVI KUMAR\nFather Name: MAHESH KUMAR\nDOB: 12/07/1989\nPAN: ABCDE1234F",
			JSON: `{"extractions":[` +
				`{"extraction_class":"full_name","extraction_text":"RAVI KUMAR","start_pos":29,"end_pos":39},` +
				`{"extraction_class":"father_name","extraction_text":"MAHESH KUMAR","start_pos":53,"end_pos":65},` +
				`{"extraction_class":"date_of_birth","extraction_text":"12/07/1989","start_pos":71,"end_pos":81},` +
				`{"extraction_class":"pan_number","extraction_text":"ABCDE1234F","start_pos":87,"end_pos":97}]}`,
		}}
	}
}
