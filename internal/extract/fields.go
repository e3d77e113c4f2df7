package extract

import (
	"regexp"
	"strings"

	"github.com/hstay/docextract/constants"
	"github.com/hstay/docextract/internal/llm"
)

// FieldEvidence is one extracted value with its grounding in the OCR text.
type FieldEvidence struct {
	Value                 string `json:"value,omitempty"`
	Evidence              string `json:"evidence,omitempty"`
	StartPos              *int   `json:"start_pos,omitempty"`
	EndPos                *int   `json:"end_pos,omitempty"`
	SourceExtractionClass string `json:"source_extraction_class,omitempty"`
}

// DocumentFields is the per-class typed field set included in a response.
type DocumentFields interface {
	isDocumentFields()
}

type PanFields struct {
	PanNumber   *FieldEvidence `json:"pan_number,omitempty"`
	FullName    *FieldEvidence `json:"full_name,omitempty"`
	FatherName  *FieldEvidence `json:"father_name,omitempty"`
	DateOfBirth *FieldEvidence `json:"date_of_birth,omitempty"`
}

type AadhaarFields struct {
	AadhaarNumber *FieldEvidence `json:"aadhaar_number,omitempty"`
	FullName      *FieldEvidence `json:"full_name,omitempty"`
	DateOfBirth   *FieldEvidence `json:"date_of_birth,omitempty"`
	YearOfBirth   *FieldEvidence `json:"year_of_birth,omitempty"`
	Gender        *FieldEvidence `json:"gender,omitempty"`
	Address       *FieldEvidence `json:"address,omitempty"`
	CareOf        *FieldEvidence `json:"care_of,omitempty"`
	PinCode       *FieldEvidence `json:"pin_code,omitempty"`
}

type PassportFields struct {
	PassportNumber *FieldEvidence `json:"passport_number,omitempty"`
	Surname        *FieldEvidence `json:"surname,omitempty"`
	GivenNames     *FieldEvidence `json:"given_names,omitempty"`
	Nationality    *FieldEvidence `json:"nationality,omitempty"`
	DateOfBirth    *FieldEvidence `json:"date_of_birth,omitempty"`
	Sex            *FieldEvidence `json:"sex,omitempty"`
	PlaceOfBirth   *FieldEvidence `json:"place_of_birth,omitempty"`
	PlaceOfIssue   *FieldEvidence `json:"place_of_issue,omitempty"`
	DateOfIssue    *FieldEvidence `json:"date_of_issue,omitempty"`
	DateOfExpiry   *FieldEvidence `json:"date_of_expiry,omitempty"`
	FileNumber     *FieldEvidence `json:"file_number,omitempty"`
	MRZLine1       *FieldEvidence `json:"mrz_line_1,omitempty"`
	MRZLine2       *FieldEvidence `json:"mrz_line_2,omitempty"`
}

type OtherFields struct {
	IDNumber    *FieldEvidence `json:"id_number,omitempty"`
	FullName    *FieldEvidence `json:"full_name,omitempty"`
	DateOfBirth *FieldEvidence `json:"date_of_birth,omitempty"`
	Address     *FieldEvidence `json:"address,omitempty"`
}

func (*PanFields) isDocumentFields()      {}
func (*AadhaarFields) isDocumentFields()  {}
func (*PassportFields) isDocumentFields() {}
func (*OtherFields) isDocumentFields()    {}

// MapFields maps extraction spans into the typed field set for the detected
// document class, with regex fallback for the primary identifier.
func MapFields(documentType string, spans []llm.Span, ocrText string) DocumentFields {
	switch documentType {
	case constants.DocTypePAN:
		return mapPanFields(spans, ocrText)
	case constants.DocTypeAadhaar:
		return mapAadhaarFields(spans, ocrText)
	case constants.DocTypePassport:
		return mapPassportFields(spans, ocrText)
	default:
		return mapOtherFields(spans, ocrText)
	}
}

func mapPanFields(spans []llm.Span, ocrText string) *PanFields {
	panNumber := pickField(spans, ocrText, "pan_number", "pan", "id_number", "document_number")
	if panNumber == nil {
		panNumber = regexEvidence(rePAN, ocrText)
	}
	return &PanFields{
		PanNumber:   panNumber,
		FullName:    pickField(spans, ocrText, "full_name", "name", "cardholder_name"),
		FatherName:  pickField(spans, ocrText, "father_name", "parent_name"),
		DateOfBirth: pickField(spans, ocrText, "date_of_birth", "dob", "birth_date"),
	}
}

func mapAadhaarFields(spans []llm.Span, ocrText string) *AadhaarFields {
	aadhaarNumber := pickField(spans, ocrText, "aadhaar_number", "aadhaar", "uid", "id_number")
	if aadhaarNumber == nil {
		aadhaarNumber = regexEvidence(reAadhaar, ocrText)
	}
	pinCode := pickField(spans, ocrText, "pin_code", "postal_code")
	if pinCode == nil {
		pinCode = regexEvidence(rePINCode, ocrText)
	}
	return &AadhaarFields{
		AadhaarNumber: aadhaarNumber,
		FullName:      pickField(spans, ocrText, "full_name", "name"),
		DateOfBirth:   pickField(spans, ocrText, "date_of_birth", "dob", "birth_date"),
		YearOfBirth:   pickField(spans, ocrText, "year_of_birth", "yob"),
		Gender:        pickField(spans, ocrText, "gender", "sex"),
		Address:       pickField(spans, ocrText, "address", "residential_address"),
		CareOf:        pickField(spans, ocrText, "care_of", "c_o", "co"),
		PinCode:       pinCode,
	}
}

func mapPassportFields(spans []llm.Span, ocrText string) *PassportFields {
	passportNumber := pickField(spans, ocrText, "passport_number", "passport_no", "id_number")
	if passportNumber == nil {
		passportNumber = regexEvidence(rePassportNo, ocrText)
	}

	fields := &PassportFields{
		PassportNumber: passportNumber,
		Surname:        pickField(spans, ocrText, "surname", "last_name", "family_name"),
		GivenNames:     pickField(spans, ocrText, "given_names", "first_name", "name"),
		Nationality:    pickField(spans, ocrText, "nationality"),
		DateOfBirth:    pickField(spans, ocrText, "date_of_birth", "dob", "birth_date"),
		Sex:            pickField(spans, ocrText, "sex", "gender"),
		PlaceOfBirth:   pickField(spans, ocrText, "place_of_birth"),
		PlaceOfIssue:   pickField(spans, ocrText, "place_of_issue"),
		DateOfIssue:    pickField(spans, ocrText, "date_of_issue", "issue_date"),
		DateOfExpiry:   pickField(spans, ocrText, "date_of_expiry", "expiry_date"),
		FileNumber:     pickField(spans, ocrText, "file_number"),
		MRZLine1:       pickField(spans, ocrText, "mrz_line_1"),
		MRZLine2:       pickField(spans, ocrText, "mrz_line_2"),
	}

	if fields.Sex == nil || fields.Nationality == nil || fields.MRZLine1 == nil || fields.MRZLine2 == nil {
		line1, line2 := mrzTD3Lines(ocrText)
		if line1 != "" && fields.MRZLine1 == nil {
			fields.MRZLine1 = mrzEvidence(line1)
		}
		if line2 != "" && fields.MRZLine2 == nil {
			fields.MRZLine2 = mrzEvidence(line2)
		}
		if line2 != "" {
			if fields.Nationality == nil {
				if nationality := strings.TrimSpace(strings.ReplaceAll(line2[10:13], "<", "")); nationality != "" {
					fields.Nationality = mrzEvidence(nationality)
				}
			}
			if fields.Sex == nil {
				if sex := string(line2[20]); sex == "M" || sex == "F" || sex == "X" {
					fields.Sex = mrzEvidence(sex)
				}
			}
		}
	}

	return fields
}

func mapOtherFields(spans []llm.Span, ocrText string) *OtherFields {
	idNumber := pickField(spans, ocrText, "id_number", "document_number", "identifier")
	if idNumber == nil {
		idNumber = regexEvidence(rePAN, ocrText)
	}
	if idNumber == nil {
		idNumber = regexEvidence(reAadhaar, ocrText)
	}
	if idNumber == nil {
		idNumber = regexEvidence(rePassportNo, ocrText)
	}
	return &OtherFields{
		IDNumber:    idNumber,
		FullName:    pickField(spans, ocrText, "full_name", "name"),
		DateOfBirth: pickField(spans, ocrText, "date_of_birth", "dob", "birth_date"),
		Address:     pickField(spans, ocrText, "address"),
	}
}

// pickField returns evidence for the first span whose class matches one of
// the aliases after key normalization.
func pickField(spans []llm.Span, ocrText string, aliases ...string) *FieldEvidence {
	normalized := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		normalized[normalizeKey(alias)] = struct{}{}
	}
	for _, span := range spans {
		if _, ok := normalized[normalizeKey(span.ExtractionClass)]; ok {
			return buildEvidence(span, ocrText)
		}
	}
	return nil
}

// buildEvidence prefers the exact source slice over the model's quoted text
// whenever the span positions are in range.
func buildEvidence(span llm.Span, ocrText string) *FieldEvidence {
	evidence := span.ExtractionText
	if span.StartPos != nil && span.EndPos != nil {
		start, end := *span.StartPos, *span.EndPos
		if 0 <= start && start <= end && end <= len(ocrText) {
			evidence = ocrText[start:end]
		}
	}
	return &FieldEvidence{
		Value:                 span.ExtractionText,
		Evidence:              evidence,
		StartPos:              span.StartPos,
		EndPos:                span.EndPos,
		SourceExtractionClass: span.ExtractionClass,
	}
}

func regexEvidence(pattern *regexp.Regexp, ocrText string) *FieldEvidence {
	loc := pattern.FindStringIndex(ocrText)
	if loc == nil {
		return nil
	}
	value := ocrText[loc[0]:loc[1]]
	start, end := loc[0], loc[1]
	return &FieldEvidence{
		Value:                 value,
		Evidence:              value,
		StartPos:              &start,
		EndPos:                &end,
		SourceExtractionClass: "regex_fallback",
	}
}

func mrzEvidence(value string) *FieldEvidence {
	return &FieldEvidence{
		Value:                 value,
		Evidence:              value,
		SourceExtractionClass: "mrz_fallback",
	}
}

var reKeyNoise = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeKey(value string) string {
	return strings.Trim(reKeyNoise.ReplaceAllString(strings.ToLower(value), "_"), "_")
}
