package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/hstay/docextract/constants"
)

var (
	rePAN        = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	reAadhaar    = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	rePassportNo = regexp.MustCompile(`\b[A-PR-WYa-pr-wy][1-9]\d{6}\b`)
	reMRZIndia   = regexp.MustCompile(`(?m)^P<IND`)
	rePINCode    = regexp.MustCompile(`\b\d{6}\b`)

	reMRZBlock     = regexp.MustCompile(`([A-Z0-9<]{44})\s+([A-Z0-9<]{44})`)
	reMRZLine2     = regexp.MustCompile(`[A-Z0-9<]{9}[0-9<][A-Z]{3}[0-9]{6}[0-9<][MF<X][0-9]{6}[0-9<][A-Z0-9<]{14}[0-9<]{2}`)
	reMRZLine2Full = regexp.MustCompile(`^[A-Z0-9<]{9}[0-9<][A-Z]{3}[0-9]{6}[0-9<][MF<X][0-9]{6}[0-9<][A-Z0-9<]{14}[0-9<]{2}$`)
)

var passportKeywords = []string{
	"passport",
	"republic of india",
	"nationality",
	"date of issue",
	"date of expiry",
	"place of issue",
}

// DetectDocumentType classifies OCR text by identifier patterns. PAN and
// Aadhaar numbers are decisive; passports are scored across number format,
// MRZ markers, and keywords.
func DetectDocumentType(ocrText string) string {
	if rePAN.MatchString(ocrText) {
		return constants.DocTypePAN
	}
	if reAadhaar.MatchString(ocrText) {
		return constants.DocTypeAadhaar
	}

	score := 0
	lower := strings.ToLower(ocrText)
	if rePassportNo.MatchString(ocrText) {
		score += 2
	}
	if reMRZIndia.MatchString(ocrText) {
		score += 2
	}
	if _, line2 := mrzTD3Lines(ocrText); line2 != "" {
		score += 2
	}
	for _, keyword := range passportKeywords {
		if strings.Contains(lower, keyword) {
			score++
		}
	}
	if score >= 2 {
		return constants.DocTypePassport
	}

	return constants.DocTypeOther
}

// mrzTD3Lines returns the two TD3 MRZ lines when present in OCR text. The
// OCR engine may HTML-escape '<' as '&lt;', so unescape before matching.
func mrzTD3Lines(ocrText string) (line1, line2 string) {
	normalized := strings.ToUpper(html.UnescapeString(ocrText))

	for _, m := range reMRZBlock.FindAllStringSubmatch(normalized, -1) {
		if reMRZLine2Full.MatchString(m[2]) {
			return m[1], m[2]
		}
	}

	if m := reMRZLine2.FindString(normalized); m != "" {
		return "", m
	}
	return "", ""
}
