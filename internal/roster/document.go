package roster

import (
	"regexp"
	"strings"
)

var (
	reDNI = regexp.MustCompile(`^[0-9]{8}[A-Z]$`)
	reNIE = regexp.MustCompile(`^[XYZ][0-9]{7}[A-Z]$`)
)

// DetectDocumentType classifies an identifier as "DNI", "NIE" or "". This
// is presentation-level classification: control digits are not validated,
// and the letter-bounded fallback will happily label a passport number NIE.
func DetectDocumentType(value string) string {
	clean := strings.ToUpper(strings.TrimSpace(value))
	if clean == "" {
		return ""
	}

	if reDNI.MatchString(clean) {
		return "DNI"
	}
	if reNIE.MatchString(clean) {
		return "NIE"
	}

	startsWithLetter := clean[0] >= 'A' && clean[0] <= 'Z'
	endsWithLetter := clean[len(clean)-1] >= 'A' && clean[len(clean)-1] <= 'Z'

	if startsWithLetter && endsWithLetter {
		return "NIE"
	}
	if endsWithLetter {
		return "DNI"
	}
	return ""
}
