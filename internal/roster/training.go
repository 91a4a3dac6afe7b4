package roster

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ropeAccessKey identifies the course family whose second training day is
// always the day after the first.
const ropeAccessKey = "trabajos verticales"

// stripMarks builds a fresh transformer per call: chained transformers
// carry internal buffers and must not be shared across goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTrainingName reduces a training label to a comparison key:
// lowercase, accents stripped, runs of non-alphanumerics collapsed to
// single spaces.
func NormalizeTrainingName(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks(), lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.TrimSpace(reNonAlnum.ReplaceAllString(stripped, " "))
}

func IsRopeAccessTraining(trainingName string) bool {
	key := NormalizeTrainingName(trainingName)
	if key == "" {
		return false
	}
	return strings.HasPrefix(key, ropeAccessKey)
}

// trainingLocationAliases remaps the two known full postal addresses to the
// short site names used on certificates. Anything else passes through.
var trainingLocationAliases = map[string]string{
	"c/ primavera, 1, 28500, arganda del rey, madrid": "Madrid",
	"c/ moratín, 100, 08206 sabadell, barcelona":      "Barcelona",
}

func MapTrainingLocation(rawLocation string) string {
	if rawLocation == "" {
		return ""
	}
	if short, ok := trainingLocationAliases[strings.ToLower(strings.TrimSpace(rawLocation))]; ok {
		return short
	}
	return rawLocation
}
