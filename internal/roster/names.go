package roster

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
)

// mojibakeReplacements covers the sequences left behind when UTF-8 text is
// decoded as Latin-1 or cp1252 and stored that way. The round-trip repair
// handles the general case; this fixed table still runs afterwards for
// fragments the round trip cannot touch (mixed or double-mangled input).
// Second bytes in the 0x80-0x9F range appear here as literal control
// characters; depending on the mis-decoding they can also surface as cp1252
// punctuation, so both spellings are listed where they differ.
var mojibakeReplacer = strings.NewReplacer(
	"Ã¡", "á",
	"Ã©", "é",
	"Ã­", "í",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã¼", "ü",
	"Ã±", "ñ",
	"Ã", "Á",
	"Ã", "É",
	"Ã‰", "É",
	"Ã", "Í",
	"Ã", "Ó",
	"Ã“", "Ó",
	"Ã", "Ú",
	"Ãš", "Ú",
	"Ã", "Ü",
	"Ãœ", "Ü",
	"Ã", "Ñ",
	"Ã‘", "Ñ",
	"Â ", " ",
	"Â", "",
)

// RepairEncoding undoes Latin-1-as-UTF-8 mojibake on a best-effort basis.
// Unrepairable text passes through unchanged.
func RepairEncoding(text string) string {
	if strings.ContainsAny(text, "ÃÂ") {
		if repaired, ok := reinterpretAsUTF8(text); ok {
			text = repaired
		}
	}
	return mojibakeReplacer.Replace(text)
}

// reinterpretAsUTF8 maps each rune back to the Latin-1 byte it was
// mis-decoded from, then reads the byte sequence as UTF-8. The repair is
// only accepted when every rune maps and the result is clean UTF-8 with no
// replacement characters.
func reinterpretAsUTF8(text string) (string, bool) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		return "", false
	}
	if !utf8.ValidString(encoded) || strings.ContainsRune(encoded, utf8.RuneError) {
		return "", false
	}
	return encoded, true
}

// NormalizeNameSegment turns a raw name fragment into the canonical form
// used on certificates: encoding repaired, punctuation stripped, known
// diacritic-less spellings corrected, uppercased per Spanish rules.
// Running it on its own output is a no-op.
func NormalizeNameSegment(raw string) string {
	repaired := RepairEncoding(raw)

	var b strings.Builder
	b.Grow(len(repaired))
	for _, r := range repaired {
		switch {
		case unicode.IsLetter(r) || unicode.Is(unicode.Mn, r):
			b.WriteRune(r)
		case r == '\'' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	if cleaned == "" {
		return ""
	}

	// Casers are stateful; one per call, never shared.
	caser := cases.Upper(language.Spanish)
	corrected := applyNameCorrections(cleaned, caser)
	return caser.String(corrected)
}

func applyNameCorrections(name string, caser cases.Caser) string {
	return reLetterRun.ReplaceAllStringFunc(name, func(run string) string {
		upper := caser.String(run)
		if canonical, ok := nameCorrections[upper]; ok {
			return canonical
		}
		return run
	})
}
