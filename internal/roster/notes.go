package roster

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"certroster/internal"
)

// rosterMarkerPhrase flags the note holding the authoritative student list.
// The format contract with CRM operators: the phrase, then entries separated
// by ";", fields within an entry separated by "|" (name|surname|document).
const rosterMarkerPhrase = "alumnos del deal"

var (
	reBreakTags    = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)
	reParagraph    = regexp.MustCompile(`(?i)</?p>`)
	reListItem     = regexp.MustCompile(`(?i)<li[^>]*>`)
	reListWrap     = regexp.MustCompile(`(?i)</?ul>`)
	reAnyTag       = regexp.MustCompile(`<[^>]*>`)
	reRosterMarker = regexp.MustCompile(`(?i)"?alumnos del deal"?`)
	reLeadingSep   = regexp.MustCompile(`^[:\-\s]+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// SanitizeNoteContent flattens a CRM note's HTML into one line of plain
// text: breaks and list markup become separators, remaining tags are
// stripped, entities decoded, whitespace collapsed.
func SanitizeNoteContent(content string) string {
	if content == "" {
		return ""
	}
	s := reBreakTags.ReplaceAllString(content, "\n")
	s = reParagraph.ReplaceAllString(s, "\n")
	s = reListItem.ReplaceAllString(s, "\n- ")
	s = reListWrap.ReplaceAllString(s, "\n")
	s = stripTags(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripTags replaces each residual tag with one space, so text split only
// by markup ("Ana</span><span>Luis") keeps its word boundary, then decodes
// entities.
func stripTags(s string) string {
	if strings.Contains(s, "<") {
		s = reAnyTag.ReplaceAllString(s, " ")
	}
	if !strings.Contains(s, "&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return entityReplacer.Replace(s)
	}
	return doc.Text()
}

// ExtractStudents finds the most recent note carrying the roster marker and
// splits it into raw per-student tuples. No matching note, no students.
func ExtractStudents(notes []internal.Note) []internal.RawStudent {
	type candidate struct {
		added   time.Time
		content string
	}

	matching := make([]candidate, 0, len(notes))
	for _, note := range notes {
		content := SanitizeNoteContent(note.Content)
		if !strings.Contains(strings.ToLower(content), rosterMarkerPhrase) {
			continue
		}
		matching = append(matching, candidate{added: parseNoteTime(note.AddTime), content: content})
	}
	if len(matching) == 0 {
		return nil
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].added.After(matching[j].added)
	})
	return parseRosterText(matching[0].content)
}

func parseRosterText(content string) []internal.RawStudent {
	parts := reRosterMarker.Split(content, 2)
	if len(parts) < 2 {
		return nil
	}
	after := strings.TrimSpace(reLeadingSep.ReplaceAllString(parts[1], ""))
	if after == "" {
		return nil
	}

	students := make([]internal.RawStudent, 0)
	for _, entry := range strings.Split(after, ";") {
		// Notes written as HTML lists leave a "- " bullet per entry.
		entry = strings.TrimSpace(reLeadingSep.ReplaceAllString(entry, ""))
		if entry == "" {
			continue
		}

		fields := strings.Split(entry, "|")
		hasContent := false
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] != "" {
				hasContent = true
			}
		}
		if !hasContent {
			continue
		}

		student := internal.RawStudent{}
		if len(fields) > 0 {
			student.Name = fields[0]
		}
		if len(fields) > 1 {
			student.Surname = fields[1]
		}
		if len(fields) > 2 {
			student.Document = fields[2]
		}
		students = append(students, student)
	}
	return students
}

// Pipedrive stamps notes as "2006-01-02 15:04:05" (UTC); RFC3339 accepted
// as a fallback. Unparseable stamps sort last.
func parseNoteTime(addTime string) time.Time {
	addTime = strings.TrimSpace(addTime)
	if addTime == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02 15:04:05", addTime); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, addTime); err == nil {
		return t
	}
	return time.Time{}
}
