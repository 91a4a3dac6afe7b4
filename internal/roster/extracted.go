package roster

import (
	"strings"

	"certroster/internal"
)

// ExtractedStudent is one tuple returned by the document-extraction
// collaborator. Field names follow its JSON schema.
type ExtractedStudent struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	DNI      string `json:"dni"`
}

// NormalizeExtracted routes collaborator output through the same
// normalization and classification used for note-parsed students, so both
// paths produce identical records.
func NormalizeExtracted(students []ExtractedStudent) []internal.StudentRecord {
	out := make([]internal.StudentRecord, 0, len(students))
	for _, s := range students {
		name := collapseSpaces(s.Nombre)
		surname := collapseSpaces(s.Apellido)
		document := strings.ToUpper(collapseSpaces(s.DNI))
		if name == "" && surname == "" && document == "" {
			continue
		}
		out = append(out, internal.StudentRecord{
			Name:         NormalizeNameSegment(name),
			Surname:      NormalizeNameSegment(surname),
			Document:     document,
			DocumentType: DetectDocumentType(document),
		})
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
