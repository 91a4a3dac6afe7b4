package roster

import (
	"context"
	"errors"
	"testing"

	"certroster/internal"
	"certroster/internal/config"
)

type fakeCRM struct {
	deal     internal.Deal
	dealErr  error
	orgName  string
	person   internal.Person
	notes    []internal.Note
	notesErr error

	orgCalls    int
	personCalls int
}

func (f *fakeCRM) GetDeal(ctx context.Context, dealID string) (internal.Deal, error) {
	return f.deal, f.dealErr
}

func (f *fakeCRM) GetOrganization(ctx context.Context, orgID string) (string, error) {
	f.orgCalls++
	return f.orgName, nil
}

func (f *fakeCRM) GetPerson(ctx context.Context, personID string) (internal.Person, error) {
	f.personCalls++
	return f.person, nil
}

func (f *fakeCRM) GetNotes(ctx context.Context, dealID string, start, limit int) ([]internal.Note, error) {
	return f.notes, f.notesErr
}

type fakeResolver struct {
	labels map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, fieldKey string, raw any) string {
	if label, ok := f.labels[fieldKey]; ok {
		return label
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}

func testConfig() config.Config {
	return config.Config{
		TrainingDateField:     "dateField",
		TrainingLocationField: "locationField",
		TrainingNameField:     "nameField",
	}
}

func TestAssembleEndToEnd(t *testing.T) {
	crmFake := &fakeCRM{
		deal: internal.Deal{
			ID: 42,
			Raw: map[string]any{
				"id":            float64(42),
				"dateField":     "2024-03-01",
				"locationField": float64(27),
				"nameField":     float64(9),
				"org_id":        map[string]any{"value": float64(7), "name": "Ignored SL"},
				"person_id":     map[string]any{"value": float64(99)},
			},
		},
		orgName: "Vertical Works SL",
		person:  internal.Person{ID: "99", Name: "Carla Ruiz", Email: "carla@verticalworks.example"},
		notes: []internal.Note{
			{Content: "Alumnos del deal: ana|garcia|12345678z", AddTime: "2024-02-20 10:00:00"},
		},
	}
	resolver := &fakeResolver{labels: map[string]string{
		"locationField": "C/ Primavera, 1, 28500, Arganda del Rey, Madrid",
		"nameField":     "Trabajos Verticales Nivel 1",
	}}

	assembler := NewAssembler(crmFake, resolver, testConfig())
	result, err := assembler.Assemble(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}

	if result.TrainingDate != "2024-03-01" {
		t.Fatalf("training date: %q", result.TrainingDate)
	}
	// Rope-access courses always span two consecutive days.
	if result.SecondaryTrainingDate != "2024-03-02" {
		t.Fatalf("secondary date: %q", result.SecondaryTrainingDate)
	}
	if result.TrainingLocation != "Madrid" {
		t.Fatalf("location: %q", result.TrainingLocation)
	}
	if result.TrainingName != "Trabajos Verticales Nivel 1" {
		t.Fatalf("training name: %q", result.TrainingName)
	}
	if result.ClientName != "Vertical Works SL" {
		t.Fatalf("client: %q", result.ClientName)
	}
	if result.ContactName != "Carla Ruiz" || result.ContactEmail != "carla@verticalworks.example" {
		t.Fatalf("contact: %q %q", result.ContactName, result.ContactEmail)
	}
	if result.ContactPersonID != "99" {
		t.Fatalf("person id: %q", result.ContactPersonID)
	}

	if len(result.Students) != 1 {
		t.Fatalf("students: %+v", result.Students)
	}
	student := result.Students[0]
	if student.Name != "ANA" || student.Surname != "GARCÍA" {
		t.Fatalf("student names: %+v", student)
	}
	if student.Document != "12345678z" || student.DocumentType != "DNI" {
		t.Fatalf("student document: %+v", student)
	}
}

func TestAssembleDealNamesSkipLookups(t *testing.T) {
	crmFake := &fakeCRM{
		deal: internal.Deal{
			Raw: map[string]any{
				"org_name":    "Inline SL",
				"person_name": "Inline Person",
				"person_id":   float64(5),
			},
		},
		person: internal.Person{ID: "5", Name: "Other", Email: "other@example.test"},
	}
	resolver := &fakeResolver{}

	assembler := NewAssembler(crmFake, resolver, testConfig())
	result, err := assembler.Assemble(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}

	if crmFake.orgCalls != 0 {
		t.Fatalf("org lookup should be skipped, calls=%d", crmFake.orgCalls)
	}
	// The person is still fetched for the email even when the name is inline.
	if crmFake.personCalls != 1 {
		t.Fatalf("person calls=%d", crmFake.personCalls)
	}
	if result.ClientName != "Inline SL" || result.ContactName != "Inline Person" {
		t.Fatalf("names: %q %q", result.ClientName, result.ContactName)
	}
	if result.ContactEmail != "other@example.test" {
		t.Fatalf("email: %q", result.ContactEmail)
	}
}

func TestAssembleMissingDealID(t *testing.T) {
	assembler := NewAssembler(&fakeCRM{}, &fakeResolver{}, testConfig())
	if _, err := assembler.Assemble(context.Background(), "   "); err == nil {
		t.Fatal("expected error")
	}
}

func TestAssembleDealFetchFails(t *testing.T) {
	crmFake := &fakeCRM{dealErr: errors.New("boom")}
	assembler := NewAssembler(crmFake, &fakeResolver{}, testConfig())
	if _, err := assembler.Assemble(context.Background(), "42"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAssembleNotesFailureDegrades(t *testing.T) {
	crmFake := &fakeCRM{
		deal:     internal.Deal{Raw: map[string]any{}},
		notesErr: errors.New("timeout"),
	}
	assembler := NewAssembler(crmFake, &fakeResolver{}, testConfig())
	result, err := assembler.Assemble(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if result.Students == nil || len(result.Students) != 0 {
		t.Fatalf("students: %+v", result.Students)
	}
}

func TestNormalizeExtracted(t *testing.T) {
	students := NormalizeExtracted([]ExtractedStudent{
		{Nombre: "  jose  ", Apellido: "garcia", DNI: " 12345678z "},
		{Nombre: "", Apellido: "", DNI: ""},
	})
	if len(students) != 1 {
		t.Fatalf("len=%d", len(students))
	}
	got := students[0]
	if got.Name != "JOSÉ" || got.Surname != "GARCÍA" || got.Document != "12345678Z" || got.DocumentType != "DNI" {
		t.Fatalf("record: %+v", got)
	}
}
