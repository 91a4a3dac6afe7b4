package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"certroster/internal"
	"certroster/internal/config"
	"certroster/internal/crm"
)

// CRM is the slice of the Pipedrive client the assembler consumes.
type CRM interface {
	GetDeal(ctx context.Context, dealID string) (internal.Deal, error)
	GetOrganization(ctx context.Context, orgID string) (string, error)
	GetPerson(ctx context.Context, personID string) (internal.Person, error)
	GetNotes(ctx context.Context, dealID string, start, limit int) ([]internal.Note, error)
}

type FieldValueResolver interface {
	Resolve(ctx context.Context, fieldKey string, raw any) string
}

// Assembler builds the per-deal RosterResult. Only the deal fetch itself is
// fatal; every other lookup degrades to an empty default, since the result
// is reviewed by a human before certificates go out.
type Assembler struct {
	crm    CRM
	fields FieldValueResolver
	cfg    config.Config
}

func NewAssembler(crmClient CRM, fields FieldValueResolver, cfg config.Config) *Assembler {
	return &Assembler{crm: crmClient, fields: fields, cfg: cfg}
}

func (a *Assembler) Assemble(ctx context.Context, dealID string) (internal.RosterResult, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return internal.RosterResult{}, errors.New("missing deal id")
	}

	deal, err := a.crm.GetDeal(ctx, dealID)
	if err != nil {
		return internal.RosterResult{}, fmt.Errorf("fetch deal %s: %w", dealID, err)
	}

	result := internal.RosterResult{Students: []internal.StudentRecord{}}

	dates := ExtractDates(deal.Field(a.cfg.TrainingDateField))
	result.TrainingDate = dates.Primary
	result.SecondaryTrainingDate = dates.Secondary

	location := a.fields.Resolve(ctx, a.cfg.TrainingLocationField, deal.Field(a.cfg.TrainingLocationField))
	result.TrainingLocation = MapTrainingLocation(location)
	result.TrainingName = a.fields.Resolve(ctx, a.cfg.TrainingNameField, deal.Field(a.cfg.TrainingNameField))

	if name, ok := deal.Field("org_name").(string); ok {
		result.ClientName = strings.TrimSpace(name)
	}
	if name, ok := deal.Field("person_name").(string); ok {
		result.ContactName = strings.TrimSpace(name)
	}

	orgID := crm.ExtractEntityID(deal.Field("org_id"))
	personID := crm.ExtractEntityID(deal.Field("person_id"))
	result.ContactPersonID = personID

	// Organisation and person lookups are independent; run them together.
	var (
		wg      sync.WaitGroup
		orgName string
		person  internal.Person
	)
	if result.ClientName == "" && orgID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := a.crm.GetOrganization(ctx, orgID)
			if err != nil {
				log.Printf("organisation lookup failed for deal %s: %v", dealID, err)
				return
			}
			orgName = name
		}()
	}
	if personID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.crm.GetPerson(ctx, personID)
			if err != nil {
				log.Printf("person lookup failed for deal %s: %v", dealID, err)
				return
			}
			person = p
		}()
	}
	wg.Wait()

	if result.ClientName == "" {
		result.ClientName = orgName
	}
	if result.ContactName == "" {
		result.ContactName = person.Name
	}
	result.ContactEmail = person.Email

	limit := a.cfg.NotesPageLimit
	if limit <= 0 {
		limit = 100
	}
	notes, err := a.crm.GetNotes(ctx, dealID, 0, limit)
	if err != nil {
		log.Printf("notes lookup failed for deal %s: %v", dealID, err)
		notes = nil
	}
	result.Students = BuildStudents(ExtractStudents(notes))

	applyRopeAccessDates(&result)
	return result, nil
}

// BuildStudents normalizes raw note tuples into final records: names
// repaired and uppercased, document kept as typed (trimmed only), type
// classified.
func BuildStudents(raws []internal.RawStudent) []internal.StudentRecord {
	students := make([]internal.StudentRecord, 0, len(raws))
	for _, raw := range raws {
		document := strings.TrimSpace(raw.Document)
		students = append(students, internal.StudentRecord{
			Name:         NormalizeNameSegment(raw.Name),
			Surname:      NormalizeNameSegment(raw.Surname),
			Document:     document,
			DocumentType: DetectDocumentType(document),
		})
	}
	return students
}

// Rope-access courses always run two consecutive days: the second date is
// forced to primary + 1 whenever it disagrees.
func applyRopeAccessDates(result *internal.RosterResult) {
	if !IsRopeAccessTraining(result.TrainingName) || result.TrainingDate == "" {
		return
	}
	desired := AddDaysToISODate(result.TrainingDate, 1)
	if desired != "" && result.SecondaryTrainingDate != desired {
		result.SecondaryTrainingDate = desired
	}
}
