package internal

// StudentRecord is one enrolled student as shown in the roster table.
// The JSON field names are a stable contract with the front-end and
// previously persisted session data.
type StudentRecord struct {
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Document     string `json:"document"`
	DocumentType string `json:"documentType"`
}

type RosterResult struct {
	TrainingDate          string          `json:"trainingDate"`
	SecondaryTrainingDate string          `json:"secondaryTrainingDate"`
	TrainingLocation      string          `json:"trainingLocation"`
	TrainingName          string          `json:"trainingName"`
	ClientName            string          `json:"clientName"`
	ContactName           string          `json:"contactName"`
	ContactEmail          string          `json:"contactEmail"`
	ContactPersonID       string          `json:"contactPersonId"`
	Students              []StudentRecord `json:"students"`
}

// Deal is the raw CRM record. Custom fields are keyed by their CRM field
// hash and keep whatever shape the API returned (string, number, array,
// nested object).
type Deal struct {
	ID  int
	Raw map[string]any
}

func (d Deal) Field(key string) any {
	if d.Raw == nil {
		return nil
	}
	return d.Raw[key]
}

type Note struct {
	Content string
	AddTime string
}

type Person struct {
	ID    string
	Name  string
	Email string
}

// FieldOption is one entry of a custom field's option list. Identifier
// fields stay untyped because the CRM mixes numeric ids, string values and
// keys across field types.
type FieldOption struct {
	ID    any
	Value any
	Key   any
	Label string
	Name  string
}

type DealField struct {
	ID      int
	Key     string
	Options []FieldOption
}

// RawStudent is one pipe-delimited tuple from the roster note, before
// normalization.
type RawStudent struct {
	Name     string
	Surname  string
	Document string
}

type DealRun struct {
	ID               int
	DealID           string
	TrainingName     string
	TrainingLocation string
	TrainingDate     string
	SecondaryDate    string
	StudentCount     int
	TotalMs          float64
	CreatedAt        string
}
