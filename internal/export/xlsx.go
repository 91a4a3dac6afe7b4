package export

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"certroster/internal"
)

// RosterToXLSX writes one row per student with the deal-level columns
// repeated; a deal with no parsed students still gets one row so the sheet
// never comes out empty.
func RosterToXLSX(dealID string, result internal.RosterResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"deal_id", "training_name", "training_location", "training_date", "secondary_training_date",
		"client_name", "contact_name", "contact_email",
		"name", "surname", "document", "document_type",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	students := result.Students
	if len(students) == 0 {
		students = []internal.StudentRecord{{}}
	}

	for i, student := range students {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, dealID)
		set(2, result.TrainingName)
		set(3, result.TrainingLocation)
		set(4, result.TrainingDate)
		set(5, result.SecondaryTrainingDate)
		set(6, result.ClientName)
		set(7, result.ContactName)
		set(8, result.ContactEmail)
		set(9, student.Name)
		set(10, student.Surname)
		set(11, student.Document)
		set(12, student.DocumentType)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
