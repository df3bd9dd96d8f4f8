package excel

import (
	"fmt"
	"regexp"
	"strings"
)

// RequiredColumns are the columns every uploaded file must contain
var RequiredColumns = []string{"name", "email"}

// DefaultPreviewRows caps the preview endpoint when no limit is configured
const DefaultPreviewRows = 50

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
)

// ImportRecord is the validation result for a single data row.
// Name and Email hold the cleaned values (trimmed, email lower-cased)
// even when the row is invalid, so callers can report them.
type ImportRecord struct {
	RowNumber int
	Name      string
	Email     string
	IsValid   bool
	Errors    []string
}

// ValidateRow validates one data row. Every violated rule is reported,
// not just the first. rowNumber is the spreadsheet row (headers are row 1,
// so the first data row is 2).
func ValidateRow(row map[string]string, rowNumber int) ImportRecord {
	var errs []string

	name := strings.TrimSpace(row["name"])
	email := strings.ToLower(strings.TrimSpace(row["email"]))

	switch {
	case name == "":
		errs = append(errs, "name is required")
	case len([]rune(name)) < 2:
		errs = append(errs, "name must be at least 2 characters")
	}
	if name != "" && digitsOnly.MatchString(name) {
		errs = append(errs, "name cannot be only digits")
	}

	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailPattern.MatchString(email) {
		errs = append(errs, "email format is invalid")
	}

	return ImportRecord{
		RowNumber: rowNumber,
		Name:      name,
		Email:     email,
		IsValid:   len(errs) == 0,
		Errors:    errs,
	}
}

// ValidateStructure checks the shape of the whole table before any per-row
// validation: all required columns present and at least one data row.
// All missing columns are reported at once.
func ValidateStructure(t *Table) (bool, []string) {
	var errs []string

	present := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		present[strings.ToLower(strings.TrimSpace(col))] = true
	}

	for _, required := range RequiredColumns {
		if !present[required] {
			errs = append(errs, fmt.Sprintf("missing required column: '%s'", required))
		}
	}

	if len(t.Rows) == 0 {
		errs = append(errs, "file contains no data rows")
	}

	return len(errs) == 0, errs
}

// Preview validates up to max rows and returns the results without
// touching storage
func Preview(t *Table, max int) []ImportRecord {
	if max <= 0 {
		max = DefaultPreviewRows
	}

	records := make([]ImportRecord, 0, min(max, len(t.Rows)))
	for i, row := range t.Rows {
		if i >= max {
			break
		}
		records = append(records, ValidateRow(row, i+2))
	}

	return records
}
