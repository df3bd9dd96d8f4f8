package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name       string
		row        map[string]string
		rowNumber  int
		wantValid  bool
		wantName   string
		wantEmail  string
		wantErrors []string
	}{
		{
			name:      "valid row",
			row:       map[string]string{"name": "Alice", "email": "alice@test.com"},
			rowNumber: 2,
			wantValid: true,
			wantName:  "Alice",
			wantEmail: "alice@test.com",
		},
		{
			name:      "values are trimmed and email lower-cased",
			row:       map[string]string{"name": "  Bob  ", "email": "  Bob@Test.COM "},
			rowNumber: 3,
			wantValid: true,
			wantName:  "Bob",
			wantEmail: "bob@test.com",
		},
		{
			name:       "purely numeric name",
			row:        map[string]string{"name": "12345", "email": "num@test.com"},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "12345",
			wantEmail:  "num@test.com",
			wantErrors: []string{"name cannot be only digits"},
		},
		{
			name:       "single character name",
			row:        map[string]string{"name": "A", "email": "a@test.com"},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "A",
			wantEmail:  "a@test.com",
			wantErrors: []string{"name must be at least 2 characters"},
		},
		{
			name:       "missing name",
			row:        map[string]string{"name": "   ", "email": "x@test.com"},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "",
			wantEmail:  "x@test.com",
			wantErrors: []string{"name is required"},
		},
		{
			name:       "invalid email format",
			row:        map[string]string{"name": "Bob", "email": "not-an-email"},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "Bob",
			wantEmail:  "not-an-email",
			wantErrors: []string{"email format is invalid"},
		},
		{
			name:       "email with single letter tld",
			row:        map[string]string{"name": "Bob", "email": "bob@test.c"},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "Bob",
			wantEmail:  "bob@test.c",
			wantErrors: []string{"email format is invalid"},
		},
		{
			name:       "missing email",
			row:        map[string]string{"name": "Bob", "email": ""},
			rowNumber:  2,
			wantValid:  false,
			wantName:   "Bob",
			wantEmail:  "",
			wantErrors: []string{"email is required"},
		},
		{
			name:      "all rules reported at once",
			row:       map[string]string{"name": "7", "email": "bad"},
			rowNumber: 4,
			wantValid: false,
			wantName:  "7",
			wantEmail: "bad",
			wantErrors: []string{
				"name must be at least 2 characters",
				"name cannot be only digits",
				"email format is invalid",
			},
		},
		{
			name:       "columns absent entirely",
			row:        map[string]string{},
			rowNumber:  2,
			wantValid:  false,
			wantErrors: []string{"name is required", "email is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ValidateRow(tt.row, tt.rowNumber)

			assert.Equal(t, tt.rowNumber, rec.RowNumber)
			assert.Equal(t, tt.wantValid, rec.IsValid)
			assert.Equal(t, tt.wantName, rec.Name)
			assert.Equal(t, tt.wantEmail, rec.Email)

			if tt.wantValid {
				assert.Empty(t, rec.Errors)
			} else {
				assert.Equal(t, tt.wantErrors, rec.Errors)
			}
		})
	}
}

func TestValidateRow_Idempotent(t *testing.T) {
	row := map[string]string{"name": " Alice ", "email": "ALICE@test.com"}

	first := ValidateRow(row, 2)
	second := ValidateRow(row, 2)

	assert.Equal(t, first, second)
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name       string
		table      *Table
		wantValid  bool
		wantErrors []string
	}{
		{
			name: "valid table",
			table: &Table{
				Columns: []string{"name", "email"},
				Rows:    []map[string]string{{"name": "Alice", "email": "alice@test.com"}},
			},
			wantValid: true,
		},
		{
			name: "extra columns are allowed",
			table: &Table{
				Columns: []string{"name", "email", "phone"},
				Rows:    []map[string]string{{"name": "Alice", "email": "alice@test.com", "phone": "123"}},
			},
			wantValid: true,
		},
		{
			name: "missing email column",
			table: &Table{
				Columns: []string{"name"},
				Rows:    []map[string]string{{"name": "Alice"}},
			},
			wantValid:  false,
			wantErrors: []string{"missing required column: 'email'"},
		},
		{
			name: "all missing columns reported at once",
			table: &Table{
				Columns: []string{"phone"},
				Rows:    []map[string]string{{"phone": "123"}},
			},
			wantValid: false,
			wantErrors: []string{
				"missing required column: 'name'",
				"missing required column: 'email'",
			},
		},
		{
			name: "empty table",
			table: &Table{
				Columns: []string{"name", "email"},
			},
			wantValid:  false,
			wantErrors: []string{"file contains no data rows"},
		},
		{
			name:      "empty table with no columns",
			table:     &Table{},
			wantValid: false,
			wantErrors: []string{
				"missing required column: 'name'",
				"missing required column: 'email'",
				"file contains no data rows",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := ValidateStructure(tt.table)

			assert.Equal(t, tt.wantValid, valid)
			if tt.wantValid {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, tt.wantErrors, errs)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	table := &Table{
		Columns: []string{"name", "email"},
		Rows: []map[string]string{
			{"name": "Alice", "email": "alice@test.com"},
			{"name": "Bob", "email": "not-an-email"},
			{"name": "Carol", "email": "carol@test.com"},
		},
	}

	records := Preview(table, 2)

	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].RowNumber)
	assert.True(t, records[0].IsValid)
	assert.Equal(t, 3, records[1].RowNumber)
	assert.False(t, records[1].IsValid)
}

func TestPreview_DefaultCap(t *testing.T) {
	table := &Table{Columns: []string{"name", "email"}}
	for i := 0; i < DefaultPreviewRows+10; i++ {
		table.Rows = append(table.Rows, map[string]string{
			"name": "User", "email": "user@test.com",
		})
	}

	records := Preview(table, 0)

	assert.Len(t, records, DefaultPreviewRows)
}
