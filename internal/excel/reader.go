package excel

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize is the largest accepted spreadsheet, in bytes (10 MiB)
const MaxFileSize = 10 * 1024 * 1024

// ErrParse is returned when the bytes are not a readable spreadsheet or the
// requested sheet does not exist
var ErrParse = errors.New("invalid spreadsheet")

// Table is one parsed sheet. Column headers are trimmed and lower-cased;
// rows that were entirely empty across all columns are dropped.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// CheckSize reports whether the file is within the accepted size limit
func CheckSize(data []byte) bool {
	return len(data) <= MaxFileSize
}

// Read parses spreadsheet bytes into a Table. An empty sheet name selects
// the first sheet in the workbook.
func Read(data []byte, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if len(rows) == 0 {
		return &Table{}, nil
	}

	columns := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		columns[i] = strings.ToLower(strings.TrimSpace(header))
	}

	table := &Table{Columns: columns}

	for _, raw := range rows[1:] {
		row := make(map[string]string, len(columns))
		empty := true
		for i, col := range columns {
			var cell string
			if i < len(raw) {
				cell = raw[i]
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			row[col] = cell
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// SheetNames returns the workbook's sheet names in order
func SheetNames(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}
