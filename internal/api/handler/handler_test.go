package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jfarango/user-upload-be/internal/api/domain"
	"github.com/jfarango/user-upload-be/internal/excel"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: defaultHistoryLimit},
		{name: "negative falls back to default", limit: -5, want: defaultHistoryLimit},
		{name: "in range passes through", limit: 10, want: 10},
		{name: "at max passes through", limit: maxHistoryLimit, want: maxHistoryLimit},
		{name: "above max is clamped", limit: 10000, want: maxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeLimit(tt.limit))
		})
	}
}

func TestIsExcelFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "xlsx", filename: "users.xlsx", want: true},
		{name: "xls", filename: "users.xls", want: true},
		{name: "uppercase extension", filename: "USERS.XLSX", want: true},
		{name: "csv", filename: "users.csv", want: false},
		{name: "no extension", filename: "users", want: false},
		{name: "xlsx in the middle", filename: "users.xlsx.exe", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isExcelFile(tt.filename))
		})
	}
}

func workbookBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestCheckUpload(t *testing.T) {
	valid := workbookBytes(t,
		[]any{"name", "email"},
		[]any{"Alice", "alice@test.com"},
	)

	t.Run("valid file", func(t *testing.T) {
		table, err := checkUpload("users.xlsx", valid, "")
		require.NoError(t, err)
		require.NotNil(t, table)
		assert.Len(t, table.Rows, 1)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := checkUpload("users.csv", valid, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".xlsx or .xls")
	})

	t.Run("oversized file", func(t *testing.T) {
		_, err := checkUpload("users.xlsx", make([]byte, excel.MaxFileSize+1), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maximum allowed size")
	})

	t.Run("corrupt bytes", func(t *testing.T) {
		_, err := checkUpload("users.xlsx", []byte("garbage"), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, excel.ErrParse)
	})

	t.Run("missing required column", func(t *testing.T) {
		missing := workbookBytes(t,
			[]any{"name"},
			[]any{"Alice"},
		)

		_, err := checkUpload("users.xlsx", missing, "")
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, []string{"missing required column: 'email'"}, validationErr.Errors)
	})

	t.Run("no data rows", func(t *testing.T) {
		empty := workbookBytes(t, []any{"name", "email"})

		_, err := checkUpload("users.xlsx", empty, "")
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, []string{"file contains no data rows"}, validationErr.Errors)
	})
}

func TestIsPing(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{name: "bare ping", payload: "ping", want: true},
		{name: "json string ping", payload: `"ping"`, want: true},
		{name: "ping with whitespace", payload: " ping \n", want: true},
		{name: "other payload", payload: "hello", want: false},
		{name: "empty payload", payload: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPing([]byte(tt.payload)))
		})
	}
}
