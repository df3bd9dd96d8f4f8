package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jfarango/user-upload-be/internal/api/domain"
	"github.com/jfarango/user-upload-be/internal/api/dto"
	"github.com/jfarango/user-upload-be/internal/api/model"
	"github.com/jfarango/user-upload-be/internal/excel"
)

const (
	// defaultHistoryLimit is used when no limit (or a non-positive one)
	// is requested for the upload history
	defaultHistoryLimit = 50
	// maxHistoryLimit caps the upload history page size
	maxHistoryLimit = 500
	// chartUploads is how many recent uploads feed the stats chart series
	chartUploads = 10
)

// ValidateFile handles POST /api/v1/excel/validate-file
// Checks extension and size without parsing the file
func (h *UploadHandler) ValidateFile(c *gin.Context) {
	filename, data, err := formFileBytes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return
	}

	if !isExcelFile(filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file must be an Excel file (.xlsx or .xls)",
		})
		return
	}

	if !excel.CheckSize(data) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file exceeds the maximum allowed size of 10 MB",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "file is valid",
		"filename": filename,
		"size_ok":  true,
	})
}

// Sheets handles POST /api/v1/excel/sheets
// Returns the sheet names of the uploaded workbook
func (h *UploadHandler) Sheets(c *gin.Context) {
	_, data, err := formFileBytes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return
	}

	sheets, err := excel.SheetNames(data)
	if err != nil {
		h.logger.Error("Failed to read sheet names", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to read the Excel file",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sheets": sheets,
		"total":  len(sheets),
	})
}

// Preview handles POST /api/v1/excel/preview
// Returns validated preview rows without persisting anything
func (h *UploadHandler) Preview(c *gin.Context) {
	table, ok := h.parseUpload(c)
	if !ok {
		return
	}

	records := excel.Preview(table, h.maxPreviewRows)

	previewRows := make([]dto.PreviewRowDTO, len(records))
	hasErrors := false
	for i, rec := range records {
		if !rec.IsValid {
			hasErrors = true
		}
		previewRows[i] = previewRowToDTO(rec)
	}

	c.JSON(http.StatusOK, dto.PreviewResponse{
		TotalRows:   len(table.Rows),
		PreviewRows: previewRows,
		Columns:     table.Columns,
		HasErrors:   hasErrors,
	})
}

// Upload handles POST /api/v1/excel/upload
// Creates the upload log, spawns the background import and returns
// immediately; row processing happens after the response is sent
func (h *UploadHandler) Upload(c *gin.Context) {
	filename, data, err := formFileBytes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return
	}

	table, ok := h.validateUpload(c, filename, data)
	if !ok {
		return
	}

	upload := &model.UploadLog{
		Filename:  filename,
		Status:    domain.UploadStatusProcessing,
		TotalRows: len(table.Rows),
	}

	if err := h.storage.CreateUploadLog(c.Request.Context(), upload); err != nil {
		h.logger.Error("Failed to create upload log", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start the upload",
		})
		return
	}

	// The runner outlives this request, so it gets a context detached
	// from the request's cancellation.
	go h.runner.Run(context.WithoutCancel(c.Request.Context()), table, upload.ID)

	h.logger.Info("Upload accepted",
		slog.Int64("upload_id", upload.ID),
		slog.String("filename", filename),
		slog.Int("total_rows", upload.TotalRows),
	)

	c.JSON(http.StatusOK, dto.UploadAcceptedResponse{
		Message:   "upload started",
		UploadID:  upload.ID,
		TotalRows: upload.TotalRows,
	})
}

// Stats handles GET /api/v1/excel/stats
// Returns aggregate counts plus chart-ready series for the most recent
// uploads in chronological order
func (h *UploadHandler) Stats(c *gin.Context) {
	stats, err := h.storage.GetUploadStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get upload stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get upload statistics",
		})
		return
	}

	recent, err := h.storage.ListUploadLogs(c.Request.Context(), chartUploads)
	if err != nil {
		h.logger.Error("Failed to list recent uploads", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get upload statistics",
		})
		return
	}

	chart := dto.ChartData{
		Labels:     make([]string, 0, len(recent)),
		Successful: make([]int, 0, len(recent)),
		Failed:     make([]int, 0, len(recent)),
		Dates:      make([]string, 0, len(recent)),
	}

	// ListUploadLogs returns newest first; the chart wants oldest first
	for i := len(recent) - 1; i >= 0; i-- {
		upload := recent[i]

		label := upload.Filename
		if label == "" {
			label = fmt.Sprintf("Upload #%d", upload.ID)
		}

		chart.Labels = append(chart.Labels, label)
		chart.Successful = append(chart.Successful, upload.SuccessfulRows)
		chart.Failed = append(chart.Failed, upload.FailedRows)
		chart.Dates = append(chart.Dates, upload.UploadedAt.Format("2006-01-02"))
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalUploads:    stats.TotalUploads,
		TotalSuccessful: stats.TotalSuccessful,
		TotalFailed:     stats.TotalFailed,
		ChartData:       chart,
	})
}

// ListUploadLogs handles GET /api/v1/excel/logs
// Lists upload history, newest first
func (h *UploadHandler) ListUploadLogs(c *gin.Context) {
	rawLimit := c.DefaultQuery("limit", "0")
	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "limit must be an integer",
		})
		return
	}

	uploads, err := h.storage.ListUploadLogs(c.Request.Context(), normalizeLimit(limit))
	if err != nil {
		h.logger.Error("Failed to list upload logs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list upload logs",
		})
		return
	}

	logs := make([]dto.UploadLogDTO, len(uploads))
	for i, upload := range uploads {
		logs[i] = uploadLogToDTO(&upload)
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}

// GetUploadLog handles GET /api/v1/excel/logs/:upload_id
func (h *UploadHandler) GetUploadLog(c *gin.Context) {
	uploadID, err := strconv.ParseInt(c.Param("upload_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "upload_id must be an integer",
		})
		return
	}

	upload, err := h.storage.GetUploadLog(c.Request.Context(), uploadID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "upload log not found",
			})
			return
		}
		h.logger.Error("Failed to get upload log", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get upload log",
		})
		return
	}

	c.JSON(http.StatusOK, uploadLogToDTO(upload))
}

// parseUpload reads the multipart file and runs the pre-import checks,
// writing the error response itself when anything is off
func (h *UploadHandler) parseUpload(c *gin.Context) (*excel.Table, bool) {
	filename, data, err := formFileBytes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return nil, false
	}

	return h.validateUpload(c, filename, data)
}

// validateUpload runs extension, size, parse and structure checks and
// writes the error response when anything is off. Structural errors abort
// before any row is processed and before any upload log is created.
func (h *UploadHandler) validateUpload(c *gin.Context, filename string, data []byte) (*excel.Table, bool) {
	table, err := checkUpload(filename, data, c.Query("sheet"))
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": validationErr.Errors,
			})
		case errors.Is(err, excel.ErrParse):
			h.logger.Error("Failed to parse spreadsheet",
				slog.String("filename", filename),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "failed to read the Excel file",
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	return table, true
}

// checkUpload is the pre-import gate: extension, size, parse, structure
func checkUpload(filename string, data []byte, sheet string) (*excel.Table, error) {
	if !isExcelFile(filename) {
		return nil, errors.New("file must be an Excel file (.xlsx or .xls)")
	}

	if !excel.CheckSize(data) {
		return nil, errors.New("file exceeds the maximum allowed size of 10 MB")
	}

	table, err := excel.Read(data, sheet)
	if err != nil {
		return nil, err
	}

	if ok, structErrors := excel.ValidateStructure(table); !ok {
		return nil, domain.NewValidationError(structErrors)
	}

	return table, nil
}

// formFileBytes reads the uploaded multipart file into memory
func formFileBytes(c *gin.Context) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}

	return fileHeader.Filename, data, nil
}

// isExcelFile reports whether the filename carries an accepted extension
func isExcelFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

// normalizeLimit clamps a requested history page size into the valid range
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

func previewRowToDTO(rec excel.ImportRecord) dto.PreviewRowDTO {
	rowErrors := rec.Errors
	if rowErrors == nil {
		rowErrors = []string{}
	}

	return dto.PreviewRowDTO{
		RowNumber: rec.RowNumber,
		Name:      rec.Name,
		Email:     rec.Email,
		IsValid:   rec.IsValid,
		Errors:    rowErrors,
	}
}

func uploadLogToDTO(upload *model.UploadLog) dto.UploadLogDTO {
	out := dto.UploadLogDTO{
		ID:             upload.ID,
		Filename:       upload.Filename,
		Status:         upload.Status,
		TotalRows:      upload.TotalRows,
		SuccessfulRows: upload.SuccessfulRows,
		FailedRows:     upload.FailedRows,
		SuccessRate:    upload.SuccessRate(),
		UploadedAt:     upload.UploadedAt.Format(time.RFC3339),
	}

	if upload.ErrorMessage.Valid {
		out.ErrorMessage = upload.ErrorMessage.String
	}

	return out
}
