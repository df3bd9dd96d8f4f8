package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jfarango/user-upload-be/internal/api/domain"
	"github.com/jfarango/user-upload-be/internal/api/dto"
	"github.com/jfarango/user-upload-be/internal/api/model"
	"github.com/jfarango/user-upload-be/internal/excel"
)

// maxErrorMessageLen caps the error message stored on a failed upload log
const maxErrorMessageLen = 500

// UserStore is the slice of user persistence the runner needs
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

// UploadLogStore finalizes the persisted upload log for a job
type UploadLogStore interface {
	MarkUploadCompleted(ctx context.Context, id int64, successful, failed int) error
	MarkUploadFailed(ctx context.Context, id int64, message string) error
}

// ProgressSink receives per-row progress messages. Delivery failures are
// the sink's problem; the runner never checks them.
type ProgressSink interface {
	Broadcast(message any)
}

// Config holds runner dependencies
type Config struct {
	Logger   *slog.Logger
	Users    UserStore
	Uploads  UploadLogStore
	Progress ProgressSink
	// RowDelay is an optional pause between rows so progress is observable
	RowDelay time.Duration
}

// Runner executes one bulk-import job as a detached background task.
// The caller creates the upload log (status=processing, total_rows set)
// and responds to the client before Run starts; the persisted log status
// is the only externally observable completion signal.
type Runner struct {
	logger   *slog.Logger
	users    UserStore
	uploads  UploadLogStore
	progress ProgressSink
	rowDelay time.Duration
}

// NewRunner creates a new import job runner
func NewRunner(cfg *Config) *Runner {
	return &Runner{
		logger:   cfg.Logger,
		users:    cfg.Users,
		uploads:  cfg.Uploads,
		progress: cfg.Progress,
		rowDelay: cfg.RowDelay,
	}
}

// Run processes every row of the table in source order and finalizes the
// upload log. Faults are caught here at the task boundary and recorded on
// the log row; they never propagate to the caller, which has already
// returned its response. Once started, a job runs to completion or
// failure; there is no mid-run cancellation.
func (r *Runner) Run(ctx context.Context, table *excel.Table, uploadID int64) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, uploadID, fmt.Errorf("import panicked: %v", p))
		}
	}()

	if err := r.process(ctx, table, uploadID); err != nil {
		r.fail(ctx, uploadID, err)
	}
}

func (r *Runner) process(ctx context.Context, table *excel.Table, uploadID int64) error {
	total := len(table.Rows)
	if total == 0 {
		return errors.New("no data rows to import")
	}

	r.logger.Info("Import started",
		slog.Int64("upload_id", uploadID),
		slog.Int("total_rows", total),
	)

	successful := 0
	failed := 0

	for i, row := range table.Rows {
		// headers occupy spreadsheet row 1
		rowNumber := i + 2

		if r.importRow(ctx, row, rowNumber, uploadID) {
			successful++
		} else {
			failed++
		}

		current := i + 1
		r.progress.Broadcast(dto.UploadProgressResponse{
			Current:    current,
			Total:      total,
			Percentage: roundPercent(current, total),
			Successful: successful,
			Failed:     failed,
			Status:     "processing",
		})

		if r.rowDelay > 0 {
			time.Sleep(r.rowDelay)
		}
	}

	if err := r.uploads.MarkUploadCompleted(ctx, uploadID, successful, failed); err != nil {
		return err
	}

	r.progress.Broadcast(dto.UploadProgressResponse{
		Current:    total,
		Total:      total,
		Percentage: 100,
		Successful: successful,
		Failed:     failed,
		Status:     "completed",
	})

	r.logger.Info("Import completed",
		slog.Int64("upload_id", uploadID),
		slog.Int("successful", successful),
		slog.Int("failed", failed),
	)

	return nil
}

// importRow validates and inserts a single row, returning true on success.
// Row-level problems (validation failure, duplicate email, insert error)
// count the row as failed without aborting the batch; each insert is its
// own transaction, so earlier successes stay committed.
func (r *Runner) importRow(ctx context.Context, row map[string]string, rowNumber int, uploadID int64) bool {
	record := excel.ValidateRow(row, rowNumber)
	if !record.IsValid {
		return false
	}

	// Duplicate policy: first occurrence wins. Rows matching an existing
	// user, whether pre-existing or inserted earlier in this same file,
	// are rejected, not merged.
	_, err := r.users.GetUserByEmail(ctx, record.Email)
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrUserNotFound):
		// proceed with insert
	default:
		r.logger.Error("Failed to check for existing user",
			slog.Int64("upload_id", uploadID),
			slog.Int("row", rowNumber),
			slog.String("error", err.Error()),
		)
		return false
	}

	user := &model.User{
		Name:     record.Name,
		Email:    record.Email,
		IsActive: true,
	}

	if err := r.users.CreateUser(ctx, user); err != nil {
		// Lost a race against a concurrent duplicate, or the store is
		// unhappy; either way the row is not retried.
		r.logger.Error("Failed to insert user",
			slog.Int64("upload_id", uploadID),
			slog.Int("row", rowNumber),
			slog.String("error", err.Error()),
		)
		return false
	}

	return true
}

// fail records a terminal failure on the upload log and emits the final
// failed progress message
func (r *Runner) fail(ctx context.Context, uploadID int64, cause error) {
	message := truncate(cause.Error(), maxErrorMessageLen)

	r.logger.Error("Import failed",
		slog.Int64("upload_id", uploadID),
		slog.String("error", message),
	)

	if err := r.uploads.MarkUploadFailed(ctx, uploadID, message); err != nil {
		r.logger.Error("Failed to record import failure",
			slog.Int64("upload_id", uploadID),
			slog.String("error", err.Error()),
		)
	}

	r.progress.Broadcast(dto.UploadProgressResponse{
		Status: "failed",
		Error:  message,
	})
}

// roundPercent computes current/total as a percentage with two decimals
func roundPercent(current, total int) float64 {
	pct := float64(current) / float64(total) * 100
	return math.Round(pct*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
