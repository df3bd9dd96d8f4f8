package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jfarango/user-upload-be/internal/api/domain"
	"github.com/jfarango/user-upload-be/internal/api/model"
	"github.com/jfarango/user-upload-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// CreateUser inserts a new user. The email must already be normalized
// (trimmed, lower-cased). Returns domain.ErrDuplicateEmail when the email
// is taken.
func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := s.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail looks a user up by normalized email.
// Returns domain.ErrUserNotFound when no row matches.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, name, email, is_active, created_at
		FROM users
		WHERE email = $1
	`

	err := s.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID looks a user up by id
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, name, email, is_active, created_at
		FROM users
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by id
func (s *Storage) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	query := `
		SELECT id, name, email, is_active, created_at
		FROM users
		ORDER BY id
	`

	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// CreateUploadLog persists a new upload log row and fills in the
// store-assigned id and timestamp
func (s *Storage) CreateUploadLog(ctx context.Context, upload *model.UploadLog) error {
	query := `
		INSERT INTO upload_logs (filename, status, total_rows, successful_rows, failed_rows)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		upload.Filename,
		upload.Status,
		upload.TotalRows,
		upload.SuccessfulRows,
		upload.FailedRows,
	).Scan(&upload.ID, &upload.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create upload log: %w", err)
	}

	return nil
}

// GetUploadLog retrieves one upload log by id.
// Returns domain.ErrUploadNotFound when no row matches.
func (s *Storage) GetUploadLog(ctx context.Context, id int64) (*model.UploadLog, error) {
	var upload model.UploadLog
	query := `
		SELECT id, filename, status, total_rows, successful_rows, failed_rows, error_message, uploaded_at
		FROM upload_logs
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &upload, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, fmt.Errorf("failed to get upload log: %w", err)
	}

	return &upload, nil
}

// ListUploadLogs returns the most recent upload logs, newest first
func (s *Storage) ListUploadLogs(ctx context.Context, limit int) ([]model.UploadLog, error) {
	var uploads []model.UploadLog
	query := `
		SELECT id, filename, status, total_rows, successful_rows, failed_rows, error_message, uploaded_at
		FROM upload_logs
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $1
	`

	if err := s.db.SelectContext(ctx, &uploads, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list upload logs: %w", err)
	}

	return uploads, nil
}

// MarkUploadCompleted finalizes an upload log with its row counts
func (s *Storage) MarkUploadCompleted(ctx context.Context, id int64, successful, failed int) error {
	query := `
		UPDATE upload_logs
		SET status = $1, successful_rows = $2, failed_rows = $3
		WHERE id = $4
	`

	if _, err := s.db.ExecContext(ctx, query, domain.UploadStatusCompleted, successful, failed, id); err != nil {
		return fmt.Errorf("failed to mark upload completed: %w", err)
	}

	return nil
}

// MarkUploadFailed records a terminal failure with its error message
func (s *Storage) MarkUploadFailed(ctx context.Context, id int64, message string) error {
	query := `
		UPDATE upload_logs
		SET status = $1, error_message = $2
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, domain.UploadStatusFailed, message, id); err != nil {
		return fmt.Errorf("failed to mark upload failed: %w", err)
	}

	return nil
}

// UploadStats holds aggregate counts over all upload logs
type UploadStats struct {
	TotalUploads    int64 `db:"total_uploads"`
	TotalSuccessful int64 `db:"total_successful"`
	TotalFailed     int64 `db:"total_failed"`
}

// GetUploadStats aggregates counts over the whole upload history
func (s *Storage) GetUploadStats(ctx context.Context) (*UploadStats, error) {
	var stats UploadStats
	query := `
		SELECT
			COUNT(*) AS total_uploads,
			COALESCE(SUM(successful_rows), 0) AS total_successful,
			COALESCE(SUM(failed_rows), 0) AS total_failed
		FROM upload_logs
	`

	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get upload stats: %w", err)
	}

	return &stats, nil
}
