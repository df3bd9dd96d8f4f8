package model

import (
	"database/sql"
	"time"
)

// User is a registered user record
type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// UploadLog records one bulk-import attempt tied to one uploaded file
type UploadLog struct {
	ID             int64          `db:"id"`
	Filename       string         `db:"filename"`
	Status         string         `db:"status"`
	TotalRows      int            `db:"total_rows"`
	SuccessfulRows int            `db:"successful_rows"`
	FailedRows     int            `db:"failed_rows"`
	ErrorMessage   sql.NullString `db:"error_message"`
	UploadedAt     time.Time      `db:"uploaded_at"`
}

// SuccessRate returns the percentage of rows imported successfully,
// rounded to two decimals. Zero when the upload had no rows.
func (u *UploadLog) SuccessRate() float64 {
	if u.TotalRows == 0 {
		return 0
	}
	rate := float64(u.SuccessfulRows) / float64(u.TotalRows) * 100
	return float64(int(rate*100+0.5)) / 100
}
