package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// AttendanceRepository reads attendance summaries for report cards.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// LatestSummary returns the most recently created summary row for the
// student and class, or sql.ErrNoRows. The row is not filtered to any
// term or month; the report card copies whichever rollup was written last.
func (r *AttendanceRepository) LatestSummary(ctx context.Context, studentID, classID string) (*models.AttendanceSummary, error) {
	const query = `SELECT id, student_id, class_id, month, total_days, present_days, absent_days, attendance_rate, created_at
        FROM attendance_summaries WHERE student_id = $1 AND class_id = $2
        ORDER BY created_at DESC LIMIT 1`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID, classID); err != nil {
		return nil, fmt.Errorf("latest attendance summary: %w", err)
	}
	return &summary, nil
}
