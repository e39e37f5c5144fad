package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryLatestSummary(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "class_id", "month", "total_days", "present_days", "absent_days", "attendance_rate", "created_at"}).
		AddRow("att-1", "stu-1", "class-1", "2026-06", 120, 114, 6, 95.0, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_summaries WHERE student_id = $1 AND class_id = $2 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("stu-1", "class-1").
		WillReturnRows(rows)

	summary, err := repo.LatestSummary(context.Background(), "stu-1", "class-1")
	require.NoError(t, err)
	assert.Equal(t, 114, summary.PresentDays)
	assert.Equal(t, 95.0, summary.AttendanceRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryLatestSummaryNone(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_summaries WHERE student_id = $1 AND class_id = $2")).
		WithArgs("stu-1", "class-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestSummary(context.Background(), "stu-1", "class-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
