package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExamResultRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamResultRepositoryListPercentages(t *testing.T) {
	db, mock, cleanup := newExamResultRepoMock(t)
	defer cleanup()
	repo := NewExamResultRepository(db)

	rows := sqlmock.NewRows([]string{"percentage"}).
		AddRow(70.0).
		AddRow(82.5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT percentage FROM exam_results\n        WHERE student_id = $1 AND class_id = $2 AND subject_id = $3")).
		WithArgs("stu-1", "class-1", "subj-1").
		WillReturnRows(rows)

	percentages, err := repo.ListPercentages(context.Background(), "stu-1", "class-1", "subj-1")
	require.NoError(t, err)
	require.Len(t, percentages, 2)
	assert.Equal(t, 70.0, percentages[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamResultRepositoryListPercentagesNone(t *testing.T) {
	db, mock, cleanup := newExamResultRepoMock(t)
	defer cleanup()
	repo := NewExamResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT percentage FROM exam_results")).
		WithArgs("stu-1", "class-1", "subj-1").
		WillReturnRows(sqlmock.NewRows([]string{"percentage"}))

	percentages, err := repo.ListPercentages(context.Background(), "stu-1", "class-1", "subj-1")
	require.NoError(t, err)
	assert.Empty(t, percentages)
	assert.NoError(t, mock.ExpectationsWereMet())
}
