package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academix/gradebook-api/internal/models"
)

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

// The aggregator only ever sees rows this query lets through, so the
// GRADED status, non-null points and positive ceiling predicates are
// pinned here.
func TestSubmissionRepositoryListGradedFiltersStatus(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"submission_id", "points", "total_points"}).
		AddRow("sub-1", 80.0, 100.0).
		AddRow("sub-2", 90.0, 100.0)
	mock.ExpectQuery(regexp.QuoteMeta("AND s.status = $4 AND s.points IS NOT NULL AND a.total_points > 0")).
		WithArgs("stu-1", "class-1", "subj-1", string(models.SubmissionGraded)).
		WillReturnRows(rows)

	submissions, err := repo.ListGraded(context.Background(), "stu-1", "class-1", "subj-1")
	require.NoError(t, err)
	require.Len(t, submissions, 2)
	assert.Equal(t, 80.0, submissions[0].Points)
	assert.Equal(t, 100.0, submissions[0].TotalPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListGradedScopesAssignments(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN assignments a ON a.id = s.assignment_id")).
		WithArgs("stu-1", "class-1", "subj-1", string(models.SubmissionGraded)).
		WillReturnRows(sqlmock.NewRows([]string{"submission_id", "points", "total_points"}))

	submissions, err := repo.ListGraded(context.Background(), "stu-1", "class-1", "subj-1")
	require.NoError(t, err)
	assert.Empty(t, submissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
