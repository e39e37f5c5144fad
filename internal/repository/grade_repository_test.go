package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

func newGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryFindByKey(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_id", "class_id", "academic_year_id", "term_type",
		"assignment_score", "exam_score", "total_score", "letter_grade", "grade_point", "passed", "locked", "remarks", "revision", "created_at", "updated_at"}).
		AddRow("grade-1", "stu-1", "sub-1", "class-1", "year-1", string(models.TermType1),
			85.0, 72.5, 77.5, "C", 2.0, true, false, nil, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM grades WHERE student_id = $1 AND subject_id = $2 AND academic_year_id = $3 AND term_type = $4")).
		WithArgs("stu-1", "sub-1", "year-1", string(models.TermType1)).
		WillReturnRows(rows)

	grade, err := repo.FindByKey(context.Background(), "stu-1", "sub-1", "year-1", models.TermType1)
	require.NoError(t, err)
	assert.Equal(t, "grade-1", grade.ID)
	assert.Equal(t, 77.5, grade.TotalScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertInsertsAndStampsID(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{
		StudentID:      "stu-1",
		SubjectID:      "sub-1",
		ClassID:        "class-1",
		AcademicYearID: "year-1",
		TermType:       models.TermType1,
		TotalScore:     77.5,
	}
	err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.False(t, grade.CreatedAt.IsZero())
	// Fresh rows land at revision 1 and the struct reports it.
	assert.Equal(t, 1, grade.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertReportsNewRevision(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{
		ID:             "grade-1",
		StudentID:      "stu-1",
		SubjectID:      "sub-1",
		ClassID:        "class-1",
		AcademicYearID: "year-1",
		TermType:       models.TermType1,
		Revision:       2,
	}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	assert.Equal(t, 3, grade.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertStaleRevision(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	// Revision mismatch makes the conditional update touch zero rows.
	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(0, 0))

	grade := &models.Grade{
		ID:             "grade-1",
		StudentID:      "stu-1",
		SubjectID:      "sub-1",
		ClassID:        "class-1",
		AcademicYearID: "year-1",
		TermType:       models.TermType1,
		Revision:       2,
	}
	err := repo.Upsert(context.Background(), grade)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStaleRevision.Code, appErrors.FromError(err).Code)
	// A rejected write must not advance the caller's revision.
	assert.Equal(t, 2, grade.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListAppliesFilter(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_id", "class_id", "academic_year_id", "term_type",
		"assignment_score", "exam_score", "total_score", "letter_grade", "grade_point", "passed", "locked", "remarks", "revision", "created_at", "updated_at"}).
		AddRow("grade-1", "stu-1", "sub-1", "class-1", "year-1", string(models.TermType1),
			85.0, 72.5, 77.5, "C", 2.0, true, false, nil, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND student_id = $1 AND term_type = $2 ORDER BY updated_at DESC")).
		WithArgs("stu-1", string(models.TermType1)).
		WillReturnRows(rows)

	grades, err := repo.List(context.Background(), models.GradeFilter{StudentID: "stu-1", TermType: models.TermType1})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositorySumByClassTerm(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "score_sum", "grade_count"}).
		AddRow("stu-1", 166.0, 2).
		AddRow("stu-2", 240.0, 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, SUM(total_score) AS score_sum, COUNT(*) AS grade_count")).
		WithArgs("class-1", "year-1", string(models.TermType1)).
		WillReturnRows(rows)

	sums, err := repo.SumByClassTerm(context.Background(), "class-1", "year-1", models.TermType1)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, 166.0, sums[0].ScoreSum)
	assert.Equal(t, 3, sums[1].GradeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
