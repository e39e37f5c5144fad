package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

// GradeRepository persists computed grades, unique on
// (student_id, subject_id, academic_year_id, term_type).
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByKey returns the unique grade row for the key, or sql.ErrNoRows.
func (r *GradeRepository) FindByKey(ctx context.Context, studentID, subjectID, academicYearID string, termType models.TermType) (*models.Grade, error) {
	const query = `SELECT id, student_id, subject_id, class_id, academic_year_id, term_type,
        assignment_score, exam_score, total_score, letter_grade, grade_point, passed, locked, remarks, revision, created_at, updated_at
        FROM grades WHERE student_id = $1 AND subject_id = $2 AND academic_year_id = $3 AND term_type = $4`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID, subjectID, academicYearID, termType); err != nil {
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}

// Upsert writes the grade row in a single statement. The ON CONFLICT
// update only lands when the stored revision matches the revision the
// caller read, so two concurrent recomputations cannot silently stomp
// each other: the loser gets ErrStaleRevision and must re-read.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, subject_id, class_id, academic_year_id, term_type,
            assignment_score, exam_score, total_score, letter_grade, grade_point, passed, locked, remarks, revision, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :class_id, :academic_year_id, :term_type,
            :assignment_score, :exam_score, :total_score, :letter_grade, :grade_point, :passed, :locked, :remarks, 1, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, academic_year_id, term_type)
        DO UPDATE SET assignment_score = EXCLUDED.assignment_score,
            exam_score = EXCLUDED.exam_score,
            total_score = EXCLUDED.total_score,
            letter_grade = EXCLUDED.letter_grade,
            grade_point = EXCLUDED.grade_point,
            passed = EXCLUDED.passed,
            locked = EXCLUDED.locked,
            remarks = EXCLUDED.remarks,
            revision = grades.revision + 1,
            updated_at = EXCLUDED.updated_at
        WHERE grades.revision = :revision`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.Clone(appErrors.ErrStaleRevision, "grade was recomputed concurrently, retry")
	}
	// The statement stores revision+1 (fresh rows start at 1); reflect
	// that so callers return the revision actually persisted.
	grade.Revision++
	return nil
}

// List returns grade rows matching the filter, newest first.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := `SELECT id, student_id, subject_id, class_id, academic_year_id, term_type,
        assignment_score, exam_score, total_score, letter_grade, grade_point, passed, locked, remarks, revision, created_at, updated_at
        FROM grades WHERE 1=1`
	var args []interface{}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.AcademicYearID != "" {
		query += fmt.Sprintf(" AND academic_year_id = $%d", len(args)+1)
		args = append(args, filter.AcademicYearID)
	}
	if filter.TermType != "" {
		query += fmt.Sprintf(" AND term_type = $%d", len(args)+1)
		args = append(args, filter.TermType)
	}
	query += " ORDER BY updated_at DESC"
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListByStudent returns every grade ever recorded for a student, the
// transcript rescan input.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	const query = `SELECT id, student_id, subject_id, class_id, academic_year_id, term_type,
        assignment_score, exam_score, total_score, letter_grade, grade_point, passed, locked, remarks, revision, created_at, updated_at
        FROM grades WHERE student_id = $1 ORDER BY created_at`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// SumByClassTerm returns per-student score sums with each student's own
// grade count for ranking within a class/year/term scope.
func (r *GradeRepository) SumByClassTerm(ctx context.Context, classID, academicYearID string, termType models.TermType) ([]models.StudentScoreSum, error) {
	const query = `SELECT student_id, SUM(total_score) AS score_sum, COUNT(*) AS grade_count
        FROM grades WHERE class_id = $1 AND academic_year_id = $2 AND term_type = $3
        GROUP BY student_id`
	var sums []models.StudentScoreSum
	if err := r.db.SelectContext(ctx, &sums, query, classID, academicYearID, termType); err != nil {
		return nil, fmt.Errorf("sum class grades: %w", err)
	}
	return sums, nil
}
