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

// ReportCardRepository persists report cards, unique on
// (student_id, academic_year_id, term_type).
type ReportCardRepository struct {
	db *sqlx.DB
}

// NewReportCardRepository constructs the repository.
func NewReportCardRepository(db *sqlx.DB) *ReportCardRepository {
	return &ReportCardRepository{db: db}
}

// Upsert replaces the computed figures for the key. The publication
// columns are deliberately absent from the conflict update so a
// recomputation never resets a published card.
func (r *ReportCardRepository) Upsert(ctx context.Context, card *models.ReportCard) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now
	const query = `INSERT INTO report_cards (id, student_id, class_id, academic_year_id, term_type,
            total_marks, max_marks, average_score, overall_grade, gpa, position, out_of,
            total_days, present_days, absent_days, attendance_rate,
            teacher_comment, principal_comment, published, published_at, published_by, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :academic_year_id, :term_type,
            :total_marks, :max_marks, :average_score, :overall_grade, :gpa, :position, :out_of,
            :total_days, :present_days, :absent_days, :attendance_rate,
            :teacher_comment, :principal_comment, FALSE, NULL, NULL, :created_at, :updated_at)
        ON CONFLICT (student_id, academic_year_id, term_type)
        DO UPDATE SET class_id = EXCLUDED.class_id,
            total_marks = EXCLUDED.total_marks,
            max_marks = EXCLUDED.max_marks,
            average_score = EXCLUDED.average_score,
            overall_grade = EXCLUDED.overall_grade,
            gpa = EXCLUDED.gpa,
            position = EXCLUDED.position,
            out_of = EXCLUDED.out_of,
            total_days = EXCLUDED.total_days,
            present_days = EXCLUDED.present_days,
            absent_days = EXCLUDED.absent_days,
            attendance_rate = EXCLUDED.attendance_rate,
            teacher_comment = EXCLUDED.teacher_comment,
            principal_comment = EXCLUDED.principal_comment,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, card); err != nil {
		return fmt.Errorf("upsert report card: %w", err)
	}
	return nil
}

// FindByID returns a report card row by its identifier.
func (r *ReportCardRepository) FindByID(ctx context.Context, id string) (*models.ReportCard, error) {
	const query = `SELECT id, student_id, class_id, academic_year_id, term_type,
        total_marks, max_marks, average_score, overall_grade, gpa, position, out_of,
        total_days, present_days, absent_days, attendance_rate,
        teacher_comment, principal_comment, published, published_at, published_by, created_at, updated_at
        FROM report_cards WHERE id = $1`
	var card models.ReportCard
	if err := r.db.GetContext(ctx, &card, query, id); err != nil {
		return nil, fmt.Errorf("find report card: %w", err)
	}
	return &card, nil
}

// FindByKey returns the unique report card for the student/year/term key.
func (r *ReportCardRepository) FindByKey(ctx context.Context, studentID, academicYearID string, termType models.TermType) (*models.ReportCard, error) {
	const query = `SELECT id, student_id, class_id, academic_year_id, term_type,
        total_marks, max_marks, average_score, overall_grade, gpa, position, out_of,
        total_days, present_days, absent_days, attendance_rate,
        teacher_comment, principal_comment, published, published_at, published_by, created_at, updated_at
        FROM report_cards WHERE student_id = $1 AND academic_year_id = $2 AND term_type = $3`
	var card models.ReportCard
	if err := r.db.GetContext(ctx, &card, query, studentID, academicYearID, termType); err != nil {
		return nil, fmt.Errorf("find report card by key: %w", err)
	}
	return &card, nil
}

// Publish flips the card to published exactly once. A second publish
// attempt affects zero rows and surfaces ErrPublished; there is no
// reverse transition.
func (r *ReportCardRepository) Publish(ctx context.Context, id, publisherID string, at time.Time) error {
	const query = `UPDATE report_cards
        SET published = TRUE, published_at = $1, published_by = $2, updated_at = $1
        WHERE id = $3 AND published = FALSE`
	res, err := r.db.ExecContext(ctx, query, at, publisherID, id)
	if err != nil {
		return fmt.Errorf("publish report card: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.Clone(appErrors.ErrPublished, "")
	}
	return nil
}
