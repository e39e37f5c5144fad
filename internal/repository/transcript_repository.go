package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// TranscriptRepository persists the singleton transcript per student.
type TranscriptRepository struct {
	db *sqlx.DB
}

// NewTranscriptRepository constructs the repository.
func NewTranscriptRepository(db *sqlx.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Upsert replaces the student's transcript row wholesale.
func (r *TranscriptRepository) Upsert(ctx context.Context, transcript *models.Transcript) error {
	if transcript.ID == "" {
		transcript.ID = uuid.NewString()
	}
	transcript.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO transcripts (id, student_id, total_credits, earned_credits, cumulative_gpa, updated_at)
        VALUES (:id, :student_id, :total_credits, :earned_credits, :cumulative_gpa, :updated_at)
        ON CONFLICT (student_id)
        DO UPDATE SET total_credits = EXCLUDED.total_credits,
            earned_credits = EXCLUDED.earned_credits,
            cumulative_gpa = EXCLUDED.cumulative_gpa,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, transcript); err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

// FindByStudent returns the student's transcript, or sql.ErrNoRows.
func (r *TranscriptRepository) FindByStudent(ctx context.Context, studentID string) (*models.Transcript, error) {
	const query = `SELECT id, student_id, total_credits, earned_credits, cumulative_gpa, updated_at
        FROM transcripts WHERE student_id = $1`
	var transcript models.Transcript
	if err := r.db.GetContext(ctx, &transcript, query, studentID); err != nil {
		return nil, fmt.Errorf("find transcript: %w", err)
	}
	return &transcript, nil
}
