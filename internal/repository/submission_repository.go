package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// SubmissionRepository reads assignment submissions for score aggregation.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// ListGraded returns the student's GRADED submissions for assignments
// scoped to the class and subject, paired with each assignment's point
// ceiling. Ungraded submissions never reach the aggregator.
func (r *SubmissionRepository) ListGraded(ctx context.Context, studentID, classID, subjectID string) ([]models.GradedSubmission, error) {
	const query = `SELECT s.id AS submission_id, s.points, a.total_points
        FROM submissions s
        JOIN assignments a ON a.id = s.assignment_id
        WHERE s.student_id = $1 AND a.class_id = $2 AND a.subject_id = $3
          AND s.status = $4 AND s.points IS NOT NULL AND a.total_points > 0`
	var submissions []models.GradedSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID, classID, subjectID, models.SubmissionGraded); err != nil {
		return nil, fmt.Errorf("list graded submissions: %w", err)
	}
	return submissions, nil
}
