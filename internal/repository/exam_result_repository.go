package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ExamResultRepository reads exam results for score aggregation.
type ExamResultRepository struct {
	db *sqlx.DB
}

// NewExamResultRepository constructs the repository.
func NewExamResultRepository(db *sqlx.DB) *ExamResultRepository {
	return &ExamResultRepository{db: db}
}

// ListPercentages returns the student's exam percentages for the class
// and subject scope.
func (r *ExamResultRepository) ListPercentages(ctx context.Context, studentID, classID, subjectID string) ([]float64, error) {
	const query = `SELECT percentage FROM exam_results
        WHERE student_id = $1 AND class_id = $2 AND subject_id = $3`
	var percentages []float64
	if err := r.db.SelectContext(ctx, &percentages, query, studentID, classID, subjectID); err != nil {
		return nil, fmt.Errorf("list exam percentages: %w", err)
	}
	return percentages, nil
}
