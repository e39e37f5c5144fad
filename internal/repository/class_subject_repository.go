package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// ClassSubjectRepository reads the subjects scheduled into a class.
type ClassSubjectRepository struct {
	db *sqlx.DB
}

// NewClassSubjectRepository constructs the repository.
func NewClassSubjectRepository(db *sqlx.DB) *ClassSubjectRepository {
	return &ClassSubjectRepository{db: db}
}

// ListByClass returns the class's subject assignments with subject metadata.
func (r *ClassSubjectRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	const query = `SELECT cs.id, cs.class_id, cs.subject_id, cs.teacher_id, cs.created_at,
        s.code AS subject_code, s.name AS subject_name
        FROM class_subjects cs
        JOIN subjects s ON s.id = cs.subject_id
        WHERE cs.class_id = $1 ORDER BY s.name`
	var assignments []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return assignments, nil
}
