package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// SchemeRepository persists grading schemes and their boundaries.
type SchemeRepository struct {
	db *sqlx.DB
}

// NewSchemeRepository constructs the repository.
func NewSchemeRepository(db *sqlx.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

// Create inserts a new scheme row.
func (r *SchemeRepository) Create(ctx context.Context, scheme *models.GradingScheme) error {
	if scheme.ID == "" {
		scheme.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	scheme.CreatedAt = now
	scheme.UpdatedAt = now
	const query = `INSERT INTO grading_schemes (id, school_id, name, scale_kind, is_default, created_at, updated_at)
        VALUES (:id, :school_id, :name, :scale_kind, :is_default, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, scheme); err != nil {
		return fmt.Errorf("create scheme: %w", err)
	}
	return nil
}

// FindByID returns a scheme with its boundaries attached.
func (r *SchemeRepository) FindByID(ctx context.Context, id string) (*models.GradingScheme, error) {
	const query = `SELECT id, school_id, name, scale_kind, is_default, created_at, updated_at
        FROM grading_schemes WHERE id = $1`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, id); err != nil {
		return nil, fmt.Errorf("find scheme: %w", err)
	}
	boundaries, err := r.ListBoundaries(ctx, id)
	if err != nil {
		return nil, err
	}
	scheme.Boundaries = boundaries
	return &scheme, nil
}

// FindDefault returns the school's default scheme with boundaries, or
// sql.ErrNoRows when none is marked default.
func (r *SchemeRepository) FindDefault(ctx context.Context, schoolID string) (*models.GradingScheme, error) {
	const query = `SELECT id, school_id, name, scale_kind, is_default, created_at, updated_at
        FROM grading_schemes WHERE school_id = $1 AND is_default = TRUE LIMIT 1`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, schoolID); err != nil {
		return nil, fmt.Errorf("find default scheme: %w", err)
	}
	boundaries, err := r.ListBoundaries(ctx, scheme.ID)
	if err != nil {
		return nil, err
	}
	scheme.Boundaries = boundaries
	return &scheme, nil
}

// ListBySchool returns all schemes belonging to a school.
func (r *SchemeRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.GradingScheme, error) {
	const query = `SELECT id, school_id, name, scale_kind, is_default, created_at, updated_at
        FROM grading_schemes WHERE school_id = $1 ORDER BY created_at`
	var schemes []models.GradingScheme
	if err := r.db.SelectContext(ctx, &schemes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	return schemes, nil
}

// Update renames a scheme or changes its scale kind.
func (r *SchemeRepository) Update(ctx context.Context, scheme *models.GradingScheme) error {
	scheme.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grading_schemes SET name = :name, scale_kind = :scale_kind, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, scheme)
	if err != nil {
		return fmt.Errorf("update scheme: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update scheme %s: no rows", scheme.ID)
	}
	return nil
}

// Delete removes a scheme and its boundaries.
func (r *SchemeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grade_boundaries WHERE scheme_id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete boundaries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grading_schemes WHERE id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete scheme: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scheme delete: %w", err)
	}
	return nil
}

// SetDefault marks one scheme as the school default. The unset and set
// run in one transaction so the per-school uniqueness holds at write time.
func (r *SchemeRepository) SetDefault(ctx context.Context, schoolID, schemeID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE grading_schemes SET is_default = FALSE, updated_at = $1 WHERE school_id = $2 AND is_default = TRUE`, now, schoolID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("unset default scheme: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE grading_schemes SET is_default = TRUE, updated_at = $1 WHERE id = $2 AND school_id = $3`, now, schemeID, schoolID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("set default scheme: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("set default scheme %s: no rows", schemeID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set default: %w", err)
	}
	return nil
}

// AddBoundary appends a boundary rule to a scheme.
func (r *SchemeRepository) AddBoundary(ctx context.Context, boundary *models.GradeBoundary) error {
	if boundary.ID == "" {
		boundary.ID = uuid.NewString()
	}
	boundary.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO grade_boundaries (id, scheme_id, label, min_score, max_score, grade_point, passing, created_at)
        VALUES (:id, :scheme_id, :label, :min_score, :max_score, :grade_point, :passing, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, boundary); err != nil {
		return fmt.Errorf("add boundary: %w", err)
	}
	return nil
}

// DeleteBoundary removes a single boundary rule.
func (r *SchemeRepository) DeleteBoundary(ctx context.Context, schemeID, boundaryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grade_boundaries WHERE id = $1 AND scheme_id = $2`, boundaryID, schemeID)
	if err != nil {
		return fmt.Errorf("delete boundary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete boundary %s: no rows", boundaryID)
	}
	return nil
}

// ListBoundaries returns a scheme's boundaries in descending min_score
// order, the order the resolver scans them in.
func (r *SchemeRepository) ListBoundaries(ctx context.Context, schemeID string) ([]models.GradeBoundary, error) {
	const query = `SELECT id, scheme_id, label, min_score, max_score, grade_point, passing, created_at
        FROM grade_boundaries WHERE scheme_id = $1 ORDER BY min_score DESC`
	var boundaries []models.GradeBoundary
	if err := r.db.SelectContext(ctx, &boundaries, query, schemeID); err != nil {
		return nil, fmt.Errorf("list boundaries: %w", err)
	}
	return boundaries, nil
}
