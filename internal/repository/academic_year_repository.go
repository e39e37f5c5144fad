package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academix/gradebook-api/internal/models"
)

// AcademicYearRepository persists academic years.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository constructs the repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// Create inserts a new academic year.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now
	const query = `INSERT INTO academic_years (id, school_id, name, start_date, end_date, is_current, created_at, updated_at)
        VALUES (:id, :school_id, :name, :start_date, :end_date, :is_current, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// FindByID returns a year by its identifier.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	const query = `SELECT id, school_id, name, start_date, end_date, is_current, created_at, updated_at
        FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, fmt.Errorf("find academic year: %w", err)
	}
	return &year, nil
}

// FindCurrent returns the school's current year, or sql.ErrNoRows.
func (r *AcademicYearRepository) FindCurrent(ctx context.Context, schoolID string) (*models.AcademicYear, error) {
	const query = `SELECT id, school_id, name, start_date, end_date, is_current, created_at, updated_at
        FROM academic_years WHERE school_id = $1 AND is_current = TRUE LIMIT 1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, schoolID); err != nil {
		return nil, fmt.Errorf("find current academic year: %w", err)
	}
	return &year, nil
}

// ListBySchool returns all years for a school, newest first.
func (r *AcademicYearRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.AcademicYear, error) {
	const query = `SELECT id, school_id, name, start_date, end_date, is_current, created_at, updated_at
        FROM academic_years WHERE school_id = $1 ORDER BY start_date DESC`
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query, schoolID); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// SetCurrent marks one year as current for the school. Unset and set run
// in one transaction so the per-school uniqueness holds at write time.
func (r *AcademicYearRepository) SetCurrent(ctx context.Context, schoolID, yearID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_current = FALSE, updated_at = $1 WHERE school_id = $2 AND is_current = TRUE`, now, schoolID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("unset current year: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_current = TRUE, updated_at = $1 WHERE id = $2 AND school_id = $3`, now, yearID, schoolID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("set current year: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("set current year %s: no rows", yearID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set current: %w", err)
	}
	return nil
}
