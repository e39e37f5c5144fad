package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type academicYearStore interface {
	Create(ctx context.Context, year *models.AcademicYear) error
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	FindCurrent(ctx context.Context, schoolID string) (*models.AcademicYear, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.AcademicYear, error)
	SetCurrent(ctx context.Context, schoolID, yearID string) error
}

// CreateAcademicYearRequest describes a new academic year.
type CreateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsCurrent bool      `json:"is_current"`
	SchoolID  string    `json:"-"`
}

// AcademicYearService manages academic years and the per-school
// current-year invariant.
type AcademicYearService struct {
	years     academicYearStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService constructs AcademicYearService.
func NewAcademicYearService(years academicYearStore, validate *validator.Validate, logger *zap.Logger) *AcademicYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{years: years, validator: validate, logger: logger}
}

// Create registers a new academic year; when flagged current it
// atomically replaces the school's previous current year.
func (s *AcademicYearService) Create(ctx context.Context, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrDomain, "end date must be after start date")
	}
	year := &models.AcademicYear{
		SchoolID:  req.SchoolID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.years.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	if req.IsCurrent {
		if err := s.years.SetCurrent(ctx, req.SchoolID, year.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set current year")
		}
		year.IsCurrent = true
	}
	return year, nil
}

// List returns all academic years for a school.
func (s *AcademicYearService) List(ctx context.Context, schoolID string) ([]models.AcademicYear, error) {
	years, err := s.years.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// Current returns the school's current year. The lookup is an explicit
// filtered query, not ambient state.
func (s *AcademicYearService) Current(ctx context.Context, schoolID string) (*models.AcademicYear, error) {
	year, err := s.years.FindCurrent(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no current academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current year")
	}
	return year, nil
}

// SetCurrent marks one year as current, unsetting any other for the school.
func (s *AcademicYearService) SetCurrent(ctx context.Context, schoolID, yearID string) error {
	year, err := s.years.FindByID(ctx, yearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	if year.SchoolID != schoolID {
		return appErrors.Clone(appErrors.ErrForbidden, "academic year belongs to another school")
	}
	if err := s.years.SetCurrent(ctx, schoolID, yearID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set current year")
	}
	return nil
}
