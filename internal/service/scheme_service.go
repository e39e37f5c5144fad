package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type schemeStore interface {
	Create(ctx context.Context, scheme *models.GradingScheme) error
	FindByID(ctx context.Context, id string) (*models.GradingScheme, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.GradingScheme, error)
	Update(ctx context.Context, scheme *models.GradingScheme) error
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, schoolID, schemeID string) error
	AddBoundary(ctx context.Context, boundary *models.GradeBoundary) error
	DeleteBoundary(ctx context.Context, schemeID, boundaryID string) error
}

// CreateSchemeRequest describes a new grading scheme.
type CreateSchemeRequest struct {
	Name      string           `json:"name" validate:"required"`
	ScaleKind models.ScaleKind `json:"scale_kind" validate:"required"`
	IsDefault bool             `json:"is_default"`
	SchoolID  string           `json:"-"`
}

// UpdateSchemeRequest renames a scheme or changes its scale.
type UpdateSchemeRequest struct {
	Name      string           `json:"name" validate:"required"`
	ScaleKind models.ScaleKind `json:"scale_kind" validate:"required"`
}

// AddBoundaryRequest appends a boundary rule to a scheme.
type AddBoundaryRequest struct {
	Label      string   `json:"label" validate:"required"`
	MinScore   float64  `json:"min_score"`
	MaxScore   float64  `json:"max_score"`
	GradePoint *float64 `json:"grade_point"`
	Passing    bool     `json:"passing"`
}

// SchemeService manages grading schemes and boundary rules.
type SchemeService struct {
	schemes   schemeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchemeService constructs SchemeService.
func NewSchemeService(schemes schemeStore, validate *validator.Validate, logger *zap.Logger) *SchemeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemeService{schemes: schemes, validator: validate, logger: logger}
}

// Create registers a new scheme; when flagged default it atomically
// replaces the school's previous default.
func (s *SchemeService) Create(ctx context.Context, req CreateSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheme payload")
	}
	if !req.ScaleKind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown scale kind")
	}
	scheme := &models.GradingScheme{
		SchoolID:  req.SchoolID,
		Name:      req.Name,
		ScaleKind: req.ScaleKind,
	}
	if err := s.schemes.Create(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scheme")
	}
	if req.IsDefault {
		if err := s.schemes.SetDefault(ctx, req.SchoolID, scheme.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set default scheme")
		}
		scheme.IsDefault = true
	}
	return scheme, nil
}

// Get returns a scheme with its boundaries.
func (s *SchemeService) Get(ctx context.Context, id string) (*models.GradingScheme, error) {
	scheme, err := s.schemes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheme")
	}
	return scheme, nil
}

// List returns all schemes owned by a school.
func (s *SchemeService) List(ctx context.Context, schoolID string) ([]models.GradingScheme, error) {
	schemes, err := s.schemes.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schemes")
	}
	return schemes, nil
}

// Update renames a scheme or changes its scale kind.
func (s *SchemeService) Update(ctx context.Context, id string, req UpdateSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheme payload")
	}
	if !req.ScaleKind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown scale kind")
	}
	scheme, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	scheme.Name = req.Name
	scheme.ScaleKind = req.ScaleKind
	if err := s.schemes.Update(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scheme")
	}
	return scheme, nil
}

// Delete removes a scheme and its boundaries.
func (s *SchemeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.schemes.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete scheme")
	}
	return nil
}

// SetDefault makes one scheme the school default, unsetting any other.
func (s *SchemeService) SetDefault(ctx context.Context, schoolID, schemeID string) error {
	scheme, err := s.Get(ctx, schemeID)
	if err != nil {
		return err
	}
	if scheme.SchoolID != schoolID {
		return appErrors.Clone(appErrors.ErrForbidden, "scheme belongs to another school")
	}
	if err := s.schemes.SetDefault(ctx, schoolID, schemeID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set default scheme")
	}
	return nil
}

// AddBoundary validates and appends a boundary rule. Interval sanity is
// checked per rule; the scheme-wide no-gaps/no-overlaps invariant is not
// enforced, overlaps resolve by descending min score at read time.
func (s *SchemeService) AddBoundary(ctx context.Context, schemeID string, req AddBoundaryRequest) (*models.GradeBoundary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid boundary payload")
	}
	if req.MinScore < 0 || req.MaxScore > 100 || req.MinScore > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrDomain, "boundary interval must satisfy 0 <= min <= max <= 100")
	}
	if req.GradePoint != nil && *req.GradePoint < 0 {
		return nil, appErrors.Clone(appErrors.ErrDomain, "grade point must not be negative")
	}
	if _, err := s.Get(ctx, schemeID); err != nil {
		return nil, err
	}
	boundary := &models.GradeBoundary{
		SchemeID:   schemeID,
		Label:      req.Label,
		MinScore:   req.MinScore,
		MaxScore:   req.MaxScore,
		GradePoint: req.GradePoint,
		Passing:    req.Passing,
	}
	if err := s.schemes.AddBoundary(ctx, boundary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add boundary")
	}
	return boundary, nil
}

// DeleteBoundary removes a single boundary rule.
func (s *SchemeService) DeleteBoundary(ctx context.Context, schemeID, boundaryID string) error {
	if _, err := s.Get(ctx, schemeID); err != nil {
		return err
	}
	if err := s.schemes.DeleteBoundary(ctx, schemeID, boundaryID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete boundary")
	}
	return nil
}
