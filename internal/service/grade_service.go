package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

// Component weights for the total score blend.
const (
	assignmentWeight = 0.4
	examWeight       = 0.6
)

type submissionReader interface {
	ListGraded(ctx context.Context, studentID, classID, subjectID string) ([]models.GradedSubmission, error)
}

type examResultReader interface {
	ListPercentages(ctx context.Context, studentID, classID, subjectID string) ([]float64, error)
}

type schemeReader interface {
	FindByID(ctx context.Context, id string) (*models.GradingScheme, error)
	FindDefault(ctx context.Context, schoolID string) (*models.GradingScheme, error)
}

type gradeStore interface {
	FindByKey(ctx context.Context, studentID, subjectID, academicYearID string, termType models.TermType) (*models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

type classSubjectReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error)
}

type computationObserver interface {
	ObserveGradeComputation()
}

// ComputeGradeRequest identifies the grade to (re)compute.
type ComputeGradeRequest struct {
	StudentID      string          `json:"student_id" validate:"required"`
	ClassID        string          `json:"class_id" validate:"required"`
	SubjectID      string          `json:"subject_id" validate:"required"`
	AcademicYearID string          `json:"academic_year_id" validate:"required"`
	TermType       models.TermType `json:"term_type" validate:"required"`
	SchemeID       string          `json:"scheme_id"`
	// Force overwrites a locked grade; only ADMIN callers may set it.
	Force    bool   `json:"force"`
	SchoolID string `json:"-"`
}

// ComputeTermRequest identifies the student/class/term scope to compute
// every scheduled subject for.
type ComputeTermRequest struct {
	StudentID      string          `json:"student_id" validate:"required"`
	ClassID        string          `json:"class_id" validate:"required"`
	AcademicYearID string          `json:"academic_year_id" validate:"required"`
	TermType       models.TermType `json:"term_type" validate:"required"`
	SchemeID       string          `json:"scheme_id"`
	SchoolID       string          `json:"-"`
}

// GradeService orchestrates score aggregation, boundary resolution and
// grade persistence.
type GradeService struct {
	submissions submissionReader
	exams       examResultReader
	schemes     schemeReader
	grades      gradeStore
	subjects    classSubjectReader
	metrics     computationObserver
	validator   *validator.Validate
	logger      *zap.Logger
	round       func(float64) float64
}

// NewGradeService constructs GradeService.
func NewGradeService(submissions submissionReader, exams examResultReader, schemes schemeReader, grades gradeStore, subjects classSubjectReader, metrics computationObserver, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		submissions: submissions,
		exams:       exams,
		schemes:     schemes,
		grades:      grades,
		subjects:    subjects,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		round:       func(v float64) float64 { return math.RoundToEven(v*100) / 100 },
	}
}

// List returns grade rows matching the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ComputeSubjectGrade recomputes and stores the grade for one subject.
// The write replaces the prior row for the key; remarks carry over. A
// locked grade refuses the recomputation unless Force is set.
func (s *GradeService) ComputeSubjectGrade(ctx context.Context, req ComputeGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compute payload")
	}
	if !req.TermType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown term type %q", req.TermType))
	}

	existing, err := s.grades.FindByKey(ctx, req.StudentID, req.SubjectID, req.AcademicYearID, req.TermType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing grade")
	}
	if existing != nil && existing.Locked && !req.Force {
		return nil, appErrors.Clone(appErrors.ErrLocked, "grade is locked, pass force to overwrite")
	}

	assignmentScore, examScore, err := s.aggregateScores(ctx, req.StudentID, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, err
	}
	totalScore := s.round(assignmentWeight*assignmentScore + examWeight*examScore)

	boundary, err := s.resolveBoundary(ctx, req.SchemeID, req.SchoolID, totalScore)
	if err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID:       req.StudentID,
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		AcademicYearID:  req.AcademicYearID,
		TermType:        req.TermType,
		AssignmentScore: assignmentScore,
		ExamScore:       examScore,
		TotalScore:      totalScore,
	}
	if boundary != nil {
		label := boundary.Label
		grade.LetterGrade = &label
		grade.GradePoint = boundary.GradePoint
		grade.Passed = boundary.Passing
	}
	if existing != nil {
		grade.ID = existing.ID
		grade.Remarks = existing.Remarks
		grade.Locked = existing.Locked
		grade.Revision = existing.Revision
		grade.CreatedAt = existing.CreatedAt
	}

	if err := s.grades.Upsert(ctx, grade); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade")
	}
	if s.metrics != nil {
		s.metrics.ObserveGradeComputation()
	}
	s.logger.Debug("grade computed",
		zap.String("student_id", req.StudentID),
		zap.String("subject_id", req.SubjectID),
		zap.Float64("total_score", totalScore),
	)
	return grade, nil
}

// ComputeTermGrades recomputes every subject scheduled into the class
// for the student. Locked grades are skipped and kept as-is. The loop
// fails fast: subjects computed before a failure stay written.
func (s *GradeService) ComputeTermGrades(ctx context.Context, req ComputeTermRequest) ([]models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compute payload")
	}
	assignments, err := s.subjects.ListByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class subjects")
	}
	grades := make([]models.Grade, 0, len(assignments))
	for _, assignment := range assignments {
		grade, err := s.ComputeSubjectGrade(ctx, ComputeGradeRequest{
			StudentID:      req.StudentID,
			ClassID:        req.ClassID,
			SubjectID:      assignment.SubjectID,
			AcademicYearID: req.AcademicYearID,
			TermType:       req.TermType,
			SchemeID:       req.SchemeID,
			SchoolID:       req.SchoolID,
		})
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrLocked.Code {
				kept, findErr := s.grades.FindByKey(ctx, req.StudentID, assignment.SubjectID, req.AcademicYearID, req.TermType)
				if findErr != nil {
					return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load locked grade")
				}
				grades = append(grades, *kept)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.FromError(err).Code, appErrors.FromError(err).Status,
				fmt.Sprintf("subject %s: %s", assignment.SubjectCode, appErrors.FromError(err).Message))
		}
		grades = append(grades, *grade)
	}
	return grades, nil
}

// ResolveGrade maps a score to a boundary using the explicit scheme or
// the school default. A nil boundary with nil error means no scheme or
// no matching interval.
func (s *GradeService) ResolveGrade(ctx context.Context, schemeID, schoolID string, score float64) (*models.GradeBoundary, error) {
	return s.resolveBoundary(ctx, schemeID, schoolID, score)
}

// aggregateScores computes the assignment and exam component averages.
// A student with no graded submissions or no exam results scores 0 for
// that component; the absence is not an error.
func (s *GradeService) aggregateScores(ctx context.Context, studentID, classID, subjectID string) (float64, float64, error) {
	submissions, err := s.submissions.ListGraded(ctx, studentID, classID, subjectID)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}
	var assignmentScore float64
	if len(submissions) > 0 {
		sum := 0.0
		for _, sub := range submissions {
			sum += sub.Points / sub.TotalPoints * 100
		}
		assignmentScore = s.round(sum / float64(len(submissions)))
	}

	percentages, err := s.exams.ListPercentages(ctx, studentID, classID, subjectID)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam results")
	}
	var examScore float64
	if len(percentages) > 0 {
		sum := 0.0
		for _, p := range percentages {
			sum += p
		}
		examScore = s.round(sum / float64(len(percentages)))
	}

	return assignmentScore, examScore, nil
}

// resolveBoundary finds the boundary containing the score. An explicit
// scheme takes precedence, otherwise the school default. Missing scheme
// or no matching interval leaves the grade unlabelled: nil, no error.
// Boundaries arrive ordered by descending min score, so an overlap
// resolves to the boundary with the higher minimum.
func (s *GradeService) resolveBoundary(ctx context.Context, schemeID, schoolID string, score float64) (*models.GradeBoundary, error) {
	var scheme *models.GradingScheme
	var err error
	switch {
	case schemeID != "":
		scheme, err = s.schemes.FindByID(ctx, schemeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "grading scheme not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheme")
		}
	case schoolID != "":
		scheme, err = s.schemes.FindDefault(ctx, schoolID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load default scheme")
		}
	default:
		return nil, nil
	}

	for i := range scheme.Boundaries {
		if scheme.Boundaries[i].Contains(score) {
			return &scheme.Boundaries[i], nil
		}
	}
	return nil, nil
}
