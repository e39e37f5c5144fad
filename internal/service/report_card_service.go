package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type gradeComputer interface {
	ComputeTermGrades(ctx context.Context, req ComputeTermRequest) ([]models.Grade, error)
	ResolveGrade(ctx context.Context, schemeID, schoolID string, score float64) (*models.GradeBoundary, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

type gradeRanker interface {
	SumByClassTerm(ctx context.Context, classID, academicYearID string, termType models.TermType) ([]models.StudentScoreSum, error)
}

type attendanceReader interface {
	LatestSummary(ctx context.Context, studentID, classID string) (*models.AttendanceSummary, error)
}

type reportCardStore interface {
	Upsert(ctx context.Context, card *models.ReportCard) error
	FindByID(ctx context.Context, id string) (*models.ReportCard, error)
	FindByKey(ctx context.Context, studentID, academicYearID string, termType models.TermType) (*models.ReportCard, error)
	Publish(ctx context.Context, id, publisherID string, at time.Time) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type publishNotifier interface {
	ReportCardPublished(card *models.ReportCard) error
}

type reportObserver interface {
	ObserveReportCardGenerated()
	RecordCacheOperation(hit bool)
}

// GenerateReportCardRequest identifies the report card to compile.
type GenerateReportCardRequest struct {
	StudentID        string          `json:"student_id" validate:"required"`
	ClassID          string          `json:"class_id" validate:"required"`
	AcademicYearID   string          `json:"academic_year_id" validate:"required"`
	TermType         models.TermType `json:"term_type" validate:"required"`
	SchemeID         string          `json:"scheme_id"`
	TeacherComment   *string         `json:"teacher_comment"`
	PrincipalComment *string         `json:"principal_comment"`
	SchoolID         string          `json:"-"`
}

// ReportCardResult bundles the compiled card with its underlying grades.
type ReportCardResult struct {
	ReportCard models.ReportCard `json:"report_card"`
	Grades     []models.Grade    `json:"grades"`
}

// ReportCardService compiles, caches and publishes report cards.
type ReportCardService struct {
	grades     gradeComputer
	ranker     gradeRanker
	attendance attendanceReader
	cards      reportCardStore
	cache      cacheStore
	notifier   publishNotifier
	metrics    reportObserver
	validator  *validator.Validate
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewReportCardService constructs ReportCardService.
func NewReportCardService(grades gradeComputer, ranker gradeRanker, attendance attendanceReader, cards reportCardStore, cache cacheStore, notifier publishNotifier, metrics reportObserver, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *ReportCardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ReportCardService{
		grades:     grades,
		ranker:     ranker,
		attendance: attendance,
		cards:      cards,
		cache:      cache,
		notifier:   notifier,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Generate recomputes every subject grade for the term, aggregates them
// into the report card and upserts the unique row for the key. The
// overall letter comes from the school's grading scheme through the same
// boundary resolver the per-subject grades use. Publication state on an
// existing card survives the recomputation.
func (s *ReportCardService) Generate(ctx context.Context, req GenerateReportCardRequest) (*ReportCardResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report card payload")
	}
	if !req.TermType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown term type %q", req.TermType))
	}

	grades, err := s.grades.ComputeTermGrades(ctx, ComputeTermRequest{
		StudentID:      req.StudentID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
		TermType:       req.TermType,
		SchemeID:       req.SchemeID,
		SchoolID:       req.SchoolID,
	})
	if err != nil {
		return nil, err
	}

	card := models.ReportCard{
		StudentID:        req.StudentID,
		ClassID:          req.ClassID,
		AcademicYearID:   req.AcademicYearID,
		TermType:         req.TermType,
		TeacherComment:   req.TeacherComment,
		PrincipalComment: req.PrincipalComment,
	}

	if len(grades) > 0 {
		var total float64
		var gpaSum float64
		var gpaCount int
		for _, g := range grades {
			total += g.TotalScore
			if g.GradePoint != nil {
				gpaSum += *g.GradePoint
				gpaCount++
			}
		}
		card.TotalMarks = total
		card.MaxMarks = 100 * float64(len(grades))
		card.AverageScore = total / float64(len(grades))
		if gpaCount > 0 {
			gpa := gpaSum / float64(gpaCount)
			card.GPA = &gpa
		}
		boundary, err := s.grades.ResolveGrade(ctx, req.SchemeID, req.SchoolID, card.AverageScore)
		if err != nil {
			return nil, err
		}
		if boundary != nil {
			label := boundary.Label
			card.OverallGrade = &label
		}
	}

	position, outOf, err := s.rank(ctx, req.StudentID, req.ClassID, req.AcademicYearID, req.TermType)
	if err != nil {
		return nil, err
	}
	card.Position = position
	card.OutOf = outOf

	summary, err := s.attendance.LatestSummary(ctx, req.StudentID, req.ClassID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	if summary != nil {
		card.TotalDays = summary.TotalDays
		card.PresentDays = summary.PresentDays
		card.AbsentDays = summary.AbsentDays
		card.AttendanceRate = summary.AttendanceRate
	}

	if err := s.cards.Upsert(ctx, &card); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report card")
	}
	// The upsert never touches publication columns; reload so the
	// response reflects the stored state.
	stored, err := s.cards.FindByKey(ctx, req.StudentID, req.AcademicYearID, req.TermType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload report card")
	}

	if err := s.cache.DeleteByPattern(ctx, cardCacheKey(req.StudentID, req.AcademicYearID, req.TermType)); err != nil {
		s.logger.Warn("report card cache invalidation failed", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveReportCardGenerated()
	}

	return &ReportCardResult{ReportCard: *stored, Grades: grades}, nil
}

// Get returns the stored report card with its grades, served from cache
// when possible.
func (s *ReportCardService) Get(ctx context.Context, studentID, academicYearID string, termType models.TermType) (*ReportCardResult, error) {
	if studentID == "" || academicYearID == "" || termType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student, academic year and term required")
	}
	key := cardCacheKey(studentID, academicYearID, termType)
	var cached ReportCardResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(true)
		}
		return &cached, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(false)
	}

	card, err := s.cards.FindByKey(ctx, studentID, academicYearID, termType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: studentID, AcademicYearID: academicYearID, TermType: termType})
	if err != nil {
		return nil, err
	}
	result := &ReportCardResult{ReportCard: *card, Grades: grades}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Warn("report card cache write failed", zap.Error(err))
	}
	return result, nil
}

// FindByID returns a single report card row.
func (s *ReportCardService) FindByID(ctx context.Context, id string) (*models.ReportCard, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
	}
	return card, nil
}

// Publish flips the card to published exactly once, stamping the acting
// user. There is no unpublish; later recomputations keep the flag.
func (s *ReportCardService) Publish(ctx context.Context, id, publisherID string) (*models.ReportCard, error) {
	if id == "" || publisherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report card id and publisher required")
	}
	card, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cards.Publish(ctx, id, publisherID, time.Now().UTC()); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish report card")
	}
	updated, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.DeleteByPattern(ctx, cardCacheKey(card.StudentID, card.AcademicYearID, card.TermType)); err != nil {
		s.logger.Warn("report card cache invalidation failed", zap.Error(err))
	}
	if s.notifier != nil {
		if err := s.notifier.ReportCardPublished(updated); err != nil {
			s.logger.Warn("publish notification failed", zap.Error(err))
		}
	}
	return updated, nil
}

// rank orders every student in the class/year/term by their mean total
// score, each sum divided by that student's own grade count so students
// taking fewer subjects are not inflated or penalised.
func (s *ReportCardService) rank(ctx context.Context, studentID, classID, academicYearID string, termType models.TermType) (int, int, error) {
	sums, err := s.ranker.SumByClassTerm(ctx, classID, academicYearID, termType)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank class")
	}
	if len(sums) == 0 {
		return 0, 0, nil
	}
	type ranked struct {
		studentID string
		average   float64
	}
	entries := make([]ranked, 0, len(sums))
	for _, sum := range sums {
		if sum.GradeCount == 0 {
			continue
		}
		entries = append(entries, ranked{studentID: sum.StudentID, average: sum.ScoreSum / float64(sum.GradeCount)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].average != entries[j].average {
			return entries[i].average > entries[j].average
		}
		return entries[i].studentID < entries[j].studentID
	})
	for i, entry := range entries {
		if entry.studentID == studentID {
			return i + 1, len(entries), nil
		}
	}
	return 0, len(entries), nil
}

func cardCacheKey(studentID, academicYearID string, termType models.TermType) string {
	return fmt.Sprintf("reportcard:%s:%s:%s", studentID, academicYearID, termType)
}
