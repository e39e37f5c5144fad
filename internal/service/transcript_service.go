package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type gradeHistoryReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
}

type transcriptStore interface {
	Upsert(ctx context.Context, transcript *models.Transcript) error
	FindByStudent(ctx context.Context, studentID string) (*models.Transcript, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// TranscriptResult pairs the rollup with the full grade history backing it.
type TranscriptResult struct {
	Transcript models.Transcript `json:"transcript"`
	Grades     []models.Grade    `json:"grades"`
}

// TranscriptService maintains the per-student lifetime rollup. Every
// refresh is a full rescan of the student's grade history; nothing is
// maintained incrementally.
type TranscriptService struct {
	grades      gradeHistoryReader
	transcripts transcriptStore
	students    studentReader
	cache       cacheStore
	metrics     cacheObserver
	logger      *zap.Logger
	cacheTTL    time.Duration
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(grades gradeHistoryReader, transcripts transcriptStore, students studentReader, cache cacheStore, metrics cacheObserver, logger *zap.Logger, cacheTTL time.Duration) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &TranscriptService{
		grades:      grades,
		transcripts: transcripts,
		students:    students,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

// Refresh rescans the student's entire grade history and replaces the
// transcript row. Each grade row counts one credit; passed rows earn it.
func (s *TranscriptService) Refresh(ctx context.Context, studentID string) (*TranscriptResult, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade history")
	}

	transcript := models.Transcript{StudentID: studentID}
	var gpaSum float64
	var gpaCount int
	for _, grade := range grades {
		transcript.TotalCredits++
		if grade.Passed {
			transcript.EarnedCredits++
		}
		if grade.GradePoint != nil {
			gpaSum += *grade.GradePoint
			gpaCount++
		}
	}
	if gpaCount > 0 {
		gpa := gpaSum / float64(gpaCount)
		transcript.CumulativeGPA = &gpa
	}

	if existing, err := s.transcripts.FindByStudent(ctx, studentID); err == nil {
		transcript.ID = existing.ID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}

	if err := s.transcripts.Upsert(ctx, &transcript); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store transcript")
	}

	result := &TranscriptResult{Transcript: transcript, Grades: grades}
	key := transcriptCacheKey(studentID)
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Warn("transcript cache write failed", zap.Error(err))
	}
	return result, nil
}

// Get serves the transcript from cache when possible, refreshing it
// otherwise. The refresh path is authoritative.
func (s *TranscriptService) Get(ctx context.Context, studentID string) (*TranscriptResult, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	var cached TranscriptResult
	if err := s.cache.Get(ctx, transcriptCacheKey(studentID), &cached); err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(true)
		}
		return &cached, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(false)
	}
	return s.Refresh(ctx, studentID)
}

func transcriptCacheKey(studentID string) string {
	return fmt.Sprintf("transcript:%s", studentID)
}
