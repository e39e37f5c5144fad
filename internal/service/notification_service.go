package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	"github.com/academix/gradebook-api/pkg/jobs"
)

const jobTypeReportCardPublished = "report_card.published"

// reportCardNotice is the payload carried on the notification queue.
type reportCardNotice struct {
	ReportCardID   string
	StudentID      string
	AcademicYearID string
	TermType       models.TermType
	OverallGrade   *string
}

// NotificationService fans out domain events to interested parties via a
// background worker pool. Delivery is a log-backed dispatch; external
// channels can be plugged into the handler later.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the service and its backing queue.
// Call Start before enqueueing and Stop on shutdown.
func NewNotificationService(cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	s.queue = jobs.NewQueue("notifications", s.dispatch, cfg)
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// ReportCardPublished enqueues a publication notice for the student.
func (s *NotificationService) ReportCardPublished(card *models.ReportCard) error {
	if card == nil {
		return fmt.Errorf("nil report card")
	}
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: jobTypeReportCardPublished,
		Payload: reportCardNotice{
			ReportCardID:   card.ID,
			StudentID:      card.StudentID,
			AcademicYearID: card.AcademicYearID,
			TermType:       card.TermType,
			OverallGrade:   card.OverallGrade,
		},
	})
}

func (s *NotificationService) dispatch(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeReportCardPublished:
		notice, ok := job.Payload.(reportCardNotice)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		grade := "-"
		if notice.OverallGrade != nil {
			grade = *notice.OverallGrade
		}
		s.logger.Info("report card published",
			zap.String("report_card_id", notice.ReportCardID),
			zap.String("student_id", notice.StudentID),
			zap.String("academic_year_id", notice.AcademicYearID),
			zap.String("term_type", string(notice.TermType)),
			zap.String("overall_grade", grade),
		)
		return nil
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}
