package models

import "time"

// SubmissionStatus tracks the lifecycle of an assignment submission.
// Only GRADED submissions contribute to the assignment score.
type SubmissionStatus string

const (
	SubmissionAssigned  SubmissionStatus = "ASSIGNED"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionGraded    SubmissionStatus = "GRADED"
	SubmissionLate      SubmissionStatus = "LATE"
	SubmissionMissing   SubmissionStatus = "MISSING"
)

// Assignment is a piece of class work worth TotalPoints.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	Title       string    `db:"title" json:"title"`
	TotalPoints float64   `db:"total_points" json:"total_points"`
	DueAt       *time.Time `db:"due_at" json:"due_at,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Submission is a student's answer to an assignment.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Points       *float64         `db:"points" json:"points,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	SubmittedAt  *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	GradedAt     *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
}

// GradedSubmission pairs a graded submission with its assignment's
// point ceiling, the unit the score aggregator consumes.
type GradedSubmission struct {
	SubmissionID string  `db:"submission_id"`
	Points       float64 `db:"points"`
	TotalPoints  float64 `db:"total_points"`
}

// ExamResult is a student's percentage result for one exam sitting.
type ExamResult struct {
	ID         string    `db:"id" json:"id"`
	ExamID     string    `db:"exam_id" json:"exam_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	Percentage float64   `db:"percentage" json:"percentage"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
