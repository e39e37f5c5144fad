package models

import "time"

// ReportCard is the per-term aggregate over a student's grades, unique
// on (student_id, academic_year_id, term_type). Recomputation replaces
// the figures but never resets the publication state.
type ReportCard struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	ClassID          string     `db:"class_id" json:"class_id"`
	AcademicYearID   string     `db:"academic_year_id" json:"academic_year_id"`
	TermType         TermType   `db:"term_type" json:"term_type"`
	TotalMarks       float64    `db:"total_marks" json:"total_marks"`
	MaxMarks         float64    `db:"max_marks" json:"max_marks"`
	AverageScore     float64    `db:"average_score" json:"average_score"`
	OverallGrade     *string    `db:"overall_grade" json:"overall_grade,omitempty"`
	GPA              *float64   `db:"gpa" json:"gpa,omitempty"`
	Position         int        `db:"position" json:"position"`
	OutOf            int        `db:"out_of" json:"out_of"`
	TotalDays        int        `db:"total_days" json:"total_days"`
	PresentDays      int        `db:"present_days" json:"present_days"`
	AbsentDays       int        `db:"absent_days" json:"absent_days"`
	AttendanceRate   float64    `db:"attendance_rate" json:"attendance_rate"`
	TeacherComment   *string    `db:"teacher_comment" json:"teacher_comment,omitempty"`
	PrincipalComment *string    `db:"principal_comment" json:"principal_comment,omitempty"`
	Published        bool       `db:"published" json:"published"`
	PublishedAt      *time.Time `db:"published_at" json:"published_at,omitempty"`
	PublishedBy      *string    `db:"published_by" json:"published_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Transcript is the per-student lifetime rollup, unique on student_id.
// Every update is a full rescan of the student's grade history.
type Transcript struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	TotalCredits  int       `db:"total_credits" json:"total_credits"`
	EarnedCredits int       `db:"earned_credits" json:"earned_credits"`
	CumulativeGPA *float64  `db:"cumulative_gpa" json:"cumulative_gpa,omitempty"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
