package models

import "time"

// Grade is the computed grade for one subject, unique on
// (student_id, subject_id, academic_year_id, term_type). Recomputation
// replaces the row; Revision guards concurrent writers.
type Grade struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	ClassID         string    `db:"class_id" json:"class_id"`
	AcademicYearID  string    `db:"academic_year_id" json:"academic_year_id"`
	TermType        TermType  `db:"term_type" json:"term_type"`
	AssignmentScore float64   `db:"assignment_score" json:"assignment_score"`
	ExamScore       float64   `db:"exam_score" json:"exam_score"`
	TotalScore      float64   `db:"total_score" json:"total_score"`
	LetterGrade     *string   `db:"letter_grade" json:"letter_grade,omitempty"`
	GradePoint      *float64  `db:"grade_point" json:"grade_point,omitempty"`
	Passed          bool      `db:"passed" json:"passed"`
	Locked          bool      `db:"locked" json:"locked"`
	Remarks         *string   `db:"remarks" json:"remarks,omitempty"`
	Revision        int       `db:"revision" json:"revision"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter scopes grade list queries.
type GradeFilter struct {
	StudentID      string
	SubjectID      string
	ClassID        string
	AcademicYearID string
	TermType       TermType
}

// StudentScoreSum accumulates one student's total score across subjects,
// used for class ranking.
type StudentScoreSum struct {
	StudentID  string  `db:"student_id"`
	ScoreSum   float64 `db:"score_sum"`
	GradeCount int     `db:"grade_count"`
}
