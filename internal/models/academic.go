package models

import "time"

// TermType identifies the sub-period of an academic year a grade is scoped to.
type TermType string

const (
	TermType1         TermType = "TERM_1"
	TermType2         TermType = "TERM_2"
	TermType3         TermType = "TERM_3"
	TermTypeSemester1 TermType = "SEMESTER_1"
	TermTypeSemester2 TermType = "SEMESTER_2"
	TermTypeFinal     TermType = "FINAL"
)

// Valid returns true when the term type is a supported value.
func (t TermType) Valid() bool {
	switch t {
	case TermType1, TermType2, TermType3, TermTypeSemester1, TermTypeSemester2, TermTypeFinal:
		return true
	default:
		return false
	}
}

// AcademicYear models a school year. At most one year per school is
// current; setting one current unsets any other in the same school.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter defines filters supported by list endpoints.
type AcademicYearFilter struct {
	SchoolID  string
	IsCurrent *bool
	Page      int
	PageSize  int
}
