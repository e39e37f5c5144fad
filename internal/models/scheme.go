package models

import "time"

// ScaleKind identifies the grading scale a scheme expresses.
type ScaleKind string

const (
	ScaleLetter     ScaleKind = "LETTER"
	ScalePercentage ScaleKind = "PERCENTAGE"
	ScaleGPA        ScaleKind = "GPA"
	ScalePoints     ScaleKind = "POINTS"
)

// Valid returns true when the scale kind is supported.
func (k ScaleKind) Valid() bool {
	switch k {
	case ScaleLetter, ScalePercentage, ScaleGPA, ScalePoints:
		return true
	default:
		return false
	}
}

// GradingScheme is a school-owned set of score-to-grade boundary rules.
// At most one scheme per school is the default; setting one default
// unsets any other in the same school.
type GradingScheme struct {
	ID         string          `db:"id" json:"id"`
	SchoolID   string          `db:"school_id" json:"school_id"`
	Name       string          `db:"name" json:"name"`
	ScaleKind  ScaleKind       `db:"scale_kind" json:"scale_kind"`
	IsDefault  bool            `db:"is_default" json:"is_default"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
	Boundaries []GradeBoundary `json:"boundaries,omitempty"`
}

// GradeBoundary maps the closed interval [MinScore, MaxScore] to a grade
// label. Boundaries are resolved in descending MinScore order, so when
// intervals overlap the one with the higher minimum wins.
type GradeBoundary struct {
	ID         string    `db:"id" json:"id"`
	SchemeID   string    `db:"scheme_id" json:"scheme_id"`
	Label      string    `db:"label" json:"label"`
	MinScore   float64   `db:"min_score" json:"min_score"`
	MaxScore   float64   `db:"max_score" json:"max_score"`
	GradePoint *float64  `db:"grade_point" json:"grade_point,omitempty"`
	Passing    bool      `db:"passing" json:"passing"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Contains reports whether the score falls inside the boundary interval,
// inclusive on both ends.
func (b GradeBoundary) Contains(score float64) bool {
	return score >= b.MinScore && score <= b.MaxScore
}

// SchemeFilter scopes scheme list queries to a school.
type SchemeFilter struct {
	SchoolID  string
	ScaleKind ScaleKind
	Page      int
	PageSize  int
}
