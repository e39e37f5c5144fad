package models

import "time"

// AttendanceSummary is a per-student monthly attendance rollup. The
// report card copies the most recently created row for the student and
// class, whichever month it covers.
type AttendanceSummary struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	Month          string    `db:"month" json:"month"`
	TotalDays      int       `db:"total_days" json:"total_days"`
	PresentDays    int       `db:"present_days" json:"present_days"`
	AbsentDays     int       `db:"absent_days" json:"absent_days"`
	AttendanceRate float64   `db:"attendance_rate" json:"attendance_rate"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
