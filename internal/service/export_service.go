package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/export"
)

type exportGradeReader interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
}

type exportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type exportSubjectReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error)
}

type exportCardReader interface {
	FindByID(ctx context.Context, id string) (*models.ReportCard, error)
}

// ExportService renders report cards and class grade sheets into
// downloadable documents.
type ExportService struct {
	grades   exportGradeReader
	students exportStudentReader
	subjects exportSubjectReader
	cards    exportCardReader
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(grades exportGradeReader, students exportStudentReader, subjects exportSubjectReader, cards exportCardReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grades:   grades,
		students: students,
		subjects: subjects,
		cards:    cards,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
	}
}

// ReportCardPDF renders a stored report card as a PDF document. The
// returned filename is suitable for a Content-Disposition header.
func (s *ExportService) ReportCardPDF(ctx context.Context, reportCardID string) ([]byte, string, error) {
	card, err := s.cards.FindByID(ctx, reportCardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report card not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
	}

	student, err := s.students.FindByID(ctx, card.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	grades, err := s.grades.List(ctx, models.GradeFilter{
		StudentID:      card.StudentID,
		AcademicYearID: card.AcademicYearID,
		TermType:       card.TermType,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	subjectNames, err := s.subjectNames(ctx, card.ClassID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Subject", "Assignment", "Exam", "Total", "Grade", "Result"},
		Summary: [][2]string{
			{"Student", student.FullName},
			{"Admission No", student.AdmissionNo},
			{"Term", string(card.TermType)},
			{"Average Score", formatScore(card.AverageScore)},
			{"Overall Grade", derefOr(card.OverallGrade, "-")},
			{"GPA", formatGPA(card.GPA)},
			{"Position", fmt.Sprintf("%d of %d", card.Position, card.OutOf)},
			{"Attendance", fmt.Sprintf("%d/%d days (%.1f%%)", card.PresentDays, card.TotalDays, card.AttendanceRate)},
		},
	}
	for _, grade := range grades {
		result := "FAIL"
		if grade.Passed {
			result = "PASS"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject":    subjectLabel(subjectNames, grade.SubjectID),
			"Assignment": formatScore(grade.AssignmentScore),
			"Exam":       formatScore(grade.ExamScore),
			"Total":      formatScore(grade.TotalScore),
			"Grade":      derefOr(grade.LetterGrade, "-"),
			"Result":     result,
		})
	}

	payload, err := s.pdf.Render(dataset, "Report Card")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card PDF")
	}

	filename := fmt.Sprintf("report-card-%s-%s.pdf", student.AdmissionNo, card.TermType)
	return payload, filename, nil
}

// ClassGradesCSV renders the grade sheet for a class and term as CSV,
// one row per student per subject, sorted by student then subject.
func (s *ExportService) ClassGradesCSV(ctx context.Context, classID, academicYearID string, termType models.TermType) ([]byte, string, error) {
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	if len(students) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "class has no students")
	}

	grades, err := s.grades.List(ctx, models.GradeFilter{
		ClassID:        classID,
		AcademicYearID: academicYearID,
		TermType:       termType,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	subjectNames, err := s.subjectNames(ctx, classID)
	if err != nil {
		return nil, "", err
	}

	studentNames := make(map[string]string, len(students))
	for _, student := range students {
		studentNames[student.ID] = student.FullName
	}

	sort.SliceStable(grades, func(i, j int) bool {
		if grades[i].StudentID != grades[j].StudentID {
			return studentNames[grades[i].StudentID] < studentNames[grades[j].StudentID]
		}
		return subjectLabel(subjectNames, grades[i].SubjectID) < subjectLabel(subjectNames, grades[j].SubjectID)
	})

	dataset := export.Dataset{
		Headers: []string{"Student", "Subject", "Assignment", "Exam", "Total", "Grade", "Passed"},
	}
	for _, grade := range grades {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":    studentNames[grade.StudentID],
			"Subject":    subjectLabel(subjectNames, grade.SubjectID),
			"Assignment": formatScore(grade.AssignmentScore),
			"Exam":       formatScore(grade.ExamScore),
			"Total":      formatScore(grade.TotalScore),
			"Grade":      derefOr(grade.LetterGrade, ""),
			"Passed":     strconv.FormatBool(grade.Passed),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade sheet CSV")
	}

	filename := fmt.Sprintf("grades-%s-%s.csv", classID, termType)
	return payload, filename, nil
}

func (s *ExportService) subjectNames(ctx context.Context, classID string) (map[string]string, error) {
	assignments, err := s.subjects.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	names := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		names[assignment.SubjectID] = assignment.SubjectName
	}
	return names, nil
}

func subjectLabel(names map[string]string, subjectID string) string {
	if name, ok := names[subjectID]; ok {
		return name
	}
	return subjectID
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatGPA(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
