package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type mockSubmissionReader struct {
	submissions []models.GradedSubmission
}

func (m *mockSubmissionReader) ListGraded(ctx context.Context, studentID, classID, subjectID string) ([]models.GradedSubmission, error) {
	return m.submissions, nil
}

type mockExamReader struct {
	percentages []float64
}

func (m *mockExamReader) ListPercentages(ctx context.Context, studentID, classID, subjectID string) ([]float64, error) {
	return m.percentages, nil
}

type mockSchemeReader struct {
	schemes  map[string]*models.GradingScheme
	defaults map[string]*models.GradingScheme
}

func (m *mockSchemeReader) FindByID(ctx context.Context, id string) (*models.GradingScheme, error) {
	if scheme, ok := m.schemes[id]; ok {
		return scheme, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSchemeReader) FindDefault(ctx context.Context, schoolID string) (*models.GradingScheme, error) {
	if scheme, ok := m.defaults[schoolID]; ok {
		return scheme, nil
	}
	return nil, sql.ErrNoRows
}

type gradeKey struct {
	studentID string
	subjectID string
}

type mockGradeStore struct {
	rows     map[gradeKey]*models.Grade
	upserted []*models.Grade
}

func (m *mockGradeStore) FindByKey(ctx context.Context, studentID, subjectID, academicYearID string, termType models.TermType) (*models.Grade, error) {
	if grade, ok := m.rows[gradeKey{studentID, subjectID}]; ok {
		return grade, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeStore) Upsert(ctx context.Context, grade *models.Grade) error {
	if m.rows == nil {
		m.rows = make(map[gradeKey]*models.Grade)
	}
	// The real store writes revision+1 and reflects it on the struct.
	grade.Revision++
	m.rows[gradeKey{grade.StudentID, grade.SubjectID}] = grade
	m.upserted = append(m.upserted, grade)
	return nil
}

func (m *mockGradeStore) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	var out []models.Grade
	for _, grade := range m.rows {
		out = append(out, *grade)
	}
	return out, nil
}

type mockClassSubjectReader struct {
	assignments []models.ClassSubjectDetail
}

func (m *mockClassSubjectReader) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	return m.assignments, nil
}

func gp(v float64) *float64 { return &v }

func letterScheme() *models.GradingScheme {
	return &models.GradingScheme{
		ID:        "scheme1",
		SchoolID:  "school1",
		Name:      "Standard Letter",
		ScaleKind: models.ScaleLetter,
		IsDefault: true,
		Boundaries: []models.GradeBoundary{
			{ID: "b-a", Label: "A", MinScore: 90, MaxScore: 100, GradePoint: gp(4), Passing: true},
			{ID: "b-b", Label: "B", MinScore: 80, MaxScore: 89.99, GradePoint: gp(3), Passing: true},
			{ID: "b-c", Label: "C", MinScore: 70, MaxScore: 79.99, GradePoint: gp(2), Passing: true},
			{ID: "b-d", Label: "D", MinScore: 60, MaxScore: 69.99, GradePoint: gp(1), Passing: true},
			{ID: "b-f", Label: "F", MinScore: 0, MaxScore: 59.99, GradePoint: gp(0), Passing: false},
		},
	}
}

func newGradeService(subs *mockSubmissionReader, exams *mockExamReader, schemes *mockSchemeReader, grades *mockGradeStore, subjects *mockClassSubjectReader) *GradeService {
	return NewGradeService(subs, exams, schemes, grades, subjects, nil, validator.New(), zap.NewNop())
}

func computeRequest() ComputeGradeRequest {
	return ComputeGradeRequest{
		StudentID:      "student1",
		ClassID:        "class1",
		SubjectID:      "subject1",
		AcademicYearID: "year1",
		TermType:       models.TermType("TERM_1"),
		SchemeID:       "scheme1",
		SchoolID:       "school1",
	}
}

func TestComputeSubjectGradeBlendsComponents(t *testing.T) {
	subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
		{SubmissionID: "s1", Points: 85, TotalPoints: 100},
	}}
	exams := &mockExamReader{percentages: []float64{70}}
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	grades := &mockGradeStore{}
	svc := newGradeService(subs, exams, schemes, grades, nil)

	grade, err := svc.ComputeSubjectGrade(context.Background(), computeRequest())
	require.NoError(t, err)

	assert.Equal(t, 85.0, grade.AssignmentScore)
	assert.Equal(t, 70.0, grade.ExamScore)
	assert.Equal(t, 76.0, grade.TotalScore)
	require.NotNil(t, grade.LetterGrade)
	assert.Equal(t, "C", *grade.LetterGrade)
	assert.True(t, grade.Passed)
	assert.Len(t, grades.upserted, 1)
}

func TestComputeSubjectGradeMissingComponentScoresZero(t *testing.T) {
	subs := &mockSubmissionReader{}
	exams := &mockExamReader{percentages: []float64{100}}
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	svc := newGradeService(subs, exams, schemes, &mockGradeStore{}, nil)

	grade, err := svc.ComputeSubjectGrade(context.Background(), computeRequest())
	require.NoError(t, err)

	assert.Equal(t, 0.0, grade.AssignmentScore)
	assert.Equal(t, 100.0, grade.ExamScore)
	assert.Equal(t, 60.0, grade.TotalScore)
	require.NotNil(t, grade.LetterGrade)
	assert.Equal(t, "D", *grade.LetterGrade)
}

func TestComputeSubjectGradePerfectScore(t *testing.T) {
	subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
		{SubmissionID: "s1", Points: 50, TotalPoints: 50},
	}}
	exams := &mockExamReader{percentages: []float64{100, 100}}
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	svc := newGradeService(subs, exams, schemes, &mockGradeStore{}, nil)

	grade, err := svc.ComputeSubjectGrade(context.Background(), computeRequest())
	require.NoError(t, err)

	assert.Equal(t, 100.0, grade.TotalScore)
	require.NotNil(t, grade.LetterGrade)
	assert.Equal(t, "A", *grade.LetterGrade)
}

func TestComputeSubjectGradeBoundaryEdges(t *testing.T) {
	cases := []struct {
		name     string
		score    float64
		expected string
	}{
		{"lower bound inclusive", 90, "A"},
		{"just below bound", 89.99, "B"},
		{"zero score", 0, "F"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
				{SubmissionID: "s1", Points: tc.score, TotalPoints: 100},
			}}
			exams := &mockExamReader{percentages: []float64{tc.score}}
			schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
			svc := newGradeService(subs, exams, schemes, &mockGradeStore{}, nil)

			grade, err := svc.ComputeSubjectGrade(context.Background(), computeRequest())
			require.NoError(t, err)
			assert.Equal(t, tc.score, grade.TotalScore)
			require.NotNil(t, grade.LetterGrade)
			assert.Equal(t, tc.expected, *grade.LetterGrade)
		})
	}
}

func TestComputeSubjectGradeNoSchemeLeavesUnlabelled(t *testing.T) {
	subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
		{SubmissionID: "s1", Points: 95, TotalPoints: 100},
	}}
	exams := &mockExamReader{percentages: []float64{95}}
	schemes := &mockSchemeReader{}
	svc := newGradeService(subs, exams, schemes, &mockGradeStore{}, nil)

	req := computeRequest()
	req.SchemeID = ""

	grade, err := svc.ComputeSubjectGrade(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, grade.LetterGrade)
	assert.Nil(t, grade.GradePoint)
	assert.False(t, grade.Passed)
}

func TestComputeSubjectGradeUnknownSchemeFails(t *testing.T) {
	svc := newGradeService(&mockSubmissionReader{}, &mockExamReader{}, &mockSchemeReader{}, &mockGradeStore{}, nil)

	req := computeRequest()
	req.SchemeID = "missing"

	_, err := svc.ComputeSubjectGrade(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestComputeSubjectGradeLockedRefusesRecompute(t *testing.T) {
	grades := &mockGradeStore{rows: map[gradeKey]*models.Grade{
		{"student1", "subject1"}: {ID: "g1", StudentID: "student1", SubjectID: "subject1", TotalScore: 88, Locked: true},
	}}
	svc := newGradeService(&mockSubmissionReader{}, &mockExamReader{}, &mockSchemeReader{}, grades, nil)

	req := computeRequest()
	req.SchemeID = ""
	req.SchoolID = ""

	_, err := svc.ComputeSubjectGrade(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErrors.FromError(err).Code)
	assert.Empty(t, grades.upserted)
}

func TestComputeSubjectGradeForceOverwritesLocked(t *testing.T) {
	remarks := "needs attention"
	grades := &mockGradeStore{rows: map[gradeKey]*models.Grade{
		{"student1", "subject1"}: {ID: "g1", StudentID: "student1", SubjectID: "subject1", TotalScore: 88, Locked: true, Remarks: &remarks, Revision: 3},
	}}
	subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
		{SubmissionID: "s1", Points: 60, TotalPoints: 100},
	}}
	exams := &mockExamReader{percentages: []float64{60}}
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	svc := newGradeService(subs, exams, schemes, grades, nil)

	req := computeRequest()
	req.Force = true

	grade, err := svc.ComputeSubjectGrade(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "g1", grade.ID)
	assert.Equal(t, 60.0, grade.TotalScore)
	assert.True(t, grade.Locked)
	require.NotNil(t, grade.Remarks)
	assert.Equal(t, remarks, *grade.Remarks)
	// The forced write replaces revision 3, so the stored row is at 4.
	assert.Equal(t, 4, grade.Revision)
}

func TestComputeTermGradesSkipsLockedSubjects(t *testing.T) {
	locked := &models.Grade{ID: "g-locked", StudentID: "student1", SubjectID: "subject1", TotalScore: 91, Locked: true}
	grades := &mockGradeStore{rows: map[gradeKey]*models.Grade{
		{"student1", "subject1"}: locked,
	}}
	subs := &mockSubmissionReader{submissions: []models.GradedSubmission{
		{SubmissionID: "s1", Points: 80, TotalPoints: 100},
	}}
	exams := &mockExamReader{percentages: []float64{80}}
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	subjects := &mockClassSubjectReader{assignments: []models.ClassSubjectDetail{
		{ClassSubject: models.ClassSubject{SubjectID: "subject1"}, SubjectCode: "MTH", SubjectName: "Mathematics"},
		{ClassSubject: models.ClassSubject{SubjectID: "subject2"}, SubjectCode: "ENG", SubjectName: "English"},
	}}
	svc := newGradeService(subs, exams, schemes, grades, subjects)

	result, err := svc.ComputeTermGrades(context.Background(), ComputeTermRequest{
		StudentID:      "student1",
		ClassID:        "class1",
		AcademicYearID: "year1",
		TermType:       models.TermType("TERM_1"),
		SchemeID:       "scheme1",
		SchoolID:       "school1",
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, 91.0, result[0].TotalScore)
	assert.True(t, result[0].Locked)
	assert.Equal(t, 80.0, result[1].TotalScore)
	assert.Len(t, grades.upserted, 1)
}

func TestResolveGradeIsStable(t *testing.T) {
	schemes := &mockSchemeReader{schemes: map[string]*models.GradingScheme{"scheme1": letterScheme()}}
	svc := newGradeService(&mockSubmissionReader{}, &mockExamReader{}, schemes, &mockGradeStore{}, nil)

	first, err := svc.ResolveGrade(context.Background(), "scheme1", "", 84.5)
	require.NoError(t, err)
	second, err := svc.ResolveGrade(context.Background(), "scheme1", "", 84.5)
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Label, second.Label)
	assert.Equal(t, "B", first.Label)
}
