package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type mockGradeHistoryReader struct {
	grades []models.Grade
}

func (m *mockGradeHistoryReader) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	return m.grades, nil
}

type mockTranscriptStore struct {
	rows     map[string]*models.Transcript
	upserted int
}

func (m *mockTranscriptStore) Upsert(ctx context.Context, transcript *models.Transcript) error {
	if m.rows == nil {
		m.rows = make(map[string]*models.Transcript)
	}
	if transcript.ID == "" {
		transcript.ID = "t1"
	}
	stored := *transcript
	m.rows[transcript.StudentID] = &stored
	m.upserted++
	return nil
}

func (m *mockTranscriptStore) FindByStudent(ctx context.Context, studentID string) (*models.Transcript, error) {
	if transcript, ok := m.rows[studentID]; ok {
		copied := *transcript
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func transcriptDeps() (*mockGradeHistoryReader, *mockTranscriptStore, *mockStudentReader, *mockCache) {
	grades := &mockGradeHistoryReader{grades: []models.Grade{
		{StudentID: "student1", SubjectID: "subject1", TotalScore: 92, GradePoint: gp(4), Passed: true},
		{StudentID: "student1", SubjectID: "subject2", TotalScore: 74, GradePoint: gp(2), Passed: true},
		{StudentID: "student1", SubjectID: "subject3", TotalScore: 40, GradePoint: gp(0), Passed: false},
	}}
	store := &mockTranscriptStore{}
	students := &mockStudentReader{students: map[string]*models.Student{
		"student1": {ID: "student1", FullName: "Asha Mwangi"},
	}}
	return grades, store, students, &mockCache{}
}

func TestTranscriptRefreshRescansHistory(t *testing.T) {
	grades, store, students, cache := transcriptDeps()
	svc := NewTranscriptService(grades, store, students, cache, nil, zap.NewNop(), time.Minute)

	result, err := svc.Refresh(context.Background(), "student1")
	require.NoError(t, err)

	transcript := result.Transcript
	assert.Equal(t, 3, transcript.TotalCredits)
	assert.Equal(t, 2, transcript.EarnedCredits)
	require.NotNil(t, transcript.CumulativeGPA)
	assert.Equal(t, 2.0, *transcript.CumulativeGPA)
	assert.Len(t, result.Grades, 3)
	assert.Equal(t, 1, store.upserted)
}

func TestTranscriptRefreshReplacesExisting(t *testing.T) {
	grades, store, students, cache := transcriptDeps()
	svc := NewTranscriptService(grades, store, students, cache, nil, zap.NewNop(), time.Minute)

	first, err := svc.Refresh(context.Background(), "student1")
	require.NoError(t, err)

	// A new passing grade shifts the rollup on the next full rescan.
	grades.grades = append(grades.grades, models.Grade{
		StudentID: "student1", SubjectID: "subject4", TotalScore: 85, GradePoint: gp(3), Passed: true,
	})

	second, err := svc.Refresh(context.Background(), "student1")
	require.NoError(t, err)

	assert.Equal(t, first.Transcript.ID, second.Transcript.ID)
	assert.Equal(t, 4, second.Transcript.TotalCredits)
	assert.Equal(t, 3, second.Transcript.EarnedCredits)
	require.NotNil(t, second.Transcript.CumulativeGPA)
	assert.Equal(t, 2.25, *second.Transcript.CumulativeGPA)
}

func TestTranscriptRefreshNoGrades(t *testing.T) {
	_, store, students, cache := transcriptDeps()
	svc := NewTranscriptService(&mockGradeHistoryReader{}, store, students, cache, nil, zap.NewNop(), time.Minute)

	result, err := svc.Refresh(context.Background(), "student1")
	require.NoError(t, err)

	assert.Zero(t, result.Transcript.TotalCredits)
	assert.Zero(t, result.Transcript.EarnedCredits)
	assert.Nil(t, result.Transcript.CumulativeGPA)
}

func TestTranscriptRefreshUnknownStudent(t *testing.T) {
	grades, store, students, cache := transcriptDeps()
	svc := NewTranscriptService(grades, store, students, cache, nil, zap.NewNop(), time.Minute)

	_, err := svc.Refresh(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTranscriptGetFallsBackToRefresh(t *testing.T) {
	grades, store, students, cache := transcriptDeps()
	svc := NewTranscriptService(grades, store, students, cache, nil, zap.NewNop(), time.Minute)

	result, err := svc.Get(context.Background(), "student1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Transcript.TotalCredits)
	assert.Equal(t, 1, store.upserted)
}

// servedTranscriptCache answers Get from a primed result instead of
// always missing.
type servedTranscriptCache struct {
	mockCache
	result *TranscriptResult
}

func (m *servedTranscriptCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.result == nil {
		return appErrors.ErrCacheMiss
	}
	*dest.(*TranscriptResult) = *m.result
	return nil
}

func TestTranscriptGetRecordsCacheMetrics(t *testing.T) {
	grades, store, students, cache := transcriptDeps()
	metrics := &mockMetricsRecorder{}
	svc := NewTranscriptService(grades, store, students, cache, metrics, zap.NewNop(), time.Minute)

	_, err := svc.Get(context.Background(), "student1")
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.cacheMisses)
	assert.Zero(t, metrics.cacheHits)

	served := &servedTranscriptCache{result: &TranscriptResult{
		Transcript: models.Transcript{ID: "t1", StudentID: "student1", TotalCredits: 3},
	}}
	svc = NewTranscriptService(grades, store, students, served, metrics, zap.NewNop(), time.Minute)

	cachedResult, err := svc.Get(context.Background(), "student1")
	require.NoError(t, err)
	assert.Equal(t, 3, cachedResult.Transcript.TotalCredits)
	assert.Equal(t, 1, metrics.cacheHits)
	assert.Equal(t, 1, metrics.cacheMisses)
	assert.Equal(t, 1, store.upserted)
}
