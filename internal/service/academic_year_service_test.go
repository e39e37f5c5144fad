package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type mockAcademicYearStore struct {
	years  map[string]*models.AcademicYear
	nextID int
}

func (m *mockAcademicYearStore) Create(ctx context.Context, year *models.AcademicYear) error {
	if m.years == nil {
		m.years = make(map[string]*models.AcademicYear)
	}
	m.nextID++
	year.ID = fmt.Sprintf("year%d", m.nextID)
	m.years[year.ID] = year
	return nil
}

func (m *mockAcademicYearStore) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if year, ok := m.years[id]; ok {
		return year, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearStore) FindCurrent(ctx context.Context, schoolID string) (*models.AcademicYear, error) {
	for _, year := range m.years {
		if year.SchoolID == schoolID && year.IsCurrent {
			return year, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearStore) ListBySchool(ctx context.Context, schoolID string) ([]models.AcademicYear, error) {
	var out []models.AcademicYear
	for _, year := range m.years {
		if year.SchoolID == schoolID {
			out = append(out, *year)
		}
	}
	return out, nil
}

func (m *mockAcademicYearStore) SetCurrent(ctx context.Context, schoolID, yearID string) error {
	for _, year := range m.years {
		if year.SchoolID == schoolID {
			year.IsCurrent = year.ID == yearID
		}
	}
	return nil
}

func academicYearRequest(name string, current bool) CreateAcademicYearRequest {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	return CreateAcademicYearRequest{
		Name:      name,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		IsCurrent: current,
		SchoolID:  "school1",
	}
}

func TestAcademicYearSetCurrentReplacesPrevious(t *testing.T) {
	store := &mockAcademicYearStore{}
	svc := NewAcademicYearService(store, validator.New(), zap.NewNop())

	first, err := svc.Create(context.Background(), academicYearRequest("2025/2026", true))
	require.NoError(t, err)
	assert.True(t, first.IsCurrent)

	second, err := svc.Create(context.Background(), academicYearRequest("2026/2027", true))
	require.NoError(t, err)
	assert.True(t, second.IsCurrent)
	assert.False(t, store.years[first.ID].IsCurrent)

	current, err := svc.Current(context.Background(), "school1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestAcademicYearCreateInvalidDates(t *testing.T) {
	svc := NewAcademicYearService(&mockAcademicYearStore{}, validator.New(), zap.NewNop())

	req := academicYearRequest("2025/2026", false)
	req.EndDate = req.StartDate

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDomain.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearCurrentNone(t *testing.T) {
	svc := NewAcademicYearService(&mockAcademicYearStore{}, validator.New(), zap.NewNop())

	_, err := svc.Current(context.Background(), "school1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearSetCurrentForeignSchool(t *testing.T) {
	store := &mockAcademicYearStore{years: map[string]*models.AcademicYear{
		"year1": {ID: "year1", SchoolID: "school1", Name: "2025/2026"},
	}}
	svc := NewAcademicYearService(store, validator.New(), zap.NewNop())

	err := svc.SetCurrent(context.Background(), "school2", "year1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
