package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/timeslot"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers   map[string]models.Teacher
	lastFilter models.TeacherFilter
	deleted    []string
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	m.lastFilter = filter
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockTeacherRepo) ListActive(ctx context.Context, centerID string) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, id := range sortedKeys(m.teachers) {
		t := m.teachers[id]
		if t.CenterID == centerID && t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, centerID, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok && t.CenterID == centerID {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.teachers == nil {
		m.teachers = make(map[string]models.Teacher)
	}
	if teacher.ID == "" {
		teacher.ID = "t-new"
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) SetActive(ctx context.Context, centerID, id string, active bool) error {
	t := m.teachers[id]
	t.Active = active
	m.teachers[id] = t
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, centerID, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func TestTeacherServiceCreateNormalizesTimes(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &mockBatchRepo{}, 30, nil, nil)

	teacher, err := svc.Create(context.Background(), adminActor, TeacherRequest{
		FullName:       "Ayesha Rahman",
		Phone:          "01800000000",
		Email:          "AYESHA@EXAMPLE.COM",
		Subject:        "Physics",
		MonthlySalary:  20000,
		AvailableTimes: []string{"Saturday 9:00 AM - 12:00 PM", "Monday 4:00 PM - 6:00 PM"},
	})
	require.NoError(t, err)
	assert.True(t, teacher.Active)
	require.NotNil(t, teacher.Email)
	assert.Equal(t, "ayesha@example.com", *teacher.Email)
	assert.Equal(t, []string{"Saturday 9:00 AM - 12:00 PM", "Monday 4:00 PM - 6:00 PM"}, []string(teacher.AvailableTimes))
}

func TestTeacherServiceRejectsMalformedTimes(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, nil, 30, nil, nil)

	for _, entry := range []string{"9:00 AM - 12:00 PM", "Saturday 12:00 PM - 9:00 AM", "Saturday 9:00AM-12:00PM"} {
		_, err := svc.Create(context.Background(), adminActor, TeacherRequest{
			FullName: "X", Phone: "1", Subject: "Math", AvailableTimes: []string{entry},
		})
		require.Error(t, err, entry)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), entry)
	}
}

func TestTeacherServiceAvailability(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"t1": {
			ID:       "t1",
			CenterID: adminActor.CenterID,
			AvailableTimes: []string{
				"Monday 4:00 PM - 5:00 PM",
				"Saturday 10:00 AM - 11:00 AM",
				"Saturday 9:00 AM - 10:30 AM",
			},
		},
	}}
	svc := NewTeacherService(repo, nil, 30, nil, nil)

	availability, err := svc.Availability(context.Background(), adminActor, "t1")
	require.NoError(t, err)
	assert.Equal(t, 30, availability.Interval)
	assert.Equal(t, []timeslot.DaySlot{
		{Day: "Saturday", Times: []string{"9:00 AM - 9:30 AM", "9:30 AM - 10:00 AM", "10:00 AM - 10:30 AM", "10:30 AM - 11:00 AM"}},
		{Day: "Monday", Times: []string{"4:00 PM - 4:30 PM", "4:30 PM - 5:00 PM"}},
	}, availability.Days)
}

func TestTeacherServiceAvailabilityOrdersByStartTime(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"t1": {
			ID:       "t1",
			CenterID: adminActor.CenterID,
			AvailableTimes: []string{
				"Sunday 9:00 PM - 10:00 PM",
				"Sunday 2:00 PM - 4:00 PM",
				"Sunday 7:00 AM - 8:00 AM",
				"Sunday 9:00 AM - 10:00 AM",
			},
		},
	}}
	svc := NewTeacherService(repo, nil, 60, nil, nil)

	availability, err := svc.Availability(context.Background(), adminActor, "t1")
	require.NoError(t, err)
	assert.Equal(t, 60, availability.Interval)
	assert.Equal(t, []timeslot.DaySlot{
		{Day: "Sunday", Times: []string{
			"7:00 AM - 8:00 AM",
			"9:00 AM - 10:00 AM",
			"2:00 PM - 3:00 PM",
			"3:00 PM - 4:00 PM",
			"9:00 PM - 10:00 PM",
		}},
	}, availability.Days)
}

func TestTeacherServiceDeleteBlockedByActiveBatch(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{"t1": {ID: "t1", CenterID: adminActor.CenterID, Active: true}}}
	batches := &mockBatchRepo{batches: map[string]models.BatchDetail{
		"b1": {Batch: models.Batch{ID: "b1", CenterID: adminActor.CenterID, TeacherID: "t1", Status: models.BatchStatusActive}},
	}}
	svc := NewTeacherService(repo, batches, 30, nil, nil)

	err := svc.Delete(context.Background(), adminActor, "t1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Empty(t, repo.deleted)

	_, err = svc.ToggleActive(context.Background(), adminActor, "t1")
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestTeacherServiceToggleActive(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{"t1": {ID: "t1", CenterID: adminActor.CenterID, Active: false}}}
	svc := NewTeacherService(repo, &mockBatchRepo{}, 0, nil, nil)

	teacher, err := svc.ToggleActive(context.Background(), adminActor, "t1")
	require.NoError(t, err)
	assert.True(t, teacher.Active)
	assert.True(t, repo.teachers["t1"].Active)
}
