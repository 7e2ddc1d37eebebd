package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type mockAttendanceRepo struct {
	upserted   []models.Attendance
	counts     []models.AttendanceStatusCount
	lastFilter models.AttendanceFilter
	countFrom  *time.Time
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	m.lastFilter = filter
	return []models.AttendanceRecord{}, 0, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockAttendanceRepo) StatusCounts(ctx context.Context, centerID, studentID string, from, to *time.Time) ([]models.AttendanceStatusCount, error) {
	m.countFrom = from
	return m.counts, nil
}

type stubRoster struct {
	members map[string]bool
}

func (s stubRoster) CountInBatch(ctx context.Context, centerID, batchID string, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		if s.members[id] {
			count++
		}
	}
	return count, nil
}

func (s stubRoster) FindByID(ctx context.Context, centerID, id string) (*models.StudentDetail, error) {
	if s.members[id] {
		return &models.StudentDetail{Student: models.Student{ID: id, CenterID: centerID}}, nil
	}
	return nil, sql.ErrNoRows
}

func newTestAttendanceService(repo *mockAttendanceRepo) *AttendanceService {
	batches := stubBatchLookup{"b1": {Batch: models.Batch{ID: "b1", CenterID: adminActor.CenterID}}}
	svc := NewAttendanceService(repo, stubRoster{members: map[string]bool{"s1": true, "s2": true}}, batches, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestAttendanceServiceRecord(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newTestAttendanceService(repo)

	result, err := svc.Record(context.Background(), adminActor, BulkAttendanceRequest{
		BatchID: "b1",
		Date:    "2024-05-20",
		Marks: []AttendanceMark{
			{StudentID: "s1", Status: "present"},
			{StudentID: "s2", Status: "LATE"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recorded)
	require.Len(t, repo.upserted, 2)
	assert.Equal(t, models.AttendanceStatusPresent, repo.upserted[0].Status)
	assert.Equal(t, models.AttendanceStatusLate, repo.upserted[1].Status)
	assert.Equal(t, adminActor.CenterID, repo.upserted[0].CenterID)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), repo.upserted[0].Date)
}

func TestAttendanceServiceRecordRejections(t *testing.T) {
	cases := []struct {
		name string
		req  BulkAttendanceRequest
		want error
	}{
		{"unknown status", BulkAttendanceRequest{BatchID: "b1", Date: "2024-05-20", Marks: []AttendanceMark{{StudentID: "s1", Status: "SICK"}}}, appErrors.ErrValidation},
		{"bad date", BulkAttendanceRequest{BatchID: "b1", Date: "20-05-2024", Marks: []AttendanceMark{{StudentID: "s1", Status: "PRESENT"}}}, appErrors.ErrValidation},
		{"future date", BulkAttendanceRequest{BatchID: "b1", Date: "2024-05-21", Marks: []AttendanceMark{{StudentID: "s1", Status: "PRESENT"}}}, appErrors.ErrValidation},
		{"duplicate student", BulkAttendanceRequest{BatchID: "b1", Date: "2024-05-20", Marks: []AttendanceMark{{StudentID: "s1", Status: "PRESENT"}, {StudentID: "s1", Status: "ABSENT"}}}, appErrors.ErrValidation},
		{"outsider", BulkAttendanceRequest{BatchID: "b1", Date: "2024-05-20", Marks: []AttendanceMark{{StudentID: "s9", Status: "PRESENT"}}}, appErrors.ErrValidation},
		{"unknown batch", BulkAttendanceRequest{BatchID: "b9", Date: "2024-05-20", Marks: []AttendanceMark{{StudentID: "s1", Status: "PRESENT"}}}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockAttendanceRepo{}
			_, err := newTestAttendanceService(repo).Record(context.Background(), adminActor, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
			assert.Empty(t, repo.upserted)
		})
	}
}

func TestAttendanceServiceSummary(t *testing.T) {
	repo := &mockAttendanceRepo{counts: []models.AttendanceStatusCount{
		{Status: models.AttendanceStatusPresent, Count: 7},
		{Status: models.AttendanceStatusAbsent, Count: 1},
		{Status: models.AttendanceStatusLate, Count: 1},
	}}
	svc := newTestAttendanceService(repo)

	summary, err := svc.Summary(context.Background(), adminActor, "s1", "2024-05-01", "")
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 7, summary.Present)
	assert.Equal(t, 0, summary.Leave)
	assert.InDelta(t, 77.78, summary.PresentPercent, 0.001)
	require.NotNil(t, repo.countFrom)

	empty := buildAttendanceSummary("s2", nil)
	assert.Zero(t, empty.PresentPercent)

	_, err = svc.Summary(context.Background(), adminActor, "s9", "", "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceListFilters(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newTestAttendanceService(repo)
	status := "absent"

	_, _, err := svc.List(context.Background(), adminActor, AttendanceListRequest{BatchID: "b1", Status: &status, DateFrom: "2024-05-01", DateTo: "2024-05-31"})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.AttendanceStatusAbsent, *repo.lastFilter.Status)
	assert.Equal(t, adminActor.CenterID, repo.lastFilter.CenterID)

	_, _, err = svc.List(context.Background(), adminActor, AttendanceListRequest{DateFrom: "2024-05-31", DateTo: "2024-05-01"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
