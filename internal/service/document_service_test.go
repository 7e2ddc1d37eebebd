package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type mockDocumentRepo struct {
	docs       map[string]models.Document
	lostRace   bool
	statusCall int
}

func (m *mockDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	return []models.Document{}, 0, nil
}

func (m *mockDocumentRepo) FindByID(ctx context.Context, centerID, id string) (*models.Document, error) {
	if d, ok := m.docs[id]; ok && d.CenterID == centerID {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	doc.ID = "d-new"
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, centerID, id string, from, to models.DocumentStatus) (bool, error) {
	m.statusCall++
	if m.lostRace {
		return false, nil
	}
	d := m.docs[id]
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	m.docs[id] = d
	return true, nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, centerID, id string) error {
	delete(m.docs, id)
	return nil
}

func newDocumentFixture() (*DocumentService, *mockDocumentRepo) {
	repo := &mockDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", CenterID: adminActor.CenterID, Title: "Handout", Copies: 40, Status: models.DocumentStatusPending},
	}}
	batches := stubBatchLookup{"b1": {Batch: models.Batch{ID: "b1", CenterID: adminActor.CenterID}}}
	return NewDocumentService(repo, batches, nil, nil), repo
}

func TestDocumentServiceCreate(t *testing.T) {
	svc, _ := newDocumentFixture()

	doc, err := svc.Create(context.Background(), adminActor, DocumentRequest{Title: "Model test", BatchID: ptr("b1"), Copies: 35, RequestedBy: "Ayesha"})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusPending, doc.Status)

	_, err = svc.Create(context.Background(), adminActor, DocumentRequest{Title: "x", Copies: 0, RequestedBy: "A"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), adminActor, DocumentRequest{Title: "x", Copies: 1, RequestedBy: "A", BatchID: ptr("b9")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDocumentServiceWorkflow(t *testing.T) {
	svc, repo := newDocumentFixture()
	ctx := context.Background()

	_, err := svc.ChangeStatus(ctx, adminActor, "d1", DocumentStatusRequest{Status: models.DocumentStatusDone})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	doc, err := svc.ChangeStatus(ctx, adminActor, "d1", DocumentStatusRequest{Status: models.DocumentStatusPrinting})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusPrinting, doc.Status)

	_, err = svc.Update(ctx, adminActor, "d1", DocumentRequest{Title: "x", Copies: 1, RequestedBy: "A"})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.True(t, errors.Is(svc.Delete(ctx, adminActor, "d1"), appErrors.ErrPreconditionFailed))

	doc, err = svc.ChangeStatus(ctx, adminActor, "d1", DocumentStatusRequest{Status: models.DocumentStatusDone})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusDone, doc.Status)

	for _, next := range []models.DocumentStatus{models.DocumentStatusPending, models.DocumentStatusPrinting, models.DocumentStatusCancelled} {
		_, err = svc.ChangeStatus(ctx, adminActor, "d1", DocumentStatusRequest{Status: next})
		assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition), string(next))
	}
	assert.Equal(t, 2, repo.statusCall)
}

func TestDocumentServiceConcurrentTransition(t *testing.T) {
	svc, repo := newDocumentFixture()
	repo.lostRace = true

	_, err := svc.ChangeStatus(context.Background(), adminActor, "d1", DocumentStatusRequest{Status: models.DocumentStatusCancelled})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestDocumentStatusTransitions(t *testing.T) {
	allowed := map[models.DocumentStatus][]models.DocumentStatus{
		models.DocumentStatusPending:  {models.DocumentStatusPrinting, models.DocumentStatusCancelled},
		models.DocumentStatusPrinting: {models.DocumentStatusDone, models.DocumentStatusCancelled},
	}
	all := []models.DocumentStatus{models.DocumentStatusPending, models.DocumentStatusPrinting, models.DocumentStatusDone, models.DocumentStatusCancelled}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, contains(allowed[from], to), from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func contains(values []models.DocumentStatus, target models.DocumentStatus) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
