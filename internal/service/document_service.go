package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	UpdateStatus(ctx context.Context, centerID, id string, from, to models.DocumentStatus) (bool, error)
	Delete(ctx context.Context, centerID, id string) error
}

// DocumentRequest is the payload for print tasks.
type DocumentRequest struct {
	Title       string     `json:"title" validate:"required,max=160"`
	BatchID     *string    `json:"batch_id"`
	Copies      int        `json:"copies" validate:"gte=1,lte=10000"`
	RequestedBy string     `json:"requested_by" validate:"required,max=120"`
	DueDate     *time.Time `json:"due_date"`
	Note        string     `json:"note" validate:"omitempty,max=500"`
}

// DocumentStatusRequest moves a print task along its workflow.
type DocumentStatusRequest struct {
	Status models.DocumentStatus `json:"status" validate:"required,oneof=PENDING PRINTING DONE CANCELLED"`
}

// DocumentService manages the print queue.
type DocumentService struct {
	repo      documentRepository
	batches   batchLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, batches batchLookup, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{repo: repo, batches: batches, validator: withDomainTags(validate), logger: logger}
}

// List returns print tasks of the actor's center.
func (s *DocumentService) List(ctx context.Context, actor models.Actor, filter models.DocumentFilter) ([]models.Document, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list documents")
	}
	return docs, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a print task by id.
func (s *DocumentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "document not found", "failed to load document")
	}
	return doc, nil
}

// Create queues a print task.
func (s *DocumentService) Create(ctx context.Context, actor models.Actor, req DocumentRequest) (*models.Document, error) {
	if err := s.check(ctx, actor, req); err != nil {
		return nil, err
	}
	doc := &models.Document{CenterID: actor.CenterID, Status: models.DocumentStatusPending}
	applyDocumentRequest(doc, req)
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, internalError(err, "failed to create document")
	}
	return doc, nil
}

// Update edits a print task while it is still pending.
func (s *DocumentService) Update(ctx context.Context, actor models.Actor, id string, req DocumentRequest) (*models.Document, error) {
	if err := s.check(ctx, actor, req); err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocumentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending documents can be edited")
	}
	applyDocumentRequest(doc, req)
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, internalError(err, "failed to update document")
	}
	return doc, nil
}

// ChangeStatus applies a workflow transition. The write is guarded by the
// status read so concurrent transitions cannot both win.
func (s *DocumentService) ChangeStatus(ctx context.Context, actor models.Actor, id string, req DocumentStatusRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "document cannot move from "+string(doc.Status)+" to "+string(req.Status))
	}
	updated, err := s.repo.UpdateStatus(ctx, actor.CenterID, id, doc.Status, req.Status)
	if err != nil {
		return nil, internalError(err, "failed to update document status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "document status changed concurrently")
	}
	doc.Status = req.Status
	return doc, nil
}

// Delete removes a print task that is not being printed.
func (s *DocumentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if doc.Status == models.DocumentStatusPrinting {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "documents being printed cannot be deleted")
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete document")
	}
	return nil
}

func (s *DocumentService) check(ctx context.Context, actor models.Actor, req DocumentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid document payload")
	}
	if req.BatchID != nil && *req.BatchID != "" && s.batches != nil {
		if _, err := s.batches.FindByID(ctx, actor.CenterID, *req.BatchID); err != nil {
			return lookupError(err, "batch not found", "failed to load batch")
		}
	}
	return nil
}

func applyDocumentRequest(doc *models.Document, req DocumentRequest) {
	doc.Title = strings.TrimSpace(req.Title)
	doc.BatchID = nil
	if req.BatchID != nil && *req.BatchID != "" {
		doc.BatchID = optionalString(*req.BatchID)
	}
	doc.Copies = req.Copies
	doc.RequestedBy = strings.TrimSpace(req.RequestedBy)
	doc.DueDate = req.DueDate
	doc.Note = optionalString(strings.TrimSpace(req.Note))
}
