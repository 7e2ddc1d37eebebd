package service

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func newPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// lookupError maps repository lookup failures to API errors.
func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failed)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func auditPayload(values map[string]interface{}) []byte {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return payload
}

func auditEntry(actor models.Actor, action, resource, resourceID string) *models.AuditLog {
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if actor.UserID != "" {
		entry.UserID = &actor.UserID
	}
	if actor.CenterID != "" {
		entry.CenterID = &actor.CenterID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	return entry
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
