package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AuditWriter persists audit trail rows.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit log for every successful write of the given
// resource. Reads are skipped.
func Audit(repo AuditWriter, resource string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		action, tracked := auditAction(c.Request.Method)
		if !tracked || c.Writer.Status() >= 400 || repo == nil {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if claims, ok := Claims(c); ok {
			entry.UserID = &claims.UserID
			if claims.CenterID != "" {
				entry.CenterID = &claims.CenterID
			}
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := repo.CreateAuditLog(c.Request.Context(), entry); err != nil {
			logger.Warn("audit log write failed", zap.String("resource", resource), zap.Error(err))
		}
	}
}

func auditAction(method string) (string, bool) {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate, true
	case http.MethodDelete:
		return models.AuditActionDelete, true
	}
	return "", false
}
