package services

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/pkg/logger"
)

// AuditService records operation history entries. Logging failures are
// swallowed after a log line: history must never break the operation itself.
type AuditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log records an operation history entry
func (s *AuditService) Log(ctx context.Context, userID uint, action, entity string, entityID uint, details, ip string) {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: ip,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logger.Error("failed to record operation history", "entity", entity, "action", action, "error", err)
	}
}

// List retrieves operation history entries with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, query)
}
