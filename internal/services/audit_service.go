package services

import (
	"gorm.io/gorm"

	"goldsphere/internal/logger"
	"goldsphere/internal/models"
)

// auditService writes request-level audit rows. Ledger mutations reach
// the same table through events.AuditSink with the same row shape.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and swallowed so the
// audited operation still succeeds.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Get().Named("audit").With("action", action, "resource_type", resourceType, "resource_id", resourceID)

	entry, err := models.NewAuditLog(userID, action, resourceType, resourceID, changes)
	if err != nil {
		log.Errorw("failed to encode audit changes", "error", err)
		entry.Changes = "{}"
	}
	entry.IPAddress = ipAddress

	if err := s.db.Create(&entry).Error; err != nil {
		log.Errorw("failed to create audit log entry", "error", err, "user_id", userID)
	}
}
