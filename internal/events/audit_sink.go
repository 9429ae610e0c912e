package events

import (
	"context"

	"gorm.io/gorm"

	"goldsphere/internal/models"
)

// AuditSink stores every event as an audit_logs row.
type AuditSink struct {
	db *gorm.DB
}

// NewAuditSink creates an AuditSink writing through db.
func NewAuditSink(db *gorm.DB) *AuditSink {
	return &AuditSink{db: db}
}

// Publish implements Sink. The batch is written in a single insert.
func (s *AuditSink) Publish(ctx context.Context, events []MutationEvent) error {
	rows := make([]models.AuditLog, 0, len(events))
	for _, e := range events {
		row, err := models.NewAuditLog(e.UserID, string(e.Kind), e.ResourceType(), e.ResourceID(), e)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}
