package models

import "encoding/json"

// AuditLog records sensitive operations and ledger mutations for compliance.
type AuditLog struct {
	Ledger
	UserID       string `gorm:"index" json:"user_id"`
	Action       string `gorm:"not null;index" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address,omitempty"`
	Changes      string `json:"changes,omitempty"`
}

// NewAuditLog builds an audit row with changes encoded as JSON. A nil
// changes value leaves the column empty.
func NewAuditLog(userID, action, resourceType, resourceID string, changes interface{}) (AuditLog, error) {
	row := AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if changes == nil {
		return row, nil
	}
	if m, ok := changes.(map[string]interface{}); ok && m == nil {
		return row, nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return row, err
	}
	row.Changes = string(data)
	return row, nil
}
