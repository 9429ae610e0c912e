package services

import (
	"time"

	"gorm.io/gorm"

	"goldsphere/internal/models"
)

// RecordTransaction appends the ledger row for one applied order line. Every
// call inserts a new row; callers guarantee one call per line per pass.
func RecordTransaction(tx *gorm.DB, position *models.Position, order *models.Order, item *models.OrderItem) (*models.Transaction, error) {
	orderID := order.ID
	txn := &models.Transaction{
		PositionID: position.ID,
		UserID:     order.UserID,
		OrderID:    &orderID,
		Type:       order.Type,
		Date:       time.Now().UTC(),
		Quantity:   item.Quantity,
		Price:      item.UnitPrice,
		Fees:       item.Fees,
		Notes:      "Order " + order.ID,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}
