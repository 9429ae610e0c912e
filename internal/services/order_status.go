package services

import (
	"fmt"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
)

// forwardTransitions maps each non-terminal status to its single successor.
var forwardTransitions = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusPending:    models.OrderStatusConfirmed,
	models.OrderStatusConfirmed:  models.OrderStatusProcessing,
	models.OrderStatusProcessing: models.OrderStatusShipped,
	models.OrderStatusShipped:    models.OrderStatusDelivered,
	models.OrderStatusDelivered:  models.OrderStatusCompleted,
}

// NextOrderStatus returns the status that follows status in the forward
// sequence. It never touches storage.
func NextOrderStatus(status models.OrderStatus) (models.OrderStatus, error) {
	switch status {
	case models.OrderStatusCompleted:
		return "", apperrors.ErrAlreadyTerminal
	case models.OrderStatusCancelled:
		return "", apperrors.ErrAlreadyCancelled
	}
	next, ok := forwardTransitions[status]
	if !ok {
		return "", apperrors.WithMessage(apperrors.ErrUnknownStatus, fmt.Sprintf("Order has an unknown status %q", status))
	}
	return next, nil
}

// checkCancel decides whether actor may cancel order. Owners may cancel only
// pending orders; administrators may cancel anything not yet delivered.
func checkCancel(order *models.Order, actor Actor) error {
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return apperrors.ErrForbidden
	}
	switch order.Status {
	case models.OrderStatusCancelled, models.OrderStatusCompleted, models.OrderStatusDelivered:
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Order in status %s cannot be cancelled", order.Status))
	}
	if !order.Status.Valid() {
		return apperrors.ErrUnknownStatus
	}
	if !actor.IsAdmin && order.Status != models.OrderStatusPending {
		return apperrors.WithMessage(apperrors.ErrForbidden, "Only pending orders can be cancelled by their owner")
	}
	return nil
}
