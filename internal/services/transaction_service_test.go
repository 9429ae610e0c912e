package services

import (
	"context"
	"testing"

	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/testutil"
)

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	orders := newTestOrderService(db, nil)
	svc := NewTransactionService(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	coin := testutil.CreateTestProduct(t, db, "1500")
	bar := testutil.CreateTestProduct(t, db, "5800")

	buy := testutil.CreateTestOrder(t, db, user.ID, models.OrderTypeBuy, models.OrderStatusShipped,
		testutil.TestLine{ProductID: coin.ID, Quantity: "3", UnitPrice: "1500"},
		testutil.TestLine{ProductID: bar.ID, Quantity: "1", UnitPrice: "5800"},
	)
	_, err := orders.AdvanceOrder(ctx, buy.ID)
	testutil.AssertNoError(t, err)

	sell := testutil.CreateTestOrder(t, db, user.ID, models.OrderTypeSell, models.OrderStatusShipped,
		testutil.TestLine{ProductID: coin.ID, Quantity: "1", UnitPrice: "1600"})
	_, err = orders.AdvanceOrder(ctx, sell.ID)
	testutil.AssertNoError(t, err)

	t.Run("all", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Errorf("expected 3 transactions, got %d", page.TotalItems)
		}
	})

	t.Run("by_type", func(t *testing.T) {
		sellType := models.OrderTypeSell
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &sellType})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 sell, got %d", page.TotalItems)
		}
		testutil.AssertDecimal(t, "price", page.Data[0].Price, "1600")
	})

	t.Run("by_order", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{OrderID: &buy.ID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions for the buy order, got %d", page.TotalItems)
		}
	})

	t.Run("by_position", func(t *testing.T) {
		var pos models.Position
		db.Where("user_id = ? AND product_id = ?", user.ID, coin.ID).First(&pos)
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{PositionID: &pos.ID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected buy and sell on the coin position, got %d", page.TotalItems)
		}
	})

	t.Run("other_user_sees_nothing", func(t *testing.T) {
		page, err := svc.GetUserTransactions(other.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected 0, got %d", page.TotalItems)
		}
	})

	t.Run("get_by_id", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{PageSize: 1}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		id := page.Data[0].ID

		txn, err := svc.GetTransactionByID(user.ID, id)
		testutil.AssertNoError(t, err)
		if txn.ID != id {
			t.Errorf("expected %s, got %s", id, txn.ID)
		}

		_, err = svc.GetTransactionByID(other.ID, id)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
