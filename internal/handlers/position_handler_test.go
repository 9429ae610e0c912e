package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

const testPositionID = "01920000-0000-7000-8000-0000000000d1"

// --- mock position and transaction services ---

type mockPositionService struct {
	getUserPositionsFn func(userID string, page pagination.PageRequest, filter services.PositionFilter) (*pagination.PageResponse[models.Position], error)
	getPositionByIDFn  func(userID, positionID string) (*models.Position, error)
}

func (m *mockPositionService) GetUserPositions(userID string, page pagination.PageRequest, filter services.PositionFilter) (*pagination.PageResponse[models.Position], error) {
	if m.getUserPositionsFn != nil {
		return m.getUserPositionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Position{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockPositionService) GetPositionByID(userID, positionID string) (*models.Position, error) {
	if m.getPositionByIDFn != nil {
		return m.getPositionByIDFn(userID, positionID)
	}
	return &models.Position{}, nil
}

var _ services.PositionServicer = (*mockPositionService)(nil)

type mockTransactionService struct {
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupPositionRouter(handler *PositionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUser(testUserID, models.UserRoleCustomer))
	auth.GET("/positions", handler.GetPositions)
	auth.GET("/positions/:id", handler.GetPosition)
	auth.GET("/positions/:id/transactions", handler.GetPositionTransactions)
	return r
}

func TestPositionHandler_GetPositions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.PositionFilter
		positionSvc := &mockPositionService{
			getUserPositionsFn: func(_ string, _ pagination.PageRequest, filter services.PositionFilter) (*pagination.PageResponse[models.Position], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Position{{
					Base:     models.Base{ID: testPositionID},
					Quantity: decimal.NewFromInt(3),
					Status:   models.PositionStatusActive,
				}}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupPositionRouter(NewPositionHandler(positionSvc, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/positions?portfolio_id="+testPortfolioID+"&status=active", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.PortfolioID == nil || *got.PortfolioID != testPortfolioID {
			t.Errorf("expected portfolio filter, got %v", got.PortfolioID)
		}
		if got.Status == nil || *got.Status != models.PositionStatusActive {
			t.Errorf("expected active filter, got %v", got.Status)
		}
	})

	t.Run("returns 400 on unknown status", func(t *testing.T) {
		r := setupPositionRouter(NewPositionHandler(&mockPositionService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/positions?status=sold", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed portfolio id", func(t *testing.T) {
		r := setupPositionRouter(NewPositionHandler(&mockPositionService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/positions?portfolio_id=main", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPositionHandler_GetPositionTransactions(t *testing.T) {
	t.Run("scopes the ledger to the position", func(t *testing.T) {
		var got services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupPositionRouter(NewPositionHandler(&mockPositionService{}, txSvc))

		rec := doRequest(r, "GET", "/positions/"+testPositionID+"/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.PositionID == nil || *got.PositionID != testPositionID {
			t.Errorf("expected position filter, got %v", got.PositionID)
		}
	})

	t.Run("returns 404 for someone else's position", func(t *testing.T) {
		positionSvc := &mockPositionService{
			getPositionByIDFn: func(string, string) (*models.Position, error) {
				return nil, apperrors.WithMessage(apperrors.ErrNotFound, "Position not found")
			},
		}
		called := false
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(string, pagination.PageRequest, services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				called = true
				return nil, nil
			},
		}
		r := setupPositionRouter(NewPositionHandler(positionSvc, txSvc))

		rec := doRequest(r, "GET", "/positions/"+testPositionID+"/transactions", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if called {
			t.Error("transactions must not be listed for a foreign position")
		}
	})
}

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUser(testUserID, models.UserRoleCustomer))
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	return r
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "GET", "/transactions?type=SELL&order_id="+testOrderID+"&from_date=2026-01-01&to_date=2026-12-31T23:59:59Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Type == nil || *got.Type != models.OrderTypeSell {
			t.Errorf("expected sell filter, got %v", got.Type)
		}
		if got.OrderID == nil || *got.OrderID != testOrderID {
			t.Errorf("expected order filter, got %v", got.OrderID)
		}
		if got.FromDate == nil || got.ToDate == nil || !got.FromDate.Before(*got.ToDate) {
			t.Errorf("expected date range, got %v..%v", got.FromDate, got.ToDate)
		}
	})

	badQueries := []string{"type=transfer", "from_date=yesterday", "position_id=42"}
	for _, q := range badQueries {
		t.Run("returns 400 on "+q, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

			rec := doRequest(r, "GET", "/transactions?"+q, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	txSvc := &mockTransactionService{
		getTransactionByIDFn: func(string, string) (*models.Transaction, error) {
			return nil, apperrors.ErrTransactionNotFound
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc))

	rec := doRequest(r, "GET", "/transactions/"+testOrderID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
}
