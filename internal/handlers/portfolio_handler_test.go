package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

const testPortfolioID = "01920000-0000-7000-8000-0000000000c1"

// --- mock portfolio service ---

type mockPortfolioService struct {
	createPortfolioFn   func(userID, name, description string) (*models.Portfolio, error)
	getUserPortfoliosFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	getPortfolioByIDFn  func(userID, portfolioID string) (*models.Portfolio, error)
	updatePortfolioFn   func(userID, portfolioID, name, description string) (*models.Portfolio, error)
	deletePortfolioFn   func(userID, portfolioID string) error
}

func (m *mockPortfolioService) CreatePortfolio(userID, name, description string) (*models.Portfolio, error) {
	if m.createPortfolioFn != nil {
		return m.createPortfolioFn(userID, name, description)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	if m.getUserPortfoliosFn != nil {
		return m.getUserPortfoliosFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Portfolio{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockPortfolioService) GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error) {
	if m.getPortfolioByIDFn != nil {
		return m.getPortfolioByIDFn(userID, portfolioID)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) UpdatePortfolio(userID, portfolioID, name, description string) (*models.Portfolio, error) {
	if m.updatePortfolioFn != nil {
		return m.updatePortfolioFn(userID, portfolioID, name, description)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) DeletePortfolio(userID, portfolioID string) error {
	if m.deletePortfolioFn != nil {
		return m.deletePortfolioFn(userID, portfolioID)
	}
	return nil
}

func (m *mockPortfolioService) EnsurePortfolio(_ *gorm.DB, user *models.User) (*models.Portfolio, bool, error) {
	return &models.Portfolio{UserID: user.ID}, false, nil
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

func setupPortfolioRouter(handler *PortfolioHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUser(testUserID, models.UserRoleCustomer))
	auth.POST("/portfolios", handler.CreatePortfolio)
	auth.GET("/portfolios", handler.GetPortfolios)
	auth.GET("/portfolios/:id", handler.GetPortfolio)
	auth.PUT("/portfolios/:id", handler.UpdatePortfolio)
	auth.DELETE("/portfolios/:id", handler.DeletePortfolio)
	return r
}

func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			createPortfolioFn: func(userID, name, description string) (*models.Portfolio, error) {
				return &models.Portfolio{Base: models.Base{ID: testPortfolioID}, UserID: userID, Name: name}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(portfolioSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/portfolios", `{"name":"Vault","description":"Long-term gold"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		portfolio := parseJSON(t, rec)["portfolio"].(map[string]interface{})
		if portfolio["user_id"] != testUserID {
			t.Errorf("expected portfolio owned by caller, got %v", portfolio["user_id"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/portfolios", `{"description":"nameless"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_DeletePortfolio(t *testing.T) {
	t.Run("returns 409 while positions are active", func(t *testing.T) {
		portfolioSvc := &mockPortfolioService{
			deletePortfolioFn: func(string, string) error { return apperrors.ErrPortfolioHasPositions },
		}
		r := setupPortfolioRouter(NewPortfolioHandler(portfolioSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/portfolios/"+testPortfolioID, "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PORTFOLIO_HAS_POSITIONS")
	})

	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/portfolios/"+testPortfolioID, "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	portfolioSvc := &mockPortfolioService{
		getPortfolioByIDFn: func(userID, portfolioID string) (*models.Portfolio, error) {
			if portfolioID != testPortfolioID {
				return nil, apperrors.ErrPortfolioNotFound
			}
			return &models.Portfolio{Base: models.Base{ID: portfolioID}, UserID: userID, Name: "Vault"}, nil
		},
	}
	r := setupPortfolioRouter(NewPortfolioHandler(portfolioSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/portfolios/"+testPortfolioID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(r, "GET", "/portfolios/"+testOrderID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
