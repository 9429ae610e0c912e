package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"goldsphere/internal/events"
	"goldsphere/internal/handlers"
	"goldsphere/internal/logger"
	"goldsphere/internal/middleware"
	"goldsphere/internal/models"
	"goldsphere/internal/services"
	"goldsphere/internal/testutil"
	"goldsphere/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
// Ledger mutations are recorded through the audit sink like in production.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	portfolioService := services.NewPortfolioService(db)
	svc := handlers.Services{
		Users:        services.NewUserService(db),
		Products:     services.NewProductService(db),
		Custody:      services.NewCustodyService(db),
		Portfolios:   portfolioService,
		Positions:    services.NewPositionService(db),
		Transactions: services.NewTransactionService(db),
		Orders: services.NewOrderService(db, services.NewFulfillmentService(portfolioService),
			events.NewAuditSink(db), services.OrderServiceConfig{}),
		Audit: services.NewAuditService(db),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	handlers.RegisterRoutes(router.Group("/api/v1"), svc)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in body: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// expectStatus fails the test when rec does not carry the wanted status.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	expectStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	expectStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// registerAdmin registers a user, promotes it in the store and logs in again
// so the issued token carries the admin role.
func (app *testApp) registerAdmin(t *testing.T, email string) (accessToken, userID string) {
	t.Helper()
	_, _, userID = app.registerUser(t, email, "password123")
	if err := app.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", models.UserRoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote admin: %v", err)
	}
	accessToken, _ = app.loginUser(t, email, "password123")
	return accessToken, userID
}

// createProduct creates an active gold coin through the admin API.
func (app *testApp) createProduct(t *testing.T, adminToken, name, price string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"metal":"gold","product_type":"coin","weight_grams":"31.1035","purity":"0.9999","price":%q,"currency":"CHF"}`, name, price)
	rec := app.request(http.MethodPost, "/api/v1/products", body, adminToken)
	expectStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["product"].(map[string]interface{})["id"].(string)
}

// placeOrder places an order with one line and returns its id.
func (app *testApp) placeOrder(t *testing.T, token, orderType, productID, quantity string) string {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"currency":"CHF","items":[{"product_id":%q,"quantity":%q}]}`, orderType, productID, quantity)
	rec := app.request(http.MethodPost, "/api/v1/orders", body, token)
	expectStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["order"].(map[string]interface{})["id"].(string)
}

// advance moves an order one step forward and returns the new status.
func (app *testApp) advance(t *testing.T, adminToken, orderID string) string {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/orders/"+orderID+"/advance", "", adminToken)
	expectStatus(t, rec, http.StatusOK)
	return parseJSON(t, rec)["order"].(map[string]interface{})["status"].(string)
}

// advanceTo advances an order until it reaches status.
func (app *testApp) advanceTo(t *testing.T, adminToken, orderID, status string) {
	t.Helper()
	for i := 0; i < 6; i++ {
		if app.advance(t, adminToken, orderID) == status {
			return
		}
	}
	t.Fatalf("order %s never reached %s", orderID, status)
}

// listData returns the data array of a paginated response.
func (app *testApp) listData(t *testing.T, path, token string) []interface{} {
	t.Helper()
	rec := app.request(http.MethodGet, path, "", token)
	expectStatus(t, rec, http.StatusOK)
	data, _ := parseJSON(t, rec)["data"].([]interface{})
	return data
}
