package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	productService services.ProductServicer
	auditService   services.AuditServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer, auditService services.AuditServicer) *ProductHandler {
	return &ProductHandler{productService: productService, auditService: auditService}
}

// ProductRequest is the payload for creating or replacing a catalog product.
type ProductRequest struct {
	Name              string          `json:"name" binding:"required,max=200"`
	Metal             string          `json:"metal" binding:"required,metal"`
	ProductType       string          `json:"product_type" binding:"required,product_type"`
	WeightGrams       decimal.Decimal `json:"weight_grams" binding:"decimal_positive"`
	Purity            decimal.Decimal `json:"purity" binding:"decimal_positive"`
	Producer          string          `json:"producer" binding:"max=200"`
	Country           string          `json:"country" binding:"omitempty,len=2"`
	Year              int             `json:"year" binding:"omitempty,min=1800,max=2200"`
	Price             decimal.Decimal `json:"price" binding:"decimal_positive"`
	Currency          string          `json:"currency" binding:"required,iso4217"`
	MinPriceIncrement decimal.Decimal `json:"min_price_increment" binding:"decimal_nonnegative"`
	InStock           *bool           `json:"in_stock"`
	Description       string          `json:"description" binding:"max=2000"`
}

func (r ProductRequest) toInput() services.ProductInput {
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	return services.ProductInput{
		Name:              r.Name,
		Metal:             models.Metal(strings.ToLower(r.Metal)),
		ProductType:       models.ProductType(strings.ToLower(r.ProductType)),
		WeightGrams:       r.WeightGrams,
		Purity:            r.Purity,
		Producer:          r.Producer,
		Country:           strings.ToUpper(r.Country),
		Year:              r.Year,
		Price:             r.Price,
		Currency:          strings.ToUpper(r.Currency),
		MinPriceIncrement: r.MinPriceIncrement,
		InStock:           inStock,
		Description:       r.Description,
	}
}

// CreateProduct adds a product to the catalog
// @Summary     Create product
// @Description Add a product to the catalog (admin only)
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ProductRequest true "Product details"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PRODUCT", "product", product.ID, c.ClientIP(),
		map[string]interface{}{"name": product.Name, "price": product.Price.String(), "currency": product.Currency})

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// GetProducts lists the catalog
// @Summary     List products
// @Description Paginated catalog with optional metal and type filters. Inactive products are only listed for admins asking for them.
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Param       sort             query string false "Sort column (name, price, created_at)"
// @Param       order            query string false "asc or desc"
// @Param       metal            query string false "gold, silver, platinum or palladium"
// @Param       product_type     query string false "coin, bar or round"
// @Param       include_inactive query bool   false "Admins only"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ProductFilter{ActiveOnly: !(actor.IsAdmin && c.Query("include_inactive") == "true")}
	if v := c.Query("metal"); v != "" {
		metal := models.Metal(strings.ToLower(v))
		switch metal {
		case models.MetalGold, models.MetalSilver, models.MetalPlatinum, models.MetalPalladium:
			filter.Metal = &metal
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid metal"))
			return
		}
	}
	if v := c.Query("product_type"); v != "" {
		pt := models.ProductType(strings.ToLower(v))
		switch pt {
		case models.ProductTypeCoin, models.ProductTypeBar, models.ProductTypeRound:
			filter.ProductType = &pt
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid product_type"))
			return
		}
	}

	result, err := h.productService.GetProducts(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns one catalog product
// @Summary     Get product
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} models.Product "Product"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProductByID(productID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct replaces a product's catalog fields
// @Summary     Update product
// @Description Replace a product's catalog fields (admin only). Existing orders keep their prices.
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Product ID"
// @Param       request body ProductRequest true "Product details"
// @Success     200 {object} models.Product "Updated product"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(productID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PRODUCT", "product", product.ID, c.ClientIP(),
		map[string]interface{}{"price": product.Price.String(), "in_stock": product.InStock})

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct withdraws a product from the catalog
// @Summary     Delete product
// @Description Deactivate and soft-delete a product (admin only). Positions keep referencing it.
// @Tags        products
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(productID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PRODUCT", "product", productID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
