package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
	"github.com/NewtonAvila/oticas-avila/internal/services"
)

// ProductHandler handles product catalog requests.
type ProductHandler struct {
	productService services.ProductServicer
	notifier       livefeed.Notifier
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer, notifier livefeed.Notifier) *ProductHandler {
	return &ProductHandler{productService: productService, notifier: notifier}
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	Description  string  `json:"description" binding:"required,min=1,max=200"`
	CostPrice    float64 `json:"cost_price" binding:"gte=0"`
	ProfitMargin float64 `json:"profit_margin" binding:"gte=0"`
	Quantity     int     `json:"quantity" binding:"gte=0"`
}

// UpdateProductRequest represents the request payload for updating a product.
// All fields are optional; the sale price is always derived server-side.
// Quantity is absent on purpose: stock only moves through sales.
type UpdateProductRequest struct {
	Description  *string  `json:"description" binding:"omitempty,min=1,max=200"`
	CostPrice    *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	ProfitMargin *float64 `json:"profit_margin" binding:"omitempty,gte=0"`
}

// CreateProduct handles product creation.
// @Summary     Create product
// @Description Create a product; the sequence number and sale price are assigned server-side
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProductRequest true "Product details"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(
		req.Description,
		decimal.NewFromFloat(req.CostPrice),
		decimal.NewFromFloat(req.ProfitMargin),
		req.Quantity,
		userID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("products", "created", product.ID)
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// ListProducts handles listing products.
// @Summary     List products
// @Description Get a paginated list of products ordered by sequence number
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 200)"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.productService.ListProducts(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchProducts handles POS product lookup.
// @Summary     Search products
// @Description Search products by sequence number or description prefix
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q     query string true  "Sequence number or description prefix"
// @Param       limit query int    false "Max results (default 10)"
// @Success     200 {array} models.Product "Matching products"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/search [get]
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	products, err := h.productService.SearchProducts(c.Query("q"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct handles fetching a single product.
// @Summary     Get product
// @Description Get a product by ID
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} models.Product "Product"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProductByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct handles partial product updates.
// @Summary     Update product
// @Description Update product fields; sale price is recomputed when cost or margin change. Stock cannot be edited here
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Product ID"
// @Param       request body UpdateProductRequest true "Fields to update"
// @Success     200 {object} models.Product "Product updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var cost, margin *decimal.Decimal
	if req.CostPrice != nil {
		d := decimal.NewFromFloat(*req.CostPrice)
		cost = &d
	}
	if req.ProfitMargin != nil {
		d := decimal.NewFromFloat(*req.ProfitMargin)
		margin = &d
	}

	product, err := h.productService.UpdateProduct(id, req.Description, cost, margin, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("products", "updated", product.ID)
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles product deletion.
// @Summary     Delete product
// @Description Permanently delete a product; past sales keep their snapshots
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     204 "Product deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("products", "deleted", id)
	c.Status(http.StatusNoContent)
}

// GetTotalProductValue handles the catalog value summary.
// @Summary     Total product value
// @Description Sum of the sale price of every catalog product
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Total value"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/total-value [get]
func (h *ProductHandler) GetTotalProductValue(c *gin.Context) {
	total, err := h.productService.TotalProductValue()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_value": total})
}
