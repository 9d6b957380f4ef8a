package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
	"github.com/NewtonAvila/oticas-avila/internal/services"
)

// SaleHandler handles point-of-sale requests.
type SaleHandler struct {
	saleService services.SaleServicer
	notifier    livefeed.Notifier
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleService services.SaleServicer, notifier livefeed.Notifier) *SaleHandler {
	return &SaleHandler{saleService: saleService, notifier: notifier}
}

// CreateSaleRequest represents the request payload for registering a sale.
type CreateSaleRequest struct {
	ProductID       string  `json:"product_id" binding:"required,uuid"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	DiscountPercent float64 `json:"discount_percent" binding:"gte=0,lte=100"`
}

// CreateSale handles sale registration.
// @Summary     Register sale
// @Description Register a sale: snapshots the current price, allocates the sale number, and decrements stock atomically
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSaleRequest true "Sale details"
// @Success     201 {object} models.Sale "Sale registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sale, err := h.saleService.CreateSale(req.ProductID, req.Quantity, decimal.NewFromFloat(req.DiscountPercent), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("vendas", "created", sale.ID)
	h.notifier.Publish("products", "updated", sale.ProductID)
	c.JSON(http.StatusCreated, gin.H{"sale": sale})
}

// UndoSale handles sale reversal.
// @Summary     Undo sale
// @Description Delete a sale and credit the stock back; a missing sale is a no-op
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sale ID"
// @Success     204 "Sale undone"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales/{id} [delete]
func (h *SaleHandler) UndoSale(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.saleService.UndoSale(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("vendas", "deleted", id)
	c.Status(http.StatusNoContent)
}

// ListSales handles listing sales.
// @Summary     List sales
// @Description Get a paginated list of sales, newest first; since_hours limits to a recent window
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int false "Page number (default 1)"
// @Param       page_size   query int false "Items per page (default 50, max 200)"
// @Param       since_hours query int false "Only sales from the last N hours"
// @Success     200 {object} pagination.PageResponse[models.Sale] "Paginated sales"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var since *time.Time
	var window struct {
		SinceHours int `form:"since_hours" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindQuery(&window); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if window.SinceHours > 0 {
		cutoff := time.Now().Add(-time.Duration(window.SinceHours) * time.Hour)
		since = &cutoff
	}

	result, err := h.saleService.ListSales(page, since)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
