package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
	"github.com/NewtonAvila/oticas-avila/internal/services"
)

// DebtHandler handles debt tracking requests.
type DebtHandler struct {
	debtService services.DebtServicer
	userService services.UserServicer
	notifier    livefeed.Notifier
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtService services.DebtServicer, userService services.UserServicer, notifier livefeed.Notifier) *DebtHandler {
	return &DebtHandler{debtService: debtService, userService: userService, notifier: notifier}
}

// CreateDebtRequest represents the request payload for registering a debt.
type CreateDebtRequest struct {
	Description string    `json:"description" binding:"required,min=1,max=200"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Type        string    `json:"type" binding:"required,debt_type"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	Duration    *int      `json:"duration" binding:"omitempty,gte=1"`
}

// UpdateDebtRequest represents the request payload for editing a debt.
type UpdateDebtRequest struct {
	Description *string    `json:"description" binding:"omitempty,min=1,max=200"`
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`
	Type        *string    `json:"type" binding:"omitempty,debt_type"`
	DueDate     *time.Time `json:"due_date"`
	Duration    *int       `json:"duration" binding:"omitempty,gte=1"`
}

// CreateDebt handles registering a debt.
// @Summary     Create debt
// @Description Register a single or fixed recurring debt; fixed debts require a duration in months
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDebtRequest true "Debt details"
// @Success     201 {object} models.Debt "Debt registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts [post]
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.CreateDebt(
		req.Description,
		decimal.NewFromFloat(req.Amount),
		models.DebtType(req.Type),
		req.DueDate,
		req.Duration,
		user,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("debts", "created", debt.ID)
	c.JSON(http.StatusCreated, gin.H{"debt": debt})
}

// ListDebts handles listing debts.
// @Summary     List debts
// @Description Get a paginated list of debts ordered by due date; paid filters by settlement state
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 50, max 200)"
// @Param       paid      query bool false "Filter by paid state"
// @Success     200 {object} pagination.PageResponse[models.Debt] "Paginated debts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts [get]
func (h *DebtHandler) ListDebts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var paid *bool
	switch c.Query("paid") {
	case "true":
		v := true
		paid = &v
	case "false":
		v := false
		paid = &v
	}

	result, err := h.debtService.ListDebts(page, paid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDebtsByMonth handles the debt month grouping.
// @Summary     Debts by month
// @Description Group all debts by due month with per-month totals, newest month first
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Month buckets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/by-month [get]
func (h *DebtHandler) GetDebtsByMonth(c *gin.Context) {
	groups, err := h.debtService.DebtsByMonth()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": groups})
}

// GetDebt handles fetching a single debt.
// @Summary     Get debt
// @Description Get a debt by ID
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     200 {object} models.Debt "Debt"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [get]
func (h *DebtHandler) GetDebt(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.GetDebtByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// UpdateDebt handles editing a debt.
// @Summary     Update debt
// @Description Edit debt fields; switching to the single type clears the duration
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Debt ID"
// @Param       request body UpdateDebtRequest true "Fields to update"
// @Success     200 {object} models.Debt "Debt updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [patch]
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		d := decimal.NewFromFloat(*req.Amount)
		amount = &d
	}
	var debtType *models.DebtType
	if req.Type != nil {
		t := models.DebtType(*req.Type)
		debtType = &t
	}

	debt, err := h.debtService.UpdateDebt(id, req.Description, amount, debtType, req.DueDate, req.Duration)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("debts", "updated", debt.ID)
	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// DeleteDebt handles removing a debt.
// @Summary     Delete debt
// @Description Permanently delete a debt
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     204 "Debt deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.debtService.DeleteDebt(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("debts", "deleted", id)
	c.Status(http.StatusNoContent)
}

// MarkDebtPaid handles settling a debt.
// @Summary     Mark debt paid
// @Description Mark a debt as settled; marking twice is a no-op
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     200 {object} models.Debt "Debt marked paid"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id}/paid [post]
func (h *DebtHandler) MarkDebtPaid(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.MarkPaid(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("debts", "updated", debt.ID)
	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// MarkDebtUnpaid handles reopening a settled debt.
// @Summary     Mark debt unpaid
// @Description Reopen a settled debt
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     200 {object} models.Debt "Debt marked unpaid"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id}/unpaid [post]
func (h *DebtHandler) MarkDebtUnpaid(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.MarkUnpaid(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("debts", "updated", debt.ID)
	c.JSON(http.StatusOK, gin.H{"debt": debt})
}
