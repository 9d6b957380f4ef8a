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

// CashflowHandler handles the manual cash ledger requests.
type CashflowHandler struct {
	cashflowService services.CashflowServicer
	userService     services.UserServicer
	notifier        livefeed.Notifier
}

// NewCashflowHandler creates a new CashflowHandler.
func NewCashflowHandler(cashflowService services.CashflowServicer, userService services.UserServicer, notifier livefeed.Notifier) *CashflowHandler {
	return &CashflowHandler{cashflowService: cashflowService, userService: userService, notifier: notifier}
}

// CreateMovementRequest represents the request payload for registering a cash movement.
type CreateMovementRequest struct {
	Type        string    `json:"type" binding:"required,movement_type"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Description string    `json:"description" binding:"required,min=1,max=200"`
	Date        time.Time `json:"date" binding:"required"`
}

// UpdateMovementRequest represents the request payload for editing a cash movement.
type UpdateMovementRequest struct {
	Type        *string    `json:"type" binding:"omitempty,movement_type"`
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`
	Description *string    `json:"description" binding:"omitempty,min=1,max=200"`
	Date        *time.Time `json:"date"`
}

// CreateMovement handles registering a manual cash movement.
// @Summary     Create movement
// @Description Register a manual cash inflow or outflow
// @Tags        cashflow
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMovementRequest true "Movement details"
// @Success     201 {object} models.CashMovement "Movement registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow/movements [post]
func (h *CashflowHandler) CreateMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movement, err := h.cashflowService.CreateMovement(
		models.MovementType(req.Type),
		decimal.NewFromFloat(req.Amount),
		req.Description,
		req.Date,
		user,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("cash_movements", "created", movement.ID)
	c.JSON(http.StatusCreated, gin.H{"movement": movement})
}

// ListMovements handles listing cash movements.
// @Summary     List movements
// @Description Get a paginated list of cash movements, newest first; type filters inflows or outflows
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 200)"
// @Param       type      query string false "Movement type (entrada or saida)"
// @Success     200 {object} pagination.PageResponse[models.CashMovement] "Paginated movements"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow/movements [get]
func (h *CashflowHandler) ListMovements(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var movementType *models.MovementType
	if raw := c.Query("type"); raw != "" {
		t := models.MovementType(raw)
		if t != models.MovementIn && t != models.MovementOut {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid movement type"))
			return
		}
		movementType = &t
	}

	result, err := h.cashflowService.ListMovements(page, movementType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateMovement handles editing a cash movement.
// @Summary     Update movement
// @Description Edit a manual cash movement
// @Tags        cashflow
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Movement ID"
// @Param       request body UpdateMovementRequest true "Fields to update"
// @Success     200 {object} models.CashMovement "Movement updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow/movements/{id} [patch]
func (h *CashflowHandler) UpdateMovement(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		d := decimal.NewFromFloat(*req.Amount)
		amount = &d
	}
	var movementType *models.MovementType
	if req.Type != nil {
		t := models.MovementType(*req.Type)
		movementType = &t
	}

	movement, err := h.cashflowService.UpdateMovement(id, movementType, amount, req.Description, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("cash_movements", "updated", movement.ID)
	c.JSON(http.StatusOK, gin.H{"movement": movement})
}

// DeleteMovement handles removing a cash movement.
// @Summary     Delete movement
// @Description Permanently delete a cash movement
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Success     204 "Movement deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow/movements/{id} [delete]
func (h *CashflowHandler) DeleteMovement(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cashflowService.DeleteMovement(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("cash_movements", "deleted", id)
	c.Status(http.StatusNoContent)
}

// GetBalance handles the ledger balance summary.
// @Summary     Cash balance
// @Description Current balance: the sum of inflows minus the sum of outflows
// @Tags        cashflow
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow/balance [get]
func (h *CashflowHandler) GetBalance(c *gin.Context) {
	balance, err := h.cashflowService.Balance()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
