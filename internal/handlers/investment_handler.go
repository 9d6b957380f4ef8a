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

// InvestmentHandler handles partnership investment requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	userService       services.UserServicer
	notifier          livefeed.Notifier
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, userService services.UserServicer, notifier livefeed.Notifier) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, userService: userService, notifier: notifier}
}

// CreateInvestmentRequest represents the request payload for registering an investment.
type CreateInvestmentRequest struct {
	Description string    `json:"description" binding:"required,min=1,max=200"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Date        time.Time `json:"date" binding:"required"`
}

// UpdateInvestmentRequest represents the request payload for editing an investment.
type UpdateInvestmentRequest struct {
	Description *string    `json:"description" binding:"omitempty,min=1,max=200"`
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`
	Date        *time.Time `json:"date"`
}

// CreateInvestment handles registering a capital investment.
// @Summary     Create investment
// @Description Register a capital investment for the authenticated partner
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} models.Investment "Investment registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.CreateInvestment(req.Description, decimal.NewFromFloat(req.Amount), req.Date, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("investments", "created", investment.ID)
	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// ListInvestments handles listing investments.
// @Summary     List investments
// @Description Get a paginated list of investments, newest first; mine=true restricts to the caller's
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 50, max 200)"
// @Param       mine      query bool false "Only the caller's investments"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Paginated investments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filterUserID *string
	if c.Query("mine") == "true" {
		userID, err := getUserID(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filterUserID = &userID
	}

	result, err := h.investmentService.ListInvestments(page, filterUserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateInvestment handles editing a capital investment.
// @Summary     Update investment
// @Description Edit a capital investment; time investments are managed through their session
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Investment ID"
// @Param       request body UpdateInvestmentRequest true "Fields to update"
// @Success     200 {object} models.Investment "Investment updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id} [patch]
func (h *InvestmentHandler) UpdateInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		d := decimal.NewFromFloat(*req.Amount)
		amount = &d
	}

	investment, err := h.investmentService.UpdateInvestment(id, req.Description, amount, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("investments", "updated", investment.ID)
	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// DeleteInvestment handles removing a capital investment.
// @Summary     Delete investment
// @Description Delete a capital investment; time investments are managed through their session
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     204 "Investment deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investmentService.DeleteInvestment(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("investments", "deleted", id)
	c.Status(http.StatusNoContent)
}

// GetInvestmentSummary handles the partnership stake summary.
// @Summary     Investment summary
// @Description Total invested, the caller's contribution and percentage, and every partner's share
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/summary [get]
func (h *InvestmentHandler) GetInvestmentSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.investmentService.TotalInvested()
	if err != nil {
		respondWithError(c, err)
		return
	}
	contribution, err := h.investmentService.UserContribution(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	percentage, err := h.investmentService.UserPercentage(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	shares, err := h.investmentService.AllUserShares()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_invested":  total,
		"my_contribution": contribution,
		"my_percentage":   percentage,
		"shares":          shares,
	})
}
