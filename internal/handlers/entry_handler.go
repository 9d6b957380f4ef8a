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

// EntryHandler handles planned entries and unplanned expenses.
type EntryHandler struct {
	entryService services.EntryServicer
	userService  services.UserServicer
	notifier     livefeed.Notifier
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryService services.EntryServicer, userService services.UserServicer, notifier livefeed.Notifier) *EntryHandler {
	return &EntryHandler{entryService: entryService, userService: userService, notifier: notifier}
}

// CreateEntryRequest represents the request payload for registering an entry or expense.
type CreateEntryRequest struct {
	Description string    `json:"description" binding:"required,min=1,max=200"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Date        time.Time `json:"date" binding:"required"`
}

// UpdateEntryRequest represents the request payload for editing an entry or expense.
type UpdateEntryRequest struct {
	Description *string    `json:"description" binding:"omitempty,min=1,max=200"`
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`
	Date        *time.Time `json:"date"`
}

// CreateEntry handles registering a planned entry.
// @Summary     Create entry
// @Description Register a planned revenue entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} models.Entry "Entry registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.entryService.CreateEntry(req.Description, decimal.NewFromFloat(req.Amount), req.Date, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("entries", "created", entry.ID)
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListEntries handles listing planned entries.
// @Summary     List entries
// @Description Get a paginated list of planned entries, newest first
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 200)"
// @Success     200 {object} pagination.PageResponse[models.Entry] "Paginated entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries [get]
func (h *EntryHandler) ListEntries(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.entryService.ListEntries(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEntriesByMonth handles the month-grouped entry view.
// @Summary     Entries by month
// @Description Planned entries grouped by calendar month with per-month totals, newest month first
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.MonthGroup[models.Entry] "Month groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/by-month [get]
func (h *EntryHandler) GetEntriesByMonth(c *gin.Context) {
	groups, err := h.entryService.EntriesByMonth()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": groups})
}

// UpdateEntry handles editing a planned entry.
// @Summary     Update entry
// @Description Edit a planned entry
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Fields to update"
// @Success     200 {object} models.Entry "Entry updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [patch]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		d := decimal.NewFromFloat(*req.Amount)
		amount = &d
	}

	entry, err := h.entryService.UpdateEntry(id, req.Description, amount, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("entries", "updated", entry.ID)
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry handles removing a planned entry.
// @Summary     Delete entry
// @Description Permanently delete a planned entry
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     204 "Entry deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.entryService.DeleteEntry(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("entries", "deleted", id)
	c.Status(http.StatusNoContent)
}

// CreateExpense handles registering an unplanned expense.
// @Summary     Create unplanned expense
// @Description Register an unplanned expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEntryRequest true "Expense details"
// @Success     201 {object} models.UnplannedExpense "Expense registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *EntryHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.entryService.CreateExpense(req.Description, decimal.NewFromFloat(req.Amount), req.Date, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("unplanned_expenses", "created", expense.ID)
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses handles listing unplanned expenses.
// @Summary     List unplanned expenses
// @Description Get a paginated list of unplanned expenses, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 200)"
// @Success     200 {object} pagination.PageResponse[models.UnplannedExpense] "Paginated expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *EntryHandler) ListExpenses(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.entryService.ListExpenses(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpensesByMonth handles the month-grouped expense view.
// @Summary     Expenses by month
// @Description Unplanned expenses grouped by calendar month with per-month totals, newest month first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.MonthGroup[models.UnplannedExpense] "Month groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/by-month [get]
func (h *EntryHandler) GetExpensesByMonth(c *gin.Context) {
	groups, err := h.entryService.ExpensesByMonth()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": groups})
}

// UpdateExpense handles editing an unplanned expense.
// @Summary     Update unplanned expense
// @Description Edit an unplanned expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Expense ID"
// @Param       request body UpdateEntryRequest true "Fields to update"
// @Success     200 {object} models.UnplannedExpense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [patch]
func (h *EntryHandler) UpdateExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		d := decimal.NewFromFloat(*req.Amount)
		amount = &d
	}

	expense, err := h.entryService.UpdateExpense(id, req.Description, amount, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("unplanned_expenses", "updated", expense.ID)
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles removing an unplanned expense.
// @Summary     Delete unplanned expense
// @Description Permanently delete an unplanned expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *EntryHandler) DeleteExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.entryService.DeleteExpense(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("unplanned_expenses", "deleted", id)
	c.Status(http.StatusNoContent)
}
