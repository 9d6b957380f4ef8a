package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NewtonAvila/oticas-avila/internal/services"
)

// ReportHandler handles aggregated dashboard requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetMonthlyCashFlow handles the monthly cash-flow series.
// @Summary     Monthly cash flow
// @Description Per-month inflow and outflow totals with a cumulative running balance, from the first movement through the latest debt due month
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.MonthlyFlow "Monthly series"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly-cash-flow [get]
func (h *ReportHandler) GetMonthlyCashFlow(c *gin.Context) {
	flows, err := h.reportService.MonthlyCashFlow()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": flows})
}

// GetExtendedBalance handles the projected balance summary.
// @Summary     Extended balance
// @Description Ledger balance minus settled debts and unplanned expenses
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Extended balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/extended-balance [get]
func (h *ReportHandler) GetExtendedBalance(c *gin.Context) {
	balance, err := h.reportService.ExtendedBalance()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"extended_balance": balance})
}

// RebuildMonthlySummaries handles recomputing the persisted monthly rollups.
// @Summary     Rebuild monthly summaries
// @Description Recompute and persist the per-month rollup rows from the cash ledger
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.MonthlySummary "Rebuilt summaries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin only"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly-summaries/rebuild [post]
func (h *ReportHandler) RebuildMonthlySummaries(c *gin.Context) {
	summaries, err := h.reportService.RebuildMonthlySummaries()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
