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

// TimeSessionHandler handles time tracking requests.
type TimeSessionHandler struct {
	sessionService services.TimeSessionServicer
	notifier       livefeed.Notifier
}

// NewTimeSessionHandler creates a new TimeSessionHandler.
func NewTimeSessionHandler(sessionService services.TimeSessionServicer, notifier livefeed.Notifier) *TimeSessionHandler {
	return &TimeSessionHandler{sessionService: sessionService, notifier: notifier}
}

// StartSessionRequest represents the request payload for starting a session.
type StartSessionRequest struct {
	HourlyRate float64 `json:"hourly_rate" binding:"gte=0"`
}

// StopSessionRequest represents the request payload for stopping a session.
type StopSessionRequest struct {
	IsPaid bool `json:"is_paid"`
}

// UpdateSessionRequest represents the request payload for editing a
// completed session. All fields are optional.
type UpdateSessionRequest struct {
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	PausedMillis *int64     `json:"paused_time" binding:"omitempty,gte=0"`
	HourlyRate   *float64   `json:"hourly_rate" binding:"omitempty,gte=0"`
	IsPaid       *bool      `json:"is_paid"`
}

// canManageSession reports whether the caller owns the session or is an admin.
func (h *TimeSessionHandler) canManageSession(c *gin.Context, sessionID string) error {
	session, err := h.sessionService.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	if session.UserID != userID && !isAdmin(c) {
		return apperrors.ErrForbidden
	}
	return nil
}

// StartSession handles opening a work session.
// @Summary     Start session
// @Description Open a work session for the authenticated user; only one session may be open per user
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body StartSessionRequest true "Session details"
// @Success     201 {object} models.TimeSession "Session started"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Session already running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/start [post]
func (h *TimeSessionHandler) StartSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	session, err := h.sessionService.StartSession(userID, decimal.NewFromFloat(req.HourlyRate))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "created", session.ID)
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// PauseSession handles pausing the open session.
// @Summary     Pause session
// @Description Pause the authenticated user's open session
// @Tags        sessions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.TimeSession "Session paused"
// @Failure     400 {object} ErrorResponse "Session already paused"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No session running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/pause [post]
func (h *TimeSessionHandler) PauseSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	session, err := h.sessionService.PauseSession(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "updated", session.ID)
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ResumeSession handles resuming a paused session.
// @Summary     Resume session
// @Description Resume the authenticated user's paused session
// @Tags        sessions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.TimeSession "Session resumed"
// @Failure     400 {object} ErrorResponse "Session not paused"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No session running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/resume [post]
func (h *TimeSessionHandler) ResumeSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	session, err := h.sessionService.ResumeSession(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "updated", session.ID)
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// StopSession handles completing the open session.
// @Summary     Stop session
// @Description Complete the open session; unpaid time becomes a time investment
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body StopSessionRequest true "Payout choice"
// @Success     200 {object} models.TimeSession "Session completed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No session running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/stop [post]
func (h *TimeSessionHandler) StopSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req StopSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	session, err := h.sessionService.StopSession(userID, req.IsPaid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "updated", session.ID)
	if !session.IsPaid {
		h.notifier.Publish("investments", "created", session.ID)
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetCurrentSession handles fetching the open session.
// @Summary     Current session
// @Description Get the authenticated user's open session, if any
// @Tags        sessions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.TimeSession "Open session"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No session running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/current [get]
func (h *TimeSessionHandler) GetCurrentSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	session, err := h.sessionService.GetCurrentSession(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ListSessions handles listing sessions.
// @Summary     List sessions
// @Description List the caller's sessions; admins may list every user's sessions with all=true
// @Tags        sessions
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 50, max 200)"
// @Param       all       query bool false "List all users' sessions (admin only)"
// @Success     200 {object} pagination.PageResponse[models.TimeSession] "Paginated sessions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions [get]
func (h *TimeSessionHandler) ListSessions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filterUserID := userID
	if c.Query("all") == "true" && isAdmin(c) {
		filterUserID = ""
	}

	result, err := h.sessionService.ListSessions(filterUserID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateSession handles retroactive edits to a completed session.
// @Summary     Update session
// @Description Edit a completed session; the linked time investment is reconciled with the edit
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Session ID"
// @Param       request body UpdateSessionRequest true "Fields to update"
// @Success     200 {object} models.TimeSession "Session updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the session owner"
// @Failure     404 {object} ErrorResponse "Session not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/{id} [patch]
func (h *TimeSessionHandler) UpdateSession(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.canManageSession(c, id); err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var rate *decimal.Decimal
	if req.HourlyRate != nil {
		d := decimal.NewFromFloat(*req.HourlyRate)
		rate = &d
	}

	session, err := h.sessionService.UpdateSession(id, req.StartTime, req.EndTime, req.PausedMillis, rate, req.IsPaid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "updated", session.ID)
	h.notifier.Publish("investments", "updated", session.ID)
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DeleteSession handles removing a session.
// @Summary     Delete session
// @Description Delete a session together with its derived time investment
// @Tags        sessions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Session ID"
// @Success     204 "Session deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the session owner"
// @Failure     404 {object} ErrorResponse "Session not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sessions/{id} [delete]
func (h *TimeSessionHandler) DeleteSession(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.canManageSession(c, id); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.sessionService.DeleteSession(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.notifier.Publish("time_sessions", "deleted", id)
	h.notifier.Publish("investments", "deleted", id)
	c.Status(http.StatusNoContent)
}
