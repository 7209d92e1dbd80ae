package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/middleware"
	"github.com/tailorworks/alterations-api/services"
)

// SelectDayRequest is the body of POST /calendar/session/day
type SelectDayRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// EventRequest names a derived event
type EventRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

// SaveEditRequest carries the edit buffer's values
type SaveEditRequest struct {
	Date  string `json:"date" binding:"required"` // YYYY-MM-DDTHH:MM in the shop's timezone
	Notes string `json:"notes"`
}

// sessionController resolves the caller's calendar session. It writes the error
// response itself and returns nil on failure.
func sessionController(c *gin.Context) *calendar.Controller {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil
	}

	sessions := services.GetCalendarSessions()
	if sessions == nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Calendar sessions are not configured")
		return nil
	}

	ctrl, err := sessions.Get(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return nil
	}
	return ctrl
}

// GetCalendarSession handles GET /api/v1/calendar/session - the caller's selection state
func GetCalendarSession(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}
	respondData(c, http.StatusOK, ctrl.State())
}

// SelectCalendarDay handles POST /api/v1/calendar/session/day - selects a day and
// returns the events on it
func SelectCalendarDay(c *gin.Context) {
	var req SelectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	day, err := time.ParseInLocation(calendar.DateLayout, req.Date, ctrl.Location())
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be in YYYY-MM-DD format")
		return
	}

	ctrl.SelectDay(day)
	respondData(c, http.StatusOK, gin.H{
		"state":  ctrl.State(),
		"events": calendar.EventsBetween(ctrl.Events(), day, day),
	})
}

// OpenCalendarEvent handles POST /api/v1/calendar/session/event - opens an event's detail view
func OpenCalendarEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	ev, buf, err := ctrl.OpenEvent(req.EventID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, _ := ctrl.Order(ev.OrderID)
	respondData(c, http.StatusOK, gin.H{
		"event":  ev,
		"buffer": buf,
		"order":  order,
	})
}

// CloseCalendarEvent handles DELETE /api/v1/calendar/session/event - closes the detail view
func CloseCalendarEvent(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}
	ctrl.CloseDetail()
	respondData(c, http.StatusOK, ctrl.State())
}

// BeginCalendarEdit handles POST /api/v1/calendar/session/edit - enters edit mode
func BeginCalendarEdit(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	buf, err := ctrl.BeginEdit()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, buf)
}

// SaveCalendarEdit handles PUT /api/v1/calendar/session/edit - writes the edit back
// into the order and saves it
func SaveCalendarEdit(c *gin.Context) {
	var req SaveEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	order, err := ctrl.SaveEdit(c.Request.Context(), calendar.EditBuffer{Date: req.Date, Notes: req.Notes})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"order": order,
		"state": ctrl.State(),
	})
}

// RequestCalendarArchive handles POST /api/v1/calendar/session/archive - asks for
// confirmation before archiving an event's order
func RequestCalendarArchive(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	ev, err := ctrl.RequestArchive(req.EventID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, ev)
}

// ConfirmCalendarArchive handles POST /api/v1/calendar/session/archive/confirm
func ConfirmCalendarArchive(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	order, err := ctrl.ConfirmArchive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// CancelCalendarArchive handles DELETE /api/v1/calendar/session/archive
func CancelCalendarArchive(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}
	ctrl.CancelArchive()
	respondData(c, http.StatusOK, ctrl.State())
}

// ArchiveOpenEvent handles POST /api/v1/calendar/session/event/archive - archives the
// order behind the open detail view and closes it
func ArchiveOpenEvent(c *gin.Context) {
	ctrl := sessionController(c)
	if ctrl == nil {
		return
	}

	order, err := ctrl.ArchiveSelected(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}
