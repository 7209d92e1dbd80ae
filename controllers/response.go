package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/services"
)

// SaveFailedMessage is shown to staff when an edit or archive could not be written
const SaveFailedMessage = "Your changes could not be saved. Please try again."

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondServiceError maps calendar and order store errors onto the error envelope
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calendar.ErrActionInProgress):
		respondError(c, http.StatusConflict, "ACTION_IN_PROGRESS", "Another change is still being saved")
	case errors.Is(err, calendar.ErrEventNotFound), errors.Is(err, calendar.ErrFittingSessionNotFound):
		respondError(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
	case errors.Is(err, calendar.ErrNoEventSelected):
		respondError(c, http.StatusConflict, "NO_EVENT_SELECTED", "Open an event first")
	case errors.Is(err, calendar.ErrNoArchivePending):
		respondError(c, http.StatusConflict, "NO_ARCHIVE_PENDING", "There is no archive waiting for confirmation")
	case errors.Is(err, calendar.ErrInvalidEditDate), errors.Is(err, calendar.ErrUnknownEventType):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, calendar.ErrOrderNotFound), errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrGarmentNotFound):
		respondError(c, http.StatusNotFound, "GARMENT_NOT_FOUND", "Garment not found")
	case errors.Is(err, services.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "FITTING_SESSION_NOT_FOUND", "Fitting session not found")
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, services.ErrNoGarments), errors.Is(err, services.ErrMissingDueDate), errors.Is(err, services.ErrNotBridal):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", SaveFailedMessage)
	}
}

// displayLocation is the timezone calendar views are laid out in
func displayLocation() *time.Location {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.Location()
	}
	return time.Local
}

func orderStore() *services.OrderStore {
	return services.NewOrderStore(config.GetDB(), services.GetNotifier())
}
