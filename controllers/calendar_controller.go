package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/calendar"
)

// GetCalendarEvents handles GET /api/v1/calendar/events - lists derived events,
// optionally limited to the days from..to (YYYY-MM-DD, inclusive)
func GetCalendarEvents(c *gin.Context) {
	loc := displayLocation()

	from, ok := parseDayParam(c, "from", loc)
	if !ok {
		return
	}
	to, ok := parseDayParam(c, "to", loc)
	if !ok {
		return
	}

	orders, err := orderStore().ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	events := calendar.EventsBetween(calendar.DeriveEvents(orders, loc), from, to)
	respondData(c, http.StatusOK, events)
}

// GetCalendarMonth handles GET /api/v1/calendar/month - the 42-day grid for a month,
// defaulting to the current one
func GetCalendarMonth(c *gin.Context) {
	loc := displayLocation()
	now := time.Now().In(loc)

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil || year < 1 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "year must be a positive number")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "month must be between 1 and 12")
		return
	}

	orders, err := orderStore().ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	ref := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	respondData(c, http.StatusOK, calendar.NewMonth(ref, calendar.DeriveEvents(orders, loc)))
}

// GetCalendarICS handles GET /api/v1/calendar.ics - the schedule as an iCalendar feed
func GetCalendarICS(c *gin.Context) {
	loc := displayLocation()

	orders, err := orderStore().ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	feed := calendar.ExportICS(calendar.DeriveEvents(orders, loc), time.Now())
	c.Header("Content-Disposition", `inline; filename="calendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// parseDayParam reads an optional YYYY-MM-DD query value. It writes the error
// response itself and returns false when the value is malformed.
func parseDayParam(c *gin.Context, name string, loc *time.Location) (time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, true
	}
	day, err := time.ParseInLocation(calendar.DateLayout, value, loc)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return day, true
}
