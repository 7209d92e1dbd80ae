package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/models"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ClientInfo  models.ClientInfo  `json:"clientInfo" binding:"required"`
	Garments    []models.Garment   `json:"garments" binding:"required,min=1"`
	PaymentInfo models.PaymentInfo `json:"paymentInfo"`
	Description string             `json:"description"`
	DueDate     string             `json:"dueDate" binding:"required"`
	EventInfo   *models.EventInfo  `json:"eventInfo"`
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// AddFittingRequest represents the request body for scheduling a fitting session
type AddFittingRequest struct {
	Date       string `json:"date"`
	Type       string `json:"type" binding:"omitempty,oneof=Initial Muslin Construction Final Bustle Custom"`
	CustomType string `json:"customType"`
	Notes      string `json:"notes"`
}

// CreateOrder handles POST /api/v1/orders - takes in a new order
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if _, err := calendar.ParseDate(req.DueDate, displayLocation()); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "dueDate must be a date in YYYY-MM-DD format")
		return
	}
	if req.PaymentInfo.DepositAmount.GreaterThan(req.PaymentInfo.TotalAmount) && !req.PaymentInfo.TotalAmount.Equal(decimal.Zero) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "depositAmount cannot exceed totalAmount")
		return
	}

	order, err := orderStore().CreateOrder(c.Request.Context(), models.Order{
		ClientInfo:  req.ClientInfo,
		Garments:    req.Garments,
		PaymentInfo: req.PaymentInfo,
		Description: req.Description,
		DueDate:     req.DueDate,
		EventInfo:   req.EventInfo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders - all orders, optionally filtered by ?status=
func ListOrders(c *gin.Context) {
	store := orderStore()

	var (
		orders []models.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		orders, err = store.ListOrdersByStatus(c.Request.Context(), status)
	} else {
		orders, err = store.ListOrders(c.Request.Context())
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
		return
	}

	respondData(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	order, err := orderStore().GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of pending, in-progress, completed")
		return
	}

	order, err := orderStore().UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// ArchiveOrder handles POST /api/v1/orders/:id/archive - moves an order to the
// terminal archived status, removing it from the calendar
func ArchiveOrder(c *gin.Context) {
	store := orderStore()

	order, err := store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.IsArchived() {
		respondData(c, http.StatusOK, order)
		return
	}

	archived := calendar.ArchiveOrder(order, time.Now(), uuid.NewString())
	if err := store.ArchiveOrder(c.Request.Context(), archived); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, archived)
}

// AddFittingSession handles POST /api/v1/orders/:id/garments/:index/fittings
func AddFittingSession(c *gin.Context) {
	index, ok := garmentIndexParam(c)
	if !ok {
		return
	}

	var req AddFittingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	session := models.FittingSession{
		Type:       req.Type,
		CustomType: req.CustomType,
		Notes:      req.Notes,
	}
	if req.Date != "" {
		date, err := calendar.ParseDate(req.Date, displayLocation())
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is not a valid date-time")
			return
		}
		session.Date = date.Format(time.RFC3339)
	}

	order, session, err := orderStore().AddFittingSession(c.Request.Context(), c.Param("id"), index, session)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{
		"order":   order,
		"session": session,
	})
}

// RemoveFittingSession handles DELETE /api/v1/orders/:id/garments/:index/fittings/:sessionId
func RemoveFittingSession(c *gin.Context) {
	index, ok := garmentIndexParam(c)
	if !ok {
		return
	}

	order, err := orderStore().RemoveFittingSession(c.Request.Context(), c.Param("id"), index, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func garmentIndexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "garment index must be a non-negative number")
		return 0, false
	}
	return index, true
}
