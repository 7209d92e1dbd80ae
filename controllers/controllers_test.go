package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/models"
	"github.com/tailorworks/alterations-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestRouter returns a bare gin engine in test mode
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setupCalendarTestDB opens a fresh database and points the package globals at it
func setupCalendarTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Notification{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	originalConfig := config.GetConfig()
	originalDB := config.GetDB()
	t.Cleanup(func() {
		config.SetConfig(originalConfig)
		config.SetDB(originalDB)
		services.SetNotifier(nil)
		services.SetCalendarSessions(nil)
		services.SetImageService(nil)
	})

	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", Timezone: "UTC"})
	services.SetNotifier(services.NewLogNotifier(db))
	useCalendarSessions(t, func(store *services.OrderStore) calendar.OrderStore { return store })

	return db
}

// useCalendarSessions installs a session registry whose controllers write through wrap(store)
func useCalendarSessions(t *testing.T, wrap func(*services.OrderStore) calendar.OrderStore) {
	t.Helper()

	sessions, err := services.NewCalendarSessions(8, func() *calendar.Controller {
		store := services.NewOrderStore(config.GetDB(), services.GetNotifier())
		return calendar.NewController(wrap(store), calendar.WithLocation(time.UTC))
	})
	require.NoError(t, err)
	services.SetCalendarSessions(sessions)
}

// failingStore reads through but refuses every write
type failingStore struct {
	calendar.OrderStore
}

func (failingStore) SaveOrder(context.Context, models.Order) error {
	return errors.New("connection reset by peer")
}

// seedBridalOrder stores a wedding dress order: pickup 2024-09-10, wedding 2024-09-15
// and fittings on 2024-08-01 (completed) and 2024-08-20
func seedBridalOrder(t *testing.T, db *gorm.DB, id string) models.Order {
	t.Helper()

	order := models.Order{
		ID:         id,
		ClientInfo: models.ClientInfo{Name: "Maya Chen", Email: "maya@example.com"},
		Status:     models.StatusInProgress,
		DueDate:    "2024-09-10",
		Garments: []models.Garment{
			{
				GarmentInfo: models.GarmentInfo{
					Type:     models.GarmentWeddingDress,
					Quantity: 1,
					BridalInfo: &models.BridalInfo{
						WeddingDate: "2024-09-15",
						FittingSessions: []models.FittingSession{
							{ID: "s1", Date: "2024-08-01T10:00:00Z", Type: models.FittingInitial, Completed: true},
							{ID: "s2", Date: "2024-08-20T15:30:00Z", Type: models.FittingFinal, Notes: "bring shoes"},
						},
					},
				},
			},
			{GarmentInfo: models.GarmentInfo{Type: "Suit", Quantity: 1}},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func loadOrder(t *testing.T, db *gorm.DB, id string) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return order
}

// asStaff simulates EnsureValidToken for a signed-in staff member
func asStaff(auth0ID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeResponse(t, w)
	errorData, ok := response["error"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	return errorData["code"].(string)
}
