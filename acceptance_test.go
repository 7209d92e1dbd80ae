package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/middleware"
	"github.com/tailorworks/alterations-api/models"
	"github.com/tailorworks/alterations-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// startShop wires the application the way main does, on an in-memory database
func startShop(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.Notification{}))

	cfg := testConfig()
	config.SetConfig(cfg)
	config.SetDB(db)
	services.SetNotifier(services.NewLogNotifier(db))
	services.InitImageService(services.NewMockS3Service())
	require.NoError(t, initCalendarSessions(cfg))

	t.Cleanup(func() {
		services.SetCalendarSessions(nil)
		services.SetImageService(nil)
		services.SetNotifier(nil)
		config.SetDB(nil)
	})

	server := httptest.NewServer(newTestRouter())
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return resp.StatusCode, response
}

// TestDatabaseStatusListsShopTables checks the migrated schema through the status endpoint
func TestDatabaseStatusListsShopTables(t *testing.T) {
	server := startShop(t)

	status, response := getJSON(t, server.URL+"/api/v1/database/status")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Database connected", response["message"])
	assert.Subset(t, response["tables"], []interface{}{"users", "orders", "notifications"})
}

// TestOrderReachesCalendar creates an order and reads it back as calendar events
func TestOrderReachesCalendar(t *testing.T) {
	server := startShop(t)

	body := `{"clientInfo":{"name":"Iris Vega"},"dueDate":"2024-11-05","garments":[{"garmentInfo":{"type":"Coat"}}]}`
	resp, err := http.Post(server.URL+"/api/v1/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	status, response := getJSON(t, server.URL+"/api/v1/calendar/month?year=2024&month=11")
	require.Equal(t, http.StatusOK, status)

	var titles []string
	for _, day := range response["data"].(map[string]interface{})["days"].([]interface{}) {
		for _, ev := range day.(map[string]interface{})["events"].([]interface{}) {
			titles = append(titles, ev.(map[string]interface{})["title"].(string))
		}
	}
	assert.Equal(t, []string{"Pickup - Iris Vega"}, titles)

	status, response = getJSON(t, server.URL+"/api/v1/calendar/session")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, response["data"].(map[string]interface{})["busy"].(bool))
}

// TestReadOnlyStaffCannotEdit checks the scope guard on the session edit routes
func TestReadOnlyStaffCannotEdit(t *testing.T) {
	startShop(t)
	router := setupRouter(testConfig(), fakeAuth("auth0|trainee", middleware.ScopeReadCalendar))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/calendar/session/edit", strings.NewReader(`{"date":"2024-11-06T10:00"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/calendar/session", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
