package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/controllers"
	"github.com/tailorworks/alterations-api/middleware"
	"github.com/tailorworks/alterations-api/models"
	"github.com/tailorworks/alterations-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// PrintEnvironmentInfo prints the current test environment configuration.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DB_DRIVER: %s\n", os.Getenv("DB_DRIVER"))
	fmt.Printf("  DATABASE_URL: %s\n", maskDatabaseURL(os.Getenv("DATABASE_URL")))
}

// maskDatabaseURL hides everything after the scheme and host
func maskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if len(url) > 20 {
		suffix := " [WARNING: may not be test DB]"
		if strings.Contains(url, "test") || strings.Contains(url, ":memory:") {
			suffix = " [test database]"
		}
		return url[:20] + "..." + suffix
	}
	return url
}

// SetupShop points the application globals at a fresh in-memory database with a
// logging notifier, in-memory photo storage and calendar sessions in UTC. The
// mock S3 service is returned for assertions.
func SetupShop(t *testing.T) (*gorm.DB, *services.MockS3Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Notification{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", Timezone: "UTC", SessionCacheSize: 8})
	services.SetNotifier(services.NewLogNotifier(db))

	sessions, err := services.NewCalendarSessions(8, func() *calendar.Controller {
		store := services.NewOrderStore(config.GetDB(), services.GetNotifier())
		return calendar.NewController(store, calendar.WithLocation(time.UTC), calendar.WithArchiver(store))
	})
	if err != nil {
		t.Fatalf("Failed to create calendar sessions: %v", err)
	}
	services.SetCalendarSessions(sessions)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	services.InitImageService(mockS3)

	return db, mockS3
}

// NewAPIRouter registers the calendar, order and user routes behind auth
func NewAPIRouter(auth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1", auth)
	{
		readCalendar := middleware.RequireScope(middleware.ScopeReadCalendar)
		writeCalendar := middleware.RequireScope(middleware.ScopeWriteCalendar)
		readOrders := middleware.RequireScope(middleware.ScopeReadOrders)
		writeOrders := middleware.RequireScope(middleware.ScopeWriteOrders)

		api.GET("/users/me", controllers.GetMyProfile)

		api.GET("/calendar/events", readCalendar, controllers.GetCalendarEvents)
		api.GET("/calendar/month", readCalendar, controllers.GetCalendarMonth)
		api.GET("/calendar.ics", readCalendar, controllers.GetCalendarICS)
		api.GET("/calendar/session", readCalendar, controllers.GetCalendarSession)
		api.POST("/calendar/session/day", readCalendar, controllers.SelectCalendarDay)
		api.POST("/calendar/session/event", readCalendar, controllers.OpenCalendarEvent)
		api.DELETE("/calendar/session/event", readCalendar, controllers.CloseCalendarEvent)
		api.POST("/calendar/session/edit", writeCalendar, controllers.BeginCalendarEdit)
		api.PUT("/calendar/session/edit", writeCalendar, controllers.SaveCalendarEdit)
		api.POST("/calendar/session/event/archive", writeCalendar, controllers.ArchiveOpenEvent)
		api.POST("/calendar/session/archive", writeCalendar, controllers.RequestCalendarArchive)
		api.POST("/calendar/session/archive/confirm", writeCalendar, controllers.ConfirmCalendarArchive)
		api.DELETE("/calendar/session/archive", writeCalendar, controllers.CancelCalendarArchive)

		api.POST("/orders", writeOrders, controllers.CreateOrder)
		api.GET("/orders", readOrders, controllers.ListOrders)
		api.GET("/orders/:id", readOrders, controllers.GetOrder)
		api.PATCH("/orders/:id/status", writeOrders, controllers.UpdateOrderStatus)
		api.POST("/orders/:id/archive", writeOrders, controllers.ArchiveOrder)
		api.POST("/orders/:id/garments/:index/fittings", writeOrders, controllers.AddFittingSession)
		api.DELETE("/orders/:id/garments/:index/fittings/:sessionId", writeOrders, controllers.RemoveFittingSession)
		api.POST("/orders/:id/garments/:index/photos", writeOrders, controllers.UploadGarmentPhoto)
		api.GET("/orders/:id/garments/:index/photos", readOrders, controllers.GetGarmentPhotos)
	}

	return router
}
