package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/calendar"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/controllers"
	"github.com/tailorworks/alterations-api/middleware"
	"github.com/tailorworks/alterations-api/models"
	"github.com/tailorworks/alterations-api/services"
)

func main() {
	log.Println("Starting Alterations API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Notification{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if cfg.RabbitMQURL != "" {
		notifier, err := services.NewAMQPNotifier(cfg.RabbitMQURL, cfg.RabbitMQQueue, db)
		if err != nil {
			log.Fatalf("Failed to set up notifications: %v", err)
		}
		defer notifier.Close()
		services.SetNotifier(notifier)
		log.Printf("Publishing notifications to queue %s", cfg.RabbitMQQueue)
	} else {
		services.SetNotifier(services.NewLogNotifier(db))
		log.Println("RABBITMQ_URL not set, notifications are logged only")
	}

	if err := initCalendarSessions(cfg); err != nil {
		log.Fatalf("Failed to set up calendar sessions: %v", err)
	}

	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service(context.Background())
		if err != nil {
			log.Fatalf("Failed to set up S3: %v", err)
		}
		services.InitImageService(s3Service)
	} else if !cfg.IsProduction() {
		log.Println("AWS_S3_BUCKET not set, garment photos are kept in memory")
		services.InitImageService(services.NewMockS3Service())
	}

	reminders := services.NewReminderJob(services.NewOrderStore(db, services.GetNotifier()), services.GetNotifier(), cfg.Location())
	scheduler, err := services.ScheduleReminders(reminders, cfg.ReminderSchedule, cfg.Location())
	if err != nil {
		log.Fatalf("Failed to schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("Reminders scheduled at %q (%s)", cfg.ReminderSchedule, cfg.Timezone)

	router := setupRouter(cfg, middleware.EnsureValidToken(cfg))

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initCalendarSessions builds the per-user calendar registry on the current database
func initCalendarSessions(cfg *config.Config) error {
	loc := cfg.Location()
	sessions, err := services.NewCalendarSessions(cfg.SessionCacheSize, func() *calendar.Controller {
		store := services.NewOrderStore(config.GetDB(), services.GetNotifier())
		return calendar.NewController(store,
			calendar.WithLocation(loc),
			calendar.WithArchiver(store),
		)
	})
	if err != nil {
		return err
	}
	services.SetCalendarSessions(sessions)
	return nil
}

// setupRouter registers every route. auth validates the bearer token and must set
// the caller's user id and claims.
func setupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		api := v1.Group("", auth)

		api.POST("/users", controllers.CreateUser)
		api.GET("/users/me", controllers.GetMyProfile)
		api.PUT("/users/me", controllers.UpdateMyProfile)

		readCalendar := middleware.RequireScope(middleware.ScopeReadCalendar)
		writeCalendar := middleware.RequireScope(middleware.ScopeWriteCalendar)

		api.GET("/calendar/events", readCalendar, controllers.GetCalendarEvents)
		api.GET("/calendar/month", readCalendar, controllers.GetCalendarMonth)
		api.GET("/calendar.ics", readCalendar, controllers.GetCalendarICS)

		session := api.Group("/calendar/session", readCalendar)
		{
			session.GET("", controllers.GetCalendarSession)
			session.POST("/day", controllers.SelectCalendarDay)
			session.POST("/event", controllers.OpenCalendarEvent)
			session.DELETE("/event", controllers.CloseCalendarEvent)
			session.POST("/edit", writeCalendar, controllers.BeginCalendarEdit)
			session.PUT("/edit", writeCalendar, controllers.SaveCalendarEdit)
			session.POST("/event/archive", writeCalendar, controllers.ArchiveOpenEvent)
			session.POST("/archive", writeCalendar, controllers.RequestCalendarArchive)
			session.POST("/archive/confirm", writeCalendar, controllers.ConfirmCalendarArchive)
			session.DELETE("/archive", writeCalendar, controllers.CancelCalendarArchive)
		}

		readOrders := middleware.RequireScope(middleware.ScopeReadOrders)
		writeOrders := middleware.RequireScope(middleware.ScopeWriteOrders)

		orders := api.Group("/orders")
		{
			orders.POST("", writeOrders, controllers.CreateOrder)
			orders.GET("", readOrders, controllers.ListOrders)
			orders.GET("/:id", readOrders, controllers.GetOrder)
			orders.PATCH("/:id/status", writeOrders, controllers.UpdateOrderStatus)
			orders.POST("/:id/archive", writeOrders, controllers.ArchiveOrder)
			orders.POST("/:id/garments/:index/fittings", writeOrders, controllers.AddFittingSession)
			orders.DELETE("/:id/garments/:index/fittings/:sessionId", writeOrders, controllers.RemoveFittingSession)
			orders.POST("/:id/garments/:index/photos", writeOrders, controllers.UploadGarmentPhoto)
			orders.GET("/:id/garments/:index/photos", readOrders, controllers.GetGarmentPhotos)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alterations API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not connected",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
