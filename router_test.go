package main

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		GoEnv:              "test",
		Port:               "8080",
		Timezone:           "UTC",
		SessionCacheSize:   16,
		ReminderSchedule:   "0 9 * * *",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

// fakeAuth sets the context the way EnsureValidToken does for a verified token
func fakeAuth(userID string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("access_token", "test-token")
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: userID},
			CustomClaims:     &middleware.CustomClaims{Scope: strings.Join(scopes, " ")},
		})
		c.Next()
	}
}

// newTestRouter builds the full router with a fake staff login
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return setupRouter(testConfig(), fakeAuth("auth0|staff",
		middleware.ScopeReadCalendar,
		middleware.ScopeWriteCalendar,
		middleware.ScopeReadOrders,
		middleware.ScopeWriteOrders,
	))
}
