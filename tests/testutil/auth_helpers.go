package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/middleware"
)

// AllScopes is every scope a shop owner's token carries
var AllScopes = []string{
	middleware.ScopeReadCalendar,
	middleware.ScopeWriteCalendar,
	middleware.ScopeReadOrders,
	middleware.ScopeWriteOrders,
}

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// MockAuth stands in for EnsureValidToken, setting the context it would set for a
// verified token of userID carrying scopes
func MockAuth(userID string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("access_token", "mock-token")
		c.Set("validated_claims", MockValidatedClaims(userID, "https://test.auth0.com/", scopes))
		c.Next()
	}
}
