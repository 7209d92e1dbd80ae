package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/config"
	"github.com/tailorworks/alterations-api/middleware"
	"github.com/tailorworks/alterations-api/models"
	"github.com/tailorworks/alterations-api/services"
)

// UpdateUserRequest represents the request body for updating a staff profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateUser handles POST /api/v1/users - registers the signed-in staff member from
// their Auth0 profile
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}
	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	user, err := staffStore().Register(c.Request.Context(), models.User{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    staffRole(c),
	})
	if err != nil {
		respondStaffError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets the signed-in staff member's profile
func GetMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	user, err := staffStore().Profile(c.Request.Context(), auth0ID)
	if err != nil {
		respondStaffError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
func UpdateMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	user, err := staffStore().UpdateProfile(c.Request.Context(), auth0ID, req.Name, req.Email)
	if err != nil {
		respondStaffError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func staffStore() *services.StaffStore {
	return services.NewStaffStore(config.GetDB())
}

func respondStaffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrStaffNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
	case errors.Is(err, services.ErrStaffExists):
		respondError(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
	case errors.Is(err, services.ErrEmailTaken):
		respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
	default:
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save user profile")
	}
}

// staffRole reads the shop role from the token, defaulting to staff
func staffRole(c *gin.Context) string {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		return models.RoleStaff
	}
	if customClaims, ok := claims.CustomClaims.(*middleware.CustomClaims); ok && customClaims.Role == models.RoleOwner {
		return models.RoleOwner
	}
	return models.RoleStaff
}
