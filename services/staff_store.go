package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tailorworks/alterations-api/models"
	"gorm.io/gorm"
)

// StaffStore persists the shop's staff profiles, keyed by Auth0 subject
type StaffStore struct {
	db *gorm.DB
}

// NewStaffStore creates a store on db
func NewStaffStore(db *gorm.DB) *StaffStore {
	return &StaffStore{db: db}
}

// Register stores a new staff member. A second registration of the same Auth0 id
// or email returns ErrStaffExists.
func (s *StaffStore) Register(ctx context.Context, user models.User) (models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrStaffExists
		}
		return models.User{}, fmt.Errorf("create staff member: %w", err)
	}
	return user, nil
}

// Profile loads the staff member signed in as auth0ID
func (s *StaffStore) Profile(ctx context.Context, auth0ID string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrStaffNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load staff member %s: %w", auth0ID, err)
	}
	return user, nil
}

// UpdateProfile changes the non-empty fields of a profile and returns the stored result
func (s *StaffStore) UpdateProfile(ctx context.Context, auth0ID, name, email string) (models.User, error) {
	user, err := s.Profile(ctx, auth0ID)
	if err != nil {
		return models.User{}, err
	}

	updates := make(map[string]any)
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("update staff member %s: %w", auth0ID, err)
	}
	return s.Profile(ctx, auth0ID)
}

// isUniqueViolation matches duplicate key errors from both PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
