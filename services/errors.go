package services

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoGarments        = errors.New("an order needs at least one garment")
	ErrMissingDueDate    = errors.New("an order needs a due date")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrGarmentNotFound   = errors.New("garment not found")
	ErrNotBridal         = errors.New("garment has no bridal info")
	ErrSessionNotFound   = errors.New("fitting session not found")
	ErrNotArchived       = errors.New("order is not archived")
)

var (
	ErrStaffNotFound = errors.New("staff member not found")
	ErrStaffExists   = errors.New("staff member already registered")
	ErrEmailTaken    = errors.New("email already in use")
)
