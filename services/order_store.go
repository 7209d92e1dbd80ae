package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tailorworks/alterations-api/models"
	"gorm.io/gorm"
)

// OrderStore persists whole order aggregates with gorm. Saves overwrite the stored
// order; concurrent writers resolve last-write-wins.
type OrderStore struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewOrderStore creates a store on db. notifier may be nil.
func NewOrderStore(db *gorm.DB, notifier Notifier) *OrderStore {
	return &OrderStore{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListOrders returns every order, archived ones included, by due date
func (s *OrderStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("due_date ASC").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersByStatus returns the orders in the given status
func (s *OrderStore) ListOrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("due_date ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches one order by id
func (s *OrderStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return order, nil
}

// CreateOrder validates and inserts a new order. It assigns an id when none is
// given, seeds the timeline and gives unnamed fitting sessions ids.
func (s *OrderStore) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if len(order.Garments) == 0 {
		return models.Order{}, ErrNoGarments
	}
	if strings.TrimSpace(order.DueDate) == "" {
		return models.Order{}, ErrMissingDueDate
	}

	order = order.Clone()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	for gi := range order.Garments {
		if bridal := order.Garments[gi].GarmentInfo.BridalInfo; bridal != nil {
			for si := range bridal.FittingSessions {
				if bridal.FittingSessions[si].ID == "" {
					bridal.FittingSessions[si].ID = uuid.NewString()
				}
			}
		}
	}
	order.AppendTimeline(models.TimelineEntry{
		ID:          uuid.NewString(),
		Type:        models.TimelineCreated,
		Timestamp:   s.now(),
		Description: "Order created",
	})

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// SaveOrder overwrites the stored order with the given aggregate. When the status
// changed, the client is notified; a failed notification does not fail the save.
func (s *OrderStore) SaveOrder(ctx context.Context, order models.Order) error {
	previous, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	if len(order.Garments) == 0 {
		return ErrNoGarments
	}

	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}

	if previous.Status != order.Status {
		s.notify(ctx, order, order.Status)
	}
	return nil
}

// ArchiveOrder persists an order that has already been moved to archived
func (s *OrderStore) ArchiveOrder(ctx context.Context, order models.Order) error {
	if !order.IsArchived() {
		return ErrNotArchived
	}
	if err := s.SaveOrder(ctx, order); err != nil {
		return err
	}
	log.Printf("Order %s archived", order.ID)
	return nil
}

// UpdateStatus moves an order along pending -> in-progress -> completed and records
// the change on its timeline
func (s *OrderStore) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !models.CanTransitionTo(order.Status, status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	order.Status = status
	order.AppendTimeline(models.TimelineEntry{
		ID:          uuid.NewString(),
		Type:        models.TimelineStatusChange,
		Timestamp:   s.now(),
		Description: fmt.Sprintf("Status changed to %s", status),
	})
	if err := s.SaveOrder(ctx, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// AddFittingSession appends an unscheduled fitting session to a bridal garment
func (s *OrderStore) AddFittingSession(ctx context.Context, id string, garmentIndex int, session models.FittingSession) (models.Order, models.FittingSession, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, models.FittingSession{}, err
	}
	bridal, err := bridalInfoAt(&order, garmentIndex)
	if err != nil {
		return models.Order{}, models.FittingSession{}, err
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Type == "" {
		session.Type = models.FittingInitial
	}
	bridal.FittingSessions = append(bridal.FittingSessions, session)

	if err := s.SaveOrder(ctx, order); err != nil {
		return models.Order{}, models.FittingSession{}, err
	}
	return order, session, nil
}

// RemoveFittingSession filters a fitting session out of a bridal garment
func (s *OrderStore) RemoveFittingSession(ctx context.Context, id string, garmentIndex int, sessionID string) (models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	bridal, err := bridalInfoAt(&order, garmentIndex)
	if err != nil {
		return models.Order{}, err
	}

	kept := make([]models.FittingSession, 0, len(bridal.FittingSessions))
	for _, fs := range bridal.FittingSessions {
		if fs.ID != sessionID {
			kept = append(kept, fs)
		}
	}
	if len(kept) == len(bridal.FittingSessions) {
		return models.Order{}, ErrSessionNotFound
	}
	bridal.FittingSessions = kept

	if err := s.SaveOrder(ctx, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// AddGarmentPhoto records an uploaded photo's storage key on a garment
func (s *OrderStore) AddGarmentPhoto(ctx context.Context, id string, garmentIndex int, key string) (models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if garmentIndex < 0 || garmentIndex >= len(order.Garments) {
		return models.Order{}, ErrGarmentNotFound
	}

	info := &order.Garments[garmentIndex].GarmentInfo
	info.Photos = append(info.Photos, key)

	if err := s.SaveOrder(ctx, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *OrderStore) notify(ctx context.Context, order models.Order, status string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, order, status); err != nil {
		log.Printf("warning: failed to notify client for order %s (%s): %v", order.ID, status, err)
	}
}

func bridalInfoAt(order *models.Order, garmentIndex int) (*models.BridalInfo, error) {
	if garmentIndex < 0 || garmentIndex >= len(order.Garments) {
		return nil, ErrGarmentNotFound
	}
	bridal := order.Garments[garmentIndex].GarmentInfo.BridalInfo
	if bridal == nil {
		return nil, ErrNotBridal
	}
	return bridal, nil
}
