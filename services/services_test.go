package services

import (
	"context"
	"sync"
	"testing"

	"github.com/tailorworks/alterations-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Notification{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// recordingNotifier captures every notification it is asked to send
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

type sentNotification struct {
	OrderID string
	Status  string
}

func (n *recordingNotifier) Notify(_ context.Context, order models.Order, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{OrderID: order.ID, Status: status})
	return nil
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func newBridalOrder(dueDate, weddingDate string, sessions ...models.FittingSession) models.Order {
	return models.Order{
		ClientInfo: models.ClientInfo{
			Name:  "Maya Chen",
			Email: "maya@example.com",
			Phone: "555-0100",
		},
		DueDate: dueDate,
		Garments: []models.Garment{
			{
				GarmentInfo: models.GarmentInfo{
					Type:     models.GarmentWeddingDress,
					Brand:    "Pronovias",
					Quantity: 1,
					BridalInfo: &models.BridalInfo{
						WeddingDate:     weddingDate,
						FittingSessions: sessions,
					},
				},
			},
			{
				GarmentInfo: models.GarmentInfo{Type: "Suit", Quantity: 1},
			},
		},
	}
}
