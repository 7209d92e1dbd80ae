package models

import (
	"time"
)

// Notification records one outbound client notification for an order
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"not null;index;size:64" json:"orderId"`
	Status    string    `gorm:"not null" json:"status"`  // order status or reminder kind that triggered it
	Channel   string    `gorm:"not null" json:"channel"` // "log" or "amqp"
	Recipient string    `json:"recipient"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
