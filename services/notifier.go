package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tailorworks/alterations-api/models"
	"gorm.io/gorm"
)

// Notification channels
const (
	ChannelLog  = "log"
	ChannelAMQP = "amqp"
)

// Notifier tells a client that something happened to their order. status is the
// new order status or a "reminder:{event type}" kind.
type Notifier interface {
	Notify(ctx context.Context, order models.Order, status string) error
}

var notifierInstance Notifier

// GetNotifier returns the configured notifier, or nil when notifications are off
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier used by order stores built from GetNotifier
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// LogNotifier logs notifications and records them in the notifications table.
// It is used when no message broker is configured.
type LogNotifier struct {
	db *gorm.DB
}

// NewLogNotifier creates a log notifier recording into db. db may be nil.
func NewLogNotifier(db *gorm.DB) *LogNotifier {
	return &LogNotifier{db: db}
}

// Notify logs the notification and records it
func (n *LogNotifier) Notify(ctx context.Context, order models.Order, status string) error {
	log.Printf("Notify %s <%s> about order %s: %s", order.ClientInfo.Name, recipient(order), order.ID, status)
	return recordNotification(ctx, n.db, order, status, ChannelLog)
}

// NotificationMessage is the payload published for the email/SMS worker
type NotificationMessage struct {
	OrderID    string `json:"orderId"`
	ClientName string `json:"clientName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Carrier    string `json:"carrier"`
	Status     string `json:"status"`
	DueDate    string `json:"dueDate"`
}

// publisher is the part of *amqp.Channel the notifier uses
type publisher interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes notifications to a durable RabbitMQ queue
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel publisher
	queue   string
	db      *gorm.DB
}

// NewAMQPNotifier dials url and declares queue
func NewAMQPNotifier(url, queue string, db *gorm.DB) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	n, err := newAMQPNotifier(channel, queue, db)
	if err != nil {
		conn.Close()
		return nil, err
	}
	n.conn = conn
	return n, nil
}

func newAMQPNotifier(channel publisher, queue string, db *gorm.DB) (*AMQPNotifier, error) {
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &AMQPNotifier{channel: channel, queue: queue, db: db}, nil
}

// Notify publishes a persistent JSON message for the order
func (n *AMQPNotifier) Notify(ctx context.Context, order models.Order, status string) error {
	body, err := json.Marshal(NotificationMessage{
		OrderID:    order.ID,
		ClientName: order.ClientInfo.Name,
		Email:      order.ClientInfo.Email,
		Phone:      order.ClientInfo.Phone,
		Carrier:    order.ClientInfo.Carrier,
		Status:     status,
		DueDate:    order.DueDate,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	err = n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification for order %s: %w", order.ID, err)
	}

	return recordNotification(ctx, n.db, order, status, ChannelAMQP)
}

// Close closes the channel and connection
func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		return err
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

func recordNotification(ctx context.Context, db *gorm.DB, order models.Order, status, channel string) error {
	if db == nil {
		return nil
	}
	notification := models.Notification{
		OrderID:   order.ID,
		Status:    status,
		Channel:   channel,
		Recipient: recipient(order),
	}
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

func recipient(order models.Order) string {
	if order.ClientInfo.Email != "" {
		return order.ClientInfo.Email
	}
	return order.ClientInfo.Phone
}
