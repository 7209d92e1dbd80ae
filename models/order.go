package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order status values
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// Timeline entry types
const (
	TimelineCreated      = "created"
	TimelineStatusChange = "status_change"
	TimelineUpdate       = "update"
)

// Garment types that carry optional sub-records
const (
	GarmentWeddingDress = "Wedding Dress"
	GarmentCustom       = "Custom"
)

// Fitting session types
const (
	FittingInitial      = "Initial"
	FittingMuslin       = "Muslin"
	FittingConstruction = "Construction"
	FittingFinal        = "Final"
	FittingBustle       = "Bustle"
	FittingCustom       = "Custom"
)

// Order is the aggregate root for one shop transaction. Garments and the timeline are
// owned by the order and stored with it as JSON columns.
type Order struct {
	ID          string                             `gorm:"primaryKey;size:64" json:"id"`
	ClientInfo  ClientInfo                         `gorm:"embedded;embeddedPrefix:client_" json:"clientInfo"`
	Garments    datatypes.JSONSlice[Garment]       `json:"garments"`
	PaymentInfo PaymentInfo                        `gorm:"embedded;embeddedPrefix:payment_" json:"paymentInfo"`
	Description string                             `json:"description"`
	Status      string                             `gorm:"not null;default:'pending';index" json:"status"` // pending, in-progress, completed, archived
	DueDate     string                             `gorm:"not null" json:"dueDate"`                        // calendar date, e.g. 2024-06-01
	Timeline    datatypes.JSONSlice[TimelineEntry] `json:"timeline"`
	EventInfo   *EventInfo                         `gorm:"serializer:json" json:"eventInfo,omitempty"`
	CreatedAt   time.Time                          `json:"createdAt"`
	UpdatedAt   time.Time                          `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ClientInfo holds the contact details used for notifications
type ClientInfo struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Carrier string `json:"carrier"` // SMS gateway carrier
}

// PaymentInfo holds the amounts agreed for the order
type PaymentInfo struct {
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2)" json:"totalAmount"`
	DepositAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"depositAmount"`
	PaymentMethod string          `json:"paymentMethod"`
}

// EventInfo describes the occasion the order is for
type EventInfo struct {
	Type     string `json:"type"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// TimelineEntry is one record of the order's append-only audit log
type TimelineEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Garment is one physical item within an order
type Garment struct {
	GarmentInfo  GarmentInfo   `json:"garmentInfo"`
	Accessories  []string      `json:"accessories,omitempty"`
	Measurements []Measurement `json:"measurements,omitempty"`
}

// GarmentInfo describes the garment. BridalInfo is only present on wedding dresses and
// DesignInfo only on custom pieces; absence means the record does not apply.
type GarmentInfo struct {
	Type       string      `json:"type"`
	Brand      string      `json:"brand"`
	Color      string      `json:"color"`
	Quantity   int         `json:"quantity"`
	Photos     []string    `json:"photos,omitempty"` // storage keys
	Notes      string      `json:"notes"`
	BridalInfo *BridalInfo `json:"bridalInfo,omitempty"`
	DesignInfo *DesignInfo `json:"designInfo,omitempty"`
}

// Measurement is a single named measurement taken for a garment
type Measurement struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// BridalInfo carries wedding scheduling data for a wedding dress
type BridalInfo struct {
	WeddingDate     string           `json:"weddingDate"` // blank when unset
	FittingSessions []FittingSession `json:"fittingSessions"`
	Bustle          string           `json:"bustle,omitempty"`
	PartySize       int              `json:"partySize,omitempty"`
	Preservation    bool             `json:"preservation,omitempty"`
	Veil            string           `json:"veil,omitempty"`
}

// DesignInfo carries the brief for a custom piece
type DesignInfo struct {
	Description string   `json:"description"`
	Fabric      string   `json:"fabric"`
	Sketches    []string `json:"sketches,omitempty"`
}

// FittingSession is a scheduled bridal fitting appointment
type FittingSession struct {
	ID         string `json:"id"`   // unique within the owning garment
	Date       string `json:"date"` // ISO date-time, blank until scheduled
	Type       string `json:"type"`
	CustomType string `json:"customType,omitempty"`
	Notes      string `json:"notes"`
	Completed  bool   `json:"completed"`
}

// IsArchived reports whether the order has reached the terminal archived status
func (o Order) IsArchived() bool {
	return o.Status == StatusArchived
}

// Clone returns a deep copy of the order so that edits never alias shared state
func (o Order) Clone() Order {
	out := o
	if o.Garments != nil {
		out.Garments = make(datatypes.JSONSlice[Garment], len(o.Garments))
		for i, g := range o.Garments {
			out.Garments[i] = g.Clone()
		}
	}
	out.Timeline = slices.Clone(o.Timeline)
	if o.EventInfo != nil {
		info := *o.EventInfo
		out.EventInfo = &info
	}
	return out
}

// Clone returns a deep copy of the garment
func (g Garment) Clone() Garment {
	out := g
	out.Accessories = slices.Clone(g.Accessories)
	out.Measurements = slices.Clone(g.Measurements)
	out.GarmentInfo.Photos = slices.Clone(g.GarmentInfo.Photos)
	if g.GarmentInfo.BridalInfo != nil {
		bridal := *g.GarmentInfo.BridalInfo
		bridal.FittingSessions = slices.Clone(g.GarmentInfo.BridalInfo.FittingSessions)
		out.GarmentInfo.BridalInfo = &bridal
	}
	if g.GarmentInfo.DesignInfo != nil {
		design := *g.GarmentInfo.DesignInfo
		design.Sketches = slices.Clone(g.GarmentInfo.DesignInfo.Sketches)
		out.GarmentInfo.DesignInfo = &design
	}
	return out
}

// AppendTimeline appends an audit entry to the order's timeline
func (o *Order) AppendTimeline(entry TimelineEntry) {
	o.Timeline = append(o.Timeline, entry)
}

// CanTransitionTo reports whether a user-driven status change is allowed.
// Archival is handled separately and is terminal.
func CanTransitionTo(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}
