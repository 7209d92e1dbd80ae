package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/tailorworks/alterations-api/models"
)

var (
	ErrFittingSessionNotFound = errors.New("calendar: fitting session not found")
	ErrInvalidEditDate        = errors.New("calendar: edited date is invalid")
	ErrUnknownEventType       = errors.New("calendar: unknown event type")
)

// Edit is a change to one event's date (and notes, for fittings). Each variant
// knows the single place in an order it writes to.
type Edit interface {
	apply(order *models.Order) error
}

// PickupEdit moves the order's due date. Only the calendar date is kept.
type PickupEdit struct {
	Date time.Time
}

// WeddingEdit moves the wedding date on every bridal garment of the order.
type WeddingEdit struct {
	Date time.Time
}

// FittingEdit reschedules one fitting session and replaces its notes.
type FittingEdit struct {
	GarmentIndex int
	SessionID    string
	Date         time.Time
	Notes        string
}

func (e PickupEdit) apply(order *models.Order) error {
	order.DueDate = DateOnly(e.Date)
	return nil
}

func (e WeddingEdit) apply(order *models.Order) error {
	date := DateOnly(e.Date)
	for i := range order.Garments {
		if bridal := order.Garments[i].GarmentInfo.BridalInfo; bridal != nil {
			bridal.WeddingDate = date
		}
	}
	return nil
}

func (e FittingEdit) apply(order *models.Order) error {
	session := findSession(order, e.GarmentIndex, e.SessionID)
	if session == nil {
		return fmt.Errorf("%w: %s", ErrFittingSessionNotFound, e.SessionID)
	}
	session.Date = e.Date.Format(time.RFC3339)
	session.Notes = e.Notes
	return nil
}

// ApplyEdit returns a copy of order with edit applied. order itself is not modified.
func ApplyEdit(order models.Order, edit Edit) (models.Order, error) {
	if edit == nil {
		return models.Order{}, ErrUnknownEventType
	}
	updated := order.Clone()
	if err := edit.apply(&updated); err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

// EditBuffer holds the values being edited in the detail view
type EditBuffer struct {
	Date  string `json:"date"`  // local date-time, 2006-01-02T15:04
	Notes string `json:"notes"` // fittings only
}

// NewEditBuffer pre-populates a buffer from the event and its current order state
func NewEditBuffer(ev Event, order models.Order) EditBuffer {
	buf := EditBuffer{Date: FormatInputValue(ev.Date)}
	if ev.Type == EventFitting {
		if session := findSession(&order, ev.GarmentIndex, ev.FittingSessionID); session != nil {
			buf.Notes = session.Notes
		}
	}
	return buf
}

// EditFor builds the edit variant for ev from the buffer's values
func EditFor(ev Event, buf EditBuffer, loc *time.Location) (Edit, error) {
	date, err := ParseDate(buf.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEditDate, err)
	}

	switch ev.Type {
	case EventPickup:
		return PickupEdit{Date: date}, nil
	case EventWedding:
		return WeddingEdit{Date: date}, nil
	case EventFitting:
		return FittingEdit{
			GarmentIndex: ev.GarmentIndex,
			SessionID:    ev.FittingSessionID,
			Date:         date,
			Notes:        buf.Notes,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, ev.Type)
}

// findSession looks in the hinted garment first, then in every garment.
func findSession(order *models.Order, garmentIndex int, id string) *models.FittingSession {
	if id == "" {
		return nil
	}
	if garmentIndex >= 0 && garmentIndex < len(order.Garments) {
		if s := sessionIn(&order.Garments[garmentIndex], id); s != nil {
			return s
		}
	}
	for i := range order.Garments {
		if s := sessionIn(&order.Garments[i], id); s != nil {
			return s
		}
	}
	return nil
}

func sessionIn(garment *models.Garment, id string) *models.FittingSession {
	bridal := garment.GarmentInfo.BridalInfo
	if bridal == nil {
		return nil
	}
	for i := range bridal.FittingSessions {
		if bridal.FittingSessions[i].ID == id {
			return &bridal.FittingSessions[i]
		}
	}
	return nil
}
