// Package calendar derives the shop's schedule from orders: pickup, wedding and
// fitting events, the month grid they are laid out on, and the edits and archival
// transitions that write back into order data.
package calendar

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/tailorworks/alterations-api/models"
)

// EventType identifies where in an order an event's date lives
type EventType string

const (
	EventPickup  EventType = "pickup"
	EventWedding EventType = "wedding"
	EventFitting EventType = "fitting"
)

// Default display hours applied to date-only values
const (
	PickupDefaultHour  = 18
	WeddingDefaultHour = 12
)

// Fitting event status labels
const (
	FittingStatusCompleted = "completed"
	FittingStatusPending   = "pending"
)

// Event is a derived, never persisted, schedulable moment. It refers back to its
// source by order id (and fitting session id) rather than holding the order itself.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             time.Time `json:"date"`
	Type             EventType `json:"type"`
	ClientName       string    `json:"clientName"`
	Status           string    `json:"status"`
	OrderID          string    `json:"orderId"`
	GarmentIndex     int       `json:"garmentIndex"`
	FittingSessionID string    `json:"fittingSessionId,omitempty"`
}

// DeriveEvents maps orders to a chronologically ascending event list in loc.
// Archived orders produce nothing. A value that fails to parse drops only the
// event it belongs to.
func DeriveEvents(orders []models.Order, loc *time.Location) []Event {
	if loc == nil {
		loc = time.Local
	}

	events := make([]Event, 0, len(orders))
	for _, order := range orders {
		if order.IsArchived() {
			continue
		}
		events = append(events, orderEvents(order, loc)...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

func orderEvents(order models.Order, loc *time.Location) []Event {
	var events []Event
	client := order.ClientInfo.Name

	if due, err := ParseDate(order.DueDate, loc); err != nil {
		log.Printf("calendar: skipping pickup for order %s: %v", order.ID, err)
	} else {
		events = append(events, Event{
			ID:         "pickup-" + order.ID,
			Title:      "Pickup - " + client,
			Date:       withDefaultHour(due, PickupDefaultHour),
			Type:       EventPickup,
			ClientName: client,
			Status:     order.Status,
			OrderID:    order.ID,
		})
	}

	sessionIndex := 0
	weddingSeen := false
	for gi, garment := range order.Garments {
		bridal := garment.GarmentInfo.BridalInfo
		if bridal == nil {
			continue
		}

		if bridal.WeddingDate != "" {
			id := "wedding-" + order.ID
			if weddingSeen {
				id = fmt.Sprintf("wedding-%s-%d", order.ID, gi)
			}
			weddingSeen = true

			if date, err := ParseDate(bridal.WeddingDate, loc); err != nil {
				log.Printf("calendar: skipping wedding for order %s garment %d: %v", order.ID, gi, err)
			} else {
				events = append(events, Event{
					ID:           id,
					Title:        "Wedding - " + client,
					Date:         withDefaultHour(date, WeddingDefaultHour),
					Type:         EventWedding,
					ClientName:   client,
					Status:       order.Status,
					OrderID:      order.ID,
					GarmentIndex: gi,
				})
			}
		}

		for _, session := range bridal.FittingSessions {
			index := sessionIndex
			sessionIndex++
			if session.Date == "" {
				continue
			}

			date, err := ParseDate(session.Date, loc)
			if err != nil {
				log.Printf("calendar: skipping fitting %s for order %s: %v", session.ID, order.ID, err)
				continue
			}
			events = append(events, Event{
				ID:               fmt.Sprintf("fitting-%s-%d", order.ID, index),
				Title:            fittingTitle(session, client),
				Date:             date,
				Type:             EventFitting,
				ClientName:       client,
				Status:           fittingStatus(session),
				OrderID:          order.ID,
				GarmentIndex:     gi,
				FittingSessionID: session.ID,
			})
		}
	}

	return events
}

func fittingStatus(session models.FittingSession) string {
	if session.Completed {
		return FittingStatusCompleted
	}
	return FittingStatusPending
}

func fittingTitle(session models.FittingSession, client string) string {
	label := session.Type
	if label == models.FittingCustom && session.CustomType != "" {
		label = session.CustomType
	}
	if label == "" {
		return "Fitting - " + client
	}
	return label + " Fitting - " + client
}

// FindEvent returns the event with the given id
func FindEvent(events []Event, id string) (Event, bool) {
	for _, ev := range events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// EventsBetween returns the events falling on the days from through to, both
// inclusive, in the bounds' own location. A zero bound is open.
func EventsBetween(events []Event, from, to time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		day := ev.Date
		if !from.IsZero() && day.Before(startOfDay(from)) {
			continue
		}
		if !to.IsZero() && !day.Before(startOfDay(to).AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
