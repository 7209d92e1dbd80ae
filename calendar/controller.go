package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailorworks/alterations-api/models"
)

var (
	ErrActionInProgress = errors.New("calendar: a save is already in progress")
	ErrEventNotFound    = errors.New("calendar: event not found")
	ErrNoEventSelected  = errors.New("calendar: no event selected")
	ErrNoArchivePending = errors.New("calendar: no archive pending")
	ErrOrderNotFound    = errors.New("calendar: order not found")
)

// ArchiveDescription is the timeline text recorded when an order is archived
const ArchiveDescription = "Order archived"

// OrderStore is the persistence collaborator. SaveOrder receives the whole order
// aggregate and overwrites what is stored.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	SaveOrder(ctx context.Context, order models.Order) error
}

// Archiver receives orders archived from the detail view, for callers that treat
// archival as removal from view rather than a field update.
type Archiver interface {
	ArchiveOrder(ctx context.Context, order models.Order) error
}

// Option configures a Controller
type Option func(*Controller)

// WithArchiver routes ArchiveSelected through a.
func WithArchiver(a Archiver) Option {
	return func(c *Controller) { c.archiver = a }
}

// WithLocation sets the display timezone.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock overrides time.Now for timeline timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides the timeline entry id source.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// Controller holds one user's calendar interaction state: the selected day, the
// event whose detail is open, the edit buffer and a pending archive confirmation.
// Local orders only change after a write has succeeded.
type Controller struct {
	mu       sync.Mutex
	store    OrderStore
	archiver Archiver
	loc      *time.Location
	now      func() time.Time
	newID    func() string

	orders         []models.Order
	selectedDay    *time.Time
	selected       *Event
	editing        bool
	buffer         EditBuffer
	pendingArchive *Event
	busy           bool
}

// State is a snapshot of the controller's selection state
type State struct {
	SelectedDay    *time.Time  `json:"selectedDay"`
	SelectedEvent  *Event      `json:"selectedEvent"`
	Editing        bool        `json:"editing"`
	Buffer         *EditBuffer `json:"buffer,omitempty"`
	PendingArchive *Event      `json:"pendingArchive"`
	Busy           bool        `json:"busy"`
}

// NewController creates a controller writing through store
func NewController(store OrderStore, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		loc:   time.Local,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the display timezone
func (c *Controller) Location() *time.Location {
	return c.loc
}

// SetOrders hands the controller the current order list. A nil list is an empty shop.
func (c *Controller) SetOrders(orders []models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setOrdersLocked(orders)
}

// Refresh reloads the order list from the store
func (c *Controller) Refresh(ctx context.Context) error {
	orders, err := c.store.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	c.SetOrders(orders)
	return nil
}

// Events derives the current event list
func (c *Controller) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DeriveEvents(c.orders, c.loc)
}

// Month builds the month view containing ref
func (c *Controller) Month(ref time.Time) Month {
	return NewMonth(ref.In(c.loc), c.Events())
}

// Order returns a copy of the order with the given id
func (c *Controller) Order(id string) (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, ok := c.orderLocked(id)
	if !ok {
		return models.Order{}, false
	}
	return order.Clone(), true
}

// State returns a snapshot of the selection state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{Editing: c.editing, Busy: c.busy}
	if c.selectedDay != nil {
		day := *c.selectedDay
		st.SelectedDay = &day
	}
	if c.selected != nil {
		ev := *c.selected
		st.SelectedEvent = &ev
		buf := c.buffer
		st.Buffer = &buf
	}
	if c.pendingArchive != nil {
		ev := *c.pendingArchive
		st.PendingArchive = &ev
	}
	return st
}

// SelectDay marks day as selected. Orders are not touched.
func (c *Controller) SelectDay(day time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := startOfDay(day.In(c.loc))
	c.selectedDay = &d
}

// OpenEvent opens the detail view for an event and returns its pre-populated buffer
func (c *Controller) OpenEvent(eventID string) (Event, EditBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := FindEvent(DeriveEvents(c.orders, c.loc), eventID)
	if !ok {
		return Event{}, EditBuffer{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	order, _ := c.orderLocked(ev.OrderID)

	c.selected = &ev
	c.editing = false
	c.buffer = NewEditBuffer(ev, order)
	return ev, c.buffer, nil
}

// CloseDetail closes the detail view
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.editing = false
	c.buffer = EditBuffer{}
}

// BeginEdit puts the open detail view into edit mode
func (c *Controller) BeginEdit() (EditBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return EditBuffer{}, ErrNoEventSelected
	}
	order, _ := c.orderLocked(c.selected.OrderID)
	c.editing = true
	c.buffer = NewEditBuffer(*c.selected, order)
	return c.buffer, nil
}

// SaveEdit applies buf to the selected event's order and writes the whole order to
// the store. On failure nothing local changes and the error is returned.
func (c *Controller) SaveEdit(ctx context.Context, buf EditBuffer) (models.Order, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return models.Order{}, ErrActionInProgress
	}
	updated, err := c.prepareEditLocked(buf)
	if err != nil {
		c.mu.Unlock()
		return models.Order{}, err
	}
	c.busy = true
	c.mu.Unlock()

	err = c.store.SaveOrder(ctx, updated)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.buffer = buf
		return models.Order{}, fmt.Errorf("save order %s: %w", updated.ID, err)
	}

	c.replaceOrderLocked(updated)
	c.editing = false
	if c.selected != nil {
		if ev, ok := relocate(DeriveEvents(c.orders, c.loc), *c.selected); ok {
			c.selected = &ev
			c.buffer = NewEditBuffer(ev, updated)
		}
	}
	return updated.Clone(), nil
}

func (c *Controller) prepareEditLocked(buf EditBuffer) (models.Order, error) {
	if c.selected == nil {
		return models.Order{}, ErrNoEventSelected
	}
	ev := *c.selected
	order, ok := c.orderLocked(ev.OrderID)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, ev.OrderID)
	}
	edit, err := EditFor(ev, buf, c.loc)
	if err != nil {
		return models.Order{}, err
	}
	return ApplyEdit(order, edit)
}

// RequestArchive asks for confirmation before archiving the event's order
func (c *Controller) RequestArchive(eventID string) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := FindEvent(DeriveEvents(c.orders, c.loc), eventID)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	c.pendingArchive = &ev
	return ev, nil
}

// CancelArchive abandons a pending archive. It has no other effect.
func (c *Controller) CancelArchive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingArchive = nil
}

// ConfirmArchive archives the pending event's order and saves it through the store
func (c *Controller) ConfirmArchive(ctx context.Context) (models.Order, error) {
	return c.archive(ctx, func() (*Event, error) {
		if c.pendingArchive == nil {
			return nil, ErrNoArchivePending
		}
		return c.pendingArchive, nil
	}, c.store.SaveOrder)
}

// ArchiveSelected archives the order behind the open detail view, through the
// Archiver when one is configured, and closes the view.
func (c *Controller) ArchiveSelected(ctx context.Context) (models.Order, error) {
	write := c.store.SaveOrder
	if c.archiver != nil {
		write = c.archiver.ArchiveOrder
	}
	return c.archive(ctx, func() (*Event, error) {
		if c.selected == nil {
			return nil, ErrNoEventSelected
		}
		return c.selected, nil
	}, write)
}

func (c *Controller) archive(ctx context.Context, target func() (*Event, error), write func(context.Context, models.Order) error) (models.Order, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return models.Order{}, ErrActionInProgress
	}
	ev, err := target()
	if err != nil {
		c.mu.Unlock()
		return models.Order{}, err
	}
	order, ok := c.orderLocked(ev.OrderID)
	if !ok {
		c.mu.Unlock()
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, ev.OrderID)
	}
	archived := ArchiveOrder(order, c.now(), c.newID())
	c.busy = true
	c.mu.Unlock()

	err = write(ctx, archived)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return models.Order{}, fmt.Errorf("archive order %s: %w", archived.ID, err)
	}

	c.replaceOrderLocked(archived)
	c.pendingArchive = nil
	c.selected = nil
	c.editing = false
	c.buffer = EditBuffer{}
	return archived.Clone(), nil
}

// ArchiveOrder returns a copy of order moved to the terminal archived status with
// one status_change entry appended to its timeline.
func ArchiveOrder(order models.Order, now time.Time, entryID string) models.Order {
	archived := order.Clone()
	archived.Status = models.StatusArchived
	archived.AppendTimeline(models.TimelineEntry{
		ID:          entryID,
		Type:        models.TimelineStatusChange,
		Timestamp:   now,
		Description: ArchiveDescription,
	})
	return archived
}

func (c *Controller) setOrdersLocked(orders []models.Order) {
	c.orders = make([]models.Order, 0, len(orders))
	for _, o := range orders {
		c.orders = append(c.orders, o.Clone())
	}

	// drop selections whose events no longer exist
	events := DeriveEvents(c.orders, c.loc)
	if c.selected != nil {
		if ev, ok := relocate(events, *c.selected); ok {
			c.selected = &ev
		} else {
			c.selected = nil
			c.editing = false
			c.buffer = EditBuffer{}
		}
	}
	if c.pendingArchive != nil {
		if ev, ok := relocate(events, *c.pendingArchive); ok {
			c.pendingArchive = &ev
		} else {
			c.pendingArchive = nil
		}
	}
}

// relocate finds prev in a freshly derived list. Fitting ids are positional, so a
// fitting is matched by its session instead and may come back under a new id.
func relocate(events []Event, prev Event) (Event, bool) {
	if prev.Type != EventFitting || prev.FittingSessionID == "" {
		return FindEvent(events, prev.ID)
	}
	for _, ev := range events {
		if ev.Type == EventFitting && ev.OrderID == prev.OrderID &&
			ev.GarmentIndex == prev.GarmentIndex && ev.FittingSessionID == prev.FittingSessionID {
			return ev, true
		}
	}
	return Event{}, false
}

func (c *Controller) orderLocked(id string) (models.Order, bool) {
	for _, o := range c.orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (c *Controller) replaceOrderLocked(order models.Order) {
	for i := range c.orders {
		if c.orders[i].ID == order.ID {
			c.orders[i] = order.Clone()
			return
		}
	}
	c.orders = append(c.orders, order.Clone())
}
