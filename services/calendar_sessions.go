package services

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tailorworks/alterations-api/calendar"
)

// CalendarSessions keeps one calendar controller per signed-in actor. The least
// recently used session is evicted once the cache is full.
type CalendarSessions struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *calendar.Controller]
	factory func() *calendar.Controller
}

// NewCalendarSessions creates a registry holding at most size sessions. factory
// builds the controller for a new actor.
func NewCalendarSessions(size int, factory func() *calendar.Controller) (*CalendarSessions, error) {
	cache, err := lru.New[string, *calendar.Controller](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar session cache: %w", err)
	}
	return &CalendarSessions{cache: cache, factory: factory}, nil
}

var calendarSessionsInstance *CalendarSessions

// GetCalendarSessions returns the shared session registry
func GetCalendarSessions() *CalendarSessions {
	return calendarSessionsInstance
}

// SetCalendarSessions sets the shared session registry
func SetCalendarSessions(s *CalendarSessions) {
	calendarSessionsInstance = s
}

// Get returns the actor's controller, creating it and loading orders on first use.
// Existing sessions are refreshed so they see other actors' writes.
func (s *CalendarSessions) Get(ctx context.Context, actorID string) (*calendar.Controller, error) {
	s.mu.Lock()
	ctrl, ok := s.cache.Get(actorID)
	if !ok {
		ctrl = s.factory()
		s.cache.Add(actorID, ctrl)
	}
	s.mu.Unlock()

	if err := ctrl.Refresh(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Remove drops the actor's session
func (s *CalendarSessions) Remove(actorID string) {
	s.cache.Remove(actorID)
}

// Len returns the number of live sessions
func (s *CalendarSessions) Len() int {
	return s.cache.Len()
}
