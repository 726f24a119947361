package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
	"cityevents/pkg/metrics"
)

const eventEntity = "event"

type EventService struct {
	mu     sync.RWMutex
	repo   domain.EventRepository
	logger logger.Logger
	now    func() time.Time
	events []domain.Event
	nextID int64
}

type EventServiceOption func(*EventService)

// WithClock replaces time.Now as the source of "now" for every temporal
// query and participation check.
func WithClock(now func() time.Time) EventServiceOption {
	return func(s *EventService) {
		s.now = now
	}
}

// NewEventService loads the persisted events and restores the id counter.
// A failed load is logged and the service starts empty.
func NewEventService(repo domain.EventRepository, logger logger.Logger, opts ...EventServiceOption) domain.EventService {
	s := &EventService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snapshot, err := repo.Load()
	if err != nil {
		logger.Error("Events could not be loaded, starting empty", map[string]interface{}{"error": err.Error()})
		snapshot = domain.EventSnapshot{}
	}

	s.events = make([]domain.Event, 0, len(snapshot.Events))
	s.nextID = 1
	if snapshot.NextID > s.nextID {
		s.nextID = snapshot.NextID
	}
	for _, e := range snapshot.Events {
		e = e.Clone()
		for i := range e.Participants {
			e.Participants[i] = e.Participants[i].Normalized()
		}
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
		s.events = append(s.events, e)
	}
	metrics.SetCollectionSize(eventEntity, len(s.events))

	return s
}

func (s *EventService) Create(event domain.Event) (created domain.Event, err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "create", err) }()

	if err = event.Validate(); err != nil {
		return domain.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event = normalizeParticipants(event)
	event.ID = s.nextID

	next := make([]domain.Event, len(s.events), len(s.events)+1)
	copy(next, s.events)
	next = append(next, event)

	if err = s.commit(next, s.nextID+1); err != nil {
		return domain.Event{}, fmt.Errorf("event could not be created: %w", err)
	}

	s.logger.Info("Event created", map[string]interface{}{"id": event.ID, "name": event.Name})
	return event.Clone(), nil
}

func (s *EventService) Remove(id int64) (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "remove", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", domain.ErrEventNotFound, id)
	}

	next := make([]domain.Event, 0, len(s.events)-1)
	next = append(next, s.events[:i]...)
	next = append(next, s.events[i+1:]...)

	if err = s.commit(next, s.nextID); err != nil {
		return fmt.Errorf("event could not be removed: %w", err)
	}

	s.logger.Info("Event removed", map[string]interface{}{"id": id})
	return nil
}

func (s *EventService) Update(event domain.Event) (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "update", err) }()

	if err = event.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(event.ID)
	if i < 0 {
		return fmt.Errorf("%w: %d", domain.ErrEventNotFound, event.ID)
	}

	next := s.copyEvents()
	next[i] = normalizeParticipants(event)

	if err = s.commit(next, s.nextID); err != nil {
		return fmt.Errorf("event could not be updated: %w", err)
	}

	s.logger.Info("Event updated", map[string]interface{}{"id": event.ID})
	return nil
}

func (s *EventService) FindByID(id int64) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Event{}, false
	}
	return s.events[i].Clone(), true
}

func (s *EventService) ListSortedByTime() []domain.Event {
	return s.filterByStart(func(domain.Event, time.Time) bool { return true })
}

func (s *EventService) ListByCategory(category domain.Category) []domain.Event {
	return s.filterByStart(func(e domain.Event, _ time.Time) bool {
		return e.Category == category
	})
}

// ListUpcoming returns events starting strictly after now.
func (s *EventService) ListUpcoming() []domain.Event {
	return s.filterByStart(func(e domain.Event, now time.Time) bool {
		return e.StartsAt.After(now)
	})
}

// ListPast returns events that started strictly before now, most recent
// first. Events still inside their ongoing window are included.
func (s *EventService) ListPast() []domain.Event {
	past := s.filter(func(e domain.Event, now time.Time) bool {
		return e.StartsAt.Before(now)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].StartsAt.After(past[j].StartsAt)
	})
	return past
}

func (s *EventService) ListOngoing() []domain.Event {
	return s.filterByStart(func(e domain.Event, now time.Time) bool {
		return e.IsOngoing(now)
	})
}

func (s *EventService) SearchByName(fragment string) []domain.Event {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return []domain.Event{}
	}

	return s.filterByStart(func(e domain.Event, _ time.Time) bool {
		return strings.Contains(strings.ToLower(e.Name), fragment)
	})
}

func (s *EventService) AddParticipant(eventID int64, user domain.User) (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "add_participant", err) }()

	user = user.Normalized()
	if user.IsZero() {
		return fmt.Errorf("%w: participant has no email", domain.ErrInvalidUser)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(eventID)
	if i < 0 {
		return fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
	}

	event := s.events[i].Clone()
	if event.HasEnded(s.now()) {
		return fmt.Errorf("%w: %d", domain.ErrEventEnded, eventID)
	}
	if !event.AddParticipant(user) {
		return fmt.Errorf("%w: %s in %d", domain.ErrAlreadyParticipant, user.Email, eventID)
	}

	next := s.copyEvents()
	next[i] = event

	if err = s.commit(next, s.nextID); err != nil {
		return fmt.Errorf("participant could not be added: %w", err)
	}

	s.logger.Info("Participant added", map[string]interface{}{"event_id": eventID, "email": user.Email})
	return nil
}

func (s *EventService) RemoveParticipant(eventID int64, user domain.User) (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "remove_participant", err) }()

	user = user.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(eventID)
	if i < 0 {
		return fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
	}

	event := s.events[i].Clone()
	if !event.RemoveParticipant(user) {
		return fmt.Errorf("%w: %s in %d", domain.ErrNotParticipant, user.Email, eventID)
	}

	next := s.copyEvents()
	next[i] = event

	if err = s.commit(next, s.nextID); err != nil {
		return fmt.Errorf("participant could not be removed: %w", err)
	}

	s.logger.Info("Participant removed", map[string]interface{}{"event_id": eventID, "email": user.Email})
	return nil
}

func (s *EventService) ListForUser(user domain.User) []domain.Event {
	user = user.Normalized()
	if user.IsZero() {
		return []domain.Event{}
	}

	return s.filterByStart(func(e domain.Event, _ time.Time) bool {
		return e.HasParticipant(user)
	})
}

// PurgeParticipant drops email from every participant list and reports how
// many events changed. Nothing is written when no event lists the user.
func (s *EventService) PurgeParticipant(email string) (purged int, err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "purge_participant", err) }()

	user := domain.User{Email: email}.Normalized()
	if user.IsZero() {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyEvents()
	for i := range next {
		if !next[i].HasParticipant(user) {
			continue
		}
		event := next[i].Clone()
		event.RemoveParticipant(user)
		next[i] = event
		purged++
	}
	if purged == 0 {
		return 0, nil
	}

	if err = s.commit(next, s.nextID); err != nil {
		return 0, fmt.Errorf("participant could not be purged: %w", err)
	}

	s.logger.Info("Participant purged from events", map[string]interface{}{"email": user.Email, "events": purged})
	return purged, nil
}

// Stats classifies events against the clock at call time.
func (s *EventService) Stats() domain.EventStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	stats := domain.EventStats{
		Total:      len(s.events),
		ByCategory: make(map[domain.Category]int),
	}
	for _, e := range s.events {
		switch {
		case e.StartsAt.After(now):
			stats.Upcoming++
		case e.StartsAt.Before(now):
			stats.Past++
		}
		if e.IsOngoing(now) {
			stats.Ongoing++
		}
		stats.ByCategory[e.Category]++
	}
	return stats
}

func (s *EventService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// ClearAll empties the collection. The id counter keeps its value so ids
// are never handed out twice.
func (s *EventService) ClearAll() (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "clear", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.events)
	if err = s.commit([]domain.Event{}, s.nextID); err != nil {
		return fmt.Errorf("events could not be cleared: %w", err)
	}

	s.logger.Warn("All events removed", map[string]interface{}{"count": removed})
	return nil
}

func (s *EventService) Save() (err error) {
	defer func() { metrics.RecordStoreOperation(eventEntity, "save", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.commit(s.events, s.nextID); err != nil {
		return fmt.Errorf("events could not be saved: %w", err)
	}
	return nil
}

// commit persists next together with nextID and swaps both in only after
// the write succeeded. Callers hold s.mu.
func (s *EventService) commit(next []domain.Event, nextID int64) error {
	snapshot := domain.EventSnapshot{NextID: nextID, Events: next}
	if err := s.repo.Save(snapshot); err != nil {
		s.logger.Error("Events could not be persisted", map[string]interface{}{"count": len(next), "error": err.Error()})
		return err
	}

	s.events = next
	s.nextID = nextID
	metrics.SetCollectionSize(eventEntity, len(next))
	return nil
}

// copyEvents returns a new slice header over the current events. Entries
// that will be mutated must be replaced by a Clone first.
func (s *EventService) copyEvents() []domain.Event {
	next := make([]domain.Event, len(s.events))
	copy(next, s.events)
	return next
}

func (s *EventService) indexOf(id int64) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *EventService) filter(keep func(domain.Event, time.Time) bool) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	result := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		if keep(e, now) {
			result = append(result, e.Clone())
		}
	}
	return result
}

func (s *EventService) filterByStart(keep func(domain.Event, time.Time) bool) []domain.Event {
	result := s.filter(keep)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartsAt.Before(result[j].StartsAt)
	})
	return result
}

func normalizeParticipants(event domain.Event) domain.Event {
	event = event.Clone()
	participants := make([]domain.User, 0, len(event.Participants))
	for _, p := range event.Participants {
		p = p.Normalized()
		if p.IsZero() || containsUser(participants, p) {
			continue
		}
		participants = append(participants, p)
	}
	event.Participants = participants
	return event
}

func containsUser(users []domain.User, user domain.User) bool {
	for _, u := range users {
		if u.Equal(user) {
			return true
		}
	}
	return false
}
