package domain

import (
	"fmt"
	"strings"
	"time"
)

// OngoingWindow is how long an event counts as happening after it starts.
const OngoingWindow = time.Hour

const startLayout = "02/01/2006 15:04"

type EventStatus int

const (
	StatusUpcoming EventStatus = iota
	StatusOngoing
	StatusEnded
)

func (s EventStatus) Label() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusEnded:
		return "ended"
	default:
		return "upcoming"
	}
}

func (s EventStatus) String() string {
	return s.Label()
}

func (s EventStatus) MarshalText() ([]byte, error) {
	return []byte(s.Label()), nil
}

// StatusAt classifies an event starting at start as seen at now.
func StatusAt(start, now time.Time) EventStatus {
	switch {
	case isOngoing(start, now):
		return StatusOngoing
	case !now.Before(start):
		return StatusEnded
	default:
		return StatusUpcoming
	}
}

func isOngoing(start, now time.Time) bool {
	return !now.Before(start) && now.Before(start.Add(OngoingWindow))
}

type Event struct {
	ID           int64     `json:"id" validate:"-"`
	Name         string    `json:"name" validate:"notblank"`
	Address      string    `json:"address" validate:"notblank"`
	Category     Category  `json:"category" validate:"category"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	Description  string    `json:"description" validate:"notblank"`
	Participants []User    `json:"participants" validate:"-"`
}

// NewEvent builds an unsaved event. The id is assigned by EventService.Create.
func NewEvent(name, address string, category Category, startsAt time.Time, description string) Event {
	return Event{
		Name:         name,
		Address:      address,
		Category:     category,
		StartsAt:     startsAt,
		Description:  description,
		Participants: []User{},
	}
}

func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}

// HasEnded reports whether the event start is at or before now.
func (e Event) HasEnded(now time.Time) bool {
	return !now.Before(e.StartsAt)
}

func (e Event) IsOngoing(now time.Time) bool {
	return isOngoing(e.StartsAt, now)
}

func (e Event) Status(now time.Time) EventStatus {
	return StatusAt(e.StartsAt, now)
}

func (e Event) HasParticipant(user User) bool {
	for _, p := range e.Participants {
		if p.Equal(user) {
			return true
		}
	}
	return false
}

// AddParticipant appends user unless an equal user is already present.
func (e *Event) AddParticipant(user User) bool {
	if user.IsZero() || e.HasParticipant(user) {
		return false
	}
	e.Participants = append(e.Participants, user)
	return true
}

func (e *Event) RemoveParticipant(user User) bool {
	for i, p := range e.Participants {
		if p.Equal(user) {
			e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
			return true
		}
	}
	return false
}

func (e Event) ParticipantCount() int {
	return len(e.Participants)
}

// Clone returns a deep copy so callers never share the participant slice
// with the store.
func (e Event) Clone() Event {
	participants := make([]User, len(e.Participants))
	copy(participants, e.Participants)
	e.Participants = participants
	return e
}

func (e Event) FormattedStart() string {
	return e.StartsAt.Format(startLayout)
}

func (e Event) String() string {
	return fmt.Sprintf("Event{id=%d, name=%q, address=%q, category=%s, starts_at=%s, participants=%d}",
		e.ID, e.Name, e.Address, e.Category.Label(), e.FormattedStart(), e.ParticipantCount())
}

// Details renders the multi-line description shown for a single event.
func (e Event) Details(now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %d\n", e.ID)
	fmt.Fprintf(&sb, "Name: %s\n", e.Name)
	fmt.Fprintf(&sb, "Address: %s\n", e.Address)
	fmt.Fprintf(&sb, "Category: %s\n", e.Category.Label())
	fmt.Fprintf(&sb, "Starts at: %s\n", e.FormattedStart())
	fmt.Fprintf(&sb, "Description: %s\n", e.Description)
	fmt.Fprintf(&sb, "Status: %s\n", e.Status(now).Label())
	fmt.Fprintf(&sb, "Participants: %d", e.ParticipantCount())
	for i, p := range e.Participants {
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, p.Name, p.Email)
	}
	return sb.String()
}

// EventSnapshot is the persisted form of the event collection. NextID keeps
// ids from being reused after removals and restarts.
type EventSnapshot struct {
	NextID int64   `json:"next_id"`
	Events []Event `json:"events"`
}

type EventRepository interface {
	Load() (EventSnapshot, error)
	Save(snapshot EventSnapshot) error
}

type EventService interface {
	Create(event Event) (Event, error)
	Remove(id int64) error
	Update(event Event) error
	FindByID(id int64) (Event, bool)

	ListSortedByTime() []Event
	ListByCategory(category Category) []Event
	ListUpcoming() []Event
	ListPast() []Event
	ListOngoing() []Event
	SearchByName(fragment string) []Event

	AddParticipant(eventID int64, user User) error
	RemoveParticipant(eventID int64, user User) error
	ListForUser(user User) []Event
	PurgeParticipant(email string) (int, error)

	Stats() EventStats
	Count() int
	ClearAll() error
	Save() error
}
