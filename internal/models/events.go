package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
)

type EventType string

const (
	TypePhysical EventType = "physical"
	TypeVirtual  EventType = "virtual"
	TypeHybrid   EventType = "hybrid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Event struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// BASIC INFO
	Title       string `bson:"title" json:"title" validate:"required,max=255"`
	Category    string `bson:"category" json:"category" validate:"required,max=255"`
	Description string `bson:"description" json:"description" validate:"required"`

	// SCHEDULE
	StartDate string `bson:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime string `bson:"start_time" json:"start_time" validate:"required,datetime=15:04"` // 24h wall clock
	EndTime   string `bson:"end_time" json:"end_time" validate:"required,datetime=15:04"`
	Timezone  string `bson:"timezone" json:"timezone" validate:"required,timezone"` // IANA name

	// LOCATION
	EventType   EventType `bson:"event_type" json:"event_type" validate:"required,oneof=physical virtual hybrid"`
	MeetingLink string    `bson:"meeting_link,omitempty" json:"meeting_link,omitempty" validate:"omitempty,url"`
	VenueName   string    `bson:"venue_name,omitempty" json:"venue_name,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode  string    `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Latitude    *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	HideAddress bool      `bson:"hide_address" json:"hide_address"`

	// DETAILS
	MaxParticipants *int     `bson:"max_participants,omitempty" json:"max_participants,omitempty" validate:"omitempty,min=1"`
	MinAge          *int     `bson:"min_age,omitempty" json:"min_age,omitempty" validate:"omitempty,min=0"`
	IsPaid          bool     `bson:"is_paid" json:"is_paid"`
	Price           *float64 `bson:"price,omitempty" json:"price,omitempty" validate:"omitempty,min=0"`
	Currency        string   `bson:"currency,omitempty" json:"currency,omitempty" validate:"omitempty,len=3"`
	Rules           []string `bson:"rules,omitempty" json:"rules,omitempty"`
	Notes           string   `bson:"notes,omitempty" json:"notes,omitempty"`

	// METADATA
	CreatorID           uuid.UUID   `bson:"creator_id" json:"creator_id"`
	CreatorName         string      `bson:"creator_name,omitempty" json:"creator_name,omitempty"`
	Status              EventStatus `bson:"status" json:"status" validate:"required,oneof=draft published"`
	CurrentParticipants int         `bson:"current_participants" json:"current_participants"`
	CreatedAt           time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `bson:"updated_at" json:"updated_at"`

	// Derived fields, populated before a response is written.
	IsFull       bool             `bson:"-" json:"is_full"`
	Participants []*Participation `bson:"-" json:"participants,omitempty"`
}

// Full reports whether the event has reached its participant cap. Events
// without max_participants are never full.
func (e *Event) Full() bool {
	if e.MaxParticipants == nil {
		return false
	}
	return e.CurrentParticipants >= *e.MaxParticipants
}

func (e *Event) RefreshDerived() {
	e.IsFull = e.Full()
}

// StartsAt combines start_date and start_time into an instant interpreted in
// the event's own timezone.
func (e *Event) StartsAt() (time.Time, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event timezone %q: %v", e.Timezone, err)
	}
	d, err := time.Parse(DateLayout, e.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event start_date %q: %v", e.StartDate, err)
	}
	t, err := time.Parse(TimeLayout, e.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event start_time %q: %v", e.StartTime, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// IsPastAt reports whether the event start lies before the given moment.
// The comparison happens on the event's own local clock: the start is built
// as a wall-clock instant in the event timezone and "now" is moved into that
// same zone before comparing.
func (e *Event) IsPastAt(now time.Time) (bool, error) {
	start, err := e.StartsAt()
	if err != nil {
		return false, err
	}
	return start.Before(now.In(start.Location())), nil
}

func (e *Event) IsCreator(userID uuid.UUID) bool {
	return e.CreatorID == userID
}

// EventUpdate is a partial update payload. Only non-nil fields are applied;
// conditional requirements between fields fall back to the stored event where
// the request leaves them implicit.
type EventUpdate struct {
	Title           *string      `json:"title"`
	Category        *string      `json:"category"`
	Description     *string      `json:"description"`
	StartDate       *string      `json:"start_date"`
	StartTime       *string      `json:"start_time"`
	EndTime         *string      `json:"end_time"`
	Timezone        *string      `json:"timezone"`
	EventType       *EventType   `json:"event_type"`
	MeetingLink     *string      `json:"meeting_link"`
	VenueName       *string      `json:"venue_name"`
	Address         *string      `json:"address"`
	City            *string      `json:"city"`
	PostalCode      *string      `json:"postal_code"`
	Latitude        *float64     `json:"latitude"`
	Longitude       *float64     `json:"longitude"`
	HideAddress     *bool        `json:"hide_address"`
	MaxParticipants *int         `json:"max_participants"`
	MinAge          *int         `json:"min_age"`
	IsPaid          *bool        `json:"is_paid"`
	Price           *float64     `json:"price"`
	Currency        *string      `json:"currency"`
	Rules           *[]string    `json:"rules"`
	Notes           *string      `json:"notes"`
	Status          *EventStatus `json:"status"`
}

// EventFilters are the canonical listing filters. Handlers normalize the
// snake_case and camelCase query spellings into this one struct so the query
// logic exists only once.
type EventFilters struct {
	Status    string
	Category  string
	EventType string
	StartDate string // inclusive lower bound on start_date
	EndDate   string // inclusive upper bound on start_date
	IsPaid    *bool
	City      string // case-insensitive substring
}
