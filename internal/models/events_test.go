package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func validEvent() *Event {
	return &Event{
		Title:       "Board games night",
		Category:    "games",
		Description: "Bring your own games",
		StartDate:   "2030-06-15",
		StartTime:   "19:00",
		EndTime:     "22:00",
		Timezone:    "Europe/Paris",
		EventType:   TypePhysical,
		VenueName:   "Le Club",
		City:        "Paris",
		Status:      StatusPublished,
	}
}

func TestEvent_Full(t *testing.T) {
	e := validEvent()
	e.CurrentParticipants = 50

	assert.False(t, e.Full(), "event without a cap is never full")

	e.MaxParticipants = intPtr(50)
	assert.True(t, e.Full())

	e.MaxParticipants = intPtr(51)
	assert.False(t, e.Full())

	e.RefreshDerived()
	assert.False(t, e.IsFull)
}

func TestEvent_StartsAt(t *testing.T) {
	e := validEvent()

	start, err := e.StartsAt()
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Paris", start.Location().String())
	assert.Equal(t, 19, start.Hour())
	assert.Equal(t, time.June, start.Month())

	e.Timezone = "Not/AZone"
	_, err = e.StartsAt()
	assert.Error(t, err)
}

// The past check compares on the event's local clock. A 10:00 start in Paris
// is in the future at 09:00 Paris time and in the past at 11:00 Paris time,
// no matter what zone "now" arrives in.
func TestEvent_IsPastAt(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	assert.NoError(t, err)

	e := validEvent()
	e.StartDate = "2025-01-10"
	e.StartTime = "10:00"

	before := time.Date(2025, 1, 10, 9, 0, 0, 0, paris)
	past, err := e.IsPastAt(before)
	assert.NoError(t, err)
	assert.False(t, past)

	after := time.Date(2025, 1, 10, 11, 0, 0, 0, paris)
	past, err = e.IsPastAt(after)
	assert.NoError(t, err)
	assert.True(t, past)

	// Same instants expressed in UTC. Paris is UTC+1 in January, so
	// 09:30 UTC is 10:30 local and already past.
	utcAfter := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	past, err = e.IsPastAt(utcAfter)
	assert.NoError(t, err)
	assert.True(t, past)

	utcBefore := time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)
	past, err = e.IsPastAt(utcBefore)
	assert.NoError(t, err)
	assert.False(t, past)
}

func TestValidateStruct_ValidEvent(t *testing.T) {
	assert.NoError(t, ValidateStruct(validEvent()))
}

func TestValidateStruct_MissingRequiredFields(t *testing.T) {
	e := validEvent()
	e.Title = ""
	e.StartDate = ""

	err := ValidateStruct(e)
	assert.Error(t, err)

	ve, ok := err.(*ValidationError)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "start_date")
	assert.NotContains(t, ve.Fields, "description")
}

func TestValidateStruct_TimeFormats(t *testing.T) {
	e := validEvent()
	e.StartTime = "7pm"

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "start_time")
}

func TestValidateStruct_EndBeforeStart(t *testing.T) {
	e := validEvent()
	e.StartTime = "19:00"
	e.EndTime = "18:00"

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "end_time")
}

func TestValidateStruct_VirtualRequiresMeetingLink(t *testing.T) {
	e := validEvent()
	e.EventType = TypeVirtual
	e.VenueName = ""

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "meeting_link")

	e.MeetingLink = "https://meet.example.com/games"
	assert.NoError(t, ValidateStruct(e))
}

func TestValidateStruct_PhysicalRequiresVenue(t *testing.T) {
	e := validEvent()
	e.VenueName = ""

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "venue_name")
}

func TestValidateStruct_HybridRequiresBoth(t *testing.T) {
	e := validEvent()
	e.EventType = TypeHybrid
	e.VenueName = ""
	e.MeetingLink = ""

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "meeting_link")
	assert.Contains(t, ve.Fields, "venue_name")
}

func TestValidateStruct_PaidRequiresPricing(t *testing.T) {
	e := validEvent()
	e.IsPaid = true

	err := ValidateStruct(e)
	assert.Error(t, err)
	ve := err.(*ValidationError)
	assert.Contains(t, ve.Fields, "price")
	assert.Contains(t, ve.Fields, "currency")

	e.Price = floatPtr(12.50)
	e.Currency = "EUR"
	assert.NoError(t, ValidateStruct(e))
}

func TestValidationError_Check(t *testing.T) {
	ve := NewValidationError()
	ve.Check("max_participants", 0, "min=1")
	assert.False(t, ve.Empty())
	assert.Contains(t, ve.Fields, "max_participants")

	ve2 := NewValidationError()
	ve2.Check("max_participants", 5, "min=1")
	assert.True(t, ve2.Empty())
	assert.NoError(t, ve2.ErrIfAny())
}
