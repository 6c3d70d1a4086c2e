package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/helpers"
	"gatherly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type EventService struct {
	eventsRepo        models.EventsRepo
	notificationsRepo models.NotificationsRepo
	policy            EventPolicy
}

func NewEventService(eventsRepo models.EventsRepo, notificationsRepo models.NotificationsRepo) *EventService {
	return &EventService{
		eventsRepo:        eventsRepo,
		notificationsRepo: notificationsRepo,
	}
}

// Create validates the full payload, stamps the caller as creator and writes
// the event with the creator already attached as its first participant.
func (es *EventService) Create(ctx context.Context, identity helpers.Identity, event *models.Event) (*models.Event, error) {
	if err := models.ValidateStruct(event); err != nil {
		return nil, err
	}

	now := time.Now()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatorID = identity.ID
	event.CreatorName = identity.Name
	event.CurrentParticipants = 1
	event.CreatedAt = now
	event.UpdatedAt = now

	return es.eventsRepo.CreateEvent(ctx, event)
}

// Get returns a single published event. Drafts stay invisible to readers,
// including their own creator on this endpoint.
func (es *EventService) Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil || event.Status != models.StatusPublished {
		return nil, models.NotFound("event")
	}
	return event, nil
}

// List applies the canonical filters; unspecified status means published
// only, so drafts never leak into public listings.
func (es *EventService) List(ctx context.Context, filters models.EventFilters, offset, limit int) ([]*models.Event, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	if filters.Status == "" {
		filters.Status = string(models.StatusPublished)
	}
	return es.eventsRepo.ListEvents(ctx, filters, offset, limit)
}

// Update applies a partial update on behalf of the caller. Only supplied
// fields are validated and written; the cross-field requirements resolve
// against the request first and the stored event second.
func (es *EventService) Update(ctx context.Context, identity helpers.Identity, id primitive.ObjectID, upd *models.EventUpdate) (*models.Event, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NotFound("event")
	}
	if !es.policy.CanUpdate(identity, event) {
		return nil, models.Forbidden("You are not authorized to edit this event")
	}

	changes, err := buildEventChanges(event, upd)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return event, nil
	}

	changes["updated_at"] = time.Now()
	if err := es.eventsRepo.UpdateEvent(ctx, id, changes); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFound("event")
		}
		return nil, err
	}

	return es.eventsRepo.GetEventByID(ctx, id)
}

// buildEventChanges turns a partial payload into a storage change set,
// validating each supplied field and resolving the conditional requirements
// in one pass.
func buildEventChanges(event *models.Event, upd *models.EventUpdate) (map[string]interface{}, error) {
	ve := models.NewValidationError()
	changes := map[string]interface{}{}

	if upd.Title != nil {
		ve.Check("title", *upd.Title, "required,max=255")
		changes["title"] = *upd.Title
	}
	if upd.Category != nil {
		ve.Check("category", *upd.Category, "required,max=255")
		changes["category"] = *upd.Category
	}
	if upd.Description != nil {
		ve.Check("description", *upd.Description, "required")
		changes["description"] = *upd.Description
	}
	if upd.StartDate != nil {
		ve.Check("start_date", *upd.StartDate, "required,datetime=2006-01-02")
		changes["start_date"] = *upd.StartDate
	}
	if upd.StartTime != nil {
		ve.Check("start_time", *upd.StartTime, "required,datetime=15:04")
		changes["start_time"] = *upd.StartTime
	}
	if upd.EndTime != nil {
		ve.Check("end_time", *upd.EndTime, "required,datetime=15:04")
		// End must trail the start it will be stored next to: the incoming
		// start_time when supplied, the stored one otherwise.
		start := event.StartTime
		if upd.StartTime != nil {
			start = *upd.StartTime
		}
		if *upd.EndTime <= start {
			ve.Add("end_time", "The end time must be after the start time.")
		}
		changes["end_time"] = *upd.EndTime
	}
	if upd.Timezone != nil {
		ve.Check("timezone", *upd.Timezone, "required,timezone")
		changes["timezone"] = *upd.Timezone
	}

	if upd.EventType != nil {
		ve.Check("event_type", string(*upd.EventType), "required,oneof=physical virtual hybrid")
		changes["event_type"] = *upd.EventType

		// Type change drives the meeting_link requirement; switching to
		// physical clears any stale link.
		switch *upd.EventType {
		case models.TypeVirtual, models.TypeHybrid:
			if upd.MeetingLink == nil || *upd.MeetingLink == "" {
				ve.Add("meeting_link", "The meeting link field is required.")
			} else {
				ve.Check("meeting_link", *upd.MeetingLink, "url")
				changes["meeting_link"] = *upd.MeetingLink
			}
		case models.TypePhysical:
			changes["meeting_link"] = nil
		}
	} else if upd.MeetingLink != nil {
		// Link alone: requirement derives from the stored event type.
		if event.EventType == models.TypeVirtual || event.EventType == models.TypeHybrid {
			if *upd.MeetingLink == "" {
				ve.Add("meeting_link", "The meeting link field is required.")
			} else {
				ve.Check("meeting_link", *upd.MeetingLink, "url")
				changes["meeting_link"] = *upd.MeetingLink
			}
		} else {
			changes["meeting_link"] = nil
		}
	}

	if upd.VenueName != nil {
		effectiveType := event.EventType
		if upd.EventType != nil {
			effectiveType = *upd.EventType
		}
		if *upd.VenueName == "" && (effectiveType == models.TypePhysical || effectiveType == models.TypeHybrid) {
			ve.Add("venue_name", "The venue name field is required.")
		} else {
			changes["venue_name"] = *upd.VenueName
		}
	}

	if upd.Address != nil {
		changes["address"] = *upd.Address
	}
	if upd.City != nil {
		changes["city"] = *upd.City
	}
	if upd.PostalCode != nil {
		changes["postal_code"] = *upd.PostalCode
	}
	if upd.Latitude != nil {
		changes["latitude"] = *upd.Latitude
	}
	if upd.Longitude != nil {
		changes["longitude"] = *upd.Longitude
	}
	if upd.HideAddress != nil {
		changes["hide_address"] = *upd.HideAddress
	}
	if upd.MaxParticipants != nil {
		ve.Check("max_participants", *upd.MaxParticipants, "min=1")
		changes["max_participants"] = *upd.MaxParticipants
	}
	if upd.MinAge != nil {
		ve.Check("min_age", *upd.MinAge, "min=0")
		changes["min_age"] = *upd.MinAge
	}

	if upd.IsPaid != nil {
		changes["is_paid"] = *upd.IsPaid
		if *upd.IsPaid {
			if upd.Price == nil {
				ve.Add("price", "The price field is required.")
			} else {
				ve.Check("price", *upd.Price, "min=0")
				changes["price"] = *upd.Price
			}
			if upd.Currency == nil || *upd.Currency == "" {
				ve.Add("currency", "The currency field is required.")
			} else {
				ve.Check("currency", *upd.Currency, "len=3")
				changes["currency"] = *upd.Currency
			}
		} else {
			// Turning is_paid off always nulls the pricing fields.
			changes["price"] = nil
			changes["currency"] = nil
		}
	} else if upd.Price != nil || upd.Currency != nil {
		// Pricing alone: requirement derives from the stored is_paid flag.
		if event.IsPaid {
			if upd.Price == nil {
				ve.Add("price", "The price field is required.")
			} else {
				ve.Check("price", *upd.Price, "min=0")
				changes["price"] = *upd.Price
			}
			if upd.Currency == nil || *upd.Currency == "" {
				ve.Add("currency", "The currency field is required.")
			} else {
				ve.Check("currency", *upd.Currency, "len=3")
				changes["currency"] = *upd.Currency
			}
		} else {
			changes["price"] = nil
			changes["currency"] = nil
		}
	}

	if upd.Rules != nil {
		changes["rules"] = *upd.Rules
	}
	if upd.Notes != nil {
		changes["notes"] = *upd.Notes
	}
	if upd.Status != nil {
		// Touching status on an existing event publishes it; there is no way
		// back to draft through this endpoint.
		changes["status"] = models.StatusPublished
	}

	if err := ve.ErrIfAny(); err != nil {
		return nil, err
	}
	return changes, nil
}

// Delete removes an event on behalf of its creator and reports the ids of
// the other participants so the caller can run downstream cleanup. No
// notification is emitted here.
func (es *EventService) Delete(ctx context.Context, identity helpers.Identity, id primitive.ObjectID) ([]string, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NotFound("event")
	}
	if !es.policy.CanDelete(identity, event) {
		return nil, models.Forbidden("You are not authorized to delete this event")
	}

	participantIds := make([]string, 0, len(event.Participants))
	for _, p := range event.Participants {
		if p.UserID == event.CreatorID {
			continue
		}
		participantIds = append(participantIds, p.UserID.String())
	}

	if err := es.eventsRepo.DeleteEvent(ctx, id); err != nil {
		return nil, err
	}
	return participantIds, nil
}

// Join moves the (event, user) pair from NotJoined to Joined. Preconditions
// run in order and the first failure wins; capacity is re-validated inside
// the storage transaction so racing joins cannot overshoot the cap.
func (es *EventService) Join(ctx context.Context, identity helpers.Identity, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.NotFound("event")
	}
	if event.Status != models.StatusPublished {
		return nil, models.RuleViolation("Cannot join an unpublished event")
	}

	joined, err := es.eventsRepo.IsParticipant(ctx, id, identity.ID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, models.RuleViolation("You are already a participant in this event")
	}

	past, err := event.IsPastAt(time.Now())
	if err != nil {
		return nil, err
	}
	if past {
		return nil, models.RuleViolation("Cannot join a past event")
	}

	if event.Full() {
		return nil, models.RuleViolation("Event has reached maximum participants")
	}

	p := &models.Participation{
		EventID:  id,
		UserID:   identity.ID,
		UserName: identity.Name,
	}
	if err := es.eventsRepo.AddParticipant(ctx, p); err != nil {
		switch {
		case errors.Is(err, models.ErrEventGone):
			return nil, models.RuleViolation("Event has reached maximum participants")
		case errors.Is(err, models.ErrAlreadyJoined):
			return nil, models.RuleViolation("You are already a participant in this event")
		}
		return nil, err
	}

	if err := es.notifyParticipants(ctx, event, identity, models.ParticipantJoined(event, actorFor(identity))); err != nil {
		return nil, err
	}

	return es.eventsRepo.GetEventByID(ctx, id)
}

// Leave is the reverse transition, with its own precondition order.
func (es *EventService) Leave(ctx context.Context, identity helpers.Identity, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil || event.Status != models.StatusPublished {
		return nil, models.NotFound("event")
	}

	joined, err := es.eventsRepo.IsParticipant(ctx, id, identity.ID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, models.RuleViolation("You have not joined this event")
	}

	past, err := event.IsPastAt(time.Now())
	if err != nil {
		return nil, err
	}
	if past {
		return nil, models.RuleViolation("Cannot leave a past event")
	}

	if err := es.eventsRepo.RemoveParticipant(ctx, id, identity.ID); err != nil {
		if errors.Is(err, models.ErrNotJoined) {
			return nil, models.RuleViolation("You have not joined this event")
		}
		return nil, err
	}

	if err := es.notifyParticipants(ctx, event, identity, models.ParticipantLeft(event, actorFor(identity))); err != nil {
		return nil, err
	}

	return es.eventsRepo.GetEventByID(ctx, id)
}

// notifyParticipants fans the payload out to every current participant
// except the actor. The creator holds a participation row, so they are
// always among the recipients.
func (es *EventService) notifyParticipants(ctx context.Context, event *models.Event, actor helpers.Identity, payload models.NotificationPayload) error {
	participants, err := es.eventsRepo.ListParticipants(ctx, event.ID)
	if err != nil {
		return err
	}

	var notifications []*models.Notification
	for _, p := range participants {
		if p.UserID == actor.ID {
			continue
		}
		notifications = append(notifications, models.NewNotification(p.UserID, payload))
	}
	return es.notificationsRepo.InsertNotifications(ctx, notifications)
}

func actorFor(identity helpers.Identity) models.NotificationActor {
	return models.NotificationActor{ID: identity.ID, Name: identity.Name}
}
