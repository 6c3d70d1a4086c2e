package services

import (
	"context"
	"sort"
	"time"

	"gatherly/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeEventsRepo is an in-memory EventsRepo with the same transactional
// semantics as the Mongo implementation: AddParticipant re-checks status and
// capacity against current state and RemoveParticipant fails when the row is
// gone.
type fakeEventsRepo struct {
	events         map[primitive.ObjectID]*models.Event
	participations map[primitive.ObjectID]map[uuid.UUID]*models.Participation

	// forced error for the next AddParticipant call, to simulate a racing
	// writer winning between the service's read and the guarded insert
	addParticipantErr error
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{
		events:         map[primitive.ObjectID]*models.Event{},
		participations: map[primitive.ObjectID]map[uuid.UUID]*models.Participation{},
	}
}

func (f *fakeEventsRepo) CreateEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	stored := *event
	f.events[event.ID] = &stored

	creator := &models.Participation{
		EventID:  event.ID,
		UserID:   event.CreatorID,
		UserName: event.CreatorName,
	}
	_ = creator.BeforeCreate()
	f.participations[event.ID] = map[uuid.UUID]*models.Participation{event.CreatorID: creator}

	return f.GetEventByID(context.Background(), event.ID)
}

func (f *fakeEventsRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	stored, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.Participants, _ = f.ListParticipants(context.Background(), id)
	out.RefreshDerived()
	return &out, nil
}

func (f *fakeEventsRepo) ListEvents(_ context.Context, filters models.EventFilters, offset, limit int) ([]*models.Event, int, error) {
	var matched []*models.Event
	for id, e := range f.events {
		if filters.Status != "" && string(e.Status) != filters.Status {
			continue
		}
		if filters.Category != "" && e.Category != filters.Category {
			continue
		}
		out, _ := f.GetEventByID(context.Background(), id)
		matched = append(matched, out)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartDate < matched[j].StartDate })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeEventsRepo) UpdateEvent(_ context.Context, id primitive.ObjectID, changes map[string]interface{}) error {
	e, ok := f.events[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range changes {
		switch k {
		case "title":
			e.Title = v.(string)
		case "description":
			e.Description = v.(string)
		case "status":
			e.Status = v.(models.EventStatus)
		case "event_type":
			e.EventType = v.(models.EventType)
		case "meeting_link":
			if v == nil {
				e.MeetingLink = ""
			} else {
				e.MeetingLink = v.(string)
			}
		case "venue_name":
			e.VenueName = v.(string)
		case "is_paid":
			e.IsPaid = v.(bool)
		case "price":
			if v == nil {
				e.Price = nil
			} else {
				p := v.(float64)
				e.Price = &p
			}
		case "currency":
			if v == nil {
				e.Currency = ""
			} else {
				e.Currency = v.(string)
			}
		case "max_participants":
			n := v.(int)
			e.MaxParticipants = &n
		case "updated_at":
			e.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeEventsRepo) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	delete(f.events, id)
	delete(f.participations, id)
	return nil
}

func (f *fakeEventsRepo) ListParticipants(_ context.Context, eventID primitive.ObjectID) ([]*models.Participation, error) {
	var out []*models.Participation
	for _, p := range f.participations[eventID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (f *fakeEventsRepo) IsParticipant(_ context.Context, eventID primitive.ObjectID, userID uuid.UUID) (bool, error) {
	_, ok := f.participations[eventID][userID]
	return ok, nil
}

func (f *fakeEventsRepo) AddParticipant(_ context.Context, p *models.Participation) error {
	if f.addParticipantErr != nil {
		err := f.addParticipantErr
		f.addParticipantErr = nil
		return err
	}

	e, ok := f.events[p.EventID]
	if !ok || e.Status != models.StatusPublished || e.Full() {
		return models.ErrEventGone
	}
	if _, exists := f.participations[p.EventID][p.UserID]; exists {
		return models.ErrAlreadyJoined
	}

	_ = p.BeforeCreate()
	f.participations[p.EventID][p.UserID] = p
	e.CurrentParticipants++
	return nil
}

func (f *fakeEventsRepo) RemoveParticipant(_ context.Context, eventID primitive.ObjectID, userID uuid.UUID) error {
	if _, exists := f.participations[eventID][userID]; !exists {
		return models.ErrNotJoined
	}
	delete(f.participations[eventID], userID)
	if e, ok := f.events[eventID]; ok {
		e.CurrentParticipants--
	}
	return nil
}

func (f *fakeEventsRepo) EnsureEventIndexes(_ context.Context) error { return nil }

type fakeNotificationsRepo struct {
	notifications []*models.Notification
}

func (f *fakeNotificationsRepo) InsertNotifications(_ context.Context, notifications []*models.Notification) error {
	f.notifications = append(f.notifications, notifications...)
	return nil
}

func (f *fakeNotificationsRepo) ListNotifications(_ context.Context, recipient uuid.UUID, offset, limit int) ([]*models.Notification, int, error) {
	var mine []*models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipient {
			mine = append(mine, n)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (f *fakeNotificationsRepo) MarkNotificationRead(_ context.Context, id primitive.ObjectID, recipient uuid.UUID) (*models.Notification, error) {
	for _, n := range f.notifications {
		if n.ID == id && n.RecipientID == recipient {
			now := time.Now()
			n.ReadAt = &now
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationsRepo) MarkAllNotificationsRead(_ context.Context, recipient uuid.UUID) (int64, error) {
	var count int64
	now := time.Now()
	for _, n := range f.notifications {
		if n.RecipientID == recipient && n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationsRepo) EnsureNotificationIndexes(_ context.Context) error { return nil }

func (f *fakeNotificationsRepo) recipients() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(f.notifications))
	for _, n := range f.notifications {
		out = append(out, n.RecipientID)
	}
	return out
}
