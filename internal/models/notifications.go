package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NoticeParticipantJoined NotificationType = "participant_joined"
	NoticeParticipantLeft   NotificationType = "participant_left"
	NoticeEventInvite       NotificationType = "event_invite"
)

type NotificationActor struct {
	ID   uuid.UUID `bson:"id" json:"id"`
	Name string    `bson:"name" json:"name"`
}

// NotificationPayload is a tagged variant over the notification types. Use
// the constructors below; they set the tag and the message consistently so a
// payload never carries a message that disagrees with its type.
type NotificationPayload struct {
	EventID    string             `bson:"event_id" json:"event_id"`
	EventTitle string             `bson:"event_title" json:"event_title"`
	Type       NotificationType   `bson:"type" json:"type"`
	Message    string             `bson:"message" json:"message"`
	Actor      *NotificationActor `bson:"actor,omitempty" json:"actor"`
}

func ParticipantJoined(e *Event, actor NotificationActor) NotificationPayload {
	return NotificationPayload{
		EventID:    e.ID.Hex(),
		EventTitle: e.Title,
		Type:       NoticeParticipantJoined,
		Message:    fmt.Sprintf("%s has joined the event %q", actor.Name, e.Title),
		Actor:      &actor,
	}
}

func ParticipantLeft(e *Event, actor NotificationActor) NotificationPayload {
	return NotificationPayload{
		EventID:    e.ID.Hex(),
		EventTitle: e.Title,
		Type:       NoticeParticipantLeft,
		Message:    fmt.Sprintf("%s has left the event %q", actor.Name, e.Title),
		Actor:      &actor,
	}
}

// EventInvite is declared for parity with the stored payload schema; nothing
// emits it yet.
func EventInvite(e *Event, actor *NotificationActor) NotificationPayload {
	return NotificationPayload{
		EventID:    e.ID.Hex(),
		EventTitle: e.Title,
		Type:       NoticeEventInvite,
		Message:    fmt.Sprintf("You have been invited to the event %q", e.Title),
		Actor:      actor,
	}
}

type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID uuid.UUID           `bson:"recipient_id" json:"recipient_id"`
	Payload     NotificationPayload `bson:"payload" json:"payload"`
	ReadAt      *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

func NewNotification(recipient uuid.UUID, payload NotificationPayload) *Notification {
	return &Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipient,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
