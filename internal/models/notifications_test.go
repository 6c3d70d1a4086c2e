package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationPayloadConstructors(t *testing.T) {
	e := validEvent()
	e.ID = primitive.NewObjectID()
	actor := NotificationActor{ID: uuid.New(), Name: "Alice"}

	joined := ParticipantJoined(e, actor)
	assert.Equal(t, NoticeParticipantJoined, joined.Type)
	assert.Equal(t, e.ID.Hex(), joined.EventID)
	assert.Equal(t, e.Title, joined.EventTitle)
	assert.Equal(t, `Alice has joined the event "Board games night"`, joined.Message)
	assert.Equal(t, actor, *joined.Actor)

	left := ParticipantLeft(e, actor)
	assert.Equal(t, NoticeParticipantLeft, left.Type)
	assert.Equal(t, `Alice has left the event "Board games night"`, left.Message)

	invite := EventInvite(e, &actor)
	assert.Equal(t, NoticeEventInvite, invite.Type)
	assert.Equal(t, `You have been invited to the event "Board games night"`, invite.Message)
}

func TestNewNotification(t *testing.T) {
	e := validEvent()
	e.ID = primitive.NewObjectID()
	recipient := uuid.New()
	actor := NotificationActor{ID: uuid.New(), Name: "Bob"}

	n := NewNotification(recipient, ParticipantJoined(e, actor))
	assert.False(t, n.ID.IsZero())
	assert.Equal(t, recipient, n.RecipientID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.False(t, n.IsRead())

	now := time.Now()
	n.ReadAt = &now
	assert.True(t, n.IsRead())
}

func TestParticipationBeforeCreate(t *testing.T) {
	p := &Participation{
		EventID: primitive.NewObjectID(),
		UserID:  uuid.New(),
	}
	assert.NoError(t, p.BeforeCreate())
	assert.False(t, p.ID.IsZero())
	assert.False(t, p.JoinedAt.IsZero())

	id := p.ID
	joined := p.JoinedAt
	assert.NoError(t, p.BeforeCreate())
	assert.Equal(t, id, p.ID, "existing id is preserved")
	assert.Equal(t, joined, p.JoinedAt)
}
