package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participation is the join relationship between a user and an event.
// The (event_id, user_id) pair is unique; the creator's row is written
// together with the event itself.
type Participation struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID  primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID   uuid.UUID          `bson:"user_id" json:"user_id"`
	UserName string             `bson:"user_name,omitempty" json:"user_name,omitempty"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

func (p *Participation) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	return nil
}
