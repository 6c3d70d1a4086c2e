package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Storage-level signals for the participation state machine. The service
// layer translates these into domain rule violations.
var (
	ErrEventGone     = errors.New("event no longer joinable")
	ErrAlreadyJoined = errors.New("participation already exists")
	ErrNotJoined     = errors.New("participation does not exist")
)

type EventsRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context, filters EventFilters, offset, limit int) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, changes map[string]interface{}) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	ListParticipants(ctx context.Context, eventID primitive.ObjectID) ([]*Participation, error)
	IsParticipant(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) (bool, error)
	AddParticipant(ctx context.Context, p *Participation) error
	RemoveParticipant(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) error
	EnsureEventIndexes(ctx context.Context) error
}

func (mdb *MongodbRepo) EnsureEventIndexes(ctx context.Context) error {
	events, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_date", Value: 1}},
			Options: options.Index().SetName("start_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("status_start_date_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating event indexes: %v", err)
	}

	participations, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = participations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// One row per (event, user) pair, enforced by the store itself.
		{
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("event_user_unique"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("event_id_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating participation indexes: %v", err)
	}
	return nil
}

// CreateEvent writes the event together with the creator's participation row
// in one transaction; an event never exists without its creator attached.
func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	events, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	participations, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	creator := &Participation{
		EventID:  event.ID,
		UserID:   event.CreatorID,
		UserName: event.CreatorName,
	}
	if err := creator.BeforeCreate(); err != nil {
		return nil, err
	}

	_, err = mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := events.InsertOne(sc, event); err != nil {
			return nil, fmt.Errorf("error inserting event: %v", err)
		}
		if _, err := participations.InsertOne(sc, creator); err != nil {
			return nil, fmt.Errorf("error inserting creator participation: %v", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	event.Participants = []*Participation{creator}
	event.RefreshDerived()
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event: %v", err)
	}

	event.Participants, err = mdb.ListParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	event.RefreshDerived()
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, filters EventFilters, offset, limit int) ([]*Event, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}
	if filters.EventType != "" {
		filter["event_type"] = filters.EventType
	}
	// start_date is stored as YYYY-MM-DD, so lexicographic range bounds are
	// date range bounds.
	dateRange := bson.M{}
	if filters.StartDate != "" {
		dateRange["$gte"] = filters.StartDate
	}
	if filters.EndDate != "" {
		dateRange["$lte"] = filters.EndDate
	}
	if len(dateRange) > 0 {
		filter["start_date"] = dateRange
	}
	if filters.IsPaid != nil {
		filter["is_paid"] = *filters.IsPaid
	}
	if filters.City != "" {
		filter["city"] = primitive.Regex{Pattern: regexp.QuoteMeta(filters.City), Options: "i"}
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("error decoding events: %v", err)
	}
	for _, e := range events {
		e.RefreshDerived()
	}

	return events, int(total), nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, changes map[string]interface{}) error {
	col, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{}
	for key, value := range changes {
		set[key] = value
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating event: %v", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteEvent removes the event and cascades its participation rows in one
// transaction.
func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	events, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	participations, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := events.DeleteOne(sc, bson.M{"_id": id}); err != nil {
			return nil, fmt.Errorf("error deleting event: %v", err)
		}
		if _, err := participations.DeleteMany(sc, bson.M{"event_id": id}); err != nil {
			return nil, fmt.Errorf("error deleting participations: %v", err)
		}
		return nil, nil
	})
	return err
}

func (mdb *MongodbRepo) ListParticipants(ctx context.Context, eventID primitive.ObjectID) ([]*Participation, error) {
	col, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding participants: %v", err)
	}
	defer cursor.Close(ctx)

	var participants []*Participation
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("error decoding participants: %v", err)
	}
	return participants, nil
}

func (mdb *MongodbRepo) IsParticipant(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) (bool, error) {
	col, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("error counting participation: %v", err)
	}
	return count > 0, nil
}

// AddParticipant performs the join mutation: the participation insert and the
// counter increment run in one transaction, and the increment re-validates
// the capacity ceiling inside that transaction. Two racing joins at the
// boundary cannot both pass; the loser gets ErrEventGone.
func (mdb *MongodbRepo) AddParticipant(ctx context.Context, p *Participation) error {
	events, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	participations, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if err := p.BeforeCreate(); err != nil {
		return err
	}

	_, err = mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		guard := bson.M{
			"_id":    p.EventID,
			"status": StatusPublished,
			"$expr": bson.M{"$or": bson.A{
				bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$max_participants", nil}}, nil}},
				bson.M{"$lt": bson.A{"$current_participants", "$max_participants"}},
			}},
		}
		res, err := events.UpdateOne(sc, guard, bson.M{
			"$inc": bson.M{"current_participants": 1},
			"$set": bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			return nil, fmt.Errorf("error incrementing participants: %v", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrEventGone
		}

		if _, err := participations.InsertOne(sc, p); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrAlreadyJoined
			}
			return nil, fmt.Errorf("error inserting participation: %v", err)
		}
		return nil, nil
	})
	return err
}

// RemoveParticipant is the symmetric leave mutation: row delete plus counter
// decrement in one transaction.
func (mdb *MongodbRepo) RemoveParticipant(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) error {
	events, err := mdb.GetCollection(ctx, DBName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	participations, err := mdb.GetCollection(ctx, DBName, ParticipationColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := participations.DeleteOne(sc, bson.M{"event_id": eventID, "user_id": userID})
		if err != nil {
			return nil, fmt.Errorf("error deleting participation: %v", err)
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotJoined
		}

		_, err = events.UpdateOne(sc, bson.M{"_id": eventID}, bson.M{
			"$inc": bson.M{"current_participants": -1},
			"$set": bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			return nil, fmt.Errorf("error decrementing participants: %v", err)
		}
		return nil, nil
	})
	return err
}
