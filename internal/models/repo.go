package models

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DBName               = "gatherly"
	EventsColName        = "events"
	ParticipationColName = "participations"
	NotificationsColName = "notifications"

	ProfileTable = "profiles"
)

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// GetAuthenticatedClient returns a Supabase client acting under the given
// access token so row-level security applies to the requesting user.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

// withTransaction runs fn inside a single Mongo session transaction so the
// multi-document mutations of the participation state machine commit or roll
// back together.
func (mdb *MongodbRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return nil, fmt.Errorf("error starting session: %v", err)
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}
