package container

import (
	"context"
	"log/slog"

	"gatherly/internal/models"
	"gatherly/internal/services"

	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	MongoRepo *models.MongodbRepo

	UserService         *services.UserService
	EventService        *services.EventService
	NotificationService *services.NotificationService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	supaUrl, supaKey string,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	userService := services.NewUserService(supa)
	eventService := services.NewEventService(mongoRepo, mongoRepo)
	notificationService := services.NewNotificationService(mongoRepo)

	return &Container{
		Logger:              logger,
		SupabaseClient:      supabaseClient,
		MongoDBClient:       mongoDBClient,
		MongoRepo:           mongoRepo,
		UserService:         userService,
		EventService:        eventService,
		NotificationService: notificationService,
	}
}

// EnsureIndexes creates the Mongo indexes the repositories rely on, notably
// the unique (event_id, user_id) pair behind the participation state machine.
func (c *Container) EnsureIndexes(ctx context.Context) error {
	if err := c.MongoRepo.EnsureEventIndexes(ctx); err != nil {
		return err
	}
	return c.MongoRepo.EnsureNotificationIndexes(ctx)
}
