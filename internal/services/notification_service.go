package services

import (
	"context"
	"fmt"

	"gatherly/internal/helpers"
	"gatherly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	notificationsRepo models.NotificationsRepo
}

func NewNotificationService(notificationsRepo models.NotificationsRepo) *NotificationService {
	return &NotificationService{
		notificationsRepo: notificationsRepo,
	}
}

func (ns *NotificationService) List(ctx context.Context, identity helpers.Identity, offset, limit int) ([]*models.Notification, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return ns.notificationsRepo.ListNotifications(ctx, identity.ID, offset, limit)
}

// MarkRead marks one of the caller's notifications as read. Notifications
// belonging to anyone else are indistinguishable from missing ones.
func (ns *NotificationService) MarkRead(ctx context.Context, identity helpers.Identity, id primitive.ObjectID) (*models.Notification, error) {
	notification, err := ns.notificationsRepo.MarkNotificationRead(ctx, id, identity.ID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, models.NotFound("notification")
	}
	return notification, nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, identity helpers.Identity) (int64, error) {
	return ns.notificationsRepo.MarkAllNotificationsRead(ctx, identity.ID)
}
