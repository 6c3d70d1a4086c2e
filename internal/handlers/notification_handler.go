package handlers

import (
	"net/http"

	"gatherly/internal/models"
	"gatherly/internal/services"

	"github.com/gin-gonic/gin"
)

func ListNotifications(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		page, perPage, ok := parsePagination(c)
		if !ok {
			return
		}

		offset := (page - 1) * perPage
		notifications, total, err := ns.List(c.Request.Context(), identity, offset, perPage)
		if err != nil {
			respondError(c, err, "Failed to list notifications")
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(notifications, page, perPage, total))
	}
}

func MarkNotificationRead(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		id, ok := parseObjectID(c, "Notification not found")
		if !ok {
			return
		}

		notification, err := ns.MarkRead(c.Request.Context(), identity, id)
		if err != nil {
			respondError(c, err, "Failed to mark notification as read")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(notification, "Notification marked as read"))
	}
}

func MarkAllNotificationsRead(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}

		count, err := ns.MarkAllRead(c.Request.Context(), identity)
		if err != nil {
			respondError(c, err, "Failed to mark notifications as read")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"updated": count}, "All notifications marked as read"))
	}
}
