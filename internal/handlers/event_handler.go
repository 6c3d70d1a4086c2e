package handlers

import (
	"net/http"
	"strings"

	"gatherly/internal/models"
	"gatherly/internal/services"

	"github.com/gin-gonic/gin"
)

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}

		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid request body"))
			return
		}

		created, err := es.Create(c.Request.Context(), identity, &event)
		if err != nil {
			respondError(c, err, "Failed to create event")
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, ok := parsePagination(c)
		if !ok {
			return
		}

		filters := models.EventFilters{
			Status:    c.Query("status"),
			Category:  c.Query("category"),
			EventType: firstQuery(c, "event_type", "eventType"),
			StartDate: firstQuery(c, "start_date", "startDate"),
			EndDate:   firstQuery(c, "end_date", "endDate"),
			City:      c.Query("city"),
		}
		if raw := firstQuery(c, "is_paid", "isPaid"); raw != "" {
			paid := truthy(raw)
			filters.IsPaid = &paid
		}

		offset := (page - 1) * perPage
		events, total, err := es.List(c.Request.Context(), filters, offset, perPage)
		if err != nil {
			respondError(c, err, "Failed to list events")
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(events, page, perPage, total))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "Event not found")
		if !ok {
			return
		}

		event, err := es.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Failed to fetch event")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		id, ok := parseObjectID(c, "Event not found")
		if !ok {
			return
		}

		var upd models.EventUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid request body"))
			return
		}

		updated, err := es.Update(c.Request.Context(), identity, id, &upd)
		if err != nil {
			respondError(c, err, "Failed to update event")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		id, ok := parseObjectID(c, "Event not found")
		if !ok {
			return
		}

		participantIds, err := es.Delete(c.Request.Context(), identity, id)
		if err != nil {
			respondError(c, err, "Failed to delete event")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"participant_ids":   participantIds,
			"participant_count": len(participantIds),
		}, "Event deleted successfully"))
	}
}

func JoinEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		id, ok := parseObjectID(c, "Event not found")
		if !ok {
			return
		}

		event, err := es.Join(c.Request.Context(), identity, id)
		if err != nil {
			respondError(c, err, "Failed to join event")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, "Successfully joined the event"))
	}
}

func LeaveEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		id, ok := parseObjectID(c, "Event not found")
		if !ok {
			return
		}

		event, err := es.Leave(c.Request.Context(), identity, id)
		if err != nil {
			respondError(c, err, "Failed to leave event")
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, "Successfully left the event"))
	}
}

// truthy mirrors permissive boolean query coercion: 1/true/on/yes (any case)
// are true, everything else is false.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
