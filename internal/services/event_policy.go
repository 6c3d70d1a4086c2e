package services

import (
	"gatherly/internal/helpers"
	"gatherly/internal/models"
)

// EventPolicy decides who may mutate an event. The 403s it produces never
// disclose creator or requester identifiers.
type EventPolicy struct{}

func (EventPolicy) CanUpdate(identity helpers.Identity, event *models.Event) bool {
	return event.IsCreator(identity.ID)
}

func (EventPolicy) CanDelete(identity helpers.Identity, event *models.Event) bool {
	return event.IsCreator(identity.ID)
}
