package store

import "ticketdesk/internal/models"

// transitionMap lists the statuses a ticket may move to from each status.
// Closed has no outgoing edge: no field of a closed ticket may change.
var transitionMap = map[string][]string{
	models.StatusNew:        {models.StatusNew, models.StatusInProgress, models.StatusDispatched, models.StatusClosed, models.StatusCancelled},
	models.StatusInProgress: {models.StatusNew, models.StatusInProgress, models.StatusDispatched, models.StatusClosed, models.StatusCancelled},
	models.StatusDispatched: {models.StatusNew, models.StatusInProgress, models.StatusDispatched, models.StatusClosed, models.StatusCancelled},
	models.StatusCancelled:  {models.StatusNew, models.StatusInProgress, models.StatusDispatched, models.StatusClosed, models.StatusCancelled},
	models.StatusClosed:     {},
}

func ValidTransition(fromStatus, toStatus string) bool {
	allowed, ok := transitionMap[fromStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == toStatus {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	_, ok := transitionMap[status]
	return ok
}
