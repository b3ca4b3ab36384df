package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyRequestStatusPending is the status of every new property request.
const PropertyRequestStatusPending = "pending"

// PropertyRequest asks for listing information to be emailed to the caller.
type PropertyRequest struct {
	ID                   uuid.UUID `json:"id"`
	CallID               string    `json:"call_id"`
	Email                string    `json:"email"`
	PropertyType         string    `json:"property_type"`
	Location             string    `json:"location"`
	BudgetRange          string    `json:"budget_range"`
	SpecificRequirements string    `json:"specific_requirements"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}
