package models

import (
	"time"

	"github.com/google/uuid"
)

// CallbackStatusScheduled is the status of every newly requested callback.
const CallbackStatusScheduled = "scheduled"

// Callback is a caller's request to be phoned back.
type Callback struct {
	ID            uuid.UUID `json:"id"`
	CallID        string    `json:"call_id"`
	CallerName    string    `json:"caller_name"`
	CallbackPhone string    `json:"callback_phone"`
	PreferredDate string    `json:"preferred_date"`
	PreferredTime string    `json:"preferred_time"`
	Timezone      string    `json:"timezone"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
