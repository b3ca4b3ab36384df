package models

import (
	"time"

	"github.com/google/uuid"
)

// Hot lead sources.
const (
	HotLeadSourceScored = "scored"
	HotLeadSourceManual = "manual"
)

// HotLead is an append-only record raised for a high-priority caller, either
// by the scoring engine or by the voice agent's flag_hot_lead tool.
type HotLead struct {
	ID             uuid.UUID  `json:"id"`
	CallID         string     `json:"call_id"`
	CallerName     string     `json:"caller_name"`
	CallerPhone    string     `json:"caller_phone"`
	UrgencyReason  string     `json:"urgency_reason"`
	DealValue      string     `json:"deal_value"`
	HasCompetition bool       `json:"has_competition"`
	Source         string     `json:"source"`
	NotifiedAt     *time.Time `json:"notified_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
