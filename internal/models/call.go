package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead roles.
const (
	RoleBuyer          = "buyer"
	RoleSeller         = "seller"
	RoleInvestor       = "investor"
	RoleDeveloper      = "developer"
	RoleBroker         = "broker"
	RoleLender         = "lender"
	RoleOwner          = "owner"
	RoleOther          = "other"
	RoleGeneralInquiry = "general_inquiry"
)

// Urgency timelines.
const (
	UrgencyImmediate  = "immediate"
	UrgencyOneToThree = "1-3mo"
	UrgencyThreeToSix = "3-6mo"
	UrgencySixPlus    = "6+mo"
	UrgencyBrowsing   = "browsing"
)

// Caller sentiment.
const (
	SentimentVeryPositive = "very_positive"
	SentimentPositive     = "positive"
	SentimentNeutral      = "neutral"
	SentimentNegative     = "negative"
)

// AssetTypeOther is used when the caller did not name an asset type.
const AssetTypeOther = "other"

// CallRecord is a normalized and scored summary of one inbound call.
// LeadScore, IsHotLead and HotLeadReason are set once by the scoring engine
// and never recomputed.
type CallRecord struct {
	ID     uuid.UUID `json:"id"`
	CallID string    `json:"call_id"`

	CallerName  string `json:"caller_name"`
	CallerPhone string `json:"caller_phone"`
	CallerEmail string `json:"caller_email"`

	Role      string `json:"caller_role"`
	AssetType string `json:"asset_type"`
	Location  string `json:"location"`
	DealSize  string `json:"deal_size"`
	Urgency   string `json:"urgency"`
	Sentiment string `json:"sentiment"`

	LeadScore     int    `json:"lead_score"`
	IsHotLead     bool   `json:"is_hot_lead"`
	HotLeadReason string `json:"hot_lead_reason,omitempty"`

	InquirySummary     string   `json:"inquiry_summary"`
	AdditionalNotes    string   `json:"additional_notes"`
	ConversationTopics []string `json:"conversation_topics"`
	QuestionsAsked     []string `json:"questions_asked"`

	RawPayload []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
