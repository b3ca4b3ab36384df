package models

// Metrics is the summary computed over persisted call records.
type Metrics struct {
	TotalCalls     int            `json:"total_calls"`
	HotLeadCount   int            `json:"hot_leads_count"`
	AverageScore   float64        `json:"average_lead_score"`
	ConversionRate float64        `json:"conversion_rate"`
	ByUrgency      map[string]int `json:"by_urgency"`
	ByRole         map[string]int `json:"by_role"`
}
