package models

import "time"

// ToolResult is one entry of the acknowledgment returned for a tool-calls
// event. Result holds the JSON-encoded handler outcome.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// ToolOutcome is the structured result reported back to the voice agent.
type ToolOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AnalyticsResponse is served by GET /analytics.
type AnalyticsResponse struct {
	Metrics
	RecentCalls []CallRecord `json:"recent_calls"`
	Timestamp   time.Time    `json:"timestamp"`
}

// HotLeadsResponse is served by GET /hot-leads.
type HotLeadsResponse struct {
	Count    int          `json:"count"`
	HotLeads []CallRecord `json:"hot_leads"`
}

// CallsResponse is served by GET /calls.
type CallsResponse struct {
	Count  int          `json:"count"`
	Calls  []CallRecord `json:"calls"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// DashboardUser is the identity stored in the dashboard session after login.
type DashboardUser struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
