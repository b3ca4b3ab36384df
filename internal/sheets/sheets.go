// Package sheets appends call records to a Google Sheets spreadsheet, one
// worksheet tab per record kind.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"realflow/internal/models"
	"realflow/internal/sink"
)

// SinkName identifies the spreadsheet sink.
const SinkName = "sheets"

const timestampLayout = "2006-01-02 15:04:05"

// valueInputOption stores cell values verbatim. Caller text must never be
// parsed as numbers or formulas.
const valueInputOption = "RAW"

// Tabs names the worksheet used for each record kind.
type Tabs struct {
	Calls            string
	HotLeads         string
	Callbacks        string
	PropertyRequests string
}

// DefaultTabs are used for any tab name left empty.
var DefaultTabs = Tabs{
	Calls:            "Calls",
	HotLeads:         "Hot Leads",
	Callbacks:        "Callbacks",
	PropertyRequests: "Property Requests",
}

// CallHeader is the column layout of the call tab.
var CallHeader = []string{
	"Timestamp", "Caller Name", "Phone", "Email", "Role", "Asset Type", "Location",
	"Deal Size", "Urgency", "Inquiry Summary", "Hot Lead", "Notes",
	"Call ID", "Sentiment", "Lead Score", "Hot Lead Reason",
}

// appender is the slice of the Sheets API the sink needs.
type appender interface {
	Append(ctx context.Context, spreadsheetID, writeRange string, row []any) (string, error)
}

// Sink writes records as spreadsheet rows.
type Sink struct {
	api           appender
	spreadsheetID string
	tabs          Tabs
	now           func() time.Time
}

// New authenticates with a service-account JSON key and returns a Sink for
// the given spreadsheet.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID string, tabs Tabs) (*Sink, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}

	svc, err := gsheets.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newSink(&serviceAppender{values: svc.Spreadsheets.Values}, spreadsheetID, tabs), nil
}

func newSink(api appender, spreadsheetID string, tabs Tabs) *Sink {
	if tabs.Calls == "" {
		tabs.Calls = DefaultTabs.Calls
	}
	if tabs.HotLeads == "" {
		tabs.HotLeads = DefaultTabs.HotLeads
	}
	if tabs.Callbacks == "" {
		tabs.Callbacks = DefaultTabs.Callbacks
	}
	if tabs.PropertyRequests == "" {
		tabs.PropertyRequests = DefaultTabs.PropertyRequests
	}
	return &Sink{api: api, spreadsheetID: spreadsheetID, tabs: tabs, now: time.Now}
}

// Name implements sink.Sink.
func (s *Sink) Name() string {
	return SinkName
}

// AppendCall implements sink.Sink. The record id is the A1 range written.
func (s *Sink) AppendCall(ctx context.Context, call models.CallRecord) (string, error) {
	return s.append(ctx, s.tabs.Calls, "append call row", CallRow(call, s.stamp(call.CreatedAt)))
}

// AppendHotLead implements sink.Sink.
func (s *Sink) AppendHotLead(ctx context.Context, lead models.HotLead) (string, error) {
	row := []any{
		s.stamp(lead.CreatedAt),
		lead.CallID,
		lead.CallerName,
		lead.CallerPhone,
		lead.UrgencyReason,
		lead.DealValue,
		yesNo(lead.HasCompetition),
		lead.Source,
	}
	return s.append(ctx, s.tabs.HotLeads, "append hot lead row", row)
}

// AppendCallback implements sink.Sink.
func (s *Sink) AppendCallback(ctx context.Context, cb models.Callback) (string, error) {
	row := []any{
		s.stamp(cb.CreatedAt),
		cb.CallID,
		cb.CallerName,
		cb.CallbackPhone,
		cb.PreferredDate,
		cb.PreferredTime,
		cb.Timezone,
		cb.Reason,
		cb.Status,
	}
	return s.append(ctx, s.tabs.Callbacks, "append callback row", row)
}

// AppendPropertyRequest implements sink.Sink.
func (s *Sink) AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) (string, error) {
	row := []any{
		s.stamp(req.CreatedAt),
		req.CallID,
		req.Email,
		req.PropertyType,
		req.Location,
		req.BudgetRange,
		req.SpecificRequirements,
		req.Status,
	}
	return s.append(ctx, s.tabs.PropertyRequests, "append property request row", row)
}

func (s *Sink) append(ctx context.Context, tab, op string, row []any) (string, error) {
	updated, err := s.api.Append(ctx, s.spreadsheetID, quoteTab(tab)+"!A1", row)
	if err != nil {
		return "", sink.Wrap(SinkName, op, err)
	}
	return updated, nil
}

func (s *Sink) stamp(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.Format(timestampLayout)
}

// CallRow lays a call record out in CallHeader order.
func CallRow(call models.CallRecord, timestamp string) []any {
	notes := "Score: " + strconv.Itoa(call.LeadScore) + "/100"
	if call.AdditionalNotes != "" {
		notes += " | " + call.AdditionalNotes
	}
	return []any{
		timestamp,
		call.CallerName,
		call.CallerPhone,
		call.CallerEmail,
		call.Role,
		call.AssetType,
		call.Location,
		call.DealSize,
		call.Urgency,
		call.InquirySummary,
		yesNo(call.IsHotLead),
		notes,
		call.CallID,
		call.Sentiment,
		call.LeadScore,
		call.HotLeadReason,
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// quoteTab wraps a tab name in single quotes for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// serviceAppender adapts the generated Sheets client to appender.
type serviceAppender struct {
	values *gsheets.SpreadsheetsValuesService
}

func (a *serviceAppender) Append(ctx context.Context, spreadsheetID, writeRange string, row []any) (string, error) {
	resp, err := a.values.Append(spreadsheetID, writeRange, &gsheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return writeRange, nil
	}
	return resp.Updates.UpdatedRange, nil
}
