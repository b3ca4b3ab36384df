package intake

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"realflow/internal/models"
	"realflow/internal/scoring"
	"realflow/internal/sink"
	"realflow/internal/testutil"
	"realflow/internal/validation"
	"realflow/internal/webhook"
)

type recordingSink struct {
	name     string
	err      error
	calls    []models.CallRecord
	hotLeads []models.HotLead
	cbs      []models.Callback
	reqs     []models.PropertyRequest
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) AppendCall(ctx context.Context, call models.CallRecord) (string, error) {
	s.calls = append(s.calls, call)
	return call.CallID, s.err
}

func (s *recordingSink) AppendHotLead(ctx context.Context, lead models.HotLead) (string, error) {
	s.hotLeads = append(s.hotLeads, lead)
	return lead.ID.String(), s.err
}

func (s *recordingSink) AppendCallback(ctx context.Context, cb models.Callback) (string, error) {
	s.cbs = append(s.cbs, cb)
	return cb.ID.String(), s.err
}

func (s *recordingSink) AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) (string, error) {
	s.reqs = append(s.reqs, req)
	return req.ID.String(), s.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	enabled bool
	leads   []models.HotLead
	calls   []*models.CallRecord
}

func (n *fakeNotifier) Enabled() bool { return n.enabled }

func (n *fakeNotifier) NotifyHotLead(ctx context.Context, lead models.HotLead, call *models.CallRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead)
	n.calls = append(n.calls, call)
}

type fakeLookup struct {
	exists bool
	err    error
	asked  []string
}

func (l *fakeLookup) CallExists(ctx context.Context, callID string) (bool, error) {
	l.asked = append(l.asked, callID)
	return l.exists, l.err
}

type fixture struct {
	primary   *recordingSink
	secondary *recordingSink
	notifier  *fakeNotifier
	proc      *Processor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		primary:   &recordingSink{name: "sheets"},
		secondary: &recordingSink{name: "postgres"},
		notifier:  &fakeNotifier{enabled: true},
	}
	d := sink.NewDispatcher("sheets", []sink.Sink{f.secondary, f.primary}, sink.WithLogger(testutil.Logger()))
	opts = append([]Option{WithLogger(testutil.Logger()), WithNotifier(f.notifier)}, opts...)
	f.proc = NewProcessor(validation.NewNormalizer(nil), d, opts...)
	f.proc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func decodeOutcome(t *testing.T, r models.ToolResult) models.ToolOutcome {
	t.Helper()
	var o models.ToolOutcome
	if err := json.Unmarshal([]byte(r.Result), &o); err != nil {
		t.Fatalf("result %q is not JSON: %v", r.Result, err)
	}
	return o
}

func toolEvent(callID string, calls ...webhook.ToolCall) *webhook.Event {
	return &webhook.Event{
		Vendor:    webhook.VendorVapi,
		Type:      webhook.TypeToolCalls,
		CallID:    callID,
		ToolCalls: calls,
		Raw:       []byte(`{"raw":true}`),
	}
}

func TestIntent(t *testing.T) {
	f := newFixture(t, WithToolAliases(map[string][]string{IntentCollectCallerInfo: {"save_lead"}}))

	tests := []struct {
		name string
		want string
	}{
		{"collect_caller_information", IntentCollectCallerInfo},
		{"collectCallerInformation", IntentCollectCallerInfo},
		{"save-lead", IntentCollectCallerInfo},
		{"scheduleCallback", IntentScheduleCallback},
		{"request_property_information", IntentRequestPropertyInfo},
		{"flagHotLead", IntentFlagHotLead},
		{"transfer_call", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		if got := f.proc.Intent(tt.name); got != tt.want {
			t.Errorf("Intent(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestProcessCollectHotCall(t *testing.T) {
	f := newFixture(t)

	ack := f.proc.Process(context.Background(), toolEvent("call-1", webhook.ToolCall{
		ID:   "tc-1",
		Name: IntentCollectCallerInfo,
		Arguments: map[string]any{
			"name":        "Ana Ruiz",
			"email":       "ana@example.com",
			"role":        "investor",
			"asset_type":  "Multifamily",
			"deal_size":   "$12M",
			"timeline":    "immediate",
			"sentiment":   "very positive",
			"is_hot_lead": false,
		},
	}))

	if len(ack.Results) != 1 || ack.Results[0].ToolCallID != "tc-1" {
		t.Fatalf("Process() results = %+v", ack.Results)
	}
	if o := decodeOutcome(t, ack.Results[0]); !o.Success || o.Message != "Caller info processed successfully" {
		t.Errorf("outcome = %+v", o)
	}
	if ack.Degraded {
		t.Error("Process() degraded = true, want false")
	}

	for _, s := range []*recordingSink{f.primary, f.secondary} {
		if len(s.calls) != 1 {
			t.Fatalf("%s received %d calls, want 1", s.name, len(s.calls))
		}
	}
	call := f.primary.calls[0]
	if call.ID == uuid.Nil || call.ID != f.secondary.calls[0].ID {
		t.Errorf("call ids differ across sinks: %v vs %v", call.ID, f.secondary.calls[0].ID)
	}
	if call.LeadScore != 100 || !call.IsHotLead || call.HotLeadReason != scoring.ReasonHighValueDeal {
		t.Errorf("scored call = score %d hot %v reason %q", call.LeadScore, call.IsHotLead, call.HotLeadReason)
	}
	if string(call.RawPayload) != `{"raw":true}` {
		t.Errorf("RawPayload = %s", call.RawPayload)
	}

	if len(f.primary.hotLeads) != 1 {
		t.Fatalf("hot leads = %d, want 1", len(f.primary.hotLeads))
	}
	lead := f.primary.hotLeads[0]
	if lead.Source != models.HotLeadSourceScored || lead.DealValue != "$12M" || lead.NotifiedAt == nil {
		t.Errorf("hot lead = %+v", lead)
	}
	if len(f.notifier.leads) != 1 || f.notifier.calls[0] == nil {
		t.Errorf("notifier got %d leads", len(f.notifier.leads))
	}
}

func TestProcessCollectColdCall(t *testing.T) {
	f := newFixture(t)

	f.proc.Process(context.Background(), toolEvent("call-2", webhook.ToolCall{
		ID:        "tc-1",
		Name:      "collectCallerInformation",
		Arguments: map[string]any{"caller_role": "tourist", "sentiment": "negative", "urgency": "someday"},
	}))

	call := f.primary.calls[0]
	if call.LeadScore != 17 || call.IsHotLead {
		t.Errorf("cold call = score %d hot %v", call.LeadScore, call.IsHotLead)
	}
	if len(f.primary.hotLeads) != 0 || len(f.notifier.leads) != 0 {
		t.Error("cold call must not raise a hot lead")
	}
}

func TestProcessFollowUps(t *testing.T) {
	f := newFixture(t)

	ack := f.proc.Process(context.Background(), toolEvent("call-3",
		webhook.ToolCall{ID: "a", Name: "schedule_callback", Arguments: map[string]any{"preferred_date": "2026-03-02", "preferred_time": "10:00"}},
		webhook.ToolCall{ID: "b", Name: "requestPropertyInformation", Arguments: map[string]any{"email": "bo@example.com", "property_type": "office"}},
		webhook.ToolCall{ID: "c", Name: "flag_hot_lead", Arguments: map[string]any{"caller_name": "Bo", "has_competition": "yes"}},
		webhook.ToolCall{ID: "d", Name: "transfer_call"},
	))

	if len(ack.Results) != 4 {
		t.Fatalf("results = %d, want 4", len(ack.Results))
	}

	want := []models.ToolOutcome{
		{Success: true, Message: "Callback scheduled for 2026-03-02 10:00"},
		{Success: true, Message: "Property information will be sent to bo@example.com"},
		{Success: true, Message: "Lead flagged as urgent and will receive priority attention"},
		{Success: false, Message: "Unrecognized function: transfer_call"},
	}
	for i, w := range want {
		if got := decodeOutcome(t, ack.Results[i]); got != w {
			t.Errorf("result[%d] = %+v, want %+v", i, got, w)
		}
	}

	if len(f.primary.cbs) != 1 || f.primary.cbs[0].CallID != "call-3" || f.primary.cbs[0].Status != models.CallbackStatusScheduled {
		t.Errorf("callbacks = %+v", f.primary.cbs)
	}
	if len(f.primary.reqs) != 1 || f.primary.reqs[0].PropertyType != "office" {
		t.Errorf("property requests = %+v", f.primary.reqs)
	}
	if len(f.primary.hotLeads) != 1 || f.primary.hotLeads[0].Source != models.HotLeadSourceManual || !f.primary.hotLeads[0].HasCompetition {
		t.Errorf("manual hot lead = %+v", f.primary.hotLeads)
	}
	if len(f.primary.calls) != 0 {
		t.Error("flag_hot_lead must not write a call record")
	}
	if f.notifier.calls[0] != nil {
		t.Error("manual flag notifies without a call record")
	}
}

func TestProcessPrimaryFailureIsDegraded(t *testing.T) {
	f := newFixture(t)
	f.primary.err = errors.New("quota exceeded")

	ack := f.proc.Process(context.Background(), toolEvent("call-4", webhook.ToolCall{ID: "a", Name: IntentCollectCallerInfo}))

	if !ack.Degraded {
		t.Error("Process() degraded = false, want true")
	}
	if len(f.secondary.calls) != 1 {
		t.Error("secondary sink must still be written")
	}
	if o := decodeOutcome(t, ack.Results[0]); !o.Success {
		t.Errorf("outcome = %+v, want success", o)
	}
}

func TestProcessSecondaryFailureNotDegraded(t *testing.T) {
	f := newFixture(t)
	f.secondary.err = errors.New("connection refused")

	ack := f.proc.Process(context.Background(), toolEvent("call-5", webhook.ToolCall{ID: "a", Name: IntentCollectCallerInfo}))

	if ack.Degraded {
		t.Error("Process() degraded = true for a secondary failure")
	}
}

func TestProcessGeneratesCallID(t *testing.T) {
	for _, id := range []string{"", "unknown"} {
		f := newFixture(t)
		f.proc.Process(context.Background(), toolEvent(id,
			webhook.ToolCall{ID: "a", Name: IntentCollectCallerInfo},
			webhook.ToolCall{ID: "b", Name: IntentScheduleCallback},
		))

		got := f.primary.calls[0].CallID
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("generated call id %q is not a uuid", got)
		}
		if f.primary.cbs[0].CallID != got {
			t.Errorf("tool calls in one event must share the call id: %q vs %q", f.primary.cbs[0].CallID, got)
		}
	}
}

func TestProcessEndOfCallReport(t *testing.T) {
	lookup := &fakeLookup{}
	f := newFixture(t, WithLookup(lookup))

	ack := f.proc.Process(context.Background(), &webhook.Event{
		Vendor: webhook.VendorVapi,
		Type:   webhook.TypeEndOfCallReport,
		CallID: "call-6",
		Report: &webhook.CallReport{
			StructuredData: map[string]any{"caller_role": "buyer"},
			Summary:        "Looking for a warehouse",
		},
	})

	if ack.Status != StatusSuccess || ack.Message != MessageProcessed {
		t.Errorf("ack = %+v", ack)
	}
	if len(lookup.asked) != 1 || lookup.asked[0] != "call-6" {
		t.Errorf("lookup asked = %v", lookup.asked)
	}
	if len(f.primary.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(f.primary.calls))
	}
	if got := f.primary.calls[0].InquirySummary; got != "Looking for a warehouse" {
		t.Errorf("InquirySummary = %q", got)
	}
}

func TestProcessEndOfCallReportKeepsOwnSummary(t *testing.T) {
	f := newFixture(t)
	data := map[string]any{"inquiry_summary": "own"}

	f.proc.Process(context.Background(), &webhook.Event{
		Type:   webhook.TypeEndOfCallReport,
		CallID: "call-7",
		Report: &webhook.CallReport{StructuredData: data, Summary: "platform"},
	})

	if got := f.primary.calls[0].InquirySummary; got != "own" {
		t.Errorf("InquirySummary = %q, want own", got)
	}
	if len(data) != 1 {
		t.Error("structured data must not be mutated")
	}
}

func TestProcessEndOfCallReportDuplicate(t *testing.T) {
	f := newFixture(t, WithLookup(&fakeLookup{exists: true}))

	f.proc.Process(context.Background(), &webhook.Event{
		Type:   webhook.TypeEndOfCallReport,
		CallID: "call-8",
		Report: &webhook.CallReport{StructuredData: map[string]any{"caller_role": "buyer"}},
	})

	if len(f.primary.calls) != 0 {
		t.Error("an already recorded call must not be written twice")
	}
}

func TestProcessEndOfCallReportLookupError(t *testing.T) {
	f := newFixture(t, WithLookup(&fakeLookup{err: errors.New("db down")}))

	f.proc.Process(context.Background(), &webhook.Event{
		Type:   webhook.TypeEndOfCallReport,
		CallID: "call-9",
		Report: &webhook.CallReport{StructuredData: map[string]any{"caller_role": "buyer"}},
	})

	if len(f.primary.calls) != 1 {
		t.Error("a failed duplicate check must not drop the report")
	}
}

func TestProcessOtherEvents(t *testing.T) {
	f := newFixture(t)

	events := []*webhook.Event{
		{Type: "status-update", CallID: "x"},
		{Type: webhook.TypeEndOfCallReport, CallID: "x"},
		{Type: webhook.TypeToolCalls, CallID: "x"},
	}
	for _, ev := range events {
		ack := f.proc.Process(context.Background(), ev)
		if ack.Status != StatusSuccess || ack.Message != MessageProcessed || ack.Results != nil {
			t.Errorf("Process(%s) = %+v", ev.Type, ack)
		}
	}
	if len(f.primary.calls) != 0 {
		t.Error("non-tool events must not write calls")
	}
}

func TestProcessNotifierDisabled(t *testing.T) {
	f := newFixture(t)
	f.notifier.enabled = false

	f.proc.Process(context.Background(), toolEvent("call-10", webhook.ToolCall{
		ID: "a", Name: IntentCollectCallerInfo, Arguments: map[string]any{"urgency": "immediate"},
	}))

	if len(f.primary.hotLeads) != 1 {
		t.Fatalf("hot leads = %d, want 1", len(f.primary.hotLeads))
	}
	if f.primary.hotLeads[0].NotifiedAt != nil {
		t.Error("NotifiedAt must stay nil when no notification is sent")
	}
	if len(f.notifier.leads) != 0 {
		t.Error("disabled notifier was called")
	}
}

func TestProcessBadArgumentsFailOnlyThatTool(t *testing.T) {
	f := newFixture(t)

	ack := f.proc.Process(context.Background(), toolEvent("call-9",
		webhook.ToolCall{
			ID:           "tc-1",
			Name:         "schedule_callback",
			Arguments:    map[string]any{},
			ArgumentsErr: &validation.ValidationError{Field: "arguments", Msg: "not valid JSON"},
		},
		webhook.ToolCall{
			ID:        "tc-2",
			Name:      IntentCollectCallerInfo,
			Arguments: map[string]any{"caller_name": "Ana"},
		},
	))

	if len(ack.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(ack.Results))
	}
	if o := decodeOutcome(t, ack.Results[0]); o.Success || o.Message != "Invalid arguments for schedule_callback" {
		t.Errorf("bad tool outcome = %+v", o)
	}
	if o := decodeOutcome(t, ack.Results[1]); !o.Success {
		t.Errorf("good tool outcome = %+v, want success", o)
	}
	if ack.Degraded {
		t.Error("argument errors must not mark the ack degraded")
	}
	if len(f.primary.cbs) != 0 {
		t.Errorf("callbacks = %d, want 0", len(f.primary.cbs))
	}
	if len(f.primary.calls) != 1 || f.primary.calls[0].CallerName != "Ana" {
		t.Errorf("calls = %+v, want the valid tool recorded", f.primary.calls)
	}
}
