// Package intake turns decoded webhook events into persisted call records.
// Each event moves through normalize, score, persist and acknowledge; sink
// failures are logged and surfaced as a degraded acknowledgment, never as an
// error.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"realflow/internal/metrics"
	"realflow/internal/models"
	"realflow/internal/scoring"
	"realflow/internal/sink"
	"realflow/internal/validation"
	"realflow/internal/webhook"
)

// Tool intents.
const (
	IntentCollectCallerInfo   = "collect_caller_information"
	IntentScheduleCallback    = "schedule_callback"
	IntentRequestPropertyInfo = "request_property_information"
	IntentFlagHotLead         = "flag_hot_lead"
	IntentUnknown             = "unknown"
)

// Acknowledgment messages.
const (
	StatusSuccess    = "success"
	MessageProcessed = "Processed successfully"
)

// Notifier alerts people about hot leads. It must not block.
type Notifier interface {
	Enabled() bool
	NotifyHotLead(ctx context.Context, lead models.HotLead, call *models.CallRecord)
}

// CallLookup reports whether a call has already been recorded.
type CallLookup interface {
	CallExists(ctx context.Context, callID string) (bool, error)
}

// Ack is the response body returned to the voice platform.
type Ack struct {
	Results  []models.ToolResult `json:"results,omitempty"`
	Status   string              `json:"status,omitempty"`
	Message  string              `json:"message,omitempty"`
	Degraded bool                `json:"degraded,omitempty"`
}

// Processor handles decoded webhook events.
type Processor struct {
	normalizer *validation.Normalizer
	dispatcher *sink.Dispatcher
	lookup     CallLookup
	notifier   Notifier
	metrics    *metrics.Recorder
	logger     *slog.Logger
	tools      map[string]string
	now        func() time.Time
	newID      func() uuid.UUID
}

// Option configures a Processor.
type Option func(*Processor)

// WithLookup enables duplicate detection for end-of-call reports.
func WithLookup(l CallLookup) Option {
	return func(p *Processor) { p.lookup = l }
}

// WithNotifier sets the hot-lead notifier.
func WithNotifier(n Notifier) Option {
	return func(p *Processor) { p.notifier = n }
}

// WithMetrics records processing counters on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Processor) { p.metrics = rec }
}

// WithLogger sets the processor logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithToolAliases registers extra tool names per intent.
func WithToolAliases(aliases map[string][]string) Option {
	return func(p *Processor) {
		for intent, names := range aliases {
			for _, name := range names {
				p.tools[validation.NormalizeToolName(name)] = intent
			}
		}
	}
}

// NewProcessor creates a Processor writing through d.
func NewProcessor(n *validation.Normalizer, d *sink.Dispatcher, opts ...Option) *Processor {
	p := &Processor{
		normalizer: n,
		dispatcher: d,
		logger:     slog.Default(),
		tools:      map[string]string{},
		now:        time.Now,
		newID:      uuid.New,
	}
	for _, intent := range []string{IntentCollectCallerInfo, IntentScheduleCallback, IntentRequestPropertyInfo, IntentFlagHotLead} {
		p.tools[validation.NormalizeToolName(intent)] = intent
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Intent resolves a tool name to its intent. Matching ignores case and
// separators, so scheduleCallback and schedule_callback are the same tool.
func (p *Processor) Intent(toolName string) string {
	if intent, ok := p.tools[validation.NormalizeToolName(toolName)]; ok {
		return intent
	}
	return IntentUnknown
}

// Process handles one event and returns the acknowledgment.
func (p *Processor) Process(ctx context.Context, ev *webhook.Event) *Ack {
	p.metrics.WebhookEvent(ev.Vendor, ev.Type)

	callID := ev.CallID
	if callID == "" || callID == "unknown" {
		callID = p.newID().String()
		p.logger.Info("call id missing, generated one", "call_id", callID, "type", ev.Type)
	}

	switch ev.Type {
	case webhook.TypeToolCalls:
		if len(ev.ToolCalls) == 0 {
			break
		}
		ack := &Ack{Results: make([]models.ToolResult, 0, len(ev.ToolCalls))}
		for _, tc := range ev.ToolCalls {
			outcome, degraded := p.handleTool(ctx, callID, tc, ev.Raw)
			if degraded {
				ack.Degraded = true
			}
			ack.Results = append(ack.Results, models.ToolResult{
				ToolCallID: tc.ID,
				Result:     encodeOutcome(outcome),
			})
		}
		return ack

	case webhook.TypeEndOfCallReport:
		if ev.Report != nil {
			degraded := p.handleReport(ctx, callID, ev.Report, ev.Raw)
			return &Ack{Status: StatusSuccess, Message: MessageProcessed, Degraded: degraded}
		}
		p.logger.Info("end-of-call report without structured data", "call_id", callID)

	default:
		p.logger.Debug("ignoring message type", "type", ev.Type, "call_id", callID)
	}

	return &Ack{Status: StatusSuccess, Message: MessageProcessed}
}

func (p *Processor) handleTool(ctx context.Context, callID string, tc webhook.ToolCall, raw []byte) (models.ToolOutcome, bool) {
	intent := p.Intent(tc.Name)
	logger := p.logger.With("call_id", callID, "tool", tc.Name, "intent", intent)

	if tc.ArgumentsErr != nil {
		logger.Warn("tool arguments could not be parsed", "error", tc.ArgumentsErr)
		p.metrics.ToolCall(intent, metrics.OutcomeError)
		return models.ToolOutcome{Success: false, Message: fmt.Sprintf("Invalid arguments for %s", tc.Name)}, false
	}

	var (
		outcome models.ToolOutcome
		report  sink.Report
	)

	switch intent {
	case IntentCollectCallerInfo:
		call := p.normalizer.Normalize(callID, tc.Arguments)
		degraded, ok := p.recordCall(ctx, call, raw)
		p.metrics.ToolCall(intent, okOutcome(ok))
		return models.ToolOutcome{Success: true, Message: "Caller info processed successfully"}, degraded

	case IntentScheduleCallback:
		cb := p.normalizer.Callback(callID, tc.Arguments)
		cb.ID = p.newID()
		cb.CreatedAt = p.now().UTC()
		report = p.dispatcher.AppendCallback(ctx, cb)
		outcome = models.ToolOutcome{Success: true, Message: fmt.Sprintf("Callback scheduled for %s %s", cb.PreferredDate, cb.PreferredTime)}

	case IntentRequestPropertyInfo:
		req := p.normalizer.PropertyRequest(callID, tc.Arguments)
		req.ID = p.newID()
		req.CreatedAt = p.now().UTC()
		report = p.dispatcher.AppendPropertyRequest(ctx, req)
		outcome = models.ToolOutcome{Success: true, Message: fmt.Sprintf("Property information will be sent to %s", req.Email)}

	case IntentFlagHotLead:
		lead := p.normalizer.HotLeadFlag(callID, tc.Arguments)
		degraded, ok := p.raiseHotLead(ctx, lead, nil)
		p.metrics.ToolCall(intent, okOutcome(ok))
		return models.ToolOutcome{Success: true, Message: "Lead flagged as urgent and will receive priority attention"}, degraded

	default:
		logger.Warn("unrecognized tool")
		p.metrics.ToolCall(intent, metrics.OutcomeSkipped)
		return models.ToolOutcome{Success: false, Message: fmt.Sprintf("Unrecognized function: %s", tc.Name)}, false
	}

	p.metrics.ToolCall(intent, okOutcome(report.OK()))
	return outcome, report.PrimaryFailed()
}

func (p *Processor) handleReport(ctx context.Context, callID string, report *webhook.CallReport, raw []byte) bool {
	if p.lookup != nil {
		exists, err := p.lookup.CallExists(ctx, callID)
		if err != nil {
			p.logger.Warn("duplicate check failed, recording report anyway", "call_id", callID, "error", err)
		} else if exists {
			p.logger.Info("call already recorded, skipping end-of-call report", "call_id", callID)
			return false
		}
	}

	args := maps.Clone(report.StructuredData)
	if args == nil {
		args = map[string]any{}
	}
	if report.Summary != "" && p.normalizer.Lookup(args, validation.FieldInquirySummary) == "" {
		args[validation.FieldInquirySummary] = report.Summary
	}

	degraded, _ := p.recordCall(ctx, p.normalizer.Normalize(callID, args), raw)
	return degraded
}

// recordCall scores and persists call, plus a scored hot-lead row when the
// call is hot. It reports whether the primary sink failed and whether any
// sink accepted the call.
func (p *Processor) recordCall(ctx context.Context, call models.CallRecord, raw []byte) (degraded, ok bool) {
	call.ID = p.newID()
	call.CreatedAt = p.now().UTC()
	call.RawPayload = raw

	res := scoring.Apply(&call)
	if err := res.Check(); err != nil {
		p.logger.Error("scoring invariant violated", "call_id", call.CallID, "error", err)
	}

	report := p.dispatcher.AppendCall(ctx, call)
	degraded = report.PrimaryFailed()
	ok = report.OK()

	p.logger.Info("call recorded",
		"call_id", call.CallID,
		"lead_score", call.LeadScore,
		"is_hot_lead", call.IsHotLead,
		"reason", call.HotLeadReason,
		"degraded", degraded,
	)

	if call.IsHotLead {
		lead := models.HotLead{
			CallID:        call.CallID,
			CallerName:    call.CallerName,
			CallerPhone:   call.CallerPhone,
			UrgencyReason: call.HotLeadReason,
			DealValue:     call.DealSize,
			Source:        models.HotLeadSourceScored,
		}
		leadDegraded, _ := p.raiseHotLead(ctx, lead, &call)
		degraded = degraded || leadDegraded
	}

	return degraded, ok
}

func (p *Processor) raiseHotLead(ctx context.Context, lead models.HotLead, call *models.CallRecord) (degraded, ok bool) {
	if lead.ID == uuid.Nil {
		lead.ID = p.newID()
	}
	now := p.now().UTC()
	lead.CreatedAt = now

	notify := p.notifier != nil && p.notifier.Enabled()
	if notify {
		lead.NotifiedAt = &now
	}

	report := p.dispatcher.AppendHotLead(ctx, lead)
	p.metrics.HotLead(lead.Source, lead.UrgencyReason)

	if notify {
		p.notifier.NotifyHotLead(ctx, lead, call)
	}

	return report.PrimaryFailed(), report.OK()
}

func encodeOutcome(o models.ToolOutcome) string {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"message":%q}`, err.Error())
	}
	return string(b)
}

func okOutcome(ok bool) string {
	if ok {
		return metrics.OutcomeSuccess
	}
	return metrics.OutcomeError
}
