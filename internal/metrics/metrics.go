package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"realflow/internal/models"
)

// Write outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Recorder holds the service counters. A nil *Recorder discards everything,
// so components can be built without metrics in tests.
type Recorder struct {
	webhookEvents *prometheus.CounterVec
	toolCalls     *prometheus.CounterVec
	sinkWrites    *prometheus.CounterVec
	hotLeads      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realflow_webhook_events_total",
			Help: "Webhook events received by vendor and message type",
		}, []string{"vendor", "type"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realflow_tool_calls_total",
			Help: "Tool calls processed by intent and outcome",
		}, []string{"intent", "outcome"}),
		sinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realflow_sink_writes_total",
			Help: "Sink append attempts by sink, record kind and outcome",
		}, []string{"sink", "kind", "outcome"}),
		hotLeads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realflow_hot_leads_total",
			Help: "Hot leads raised by source and reason",
		}, []string{"source", "reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realflow_hot_lead_notifications_total",
			Help: "Hot-lead email notifications by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.webhookEvents, r.toolCalls, r.sinkWrites, r.hotLeads, r.notifications)
	return r
}

// WebhookEvent counts one inbound event.
func (r *Recorder) WebhookEvent(vendor, messageType string) {
	if r == nil {
		return
	}
	r.webhookEvents.WithLabelValues(vendor, messageType).Inc()
}

// ToolCall counts one processed tool call.
func (r *Recorder) ToolCall(intent, outcome string) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(intent, outcome).Inc()
}

// SinkWrite counts one sink append attempt.
func (r *Recorder) SinkWrite(sink, kind, outcome string) {
	if r == nil {
		return
	}
	r.sinkWrites.WithLabelValues(sink, kind, outcome).Inc()
}

// HotLead counts one hot-lead record.
func (r *Recorder) HotLead(source, reason string) {
	if r == nil {
		return
	}
	r.hotLeads.WithLabelValues(source, reason).Inc()
}

// Notification counts one hot-lead email attempt.
func (r *Recorder) Notification(outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome).Inc()
}

var (
	callsDesc = prometheus.NewDesc(
		"realflow_calls",
		"Persisted call records",
		nil, nil,
	)
	hotCallsDesc = prometheus.NewDesc(
		"realflow_hot_calls",
		"Persisted call records classified as hot leads",
		nil, nil,
	)
	avgScoreDesc = prometheus.NewDesc(
		"realflow_average_lead_score",
		"Average lead score over persisted calls",
		nil, nil,
	)
	urgencyDesc = prometheus.NewDesc(
		"realflow_calls_by_urgency",
		"Persisted call records by urgency",
		[]string{"urgency"}, nil,
	)
)

// StatsSource provides aggregate call metrics.
type StatsSource interface {
	Metrics(ctx context.Context) (models.Metrics, error)
}

// CallCollector is a custom Prometheus collector that reads call aggregates
// from the relational sink on each scrape.
type CallCollector struct {
	source  StatsSource
	timeout time.Duration
}

// NewCallCollector creates a collector backed by source.
func NewCallCollector(source StatsSource) *CallCollector {
	return &CallCollector{source: source, timeout: 5 * time.Second}
}

// Describe sends the metric descriptors to the channel.
func (c *CallCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- callsDesc
	ch <- hotCallsDesc
	ch <- avgScoreDesc
	ch <- urgencyDesc
}

// Collect queries the source and emits the aggregates as gauges.
func (c *CallCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	m, err := c.source.Metrics(ctx)
	if err != nil {
		slog.Error("failed to collect call metrics", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(callsDesc, prometheus.GaugeValue, float64(m.TotalCalls))
	ch <- prometheus.MustNewConstMetric(hotCallsDesc, prometheus.GaugeValue, float64(m.HotLeadCount))
	ch <- prometheus.MustNewConstMetric(avgScoreDesc, prometheus.GaugeValue, m.AverageScore)
	for urgency, n := range m.ByUrgency {
		ch <- prometheus.MustNewConstMetric(urgencyDesc, prometheus.GaugeValue, float64(n), urgency)
	}
}
