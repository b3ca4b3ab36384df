package sink

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"realflow/internal/metrics"
	"realflow/internal/models"
)

// DefaultTimeout bounds a single sink write.
const DefaultTimeout = 10 * time.Second

// Outcome is the result of one write to one sink.
type Outcome struct {
	Sink     string
	Primary  bool
	RecordID string
	Err      error
	Duration time.Duration
}

// Report collects the outcomes of one fan-out.
type Report struct {
	Kind     string
	Outcomes []Outcome
}

// PrimaryFailed reports whether the primary sink was configured and failed.
func (r Report) PrimaryFailed() bool {
	for _, o := range r.Outcomes {
		if o.Primary && o.Err != nil {
			return true
		}
	}
	return false
}

// OK reports whether at least one sink accepted the write.
func (r Report) OK() bool {
	for _, o := range r.Outcomes {
		if o.Err == nil {
			return true
		}
	}
	return false
}

// Dispatcher writes each record to every configured sink, primary first.
// A failing sink never prevents the remaining sinks from being written.
type Dispatcher struct {
	sinks   []Sink
	primary string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-sink write timeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// WithMetrics records write outcomes on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(disp *Dispatcher) {
		disp.metrics = rec
	}
}

// NewDispatcher orders sinks so the one named primary is written first.
// Nil sinks are ignored.
func NewDispatcher(primary string, sinks []Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		primary: primary,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if s.Name() == primary {
			d.sinks = append([]Sink{s}, d.sinks...)
		} else {
			d.sinks = append(d.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Names returns the configured sink names in write order.
func (d *Dispatcher) Names() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

// Primary returns the name of the primary sink.
func (d *Dispatcher) Primary() string {
	return d.primary
}

// AppendCall writes a call record to every sink.
func (d *Dispatcher) AppendCall(ctx context.Context, call models.CallRecord) Report {
	return d.fanOut(ctx, KindCall, func(ctx context.Context, s Sink) (string, error) {
		return s.AppendCall(ctx, call)
	})
}

// AppendHotLead writes a hot-lead record to every sink.
func (d *Dispatcher) AppendHotLead(ctx context.Context, lead models.HotLead) Report {
	return d.fanOut(ctx, KindHotLead, func(ctx context.Context, s Sink) (string, error) {
		return s.AppendHotLead(ctx, lead)
	})
}

// AppendCallback writes a callback request to every sink.
func (d *Dispatcher) AppendCallback(ctx context.Context, cb models.Callback) Report {
	return d.fanOut(ctx, KindCallback, func(ctx context.Context, s Sink) (string, error) {
		return s.AppendCallback(ctx, cb)
	})
}

// AppendPropertyRequest writes a property request to every sink.
func (d *Dispatcher) AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) Report {
	return d.fanOut(ctx, KindPropertyRequest, func(ctx context.Context, s Sink) (string, error) {
		return s.AppendPropertyRequest(ctx, req)
	})
}

// fanOut runs write against each sink in order. Writes are detached from the
// caller's cancellation so they complete even if the webhook client hangs up.
func (d *Dispatcher) fanOut(ctx context.Context, kind string, write func(context.Context, Sink) (string, error)) Report {
	base := context.WithoutCancel(ctx)
	report := Report{Kind: kind, Outcomes: make([]Outcome, 0, len(d.sinks))}

	for _, s := range d.sinks {
		wctx, cancel := context.WithTimeout(base, d.timeout)
		start := time.Now()
		id, err := write(wctx, s)
		cancel()

		o := Outcome{
			Sink:     s.Name(),
			Primary:  s.Name() == d.primary,
			RecordID: id,
			Err:      asStorageError(s.Name(), kind, err),
			Duration: time.Since(start),
		}
		report.Outcomes = append(report.Outcomes, o)

		switch {
		case o.Err == nil:
			d.metrics.SinkWrite(o.Sink, kind, metrics.OutcomeSuccess)
			d.logger.Debug("sink write succeeded", "sink", o.Sink, "kind", kind, "record_id", id, "duration", o.Duration)
		case o.Primary:
			d.metrics.SinkWrite(o.Sink, kind, metrics.OutcomeError)
			d.logger.Error("primary sink write failed", "sink", o.Sink, "kind", kind, "error", o.Err)
		default:
			d.metrics.SinkWrite(o.Sink, kind, metrics.OutcomeError)
			d.logger.Warn("sink write failed", "sink", o.Sink, "kind", kind, "error", o.Err)
		}
	}

	return report
}

func asStorageError(sink, kind string, err error) error {
	var se *StorageError
	if err == nil || errors.As(err, &se) {
		return err
	}
	return &StorageError{Sink: sink, Op: "append " + kind, Err: err}
}
