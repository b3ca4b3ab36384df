// Package analytics computes summary metrics over persisted call records.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"realflow/internal/models"
)

// Aggregate summarizes calls. It is pure and returns zero metrics with empty
// maps for an empty input.
func Aggregate(calls []models.CallRecord) models.Metrics {
	m := models.Metrics{
		ByUrgency: map[string]int{},
		ByRole:    map[string]int{},
	}
	if len(calls) == 0 {
		return m
	}

	total := 0
	for _, c := range calls {
		m.TotalCalls++
		total += c.LeadScore
		if c.IsHotLead {
			m.HotLeadCount++
		}
		if c.Urgency != "" {
			m.ByUrgency[c.Urgency]++
		}
		if c.Role != "" {
			m.ByRole[c.Role]++
		}
	}

	m.AverageScore = round2(float64(total) / float64(m.TotalCalls))
	m.ConversionRate = round2(float64(m.HotLeadCount) / float64(m.TotalCalls))
	return m
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Default page sizes for the read endpoints.
const (
	RecentCalls     = 10
	DefaultHotLeads = 100
	DefaultLimit    = 50
	MaxLimit        = 200
)

// CallStore is the read model analytics queries.
type CallStore interface {
	AllCalls(ctx context.Context) ([]models.CallRecord, error)
	ListCalls(ctx context.Context, limit, offset int) ([]models.CallRecord, error)
	ListHotCalls(ctx context.Context, limit int) ([]models.CallRecord, error)
	GetCallByCallID(ctx context.Context, callID string) (*models.CallRecord, error)
}

// Service serves metrics and listings from a CallStore.
type Service struct {
	store CallStore
	now   func() time.Time
}

// NewService creates an analytics service.
func NewService(store CallStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Metrics recomputes metrics over every stored call.
func (s *Service) Metrics(ctx context.Context) (models.Metrics, error) {
	calls, err := s.store.AllCalls(ctx)
	if err != nil {
		return models.Metrics{}, fmt.Errorf("failed to load calls: %w", err)
	}
	return Aggregate(calls), nil
}

// Summary returns the metrics plus the most recent calls.
func (s *Service) Summary(ctx context.Context) (*models.AnalyticsResponse, error) {
	m, err := s.Metrics(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.ListCalls(ctx, RecentCalls, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent calls: %w", err)
	}

	return &models.AnalyticsResponse{
		Metrics:     m,
		RecentCalls: nonNil(recent),
		Timestamp:   s.now().UTC(),
	}, nil
}

// HotLeads lists hot calls, newest first.
func (s *Service) HotLeads(ctx context.Context) (*models.HotLeadsResponse, error) {
	calls, err := s.store.ListHotCalls(ctx, DefaultHotLeads)
	if err != nil {
		return nil, fmt.Errorf("failed to load hot leads: %w", err)
	}
	calls = nonNil(calls)
	return &models.HotLeadsResponse{Count: len(calls), HotLeads: calls}, nil
}

// Calls lists a page of calls, newest first. Out-of-range paging values are
// clamped.
func (s *Service) Calls(ctx context.Context, limit, offset int) (*models.CallsResponse, error) {
	limit, offset = ClampPage(limit, offset)
	calls, err := s.store.ListCalls(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load calls: %w", err)
	}
	calls = nonNil(calls)
	return &models.CallsResponse{Count: len(calls), Calls: calls, Limit: limit, Offset: offset}, nil
}

// Call returns the record stored under an external call id. Store errors,
// including not-found sentinels, are wrapped.
func (s *Service) Call(ctx context.Context, callID string) (*models.CallRecord, error) {
	call, err := s.store.GetCallByCallID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to load call %s: %w", callID, err)
	}
	return call, nil
}

// ClampPage bounds limit to 1..MaxLimit and offset to >= 0.
func ClampPage(limit, offset int) (int, int) {
	return min(max(limit, 1), MaxLimit), max(offset, 0)
}

func nonNil(calls []models.CallRecord) []models.CallRecord {
	if calls == nil {
		return []models.CallRecord{}
	}
	return calls
}
