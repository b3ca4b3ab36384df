package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"realflow/internal/models"
	"realflow/internal/sink"
)

// InsertHotLead appends a hot-lead row.
func (d *DB) InsertHotLead(ctx context.Context, lead *models.HotLead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}

	query := `
		INSERT INTO hot_leads (id, call_id, caller_name, caller_phone, urgency_reason,
			deal_value, has_competition, source, notified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	return d.Pool.QueryRow(ctx, query,
		lead.ID,
		lead.CallID,
		lead.CallerName,
		lead.CallerPhone,
		lead.UrgencyReason,
		lead.DealValue,
		lead.HasCompetition,
		lead.Source,
		lead.NotifiedAt,
	).Scan(&lead.CreatedAt)
}

// AppendHotLead implements sink.Sink.
func (d *DB) AppendHotLead(ctx context.Context, lead models.HotLead) (string, error) {
	if err := d.InsertHotLead(ctx, &lead); err != nil {
		return "", sink.Wrap(SinkName, "insert hot lead", err)
	}
	return lead.ID.String(), nil
}

// InsertCallback appends a callback request.
func (d *DB) InsertCallback(ctx context.Context, cb *models.Callback) error {
	if cb.ID == uuid.Nil {
		cb.ID = uuid.New()
	}
	if cb.Status == "" {
		cb.Status = models.CallbackStatusScheduled
	}

	query := `
		INSERT INTO callbacks (id, call_id, caller_name, callback_phone, preferred_date,
			preferred_time, timezone, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	return d.Pool.QueryRow(ctx, query,
		cb.ID,
		cb.CallID,
		cb.CallerName,
		cb.CallbackPhone,
		cb.PreferredDate,
		cb.PreferredTime,
		cb.Timezone,
		cb.Reason,
		cb.Status,
	).Scan(&cb.CreatedAt)
}

// AppendCallback implements sink.Sink.
func (d *DB) AppendCallback(ctx context.Context, cb models.Callback) (string, error) {
	if err := d.InsertCallback(ctx, &cb); err != nil {
		return "", sink.Wrap(SinkName, "insert callback", err)
	}
	return cb.ID.String(), nil
}

// InsertPropertyRequest appends a property information request.
func (d *DB) InsertPropertyRequest(ctx context.Context, req *models.PropertyRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = models.PropertyRequestStatusPending
	}

	query := `
		INSERT INTO property_requests (id, call_id, email, property_type, location,
			budget_range, specific_requirements, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return d.Pool.QueryRow(ctx, query,
		req.ID,
		req.CallID,
		req.Email,
		req.PropertyType,
		req.Location,
		req.BudgetRange,
		req.SpecificRequirements,
		req.Status,
	).Scan(&req.CreatedAt)
}

// AppendPropertyRequest implements sink.Sink.
func (d *DB) AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) (string, error) {
	if err := d.InsertPropertyRequest(ctx, &req); err != nil {
		return "", sink.Wrap(SinkName, "insert property request", err)
	}
	return req.ID.String(), nil
}

// ListHotLeads returns the hot-lead rows for a call, oldest first.
func (d *DB) ListHotLeads(ctx context.Context, callID string) ([]models.HotLead, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, call_id, caller_name, caller_phone, urgency_reason, deal_value,
			has_competition, source, notified_at, created_at
		FROM hot_leads WHERE call_id = $1 ORDER BY created_at
	`, callID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HotLead, error) {
		var h models.HotLead
		err := row.Scan(&h.ID, &h.CallID, &h.CallerName, &h.CallerPhone, &h.UrgencyReason,
			&h.DealValue, &h.HasCompetition, &h.Source, &h.NotifiedAt, &h.CreatedAt)
		return h, err
	})
}

// ListCallbacks returns the callbacks requested during a call, oldest first.
func (d *DB) ListCallbacks(ctx context.Context, callID string) ([]models.Callback, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, call_id, caller_name, callback_phone, preferred_date, preferred_time,
			timezone, reason, status, created_at
		FROM callbacks WHERE call_id = $1 ORDER BY created_at
	`, callID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Callback, error) {
		var cb models.Callback
		err := row.Scan(&cb.ID, &cb.CallID, &cb.CallerName, &cb.CallbackPhone, &cb.PreferredDate,
			&cb.PreferredTime, &cb.Timezone, &cb.Reason, &cb.Status, &cb.CreatedAt)
		return cb, err
	})
}

// ListPropertyRequests returns the property requests made during a call, oldest first.
func (d *DB) ListPropertyRequests(ctx context.Context, callID string) ([]models.PropertyRequest, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, call_id, email, property_type, location, budget_range,
			specific_requirements, status, created_at
		FROM property_requests WHERE call_id = $1 ORDER BY created_at
	`, callID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PropertyRequest, error) {
		var pr models.PropertyRequest
		err := row.Scan(&pr.ID, &pr.CallID, &pr.Email, &pr.PropertyType, &pr.Location,
			&pr.BudgetRange, &pr.SpecificRequirements, &pr.Status, &pr.CreatedAt)
		return pr, err
	})
}
