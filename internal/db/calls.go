package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"realflow/internal/models"
	"realflow/internal/sink"
)

// callColumns is the standard column list for call queries.
const callColumns = `id, call_id, caller_name, caller_phone, caller_email, caller_role,
	asset_type, location, deal_size, urgency, sentiment, lead_score, is_hot_lead,
	hot_lead_reason, inquiry_summary, additional_notes, conversation_topics,
	questions_asked, raw_payload, created_at`

// scanCall scans a row into a CallRecord.
func scanCall(row pgx.Row) (*models.CallRecord, error) {
	var c models.CallRecord
	err := row.Scan(
		&c.ID,
		&c.CallID,
		&c.CallerName,
		&c.CallerPhone,
		&c.CallerEmail,
		&c.Role,
		&c.AssetType,
		&c.Location,
		&c.DealSize,
		&c.Urgency,
		&c.Sentiment,
		&c.LeadScore,
		&c.IsHotLead,
		&c.HotLeadReason,
		&c.InquirySummary,
		&c.AdditionalNotes,
		&c.ConversationTopics,
		&c.QuestionsAsked,
		&c.RawPayload,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanCalls scans multiple rows into a slice of CallRecords.
func scanCalls(rows pgx.Rows) ([]models.CallRecord, error) {
	defer rows.Close()

	calls := []models.CallRecord{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *c)
	}

	return calls, rows.Err()
}

// InsertCall stores a scored call record. Records are append-only: a second
// insert for the same call_id leaves the first untouched and returns
// ErrDuplicateCall.
func (d *DB) InsertCall(ctx context.Context, call *models.CallRecord) error {
	if call.ID == uuid.Nil {
		call.ID = uuid.New()
	}

	query := `
		INSERT INTO calls (id, call_id, caller_name, caller_phone, caller_email, caller_role,
			asset_type, location, deal_size, urgency, sentiment, lead_score, is_hot_lead,
			hot_lead_reason, inquiry_summary, additional_notes, conversation_topics,
			questions_asked, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (call_id) DO NOTHING
		RETURNING created_at
	`

	err := d.Pool.QueryRow(ctx, query,
		call.ID,
		call.CallID,
		call.CallerName,
		call.CallerPhone,
		call.CallerEmail,
		call.Role,
		call.AssetType,
		call.Location,
		call.DealSize,
		call.Urgency,
		call.Sentiment,
		call.LeadScore,
		call.IsHotLead,
		call.HotLeadReason,
		call.InquirySummary,
		call.AdditionalNotes,
		nonNil(call.ConversationTopics),
		nonNil(call.QuestionsAsked),
		jsonOrNull(call.RawPayload),
	).Scan(&call.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateCall
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCall
		}
		return err
	}
	return nil
}

// AppendCall implements sink.Sink.
func (d *DB) AppendCall(ctx context.Context, call models.CallRecord) (string, error) {
	if err := d.InsertCall(ctx, &call); err != nil {
		return "", sink.Wrap(SinkName, "insert call", err)
	}
	return call.ID.String(), nil
}

// GetCallByCallID returns the call recorded under an external call id.
func (d *DB) GetCallByCallID(ctx context.Context, callID string) (*models.CallRecord, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE call_id = $1`
	return scanCall(d.Pool.QueryRow(ctx, query, callID))
}

// CallExists reports whether a call record exists for callID.
func (d *DB) CallExists(ctx context.Context, callID string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM calls WHERE call_id = $1)`, callID).Scan(&exists)
	return exists, err
}

// ListCalls returns calls newest first.
func (d *DB) ListCalls(ctx context.Context, limit, offset int) ([]models.CallRecord, error) {
	query := `SELECT ` + callColumns + ` FROM calls ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := d.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

// ListHotCalls returns calls classified as hot leads, newest first.
func (d *DB) ListHotCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE is_hot_lead ORDER BY created_at DESC LIMIT $1`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

// AllCalls returns every persisted call, newest first.
func (d *DB) AllCalls(ctx context.Context) ([]models.CallRecord, error) {
	query := `SELECT ` + callColumns + ` FROM calls ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func jsonOrNull(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
