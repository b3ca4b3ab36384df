package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"realflow/internal/models"
	"realflow/internal/sink"
)

func skipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	skipIfNoTestDB(t)

	connString := os.Getenv("TEST_DATABASE_URL")

	ctx := context.Background()
	database, err := New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	clean := func() {
		database.Pool.Exec(ctx, "DELETE FROM property_requests")
		database.Pool.Exec(ctx, "DELETE FROM callbacks")
		database.Pool.Exec(ctx, "DELETE FROM hot_leads")
		database.Pool.Exec(ctx, "DELETE FROM calls")
	}
	clean()

	return database, func() {
		clean()
		database.Close()
	}
}

func testCall(callID string, score int, hot bool) models.CallRecord {
	reason := ""
	if hot {
		reason = "urgent timeline"
	}
	return models.CallRecord{
		ID:                 uuid.New(),
		CallID:             callID,
		CallerName:         "Jane Doe",
		CallerPhone:        "+15551234567",
		CallerEmail:        "jane@example.com",
		Role:               models.RoleBuyer,
		AssetType:          "office",
		Location:           "Austin",
		DealSize:           "$2M",
		Urgency:            models.UrgencyImmediate,
		Sentiment:          models.SentimentPositive,
		LeadScore:          score,
		IsHotLead:          hot,
		HotLeadReason:      reason,
		ConversationTopics: []string{"financing"},
		RawPayload:         []byte(`{"message":{"type":"tool-calls"}}`),
	}
}

func TestInsertAndGetCall(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	call := testCall("call-1", 88, true)
	if err := db.InsertCall(ctx, &call); err != nil {
		t.Fatalf("InsertCall() error = %v", err)
	}
	if call.CreatedAt.IsZero() {
		t.Error("InsertCall() did not set CreatedAt")
	}

	got, err := db.GetCallByCallID(ctx, "call-1")
	if err != nil {
		t.Fatalf("GetCallByCallID() error = %v", err)
	}
	if got.ID != call.ID || got.LeadScore != 88 || !got.IsHotLead {
		t.Errorf("GetCallByCallID() = %+v", got)
	}
	if len(got.ConversationTopics) != 1 || got.QuestionsAsked == nil {
		t.Errorf("arrays = %v / %v", got.ConversationTopics, got.QuestionsAsked)
	}
	if len(got.RawPayload) == 0 {
		t.Error("RawPayload not stored")
	}
}

func TestInsertCallIsAppendOnly(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := testCall("dup", 40, false)
	if err := db.InsertCall(ctx, &first); err != nil {
		t.Fatalf("InsertCall() error = %v", err)
	}

	second := testCall("dup", 99, true)
	if err := db.InsertCall(ctx, &second); !errors.Is(err, ErrDuplicateCall) {
		t.Fatalf("second InsertCall() error = %v, want ErrDuplicateCall", err)
	}

	got, err := db.GetCallByCallID(ctx, "dup")
	if err != nil {
		t.Fatalf("GetCallByCallID() error = %v", err)
	}
	if got.LeadScore != 40 {
		t.Errorf("LeadScore = %d, want 40 (first write wins)", got.LeadScore)
	}

	_, err = db.AppendCall(ctx, testCall("dup", 10, false))
	var storageErr *sink.StorageError
	if !errors.As(err, &storageErr) || !errors.Is(err, ErrDuplicateCall) {
		t.Errorf("AppendCall() duplicate error = %v", err)
	}
}

func TestGetCallNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetCallByCallID(context.Background(), "missing")
	if !errors.Is(err, ErrCallNotFound) {
		t.Errorf("GetCallByCallID() error = %v, want ErrCallNotFound", err)
	}

	exists, err := db.CallExists(context.Background(), "missing")
	if err != nil || exists {
		t.Errorf("CallExists() = %v, %v; want false, nil", exists, err)
	}
}

func TestListCalls(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		c := testCall(id, 50+i*20, i == 2)
		if err := db.InsertCall(ctx, &c); err != nil {
			t.Fatalf("InsertCall(%s) error = %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	calls, err := db.ListCalls(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListCalls() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("ListCalls(2, 0) returned %d calls, want 2", len(calls))
	}
	if calls[0].CallID != "c" {
		t.Errorf("ListCalls(2, 0) first = %q, want %q", calls[0].CallID, "c")
	}

	calls, err = db.ListCalls(ctx, 10, 2)
	if err != nil || len(calls) != 1 || calls[0].CallID != "a" {
		t.Errorf("ListCalls(10, 2) = %v, %v", calls, err)
	}

	hot, err := db.ListHotCalls(ctx, 10)
	if err != nil || len(hot) != 1 || hot[0].CallID != "c" {
		t.Errorf("ListHotCalls() = %v, %v", hot, err)
	}

	all, err := db.AllCalls(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("AllCalls() = %d, %v; want 3", len(all), err)
	}
}

func TestFollowupRecords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := db.AppendHotLead(ctx, models.HotLead{CallID: "f1", UrgencyReason: "closing soon", Source: models.HotLeadSourceManual, NotifiedAt: &now}); err != nil {
			t.Fatalf("AppendHotLead() error = %v", err)
		}
	}
	if _, err := db.AppendCallback(ctx, models.Callback{CallID: "f1", PreferredDate: "tomorrow"}); err != nil {
		t.Fatalf("AppendCallback() error = %v", err)
	}
	if _, err := db.AppendPropertyRequest(ctx, models.PropertyRequest{CallID: "f1", Email: "j@x.com"}); err != nil {
		t.Fatalf("AppendPropertyRequest() error = %v", err)
	}

	leads, err := db.ListHotLeads(ctx, "f1")
	if err != nil || len(leads) != 2 {
		t.Fatalf("ListHotLeads() = %d, %v; want 2 rows", len(leads), err)
	}
	if leads[0].NotifiedAt == nil {
		t.Error("NotifiedAt not stored")
	}

	cbs, err := db.ListCallbacks(ctx, "f1")
	if err != nil || len(cbs) != 1 || cbs[0].Status != models.CallbackStatusScheduled {
		t.Errorf("ListCallbacks() = %+v, %v", cbs, err)
	}

	prs, err := db.ListPropertyRequests(ctx, "f1")
	if err != nil || len(prs) != 1 || prs[0].Status != models.PropertyRequestStatusPending {
		t.Errorf("ListPropertyRequests() = %+v, %v", prs, err)
	}
}
