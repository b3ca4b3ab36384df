package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"realflow/internal/models"
	"realflow/internal/sink"
)

type fakeDynamo struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func TestAppendCall(t *testing.T) {
	ddb := &fakeDynamo{}
	s := newSink(ddb, "realflow")

	id := uuid.New()
	key, err := s.AppendCall(context.Background(), models.CallRecord{
		ID:                 id,
		CallID:             "call-1",
		Role:               "buyer",
		LeadScore:          77,
		IsHotLead:          true,
		HotLeadReason:      "high composite score",
		ConversationTopics: []string{"financing"},
		CreatedAt:          time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AppendCall() error = %v", err)
	}
	if key != "CALL#call-1/CALL" {
		t.Errorf("AppendCall() key = %q", key)
	}

	in := ddb.inputs[0]
	if aws.ToString(in.TableName) != "realflow" {
		t.Errorf("TableName = %q", aws.ToString(in.TableName))
	}
	if aws.ToString(in.ConditionExpression) != "attribute_not_exists(#pk)" {
		t.Errorf("ConditionExpression = %q", aws.ToString(in.ConditionExpression))
	}

	var got callItem
	if err := attributevalue.UnmarshalMap(in.Item, &got); err != nil {
		t.Fatalf("UnmarshalMap() error = %v", err)
	}
	if got.ID != id.String() || got.LeadScore != 77 || !got.IsHotLead || got.CreatedAt != "2026-05-06T07:08:09Z" {
		t.Errorf("item = %+v", got)
	}
	if _, ok := in.Item["caller_email"]; ok {
		t.Error("empty caller_email was written")
	}
}

func TestAppendCallDuplicate(t *testing.T) {
	ddb := &fakeDynamo{err: &types.ConditionalCheckFailedException{Message: aws.String("exists")}}
	s := newSink(ddb, "realflow")

	_, err := s.AppendCall(context.Background(), models.CallRecord{CallID: "dup"})
	if !errors.Is(err, ErrDuplicateCall) {
		t.Errorf("AppendCall() error = %v, want ErrDuplicateCall", err)
	}
	var storageErr *sink.StorageError
	if !errors.As(err, &storageErr) || storageErr.Sink != SinkName {
		t.Errorf("AppendCall() error = %v, want *sink.StorageError from %s", err, SinkName)
	}
}

func TestFollowupItemKeys(t *testing.T) {
	ddb := &fakeDynamo{}
	s := newSink(ddb, "realflow")
	ctx := context.Background()
	id := uuid.MustParse("7b8f0c58-9a3e-4c39-9f57-0c0fbd1f3b11")
	notified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		write   func() (string, error)
		wantKey string
	}{
		{"hot lead", func() (string, error) {
			return s.AppendHotLead(ctx, models.HotLead{ID: id, CallID: "c", Source: "manual", NotifiedAt: &notified})
		}, "CALL#c/HOT#" + id.String()},
		{"callback", func() (string, error) {
			return s.AppendCallback(ctx, models.Callback{ID: id, CallID: "c", Status: "scheduled"})
		}, "CALL#c/CALLBACK#" + id.String()},
		{"property request", func() (string, error) {
			return s.AppendPropertyRequest(ctx, models.PropertyRequest{ID: id, CallID: "c", Status: "pending"})
		}, "CALL#c/PROPERTY#" + id.String()},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := tt.write()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if ddb.inputs[i].ConditionExpression != nil {
				t.Error("follow-up put should be unconditional")
			}
		})
	}

	var hot hotLeadItem
	if err := attributevalue.UnmarshalMap(ddb.inputs[0].Item, &hot); err != nil {
		t.Fatalf("UnmarshalMap() error = %v", err)
	}
	if hot.NotifiedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("NotifiedAt = %q", hot.NotifiedAt)
	}
}

func TestPutErrorWrapped(t *testing.T) {
	s := newSink(&fakeDynamo{err: errors.New("throttled")}, "realflow")
	_, err := s.AppendCallback(context.Background(), models.Callback{CallID: "c"})
	var storageErr *sink.StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "put callback" {
		t.Errorf("AppendCallback() error = %v", err)
	}
}
