// Package archive keeps a single-table DynamoDB copy of every record.
//
// Table requirements:
//   - PK: pk (string), CALL#<call_id>
//   - SK: sk (string), CALL, HOT#<id>, CALLBACK#<id> or PROPERTY#<id>
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"realflow/internal/models"
	"realflow/internal/sink"
)

// SinkName identifies the archive sink.
const SinkName = "dynamodb"

// ErrDuplicateCall is returned when the call item already exists.
var ErrDuplicateCall = errors.New("call already archived")

// Config selects the table and, for local development, a custom endpoint.
type Config struct {
	Table           string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// putItemAPI is the slice of the DynamoDB client the sink needs.
type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Sink writes records as DynamoDB items.
type Sink struct {
	ddb       putItemAPI
	tableName string
	now       func() time.Time
}

// New loads the AWS configuration and returns a Sink for cfg.Table.
// Static credentials are used when both keys are set, otherwise the default
// credential chain applies.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newSink(client, cfg.Table), nil
}

func newSink(ddb putItemAPI, table string) *Sink {
	return &Sink{ddb: ddb, tableName: table, now: time.Now}
}

// Name implements sink.Sink.
func (s *Sink) Name() string {
	return SinkName
}

type callItem struct {
	PK                 string   `dynamodbav:"pk"`
	SK                 string   `dynamodbav:"sk"`
	ID                 string   `dynamodbav:"id"`
	CallID             string   `dynamodbav:"call_id"`
	CallerName         string   `dynamodbav:"caller_name,omitempty"`
	CallerPhone        string   `dynamodbav:"caller_phone,omitempty"`
	CallerEmail        string   `dynamodbav:"caller_email,omitempty"`
	Role               string   `dynamodbav:"caller_role"`
	AssetType          string   `dynamodbav:"asset_type"`
	Location           string   `dynamodbav:"location,omitempty"`
	DealSize           string   `dynamodbav:"deal_size,omitempty"`
	Urgency            string   `dynamodbav:"urgency"`
	Sentiment          string   `dynamodbav:"sentiment"`
	LeadScore          int      `dynamodbav:"lead_score"`
	IsHotLead          bool     `dynamodbav:"is_hot_lead"`
	HotLeadReason      string   `dynamodbav:"hot_lead_reason,omitempty"`
	InquirySummary     string   `dynamodbav:"inquiry_summary,omitempty"`
	AdditionalNotes    string   `dynamodbav:"additional_notes,omitempty"`
	ConversationTopics []string `dynamodbav:"conversation_topics,omitempty"`
	QuestionsAsked     []string `dynamodbav:"questions_asked,omitempty"`
	CreatedAt          string   `dynamodbav:"created_at"`
}

type hotLeadItem struct {
	PK             string `dynamodbav:"pk"`
	SK             string `dynamodbav:"sk"`
	ID             string `dynamodbav:"id"`
	CallID         string `dynamodbav:"call_id"`
	CallerName     string `dynamodbav:"caller_name,omitempty"`
	CallerPhone    string `dynamodbav:"caller_phone,omitempty"`
	UrgencyReason  string `dynamodbav:"urgency_reason,omitempty"`
	DealValue      string `dynamodbav:"deal_value,omitempty"`
	HasCompetition bool   `dynamodbav:"has_competition"`
	Source         string `dynamodbav:"source"`
	NotifiedAt     string `dynamodbav:"notified_at,omitempty"`
	CreatedAt      string `dynamodbav:"created_at"`
}

type callbackItem struct {
	PK            string `dynamodbav:"pk"`
	SK            string `dynamodbav:"sk"`
	ID            string `dynamodbav:"id"`
	CallID        string `dynamodbav:"call_id"`
	CallerName    string `dynamodbav:"caller_name,omitempty"`
	CallbackPhone string `dynamodbav:"callback_phone,omitempty"`
	PreferredDate string `dynamodbav:"preferred_date,omitempty"`
	PreferredTime string `dynamodbav:"preferred_time,omitempty"`
	Timezone      string `dynamodbav:"timezone,omitempty"`
	Reason        string `dynamodbav:"reason,omitempty"`
	Status        string `dynamodbav:"status"`
	CreatedAt     string `dynamodbav:"created_at"`
}

type propertyRequestItem struct {
	PK                   string `dynamodbav:"pk"`
	SK                   string `dynamodbav:"sk"`
	ID                   string `dynamodbav:"id"`
	CallID               string `dynamodbav:"call_id"`
	Email                string `dynamodbav:"email,omitempty"`
	PropertyType         string `dynamodbav:"property_type,omitempty"`
	Location             string `dynamodbav:"location,omitempty"`
	BudgetRange          string `dynamodbav:"budget_range,omitempty"`
	SpecificRequirements string `dynamodbav:"specific_requirements,omitempty"`
	Status               string `dynamodbav:"status"`
	CreatedAt            string `dynamodbav:"created_at"`
}

func partitionKey(callID string) string {
	return "CALL#" + callID
}

// AppendCall implements sink.Sink. The item is written only if no call item
// exists for the same call id.
func (s *Sink) AppendCall(ctx context.Context, call models.CallRecord) (string, error) {
	it := callItem{
		PK:                 partitionKey(call.CallID),
		SK:                 "CALL",
		ID:                 call.ID.String(),
		CallID:             call.CallID,
		CallerName:         call.CallerName,
		CallerPhone:        call.CallerPhone,
		CallerEmail:        call.CallerEmail,
		Role:               call.Role,
		AssetType:          call.AssetType,
		Location:           call.Location,
		DealSize:           call.DealSize,
		Urgency:            call.Urgency,
		Sentiment:          call.Sentiment,
		LeadScore:          call.LeadScore,
		IsHotLead:          call.IsHotLead,
		HotLeadReason:      call.HotLeadReason,
		InquirySummary:     call.InquirySummary,
		AdditionalNotes:    call.AdditionalNotes,
		ConversationTopics: call.ConversationTopics,
		QuestionsAsked:     call.QuestionsAsked,
		CreatedAt:          s.stamp(call.CreatedAt),
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return "", sink.Wrap(SinkName, "marshal call", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "pk",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return "", sink.Wrap(SinkName, "put call", ErrDuplicateCall)
		}
		return "", sink.Wrap(SinkName, "put call", err)
	}
	return it.PK + "/" + it.SK, nil
}

// AppendHotLead implements sink.Sink.
func (s *Sink) AppendHotLead(ctx context.Context, lead models.HotLead) (string, error) {
	it := hotLeadItem{
		PK:             partitionKey(lead.CallID),
		SK:             "HOT#" + lead.ID.String(),
		ID:             lead.ID.String(),
		CallID:         lead.CallID,
		CallerName:     lead.CallerName,
		CallerPhone:    lead.CallerPhone,
		UrgencyReason:  lead.UrgencyReason,
		DealValue:      lead.DealValue,
		HasCompetition: lead.HasCompetition,
		Source:         lead.Source,
		CreatedAt:      s.stamp(lead.CreatedAt),
	}
	if lead.NotifiedAt != nil {
		it.NotifiedAt = lead.NotifiedAt.UTC().Format(time.RFC3339)
	}
	return s.put(ctx, "put hot lead", it, it.PK+"/"+it.SK)
}

// AppendCallback implements sink.Sink.
func (s *Sink) AppendCallback(ctx context.Context, cb models.Callback) (string, error) {
	it := callbackItem{
		PK:            partitionKey(cb.CallID),
		SK:            "CALLBACK#" + cb.ID.String(),
		ID:            cb.ID.String(),
		CallID:        cb.CallID,
		CallerName:    cb.CallerName,
		CallbackPhone: cb.CallbackPhone,
		PreferredDate: cb.PreferredDate,
		PreferredTime: cb.PreferredTime,
		Timezone:      cb.Timezone,
		Reason:        cb.Reason,
		Status:        cb.Status,
		CreatedAt:     s.stamp(cb.CreatedAt),
	}
	return s.put(ctx, "put callback", it, it.PK+"/"+it.SK)
}

// AppendPropertyRequest implements sink.Sink.
func (s *Sink) AppendPropertyRequest(ctx context.Context, req models.PropertyRequest) (string, error) {
	it := propertyRequestItem{
		PK:                   partitionKey(req.CallID),
		SK:                   "PROPERTY#" + req.ID.String(),
		ID:                   req.ID.String(),
		CallID:               req.CallID,
		Email:                req.Email,
		PropertyType:         req.PropertyType,
		Location:             req.Location,
		BudgetRange:          req.BudgetRange,
		SpecificRequirements: req.SpecificRequirements,
		Status:               req.Status,
		CreatedAt:            s.stamp(req.CreatedAt),
	}
	return s.put(ctx, "put property request", it, it.PK+"/"+it.SK)
}

func (s *Sink) put(ctx context.Context, op string, item any, key string) (string, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", sink.Wrap(SinkName, op, err)
	}
	if _, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return "", sink.Wrap(SinkName, op, err)
	}
	return key, nil
}

func (s *Sink) stamp(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Format(time.RFC3339)
}
