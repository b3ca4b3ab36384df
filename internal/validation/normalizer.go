package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"realflow/internal/models"
)

// Normalizer coerces loosely-typed tool arguments into model records.
// It never rejects a value: unknown or missing fields fall back to defaults.
type Normalizer struct {
	aliases map[string][]string
}

// NewNormalizer returns a Normalizer using DefaultAliases extended with extra.
// Extra aliases for a canonical key are tried after the built-in ones.
func NewNormalizer(extra map[string][]string) *Normalizer {
	aliases := make(map[string][]string, len(DefaultAliases))
	for k, v := range DefaultAliases {
		aliases[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		aliases[k] = append(aliases[k], v...)
	}
	return &Normalizer{aliases: aliases}
}

// ParseArguments interprets tool-call arguments. Objects are returned as-is,
// strings are decoded as JSON with a single-quote fallback. Anything that is
// not key-value data yields a *ValidationError.
func ParseArguments(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return parseArgumentString(string(v))
	case []byte:
		return parseArgumentString(string(v))
	case string:
		return parseArgumentString(v)
	default:
		return nil, &ValidationError{Field: "arguments", Msg: fmt.Sprintf("unsupported type %T", raw)}
	}
}

func parseArgumentString(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return map[string]any{}, nil
	}

	var decoded any
	err := json.Unmarshal([]byte(s), &decoded)
	if err != nil {
		if retryErr := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &decoded); retryErr != nil {
			return nil, &ValidationError{Field: "arguments", Msg: "not valid JSON", Err: err}
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ValidationError{Field: "arguments", Msg: "must be a JSON object"}
	}
	return obj, nil
}

// Lookup returns the first non-empty value for a canonical key, stringified.
func (n *Normalizer) Lookup(args map[string]any, field string) string {
	v, ok := n.lookupRaw(args, field)
	if !ok {
		return ""
	}
	return Stringify(v)
}

func (n *Normalizer) lookupRaw(args map[string]any, field string) (any, bool) {
	aliases, ok := n.aliases[field]
	if !ok {
		aliases = []string{field}
	}
	for _, a := range aliases {
		v, present := args[a]
		if !present || v == nil {
			continue
		}
		if Stringify(v) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// Normalize builds a canonical CallRecord from tool arguments. Derived fields
// are left zero for the scoring engine.
func (n *Normalizer) Normalize(callID string, args map[string]any) models.CallRecord {
	r := models.CallRecord{
		CallID:          callID,
		CallerName:      n.Lookup(args, FieldCallerName),
		CallerPhone:     n.Lookup(args, FieldCallerPhone),
		CallerEmail:     n.Lookup(args, FieldCallerEmail),
		Role:            n.Lookup(args, FieldCallerRole),
		AssetType:       n.Lookup(args, FieldAssetType),
		Location:        n.Lookup(args, FieldLocation),
		DealSize:        n.Lookup(args, FieldDealSize),
		Urgency:         n.Lookup(args, FieldUrgency),
		Sentiment:       n.Lookup(args, FieldSentiment),
		InquirySummary:  n.Lookup(args, FieldInquirySummary),
		AdditionalNotes: n.Lookup(args, FieldAdditionalNotes),
	}
	if v, ok := n.lookupRaw(args, FieldConversationTopics); ok {
		r.ConversationTopics = StringList(v)
	}
	if v, ok := n.lookupRaw(args, FieldQuestionsAsked); ok {
		r.QuestionsAsked = StringList(v)
	}
	return Canonicalize(r)
}

// Canonicalize applies enum coercion and defaults to r. It is idempotent.
func Canonicalize(r models.CallRecord) models.CallRecord {
	r.CallerName = strings.TrimSpace(r.CallerName)
	r.CallerPhone = strings.TrimSpace(r.CallerPhone)
	r.CallerEmail = strings.TrimSpace(r.CallerEmail)
	r.Location = strings.TrimSpace(r.Location)
	r.DealSize = strings.TrimSpace(r.DealSize)
	r.Role = NormalizeRole(r.Role)
	r.AssetType = NormalizeAssetType(r.AssetType)
	r.Urgency = NormalizeUrgency(r.Urgency)
	r.Sentiment = NormalizeSentiment(r.Sentiment)
	r.InquirySummary = strings.TrimSpace(r.InquirySummary)
	r.AdditionalNotes = strings.TrimSpace(r.AdditionalNotes)
	return r
}

// FieldMap renders the caller-supplied fields of r under their canonical keys.
func FieldMap(r models.CallRecord) map[string]any {
	return map[string]any{
		FieldCallerName:         r.CallerName,
		FieldCallerPhone:        r.CallerPhone,
		FieldCallerEmail:        r.CallerEmail,
		FieldCallerRole:         r.Role,
		FieldAssetType:          r.AssetType,
		FieldLocation:           r.Location,
		FieldDealSize:           r.DealSize,
		FieldUrgency:            r.Urgency,
		FieldSentiment:          r.Sentiment,
		FieldInquirySummary:     r.InquirySummary,
		FieldAdditionalNotes:    r.AdditionalNotes,
		FieldConversationTopics: r.ConversationTopics,
		FieldQuestionsAsked:     r.QuestionsAsked,
	}
}

// Callback builds a callback request from schedule_callback arguments.
func (n *Normalizer) Callback(callID string, args map[string]any) models.Callback {
	return models.Callback{
		CallID:        callID,
		CallerName:    n.Lookup(args, FieldCallerName),
		CallbackPhone: n.Lookup(args, FieldCallbackPhone),
		PreferredDate: n.Lookup(args, FieldPreferredDate),
		PreferredTime: n.Lookup(args, FieldPreferredTime),
		Timezone:      n.Lookup(args, FieldTimezone),
		Reason:        n.Lookup(args, FieldReason),
		Status:        models.CallbackStatusScheduled,
	}
}

// PropertyRequest builds a property request from request_property_information arguments.
func (n *Normalizer) PropertyRequest(callID string, args map[string]any) models.PropertyRequest {
	return models.PropertyRequest{
		CallID:               callID,
		Email:                n.Lookup(args, FieldEmail),
		PropertyType:         n.Lookup(args, FieldPropertyType),
		Location:             n.Lookup(args, FieldLocation),
		BudgetRange:          n.Lookup(args, FieldBudgetRange),
		SpecificRequirements: n.Lookup(args, FieldRequirements),
		Status:               models.PropertyRequestStatusPending,
	}
}

// HotLeadFlag builds a manual hot-lead record from flag_hot_lead arguments.
func (n *Normalizer) HotLeadFlag(callID string, args map[string]any) models.HotLead {
	competition, _ := n.lookupRaw(args, FieldHasCompetition)
	return models.HotLead{
		CallID:         callID,
		CallerName:     n.Lookup(args, FieldCallerName),
		CallerPhone:    n.Lookup(args, FieldCallerPhone),
		UrgencyReason:  n.Lookup(args, FieldUrgencyReason),
		DealValue:      n.Lookup(args, FieldDealValue),
		HasCompetition: ParseBool(competition),
		Source:         models.HotLeadSourceManual,
	}
}

// NormalizeUrgency maps free-form timelines onto the urgency enum.
// Unrecognized values become "browsing".
func NormalizeUrgency(s string) string {
	if v, ok := urgencyAliases[squash(s)]; ok {
		return v
	}
	return models.UrgencyBrowsing
}

// NormalizeSentiment maps sentiment labels onto the sentiment enum.
// Unrecognized values become "neutral".
func NormalizeSentiment(s string) string {
	if v, ok := sentimentAliases[squash(s)]; ok {
		return v
	}
	return models.SentimentNeutral
}

// NormalizeRole maps caller roles onto the role enum. An empty role becomes
// "general_inquiry", an unrecognized one "other".
func NormalizeRole(s string) string {
	key := squash(s)
	if key == "" {
		return models.RoleGeneralInquiry
	}
	if v, ok := roleAliases[key]; ok {
		return v
	}
	return models.RoleOther
}

// NormalizeAssetType lowercases the asset type and folds spelling variants of
// the premium types. An empty value becomes "other".
func NormalizeAssetType(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return models.AssetTypeOther
	}
	if v, ok := assetAliases[squash(lower)]; ok {
		return v
	}
	return lower
}

// NormalizeToolName folds tool names so snake_case, camelCase and kebab-case
// spellings compare equal.
func NormalizeToolName(name string) string {
	return squash(name)
}

// Stringify renders a decoded JSON value as text. Numbers are written without
// exponents and lists are joined with ", ".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		return strings.Join(StringList(t), ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// StringList converts a list-ish value to a slice of non-empty strings.
// A plain string is split on commas.
func StringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s := Stringify(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := Stringify(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseBool interprets truthy payload values ("yes", "true", 1, true).
func ParseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}

func squash(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
