package validation

// Canonical payload keys.
const (
	FieldCallerName         = "caller_name"
	FieldCallerPhone        = "caller_phone"
	FieldCallerEmail        = "caller_email"
	FieldCallerRole         = "caller_role"
	FieldAssetType          = "asset_type"
	FieldLocation           = "location"
	FieldDealSize           = "deal_size"
	FieldUrgency            = "urgency"
	FieldSentiment          = "sentiment"
	FieldInquirySummary     = "inquiry_summary"
	FieldAdditionalNotes    = "additional_notes"
	FieldConversationTopics = "conversation_topics"
	FieldQuestionsAsked     = "questions_asked"

	FieldCallbackPhone  = "callback_phone"
	FieldPreferredDate  = "preferred_date"
	FieldPreferredTime  = "preferred_time"
	FieldTimezone       = "timezone"
	FieldReason         = "reason"
	FieldEmail          = "email"
	FieldPropertyType   = "property_type"
	FieldBudgetRange    = "budget_range"
	FieldRequirements   = "specific_requirements"
	FieldUrgencyReason  = "urgency_reason"
	FieldDealValue      = "deal_value"
	FieldHasCompetition = "has_competition"
)

// DefaultAliases maps each canonical key to the payload keys accepted for it,
// in lookup order. The first alias holding a non-empty value wins.
var DefaultAliases = map[string][]string{
	FieldCallerName:         {"caller_name", "name", "caller", "callerFullName", "callerName"},
	FieldCallerPhone:        {"caller_phone", "phone", "from", "caller_phone_number", "callerPhone"},
	FieldCallerEmail:        {"caller_email", "email", "callerEmail"},
	FieldCallerRole:         {"caller_role", "role", "user_role", "callerRole"},
	FieldAssetType:          {"asset_type", "asset", "property_type", "assetType"},
	FieldLocation:           {"location", "city", "market"},
	FieldDealSize:           {"deal_size", "value", "budget_range", "dealValue", "dealSize"},
	FieldUrgency:            {"urgency", "timeline"},
	FieldSentiment:          {"sentiment", "caller_sentiment", "mood"},
	FieldInquirySummary:     {"inquiry_summary", "inquiry", "summary", "inquirySummary"},
	FieldAdditionalNotes:    {"additional_notes", "notes", "extra_notes", "additionalNotes"},
	FieldConversationTopics: {"conversation_topics", "topics", "conversationTopics"},
	FieldQuestionsAsked:     {"questions_asked", "questions", "questionsAsked"},

	FieldCallbackPhone:  {"callback_phone", "callbackPhone", "phone", "caller_phone"},
	FieldPreferredDate:  {"preferred_date", "preferredDate", "date"},
	FieldPreferredTime:  {"preferred_time", "preferredTime", "time"},
	FieldTimezone:       {"timezone", "time_zone", "tz"},
	FieldReason:         {"reason", "callback_reason"},
	FieldEmail:          {"email", "caller_email", "callerEmail"},
	FieldPropertyType:   {"property_type", "propertyType", "asset_type"},
	FieldBudgetRange:    {"budget_range", "budgetRange", "budget", "deal_size"},
	FieldRequirements:   {"specific_requirements", "specificRequirements", "requirements"},
	FieldUrgencyReason:  {"urgency_reason", "urgencyReason", "hot_lead_reason", "reason"},
	FieldDealValue:      {"deal_value", "dealValue", "deal_size", "value"},
	FieldHasCompetition: {"has_competition", "competition", "hasCompetition"},
}

var urgencyAliases = map[string]string{
	"immediate":    "immediate",
	"immediately":  "immediate",
	"asap":         "immediate",
	"urgent":       "immediate",
	"now":          "immediate",
	"rightaway":    "immediate",
	"13mo":         "1-3mo",
	"13months":     "1-3mo",
	"1to3months":   "1-3mo",
	"1to3mo":       "1-3mo",
	"36mo":         "3-6mo",
	"36months":     "3-6mo",
	"3to6months":   "3-6mo",
	"3to6mo":       "3-6mo",
	"6+mo":         "6+mo",
	"6+months":     "6+mo",
	"6months+":     "6+mo",
	"6plusmonths":  "6+mo",
	"over6months":  "6+mo",
	"browsing":     "browsing",
	"justbrowsing": "browsing",
	"exploring":    "browsing",
	"notsure":      "browsing",
}

var sentimentAliases = map[string]string{
	"verypositive": "very_positive",
	"positive":     "positive",
	"happy":        "positive",
	"excited":      "positive",
	"neutral":      "neutral",
	"negative":     "negative",
	"verynegative": "negative",
	"frustrated":   "negative",
	"angry":        "negative",
	"upset":        "negative",
}

var roleAliases = map[string]string{
	"buyer":          "buyer",
	"purchaser":      "buyer",
	"buying":         "buyer",
	"seller":         "seller",
	"selling":        "seller",
	"investor":       "investor",
	"investing":      "investor",
	"developer":      "developer",
	"broker":         "broker",
	"agent":          "broker",
	"realtor":        "broker",
	"brokerage":      "broker",
	"lender":         "lender",
	"bank":           "lender",
	"owner":          "owner",
	"landlord":       "owner",
	"propertyowner":  "owner",
	"other":          "other",
	"generalinquiry": "general_inquiry",
}

var assetAliases = map[string]string{
	"multifamily": "multifamily",
	"apartment":   "multifamily",
	"apartments":  "multifamily",
	"industrial":  "industrial",
	"warehouse":   "industrial",
	"office":      "office",
	"offices":     "office",
}
