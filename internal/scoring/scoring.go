// Package scoring computes the lead-quality score and hot-lead classification
// of a normalized call record. Everything here is deterministic and performs
// no I/O.
package scoring

import (
	"fmt"
	"strings"

	"realflow/internal/models"
	"realflow/internal/validation"
)

const (
	MaxScore          = 100
	HotScoreThreshold = 75
)

// Hot-lead reasons, in precedence order.
const (
	ReasonHighValueDeal  = "high-value deal"
	ReasonUrgentTimeline = "urgent timeline"
	ReasonHighScore      = "high composite score"
)

var urgencyPoints = map[string]int{
	models.UrgencyImmediate:  30,
	models.UrgencyOneToThree: 25,
	models.UrgencyThreeToSix: 15,
	models.UrgencySixPlus:    5,
}

var dealPoints = map[DealBucket]int{
	Deal10MPlus:     25,
	Deal5MTo10M:     20,
	Deal500KTo5M:    15,
	DealUnder500K:   10,
	DealUnspecified: 10,
}

var rolePoints = map[string]int{
	models.RoleBuyer:     15,
	models.RoleInvestor:  15,
	models.RoleDeveloper: 12,
	models.RoleSeller:    10,
	models.RoleBroker:    8,
}

var premiumAssets = map[string]bool{
	"multifamily": true,
	"industrial":  true,
	"office":      true,
}

var sentimentPoints = map[string]int{
	models.SentimentVeryPositive: 10,
	models.SentimentPositive:     8,
	models.SentimentNeutral:      5,
	models.SentimentNegative:     2,
}

// Breakdown holds the six sub-scores that make up a lead score.
type Breakdown struct {
	Urgency   int `json:"urgency"`
	DealSize  int `json:"deal_size"`
	Role      int `json:"role"`
	AssetType int `json:"asset_type"`
	Sentiment int `json:"sentiment"`
	Email     int `json:"email"`
}

// Total returns the clamped sum of the sub-scores.
func (b Breakdown) Total() int {
	sum := b.Urgency + b.DealSize + b.Role + b.AssetType + b.Sentiment + b.Email
	return max(0, min(MaxScore, sum))
}

// Result is the outcome of scoring one record.
type Result struct {
	Score     int
	IsHot     bool
	Reason    string
	DealRange DealBucket
	Breakdown Breakdown
}

// Explain returns the per-dimension points for a record.
func Explain(r models.CallRecord) Breakdown {
	b := Breakdown{
		Urgency:   urgencyPoints[key(r.Urgency)],
		DealSize:  dealPoints[BucketFor(r.DealSize)],
		Role:      rolePoints[key(r.Role)],
		AssetType: 5,
		Sentiment: 5,
	}
	if premiumAssets[key(r.AssetType)] {
		b.AssetType = 10
	}
	if p, ok := sentimentPoints[key(r.Sentiment)]; ok {
		b.Sentiment = p
	}
	if validation.IsPlausibleEmail(r.CallerEmail) {
		b.Email = 10
	}
	return b
}

// Score computes the lead score and hot-lead classification for r.
// Unknown or empty fields fall into the lowest bucket of their dimension.
func Score(r models.CallRecord) Result {
	b := Explain(r)
	res := Result{
		Score:     b.Total(),
		DealRange: BucketFor(r.DealSize),
		Breakdown: b,
	}

	switch {
	case res.DealRange == Deal10MPlus:
		res.Reason = ReasonHighValueDeal
	case key(r.Urgency) == models.UrgencyImmediate:
		res.Reason = ReasonUrgentTimeline
	case res.Score >= HotScoreThreshold:
		res.Reason = ReasonHighScore
	}
	res.IsHot = res.Reason != ""
	return res
}

// Apply scores r and writes the derived fields onto it.
func Apply(r *models.CallRecord) Result {
	res := Score(*r)
	r.LeadScore = res.Score
	r.IsHotLead = res.IsHot
	r.HotLeadReason = res.Reason
	return res
}

// Check reports a *ScoringError if the result breaks an invariant of the
// scoring tables. A non-nil return indicates a programming error.
func (r Result) Check() error {
	if r.Score < 0 || r.Score > MaxScore {
		return &ScoringError{Score: r.Score, Msg: "score out of range"}
	}
	if r.Breakdown.Total() != r.Score {
		return &ScoringError{Score: r.Score, Msg: "score does not match breakdown"}
	}
	switch r.Reason {
	case "", ReasonHighValueDeal, ReasonUrgentTimeline, ReasonHighScore:
	default:
		return &ScoringError{Score: r.Score, Msg: fmt.Sprintf("unknown hot-lead reason %q", r.Reason)}
	}
	if r.IsHot != (r.Reason != "") {
		return &ScoringError{Score: r.Score, Msg: "hot flag and reason disagree"}
	}
	if r.Score >= HotScoreThreshold && !r.IsHot {
		return &ScoringError{Score: r.Score, Msg: "score above threshold but not hot"}
	}
	return nil
}

// ScoringError signals an internally inconsistent scoring result.
type ScoringError struct {
	Score int
	Msg   string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring: %s (score %d)", e.Msg, e.Score)
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
