package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// DealBucket is a coarse deal-size range used for scoring.
type DealBucket int

const (
	DealUnspecified DealBucket = iota
	DealUnder500K
	Deal500KTo5M
	Deal5MTo10M
	Deal10MPlus
)

func (b DealBucket) String() string {
	switch b {
	case DealUnder500K:
		return "under_500k"
	case Deal500KTo5M:
		return "500k_5m"
	case Deal5MTo10M:
		return "5m_10m"
	case Deal10MPlus:
		return "10m_plus"
	default:
		return "unspecified"
	}
}

var (
	amountPattern   = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(thousands?|millions?|billions?|mill?|mm|bn|k|m|b)?\b`)
	rangeSepPattern = regexp.MustCompile(`^\s*(?:-|–|to|and|or|/)\s*\$?\s*$`)
	bareWordPattern = regexp.MustCompile(`\b(million|billion)s?\b`)
	unitMultipliers = map[string]float64{
		"k": 1e3, "thousand": 1e3, "thousands": 1e3,
		"m": 1e6, "mm": 1e6, "mil": 1e6, "mill": 1e6, "million": 1e6, "millions": 1e6,
		"b": 1e9, "bn": 1e9, "billion": 1e9, "billions": 1e9,
	}
)

type amountMatch struct {
	value float64
	unit  string
	start int
	end   int
}

// ParseDealSize extracts the largest dollar amount mentioned in s.
// A number without a unit that is joined to the next number by a range
// separator takes that number's unit, so "5-10 million" is 10,000,000.
// Returns false when no amount can be found.
func ParseDealSize(s string) (float64, bool) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return 0, false
	}

	var matches []amountMatch
	for _, loc := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		digits := strings.ReplaceAll(text[loc[2]:loc[3]], ",", "")
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		m := amountMatch{value: v, start: loc[0], end: loc[1]}
		if loc[4] >= 0 {
			m.unit = text[loc[4]:loc[5]]
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 {
		if w := bareWordPattern.FindStringSubmatch(text); w != nil {
			return unitMultipliers[w[1]], true
		}
		return 0, false
	}

	best := 0.0
	for i, m := range matches {
		unit := m.unit
		if unit == "" && i+1 < len(matches) && matches[i+1].unit != "" &&
			rangeSepPattern.MatchString(text[m.end:matches[i+1].start]) {
			unit = matches[i+1].unit
		}
		amount := m.value
		if mult, ok := unitMultipliers[unit]; ok {
			amount *= mult
		}
		if amount > best {
			best = amount
		}
	}
	return best, best > 0
}

// BucketFor classifies a free-form deal size.
func BucketFor(dealSize string) DealBucket {
	amount, ok := ParseDealSize(dealSize)
	if !ok {
		return DealUnspecified
	}
	switch {
	case amount >= 10_000_000:
		return Deal10MPlus
	case amount >= 5_000_000:
		return Deal5MTo10M
	case amount >= 500_000:
		return Deal500KTo5M
	default:
		return DealUnder500K
	}
}
