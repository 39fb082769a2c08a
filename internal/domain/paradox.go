package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty labels used by the catalog.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Paradox is one learnable unit of the catalog (a paradox or fallacy).
// Optional categorical attributes are nil when the catalog omits them.
type Paradox struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	Tier          RawTier `json:"tier,omitempty" yaml:"tier,omitempty"`
	Difficulty    string  `json:"difficulty" yaml:"difficulty"`
	Usage         *string `json:"usage,omitempty" yaml:"usage,omitempty"`
	Subtlety      *string `json:"subtlety,omitempty" yaml:"subtlety,omitempty"`
	Severity      *string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Intent        *string `json:"intent,omitempty" yaml:"intent,omitempty"`
	Defensibility *string `json:"defensibility,omitempty" yaml:"defensibility,omitempty"`
	Context       string  `json:"context" yaml:"context"`
	Medium        string  `json:"medium" yaml:"medium"`
}

// RawTier keeps the tier exactly as the catalog supplied it. Catalogs
// have shipped tiers both as numbers and as strings.
type RawTier string

// DefaultTier is used when a tier is missing or unparseable.
const DefaultTier = 1

// Parse returns the tier as an int, or DefaultTier.
func (t RawTier) Parse() int {
	n, ok := t.wholeNumber()
	if !ok {
		return DefaultTier
	}
	return n
}

// wholeNumber accepts integers and integral floats such as "2.0".
func (t RawTier) wholeNumber() (int, bool) {
	raw := strings.TrimSpace(string(t))
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// TierOf builds a RawTier from an int.
func TierOf(n int) RawTier {
	return RawTier(strconv.Itoa(n))
}

func (t *RawTier) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = RawTier(s)
		return nil
	}
	// numbers and anything else are kept verbatim; Parse decides later
	*t = RawTier(raw)
	return nil
}

func (t RawTier) MarshalJSON() ([]byte, error) {
	if n, ok := t.wholeNumber(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(string(t))
}

func (t *RawTier) UnmarshalYAML(node *yaml.Node) error {
	*t = RawTier(node.Value)
	return nil
}

// StringPtr is a convenience for optional attributes.
func StringPtr(s string) *string {
	return &s
}
