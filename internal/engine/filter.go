package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"paradox-quiz-service/internal/domain"
)

// AllValues is the wire sentinel for an unconstrained single-value dimension.
const AllValues = "all"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Choice is a single-value constraint: either any value, or exactly one.
type Choice struct {
	value string
	set   bool
}

// Any returns an unconstrained Choice.
func Any() Choice { return Choice{} }

// Only returns a Choice accepting exactly v.
func Only(v string) Choice { return Choice{value: v, set: true} }

// ParseChoice maps wire values onto a Choice; "" and "all" are unconstrained.
func ParseChoice(raw string) Choice {
	if raw == "" || raw == AllValues {
		return Any()
	}
	return Only(raw)
}

// IsAny reports whether the choice is unconstrained.
func (c Choice) IsAny() bool { return !c.set }

// Value returns the accepted value and whether one is set.
func (c Choice) Value() (string, bool) { return c.value, c.set }

func (c Choice) String() string {
	if !c.set {
		return AllValues
	}
	return c.value
}

// matches fails a constrained choice when the attribute is absent.
func (c Choice) matches(attr *string) bool {
	if !c.set {
		return true
	}
	return attr != nil && *attr == c.value
}

// FilterParams is the loosely typed filter payload sent by clients.
type FilterParams struct {
	SelectedTiers         []int    `json:"selectedTiers" validate:"dive,gt=0"`
	SelectedDifficulty    string   `json:"selectedDifficulty"`
	SelectedUsage         string   `json:"selectedUsage"`
	SelectedSubtlety      string   `json:"selectedSubtlety"`
	SelectedSeverity      string   `json:"selectedSeverity"`
	SelectedIntent        string   `json:"selectedIntent"`
	SelectedDefensibility string   `json:"selectedDefensibility"`
	SelectedContexts      []string `json:"selectedContexts" validate:"dive,required"`
	SelectedMedia         []string `json:"selectedMedia" validate:"dive,required"`
}

// FilterSpec is a validated filter. The zero value matches everything.
type FilterSpec struct {
	Tiers         map[int]struct{}
	Difficulty    Choice
	Usage         Choice
	Subtlety      Choice
	Severity      Choice
	Intent        Choice
	Defensibility Choice
	Contexts      map[string]struct{}
	Media         map[string]struct{}
}

// NewFilterSpec validates params and builds a FilterSpec.
func NewFilterSpec(params FilterParams) (FilterSpec, error) {
	if err := validate.Struct(params); err != nil {
		return FilterSpec{}, fmt.Errorf("%w: %s", domain.ErrInvalidFilter, describeValidation(err))
	}
	spec := FilterSpec{
		Difficulty:    ParseChoice(params.SelectedDifficulty),
		Usage:         ParseChoice(params.SelectedUsage),
		Subtlety:      ParseChoice(params.SelectedSubtlety),
		Severity:      ParseChoice(params.SelectedSeverity),
		Intent:        ParseChoice(params.SelectedIntent),
		Defensibility: ParseChoice(params.SelectedDefensibility),
	}
	if len(params.SelectedTiers) > 0 {
		spec.Tiers = make(map[int]struct{}, len(params.SelectedTiers))
		for _, tier := range params.SelectedTiers {
			spec.Tiers[tier] = struct{}{}
		}
	}
	spec.Contexts = toSet(params.SelectedContexts)
	spec.Media = toSet(params.SelectedMedia)
	return spec, nil
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func describeValidation(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// Unconstrained reports whether no dimension is active.
func (s FilterSpec) Unconstrained() bool {
	return len(s.Tiers) == 0 &&
		s.Difficulty.IsAny() && s.Usage.IsAny() && s.Subtlety.IsAny() &&
		s.Severity.IsAny() && s.Intent.IsAny() && s.Defensibility.IsAny() &&
		len(s.Contexts) == 0 && len(s.Media) == 0
}

// Match reports whether p satisfies every active dimension of s.
func (s FilterSpec) Match(p domain.Paradox) bool {
	if len(s.Tiers) > 0 {
		if _, ok := s.Tiers[p.Tier.Parse()]; !ok {
			return false
		}
	}
	difficulty := p.Difficulty
	if !s.Difficulty.matches(&difficulty) {
		return false
	}
	if !s.Usage.matches(p.Usage) ||
		!s.Subtlety.matches(p.Subtlety) ||
		!s.Severity.matches(p.Severity) ||
		!s.Intent.matches(p.Intent) ||
		!s.Defensibility.matches(p.Defensibility) {
		return false
	}
	if !inSet(s.Contexts, p.Context) || !inSet(s.Media, p.Medium) {
		return false
	}
	return true
}

func inSet(set map[string]struct{}, v string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[v]
	return ok
}

// Filter returns the paradoxes matching spec, in input order. The input is not modified.
func Filter(items []domain.Paradox, spec FilterSpec) []domain.Paradox {
	out := make([]domain.Paradox, 0, len(items))
	for _, p := range items {
		if spec.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Facets lists the distinct values present in a catalog for each filter dimension.
type Facets struct {
	Tiers         []int    `json:"tiers"`
	Difficulties  []string `json:"difficulties"`
	Usages        []string `json:"usages"`
	Subtleties    []string `json:"subtleties"`
	Severities    []string `json:"severities"`
	Intents       []string `json:"intents"`
	Defensibility []string `json:"defensibility"`
	Contexts      []string `json:"contexts"`
	Media         []string `json:"media"`
}

// CollectFacets builds sorted facet lists from items. Absent optional attributes are skipped.
func CollectFacets(items []domain.Paradox) Facets {
	tiers := map[int]struct{}{}
	difficulties := map[string]struct{}{}
	usages := map[string]struct{}{}
	subtleties := map[string]struct{}{}
	severities := map[string]struct{}{}
	intents := map[string]struct{}{}
	defensibility := map[string]struct{}{}
	contexts := map[string]struct{}{}
	media := map[string]struct{}{}

	for _, p := range items {
		tiers[p.Tier.Parse()] = struct{}{}
		addValue(difficulties, &p.Difficulty)
		addValue(usages, p.Usage)
		addValue(subtleties, p.Subtlety)
		addValue(severities, p.Severity)
		addValue(intents, p.Intent)
		addValue(defensibility, p.Defensibility)
		addValue(contexts, &p.Context)
		addValue(media, &p.Medium)
	}

	tierList := make([]int, 0, len(tiers))
	for t := range tiers {
		tierList = append(tierList, t)
	}
	sort.Ints(tierList)

	return Facets{
		Tiers:         tierList,
		Difficulties:  sortedKeys(difficulties),
		Usages:        sortedKeys(usages),
		Subtleties:    sortedKeys(subtleties),
		Severities:    sortedKeys(severities),
		Intents:       sortedKeys(intents),
		Defensibility: sortedKeys(defensibility),
		Contexts:      sortedKeys(contexts),
		Media:         sortedKeys(media),
	}
}

func addValue(set map[string]struct{}, v *string) {
	if v == nil || *v == "" {
		return
	}
	set[*v] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
