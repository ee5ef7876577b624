// Package lien models per-state mechanics-lien statutes and derives concrete
// deadlines, urgency tiers and eligibility from them. Everything here is pure:
// no I/O, no logging, no package-level mutable state.
package lien

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// DefaultStateKey is the rule-table key used for every unmodeled state.
const DefaultStateKey = "DEFAULT"

// StateLienRule holds the simplified statutory parameters for one state.
// Each entry is an approximation requiring professional review.
type StateLienRule struct {
	PreliminaryNoticeRequired bool   `json:"preliminary_notice_required" yaml:"preliminary_notice_required" mapstructure:"preliminary_notice_required"`
	PreliminaryNoticeDays     int    `json:"preliminary_notice_days" yaml:"preliminary_notice_days" mapstructure:"preliminary_notice_days"`
	LienFilingDays            int    `json:"lien_filing_days" yaml:"lien_filing_days" mapstructure:"lien_filing_days"`
	EnforcementDays           int    `json:"enforcement_days" yaml:"enforcement_days" mapstructure:"enforcement_days"`
	Notes                     string `json:"notes" yaml:"notes" mapstructure:"notes"`
}

// Validate checks the internal consistency of a rule.
func (r StateLienRule) Validate() error {
	if r.LienFilingDays <= 0 {
		return errors.New(errors.ErrCodeLienInvalidRule, "lien filing days must be positive")
	}
	if r.EnforcementDays < 0 || r.PreliminaryNoticeDays < 0 {
		return errors.New(errors.ErrCodeLienInvalidRule, "day counts must not be negative")
	}
	if !r.PreliminaryNoticeRequired && r.PreliminaryNoticeDays != 0 {
		return errors.New(errors.ErrCodeLienInvalidRule, "preliminary notice days set but notice not required")
	}
	if r.PreliminaryNoticeRequired && r.PreliminaryNoticeDays == 0 {
		return errors.New(errors.ErrCodeLienInvalidRule, "preliminary notice required but days not set")
	}
	return nil
}

// RuleTable is an immutable lookup of state rules with a DEFAULT fallback.
// Unknown or empty state codes resolve to the fallback rule, never to an error.
// A RuleTable is safe for concurrent use.
type RuleTable struct {
	rules    map[string]StateLienRule
	aliases  map[string]string
	fallback StateLienRule
}

// NewRuleTable validates and copies rules into a new table. Keys must be
// two-letter state codes; fallback becomes the DEFAULT entry.
func NewRuleTable(rules map[string]StateLienRule, fallback StateLienRule) (*RuleTable, error) {
	if err := fallback.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLienInvalidRule, "invalid DEFAULT rule")
	}
	t := &RuleTable{
		rules:    make(map[string]StateLienRule, len(rules)),
		aliases:  make(map[string]string),
		fallback: fallback,
	}
	for code, rule := range rules {
		key := normalizeCode(code)
		if len(key) != 2 {
			return nil, errors.New(errors.ErrCodeLienInvalidRule, "state key must be a two-letter code").
				WithDetail(fmt.Sprintf("key=%q", code))
		}
		if err := rule.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeLienInvalidRule, "invalid rule for "+key)
		}
		t.rules[key] = rule
	}
	for name, code := range stateNames {
		if _, ok := t.rules[code]; ok {
			t.aliases[name] = code
		}
	}
	return t, nil
}

// MustRuleTable is NewRuleTable that panics on error. Use only with literals.
func MustRuleTable(rules map[string]StateLienRule, fallback StateLienRule) *RuleTable {
	t, err := NewRuleTable(rules, fallback)
	if err != nil {
		panic(err)
	}
	return t
}

// WithOverrides returns a new table where overrides replace or extend the
// receiver's entries. The key "DEFAULT" replaces the fallback rule.
func (t *RuleTable) WithOverrides(overrides map[string]StateLienRule) (*RuleTable, error) {
	merged := make(map[string]StateLienRule, len(t.rules)+len(overrides))
	for k, v := range t.rules {
		merged[k] = v
	}
	fallback := t.fallback
	for k, v := range overrides {
		key := normalizeCode(k)
		if key == DefaultStateKey {
			fallback = v
			continue
		}
		merged[key] = v
	}
	return NewRuleTable(merged, fallback)
}

// Normalize maps a state code or full state name to the table key that
// serves it: the upper-cased code when modeled, DEFAULT otherwise.
func (t *RuleTable) Normalize(state string) string {
	key := normalizeCode(state)
	if _, ok := t.rules[key]; ok {
		return key
	}
	if code, ok := t.aliases[key]; ok {
		return code
	}
	return DefaultStateKey
}

// Resolve returns the rule for state together with the key that served it.
func (t *RuleTable) Resolve(state string) (StateLienRule, string) {
	key := t.Normalize(state)
	if key == DefaultStateKey {
		return t.fallback, key
	}
	return t.rules[key], key
}

// Rule returns the rule for state, falling back to DEFAULT.
func (t *RuleTable) Rule(state string) StateLienRule {
	r, _ := t.Resolve(state)
	return r
}

// Has reports whether state has an explicit (non-DEFAULT) entry.
func (t *RuleTable) Has(state string) bool {
	return t.Normalize(state) != DefaultStateKey
}

// Default returns the fallback rule.
func (t *RuleTable) Default() StateLienRule {
	return t.fallback
}

// States lists the explicitly modeled state codes in sorted order.
func (t *RuleTable) States() []string {
	out := make([]string, 0, len(t.rules))
	for k := range t.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in table
// ─────────────────────────────────────────────────────────────────────────────

const defaultNotes = "Using general guidelines - consult a local construction attorney."

// DefaultRule is the fallback entry applied to unmodeled states.
var DefaultRule = StateLienRule{
	LienFilingDays:  90,
	EnforcementDays: 365,
	Notes:           defaultNotes,
}

// DefaultRuleTable returns the built-in table. Each call returns a fresh
// table, so callers can never observe one another's overrides.
func DefaultRuleTable() *RuleTable {
	return MustRuleTable(builtinRules(), DefaultRule)
}

func builtinRules() map[string]StateLienRule {
	return map[string]StateLienRule{
		"AZ": {true, 20, 120, 180, "20-day preliminary notice; record within 120 days of completion (60 if notice of completion recorded)."},
		"CA": {true, 20, 90, 90, "20-day preliminary notice; record within 90 days of completion; foreclose within 90 days of recording."},
		"CO": {false, 0, 120, 180, "Notice of intent at least 10 days before recording; record within 4 months of last work."},
		"FL": {true, 45, 90, 365, "Notice to owner within 45 days of first furnishing; claim of lien within 90 days of final furnishing."},
		"GA": {false, 0, 90, 365, "Claim of lien within 90 days of completion; action within 365 days of filing."},
		"IL": {false, 0, 120, 730, "Record within 4 months of completion to bind third parties; suit within 2 years."},
		"MI": {true, 20, 90, 365, "Notice of furnishing within 20 days; claim of lien within 90 days of last furnishing."},
		"NC": {false, 0, 120, 180, "Claim of lien within 120 days of last furnishing; enforce within 180 days."},
		"NJ": {false, 0, 90, 365, "Lien claim within 90 days of last work; residential projects require arbitration first."},
		"NV": {true, 31, 90, 180, "Notice of right to lien within 31 days; lien within 90 days of completion."},
		"NY": {false, 0, 240, 365, "File within 8 months of last work (4 months for single-family residential)."},
		"OH": {false, 0, 75, 2190, "Affidavit within 75 days of last work (60 days for residential)."},
		"PA": {false, 0, 180, 730, "File within 6 months of completion; formal notice of intent at least 30 days before filing."},
		"TX": {true, 45, 105, 365, "Monthly notices by the 15th of the 2nd/3rd month; affidavit by the 15th of the 4th month (approximated)."},
		"WA": {true, 60, 90, 240, "Pre-claim notice within 60 days of first furnishing; record within 90 days of last work."},
	}
}

var stateNames = map[string]string{
	"ARIZONA":        "AZ",
	"CALIFORNIA":     "CA",
	"COLORADO":       "CO",
	"FLORIDA":        "FL",
	"GEORGIA":        "GA",
	"ILLINOIS":       "IL",
	"MICHIGAN":       "MI",
	"NORTH CAROLINA": "NC",
	"NEW JERSEY":     "NJ",
	"NEVADA":         "NV",
	"NEW YORK":       "NY",
	"OHIO":           "OH",
	"PENNSYLVANIA":   "PA",
	"TEXAS":          "TX",
	"WASHINGTON":     "WA",
}

// StateName returns the display name of a modeled state code, e.g. "New
// York" for "NY", or "" when the code has no built-in name.
func StateName(code string) string {
	key := normalizeCode(code)
	for name, c := range stateNames {
		if c != key {
			continue
		}
		words := strings.Fields(strings.ToLower(name))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	}
	return ""
}

//Personal.AI order the ending
