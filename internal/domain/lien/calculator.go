package lien

import (
	"time"

	"github.com/turtacn/LienPilot/pkg/types/common"
)

// WarningLevel is the three-tier urgency classification of a filing deadline.
type WarningLevel string

const (
	WarningGreen  WarningLevel = "green"
	WarningYellow WarningLevel = "yellow"
	WarningRed    WarningLevel = "red"
)

// Warning tier boundaries in days until the filing deadline.
const (
	RedThresholdDays    = 14
	YellowThresholdDays = 30
)

// ClassifyWarning maps days-until-deadline to a tier: red at 14 or fewer
// (including any negative value), yellow for 15..30, green above 30.
func ClassifyWarning(daysUntil int) WarningLevel {
	switch {
	case daysUntil <= RedThresholdDays:
		return WarningRed
	case daysUntil <= YellowThresholdDays:
		return WarningYellow
	default:
		return WarningGreen
	}
}

// Severity ranks the level for ordering: green 0, yellow 1, red 2.
func (w WarningLevel) Severity() int {
	switch w {
	case WarningRed:
		return 2
	case WarningYellow:
		return 1
	default:
		return 0
	}
}

// FilingStatus separates the situations the red tier folds together.
type FilingStatus string

const (
	// FilingUnknown means no last work date is on record; no deadline exists.
	FilingUnknown FilingStatus = "unknown"
	FilingOpen    FilingStatus = "open"
	FilingUrgent  FilingStatus = "urgent"
	FilingPassed  FilingStatus = "passed"
)

// LienCase is the deadline projection of one invoice as of a given day.
type LienCase struct {
	State                     string        `json:"state"`
	RuleKey                   string        `json:"rule_key"`
	Rule                      StateLienRule `json:"rule"`
	FirstWorkDate             *time.Time    `json:"first_work_date,omitempty"`
	LastWorkDate              *time.Time    `json:"last_work_date,omitempty"`
	PreliminaryNoticeDeadline *time.Time    `json:"preliminary_notice_deadline,omitempty"`
	LienFilingDeadline        *time.Time    `json:"lien_filing_deadline,omitempty"`
	EnforcementDeadline       *time.Time    `json:"enforcement_deadline,omitempty"`
	DaysUntilFilingDeadline   int           `json:"days_until_filing_deadline"`
	WarningLevel              WarningLevel  `json:"warning_level"`
	AsOf                      time.Time     `json:"as_of"`
}

// HasFilingDeadline reports whether a filing deadline could be computed.
// A zero DaysUntilFilingDeadline is only meaningful when this is true.
func (c LienCase) HasFilingDeadline() bool {
	return c.LienFilingDeadline != nil
}

// DeadlinePassed reports whether the filing deadline is known and behind AsOf.
func (c LienCase) DeadlinePassed() bool {
	return c.HasFilingDeadline() && c.DaysUntilFilingDeadline < 0
}

// UsesDefaultRule reports whether the state fell back to the DEFAULT rule.
func (c LienCase) UsesDefaultRule() bool {
	return c.RuleKey == DefaultStateKey
}

// Status returns the disambiguated filing status.
func (c LienCase) Status() FilingStatus {
	switch {
	case !c.HasFilingDeadline():
		return FilingUnknown
	case c.DaysUntilFilingDeadline < 0:
		return FilingPassed
	case c.WarningLevel == WarningRed:
		return FilingUrgent
	default:
		return FilingOpen
	}
}

// Clock returns the current instant.
type Clock func() time.Time

// Calculator turns a rule table and work dates into LienCases.
type Calculator struct {
	rules *RuleTable
	now   Clock
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithClock overrides the system clock used by Calculate.
func WithClock(now Clock) CalculatorOption {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalculator builds a Calculator over rules. A nil table uses the
// built-in DefaultRuleTable.
func NewCalculator(rules *RuleTable, opts ...CalculatorOption) *Calculator {
	if rules == nil {
		rules = DefaultRuleTable()
	}
	c := &Calculator{rules: rules, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules exposes the table the calculator resolves against.
func (c *Calculator) Rules() *RuleTable {
	return c.rules
}

// Calculate projects deadlines for state and the optional work dates as of
// today according to the calculator's clock.
func (c *Calculator) Calculate(state string, firstWork, lastWork *time.Time) LienCase {
	return c.CalculateAt(state, firstWork, lastWork, c.now())
}

// CalculateAt projects deadlines as of asOf. Missing dates leave the
// dependent deadlines nil; with no last work date DaysUntilFilingDeadline
// stays 0 and HasFilingDeadline reports false.
func (c *Calculator) CalculateAt(state string, firstWork, lastWork *time.Time, asOf time.Time) LienCase {
	rule, key := c.rules.Resolve(state)
	today := common.DateOnly(asOf)

	lc := LienCase{
		State:         normalizeCode(state),
		RuleKey:       key,
		Rule:          rule,
		FirstWorkDate: dateCopy(firstWork),
		LastWorkDate:  dateCopy(lastWork),
		AsOf:          today,
	}

	if firstWork != nil && rule.PreliminaryNoticeRequired {
		d := common.AddDays(*firstWork, rule.PreliminaryNoticeDays)
		lc.PreliminaryNoticeDeadline = &d
	}

	if lastWork != nil {
		filing := common.AddDays(*lastWork, rule.LienFilingDays)
		enforcement := common.AddDays(filing, rule.EnforcementDays)
		lc.LienFilingDeadline = &filing
		lc.EnforcementDeadline = &enforcement
		lc.DaysUntilFilingDeadline = common.DaysBetween(today, filing)
	}

	lc.WarningLevel = ClassifyWarning(lc.DaysUntilFilingDeadline)
	return lc
}

// FilingDeadline returns lastWork plus the state's filing period.
func (c *Calculator) FilingDeadline(state string, lastWork time.Time) time.Time {
	return common.AddDays(lastWork, c.rules.Rule(state).LienFilingDays)
}

func dateCopy(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := common.DateOnly(*t)
	return &d
}

//Personal.AI order the ending
