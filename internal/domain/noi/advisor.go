package noi

import (
	"fmt"
	"time"

	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// Window offsets, in days.
const (
	EarliestAfterDueDays   = 15
	OptimalAfterDueDays    = 30
	LatestBeforeFilingDays = 30
	// CriticalDays is the remaining-days threshold at which deadline pressure
	// overrides window position.
	CriticalDays = 30
)

// ClaimantRole is the filer's relationship to the project.
type ClaimantRole string

const (
	RolePrimeContractor  ClaimantRole = "prime_contractor"
	RoleSubcontractor    ClaimantRole = "subcontractor"
	RoleMaterialSupplier ClaimantRole = "material_supplier"
)

// ParseRole maps a role string to a ClaimantRole; "" means prime contractor.
func ParseRole(s string) (ClaimantRole, error) {
	switch ClaimantRole(s) {
	case "":
		return RolePrimeContractor, nil
	case RolePrimeContractor, RoleSubcontractor, RoleMaterialSupplier:
		return ClaimantRole(s), nil
	}
	return "", errors.New(errors.ErrCodeNOIInvalidRole, "unknown claimant role").WithDetail(s)
}

// Recipient is a party that must receive the notice.
type Recipient string

const (
	RecipientOwner             Recipient = "owner"
	RecipientGeneralContractor Recipient = "general_contractor"
	RecipientLender            Recipient = "lender"
)

// Urgency grades a send decision.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Window is the recommended send period. Latest may precede Earliest for
// short-fuse states; use Empty before assuming Earliest <= Latest.
type Window struct {
	Earliest time.Time `json:"earliest"`
	Optimal  time.Time `json:"optimal"`
	Latest   time.Time `json:"latest"`
}

// Empty reports whether the window is degenerate.
func (w Window) Empty() bool {
	return w.Latest.Before(w.Earliest)
}

// Requirements are the rule-derived notice obligations.
type Requirements struct {
	PreliminaryNoticeRequired bool `json:"preliminary_notice_required"`
	PreliminaryNoticeDays     int  `json:"preliminary_notice_days"`
	NOIRequired               bool `json:"noi_required"`
	NOILeadDays               int  `json:"noi_lead_days"`
	LienFilingDays            int  `json:"lien_filing_days"`
	EnforcementDays           int  `json:"enforcement_days"`
}

// DeliveryConstraints describe how the notice may be delivered.
type DeliveryConstraints struct {
	CertifiedMailRequired    bool `json:"certified_mail_required"`
	EmailAllowed             bool `json:"email_allowed"`
	SpecificPhrasingRequired bool `json:"specific_phrasing_required"`
}

// Input carries the case facts the advisor needs.
type Input struct {
	State          string
	Role           ClaimantRole
	FirstWorkDate  *time.Time
	LastWorkDate   time.Time
	InvoiceDueDate time.Time
}

// Calculation is the full notice-of-intent assessment for one case.
type Calculation struct {
	State                     string              `json:"state"`
	RuleKey                   string              `json:"rule_key"`
	Role                      ClaimantRole        `json:"role"`
	Requirements              Requirements        `json:"requirements"`
	LastWorkDate              time.Time           `json:"last_work_date"`
	InvoiceDueDate            time.Time           `json:"invoice_due_date"`
	PreliminaryNoticeDeadline *time.Time          `json:"preliminary_notice_deadline,omitempty"`
	LienFilingDeadline        time.Time           `json:"lien_filing_deadline"`
	EnforcementDeadline       time.Time           `json:"enforcement_deadline"`
	NOISendBy                 *time.Time          `json:"noi_send_by,omitempty"`
	Window                    Window              `json:"window"`
	RequiredRecipients        []Recipient         `json:"required_recipients"`
	Delivery                  DeliveryConstraints `json:"delivery"`
	ResponseDays              int                 `json:"response_days"`
	Notes                     string              `json:"notes"`
}

// Decision is the answer to "should the notice go out now".
type Decision struct {
	ShouldSend            bool    `json:"should_send"`
	Reason                string  `json:"reason"`
	Urgency               Urgency `json:"urgency"`
	DaysUntilLienDeadline int     `json:"days_until_lien_deadline"`
}

// Advisor computes notice-of-intent timing from a rule table and a policy.
type Advisor struct {
	rules  *lien.RuleTable
	policy *Policy
	calc   *lien.Calculator
}

// NewAdvisor builds an Advisor. Nil arguments select the built-in defaults.
func NewAdvisor(rules *lien.RuleTable, policy *Policy) *Advisor {
	if rules == nil {
		rules = lien.DefaultRuleTable()
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Advisor{rules: rules, policy: policy, calc: lien.NewCalculator(rules)}
}

// Policy exposes the advisor's delivery policy.
func (a *Advisor) Policy() *Policy {
	return a.policy
}

// Calculate assembles the full assessment. Policy lookups use the same
// resolved key as the rule table, so unmodeled states behave like DEFAULT.
func (a *Advisor) Calculate(in Input) (*Calculation, error) {
	role, err := ParseRole(string(in.Role))
	if err != nil {
		return nil, err
	}
	if in.LastWorkDate.IsZero() || in.InvoiceDueDate.IsZero() {
		return nil, errors.New(errors.ErrCodeNOIMissingDates, "last work date and invoice due date are required")
	}

	rule, key := a.rules.Resolve(in.State)
	lastWork := common.DateOnly(in.LastWorkDate)
	due := common.DateOnly(in.InvoiceDueDate)

	lc := a.calc.CalculateAt(in.State, in.FirstWorkDate, &lastWork, lastWork)
	filing := *lc.LienFilingDeadline

	noiRequired, lead := a.policy.NoticeRequirement(key)
	out := &Calculation{
		State:   lc.State,
		RuleKey: key,
		Role:    role,
		Requirements: Requirements{
			PreliminaryNoticeRequired: rule.PreliminaryNoticeRequired,
			PreliminaryNoticeDays:     rule.PreliminaryNoticeDays,
			NOIRequired:               noiRequired,
			NOILeadDays:               lead,
			LienFilingDays:            rule.LienFilingDays,
			EnforcementDays:           rule.EnforcementDays,
		},
		LastWorkDate:              lastWork,
		InvoiceDueDate:            due,
		PreliminaryNoticeDeadline: lc.PreliminaryNoticeDeadline,
		LienFilingDeadline:        filing,
		EnforcementDeadline:       *lc.EnforcementDeadline,
		Window: Window{
			Earliest: common.AddDays(due, EarliestAfterDueDays),
			Optimal:  common.AddDays(due, OptimalAfterDueDays),
			Latest:   common.AddDays(filing, -LatestBeforeFilingDays),
		},
		RequiredRecipients: a.recipients(key, role),
		Delivery: DeliveryConstraints{
			CertifiedMailRequired:    a.policy.CertifiedMail(key),
			EmailAllowed:             a.policy.EmailAllowed(key),
			SpecificPhrasingRequired: a.policy.SpecificPhrasing(key),
		},
		ResponseDays: a.policy.ResponseDays(key),
		Notes:        rule.Notes,
	}
	if noiRequired {
		sendBy := common.AddDays(filing, -lead)
		out.NOISendBy = &sendBy
	}
	return out, nil
}

func (a *Advisor) recipients(key string, role ClaimantRole) []Recipient {
	out := []Recipient{RecipientOwner}
	if role == RoleSubcontractor || role == RoleMaterialSupplier {
		out = append(out, RecipientGeneralContractor)
	}
	if a.policy.LenderRequired(key) {
		out = append(out, RecipientLender)
	}
	return out
}

// ShouldSendNow evaluates the send decision as a priority cascade. Deadline
// pressure is checked first and always wins over window position.
func (a *Advisor) ShouldSendNow(c *Calculation, now time.Time) Decision {
	today := common.DateOnly(now)
	days := common.DaysBetween(today, c.LienFilingDeadline)
	d := Decision{DaysUntilLienDeadline: days}

	switch {
	case days <= 0:
		d.Urgency = UrgencyCritical
		d.Reason = fmt.Sprintf("Lien filing deadline %s has passed or is today; too late for a notice of intent, consult an attorney.",
			common.FormatDate(c.LienFilingDeadline))
	case days <= CriticalDays:
		d.ShouldSend, d.Urgency = true, UrgencyCritical
		d.Reason = fmt.Sprintf("Only %d days remain before the lien filing deadline %s; send immediately.",
			days, common.FormatDate(c.LienFilingDeadline))
	case today.Before(c.Window.Earliest):
		d.Urgency = UrgencyLow
		d.Reason = fmt.Sprintf("Too early; the notice window opens on %s.", common.FormatDate(c.Window.Earliest))
	case today.After(c.Window.Optimal):
		d.ShouldSend, d.Urgency = true, UrgencyHigh
		d.Reason = fmt.Sprintf("Overdue; the optimal send date was %s.", common.FormatDate(c.Window.Optimal))
	case today.After(c.Window.Earliest) && today.Before(c.Window.Latest):
		d.ShouldSend, d.Urgency = true, UrgencyMedium
		d.Reason = "Within the optimal notice window."
	default:
		d.Urgency = UrgencyLow
		d.Reason = fmt.Sprintf("Wait longer for effectiveness; the optimal send date is %s.", common.FormatDate(c.Window.Optimal))
	}
	return d
}

// ResponseDeadline returns sent plus the state's response period.
func (a *Advisor) ResponseDeadline(sent time.Time, state string) time.Time {
	return common.AddDays(sent, a.policy.ResponseDays(a.rules.Normalize(state)))
}

//Personal.AI order the ending
