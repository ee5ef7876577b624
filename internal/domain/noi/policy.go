// Package noi decides when a Notice of Intent to Lien should go out, to whom,
// and how it must be delivered. It builds on the lien rule table so notice
// timing can never disagree with the filing deadlines.
package noi

import (
	"sort"
	"strings"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// DefaultResponseDays is the owner's response period for unlisted states.
const DefaultResponseDays = 10

// Policy holds the per-state delivery and notice requirements. A Policy is
// immutable after construction and safe for concurrent use.
type Policy struct {
	noticeRequired   map[string]int
	responseDays     map[string]int
	lenderStates     map[string]struct{}
	certifiedMail    map[string]struct{}
	emailAllowed     map[string]struct{}
	specificPhrasing map[string]struct{}
}

// PolicySpec is the plain-data form of a Policy, used to build custom ones.
type PolicySpec struct {
	// NoticeRequiredDays maps states where an NOI is statutorily required to
	// the minimum days it must precede the lien filing.
	NoticeRequiredDays     map[string]int `mapstructure:"notice_required_days" json:"notice_required_days"`
	// ResponseDays maps states to the owner's response period.
	ResponseDays           map[string]int `mapstructure:"response_days" json:"response_days"`
	LenderRequiredStates   []string       `mapstructure:"lender_required_states" json:"lender_required_states"`
	CertifiedMailStates    []string       `mapstructure:"certified_mail_states" json:"certified_mail_states"`
	EmailAllowedStates     []string       `mapstructure:"email_allowed_states" json:"email_allowed_states"`
	SpecificPhrasingStates []string       `mapstructure:"specific_phrasing_states" json:"specific_phrasing_states"`
}

// NewPolicy validates spec and builds a Policy from a copy of it.
func NewPolicy(spec PolicySpec) (*Policy, error) {
	p := &Policy{
		noticeRequired:   make(map[string]int, len(spec.NoticeRequiredDays)),
		responseDays:     make(map[string]int, len(spec.ResponseDays)),
		lenderStates:     toSet(spec.LenderRequiredStates),
		certifiedMail:    toSet(spec.CertifiedMailStates),
		emailAllowed:     toSet(spec.EmailAllowedStates),
		specificPhrasing: toSet(spec.SpecificPhrasingStates),
	}
	for s, d := range spec.NoticeRequiredDays {
		if d < 0 {
			return nil, errors.New(errors.ErrCodeNOIInvalidPolicy, "notice days must not be negative").WithDetail(s)
		}
		p.noticeRequired[normalize(s)] = d
	}
	for s, d := range spec.ResponseDays {
		if d <= 0 {
			return nil, errors.New(errors.ErrCodeNOIInvalidPolicy, "response days must be positive").WithDetail(s)
		}
		p.responseDays[normalize(s)] = d
	}
	return p, nil
}

// DefaultPolicySpec returns the built-in requirements.
func DefaultPolicySpec() PolicySpec {
	return PolicySpec{
		NoticeRequiredDays:     map[string]int{"PA": 30, "CO": 10},
		ResponseDays:           map[string]int{"PA": 30, "CO": 10, "NY": 15, "IL": 15, "FL": 10, "TX": 10},
		LenderRequiredStates:   []string{"AZ", "CA", "FL", "NV", "WA"},
		CertifiedMailStates:    []string{"CA", "FL", "GA", "IL", "NY", "PA", "TX"},
		EmailAllowedStates:     []string{"CO", "NC", "NJ", "OH", "WA"},
		SpecificPhrasingStates: []string{"CA", "FL", "NY", "PA", "TX"},
	}
}

// DefaultPolicy returns a freshly built Policy from DefaultPolicySpec.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultPolicySpec())
	if err != nil {
		panic(err)
	}
	return p
}

// NoticeRequirement reports whether state mandates an NOI and its lead time.
func (p *Policy) NoticeRequirement(state string) (required bool, leadDays int) {
	d, ok := p.noticeRequired[normalize(state)]
	return ok, d
}

// ResponseDays returns the owner's response period for state.
func (p *Policy) ResponseDays(state string) int {
	if d, ok := p.responseDays[normalize(state)]; ok {
		return d
	}
	return DefaultResponseDays
}

func (p *Policy) LenderRequired(state string) bool   { return has(p.lenderStates, state) }
func (p *Policy) CertifiedMail(state string) bool    { return has(p.certifiedMail, state) }
func (p *Policy) EmailAllowed(state string) bool     { return has(p.emailAllowed, state) }
func (p *Policy) SpecificPhrasing(state string) bool { return has(p.specificPhrasing, state) }

// CertifiedMailStates lists states requiring certified mail, sorted.
func (p *Policy) CertifiedMailStates() []string { return keys(p.certifiedMail) }

func toSet(states []string) map[string]struct{} {
	m := make(map[string]struct{}, len(states))
	for _, s := range states {
		m[normalize(s)] = struct{}{}
	}
	return m
}

func has(set map[string]struct{}, state string) bool {
	_, ok := set[normalize(state)]
	return ok
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

//Personal.AI order the ending
