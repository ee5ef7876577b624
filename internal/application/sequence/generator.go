package sequence

import (
	"fmt"
	"strings"

	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// Cadence of the generated sequence, in days past due.
const (
	TriggerDaysPastDue = 30
	StepIntervalDays   = 10
	StepCount          = 4
)

// Tone selects a content set.
type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneFirm         Tone = "firm"
	ToneCasual       Tone = "casual"
)

// ParseTone accepts the four tones case-insensitively; empty means professional.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ToneProfessional, nil
	case ToneFriendly, ToneProfessional, ToneFirm, ToneCasual:
		return t, nil
	default:
		return "", errors.New(errors.ErrCodeSequenceInvalidInput, "unknown tone").WithDetail(s)
	}
}

// Channel is a delivery medium handled by the sequencing system.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// Channels are the business's enabled mediums.
type Channels struct {
	SMS   bool `json:"sms" yaml:"sms"`
	Email bool `json:"email" yaml:"email"`
	Phone bool `json:"phone" yaml:"phone"`
}

func (c Channels) enabled(ch Channel) bool {
	switch ch {
	case ChannelSMS:
		return c.SMS
	case ChannelEmail:
		return c.Email
	case ChannelPhone:
		return c.Phone
	}
	return false
}

func (c Channels) none() bool { return !c.SMS && !c.Email && !c.Phone }

// Stage is the escalation step a message belongs to.
type Stage string

const (
	StageAwareness Stage = "awareness"
	StageUrgency   Stage = "urgency"
	StageIntent    Stage = "intent"
	StageFinal     Stage = "final"
)

var stages = [StepCount]Stage{StageAwareness, StageUrgency, StageIntent, StageFinal}

// channelPreference orders channels per stage; the first enabled one wins.
var channelPreference = map[Stage][]Channel{
	StageAwareness: {ChannelEmail, ChannelSMS, ChannelPhone},
	StageUrgency:   {ChannelSMS, ChannelEmail, ChannelPhone},
	StageIntent:    {ChannelPhone, ChannelEmail, ChannelSMS},
	StageFinal:     {ChannelEmail, ChannelSMS, ChannelPhone},
}

// Input describes the business a sequence is generated for.
type Input struct {
	BusinessName  string   `json:"business_name" yaml:"business_name"`
	BusinessPhone string   `json:"business_phone" yaml:"business_phone"`
	BusinessEmail string   `json:"business_email" yaml:"business_email"`
	PaymentLink   string   `json:"payment_link" yaml:"payment_link"`
	Tone          Tone     `json:"tone" yaml:"tone"`
	Channels      Channels `json:"channels" yaml:"channels"`
	State         string   `json:"state" yaml:"state"`
}

// Step is one scheduled message.
type Step struct {
	Number      int              `json:"number"`
	DaysPastDue int              `json:"days_past_due"`
	DelayDays   int              `json:"delay_days"`
	Stage       Stage            `json:"stage"`
	Channel     Channel          `json:"channel"`
	Subject     *MessageTemplate `json:"subject,omitempty"`
	Body        MessageTemplate  `json:"body"`
}

// Sequence is the template object handed to the sequencing system.
type Sequence struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	TriggerDaysPastDue    int    `json:"trigger_days_past_due"`
	Tone                  Tone   `json:"tone"`
	State                 string `json:"state"`
	RuleKey               string `json:"rule_key"`
	LienFilingDays        int    `json:"lien_filing_days"`
	PreliminaryNoticeDays int    `json:"preliminary_notice_days"`
	Steps                 []Step `json:"steps"`
}

// RequiredPlaceholders is the union of every step's fields, sorted.
func (s *Sequence) RequiredPlaceholders() []string {
	var sb strings.Builder
	for _, st := range s.Steps {
		if st.Subject != nil {
			sb.WriteString(st.Subject.Text)
		}
		sb.WriteString(st.Body.Text)
	}
	return Placeholders(sb.String())
}

// Generator builds sequences from the same rule table the calculator uses.
type Generator struct {
	rules *lien.RuleTable
}

// NewGenerator returns a generator over rules; nil means the built-in table.
func NewGenerator(rules *lien.RuleTable) *Generator {
	if rules == nil {
		rules = lien.DefaultRuleTable()
	}
	return &Generator{rules: rules}
}

// Generate produces the four-step sequence for in. When no channel is
// enabled every step goes out by email.
func (g *Generator) Generate(in Input) (*Sequence, error) {
	if strings.TrimSpace(in.BusinessName) == "" {
		return nil, errors.New(errors.ErrCodeSequenceInvalidInput, "business name is required")
	}
	tone, err := ParseTone(string(in.Tone))
	if err != nil {
		return nil, err
	}
	channels := in.Channels
	if channels.none() {
		channels.Email = true
	}

	rule, key := g.rules.Resolve(in.State)
	cc := newCopyContext(in, rule, key)
	set := contentFor(tone)

	seq := &Sequence{
		Name:                  fmt.Sprintf("Lien-aware collections (%s, %s)", cc.label, tone),
		Description:           describe(cc, rule),
		TriggerDaysPastDue:    TriggerDaysPastDue,
		Tone:                  tone,
		State:                 strings.ToUpper(strings.TrimSpace(in.State)),
		RuleKey:               key,
		LienFilingDays:        rule.LienFilingDays,
		PreliminaryNoticeDays: rule.PreliminaryNoticeDays,
	}
	for i, stage := range stages {
		ch := pickChannel(stage, channels)
		content := set[i](cc, ch)
		step := Step{
			Number:      i + 1,
			DaysPastDue: TriggerDaysPastDue + i*StepIntervalDays,
			DelayDays:   i * StepIntervalDays,
			Stage:       stage,
			Channel:     ch,
			Body:        NewMessageTemplate(content.body),
		}
		if ch == ChannelEmail {
			subj := NewMessageTemplate(content.subject)
			step.Subject = &subj
		}
		seq.Steps = append(seq.Steps, step)
	}
	return seq, nil
}

func pickChannel(stage Stage, c Channels) Channel {
	for _, ch := range channelPreference[stage] {
		if c.enabled(ch) {
			return ch
		}
	}
	return ChannelEmail
}

func describe(cc copyContext, rule lien.StateLienRule) string {
	d := fmt.Sprintf("Four reminders from %d to %d days past due that escalate toward the %d-day lien filing window %s.",
		TriggerDaysPastDue, TriggerDaysPastDue+(StepCount-1)*StepIntervalDays, rule.LienFilingDays, cc.place)
	if rule.PreliminaryNoticeRequired {
		d += fmt.Sprintf(" A preliminary notice is required within %d days of first work.", rule.PreliminaryNoticeDays)
	}
	return d
}

//Personal.AI order the ending
