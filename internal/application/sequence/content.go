package sequence

import (
	"strconv"
	"strings"

	"github.com/turtacn/LienPilot/internal/domain/lien"
)

// copyContext carries the literal values substituted into message copy.
// Bracketed markers like [filing] are expanded at generation time; merge
// fields like {{amount}} pass through untouched.
type copyContext struct {
	label string
	place string
	r     *strings.Replacer
}

func newCopyContext(in Input, rule lien.StateLienRule, key string) copyContext {
	label, law, place := "General", "state law", "in your state"
	if key != lien.DefaultStateKey {
		name := lien.StateName(key)
		if name == "" {
			name = key
		}
		label, law, place = name, name+" law", "in "+name
	}

	contact := "reply to this message"
	switch {
	case in.BusinessPhone != "" && in.BusinessEmail != "":
		contact = "call " + in.BusinessPhone + " or email " + in.BusinessEmail
	case in.BusinessPhone != "":
		contact = "call " + in.BusinessPhone
	case in.BusinessEmail != "":
		contact = "email " + in.BusinessEmail
	}
	pay := "To pay or set up a payment plan, " + contact + "."
	payShort := "Reply or " + contact + " to pay."
	if in.PaymentLink != "" {
		pay = "Pay online at " + in.PaymentLink + " or " + contact + " to set up a payment plan."
		payShort = "Pay: " + in.PaymentLink
	}

	prelim := ""
	if rule.PreliminaryNoticeRequired {
		prelim = capitalize(law) + " also requires a preliminary notice within " +
			strconv.Itoa(rule.PreliminaryNoticeDays) + " days of the first day of work to preserve these rights. "
	}

	return copyContext{
		label: label,
		place: place,
		r: strings.NewReplacer(
			"[business]", strings.TrimSpace(in.BusinessName),
			"[law]", law,
			"[Law]", capitalize(law),
			"[place]", place,
			"[filing]", strconv.Itoa(rule.LienFilingDays),
			"[prelim]", prelim,
			"[pay]", pay,
			"[payShort]", payShort,
		),
	}
}

func (c copyContext) expand(s string) string { return c.r.Replace(s) }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type stepContent struct {
	subject string
	body    string
}

type stepWriter func(cc copyContext, ch Channel) stepContent

// write picks the short copy for SMS and the long copy otherwise; phone
// steps are read aloud, so they get a call-script prefix.
func write(cc copyContext, ch Channel, subject, long, short string) stepContent {
	body := long
	switch ch {
	case ChannelSMS:
		body = short
	case ChannelPhone:
		body = "Call script: " + long
	}
	return stepContent{subject: cc.expand(subject), body: cc.expand(body)}
}

func contentFor(t Tone) [StepCount]stepWriter {
	switch t {
	case ToneFriendly, ToneCasual:
		return friendlySet
	case ToneFirm:
		return firmSet
	default:
		return professionalSet
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Professional (default)
// ─────────────────────────────────────────────────────────────────────────────

var professionalSet = [StepCount]stepWriter{
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Invoice {{invoice_number}} is {{days_past_due}} days past due",
			"Hello {{customer_name}}, our records show that invoice {{invoice_number}} for {{amount}} for work at {{property_address}} is {{days_past_due}} days past due. "+
				"As the contractor who improved this property, [business] holds mechanics lien rights under [law], which allow a lien to be recorded within [filing] days of the last day of work. "+
				"[prelim]We would much rather settle this directly. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) for {{property_address}} is {{days_past_due}} days past due. "+
				"Lien rights under [law] run [filing] days from the last day of work. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Time-sensitive: invoice {{invoice_number}} and your lien deadline",
			"{{customer_name}}, invoice {{invoice_number}} for {{amount}} remains unpaid at {{days_past_due}} days past due. "+
				"The [filing]-day window to record a mechanics lien against {{property_address}} is running. "+
				"Please pay or contact us this week so we can avoid further action. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"The [filing]-day lien window for {{property_address}} is running. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Intent to file a mechanics lien - invoice {{invoice_number}}",
			"{{customer_name}}, invoice {{invoice_number}} for {{amount}} is now {{days_past_due}} days past due. "+
				"Unless payment is received, [business] intends to send a formal Notice of Intent to Lien and record a mechanics lien against {{property_address}} within the [filing]-day period allowed by [law]. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"We intend to file a mechanics lien on {{property_address}} within the [filing]-day period. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Final notice before lien filing - invoice {{invoice_number}}",
			"FINAL NOTICE: {{customer_name}}, invoice {{invoice_number}} for {{amount}} is {{days_past_due}} days past due. "+
				"This is our last reminder before we record a mechanics lien against {{property_address}}. "+
				"[Law] gives us [filing] days from the last day of work to file, and we will act before that deadline. [pay]",
			"FINAL NOTICE from [business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"A lien on {{property_address}} will be filed within the [filing]-day deadline. [payShort]")
	},
}

// ─────────────────────────────────────────────────────────────────────────────
// Friendly / casual
// ─────────────────────────────────────────────────────────────────────────────

var friendlySet = [StepCount]stepWriter{
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"A quick note about invoice {{invoice_number}}",
			"Hi {{customer_name}}! Just a friendly reminder that invoice {{invoice_number}} for {{amount}} for the work at {{property_address}} is {{days_past_due}} days past due. "+
				"So you know where things stand, contractors [place] have [filing] days after the last day of work to file a mechanics lien if a bill goes unpaid. "+
				"[prelim]We hope it never comes to that! [pay]",
			"Hi {{customer_name}}, friendly reminder from [business]: invoice {{invoice_number}} ({{amount}}) for {{property_address}} is {{days_past_due}} days past due. "+
				"Lien rights [place] last [filing] days after work ends. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Checking in on invoice {{invoice_number}}",
			"Hi {{customer_name}}, we're checking in because invoice {{invoice_number}} for {{amount}} is now {{days_past_due}} days past due. "+
				"The [filing]-day lien window for {{property_address}} keeps ticking, and we'd love to wrap this up together before it matters. [pay]",
			"Hi {{customer_name}}, [business] here. Invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due and the [filing]-day lien window for {{property_address}} is ticking. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"We need to hear from you about invoice {{invoice_number}}",
			"Hi {{customer_name}}, we haven't been able to resolve invoice {{invoice_number}} for {{amount}}, now {{days_past_due}} days past due. "+
				"We really don't want to, but if we can't settle it soon [business] will need to send a Notice of Intent to Lien for {{property_address}} within the [filing]-day period [place]. [pay]",
			"Hi {{customer_name}}, [business] again. Invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"We'll need to start the lien process for {{property_address}} within the [filing]-day period if we can't settle up. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Last reminder before lien filing - invoice {{invoice_number}}",
			"Hi {{customer_name}}, this is our last reminder about invoice {{invoice_number}} for {{amount}}, which is {{days_past_due}} days past due. "+
				"To protect our rights within the [filing]-day deadline, [business] will file a mechanics lien against {{property_address}} if we don't hear from you. [pay]",
			"Last reminder from [business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"We'll file a lien on {{property_address}} within the [filing]-day deadline unless we hear from you. [payShort]")
	},
}

// ─────────────────────────────────────────────────────────────────────────────
// Firm
// ─────────────────────────────────────────────────────────────────────────────

var firmSet = [StepCount]stepWriter{
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Past due: invoice {{invoice_number}}",
			"{{customer_name}}, invoice {{invoice_number}} for {{amount}} for work at {{property_address}} is {{days_past_due}} days past due. "+
				"[business] is entitled to record a mechanics lien under [law] within [filing] days of the last day of work. "+
				"[prelim]Payment is required now. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) for {{property_address}} is {{days_past_due}} days past due. "+
				"We may record a lien under [law] within [filing] days. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Urgent: lien deadline approaching on invoice {{invoice_number}}",
			"{{customer_name}}, invoice {{invoice_number}} for {{amount}} is {{days_past_due}} days past due. "+
				"The [filing]-day lien filing period for {{property_address}} is running and we will protect our rights. "+
				"Pay in full immediately. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"The [filing]-day lien period for {{property_address}} is running. Pay now. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"Notice of intent to lien - invoice {{invoice_number}}",
			"{{customer_name}}, invoice {{invoice_number}} for {{amount}} is {{days_past_due}} days past due. "+
				"[business] will serve a Notice of Intent to Lien and record a mechanics lien against {{property_address}} within the [filing]-day period allowed by [law] unless paid in full. [pay]",
			"[business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"A Notice of Intent to Lien on {{property_address}} will follow within the [filing]-day period. [payShort]")
	},
	func(cc copyContext, ch Channel) stepContent {
		return write(cc, ch,
			"FINAL NOTICE: lien filing on invoice {{invoice_number}}",
			"FINAL NOTICE: {{customer_name}}, invoice {{invoice_number}} for {{amount}} is {{days_past_due}} days past due. "+
				"Without full payment, [business] will record a mechanics lien against {{property_address}} before the [filing]-day deadline under [law] expires. "+
				"This is the last notice before filing. [pay]",
			"FINAL NOTICE from [business]: {{customer_name}}, invoice {{invoice_number}} ({{amount}}) is {{days_past_due}} days past due. "+
				"A lien on {{property_address}} will be filed before the [filing]-day deadline. [payShort]")
	},
}

//Personal.AI order the ending
