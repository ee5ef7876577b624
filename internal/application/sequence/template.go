// Package sequence generates the four-step collection sequence that
// escalates toward a state's lien deadline. Message bodies are templates:
// merge fields stay as {{snake_case}} tokens for the sequencing system to
// substitute at send time.
package sequence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// Merge fields emitted by the generator.
const (
	FieldCustomerName    = "customer_name"
	FieldInvoiceNumber   = "invoice_number"
	FieldAmount          = "amount"
	FieldDaysPastDue     = "days_past_due"
	FieldPropertyAddress = "property_address"
)

// MergeFields lists every field the generator may emit.
var MergeFields = []string{
	FieldAmount,
	FieldCustomerName,
	FieldDaysPastDue,
	FieldInvoiceNumber,
	FieldPropertyAddress,
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-z][a-z0-9_]*)\}\}`)

// Token returns the literal placeholder for a field, e.g. "{{amount}}".
func Token(field string) string {
	return "{{" + field + "}}"
}

// Placeholders returns the distinct fields referenced by text, sorted.
func Placeholders(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MessageTemplate is text with unresolved merge fields plus the set of
// fields it requires.
type MessageTemplate struct {
	Text                 string   `json:"text"`
	RequiredPlaceholders []string `json:"required_placeholders"`
}

// NewMessageTemplate derives the required fields from text.
func NewMessageTemplate(text string) MessageTemplate {
	return MessageTemplate{Text: text, RequiredPlaceholders: Placeholders(text)}
}

// Fill substitutes values into the template. Every required field must be
// present; extra values are ignored.
func (m MessageTemplate) Fill(values map[string]string) (string, error) {
	var missing []string
	for _, f := range m.RequiredPlaceholders {
		if _, ok := values[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "", errors.New(errors.ErrCodeSequenceMissingPlaceholder, "missing merge field values").
			WithDetail(strings.Join(missing, ", "))
	}
	return placeholderPattern.ReplaceAllStringFunc(m.Text, func(tok string) string {
		field := tok[2 : len(tok)-2]
		if v, ok := values[field]; ok {
			return v
		}
		return tok
	}), nil
}

//Personal.AI order the ending
