package common

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cents is an amount in integer minor currency units (US cents).
type Cents int64

// String renders c as US dollars, see FormatUSD.
func (c Cents) String() string { return FormatUSD(c) }

// FormatUSD renders an amount with a dollar sign, thousands separators and
// exactly two decimal places, e.g. 123456 -> "$1,234.56".
func FormatUSD(c Cents) string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	dollars := strconv.FormatInt(v/100, 10)
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(dollars), v%100)
}

// Decimal renders c without symbol or separators, e.g. 123456 -> "1234.56".
func (c Cents) Decimal() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// usdPattern accepts an optional leading minus and dollar sign, digits that
// are either plain or comma-grouped in threes, and one or two decimals.
var usdPattern = regexp.MustCompile(`^(-)?\$?(\d+|\d{1,3}(?:,\d{3})+)?(?:\.(\d{1,2}))?$`)

// ParseUSD parses a dollar amount such as "$1,234.5", "99" or "-.75" into
// cents.
func ParseUSD(s string) (Cents, error) {
	m := usdPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[2] == "" && m[3] == "") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var whole int64
	if m[2] != "" {
		w, err := strconv.ParseInt(strings.ReplaceAll(m[2], ",", ""), 10, 64)
		if err != nil || w > (math.MaxInt64-99)/100 {
			return 0, fmt.Errorf("invalid amount %q: out of range", s)
		}
		whole = w
	}
	frac := m[3]
	for len(frac) < 2 {
		frac += "0"
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	total := whole*100 + f
	if m[1] != "" {
		total = -total
	}
	return Cents(total), nil
}

// UnmarshalJSON accepts integer minor units or a dollar string.
func (c *Cents) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseUSD(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: want integer cents or a dollar string", raw)
	}
	*c = Cents(v)
	return nil
}

// UnmarshalYAML accepts integer minor units or a dollar string, as in
// amount_remaining: "$12,500.00". Bare decimals such as 12.5 are rejected.
func (c *Cents) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!int":
		v, err := strconv.ParseInt(strings.ReplaceAll(node.Value, "_", ""), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
		}
		*c = Cents(v)
		return nil
	case "!!str":
	default:
		return fmt.Errorf("line %d: invalid amount %q: want integer cents or a dollar string", node.Line, node.Value)
	}
	v, err := ParseUSD(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = v
	return nil
}

//Personal.AI order the ending
