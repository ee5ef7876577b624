package document

import "strings"

const boldMarker = "**"

// Run is a span of text drawn in one font weight.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// word is one whitespace-delimited token, possibly mixing weights.
type word []Run

// parseLine splits a logical line into words. Matched "**" pairs toggle
// bold; a line with an odd number of markers is kept as literal plain text.
// heading reports a line wholly wrapped in one marker pair.
func parseLine(s string) (words []word, heading bool) {
	trimmed := strings.TrimSpace(s)
	markers := strings.Count(trimmed, boldMarker)
	literal := markers%2 != 0
	heading = markers == 2 && len(trimmed) > 2*len(boldMarker) &&
		strings.HasPrefix(trimmed, boldMarker) && strings.HasSuffix(trimmed, boldMarker)

	bold := false
	for _, field := range strings.Fields(trimmed) {
		if literal {
			words = append(words, word{{Text: field}})
			continue
		}
		var w word
		parts := strings.Split(field, boldMarker)
		for i, part := range parts {
			if i > 0 {
				bold = !bold
			}
			if part != "" {
				w = append(w, Run{Text: part, Bold: bold})
			}
		}
		if len(w) > 0 {
			words = append(words, w)
		}
	}
	return words, heading
}

// PlainWords returns the word sequence of text with matched bold markers
// removed, i.e. the words a reader sees on the rendered pages.
func PlainWords(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words, _ := parseLine(line)
		for _, w := range words {
			var sb strings.Builder
			for _, r := range w {
				sb.WriteString(r.Text)
			}
			out = append(out, sb.String())
		}
	}
	return out
}

//Personal.AI order the ending
