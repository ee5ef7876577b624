package document

import (
	"fmt"
	"strings"
)

// Measurer reports the advance width of text in points.
type Measurer interface {
	Width(text string, bold bool, size float64) float64
}

// Letterhead is the sender block printed at the top of page one.
type Letterhead struct {
	Name    string
	Address string
	Contact string
	License string
}

// Empty reports whether there is nothing to print.
func (l Letterhead) Empty() bool {
	return strings.TrimSpace(l.Name+l.Address+l.Contact+l.License) == ""
}

// Line is one positioned line of runs. Y is the baseline.
type Line struct {
	Runs    []Run   `json:"runs"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Heading bool    `json:"heading,omitempty"`
	Align   string  `json:"align,omitempty"`
}

// Text joins the line's runs.
func (l Line) Text() string {
	var sb strings.Builder
	for _, r := range l.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Page is one laid-out page. Footer and Label are empty until Stamp runs.
type Page struct {
	Number     int     `json:"number"`
	Total      int     `json:"total"`
	Letterhead []Line  `json:"letterhead,omitempty"`
	RuleY      float64 `json:"rule_y,omitempty"`
	Body       []Line  `json:"body"`
	FooterRule float64 `json:"footer_rule,omitempty"`
	Footer     []Line  `json:"footer,omitempty"`
	Label      *Line   `json:"label,omitempty"`
}

// Layout is the full set of pages plus the geometry they were laid on.
type Layout struct {
	Geometry Geometry `json:"geometry"`
	Options  Options  `json:"options"`
	Pages    []Page   `json:"pages"`
}

// BodyWords returns the words of every body line across all pages, in order.
func (l *Layout) BodyWords() []string {
	var out []string
	for _, p := range l.Pages {
		for _, line := range p.Body {
			out = append(out, strings.Fields(line.Text())...)
		}
	}
	return out
}

const (
	letterheadNameBump = 4.0
	ruleGap            = 6.0
	footerGap          = 10.0
)

func footerSize(o Options) float64 {
	s := o.FontSize - 2
	if s < MinFontSize {
		s = MinFontSize
	}
	return s
}

// wrapper performs greedy line filling against a maximum width.
type wrapper struct {
	m     Measurer
	size  float64
	width float64
}

func (w wrapper) runsWidth(runs []Run) float64 {
	var total float64
	for _, r := range runs {
		total += w.m.Width(r.Text, r.Bold, w.size)
	}
	return total
}

// wrap fills words into lines no wider than w.width. A word wider than a
// full line is split at rune boundaries.
func (w wrapper) wrap(words []word) [][]Run {
	var (
		lines   [][]Run
		current []Run
		used    float64
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, mergeRuns(current))
		}
		current, used = nil, 0
	}
	for _, wd := range words {
		ww := w.runsWidth(wd)
		if ww > w.width {
			flush()
			pieces := w.split(wd)
			for i, piece := range pieces {
				if i == len(pieces)-1 {
					current, used = piece, w.runsWidth(piece)
					break
				}
				lines = append(lines, mergeRuns(piece))
			}
			continue
		}
		if len(current) == 0 {
			current, used = append([]Run(nil), wd...), ww
			continue
		}
		space := Run{Text: " ", Bold: current[len(current)-1].Bold && wd[0].Bold}
		sw := w.runsWidth([]Run{space})
		if used+sw+ww <= w.width {
			current = append(current, space)
			current = append(current, wd...)
			used += sw + ww
			continue
		}
		flush()
		current, used = append([]Run(nil), wd...), ww
	}
	flush()
	return lines
}

// split breaks an over-long word into pieces that each fit a line.
func (w wrapper) split(wd word) [][]Run {
	var (
		pieces  [][]Run
		current []Run
		used    float64
	)
	for _, r := range wd {
		for _, ch := range r.Text {
			s := string(ch)
			cw := w.m.Width(s, r.Bold, w.size)
			if used+cw > w.width && len(current) > 0 {
				pieces = append(pieces, current)
				current, used = nil, 0
			}
			current = appendRune(current, s, r.Bold)
			used += cw
		}
	}
	if len(current) > 0 {
		pieces = append(pieces, current)
	}
	return pieces
}

func appendRune(runs []Run, s string, bold bool) []Run {
	if n := len(runs); n > 0 && runs[n-1].Bold == bold {
		runs[n-1].Text += s
		return runs
	}
	return append(runs, Run{Text: s, Bold: bold})
}

func mergeRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].Bold == r.Bold {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Phase 1: pagination
// ─────────────────────────────────────────────────────────────────────────────

// Paginate lays text onto pages. Blank lines become vertical space and are
// dropped at the top of a continuation page. The region reserved for the
// footer is sized from opts so Stamp never overlaps body text.
func Paginate(text string, head Letterhead, opts Options, g Geometry, m Measurer) *Layout {
	opts = opts.withDefaults()
	lh := opts.FontSize * opts.LineSpacing
	body := wrapper{m: m, size: opts.FontSize, width: g.ContentWidth()}
	bottom := g.Height - g.Margin - footerHeight(opts, g, m)

	layout := &Layout{Geometry: g, Options: opts}
	cur := Page{}
	y := g.Margin

	if opts.IncludeLetterhead && !head.Empty() {
		y = layoutLetterhead(&cur, head, opts, g, m)
	}

	newPage := func() {
		layout.Pages = append(layout.Pages, cur)
		cur = Page{}
		y = g.Margin
	}

	for _, raw := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		words, heading := parseLine(raw)
		if len(words) == 0 {
			if len(cur.Body) == 0 && len(layout.Pages) > 0 {
				continue
			}
			y += lh
			continue
		}
		for _, runs := range body.wrap(words) {
			if y+lh > bottom && len(cur.Body) > 0 {
				newPage()
			}
			cur.Body = append(cur.Body, Line{
				Runs:    runs,
				X:       g.Margin,
				Y:       y + opts.FontSize,
				Size:    opts.FontSize,
				Heading: heading,
			})
			y += lh
		}
	}
	layout.Pages = append(layout.Pages, cur)
	return layout
}

func layoutLetterhead(p *Page, head Letterhead, opts Options, g Geometry, m Measurer) float64 {
	y := g.Margin
	add := func(text string, bold bool, size float64) {
		if strings.TrimSpace(text) == "" {
			return
		}
		w := wrapper{m: m, size: size, width: g.ContentWidth()}
		words, _ := parseLine(text)
		for i := range words {
			for j := range words[i] {
				words[i][j].Bold = bold
			}
		}
		for _, runs := range w.wrap(words) {
			p.Letterhead = append(p.Letterhead, Line{Runs: runs, X: g.Margin, Y: y + size, Size: size})
			y += size * opts.LineSpacing
		}
	}
	add(head.Name, true, opts.FontSize+letterheadNameBump)
	add(head.Address, false, opts.FontSize)
	add(head.Contact, false, opts.FontSize)
	add(head.License, false, opts.FontSize)
	p.RuleY = y + ruleGap/2
	return p.RuleY + ruleGap*2
}

// footerLines wraps the footer disclaimer at the footer size.
func footerLines(opts Options, g Geometry, m Measurer) [][]Run {
	if !opts.IncludeFooter {
		return nil
	}
	w := wrapper{m: m, size: footerSize(opts), width: g.ContentWidth()}
	words, _ := parseLine(opts.FooterText)
	return w.wrap(words)
}

// footerHeight is the space above the bottom margin reserved for the footer
// disclaimer and the page label.
func footerHeight(opts Options, g Geometry, m Measurer) float64 {
	fs := footerSize(opts)
	n := len(footerLines(opts, g, m)) + 1
	return footerGap + float64(n)*fs*MinLineSpacing*1.2
}

// ─────────────────────────────────────────────────────────────────────────────
// Phase 2: stamping
// ─────────────────────────────────────────────────────────────────────────────

// Stamp numbers every page and places the footer disclaimer and the
// "Page X of Y" label. It is idempotent.
func Stamp(l *Layout, m Measurer) {
	opts, g := l.Options, l.Geometry
	fs := footerSize(opts)
	step := fs * MinLineSpacing * 1.2
	lines := footerLines(opts, g, m)
	top := g.Height - g.Margin - footerHeight(opts, g, m)
	total := len(l.Pages)

	for i := range l.Pages {
		p := &l.Pages[i]
		p.Number, p.Total = i+1, total
		p.FooterRule = top + footerGap/2
		p.Footer = p.Footer[:0]
		y := top + footerGap
		for _, runs := range lines {
			p.Footer = append(p.Footer, Line{Runs: runs, X: g.Margin, Y: y + fs, Size: fs})
			y += step
		}
		label := PageLabel(p.Number, total)
		lw := m.Width(label, false, fs)
		p.Label = &Line{
			Runs:  []Run{{Text: label}},
			X:     g.Width - g.Margin - lw,
			Y:     y + fs,
			Size:  fs,
			Align: "right",
		}
	}
}

// PageLabel formats the page counter.
func PageLabel(n, total int) string {
	return fmt.Sprintf("Page %d of %d", n, total)
}

// BuildLayout runs both phases.
func BuildLayout(text string, head Letterhead, opts Options, g Geometry, m Measurer) *Layout {
	l := Paginate(text, head, opts, g, m)
	Stamp(l, m)
	return l
}

//Personal.AI order the ending
