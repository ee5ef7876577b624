// Package document lays composed notice text onto fixed-size pages and
// serializes the result as PDF. Rendering runs in two phases: the body is
// paginated first, then every page is stamped with its footer and
// "Page X of Y" once the total is known.
package document

import (
	"fmt"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// Font size and spacing bounds accepted by Validate.
const (
	DefaultFontSize    = 11.0
	DefaultLineSpacing = 1.4
	MinFontSize        = 6.0
	MaxFontSize        = 24.0
	MinLineSpacing     = 1.0
	MaxLineSpacing     = 3.0

	DefaultFooterText = "This notice is sent by the original contractor, not a debt collection agency. It is not legal advice."
)

// Options control one render.
type Options struct {
	IncludeLetterhead bool    `json:"include_letterhead" mapstructure:"include_letterhead"`
	IncludeFooter     bool    `json:"include_footer" mapstructure:"include_footer"`
	FontSize          float64 `json:"font_size" mapstructure:"font_size"`
	LineSpacing       float64 `json:"line_spacing" mapstructure:"line_spacing"`
	FooterText        string  `json:"footer_text" mapstructure:"footer_text"`
}

// DefaultOptions returns letterhead and footer on, 11pt text at 1.4 spacing.
func DefaultOptions() Options {
	return Options{
		IncludeLetterhead: true,
		IncludeFooter:     true,
		FontSize:          DefaultFontSize,
		LineSpacing:       DefaultLineSpacing,
		FooterText:        DefaultFooterText,
	}
}

// withDefaults fills zero numeric fields and an empty footer text.
func (o Options) withDefaults() Options {
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LineSpacing == 0 {
		o.LineSpacing = DefaultLineSpacing
	}
	if o.FooterText == "" {
		o.FooterText = DefaultFooterText
	}
	return o
}

// Overrides is a partial Options as sent by callers. Nil fields keep the
// base value, so {"font_size": 12} leaves the letterhead and footer alone.
type Overrides struct {
	IncludeLetterhead *bool    `json:"include_letterhead,omitempty" yaml:"include_letterhead"`
	IncludeFooter     *bool    `json:"include_footer,omitempty" yaml:"include_footer"`
	FontSize          *float64 `json:"font_size,omitempty" yaml:"font_size"`
	LineSpacing       *float64 `json:"line_spacing,omitempty" yaml:"line_spacing"`
	FooterText        *string  `json:"footer_text,omitempty" yaml:"footer_text"`
}

// Apply returns base with the set fields of o replaced. A nil o returns base.
func (o *Overrides) Apply(base Options) Options {
	if o == nil {
		return base
	}
	if o.IncludeLetterhead != nil {
		base.IncludeLetterhead = *o.IncludeLetterhead
	}
	if o.IncludeFooter != nil {
		base.IncludeFooter = *o.IncludeFooter
	}
	if o.FontSize != nil {
		base.FontSize = *o.FontSize
	}
	if o.LineSpacing != nil {
		base.LineSpacing = *o.LineSpacing
	}
	if o.FooterText != nil {
		base.FooterText = *o.FooterText
	}
	return base
}

// Validate checks numeric bounds.
func (o Options) Validate() error {
	if o.FontSize < MinFontSize || o.FontSize > MaxFontSize {
		return errors.New(errors.ErrCodeDocumentInvalidOption, "font size out of range").
			WithDetail(fmt.Sprintf("font_size=%.1f, want %.0f..%.0f", o.FontSize, MinFontSize, MaxFontSize))
	}
	if o.LineSpacing < MinLineSpacing || o.LineSpacing > MaxLineSpacing {
		return errors.New(errors.ErrCodeDocumentInvalidOption, "line spacing out of range").
			WithDetail(fmt.Sprintf("line_spacing=%.2f, want %.1f..%.1f", o.LineSpacing, MinLineSpacing, MaxLineSpacing))
	}
	return nil
}

// Geometry is a page size and uniform margin in points.
type Geometry struct {
	Width  float64
	Height float64
	Margin float64
}

// LetterPage is US Letter with one-inch margins.
var LetterPage = Geometry{Width: 612, Height: 792, Margin: 72}

// ContentWidth is the usable line width.
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

//Personal.AI order the ending
