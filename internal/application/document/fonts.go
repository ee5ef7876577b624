package document

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/sfnt"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// fontFamily is registered on every document from the embedded DejaVu
// Sans Condensed faces, so names and addresses are drawn as UTF-8.
const fontFamily = "DejaVuSansCondensed"

//go:embed fonts/DejaVuSansCondensed.ttf
var regularTTF []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var boldTTF []byte

// registerFonts adds the regular and bold faces to pdf.
func registerFonts(pdf *fpdf.Fpdf) error {
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularTTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldTTF)
	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentRenderFailed, "register document font")
	}
	return nil
}

// glyphCoverage answers whether both faces can draw a rune. Parsed once.
type glyphCoverage struct {
	faces []*sfnt.Font
}

var (
	coverageOnce sync.Once
	coverage     *glyphCoverage
	coverageErr  error
)

func loadCoverage() (*glyphCoverage, error) {
	coverageOnce.Do(func() {
		c := &glyphCoverage{}
		for _, ttf := range [][]byte{regularTTF, boldTTF} {
			f, err := sfnt.Parse(ttf)
			if err != nil {
				coverageErr = errors.Wrap(err, errors.ErrCodeDocumentRenderFailed, "parse document font")
				return
			}
			c.faces = append(c.faces, f)
		}
		coverage = c
	})
	return coverage, coverageErr
}

// missing returns the distinct runes of s, in order of first appearance,
// that at least one face has no glyph for. Spaces and control characters
// are never drawn and are skipped.
func (c *glyphCoverage) missing(s string) []rune {
	var (
		buf  sfnt.Buffer
		seen = make(map[rune]bool)
		out  []rune
	)
	for _, r := range s {
		if seen[r] || unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		seen[r] = true
		for _, f := range c.faces {
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// checkDrawable fails with ErrCodeDocumentRenderFailed when any of texts
// holds a character the embedded font cannot draw.
func checkDrawable(texts ...string) error {
	c, err := loadCoverage()
	if err != nil {
		return err
	}
	runes := c.missing(strings.Join(texts, "\n"))
	if len(runes) == 0 {
		return nil
	}
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = fmt.Sprintf("U+%04X %q", r, r)
	}
	return errors.New(errors.ErrCodeDocumentRenderFailed, "text has characters the document font cannot draw").
		WithDetail(strings.Join(parts, ", "))
}

//Personal.AI order the ending
