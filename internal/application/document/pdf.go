package document

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/turtacn/LienPilot/pkg/errors"
)

const pdfCreator = "LienPilot"

// pdfMeasurer measures with the metrics of the document's registered font.
type pdfMeasurer struct {
	pdf *fpdf.Fpdf
}

func newPDFMeasurer(pdf *fpdf.Fpdf) *pdfMeasurer {
	return &pdfMeasurer{pdf: pdf}
}

func (m *pdfMeasurer) Width(text string, bold bool, size float64) float64 {
	m.pdf.SetFont(fontFamily, style(bold), size)
	return m.pdf.GetStringWidth(text)
}

func style(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// pdfMeta is written into the document information dictionary.
type pdfMeta struct {
	Title   string
	Author  string
	Subject string
	Created time.Time
}

// newPDF returns an fpdf document in points without automatic page breaks,
// with the UTF-8 font registered; the layout decides every break.
func newPDF(g Geometry, meta pdfMeta) (*fpdf.Fpdf, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(pdfCreator, true)
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
	}
	if err := registerFonts(pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}

// paint draws a stamped layout and returns the serialized PDF.
func paint(pdf *fpdf.Fpdf, l *Layout) ([]byte, error) {
	g := l.Geometry
	for _, p := range l.Pages {
		pdf.AddPage()
		pdf.SetTextColor(0, 0, 0)
		for _, line := range p.Letterhead {
			paintLine(pdf, line)
		}
		if len(p.Letterhead) > 0 {
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetLineWidth(0.75)
			pdf.Line(g.Margin, p.RuleY, g.Width-g.Margin, p.RuleY)
		}
		for _, line := range p.Body {
			paintLine(pdf, line)
		}
		pdf.SetDrawColor(160, 160, 160)
		pdf.SetLineWidth(0.5)
		pdf.Line(g.Margin, p.FooterRule, g.Width-g.Margin, p.FooterRule)
		pdf.SetTextColor(90, 90, 90)
		for _, line := range p.Footer {
			paintLine(pdf, line)
		}
		if p.Label != nil {
			paintLine(pdf, *p.Label)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentRenderFailed, "serialize pdf")
	}
	return buf.Bytes(), nil
}

func paintLine(pdf *fpdf.Fpdf, line Line) {
	x := line.X
	for _, r := range line.Runs {
		pdf.SetFont(fontFamily, style(r.Bold), line.Size)
		pdf.Text(x, line.Y, r.Text)
		x += pdf.GetStringWidth(r.Text)
	}
}

//Personal.AI order the ending
