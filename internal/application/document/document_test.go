package document

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/application/letter"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// fixedMeasurer gives every rune the same advance: half the font size,
// 10% wider in bold.
type fixedMeasurer struct{}

func (fixedMeasurer) Width(text string, bold bool, size float64) float64 {
	w := float64(utf8.RuneCountInString(text)) * size * 0.5
	if bold {
		w *= 1.1
	}
	return w
}

func testData(t *testing.T) *letter.NoticeData {
	t.Helper()
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}
	return &letter.NoticeData{
		Contractor: letter.Contractor{
			Name:          "Summit Roofing LLC",
			Address:       "12 Ridge Rd, Sacramento, CA 95814",
			Phone:         "916-555-0100",
			Email:         "billing@summitroofing.example",
			LicenseNumber: "C39-448812",
		},
		Customer:           letter.Customer{Name: "Dana O'Brien & Co.", Address: "88 Oak Ave, Davis, CA 95616"},
		PropertyAddress:    "88 Oak Ave, Davis, CA 95616",
		InvoiceNumber:      "INV-1042",
		InvoiceDate:        day("2025-01-15"),
		DueDate:            day("2025-02-14"),
		WorkDescription:    "Roof replacement",
		AmountDue:          1250000,
		ResponseDeadline:   day("2025-03-28"),
		LienFilingDeadline: day("2025-05-01"),
		NoticeDate:         day("2025-03-18"),
	}
}

func longLetter(paragraphs int) string {
	var sb strings.Builder
	sb.WriteString("**NOTICE OF INTENT TO LIEN**\n\n")
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "Paragraph %d states that payment for invoice INV-1042 remains outstanding and that a mechanics lien may be recorded against the property if the balance is not paid.\n\n", i+1)
	}
	sb.WriteString("Sincerely,\nSummit Roofing LLC\n")
	return sb.String()
}

func TestParseLine(t *testing.T) {
	words, heading := parseLine("**AMOUNT DUE**")
	assert.True(t, heading)
	require.Len(t, words, 2)
	assert.Equal(t, Run{Text: "AMOUNT", Bold: true}, words[0][0])
	assert.Equal(t, Run{Text: "DUE", Bold: true}, words[1][0])

	words, heading = parseLine("Pay **now** or else")
	assert.False(t, heading)
	require.Len(t, words, 4)
	assert.False(t, words[0][0].Bold)
	assert.True(t, words[1][0].Bold)
	assert.False(t, words[2][0].Bold)

	words, _ = parseLine("a**b**c")
	require.Len(t, words, 1)
	assert.Equal(t, word{{Text: "a"}, {Text: "b", Bold: true}, {Text: "c"}}, words[0])

	// Unmatched markers are kept literally.
	words, heading = parseLine("rate is 5** per unit")
	assert.False(t, heading)
	require.Len(t, words, 4)
	assert.Equal(t, "5**", words[2][0].Text)
	assert.False(t, words[2][0].Bold)
}

func TestPlainWords(t *testing.T) {
	got := PlainWords("**HEADING**\n\nSome  text\twith **bold** words\n")
	assert.Equal(t, []string{"HEADING", "Some", "text", "with", "bold", "words"}, got)
}

func TestBuildLayout_PreservesEveryWordInOrder(t *testing.T) {
	text := longLetter(30)
	l := BuildLayout(text, Letterhead{Name: "Summit Roofing LLC"}, DefaultOptions(), LetterPage, fixedMeasurer{})

	require.Greater(t, len(l.Pages), 1)
	assert.Equal(t, PlainWords(text), l.BodyWords())
}

func TestBuildLayout_LinesFitWidthAndStayAboveFooter(t *testing.T) {
	opts := DefaultOptions()
	l := BuildLayout(longLetter(25), Letterhead{Name: "Summit Roofing LLC"}, opts, LetterPage, fixedMeasurer{})
	w := wrapper{m: fixedMeasurer{}, size: opts.FontSize, width: LetterPage.ContentWidth()}

	for _, p := range l.Pages {
		require.NotEmpty(t, p.Body)
		for _, line := range p.Body {
			assert.LessOrEqual(t, w.runsWidth(line.Runs), LetterPage.ContentWidth())
			assert.Less(t, line.Y, p.FooterRule)
			assert.GreaterOrEqual(t, line.Y, LetterPage.Margin)
		}
	}
}

func TestStamp_PageNumbersAndFooterOnEveryPage(t *testing.T) {
	l := BuildLayout(longLetter(30), Letterhead{}, DefaultOptions(), LetterPage, fixedMeasurer{})
	total := len(l.Pages)
	require.Greater(t, total, 1)

	for i, p := range l.Pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, total, p.Total)
		require.NotNil(t, p.Label)
		assert.Equal(t, fmt.Sprintf("Page %d of %d", i+1, total), p.Label.Text())
		require.NotEmpty(t, p.Footer)
		var footer []string
		for _, f := range p.Footer {
			footer = append(footer, f.Text())
		}
		assert.Equal(t, DefaultFooterText, strings.Join(footer, " "))
		assert.LessOrEqual(t, p.Label.Y, LetterPage.Height-LetterPage.Margin)
	}

	// Stamping again does not duplicate the footer.
	before := len(l.Pages[0].Footer)
	Stamp(l, fixedMeasurer{})
	assert.Len(t, l.Pages[0].Footer, before)
}

func TestBuildLayout_LetterheadOnlyOnFirstPage(t *testing.T) {
	head := LetterheadFor(testData(t).Contractor)
	l := BuildLayout(longLetter(30), head, DefaultOptions(), LetterPage, fixedMeasurer{})
	require.Greater(t, len(l.Pages), 1)

	first := l.Pages[0]
	require.Len(t, first.Letterhead, 4)
	assert.Equal(t, "Summit Roofing LLC", first.Letterhead[0].Text())
	assert.True(t, first.Letterhead[0].Runs[0].Bold)
	assert.Equal(t, DefaultFontSize+letterheadNameBump, first.Letterhead[0].Size)
	assert.Equal(t, "916-555-0100 | billing@summitroofing.example", first.Letterhead[2].Text())
	assert.Equal(t, "License No. C39-448812", first.Letterhead[3].Text())
	assert.Greater(t, first.Body[0].Y, first.RuleY)

	for _, p := range l.Pages[1:] {
		assert.Empty(t, p.Letterhead)
	}
}

func TestBuildLayout_WithoutLetterheadOrFooter(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeLetterhead = false
	opts.IncludeFooter = false
	l := BuildLayout("Short letter.", LetterheadFor(testData(t).Contractor), opts, LetterPage, fixedMeasurer{})

	require.Len(t, l.Pages, 1)
	assert.Empty(t, l.Pages[0].Letterhead)
	assert.Empty(t, l.Pages[0].Footer)
	require.NotNil(t, l.Pages[0].Label)
	assert.Equal(t, "Page 1 of 1", l.Pages[0].Label.Text())
}

func TestWrap_SplitsOverlongWord(t *testing.T) {
	w := wrapper{m: fixedMeasurer{}, size: 10, width: 50} // 10 runes per line
	words, _ := parseLine("https://pay.example.com/invoice/INV-1042 ok")
	lines := w.wrap(words)

	var got []string
	for _, l := range lines {
		assert.LessOrEqual(t, w.runsWidth(l), 50.0)
		got = append(got, Line{Runs: l}.Text())
	}
	assert.Equal(t, []string{"https://pa", "y.example.", "com/invoic", "e/INV-1042", "ok"}, got)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	o := DefaultOptions()
	o.FontSize = 40
	assert.True(t, errors.IsCode(o.Validate(), errors.ErrCodeDocumentInvalidOption))

	o = DefaultOptions()
	o.LineSpacing = 0.5
	assert.True(t, errors.IsCode(o.Validate(), errors.ErrCodeDocumentInvalidOption))

	filled := Options{}.withDefaults()
	assert.Equal(t, DefaultFontSize, filled.FontSize)
	assert.Equal(t, DefaultLineSpacing, filled.LineSpacing)
	assert.Equal(t, DefaultFooterText, filled.FooterText)
}

func TestOverrides_Apply(t *testing.T) {
	base := DefaultOptions()

	var nilOverrides *Overrides
	assert.Equal(t, base, nilOverrides.Apply(base))

	var o Overrides
	require.NoError(t, json.Unmarshal([]byte(`{"font_size": 12}`), &o))
	got := o.Apply(base)
	assert.Equal(t, 12.0, got.FontSize)
	assert.True(t, got.IncludeLetterhead)
	assert.True(t, got.IncludeFooter)
	assert.Equal(t, base.LineSpacing, got.LineSpacing)
	assert.Equal(t, base.FooterText, got.FooterText)

	require.NoError(t, json.Unmarshal([]byte(`{"include_footer": false, "footer_text": "Custom"}`), &o))
	got = o.Apply(base)
	assert.False(t, got.IncludeFooter)
	assert.True(t, got.IncludeLetterhead)
	assert.Equal(t, "Custom", got.FooterText)
}

func TestFilename(t *testing.T) {
	date := time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "NOI_INV-1042_John_Smith_2025-03-18.pdf", Filename("INV-1042", "John Smith", date))
	assert.Equal(t, "NOI_INV-7_Dana_O_Brien___Co__2025-03-18.pdf", Filename("INV-7", "Dana O'Brien & Co.", date))
	assert.Equal(t, "NOI_A_B_Acme_2025-03-18.pdf", Filename("A/B", "Acme", date))
}

func TestRenderer_Render(t *testing.T) {
	data := testData(t)
	r := NewRenderer(DefaultOptions())

	doc, err := r.Render(longLetter(40), data, nil)
	require.NoError(t, err)

	raw := doc.Bytes()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	assert.Equal(t, len(raw), doc.Size())
	assert.Equal(t, ContentTypePDF, doc.ContentType)
	assert.Equal(t, "NOI_INV-1042_Dana_O_Brien___Co__2025-03-18.pdf", doc.Filename)
	assert.Greater(t, doc.PageCount(), 1)

	decoded, err := base64.StdEncoding.DecodeString(doc.Base64())
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(raw), n)

	dir := t.TempDir()
	path, err := doc.Save(filepath.Join(dir, "out"))
	require.NoError(t, err)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, onDisk)
}

func TestRenderer_RenderDeterministic(t *testing.T) {
	data := testData(t)
	r := NewRenderer(DefaultOptions())
	a, err := r.Render("**NOTICE**\nPay now.", data, nil)
	require.NoError(t, err)
	b, err := r.Render("**NOTICE**\nPay now.", data, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestRenderer_RenderKeepsNonLatinNames(t *testing.T) {
	data := testData(t)
	data.Customer.Name = "Nguyễn Văn Ánh"
	data.Contractor.Name = "Łukasz Wiśniewski Budownictwo"
	data.Contractor.Address = "ul. Żółkiewskiego 5, Kraków"
	text := "**NOTICE OF INTENT TO LIEN**\nDear Nguyễn Văn Ánh:\nΣας ενημερώνουμε. Уведомляем вас. “Payment” is due — now.\n"

	r := NewRenderer(DefaultOptions())
	doc, err := r.Render(text, data, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "NOI_INV-1042_Nguy_n_V_n__nh_2025-03-18.pdf", doc.Filename)

	words := doc.Layout.BodyWords()
	assert.Contains(t, words, "Nguyễn")
	assert.Contains(t, words, "Ánh:")
	assert.Contains(t, words, "Уведомляем")
	assert.Equal(t, "Łukasz Wiśniewski Budownictwo", doc.Layout.Pages[0].Letterhead[0].Text())
}

func TestRenderer_RenderRejectsUndrawableCharacters(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	_, err := r.Render("Dear 北京建设:\nPay now.", testData(t), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentRenderFailed))
	assert.Contains(t, err.Error(), "U+5317")
	assert.Contains(t, err.Error(), "U+4EAC")

	data := testData(t)
	data.Contractor.Name = "东方屋面"
	_, err = r.Render("Pay now.", data, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentRenderFailed))

	noHead := DefaultOptions()
	noHead.IncludeLetterhead = false
	_, err = r.Render("Pay now.", data, &noHead)
	assert.NoError(t, err)
}

func TestGlyphCoverage_Missing(t *testing.T) {
	c, err := loadCoverage()
	require.NoError(t, err)

	assert.Empty(t, c.missing("Nguyễn Văn Ä — “q” § 8400 €"))
	assert.Equal(t, []rune{'北', '京'}, c.missing("Nguyễn 北京 北"))
	assert.Empty(t, c.missing("\t\n \u00a0"))
}

func TestRenderer_RenderErrors(t *testing.T) {
	r := NewRenderer(Options{})

	_, err := r.Render("text", nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLetterInvalidData))

	_, err = r.Render("  \n", testData(t), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentRenderFailed))

	bad := DefaultOptions()
	bad.FontSize = 2
	_, err = r.Render("text", testData(t), &bad)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentInvalidOption))
}

//Personal.AI order the ending
