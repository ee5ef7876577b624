package document

import (
	"strings"

	"github.com/turtacn/LienPilot/internal/application/letter"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// Renderer turns composed letters into paginated PDF documents.
type Renderer struct {
	geometry Geometry
	defaults Options
}

// NewRenderer returns a renderer for US Letter pages. Zero fields in
// defaults are filled from DefaultOptions.
func NewRenderer(defaults Options) *Renderer {
	return &Renderer{geometry: LetterPage, defaults: defaults.withDefaults()}
}

// Defaults returns the options applied when Render receives nil.
func (r *Renderer) Defaults() Options { return r.defaults }

// LetterheadFor builds the sender block from the contractor.
func LetterheadFor(c letter.Contractor) Letterhead {
	var contact []string
	if c.Phone != "" {
		contact = append(contact, c.Phone)
	}
	if c.Email != "" {
		contact = append(contact, c.Email)
	}
	lh := Letterhead{
		Name:    c.Name,
		Address: c.Address,
		Contact: strings.Join(contact, " | "),
	}
	if c.LicenseNumber != "" {
		lh.License = "License No. " + c.LicenseNumber
	}
	return lh
}

// Render paginates text, stamps footers and page numbers, and serializes
// the result. data supplies the letterhead, filename and creation date.
func (r *Renderer) Render(text string, data *letter.NoticeData, opts *Options) (*Document, error) {
	if data == nil {
		return nil, errors.New(errors.ErrCodeLetterInvalidData, "notice data is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeDocumentRenderFailed, "letter text is empty")
	}
	o := r.defaults
	if opts != nil {
		o = opts.withDefaults()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	head := LetterheadFor(data.Contractor)
	drawn := []string{text}
	if o.IncludeLetterhead {
		drawn = append(drawn, head.Name, head.Address, head.Contact, head.License)
	}
	if o.IncludeFooter {
		drawn = append(drawn, o.FooterText)
	}
	if err := checkDrawable(drawn...); err != nil {
		return nil, err
	}

	pdf, err := newPDF(r.geometry, pdfMeta{
		Title:   "Notice of Intent to Lien - Invoice " + data.InvoiceNumber,
		Author:  data.Contractor.Name,
		Subject: data.PropertyAddress,
		Created: data.NoticeDate,
	})
	if err != nil {
		return nil, err
	}
	layout := BuildLayout(text, head, o, r.geometry, newPDFMeasurer(pdf))

	raw, err := paint(pdf, layout)
	if err != nil {
		return nil, err
	}
	return &Document{
		Filename:    Filename(data.InvoiceNumber, data.Customer.Name, data.NoticeDate),
		ContentType: ContentTypePDF,
		Layout:      layout,
		data:        raw,
	}, nil
}

//Personal.AI order the ending
