package notice

import (
	"strings"
	"time"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/application/letter"
	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Requests
// ─────────────────────────────────────────────────────────────────────────────

// Dates on the wire are YYYY-MM-DD strings; an empty string means absent.

type DeadlineRequest struct {
	InvoiceNumber string `json:"invoice_number,omitempty" yaml:"invoice_number"`
	State         string `json:"state" yaml:"state"`
	FirstWorkDate string `json:"first_work_date,omitempty" yaml:"first_work_date"`
	LastWorkDate  string `json:"last_work_date,omitempty" yaml:"last_work_date"`
	AsOf          string `json:"as_of,omitempty" yaml:"as_of"`
}

type EligibilityRequest struct {
	HasPropertyAddress bool    `json:"has_property_address" yaml:"has_property_address"`
	State              *string `json:"state" yaml:"state"`
	WorkDescription    *string `json:"work_description" yaml:"work_description"`
}

type AdviceRequest struct {
	State          string `json:"state" yaml:"state"`
	Role           string `json:"role,omitempty" yaml:"role"`
	FirstWorkDate  string `json:"first_work_date,omitempty" yaml:"first_work_date"`
	LastWorkDate   string `json:"last_work_date" yaml:"last_work_date"`
	InvoiceDueDate string `json:"invoice_due_date" yaml:"invoice_due_date"`
	AsOf           string `json:"as_of,omitempty" yaml:"as_of"`
}

// NoticeRequest is the literal content of one notice of intent. Deadlines
// left blank are derived: the lien filing deadline from the work end date
// and the state's filing period, the response deadline from the notice date
// and the state's response period.
type NoticeRequest struct {
	State               string            `json:"state" yaml:"state"`
	Contractor          letter.Contractor `json:"contractor" yaml:"contractor"`
	Customer            letter.Customer   `json:"customer" yaml:"customer"`
	PropertyAddress     string            `json:"property_address" yaml:"property_address"`
	InvoiceNumber       string            `json:"invoice_number" yaml:"invoice_number"`
	InvoiceDate         string            `json:"invoice_date,omitempty" yaml:"invoice_date"`
	DueDate             string            `json:"due_date" yaml:"due_date"`
	WorkDescription     string            `json:"work_description,omitempty" yaml:"work_description"`
	WorkStartDate       string            `json:"work_start_date,omitempty" yaml:"work_start_date"`
	WorkEndDate         string            `json:"work_end_date,omitempty" yaml:"work_end_date"`
	AmountDueCents      int64             `json:"amount_due_cents" yaml:"amount_due_cents"`
	LateFeesCents       int64             `json:"late_fees_cents,omitempty" yaml:"late_fees_cents"`
	ResponseDeadline    string            `json:"response_deadline,omitempty" yaml:"response_deadline"`
	LienFilingDeadline  string            `json:"lien_filing_deadline,omitempty" yaml:"lien_filing_deadline"`
	NoticeDate          string            `json:"notice_date,omitempty" yaml:"notice_date"`
	PaymentInstructions string            `json:"payment_instructions,omitempty" yaml:"payment_instructions"`
}

// RenderRequest renders a notice. Options fields that are set override the
// renderer defaults; the rest keep them.
type RenderRequest struct {
	Notice  NoticeRequest       `json:"notice" yaml:"notice"`
	Options *document.Overrides `json:"options,omitempty" yaml:"options"`
	// Store uploads the PDF and publishes a rendered event.
	Store bool `json:"store,omitempty" yaml:"store"`
}

// ExportRequest builds the lien status report. Records are used when given;
// otherwise they are read from the invoice source using Filter.
type ExportRequest struct {
	Records []report.InvoiceRecord `json:"records,omitempty" yaml:"records"`
	Filter  report.InvoiceFilter   `json:"filter,omitempty" yaml:"filter"`
	AsOf    string                 `json:"as_of,omitempty" yaml:"as_of"`
	Store   bool                   `json:"store,omitempty" yaml:"store"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

type StateInfo struct {
	Code     string             `json:"code"`
	Name     string             `json:"name"`
	Rule     lien.StateLienRule `json:"rule"`
	Composer string             `json:"composer"`
}

type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

type AdviceResult struct {
	Calculation *noi.Calculation `json:"calculation"`
	Decision    noi.Decision     `json:"decision"`
	AsOf        time.Time        `json:"as_of"`
}

type LetterResult struct {
	State              string    `json:"state"`
	Composer           string    `json:"composer"`
	Text               string    `json:"text"`
	ResponseDeadline   time.Time `json:"response_deadline"`
	LienFilingDeadline time.Time `json:"lien_filing_deadline"`
}

type RenderResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	PageCount   int    `json:"page_count"`
	Composer    string `json:"composer"`
	Cached      bool   `json:"cached"`
	ObjectKey   string `json:"object_key,omitempty"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

type ExportResult struct {
	Report    *report.Report `json:"-"`
	Summary   report.Summary `json:"summary"`
	AsOf      time.Time      `json:"as_of"`
	CSV       []byte         `json:"-"`
	ObjectKey string         `json:"object_key,omitempty"`
	URL       string         `json:"url,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Parsing
// ─────────────────────────────────────────────────────────────────────────────

func parseDate(field, s string) (*time.Time, error) {
	d, err := common.ParseOptionalDate(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLienInvalidDate, "invalid date").WithDetail(field + "=" + s)
	}
	return d, nil
}

// asOfOr parses s, falling back to now.
func asOfOr(s string, now time.Time) (time.Time, error) {
	d, err := parseDate("as_of", s)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return common.DateOnly(now), nil
	}
	return *d, nil
}

func derefDate(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

// noticeData converts the request into composer input. Deadlines are not
// derived here.
func (r *NoticeRequest) noticeData() (*letter.NoticeData, error) {
	fields := []struct{ name, raw string }{
		{"invoice_date", r.InvoiceDate},
		{"due_date", r.DueDate},
		{"work_start_date", r.WorkStartDate},
		{"work_end_date", r.WorkEndDate},
		{"response_deadline", r.ResponseDeadline},
		{"lien_filing_deadline", r.LienFilingDeadline},
		{"notice_date", r.NoticeDate},
	}
	parsed := make([]*time.Time, len(fields))
	for i, f := range fields {
		d, err := parseDate(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		parsed[i] = d
	}
	return &letter.NoticeData{
		Contractor:          r.Contractor,
		Customer:            r.Customer,
		PropertyAddress:     strings.TrimSpace(r.PropertyAddress),
		InvoiceNumber:       strings.TrimSpace(r.InvoiceNumber),
		InvoiceDate:         derefDate(parsed[0]),
		DueDate:             derefDate(parsed[1]),
		WorkDescription:     r.WorkDescription,
		WorkStartDate:       parsed[2],
		WorkEndDate:         parsed[3],
		AmountDue:           common.Cents(r.AmountDueCents),
		LateFees:            common.Cents(r.LateFeesCents),
		ResponseDeadline:    derefDate(parsed[4]),
		LienFilingDeadline:  derefDate(parsed[5]),
		NoticeDate:          derefDate(parsed[6]),
		PaymentInstructions: r.PaymentInstructions,
	}, nil
}

//Personal.AI order the ending
