package letter

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/LienPilot/pkg/types/common"
)

// BoldMarker wraps heading text, e.g. "**AMOUNT DUE**".
const BoldMarker = "**"

// page accumulates letter lines. Paragraphs are single logical lines; the
// document renderer wraps them.
type page struct {
	sb strings.Builder
}

func (p *page) line(s string) {
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

func (p *page) linef(format string, args ...interface{}) {
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *page) optional(label, value string) {
	if strings.TrimSpace(value) != "" {
		p.linef("%s%s", label, value)
	}
}

func (p *page) blank() { p.sb.WriteByte('\n') }

func (p *page) heading(text string) {
	p.linef("%s%s%s", BoldMarker, text, BoldMarker)
}

func (p *page) String() string {
	return strings.TrimRight(p.sb.String(), "\n") + "\n"
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared sections
// ─────────────────────────────────────────────────────────────────────────────

func (p *page) sender(d *NoticeData) {
	p.line(d.Contractor.Name)
	p.line(d.Contractor.Address)
	p.optional("Phone: ", d.Contractor.Phone)
	p.optional("Email: ", d.Contractor.Email)
	p.optional("License No. ", d.Contractor.LicenseNumber)
	p.blank()
	p.line(FormatDate(d.NoticeDate))
	p.blank()
}

func (p *page) recipient(d *NoticeData, delivery string) {
	if delivery != "" {
		p.linef("VIA %s", delivery)
		p.blank()
	}
	p.line("TO:")
	p.line(d.Customer.Name)
	p.line(d.Customer.Address)
	p.blank()
}

func (p *page) subject(d *NoticeData) {
	p.linef("RE: Invoice #%s - Property at %s", d.InvoiceNumber, d.PropertyAddress)
	p.blank()
}

func (p *page) work(d *NoticeData) {
	p.heading("WORK PERFORMED")
	desc := strings.TrimSpace(d.WorkDescription)
	if desc == "" {
		desc = "Labor, services and materials as described in the invoice"
	}
	p.linef("Description: %s", desc)
	p.linef("Property: %s", d.PropertyAddress)
	switch {
	case d.WorkStartDate != nil && d.WorkEndDate != nil:
		p.linef("Dates of work: %s through %s", FormatDate(*d.WorkStartDate), FormatDate(*d.WorkEndDate))
	case d.WorkEndDate != nil:
		p.linef("Work completed: %s", FormatDate(*d.WorkEndDate))
	case d.WorkStartDate != nil:
		p.linef("Work commenced: %s", FormatDate(*d.WorkStartDate))
	}
	if !d.InvoiceDate.IsZero() {
		p.linef("Invoice date: %s", FormatDate(d.InvoiceDate))
	}
	p.blank()
}

func (p *page) amounts(d *NoticeData, today time.Time) {
	p.heading("AMOUNT DUE")
	p.linef("Original invoice amount: %s", common.FormatUSD(d.AmountDue))
	p.linef("Late fees: %s", common.FormatUSD(d.LateFees))
	p.linef("Total amount due: %s", common.FormatUSD(d.Total()))
	p.linef("Payment was due on %s and is now %d days past due.", FormatDate(d.DueDate), DaysPastDue(d.DueDate, today))
	p.blank()
}

func (p *page) deadlines(d *NoticeData) {
	p.heading("DEADLINES")
	p.linef("Response deadline: %s", FormatDate(d.ResponseDeadline))
	p.linef("Lien filing deadline: %s", FormatDate(d.LienFilingDeadline))
	p.blank()
}

func (p *page) payment(d *NoticeData) {
	p.heading("HOW TO PAY")
	if strings.TrimSpace(d.PaymentInstructions) != "" {
		p.line(d.PaymentInstructions)
	} else {
		p.linef("Please send payment of %s payable to %s at %s, referencing invoice #%s.",
			common.FormatUSD(d.Total()), d.Contractor.Name, d.Contractor.Address, d.InvoiceNumber)
	}
	if d.Contractor.Phone != "" {
		p.linef("To arrange a payment plan, call %s.", d.Contractor.Phone)
	}
	p.blank()
}

func (p *page) dispute(d *NoticeData) {
	p.heading("IF YOU DISPUTE THIS AMOUNT OR HAVE ALREADY PAID")
	contact := d.Contractor.Name
	if d.Contractor.Phone != "" {
		contact += " at " + d.Contractor.Phone
	} else if d.Contractor.Email != "" {
		contact += " at " + d.Contractor.Email
	}
	p.linef("If you believe this amount is incorrect, or if payment has already been sent, please contact %s before %s with any supporting records so we can resolve the matter without further action.",
		contact, FormatDate(d.ResponseDeadline))
	p.blank()
}

func (p *page) disclaimer(d *NoticeData) {
	p.linef("This notice is sent by %s, the original contractor that performed the work described above. %s is not a debt collection agency and this letter is not an attempt by a third party to collect a debt.",
		d.Contractor.Name, d.Contractor.Name)
	p.blank()
}

func (p *page) signature(d *NoticeData) {
	p.line("Sincerely,")
	p.blank()
	p.blank()
	p.line(d.Contractor.Name)
	p.optional("License No. ", d.Contractor.LicenseNumber)
}

//Personal.AI order the ending
