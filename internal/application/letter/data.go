// Package letter composes Notice of Intent to Lien letters. A registry maps
// state codes to composers; states without a dedicated composer get a
// generic letter in neutral "under state law" language.
package letter

import (
	"strings"
	"time"

	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// Contractor identifies the sender of the notice.
type Contractor struct {
	Name          string `json:"name" yaml:"name"`
	Address       string `json:"address" yaml:"address"`
	Phone         string `json:"phone" yaml:"phone"`
	Email         string `json:"email" yaml:"email"`
	LicenseNumber string `json:"license_number" yaml:"license_number"`
}

// Customer identifies the recipient of the notice.
type Customer struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// NoticeData is the fully literal input of a composer. Amounts are in cents.
type NoticeData struct {
	Contractor          Contractor
	Customer            Customer
	PropertyAddress     string
	InvoiceNumber       string
	InvoiceDate         time.Time
	DueDate             time.Time
	WorkDescription     string
	WorkStartDate       *time.Time
	WorkEndDate         *time.Time
	AmountDue           common.Cents
	LateFees            common.Cents
	ResponseDeadline    time.Time
	LienFilingDeadline  time.Time
	NoticeDate          time.Time
	PaymentInstructions string
}

// Total is the amount due plus late fees.
func (d *NoticeData) Total() common.Cents {
	return d.AmountDue + d.LateFees
}

// Validate reports the first missing or inconsistent field.
func (d *NoticeData) Validate() error {
	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(strings.TrimSpace(d.Contractor.Name) != "", "contractor.name")
	check(strings.TrimSpace(d.Contractor.Address) != "", "contractor.address")
	check(strings.TrimSpace(d.Customer.Name) != "", "customer.name")
	check(strings.TrimSpace(d.Customer.Address) != "", "customer.address")
	check(strings.TrimSpace(d.PropertyAddress) != "", "property_address")
	check(strings.TrimSpace(d.InvoiceNumber) != "", "invoice_number")
	check(!d.DueDate.IsZero(), "due_date")
	check(!d.ResponseDeadline.IsZero(), "response_deadline")
	check(!d.LienFilingDeadline.IsZero(), "lien_filing_deadline")
	check(!d.NoticeDate.IsZero(), "notice_date")
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeLetterInvalidData, "missing required letter fields").
			WithDetail(strings.Join(missing, ", "))
	}
	if d.AmountDue < 0 || d.LateFees < 0 {
		return errors.New(errors.ErrCodeLetterInvalidData, "amounts must not be negative")
	}
	if d.WorkStartDate != nil && d.WorkEndDate != nil && d.WorkEndDate.Before(*d.WorkStartDate) {
		return errors.New(errors.ErrCodeLetterInvalidData, "work end date precedes start date")
	}
	return nil
}

// DaysPastDue is max(0, today - due date) in whole days.
func DaysPastDue(due, today time.Time) int {
	n := common.DaysBetween(due, today)
	if n < 0 {
		return 0
	}
	return n
}

// FormatDate renders a date the way letters print it, e.g. "May 1, 2025".
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

//Personal.AI order the ending
