// Package report projects invoices onto lien deadlines for dashboards and
// CSV export.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// InvoiceRecord is the subset of an invoice the status export needs.
type InvoiceRecord struct {
	InvoiceNumber         string       `json:"invoice_number" yaml:"invoice_number"`
	CustomerName          string       `json:"customer_name" yaml:"customer_name"`
	State                 string       `json:"state" yaml:"state"`
	AmountRemaining       common.Cents `json:"amount_remaining" yaml:"amount_remaining"`
	FirstWorkDate         *time.Time   `json:"first_work_date,omitempty" yaml:"first_work_date"`
	LastWorkDate          *time.Time   `json:"last_work_date,omitempty" yaml:"last_work_date"`
	PreliminaryNoticeSent bool         `json:"preliminary_notice_sent" yaml:"preliminary_notice_sent"`
	LienFiled             bool         `json:"lien_filed" yaml:"lien_filed"`
}

// InvoiceFilter narrows an invoice listing. The zero value selects every
// open invoice without a filed lien.
type InvoiceFilter struct {
	States       []string `json:"states,omitempty" yaml:"states"`
	IncludeFiled bool     `json:"include_filed,omitempty" yaml:"include_filed"`
	Limit        int      `json:"limit,omitempty" yaml:"limit"`
}

// Row pairs a record with its computed lien case.
type Row struct {
	Record InvoiceRecord     `json:"record"`
	Case   lien.LienCase     `json:"case"`
	Status lien.FilingStatus `json:"status"`
}

// Summary aggregates rows for dashboard cards. Rows without a last work
// date count as Unknown and are excluded from the colour tiers.
type Summary struct {
	Total        int          `json:"total"`
	Green        int          `json:"green"`
	Yellow       int          `json:"yellow"`
	Red          int          `json:"red"`
	Passed       int          `json:"passed"`
	Unknown      int          `json:"unknown"`
	LienFiled    int          `json:"lien_filed"`
	AmountAtRisk common.Cents `json:"amount_at_risk"`
}

// Report is a status export as of one day.
type Report struct {
	AsOf    time.Time `json:"as_of"`
	Rows    []Row     `json:"rows"`
	Summary Summary   `json:"summary"`
}

// Build computes a case per record as of asOf. Rows are ordered by days
// until the filing deadline, soonest first; rows with an unknown deadline
// sort last. AmountAtRisk sums yellow and red rows whose deadline has not
// passed and whose lien is not yet filed.
func Build(records []InvoiceRecord, calc *lien.Calculator, asOf time.Time) *Report {
	if calc == nil {
		calc = lien.NewCalculator(nil)
	}
	rep := &Report{AsOf: common.DateOnly(asOf), Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		c := calc.CalculateAt(rec.State, rec.FirstWorkDate, rec.LastWorkDate, asOf)
		rep.Rows = append(rep.Rows, Row{Record: rec, Case: c, Status: c.Status()})
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i].Case, rep.Rows[j].Case
		if a.HasFilingDeadline() != b.HasFilingDeadline() {
			return a.HasFilingDeadline()
		}
		return a.DaysUntilFilingDeadline < b.DaysUntilFilingDeadline
	})
	rep.Summary = Summarize(rep.Rows)
	return rep
}

// Summarize counts rows by tier.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		s.Total++
		if r.Record.LienFiled {
			s.LienFiled++
		}
		if !r.Case.HasFilingDeadline() {
			s.Unknown++
			continue
		}
		switch r.Case.WarningLevel {
		case lien.WarningGreen:
			s.Green++
		case lien.WarningYellow:
			s.Yellow++
		case lien.WarningRed:
			s.Red++
		}
		if r.Case.DeadlinePassed() {
			s.Passed++
			continue
		}
		if r.Case.WarningLevel != lien.WarningGreen && !r.Record.LienFiled {
			s.AmountAtRisk += r.Record.AmountRemaining
		}
	}
	return s
}

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{
	"Invoice Number",
	"Customer",
	"State",
	"Amount Remaining",
	"Last Work Date",
	"Filing Deadline",
	"Days Until Deadline",
	"Warning Level",
	"Preliminary Notice Sent",
	"Lien Filed",
}

// UnknownValue fills columns that cannot be computed without a last work date.
const UnknownValue = "unknown"

// CSVRecord formats one row. Deadline columns of a row without a last work
// date are blank or "unknown", never a zero that reads as "due today".
func CSVRecord(r Row) []string {
	days, level := UnknownValue, UnknownValue
	if r.Case.HasFilingDeadline() {
		days = strconv.Itoa(r.Case.DaysUntilFilingDeadline)
		level = string(r.Case.WarningLevel)
	}
	return []string{
		r.Record.InvoiceNumber,
		r.Record.CustomerName,
		r.Case.State,
		r.Record.AmountRemaining.Decimal(),
		common.FormatOptionalDate(r.Record.LastWorkDate),
		common.FormatOptionalDate(r.Case.LienFilingDeadline),
		days,
		level,
		yesNo(r.Record.PreliminaryNoticeSent),
		yesNo(r.Record.LienFiled),
	}
}

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write csv header")
	}
	for _, r := range rows {
		if err := cw.Write(CSVRecord(r)); err != nil {
			return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write csv row").WithDetail(r.Record.InvoiceNumber)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "flush csv")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//Personal.AI order the ending
