package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

const invoiceColumns = `invoice_number, customer_name, state, amount_remaining_cents,
	first_work_date, last_work_date, preliminary_notice_sent, lien_filed`

// InvoiceSource reads invoice records for the lien status export. The table
// is owned by the billing system and is only ever read here.
type InvoiceSource struct {
	conn    *Connection
	table   string
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

func NewInvoiceSource(conn *Connection, m *prometheus.AppMetrics, log logging.Logger) *InvoiceSource {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &InvoiceSource{
		conn:    conn,
		table:   quoteTable(conn.cfg.InvoiceTable),
		metrics: m,
		logger:  logging.ForComponent(log, "invoice_source"),
	}
}

// quoteTable turns "schema.table" into a safely quoted identifier.
func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func (s *InvoiceSource) buildQuery(f report.InvoiceFilter) (string, []interface{}) {
	var (
		where = []string{"amount_remaining_cents > 0"}
		args  []interface{}
	)
	if !f.IncludeFiled {
		where = append(where, "lien_filed = false")
	}
	if len(f.States) > 0 {
		marks := make([]string, len(f.States))
		for i, st := range f.States {
			args = append(args, strings.ToUpper(strings.TrimSpace(st)))
			marks[i] = fmt.Sprintf("$%d", len(args))
		}
		where = append(where, "upper(state) IN ("+strings.Join(marks, ", ")+")")
	}
	q := "SELECT " + invoiceColumns + " FROM " + s.table +
		" WHERE " + strings.Join(where, " AND ") + " ORDER BY invoice_number"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return q, args
}

// ListOpenInvoices returns invoices with an outstanding balance.
func (s *InvoiceSource) ListOpenInvoices(ctx context.Context, f report.InvoiceFilter) (out []report.InvoiceRecord, err error) {
	start := time.Now()
	defer func() { prometheus.RecordDBQuery(s.metrics, "list_open_invoices", time.Since(start), err) }()

	q, args := s.buildQuery(f)
	rows, err := s.conn.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list open invoices")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec         report.InvoiceRecord
			cents       int64
			first, last sql.NullTime
		)
		if err := rows.Scan(&rec.InvoiceNumber, &rec.CustomerName, &rec.State, &cents,
			&first, &last, &rec.PreliminaryNoticeSent, &rec.LienFiled); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan invoice row")
		}
		rec.AmountRemaining = common.Cents(cents)
		rec.FirstWorkDate = civilDate(first)
		rec.LastWorkDate = civilDate(last)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterate invoice rows")
	}
	s.logger.Debug("invoices loaded", logging.Int("count", len(out)))
	return out, nil
}

func civilDate(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	d := common.DateOnly(nt.Time)
	return &d
}

//Personal.AI order the ending
