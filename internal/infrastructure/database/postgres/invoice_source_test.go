package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/pkg/types/common"
	pkgerrors "github.com/turtacn/LienPilot/pkg/errors"
)

var invoiceRowColumns = []string{
	"invoice_number", "customer_name", "state", "amount_remaining_cents",
	"first_work_date", "last_work_date", "preliminary_notice_sent", "lien_filed",
}

func newTestSource(t *testing.T, table string) (*InvoiceSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewInvoiceSource(NewConnectionWithDB(db, PostgresConfig{InvoiceTable: table}, nil), nil, nil), mock
}

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"lien_invoices"`, quoteTable("lien_invoices"))
	assert.Equal(t, `"billing"."open_invoices"`, quoteTable("billing.open_invoices"))
	assert.Equal(t, `"x""; drop table y"`, quoteTable(`x"; drop table y`))
}

func TestBuildQuery(t *testing.T) {
	src, _ := newTestSource(t, "")

	q, args := src.buildQuery(report.InvoiceFilter{})
	assert.Equal(t, `SELECT `+invoiceColumns+` FROM "lien_invoices" WHERE amount_remaining_cents > 0 AND lien_filed = false ORDER BY invoice_number`, q)
	assert.Empty(t, args)

	q, args = src.buildQuery(report.InvoiceFilter{States: []string{"ca", " tx "}, IncludeFiled: true, Limit: 50})
	assert.Contains(t, q, "WHERE amount_remaining_cents > 0 AND upper(state) IN ($1, $2) ORDER BY invoice_number LIMIT $3")
	assert.NotContains(t, q, "lien_filed = false")
	assert.Equal(t, []interface{}{"CA", "TX", 50}, args)
}

func TestListOpenInvoices(t *testing.T) {
	src, mock := newTestSource(t, "billing.open_invoices")
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(invoiceRowColumns).
		AddRow("INV-1", "Green Acres", "CA", int64(100000), first, last, true, false).
		AddRow("INV-2", "No Dates LLC", "TX", int64(50000), nil, nil, false, false)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "billing"."open_invoices" WHERE amount_remaining_cents > 0 AND lien_filed = false AND upper(state) IN ($1, $2)`)).
		WithArgs("CA", "TX").
		WillReturnRows(rows)

	got, err := src.ListOpenInvoices(context.Background(), report.InvoiceFilter{States: []string{"CA", "TX"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, report.InvoiceRecord{
		InvoiceNumber:         "INV-1",
		CustomerName:          "Green Acres",
		State:                 "CA",
		AmountRemaining:       common.Cents(100000),
		FirstWorkDate:         &first,
		LastWorkDate:          ptr(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)),
		PreliminaryNoticeSent: true,
	}, got[0])
	assert.Nil(t, got[1].FirstWorkDate)
	assert.Nil(t, got[1].LastWorkDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(t time.Time) *time.Time { return &t }

func TestListOpenInvoices_QueryError(t *testing.T) {
	src, mock := newTestSource(t, "")
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err := src.ListOpenInvoices(context.Background(), report.InvoiceFilter{Limit: 1})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
	assert.Contains(t, err.Error(), "list open invoices")
}

func TestListOpenInvoices_ScanError(t *testing.T) {
	src, mock := newTestSource(t, "")
	rows := sqlmock.NewRows(invoiceRowColumns).
		AddRow("INV-1", "Acme", "CA", "not-a-number", nil, nil, false, false)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	_, err := src.ListOpenInvoices(context.Background(), report.InvoiceFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan invoice row")
}

func TestListOpenInvoices_RowError(t *testing.T) {
	src, mock := newTestSource(t, "")
	rows := sqlmock.NewRows(invoiceRowColumns).
		AddRow("INV-1", "Acme", "CA", int64(1), nil, nil, false, false).
		RowError(0, errors.New("connection reset"))
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	_, err := src.ListOpenInvoices(context.Background(), report.InvoiceFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate invoice rows")
}

//Personal.AI order the ending
