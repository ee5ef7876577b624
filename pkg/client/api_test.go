package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/application/letter"
	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/application/sequence"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
	httpserver "github.com/turtacn/LienPilot/internal/interfaces/http"
	"github.com/turtacn/LienPilot/internal/interfaces/http/handlers"
	"github.com/turtacn/LienPilot/internal/testutil"
)

// newAPIClient serves the real router on a fixed clock.
func newAPIClient(t *testing.T) *Client {
	t.Helper()
	clock := testutil.NewClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	log := testutil.NewMockLogger()
	svc := notice.NewService(notice.Deps{Logger: log, Clock: clock.Now})
	router := httpserver.NewRouter(httpserver.RouterConfig{
		NoticeHandler: handlers.NewNoticeHandler(svc, log, 0),
		HealthHandler: handlers.NewHealthHandler("test", nil),
		Logger:        log,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func sampleNotice() NoticeRequest {
	return NoticeRequest{
		State:           "CA",
		Contractor:      letter.Contractor{Name: "Summit Roofing", Address: "12 Ridge Rd, Fresno, CA 93650", Phone: "555-0100"},
		Customer:        letter.Customer{Name: "Green Acres LLC", Address: "400 Oak Ave, Fresno, CA 93701"},
		PropertyAddress: "77 Elm St, Fresno, CA 93702",
		InvoiceNumber:   "INV-100",
		InvoiceDate:     "2025-01-10",
		DueDate:         "2025-01-15",
		WorkDescription: "Roof replacement",
		WorkStartDate:   "2025-01-02",
		WorkEndDate:     "2025-01-31",
		AmountDueCents:  150000,
	}
}

func TestAPI_Liens(t *testing.T) {
	c := newAPIClient(t).Liens()
	ctx := context.Background()

	states, err := c.States(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, states)
	assert.Equal(t, lien.DefaultStateKey, states[len(states)-1].Code)

	res, err := c.Deadline(ctx, &DeadlineRequest{State: "CA", LastWorkDate: "2025-01-31"})
	require.NoError(t, err)
	assert.Equal(t, 61, res.DaysUntilFilingDeadline)
	assert.Equal(t, lien.WarningGreen, res.WarningLevel)
	assert.Equal(t, lien.FilingOpen, res.Status)

	cases, err := c.Deadlines(ctx, []DeadlineRequest{
		{State: "TX", LastWorkDate: "2024-06-01"},
		{State: "CA"},
	})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.True(t, cases[0].DeadlinePassed())
	assert.Equal(t, lien.FilingPassed, cases[0].Status)
	assert.False(t, cases[1].HasFilingDeadline())
	assert.Equal(t, lien.FilingUnknown, cases[1].Status)

	state, desc := "CA", "Fence installation"
	el, err := c.Eligibility(ctx, &EligibilityRequest{HasPropertyAddress: true, State: &state, WorkDescription: &desc})
	require.NoError(t, err)
	assert.True(t, el.Eligible)
}

func TestAPI_DeadlineValidationError(t *testing.T) {
	c := newAPIClient(t).Liens()

	_, err := c.Deadline(context.Background(), &DeadlineRequest{State: "CA", LastWorkDate: "01/31/2025"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.NotEmpty(t, apiErr.Code)
}

func TestAPI_Notices(t *testing.T) {
	c := newAPIClient(t).Notices()
	ctx := context.Background()

	adv, err := c.Advise(ctx, &AdviceRequest{
		State:          "PA",
		Role:           string(noi.RoleSubcontractor),
		LastWorkDate:   "2025-01-31",
		InvoiceDueDate: "2025-01-15",
	})
	require.NoError(t, err)
	assert.True(t, adv.Decision.ShouldSend)
	assert.Equal(t, noi.UrgencyHigh, adv.Decision.Urgency)

	req := sampleNotice()
	letterRes, err := c.Letter(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, "california", letterRes.Composer)
	assert.Contains(t, letterRes.Text, "INV-100")

	doc, err := c.Render(ctx, &RenderRequest{Notice: req})
	require.NoError(t, err)
	assert.Equal(t, "NOI_INV-100_Green_Acres_LLC_2025-03-01.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.GreaterOrEqual(t, doc.Pages, 1)
	assert.True(t, strings.HasPrefix(string(doc.Data), "%PDF"))

	_, err = c.Render(ctx, &RenderRequest{Notice: req, Store: true})
	assert.Error(t, err)
}

func TestAPI_RenderAndStoreWithoutStorage(t *testing.T) {
	c := newAPIClient(t).Notices()

	req := sampleNotice()
	_, err := c.RenderAndStore(context.Background(), &RenderRequest{Notice: req})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.GreaterOrEqual(t, apiErr.StatusCode, 400)
}

func TestAPI_Collections(t *testing.T) {
	c := newAPIClient(t).Collections()
	ctx := context.Background()

	seq, err := c.Sequence(ctx, &SequenceInput{
		BusinessName: "Summit Roofing",
		State:        "CA",
		Tone:         sequence.ToneFriendly,
		Channels:     sequence.Channels{Email: true},
	})
	require.NoError(t, err)
	require.Len(t, seq.Steps, 4)
	assert.Equal(t, 90, seq.LienFilingDays)

	last := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	records := []InvoiceRecord{
		{InvoiceNumber: "INV-1", CustomerName: "Green Acres LLC", State: "CA", AmountRemaining: 100000, LastWorkDate: &last},
		{InvoiceNumber: "INV-2", CustomerName: "Unknown Works", State: "OR", AmountRemaining: 500},
	}

	exp, err := c.Export(ctx, &ExportRequest{Records: records})
	require.NoError(t, err)
	assert.Equal(t, 2, exp.Summary.Total)
	assert.Equal(t, 1, exp.Summary.Unknown)
	assert.Len(t, exp.Rows, 2)

	csv, err := c.ExportCSV(ctx, &ExportRequest{Records: records})
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csv)), "\n"), 3)

	_, err = c.Export(ctx, &ExportRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
}

//Personal.AI order the ending
