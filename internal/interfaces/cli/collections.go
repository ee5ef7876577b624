package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/application/sequence"
	"github.com/turtacn/LienPilot/pkg/errors"
)

func newSequenceCmd() *cobra.Command {
	var (
		in       sequence.Input
		tone     string
		channels string
	)

	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Generate a lien-aware collection sequence",
		Long: `Generate the four-step collection sequence for a business. The copy
names the state's lien filing period; message bodies keep {{field}}
placeholders for the sequencing system to fill per invoice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				t, err := sequence.ParseTone(tone)
				if err != nil {
					return err
				}
				in.Tone = t
				ch, err := parseChannels(channels)
				if err != nil {
					return err
				}
				in.Channels = ch

				seq, err := cc.Service.GenerateSequence(ctx, &in)
				if err != nil {
					return err
				}
				if cc.OutputFormat == FormatJSON {
					return printJSON(cmd.OutOrStdout(), seq)
				}
				printSequence(cmd.OutOrStdout(), seq)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.BusinessName, "business", "", "business name")
	f.StringVar(&in.BusinessPhone, "business-phone", "", "business phone")
	f.StringVar(&in.BusinessEmail, "business-email", "", "business email")
	f.StringVar(&in.PaymentLink, "payment-link", "", "payment link")
	f.StringVar(&in.State, "state", "", "two-letter state code")
	f.StringVar(&tone, "tone", "professional", "friendly, professional, firm or casual")
	f.StringVar(&channels, "channels", "", "comma-separated enabled channels: sms,email,phone (default: email)")
	_ = cmd.MarkFlagRequired("business")
	return cmd
}

func parseChannels(s string) (sequence.Channels, error) {
	var ch sequence.Channels
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case string(sequence.ChannelSMS):
			ch.SMS = true
		case string(sequence.ChannelEmail):
			ch.Email = true
		case string(sequence.ChannelPhone):
			ch.Phone = true
		default:
			return ch, errors.New(errors.ErrCodeSequenceInvalidInput, "unknown channel").WithDetail(part)
		}
	}
	return ch, nil
}

func printSequence(w io.Writer, seq *sequence.Sequence) {
	fmt.Fprintf(w, "%s\n%s\n\n", seq.Name, seq.Description)
	table := newTable(w, "Step", "Days Past Due", "Wait", "Stage", "Channel", "Subject")
	for _, st := range seq.Steps {
		subject := "-"
		if st.Subject != nil {
			subject = st.Subject.Text
		}
		table.Append([]string{
			strconv.Itoa(st.Number),
			strconv.Itoa(st.DaysPastDue),
			strconv.Itoa(st.DelayDays) + "d",
			string(st.Stage),
			string(st.Channel),
			subject,
		})
	}
	table.Render()
	fmt.Fprintf(w, "Placeholders: %s\n", strings.Join(seq.RequiredPlaceholders(), ", "))
}

func newExportCmd() *cobra.Command {
	var (
		input  string
		out    string
		asOf   string
		states []string
		filed  bool
		limit  int
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the lien status report as CSV",
		Long: `Build the lien status report for the invoices in a YAML file, or for the
open invoices of the configured database when --input is omitted. The CSV
goes to stdout unless --out names a file, in which case a summary is
printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				req := notice.ExportRequest{
					AsOf:   asOf,
					Store:  store,
					Filter: report.InvoiceFilter{States: states, IncludeFiled: filed, Limit: limit},
				}
				if input != "" {
					if err := readInput(cmd, input, &req.Records); err != nil {
						return err
					}
					if len(req.Records) == 0 {
						return errors.InvalidParam("input holds no invoices").WithDetail(input)
					}
				}

				res, err := cc.Service.Export(ctx, &req)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if cc.OutputFormat == FormatJSON {
					return printJSON(w, struct {
						*notice.ExportResult
						Rows []report.Row `json:"rows"`
					}{res, res.Report.Rows})
				}
				if out == "" {
					_, err := w.Write(res.CSV)
					return err
				}
				if err := os.WriteFile(out, res.CSV, 0o644); err != nil {
					return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write export").WithDetail(out)
				}
				printSummary(w, res)
				fmt.Fprintf(w, "Written to %s\n", out)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", "", "YAML list of invoices, - for stdin")
	f.StringVarP(&out, "out", "f", "", "write the CSV to this file")
	f.StringVar(&asOf, "as-of", "", "evaluation day (default: today)")
	f.StringSliceVar(&states, "state", nil, "database filter: states to include")
	f.BoolVar(&filed, "include-filed", false, "database filter: include invoices with a filed lien")
	f.IntVar(&limit, "limit", 0, "database filter: maximum invoices")
	f.BoolVar(&store, "store", false, "upload the CSV to object storage")
	return cmd
}

func printSummary(w io.Writer, res *notice.ExportResult) {
	table := newTable(w, "Invoice", "Customer", "State", "Lien Deadline", "Days Left", "Level", "Status")
	for _, row := range res.Report.Rows {
		days := "-"
		if row.Case.HasFilingDeadline() {
			days = strconv.Itoa(row.Case.DaysUntilFilingDeadline)
		}
		table.Append([]string{
			row.Record.InvoiceNumber,
			row.Record.CustomerName,
			row.Case.State,
			formatDate(row.Case.LienFilingDeadline),
			days,
			colorLevel(row.Case.WarningLevel),
			colorStatus(row.Status),
		})
	}
	table.Render()
	s := res.Summary
	fmt.Fprintf(w, "As of %s: %d invoices, %d green, %d yellow, %d red, %d passed, %d unknown. At risk: %s\n",
		res.AsOf.Format("2006-01-02"), s.Total, s.Green, s.Yellow, s.Red, s.Passed, s.Unknown, s.AmountAtRisk)
	if res.ObjectKey != "" {
		fmt.Fprintf(w, "Stored as %s\n", res.ObjectKey)
	}
}

//Personal.AI order the ending
