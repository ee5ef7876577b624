package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/domain/noi"
	"github.com/turtacn/LienPilot/pkg/errors"
)

func newNOICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noi",
		Short: "Notice of intent to lien",
		Long: `Plan, compose and render the notice of intent to lien.

  advise   full timing assessment: requirements, window, recipients, delivery
  decide   only the send-now decision and its urgency
  letter   compose the state-specific letter text
  render   render the letter to a paginated PDF`,
	}
	cmd.AddCommand(newAdviseCmd(false), newAdviseCmd(true), newLetterCmd(), newRenderCmd())
	return cmd
}

// newAdviseCmd builds "noi advise", or "noi decide" when decideOnly is set;
// both share one set of flags.
func newAdviseCmd(decideOnly bool) *cobra.Command {
	var req notice.AdviceRequest

	use, short := "advise", "Assess notice-of-intent timing for an invoice"
	if decideOnly {
		use, short = "decide", "Decide whether the notice of intent should be sent now"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				res, err := cc.Service.Advise(ctx, &req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if decideOnly {
					if cc.OutputFormat == FormatJSON {
						return printJSON(out, res.Decision)
					}
					printDecision(out, res.Decision)
					return nil
				}
				if cc.OutputFormat == FormatJSON {
					return printJSON(out, res)
				}
				printCalculation(out, res.Calculation)
				fmt.Fprintln(out)
				printDecision(out, res.Decision)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.State, "state", "", "two-letter state code")
	f.StringVar(&req.Role, "role", "", "claimant role (prime_contractor, subcontractor, material_supplier)")
	f.StringVar(&req.FirstWorkDate, "first-work", "", "first day of work (YYYY-MM-DD)")
	f.StringVar(&req.LastWorkDate, "last-work", "", "last day of work (YYYY-MM-DD)")
	f.StringVar(&req.InvoiceDueDate, "due", "", "invoice due date (YYYY-MM-DD)")
	f.StringVar(&req.AsOf, "as-of", "", "evaluation day (default: today)")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("last-work")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func printCalculation(w io.Writer, c *noi.Calculation) {
	table := newTable(w, "Item", "Value")
	table.Append([]string{"State", fmt.Sprintf("%s (rule %s)", c.State, c.RuleKey)})
	table.Append([]string{"Role", string(c.Role)})
	table.Append([]string{"NOI required", yesNo(c.Requirements.NOIRequired)})
	if c.NOISendBy != nil {
		table.Append([]string{"NOI send by", formatDate(c.NOISendBy)})
	}
	table.Append([]string{"Preliminary notice", formatDate(c.PreliminaryNoticeDeadline)})
	table.Append([]string{"Lien filing deadline", formatDate(&c.LienFilingDeadline)})
	table.Append([]string{"Enforcement deadline", formatDate(&c.EnforcementDeadline)})
	table.Append([]string{"Send window", fmt.Sprintf("%s .. %s (optimal %s)",
		formatDate(&c.Window.Earliest), formatDate(&c.Window.Latest), formatDate(&c.Window.Optimal))})

	recipients := make([]string, len(c.RequiredRecipients))
	for i, r := range c.RequiredRecipients {
		recipients[i] = string(r)
	}
	table.Append([]string{"Recipients", strings.Join(recipients, ", ")})
	table.Append([]string{"Certified mail", yesNo(c.Delivery.CertifiedMailRequired)})
	table.Append([]string{"Email allowed", yesNo(c.Delivery.EmailAllowed)})
	table.Append([]string{"Statutory phrasing", yesNo(c.Delivery.SpecificPhrasingRequired)})
	table.Append([]string{"Response period", strconv.Itoa(c.ResponseDays) + " days"})
	table.Render()
	if c.Notes != "" {
		fmt.Fprintln(w, c.Notes)
	}
}

func printDecision(w io.Writer, d noi.Decision) {
	verdict := "wait"
	if d.ShouldSend {
		verdict = "send now"
	}
	fmt.Fprintf(w, "%s [%s] %s\n", colorUrgency(d.Urgency, verdict), d.Urgency, d.Reason)
	fmt.Fprintf(w, "Days until lien deadline: %d\n", d.DaysUntilLienDeadline)
}

func colorUrgency(u noi.Urgency, s string) string {
	switch u {
	case noi.UrgencyCritical:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case noi.UrgencyHigh:
		return color.RedString(s)
	case noi.UrgencyMedium:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newLetterCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Compose the notice-of-intent letter text",
		Long: `Compose the letter for the notice described in a YAML file. Blank
deadlines are derived from the state rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				var req notice.NoticeRequest
				if err := readInput(cmd, input, &req); err != nil {
					return err
				}
				res, err := cc.Service.ComposeLetter(ctx, &req)
				if err != nil {
					return err
				}
				if cc.OutputFormat == FormatJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "YAML notice file, - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		input        string
		outDir       string
		noLetterhead bool
		noFooter     bool
		asBase64     bool
		store        bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the notice of intent to PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				req := notice.RenderRequest{Store: store}
				if err := readInput(cmd, input, &req.Notice); err != nil {
					return err
				}
				off := false
				if noLetterhead || noFooter {
					req.Options = &document.Overrides{}
				}
				if noLetterhead {
					req.Options.IncludeLetterhead = &off
				}
				if noFooter {
					req.Options.IncludeFooter = &off
				}

				res, err := cc.Service.RenderDocument(ctx, &req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asBase64 {
					fmt.Fprintln(out, base64.StdEncoding.EncodeToString(res.Data))
					return nil
				}

				path := ""
				if outDir != "" {
					if err := os.MkdirAll(outDir, 0o755); err != nil {
						return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "create output directory").WithDetail(outDir)
					}
					path = filepath.Join(outDir, res.Filename)
					if err := os.WriteFile(path, res.Data, 0o644); err != nil {
						return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write document").WithDetail(path)
					}
				}

				if cc.OutputFormat == FormatJSON {
					return printJSON(out, struct {
						*notice.RenderResult
						Path string `json:"path,omitempty"`
					}{res, path})
				}
				table := newTable(out, "Item", "Value")
				table.Append([]string{"File", res.Filename})
				table.Append([]string{"Pages", strconv.Itoa(res.PageCount)})
				table.Append([]string{"Size", strconv.Itoa(res.Size) + " bytes"})
				table.Append([]string{"Letter", res.Composer})
				if path != "" {
					table.Append([]string{"Saved to", path})
				}
				if res.ObjectKey != "" {
					table.Append([]string{"Object", res.ObjectKey})
				}
				if res.URL != "" {
					table.Append([]string{"Download", res.URL})
				}
				table.Render()
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", "", "YAML notice file, - for stdin")
	f.StringVar(&outDir, "out-dir", ".", "directory the PDF is written to; empty skips writing")
	f.BoolVar(&noLetterhead, "no-letterhead", false, "omit the contractor letterhead")
	f.BoolVar(&noFooter, "no-footer", false, "omit the footer disclaimer")
	f.BoolVar(&asBase64, "base64", false, "print the PDF as base64 instead of writing a file")
	f.BoolVar(&store, "store", false, "upload to object storage and publish a rendered event")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

//Personal.AI order the ending
