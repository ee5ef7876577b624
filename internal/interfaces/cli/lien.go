package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/domain/lien"
)

func newStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the statutory lien rules per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				states := cc.Service.States()
				if cc.OutputFormat == FormatJSON {
					return printJSON(cmd.OutOrStdout(), states)
				}
				table := newTable(cmd.OutOrStdout(), "Code", "State", "Prelim", "Prelim Days", "Filing Days", "Enforce Days", "Letter")
				for _, s := range states {
					prelim := "no"
					if s.Rule.PreliminaryNoticeRequired {
						prelim = "yes"
					}
					table.Append([]string{
						s.Code, s.Name, prelim,
						strconv.Itoa(s.Rule.PreliminaryNoticeDays),
						strconv.Itoa(s.Rule.LienFilingDays),
						strconv.Itoa(s.Rule.EnforcementDays),
						s.Composer,
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

func newDeadlineCmd() *cobra.Command {
	var (
		req   notice.DeadlineRequest
		input string
	)

	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Project lien deadlines for an invoice",
		Long: `Project the preliminary notice, lien filing and enforcement deadlines
for one invoice from its work dates, or for every entry of a YAML list
passed with --input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				var cases []lien.LienCase
				if input != "" {
					var reqs []notice.DeadlineRequest
					if err := readInput(cmd, input, &reqs); err != nil {
						return err
					}
					out, err := cc.Service.DeadlineBatch(ctx, reqs)
					if err != nil {
						return err
					}
					cases = out
				} else {
					if req.State == "" {
						return fmt.Errorf("--state is required without --input")
					}
					lc, err := cc.Service.Deadline(ctx, &req)
					if err != nil {
						return err
					}
					cases = []lien.LienCase{*lc}
				}

				if cc.OutputFormat == FormatJSON {
					out := make([]caseOutput, len(cases))
					for i, c := range cases {
						out[i] = caseOutput{LienCase: c, Status: c.Status()}
					}
					if input == "" {
						return printJSON(cmd.OutOrStdout(), out[0])
					}
					return printJSON(cmd.OutOrStdout(), out)
				}
				printCases(cmd.OutOrStdout(), cases)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.State, "state", "", "two-letter state code")
	f.StringVar(&req.InvoiceNumber, "invoice", "", "invoice number, for display")
	f.StringVar(&req.FirstWorkDate, "first-work", "", "first day of work (YYYY-MM-DD)")
	f.StringVar(&req.LastWorkDate, "last-work", "", "last day of work (YYYY-MM-DD)")
	f.StringVar(&req.AsOf, "as-of", "", "evaluation day (default: today)")
	f.StringVar(&input, "input", "", "YAML list of deadline requests, - for stdin")
	return cmd
}

// caseOutput is the JSON form of a lien case, carrying the filing status so
// a zero day count without a deadline is not read as due today.
type caseOutput struct {
	lien.LienCase
	Status lien.FilingStatus `json:"status"`
}

func printCases(w io.Writer, cases []lien.LienCase) {
	table := newTable(w, "State", "Rule", "Prelim Notice", "Lien Filing", "Enforcement", "Days Left", "Level", "Status")
	var defaulted bool
	for _, c := range cases {
		days := "-"
		if c.HasFilingDeadline() {
			days = strconv.Itoa(c.DaysUntilFilingDeadline)
		}
		if c.UsesDefaultRule() {
			defaulted = true
		}
		table.Append([]string{
			c.State, c.RuleKey,
			formatDate(c.PreliminaryNoticeDeadline),
			formatDate(c.LienFilingDeadline),
			formatDate(c.EnforcementDeadline),
			days,
			colorLevel(c.WarningLevel),
			colorStatus(c.Status()),
		})
	}
	table.Render()
	if defaulted {
		fmt.Fprintln(w, color.YellowString("States without a modeled rule use the DEFAULT rule; verify the statute."))
	}
}

func newEligibilityCmd() *cobra.Command {
	var (
		hasAddress  bool
		state       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Check whether an invoice qualifies for a mechanics lien",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cc *CLIContext) error {
				req := notice.EligibilityRequest{HasPropertyAddress: hasAddress}
				// Unset flags stay absent rather than empty.
				if cmd.Flags().Changed("state") {
					req.State = &state
				}
				if cmd.Flags().Changed("description") {
					req.WorkDescription = &description
				}
				res, err := cc.Service.Eligibility(ctx, &req)
				if err != nil {
					return err
				}
				if cc.OutputFormat == FormatJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				verdict := color.GreenString("eligible")
				if !res.Eligible {
					verdict = color.RedString("not eligible")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verdict, res.Reason)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.BoolVar(&hasAddress, "has-address", false, "the job has a property address")
	f.StringVar(&state, "state", "", "two-letter state code")
	f.StringVar(&description, "description", "", "work description")
	return cmd
}

//Personal.AI order the ending
