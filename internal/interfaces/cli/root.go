// Package cli implements the lienpilot command line: lien deadline and
// eligibility checks, notice-of-intent advice, letters and PDFs, collection
// sequences and the lien status export.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/bootstrap"
	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// ServiceFactory builds the notice service for one invocation. The returned
// func releases whatever the service holds.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log logging.Logger) (notice.Service, func(), error)

// DefaultServiceFactory connects the infrastructure sections enabled in
// cfg; with none enabled the service runs fully in process.
func DefaultServiceFactory(ctx context.Context, cfg *config.Config, log logging.Logger) (notice.Service, func(), error) {
	infra, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	deps, err := infra.ServiceDeps(cfg, nil, log)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	return notice.NewService(deps), infra.Close, nil
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      notice.Service
	OutputFormat string
	Timeout      time.Duration

	release func()
}

// Close releases the service resources. Safe to call more than once.
func (c *CLIContext) Close() {
	if c != nil && c.release != nil {
		c.release()
		c.release = nil
	}
}

// NewRootCommand creates the root command with all global flags and
// subcommands. A nil factory selects DefaultServiceFactory.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	if factory == nil {
		factory = DefaultServiceFactory
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lienpilot",
		Short: "Mechanics lien deadlines and notice-of-intent compliance",
		Long: `lienpilot projects mechanics lien deadlines from statutory state rules,
advises when a notice of intent to lien should go out, composes and renders
the notice, and builds lien-aware collection sequences.

Statutory periods are simplified approximations. Consult a licensed attorney
before relying on any deadline.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: LIEN_* environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", FormatTable, "output format (table, json)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")

	cmd.AddCommand(
		newStatesCmd(),
		newDeadlineCmd(),
		newEligibilityCmd(),
		newNOICmd(),
		newSequenceCmd(),
		newExportCmd(),
	)
	return cmd
}

// persistentPreRun loads config, builds the logger and service, and stores
// the CLIContext on the executing command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory ServiceFactory) error {
	switch opts.OutputFormat {
	case FormatTable, FormatJSON:
	default:
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := config.LoadOrEnv(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	svc, release, err := factory(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("service initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
		release:      release,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initLogger creates a console logger on stderr so stdout stays clean for
// command output.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		level = "warn"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// run resolves the CLIContext and calls fn under the configured timeout.
func run(cmd *cobra.Command, fn func(ctx context.Context, cc *CLIContext) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if cc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.Timeout)
		defer cancel()
	}
	return fn(ctx, cc)
}

// Execute runs the command line and releases the service afterwards.
func Execute(root *cobra.Command) error {
	executed, err := root.ExecuteC()
	if executed != nil {
		if cc, ctxErr := GetCLIContext(executed); ctxErr == nil {
			cc.Close()
		}
	}
	if err != nil {
		PrintError(root, err)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	return table
}

// colorLevel paints a warning level the way the dashboard does.
func colorLevel(level lien.WarningLevel) string {
	switch level {
	case lien.WarningRed:
		return color.RedString(string(level))
	case lien.WarningYellow:
		return color.YellowString(string(level))
	default:
		return color.GreenString(string(level))
	}
}

func colorStatus(s lien.FilingStatus) string {
	switch s {
	case lien.FilingPassed:
		return color.New(color.FgRed, color.Bold).Sprint(string(s))
	case lien.FilingUrgent:
		return color.RedString(string(s))
	case lien.FilingUnknown:
		return color.HiBlackString(string(s))
	default:
		return color.GreenString(string(s))
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// readInput decodes a YAML (or JSON) document from path; "-" reads stdin.
func readInput(cmd *cobra.Command, path string, dst interface{}) error {
	if path == "" {
		return errors.InvalidParam("--input is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "read input").WithDetail(path)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "parse input").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
