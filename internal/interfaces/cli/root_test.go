package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/config"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/testutil"
	"github.com/turtacn/LienPilot/pkg/errors"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// testFactory serves an in-process service on a fixed clock and counts
// releases.
func testFactory(released *int) ServiceFactory {
	clock := testutil.NewClock(testNow)
	return func(_ context.Context, _ *config.Config, log logging.Logger) (notice.Service, func(), error) {
		svc := notice.NewService(notice.Deps{Logger: log, Clock: clock.Now})
		return svc, func() {
			if released != nil {
				*released++
			}
		}, nil
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, factory ServiceFactory, args ...string) result {
	t.Helper()
	if factory == nil {
		factory = testFactory(nil)
	}
	root := NewRootCommand(factory)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := Execute(root)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(nil)
	assert.Equal(t, "lienpilot", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "licensed attorney")

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"states", "deadline", "eligibility", "noi", "sequence", "export"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)
	assert.Equal(t, "warn", cmd.PersistentFlags().Lookup("log-level").DefValue)
}

func TestExecute_ReleasesService(t *testing.T) {
	var released int
	res := execute(t, testFactory(&released), "states")
	require.NoError(t, res.err)
	assert.Equal(t, 1, released)
}

func TestExecute_UnknownOutputFormat(t *testing.T) {
	res := execute(t, nil, "-o", "xml", "states")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeBadRequest))
	assert.Contains(t, res.stderr, "Error:")
	assert.Contains(t, res.stderr, "unknown output format")
}

func TestExecute_FactoryError(t *testing.T) {
	failing := func(context.Context, *config.Config, logging.Logger) (notice.Service, func(), error) {
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "redis down")
	}
	res := execute(t, failing, "states")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "service initialization failed")
	assert.Contains(t, res.stderr, "redis down")
}

func TestExecute_MissingConfigFile(t *testing.T) {
	res := execute(t, nil, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "states")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "config initialization failed")
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := NewRootCommand(nil)
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestReadInput(t *testing.T) {
	cmd := NewRootCommand(nil)

	var reqs []notice.DeadlineRequest
	path := writeFile(t, "in.yaml", "- state: CA\n  last_work_date: \"2025-01-31\"\n")
	require.NoError(t, readInput(cmd, path, &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, "2025-01-31", reqs[0].LastWorkDate)

	cmd.SetIn(bytes.NewBufferString("- state: TX\n"))
	require.NoError(t, readInput(cmd, "-", &reqs))
	assert.Equal(t, "TX", reqs[0].State)

	err := readInput(cmd, "", &reqs)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	err = readInput(cmd, filepath.Join(t.TempDir(), "nope.yaml"), &reqs)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	err = readInput(cmd, writeFile(t, "bad.yaml", "state: [unclosed"), &reqs)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(nil))
	d := testutil.Date(t, "2025-05-01")
	assert.Equal(t, "2025-05-01", formatDate(&d))
}

//Personal.AI order the ending
