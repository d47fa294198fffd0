package rscript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/nao1215/revigodl/internal/log"
)

// DefaultCommand runs a script non-interactively, writing <script>.Rout
// next to it.
const DefaultCommand = "R CMD BATCH"

// ErrEmptyCommand is returned when the command line has no words.
var ErrEmptyCommand = errors.New("empty R command")

// Runner renders an R script. Implementations must block until the
// interpreter exits and must not report its outcome.
type Runner interface {
	Run(ctx context.Context, scriptPath string)
}

// CommandRunner runs scripts with an external command line.
type CommandRunner struct {
	name   string
	args   []string
	logger *slog.Logger
}

// NewCommandRunner parses command with shell quoting rules. The script file
// name is appended as the last argument on every run.
func NewCommandRunner(command string, logger *slog.Logger) (*CommandRunner, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid R command %q: %w", command, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	if logger == nil {
		logger = log.NewDiscardLogger()
	}
	return &CommandRunner{name: words[0], args: words[1:], logger: logger}, nil
}

// Command returns the program and fixed arguments.
func (r *CommandRunner) Command() (string, []string) {
	return r.name, append([]string(nil), r.args...)
}

// Run executes the command on scriptPath from the script's directory and
// waits for it to finish. Failures are logged, not returned.
func (r *CommandRunner) Run(ctx context.Context, scriptPath string) {
	start := time.Now()
	output, err := r.exec(ctx, scriptPath)
	r.logger.Debug("R finished",
		"script", scriptPath,
		"command", r.name,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"status", exitStatus(err),
		"output", string(bytes.TrimSpace(output)),
	)
}

// exec runs the interpreter and returns its combined output.
func (r *CommandRunner) exec(ctx context.Context, scriptPath string) ([]byte, error) {
	args := append(append([]string(nil), r.args...), filepath.Base(scriptPath))
	cmd := exec.CommandContext(ctx, r.name, args...) //nolint:gosec // Command line comes from the user's configuration
	cmd.Dir = filepath.Dir(scriptPath)
	return cmd.CombinedOutput()
}

// exitStatus describes the outcome of exec for logging.
func exitStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("exit %d", exitErr.ExitCode())
	}
	return err.Error()
}

// NopRunner skips rendering. It is used when R should not be run at all.
type NopRunner struct{}

// Run does nothing.
func (NopRunner) Run(context.Context, string) {}
