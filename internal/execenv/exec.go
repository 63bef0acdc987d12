package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/logging"
)

// Invoker launches the package-manager binary with a fully built
// environment.
type Invoker struct {
	logger *logging.Logger
}

// NewInvoker creates a new invoker
func NewInvoker(logger *logging.Logger) *Invoker {
	return &Invoker{logger: logger}
}

// InvokeOptions configures one child-process launch
type InvokeOptions struct {
	ToolPath    string            // Path to the binary to run
	Args        []string          // Arguments passed through verbatim
	Environment map[string]string // Complete child environment, consumed exactly once
	WorkingDir  string            // Working directory for the command
	Timeout     time.Duration     // Zero means no timeout
	Secrets     []string          // Values to redact from log output
}

// Invoke runs the binary. The environment in options replaces the
// child's environment entirely. The child's exit code is preserved in
// the returned CommandError.
func (i *Invoker) Invoke(ctx context.Context, options InvokeOptions) error {
	if options.ToolPath == "" {
		return dserrors.UserError{
			Message:    "No tool path specified",
			Suggestion: "Set toolPath in nugetrun.yaml or pass --tool",
		}
	}

	resolved, err := exec.LookPath(options.ToolPath)
	if err != nil {
		return dserrors.WrapCommandNotFound(options.ToolPath, err)
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, resolved, options.Args...)
	cmd.Env = envSlice(options.Environment)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	// Args may carry credentials, such as -ApiKey values or the access
	// token echoed by CI scripts. Never log them unredacted.
	i.logger.Debug("Executing: %s %s", resolved, logging.Redact(strings.Join(options.Args, " "), options.Secrets))
	i.logger.Debug("Child environment variables: %d", len(options.Environment))

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return dserrors.CommandError{
				Command:    resolved,
				ExitCode:   exitErr.ExitCode(),
				Suggestion: "Check the command output above for details",
			}
		}
		return dserrors.CommandError{
			Command: resolved,
			Message: err.Error(),
		}
	}

	return nil
}

// envSlice converts the environment map into the sorted KEY=value form
// the os/exec API takes. Sorting keeps debug output stable.
func envSlice(environment map[string]string) []string {
	result := make([]string, 0, len(environment))
	for key, value := range environment {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(result)
	return result
}
