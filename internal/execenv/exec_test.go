package execenv

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/logging"
)

func newTestInvoker() *Invoker {
	return NewInvoker(logging.New(false, true))
}

func TestEnvSlice(t *testing.T) {
	t.Parallel()

	t.Run("sorted_key_value_pairs", func(t *testing.T) {
		t.Parallel()
		env := envSlice(map[string]string{
			"ZEBRA": "z",
			"ALPHA": "a",
			"MID":   "m",
		})
		assert.Equal(t, []string{"ALPHA=a", "MID=m", "ZEBRA=z"}, env)
	})

	t.Run("empty_map", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, envSlice(nil))
	})
}

func TestInvoke_NoToolPath(t *testing.T) {
	t.Parallel()
	invoker := newTestInvoker()

	err := invoker.Invoke(context.Background(), InvokeOptions{})

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, err.Error(), "No tool path")
}

func TestInvoke_ToolNotFound(t *testing.T) {
	t.Parallel()
	invoker := newTestInvoker()

	err := invoker.Invoke(context.Background(), InvokeOptions{
		ToolPath: "definitely-not-a-real-binary-name",
	})

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, err.Error(), "PATH")
}

func TestInvoke_PreservesExitCode(t *testing.T) {
	t.Parallel()
	invoker := newTestInvoker()

	err := invoker.Invoke(context.Background(), InvokeOptions{
		ToolPath: "sh",
		Args:     []string{"-c", "exit 7"},
		Environment: map[string]string{
			"PATH": "/usr/bin:/bin",
		},
	})

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 7, cmdErr.ExitCode)
}

func TestInvoke_EnvironmentReplacesInherited(t *testing.T) {
	// Not parallel: uses t.Setenv.
	invoker := newTestInvoker()

	t.Setenv("NUGETRUN_TEST_INHERITED", "should-not-leak")

	// The child only sees the built environment; the inherited variable
	// must be absent, so the grep finds nothing and the command fails.
	err := invoker.Invoke(context.Background(), InvokeOptions{
		ToolPath: "sh",
		Args:     []string{"-c", `test -z "$NUGETRUN_TEST_INHERITED"`},
		Environment: map[string]string{
			"PATH": "/usr/bin:/bin",
		},
	})
	assert.NoError(t, err)
}

func TestInvoke_RedactsSecretArgs(t *testing.T) {
	// Not parallel: captures global os.Stderr.
	invoker := NewInvoker(logging.New(true, true))
	token := "api-key-value-5551212"

	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	invokeErr := invoker.Invoke(context.Background(), InvokeOptions{
		ToolPath: "true",
		Args:     []string{"push", "pkg.nupkg", "-ApiKey", token},
		Environment: map[string]string{
			"PATH": "/usr/bin:/bin",
		},
		Secrets: []string{token},
	})

	w.Close()
	os.Stderr = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	assert.NoError(t, invokeErr)
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, token, "debug echo must not contain the credential")
}

func TestInvoke_Succeeds(t *testing.T) {
	t.Parallel()
	invoker := newTestInvoker()

	err := invoker.Invoke(context.Background(), InvokeOptions{
		ToolPath: "true",
		Environment: map[string]string{
			"PATH": "/usr/bin:/bin",
		},
	})
	assert.NoError(t, err)
}
