package logging_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/nugetrun/internal/logging"
)

// captureStderr captures stderr output for testing
func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// TestAccessTokenNeverLogged verifies the access token is redacted when a
// Secret value reaches any log level.
func TestAccessTokenNeverLogged(t *testing.T) {
	// Note: Cannot use t.Parallel() because subtests use captureStderr() which modifies global os.Stderr

	token := "vss-build-service-token-12345"

	levels := []struct {
		name  string
		debug bool
		logFn func(*logging.Logger, string, ...interface{})
	}{
		{"info", false, (*logging.Logger).Info},
		{"warn", false, (*logging.Logger).Warn},
		{"error", false, (*logging.Logger).Error},
		{"debug", true, (*logging.Logger).Debug},
	}

	for _, tt := range levels {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.New(tt.debug, true)

			output := captureStderr(func() {
				tt.logFn(logger, "Injecting VSS_NUGET_ACCESSTOKEN=%s", logging.Secret(token))
			})

			assert.Contains(t, output, "[REDACTED]")
			assert.NotContains(t, output, token, "log must not contain the token value")
		})
	}
}

// TestSecretAlongsidePublicValues verifies only the secret portion of a
// message is redacted.
func TestSecretAlongsidePublicValues(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(true, true)
	token := "private-token-abc999"

	output := captureStderr(func() {
		logger.Debug("Injecting %s=%s for prefixes %s",
			"VSS_NUGET_ACCESSTOKEN", logging.Secret(token), "https://pkgs.example.com/")
	})

	assert.Contains(t, output, "VSS_NUGET_ACCESSTOKEN", "variable name should appear as-is")
	assert.Contains(t, output, "https://pkgs.example.com/", "URI prefixes should not be redacted")
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, token)
}

// TestRedactCommandLine verifies Redact strips credentials out of an
// echoed command line without disturbing the rest of it.
func TestRedactCommandLine(t *testing.T) {
	t.Parallel()

	token := "api-key-value-5551212"
	line := "Executing: /usr/bin/nuget push pkg.nupkg -ApiKey " + token + " -Source internal"

	redacted := logging.Redact(line, []string{token})

	assert.Equal(t, "Executing: /usr/bin/nuget push pkg.nupkg -ApiKey [REDACTED] -Source internal", redacted)
	assert.NotContains(t, redacted, token)
}

// TestRedactLeavesShortValues verifies trivially short values are not
// treated as secrets.
func TestRedactLeavesShortValues(t *testing.T) {
	t.Parallel()

	line := "Executing: nuget restore -v q"
	assert.Equal(t, line, logging.Redact(line, []string{"q", ""}))
}

// TestDebugModeDisabled verifies debug logs don't appear when debug is off
func TestDebugModeDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Debug("Resolved quirks: none")
	})

	assert.Empty(t, output, "Debug message should not appear when debug is disabled")
}

// TestDebugModeEnabled verifies debug logs appear when debug is on
func TestDebugModeEnabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(true, true)

	output := captureStderr(func() {
		logger.Debug("Resolved quirks: V2CredentialProvider")
	})

	assert.Contains(t, output, "[DEBUG]")
	assert.Contains(t, output, "V2CredentialProvider")
}

// TestColorOutputDisabled verifies logs work correctly without color
func TestColorOutputDisabled(t *testing.T) {
	// Note: Cannot use t.Parallel() because captureStderr() modifies global os.Stderr

	logger := logging.New(false, true)

	output := captureStderr(func() {
		logger.Info("Detected NuGet 4.8.1.5435")
	})

	assert.NotContains(t, output, "\033[", "Should not contain ANSI codes when color disabled")
	assert.Contains(t, output, "✓", "Should contain checkmark")
}
