package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/nugetrun/internal/config"
	"github.com/systmms/nugetrun/internal/logging"
	"github.com/systmms/nugetrun/internal/metrics"
	"github.com/systmms/nugetrun/internal/quirks"
)

// writeFakeTool drops a non-PE executable; its version metadata is
// unreadable, which exercises the default-quirks path.
func writeFakeTool(t *testing.T, dir, script string) string {
	t.Helper()
	path := filepath.Join(dir, "nuget")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(t *testing.T, toolPath string, onPrem bool) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Logger: logging.New(false, true),
		Settings: &config.Settings{
			Version:    1,
			ToolPath:   toolPath,
			OnPremises: onPrem,
		},
	}
	return cfg
}

func TestEnvironMap(t *testing.T) {
	t.Parallel()

	env := environMap([]string{"A=1", "B=x=y", "MALFORMED", "C="})
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, env)
}

func TestResolveDecision_UnreadableMetadataUsesDefaults(t *testing.T) {
	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\nexit 0\n")
	cfg := testConfig(t, tool, false)

	res, err := resolveDecision(cfg, metrics.NewDecisionMetrics())
	require.NoError(t, err)

	assert.Nil(t, res.Version)
	assert.True(t, res.Quirks.Has(quirks.NoCredentialProvider))
	assert.False(t, res.Decision.UseV1)
	assert.False(t, res.Decision.UseV2)
	// NoTfsOnPremAuthConfig only bites on-premises.
	assert.True(t, res.Decision.UseConfig)
}

func TestResolveDecision_OnPremDefaultsDisableConfig(t *testing.T) {
	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\nexit 0\n")
	cfg := testConfig(t, tool, true)

	res, err := resolveDecision(cfg, metrics.NewDecisionMetrics())
	require.NoError(t, err)

	assert.False(t, res.Decision.UseConfig)
}

func TestResolveDecision_MissingToolPropagates(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent"), false)

	_, err := resolveDecision(cfg, metrics.NewDecisionMetrics())
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestResolveDecision_EnvironmentOverrideWins(t *testing.T) {
	// Not parallel: uses t.Setenv.
	t.Setenv(config.ForceCredentialProviderEnv, "true")

	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\nexit 0\n")
	cfg := testConfig(t, tool, false)

	res, err := resolveDecision(cfg, metrics.NewDecisionMetrics())
	require.NoError(t, err)

	// The default quirk set says NoCredentialProvider, but the
	// operator override forces the fallback V1 mechanism on.
	assert.True(t, res.Decision.UseV1)
	assert.False(t, res.Decision.UseV2)
}
