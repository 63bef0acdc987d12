package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCommand_TextReport(t *testing.T) {
	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\nexit 0\n")
	cfg := writeRunConfig(t, tool)

	var out bytes.Buffer
	cmd := NewInspectCommand(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	report := out.String()
	assert.Contains(t, report, "unreadable, default quirks assumed")
	assert.Contains(t, report, "NoCredentialProvider")
	assert.Contains(t, report, "V1 credential provider:   disabled")
	assert.Contains(t, report, "V2 credential provider:   disabled")
	assert.Contains(t, report, "Config-file credentials:  enabled")
	assert.Contains(t, report, "cloud-hosted")
}

func TestInspectCommand_JSONReport(t *testing.T) {
	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\nexit 0\n")
	cfg := writeRunConfig(t, tool)

	var out bytes.Buffer
	cmd := NewInspectCommand(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var report inspectReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Empty(t, report.Version)
	assert.Contains(t, report.Quirks, "NoCredentialProvider")
	assert.False(t, report.UseV1)
	assert.False(t, report.UseV2)
	assert.True(t, report.UseConfig)
}

func TestInspectCommand_NothingExecuted(t *testing.T) {
	// The fake tool records an invocation if it ever runs.
	marker := t.TempDir() + "/ran"
	tool := writeFakeTool(t, t.TempDir(), "#!/bin/sh\ntouch "+marker+"\n")
	cfg := writeRunConfig(t, tool)

	var out bytes.Buffer
	cmd := NewInspectCommand(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.NoFileExists(t, marker)
}
