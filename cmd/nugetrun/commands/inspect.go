package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/nugetrun/internal/config"
	"github.com/systmms/nugetrun/internal/metrics"
)

// inspectReport is the JSON shape of 'inspect --json'.
type inspectReport struct {
	Version    string   `json:"version,omitempty"`
	Quirks     []string `json:"quirks"`
	OnPremises bool     `json:"onPremises"`
	UseV1      bool     `json:"useV1CredentialProvider"`
	UseV2      bool     `json:"useV2CredentialProvider"`
	UseConfig  bool     `json:"useCredentialConfig"`
}

func NewInspectCommand(cfg *config.Config) *cobra.Command {
	var (
		toolPath   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the version, quirks and credential decisions without invoking",
		Long: `Resolve the configured binary's version metadata and print the
quirk set and credential decisions that 'run' would act on. Nothing is
executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if toolPath != "" {
				cfg.Settings.ToolPath = toolPath
			}

			res, err := resolveDecision(cfg, metrics.NewDecisionMetrics())
			if err != nil {
				return err
			}

			if jsonOutput {
				report := inspectReport{
					Quirks:     res.Quirks.Names(),
					OnPremises: res.Topology.OnPremises,
					UseV1:      res.Decision.UseV1,
					UseV2:      res.Decision.UseV2,
					UseConfig:  res.Decision.UseConfig,
				}
				if res.Version != nil {
					report.Version = res.Version.Original()
				}
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			w := cmd.OutOrStdout()
			if res.Version != nil {
				fmt.Fprintf(w, "Version:   %s\n", res.Version.Original())
			} else {
				fmt.Fprintf(w, "Version:   (unreadable, default quirks assumed)\n")
			}
			quirkNames := strings.Join(res.Quirks.Names(), ", ")
			if quirkNames == "" {
				quirkNames = "(none)"
			}
			fmt.Fprintf(w, "Quirks:    %s\n", quirkNames)
			topology := "cloud-hosted"
			if res.Topology.OnPremises {
				topology = "on-premises"
			}
			fmt.Fprintf(w, "Topology:  %s\n", topology)
			fmt.Fprintf(w, "V1 credential provider:   %s\n", enabledWord(res.Decision.UseV1))
			fmt.Fprintf(w, "V2 credential provider:   %s\n", enabledWord(res.Decision.UseV2))
			fmt.Fprintf(w, "Config-file credentials:  %s\n", enabledWord(res.Decision.UseConfig))
			return nil
		},
	}

	cmd.Flags().StringVar(&toolPath, "tool", "", "Path to the NuGet binary (overrides toolPath in config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")

	return cmd
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
