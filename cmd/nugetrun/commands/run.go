package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/nugetrun/internal/config"
	"github.com/systmms/nugetrun/internal/execenv"
	"github.com/systmms/nugetrun/internal/metrics"
	"github.com/systmms/nugetrun/internal/secure"
)

func NewRunCommand(cfg *config.Config) *cobra.Command {
	var (
		toolPath   string
		workingDir string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <nuget args...>",
		Short: "Invoke NuGet with version-aware authentication",
		Long: `Invoke the configured NuGet binary with the correct credential
mechanism for its version. The binary's embedded version metadata is read,
known quirks of that version are resolved, and the V1 credential provider,
V2 plugin, or config-file credentials are activated accordingly before the
child process launches.

Arguments after '--' are passed to the binary verbatim.

Examples:
  nugetrun run -- restore MySolution.sln
  nugetrun run --tool tools/nuget.exe -- push pkg.nupkg
  NUGETRUN_FORCE_CREDENTIAL_PROVIDER=false nugetrun run -- restore`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			s := cfg.Settings
			if toolPath != "" {
				s.ToolPath = toolPath
			}

			if s.Metrics.Enabled {
				metrics.InitMetrics()
				serverCfg := metrics.DefaultServerConfig()
				serverCfg.Enabled = true
				if s.Metrics.Port != 0 {
					serverCfg.Port = s.Metrics.Port
				}
				if s.Metrics.Path != "" {
					serverCfg.Path = s.Metrics.Path
				}
				server := metrics.NewServer(serverCfg)
				if err := server.Start(); err != nil {
					cfg.Logger.Warn("Metrics server failed to start: %v", err)
				} else {
					defer func() {
						ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
						defer cancel()
						_ = server.Stop(ctx)
					}()
				}
			}
			m := metrics.NewDecisionMetrics()

			res, err := resolveDecision(cfg, m)
			if err != nil {
				return err
			}

			if err := cfg.ResolveProxyPassword(); err != nil {
				return err
			}

			settings := execenv.BuildSettings{
				DisableExtensions: s.DisableExtensions,
				ProxyURL:          s.Proxy.URL,
				ProxyUsername:     s.Proxy.Username,
				ProxyPassword:     s.Proxy.Password,
			}
			// The discovered provider location only applies when its
			// mechanism was selected.
			if res.Decision.UseV1 {
				settings.CredentialProviderFolder = s.Provider.Folder
			}
			if res.Decision.UseV2 {
				settings.PluginPaths = s.Provider.PluginPaths
			}

			var (
				creds   *execenv.Credentials
				secrets []string
			)
			anyMechanism := res.Decision.UseV1 || res.Decision.UseV2 || res.Decision.UseConfig
			if token := os.Getenv(config.AccessTokenEnv); token != "" && anyMechanism {
				creds = &execenv.Credentials{
					Token:       secure.NewTokenBuffer(token),
					URIPrefixes: s.URIPrefixes,
				}
				defer creds.Token.Destroy()
				secrets = append(secrets, token)
			}
			if s.Proxy.Password != "" {
				secrets = append(secrets, s.Proxy.Password)
			}

			builder := execenv.NewBuilder(cfg.Logger)
			env, err := builder.Build(environMap(os.Environ()), settings, creds)
			if err != nil {
				return err
			}

			invoker := execenv.NewInvoker(cfg.Logger)
			err = invoker.Invoke(cmd.Context(), execenv.InvokeOptions{
				ToolPath:    s.ToolPath,
				Args:        args,
				Environment: env,
				WorkingDir:  workingDir,
				Timeout:     time.Duration(s.TimeoutSeconds) * time.Second,
				Secrets:     secrets,
			})
			if err != nil {
				m.RecordInvocation("failure")
				return err
			}
			m.RecordInvocation("success")
			return nil
		},
	}

	cmd.Flags().StringVar(&toolPath, "tool", "", "Path to the NuGet binary (overrides toolPath in config)")
	cmd.Flags().StringVar(&workingDir, "cwd", "", "Working directory for the child process")

	return cmd
}
