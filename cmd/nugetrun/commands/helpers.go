package commands

import (
	"errors"
	"os"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/systmms/nugetrun/internal/auth"
	"github.com/systmms/nugetrun/internal/config"
	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/metrics"
	"github.com/systmms/nugetrun/internal/pemeta"
	"github.com/systmms/nugetrun/internal/quirks"
)

// resolution is the outcome of one full decision pass: detected
// version (nil when metadata was unreadable), resolved quirks, and the
// three credential decisions.
type resolution struct {
	Version  *goversion.Version
	Quirks   quirks.Set
	Topology auth.Topology
	Decision auth.Decision
}

// resolveDecision reads the binary's version metadata, resolves
// quirks, and runs the credential selections. The three recognized
// metadata failures degrade to the default quirk set; any other
// metadata error and the minimum-version floor are fatal.
func resolveDecision(cfg *config.Config, m *metrics.DecisionMetrics) (*resolution, error) {
	s := cfg.Settings

	var productVersion *goversion.Version
	info, err := pemeta.ReadVersionInfo(s.ToolPath)
	var metaErr dserrors.MetadataError
	switch {
	case err == nil:
		productVersion = info.ProductVersion
	case errors.As(err, &metaErr):
		cfg.Logger.Warn("%s; assuming default quirks", metaErr.Error())
	default:
		// Unknown cause; masking it risks deciding with wrong quirks.
		return nil, err
	}

	if productVersion != nil {
		if err := pemeta.CheckMinimumVersion(productVersion); err != nil {
			return nil, err
		}
		cfg.Logger.Info("Detected NuGet %s", productVersion.Original())
		m.RecordQuirkResolution("table")
	} else {
		m.RecordQuirkResolution("default")
	}

	set := quirks.Resolve(productVersion)
	cfg.Logger.Debug("Quirks: %s", strings.Join(set.Names(), ", "))

	topo := auth.Topology{OnPremises: s.OnPremises}
	decision := auth.Decide(
		set,
		topo,
		auth.ParseOverride(s.ProviderOverride(os.Getenv)),
		auth.ParseOverride(s.ConfigOverride(os.Getenv)),
	)

	cfg.Logger.Debug("V1 credential provider: %t", decision.UseV1)
	cfg.Logger.Debug("V2 credential provider: %t", decision.UseV2)
	cfg.Logger.Debug("Config-file credentials: %t", decision.UseConfig)
	m.RecordDecision("v1", decision.UseV1)
	m.RecordDecision("v2", decision.UseV2)
	m.RecordDecision("config", decision.UseConfig)

	return &resolution{
		Version:  productVersion,
		Quirks:   set,
		Topology: topo,
		Decision: decision,
	}, nil
}

// environMap parses the KEY=value pairs from os.Environ into a map.
func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 {
			env[parts[0]] = parts[1]
		}
	}
	return env
}
