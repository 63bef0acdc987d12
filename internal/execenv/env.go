package execenv

import (
	"net/url"
	"strings"

	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/logging"
	"github.com/systmms/nugetrun/internal/secure"
)

// Environment variable names written into the child process. Inherited
// entries are matched case-insensitively against these, but the output
// always uses the exact constant spelling.
const (
	// V1CredentialProvidersPath points the binary at V1 credential
	// provider executables.
	V1CredentialProvidersPath = "NUGET_CREDENTIALPROVIDERS_PATH"

	// V2PluginPaths points the binary at V2 protocol plugins.
	V2PluginPaths = "NUGET_PLUGIN_PATHS"

	// ExtensionsPath is the legacy extensions search path.
	ExtensionsPath = "NUGET_EXTENSIONS_PATH"

	// AccessTokenVar carries the build-service access token for the
	// credential provider.
	AccessTokenVar = "VSS_NUGET_ACCESSTOKEN"

	// URIPrefixesVar lists the feed URI prefixes the token is scoped
	// to, semicolon-joined.
	URIPrefixesVar = "VSS_NUGET_URI_PREFIXES"

	// OverrideDefaultCredentialsVar tells the provider to override the
	// deployment's default identity scheme. Always set to true.
	OverrideDefaultCredentialsVar = "NUGET_CREDENTIAL_PROVIDER_OVERRIDE_DEFAULT"

	// HTTPProxyVar is the standard proxy variable honored by the child.
	HTTPProxyVar = "HTTP_PROXY"
)

// BuildSettings are the per-invocation inputs to environment assembly.
// Absent optional values are zero values, never errors.
type BuildSettings struct {
	// DisableExtensions drops the legacy extensions path from the
	// inherited environment.
	DisableExtensions bool

	// CredentialProviderFolder is an explicit V1 provider directory
	// from task settings. Populated only when the V1 mechanism was
	// selected.
	CredentialProviderFolder string

	// PluginPaths is an explicit V2 plugin path list from task
	// settings. Populated only when the V2 mechanism was selected.
	PluginPaths string

	// Proxy settings. Username and Password are independently
	// optional; Password is ignored without Username.
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
}

// Credentials carries the internal access-token data injected for the
// credential provider, when the build has any.
type Credentials struct {
	Token       *secure.TokenBuffer
	URIPrefixes []string
}

// Builder assembles child-process environments.
type Builder struct {
	logger *logging.Logger
}

// NewBuilder creates a new environment builder
func NewBuilder(logger *logging.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build merges the inherited environment with the invocation's
// credential and proxy settings into the complete environment for the
// child process. The result replaces the child's environment
// wholesale; callers must not overlay it on top of os.Environ.
//
// Exactly one of the V1 and V2 provider-path variables is ever
// emitted, with V1 taking priority when both sides have values.
func (b *Builder) Build(inherited map[string]string, settings BuildSettings, creds *Credentials) (map[string]string, error) {
	out := make(map[string]string, len(inherited)+6)

	var inheritedV1, inheritedV2 string
	for name, value := range inherited {
		switch {
		case strings.EqualFold(name, ExtensionsPath):
			if settings.DisableExtensions {
				b.logger.Debug("Dropping %s: extensions are disabled", name)
				continue
			}
			out[name] = value
		case strings.EqualFold(name, V1CredentialProvidersPath):
			// Provider paths are never blindly forwarded; they are
			// recombined with settings below.
			inheritedV1 = value
		case strings.EqualFold(name, V2PluginPaths):
			inheritedV2 = value
		default:
			out[name] = value
		}
	}

	if creds != nil && creds.Token != nil {
		token, err := creds.Token.Reveal()
		if err != nil {
			return nil, err
		}
		if token != "" {
			out[AccessTokenVar] = token
			out[URIPrefixesVar] = strings.Join(creds.URIPrefixes, ";")
			b.logger.Debug("Injecting %s=%s for prefixes %s",
				AccessTokenVar, logging.Secret(token), out[URIPrefixesVar])
		}
	}

	out[OverrideDefaultCredentialsVar] = "true"

	if settings.CredentialProviderFolder != "" || inheritedV1 != "" {
		out[V1CredentialProvidersPath] = joinPaths(settings.CredentialProviderFolder, inheritedV1)
	} else if settings.PluginPaths != "" || inheritedV2 != "" {
		out[V2PluginPaths] = joinPaths(settings.PluginPaths, inheritedV2)
	}

	if settings.ProxyURL != "" {
		proxy, err := proxyValue(settings.ProxyURL, settings.ProxyUsername, settings.ProxyPassword)
		if err != nil {
			return nil, err
		}
		out[HTTPProxyVar] = proxy
	}

	return out, nil
}

// joinPaths combines the settings-provided and inherited path lists,
// settings first, skipping absent sides.
func joinPaths(fromSettings, inherited string) string {
	switch {
	case fromSettings == "":
		return inherited
	case inherited == "":
		return fromSettings
	}
	return fromSettings + ";" + inherited
}

// proxyValue builds the proxy variable by attaching the credentials as
// the URL's authentication component and re-serializing.
func proxyValue(rawURL, username, password string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", dserrors.ConfigError{
			Field:      "proxy.url",
			Value:      rawURL,
			Message:    "invalid proxy URL",
			Suggestion: "Use format: http://hostname:port",
		}
	}

	if username != "" {
		if password != "" {
			u.User = url.UserPassword(username, password)
		} else {
			u.User = url.User(username)
		}
	}

	return u.String(), nil
}
