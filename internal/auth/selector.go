package auth

import (
	"github.com/systmms/nugetrun/internal/quirks"
)

// Topology classifies the deployment the build is authenticating
// against. It is supplied by the surrounding task, never computed here.
type Topology struct {
	// OnPremises is true for self-hosted deployments, false for the
	// cloud-hosted service. On-premises deployments default to NTLM,
	// so credential injection has to override that identity scheme.
	OnPremises bool
}

// Decision captures the outcome of one selection pass. At most one of
// UseV1 and UseV2 is ever true; they are mutually exclusive plugin
// protocols selected by what the detected version natively supports.
type Decision struct {
	UseV1     bool
	UseV2     bool
	UseConfig bool
}

// Decide runs all three selections against one resolved quirk set.
func Decide(set quirks.Set, topo Topology, providerOverride, configOverride OverrideFlag) Decision {
	return Decision{
		UseV1:     UseV1CredentialProvider(set, topo, providerOverride),
		UseV2:     UseV2CredentialProvider(set, topo, providerOverride),
		UseConfig: UseCredentialConfig(set, topo, configOverride),
	}
}

// UseV2CredentialProvider reports whether the V2 plugin mechanism
// should be activated. Versions without native V2 support are never
// eligible, regardless of overrides.
func UseV2CredentialProvider(set quirks.Set, topo Topology, override OverrideFlag) bool {
	if !set.Has(quirks.V2CredentialProvider) {
		return false
	}
	return credentialProviderEnabled(set, topo, override)
}

// UseV1CredentialProvider reports whether the V1 credential provider
// mechanism should be activated. V1 is the fallback for versions that
// do not speak the V2 protocol.
func UseV1CredentialProvider(set quirks.Set, topo Topology, override OverrideFlag) bool {
	if set.Has(quirks.V2CredentialProvider) {
		return false
	}
	return credentialProviderEnabled(set, topo, override)
}

// credentialProviderEnabled is the enablement predicate shared by the
// V1 and V2 selections. Rules run in strict priority order; the first
// applicable rule decides.
func credentialProviderEnabled(set quirks.Set, topo Topology, override OverrideFlag) bool {
	switch override {
	case ForceEnabled:
		return true
	case ForceDisabled:
		return false
	}
	if set.Has(quirks.NoCredentialProvider) || set.Has(quirks.CredentialProviderRace) {
		return false
	}
	if topo.OnPremises && set.Has(quirks.NoTfsOnPremAuthCredentialProvider) {
		return false
	}
	return true
}

// UseCredentialConfig reports whether config-file credentials should
// be written. It follows the same priority skeleton as the provider
// predicate but has no version-support gate and no broken-provider
// check; only the on-premises config quirk can disable it.
func UseCredentialConfig(set quirks.Set, topo Topology, override OverrideFlag) bool {
	switch override {
	case ForceEnabled:
		return true
	case ForceDisabled:
		return false
	}
	if topo.OnPremises && set.Has(quirks.NoTfsOnPremAuthConfig) {
		return false
	}
	return true
}
