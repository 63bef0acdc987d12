package quirks

import "sort"

// Quirk names a known behavioral trait of a specific NuGet version: a
// bug, a missing feature, or a race. Quirks describe the shipped
// binary, never runtime state.
type Quirk string

const (
	// NoCredentialProvider marks versions with no working credential
	// provider support at all.
	NoCredentialProvider Quirk = "NoCredentialProvider"

	// CredentialProviderRace marks versions whose provider handshake
	// can race the first feed request, producing spurious 401s.
	CredentialProviderRace Quirk = "CredentialProviderRace"

	// V2CredentialProvider marks versions that speak the V2 plugin
	// protocol instead of the V1 credential provider protocol.
	V2CredentialProvider Quirk = "V2CredentialProvider"

	// NoTfsOnPremAuthCredentialProvider marks versions whose credential
	// provider cannot override the default NTLM identity used by
	// on-premises deployments.
	NoTfsOnPremAuthCredentialProvider Quirk = "NoTfsOnPremAuthCredentialProvider"

	// NoTfsOnPremAuthConfig marks versions that ignore config-file
	// credentials against on-premises deployments.
	NoTfsOnPremAuthConfig Quirk = "NoTfsOnPremAuthConfig"

	// NoReturnCodeForHelp marks versions whose help command exits
	// nonzero. It does not participate in credential selection.
	NoReturnCodeForHelp Quirk = "NoReturnCodeForHelp"
)

// Set is an immutable collection of quirks resolved for one binary
// version. A Set is fully populated at construction and never mutated.
type Set struct {
	members map[Quirk]struct{}
}

// NewSet builds a Set from the given quirks.
func NewSet(members ...Quirk) Set {
	m := make(map[Quirk]struct{}, len(members))
	for _, q := range members {
		m[q] = struct{}{}
	}
	return Set{members: m}
}

// Has reports whether q is in the set.
func (s Set) Has(q Quirk) bool {
	_, ok := s.members[q]
	return ok
}

// Len returns the number of quirks in the set.
func (s Set) Len() int {
	return len(s.members)
}

// Names returns the quirk names in sorted order, for diagnostic logging.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.members))
	for q := range s.members {
		names = append(names, string(q))
	}
	sort.Strings(names)
	return names
}
