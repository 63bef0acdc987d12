package quirks

import (
	goversion "github.com/hashicorp/go-version"
)

// tableEntry pairs a version-range predicate with the quirks of every
// version in that range.
type tableEntry struct {
	constraint goversion.Constraints
	quirks     []Quirk
}

// table maps version ranges to quirk sets. Entries run newest-first
// and the first matching entry wins; matches are not unioned. The
// table starts at the 3.5 support floor; older versions are rejected
// before resolution ever runs.
var table = []tableEntry{
	{mustConstraint(">= 4.8.0"), []Quirk{
		V2CredentialProvider,
	}},
	{mustConstraint(">= 4.0.0, < 4.8.0"), nil},
	{mustConstraint(">= 3.6.0, < 4.0.0"), []Quirk{
		NoTfsOnPremAuthCredentialProvider,
	}},
	{mustConstraint(">= 3.5.0, < 3.6.0"), []Quirk{
		CredentialProviderRace,
		NoTfsOnPremAuthCredentialProvider,
		NoTfsOnPremAuthConfig,
		NoReturnCodeForHelp,
	}},
}

func mustConstraint(s string) goversion.Constraints {
	c, err := goversion.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultSet is the conservative assumption used when a binary's
// version metadata cannot be read: no credential provider, config-file
// auth assumed unavailable against on-premises deployments.
func DefaultSet() Set {
	return NewSet(NoCredentialProvider, NoTfsOnPremAuthConfig)
}

// Resolve returns the quirk set for the given product version. A nil
// version means the binary's metadata was unreadable and yields
// DefaultSet; this is an expected degraded case, never an error.
func Resolve(v *goversion.Version) Set {
	if v == nil {
		return DefaultSet()
	}
	for _, entry := range table {
		if entry.constraint.Check(v) {
			return NewSet(entry.quirks...)
		}
	}
	return NewSet()
}
