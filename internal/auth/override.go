package auth

import "strings"

// OverrideFlag is the tri-state value of an operator escape-hatch
// switch. An explicit override always wins over quirk-derived or
// topology-derived inference.
type OverrideFlag int

const (
	// Unset means no override was given; the decision falls through to
	// quirk and topology rules.
	Unset OverrideFlag = iota

	// ForceEnabled forces the mechanism on regardless of quirks.
	ForceEnabled

	// ForceDisabled forces the mechanism off regardless of quirks.
	ForceDisabled
)

// ParseOverride interprets a raw switch value. "true" and "false"
// force the decision; anything else, including the empty string, is
// Unset.
func ParseOverride(raw string) OverrideFlag {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return ForceEnabled
	case "false":
		return ForceDisabled
	}
	return Unset
}

func (f OverrideFlag) String() string {
	switch f {
	case ForceEnabled:
		return "force-enabled"
	case ForceDisabled:
		return "force-disabled"
	}
	return "unset"
}
