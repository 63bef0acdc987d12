package pemeta

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	dserrors "github.com/systmms/nugetrun/internal/errors"
)

// Info holds the version metadata embedded in a PE binary's version
// resource. FileVersion and ProductVersion are the four-part
// major.minor.build.revision values from VS_FIXEDFILEINFO; Strings
// carries the textual entries of the string table (notably
// "ProductVersion", which may include prerelease labels the fixed
// info cannot express).
type Info struct {
	FileVersion    *goversion.Version
	ProductVersion *goversion.Version
	Strings        map[string]string
}

// MinimumVersion is the oldest product version the invocation engine
// supports. Binaries below it are rejected before any quirk resolution
// runs.
const MinimumVersion = "3.5.0"

// CheckMinimumVersion returns UnsupportedVersionError when the product
// version falls below the 3.5 floor. The comparison only considers the
// major and minor components.
func CheckMinimumVersion(v *goversion.Version) error {
	seg := v.Segments()
	major, minor := seg[0], seg[1]
	if major < 3 || (major == 3 && minor < 5) {
		return dserrors.UnsupportedVersionError{
			Detected: v.Original(),
			Minimum:  MinimumVersion,
		}
	}
	return nil
}

// versionFromWords builds a four-part version from the packed
// most-significant/least-significant dwords of a VS_FIXEDFILEINFO entry.
func versionFromWords(ms, ls uint32) (*goversion.Version, error) {
	return goversion.NewVersion(fmt.Sprintf("%d.%d.%d.%d", ms>>16, ms&0xffff, ls>>16, ls&0xffff))
}
