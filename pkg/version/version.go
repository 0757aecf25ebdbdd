// Package version implements the strict three-component scheme used
// by project manifests: MAJOR.MINOR.PATCH, nothing else.
//
// Pre-release or build metadata never enters a manifest through this
// tool, so values carrying either do not parse here.
package version

import (
	"fmt"

	"github.com/blang/semver"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
)

// Field selects the version component a bump applies to.
type Field int

const (
	// Major selects the first component
	Major Field = iota
	// Minor selects the second component
	Minor
	// Patch selects the third component
	Patch
)

func (f Field) String() string {
	switch f {
	case Major:
		return "major"
	case Minor:
		return "minor"
	default:
		return "patch"
	}
}

// Version is an immutable major.minor.patch value.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Parse interprets s as a strict major.minor.patch version:
// exactly three dot-separated non-negative integers, no leading
// zeros, no pre-release tags, no build metadata.
func Parse(s string) (Version, error) {
	sv, err := semver.Parse(s)
	if err != nil || len(sv.Pre) > 0 || len(sv.Build) > 0 {
		return Version{}, errors.New(fmt.Sprintf("%q is not a plain major.minor.patch version", s)).
			Wrap(status.ErrInvalidVersion)
	}
	return Version{Major: sv.Major, Minor: sv.Minor, Patch: sv.Patch}, nil
}

// MustParse is Parse for statically known inputs. It panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) sv() semver.Version {
	return semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// String yields the canonical "major.minor.patch" form. It round-trips
// with Parse.
func (v Version) String() string {
	return v.sv().String()
}

// Bump returns the next version for the selected field. Components
// below the bumped one reset to zero, so 2.5.7 bumped at minor is
// 2.6.0 and bumped at major is 3.0.0.
func (v Version) Bump(f Field) Version {
	switch f {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// Compare orders versions lexicographically by (major, minor, patch):
// -1 when v is lower than o, 0 when equal, 1 when higher.
func (v Version) Compare(o Version) int {
	return v.sv().Compare(o.sv())
}
