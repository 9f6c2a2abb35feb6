// Package version models the target language version a parse is checked
// against and the table of syntax features gated on it.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a language release such as 3.12.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Latest is the newest version whose syntax the parser understands. It is
// the default target.
var Latest = Version{Major: 3, Minor: 13}

// Parse accepts "3", "3.12", "3.12.1" and the same with a leading "v".
func Parse(s string) (Version, error) {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR[.MINOR[.PATCH]]", s)
	}

	parts := strings.Split(strings.TrimPrefix(semver.Canonical(v), "v"), ".")
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) semver() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 as v is older than, equal to or newer than w.
func (v Version) Compare(w Version) int {
	return semver.Compare(v.semver(), w.semver())
}

// AtLeast reports whether v is w or newer.
func (v Version) AtLeast(w Version) bool {
	return v.Compare(w) >= 0
}

// IsZero reports whether v is the zero value (no target configured).
func (v Version) IsZero() bool {
	return v == Version{}
}

// String renders MAJOR.MINOR, adding PATCH only when it is set.
func (v Version) String() string {
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
