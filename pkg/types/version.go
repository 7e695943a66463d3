package types

import (
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"golang.org/x/xerrors"
)

const maxComponents = 4

// Version is a numeric major.minor[.build[.revision]] version.
// The zero value means "no version" and orders below every defined version.
type Version struct {
	parts [maxComponents]int
	n     int
}

// NewVersion builds a version from its components. Components after the revision are dropped.
func NewVersion(major, minor int, more ...int) Version {
	v := Version{n: 2}
	v.parts[0], v.parts[1] = major, minor
	for i, c := range more {
		if 2+i >= maxComponents {
			break
		}
		v.parts[2+i] = c
		v.n++
	}
	return v
}

// ParseVersion parses "1.2", "1.2.3" or "1.2.3.4", with an optional leading "v".
// Leading zeros are allowed ("2024.0305.1230"). Pre-release and build metadata are rejected.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, xerrors.New("empty version")
	}

	hv, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}, xerrors.Errorf("invalid version %q: %w", s, err)
	}
	if hv.Prerelease() != "" || hv.Metadata() != "" {
		return Version{}, xerrors.Errorf("invalid version %q: suffix is not allowed", s)
	}

	// go-version pads to three segments, so count what was actually written.
	n := strings.Count(strings.TrimPrefix(hv.Original(), "v"), ".") + 1
	if n < 2 || n > maxComponents {
		return Version{}, xerrors.Errorf("invalid version %q: expected 2 to %d components", s, maxComponents)
	}

	v := Version{n: n}
	for i, seg := range hv.Segments64()[:n] {
		if seg > int64(^uint32(0)>>1) {
			return Version{}, xerrors.Errorf("invalid version %q: component out of range", s)
		}
		v.parts[i] = int(seg)
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) IsZero() bool {
	return v.n == 0
}

func (v Version) Major() int {
	return v.component(0)
}

func (v Version) Minor() int {
	return v.component(1)
}

// Build returns -1 when the version has no build component.
func (v Version) Build() int {
	return v.component(2)
}

// Revision returns -1 when the version has no revision component.
func (v Version) Revision() int {
	return v.component(3)
}

func (v Version) component(i int) int {
	if i >= v.n {
		if i < 2 {
			return 0
		}
		return -1
	}
	return v.parts[i]
}

// Compare returns -1, 0 or 1. Missing components order before zero, so 1.0 < 1.0.0.
func (v Version) Compare(o Version) int {
	switch {
	case v.IsZero() && o.IsZero():
		return 0
	case v.IsZero():
		return -1
	case o.IsZero():
		return 1
	}
	for i := 0; i < maxComponents; i++ {
		a, b := v.component(i), o.component(i)
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
	}
	return 0
}

func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) GreaterThan(o Version) bool {
	return v.Compare(o) > 0
}

func (v Version) String() string {
	parts := make([]string, v.n)
	for i := 0; i < v.n; i++ {
		parts[i] = strconv.Itoa(v.parts[i])
	}
	return strings.Join(parts, ".")
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*v = Version{}
		return nil
	}
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return v.UnmarshalText([]byte(s))
}
