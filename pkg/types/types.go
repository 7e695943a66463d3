package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/xerrors"
)

// ChannelFlags packs the release channel (low nibble) and the build configuration (high nibble).
type ChannelFlags int

const (
	FlagsNone ChannelFlags = 0

	// Suite masks the release channel.
	Suite    ChannelFlags = 0x0F
	Stable   ChannelFlags = 0x01
	Testing  ChannelFlags = 0x02
	Unstable ChannelFlags = 0x03

	// Configuration masks the build configuration.
	Configuration ChannelFlags = 0xF0
	Release       ChannelFlags = 0x10
	Debug         ChannelFlags = 0x20

	StableRelease  = Stable | Release
	StableDebug    = Stable | Debug
	TestingRelease = Testing | Release
	TestingDebug   = Testing | Debug
)

var (
	SuiteNames = map[ChannelFlags]string{
		Stable:   "Stable",
		Testing:  "Testing",
		Unstable: "Unstable",
	}
	ConfigurationNames = map[ChannelFlags]string{
		Release: "Release",
		Debug:   "Debug",
	}
	SuiteColor = map[ChannelFlags]func(a ...interface{}) string{
		Stable:   color.New(color.FgGreen).SprintFunc(),
		Testing:  color.New(color.FgYellow).SprintFunc(),
		Unstable: color.New(color.FgRed).SprintFunc(),
	}
)

// Suite returns the release channel part of the flags.
func (f ChannelFlags) Suite() ChannelFlags {
	return f & Suite
}

// Configuration returns the build configuration part of the flags.
func (f ChannelFlags) Configuration() ChannelFlags {
	return f & Configuration
}

// Has reports whether every bit of mask is set in f.
func (f ChannelFlags) Has(mask ChannelFlags) bool {
	return f&mask == mask
}

// String renders the flags as "Suite|Configuration". Bits without a name are rendered in hex.
func (f ChannelFlags) String() string {
	if f == FlagsNone {
		return "None"
	}

	var parts []string
	var unknown ChannelFlags
	if s := f.Suite(); s != 0 {
		if name, ok := SuiteNames[s]; ok {
			parts = append(parts, name)
		} else {
			unknown |= s
		}
	}
	if c := f.Configuration(); c != 0 {
		if name, ok := ConfigurationNames[c]; ok {
			parts = append(parts, name)
		} else {
			unknown |= c
		}
	}
	unknown |= f &^ (Suite | Configuration)
	if unknown != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", int(unknown)))
	}
	return strings.Join(parts, "|")
}

// Colorize renders the flags coloured by release channel.
func (f ChannelFlags) Colorize() string {
	if fn, ok := SuiteColor[f.Suite()]; ok {
		return fn(f.String())
	}
	return color.New(color.FgBlue).SprintFunc()(f.String())
}

// ParseChannelFlags is the inverse of ChannelFlags.String.
// Names are case-insensitive and may be separated by '|', ',' or whitespace.
func ParseChannelFlags(s string) (ChannelFlags, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})

	var f ChannelFlags
	for _, field := range fields {
		if strings.EqualFold(field, "None") {
			continue
		}
		if v, ok := lookupFlag(field); ok {
			f |= v
			continue
		}
		if strings.HasPrefix(strings.ToLower(field), "0x") {
			n, err := strconv.ParseInt(field[2:], 16, 64)
			if err != nil {
				return FlagsNone, xerrors.Errorf("invalid channel flags %q: %w", s, err)
			}
			f |= ChannelFlags(n)
			continue
		}
		return FlagsNone, xerrors.Errorf("unknown channel flag: %s", field)
	}
	return f, nil
}

func lookupFlag(name string) (ChannelFlags, bool) {
	for v, n := range SuiteNames {
		if strings.EqualFold(n, name) {
			return v, true
		}
	}
	for v, n := range ConfigurationNames {
		if strings.EqualFold(n, name) {
			return v, true
		}
	}
	return FlagsNone, false
}

func (f ChannelFlags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *ChannelFlags) UnmarshalText(text []byte) error {
	v, err := ParseChannelFlags(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f ChannelFlags) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

func (f *ChannelFlags) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return f.UnmarshalText([]byte(s))
}
