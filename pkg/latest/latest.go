// Package latest describes the most recent published release of a piece of software
// and how two such publications order against each other.
package latest

import (
	"encoding/json"
	"io"
	"net/url"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/types"
)

// Descriptor is the content of a LATESTVERSION publication.
type Descriptor struct {
	SoftwareName    string
	AssemblyVersion types.Version
	FileVersion     types.Version
	SetupVersion    types.Version
	UpdateURI       *url.URL
	ChannelFlags    types.ChannelFlags
	ReleaseDate     time.Time
	SetupPackage    string
	SetupArguments  string
}

// Empty returns a descriptor with every version set to 0.0.
func Empty() Descriptor {
	return Descriptor{
		AssemblyVersion: types.NewVersion(0, 0),
		FileVersion:     types.NewVersion(0, 0),
		SetupVersion:    types.NewVersion(0, 0),
	}
}

// IsNewer reports whether latest is greater than current.
func IsNewer(latest, current types.Version) bool {
	return latest.Compare(current) > 0
}

// Equal compares name, versions, package and flags. UpdateURI, ReleaseDate and SetupArguments are ignored.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.SoftwareName == o.SoftwareName &&
		d.AssemblyVersion == o.AssemblyVersion &&
		d.FileVersion == o.FileVersion &&
		d.SetupVersion == o.SetupVersion &&
		d.SetupPackage == o.SetupPackage &&
		d.ChannelFlags == o.ChannelFlags
}

func (d Descriptor) checkName(o Descriptor) error {
	if d.SoftwareName != o.SoftwareName {
		return xerrors.Errorf("%q and %q: %w", d.SoftwareName, o.SoftwareName, types.ErrIncompatibleComparison)
	}
	return nil
}

// LessThan orders by SetupVersion. Descriptors of different software cannot be ordered.
func (d Descriptor) LessThan(o Descriptor) (bool, error) {
	if err := d.checkName(o); err != nil {
		return false, err
	}
	return IsNewer(o.SetupVersion, d.SetupVersion), nil
}

// GreaterThan orders by SetupVersion. Descriptors of different software cannot be ordered.
func (d Descriptor) GreaterThan(o Descriptor) (bool, error) {
	if err := d.checkName(o); err != nil {
		return false, err
	}
	return IsNewer(d.SetupVersion, o.SetupVersion), nil
}

// LessOrEqual is LessThan or Equal. Equal looks at more fields than SetupVersion.
func (d Descriptor) LessOrEqual(o Descriptor) (bool, error) {
	less, err := d.LessThan(o)
	if err != nil {
		return false, err
	}
	return less || d.Equal(o), nil
}

// GreaterOrEqual is GreaterThan or Equal. Equal looks at more fields than SetupVersion.
func (d Descriptor) GreaterOrEqual(o Descriptor) (bool, error) {
	greater, err := d.GreaterThan(o)
	if err != nil {
		return false, err
	}
	return greater || d.Equal(o), nil
}

// Compare orders by AssemblyVersion, then FileVersion. Unlike LessThan and GreaterThan it
// ignores SoftwareName and SetupVersion.
func (d Descriptor) Compare(o Descriptor) int {
	if c := d.AssemblyVersion.Compare(o.AssemblyVersion); c != 0 {
		return c
	}
	return d.FileVersion.Compare(o.FileVersion)
}

func (d Descriptor) String() string {
	return d.SoftwareName + " " + d.AssemblyVersion.String()
}

// Hash is derived from String.
func (d Descriptor) Hash() uint64 {
	h, err := hashstructure.Hash(d.String(), hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

type document struct {
	SoftwareName    string             `json:"softwareName"`
	AssemblyVersion types.Version      `json:"assemblyVersion"`
	FileVersion     types.Version      `json:"fileVersion"`
	SetupVersion    types.Version      `json:"setupVersion"`
	UpdateURI       string             `json:"updateUri,omitempty"`
	ChannelFlags    types.ChannelFlags `json:"channelFlags"`
	ReleaseDate     time.Time          `json:"releaseDate"`
	SetupPackage    string             `json:"setupPackage,omitempty"`
	SetupArguments  string             `json:"setupArguments,omitempty"`
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	doc := document{
		SoftwareName:    d.SoftwareName,
		AssemblyVersion: d.AssemblyVersion,
		FileVersion:     d.FileVersion,
		SetupVersion:    d.SetupVersion,
		ChannelFlags:    d.ChannelFlags,
		ReleaseDate:     d.ReleaseDate,
		SetupPackage:    d.SetupPackage,
		SetupArguments:  d.SetupArguments,
	}
	if d.UpdateURI != nil {
		doc.UpdateURI = d.UpdateURI.String()
	}
	return json.Marshal(doc)
}

func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	var uri *url.URL
	if doc.UpdateURI != "" {
		u, err := url.Parse(doc.UpdateURI)
		if err != nil {
			return xerrors.Errorf("invalid update uri: %w", err)
		}
		uri = u
	}

	*d = Descriptor{
		SoftwareName:    doc.SoftwareName,
		AssemblyVersion: doc.AssemblyVersion,
		FileVersion:     doc.FileVersion,
		SetupVersion:    doc.SetupVersion,
		UpdateURI:       uri,
		ChannelFlags:    doc.ChannelFlags,
		ReleaseDate:     doc.ReleaseDate,
		SetupPackage:    doc.SetupPackage,
		SetupArguments:  doc.SetupArguments,
	}
	return nil
}

// Decode reads a LATESTVERSION document.
func Decode(r io.Reader) (Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Descriptor{}, xerrors.Errorf("json decode error: %w", err)
	}
	return d, nil
}

// Encode writes a LATESTVERSION document.
func Encode(w io.Writer, d Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return xerrors.Errorf("json encode error: %w", err)
	}
	return nil
}
