package versioninfo

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/aquasecurity/go-version/pkg/semver"
	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/attribute"
	"github.com/cave-go/versioninfo/pkg/latest"
	"github.com/cave-go/versioninfo/pkg/types"
)

// FormatFields renders every field on its own line.
const FormatFields = "X"

// Identity holds the name-derived properties of a module.
// They always win over attributes of the same meaning.
type Identity struct {
	Version        types.Version
	CultureID      int
	PublicKey      []byte
	PublicKeyToken []byte
}

// VersionInfo is the extracted metadata of a module. Fields missing from the source keep their zero value.
type VersionInfo struct {
	FileVersion     types.Version
	AssemblyVersion types.Version
	InformalVersion *semver.Version
	SetupVersion    types.Version
	SetupPackage    string
	SetupArguments  string
	ChannelFlags    types.ChannelFlags
	Title           string
	Product         string
	Description     string
	Company         string
	Configuration   string
	Copyright       string
	Trademark       string
	CultureID       int
	PublicKey       []byte
	PublicKeyToken  string
	ID              uuid.UUID
	UpdateURI       *url.URL
}

type setter func(*VersionInfo, attribute.Attribute)

var setters = map[attribute.Kind]setter{
	attribute.KindCompany:              func(i *VersionInfo, a attribute.Attribute) { i.Company = a.Text },
	attribute.KindConfiguration:        func(i *VersionInfo, a attribute.Attribute) { i.Configuration = a.Text },
	attribute.KindCopyright:            func(i *VersionInfo, a attribute.Attribute) { i.Copyright = a.Text },
	attribute.KindDescription:          func(i *VersionInfo, a attribute.Attribute) { i.Description = a.Text },
	attribute.KindFileVersion:          func(i *VersionInfo, a attribute.Attribute) { i.FileVersion = a.Version },
	attribute.KindInformationalVersion: func(i *VersionInfo, a attribute.Attribute) { i.InformalVersion = parseSemver(a.Text) },
	attribute.KindProduct:              func(i *VersionInfo, a attribute.Attribute) { i.Product = a.Text },
	attribute.KindTitle:                func(i *VersionInfo, a attribute.Attribute) { i.Title = a.Text },
	attribute.KindTrademark:            func(i *VersionInfo, a attribute.Attribute) { i.Trademark = a.Text },
	attribute.KindIdentifier:           func(i *VersionInfo, a attribute.Attribute) { i.ID = a.ID },
	attribute.KindUpdateURI:            func(i *VersionInfo, a attribute.Attribute) { i.UpdateURI = a.URI },
	attribute.KindChannelFlags:         func(i *VersionInfo, a attribute.Attribute) { i.ChannelFlags = a.Flags },
	attribute.KindSetupVersion:         func(i *VersionInfo, a attribute.Attribute) { i.SetupVersion = a.Version },
	attribute.KindSetupPackage: func(i *VersionInfo, a attribute.Attribute) {
		i.SetupPackage = a.Text
		i.SetupArguments = a.Arguments
	},
}

// Extract copies the known attributes and the identity into a new VersionInfo.
// Attributes of unknown kind are ignored.
func Extract(attrs attribute.Provider, id *Identity) (VersionInfo, error) {
	if attrs == nil {
		return VersionInfo{}, xerrors.Errorf("attribute provider is nil: %w", types.ErrInvalidArgument)
	}
	if id == nil {
		return VersionInfo{}, xerrors.Errorf("identity is nil: %w", types.ErrInvalidArgument)
	}

	var info VersionInfo
	for _, a := range attrs.Attributes() {
		if set, ok := setters[a.Kind]; ok {
			set(&info, a)
		}
	}

	info.AssemblyVersion = id.Version
	info.CultureID = id.CultureID
	info.PublicKey = id.PublicKey
	info.PublicKeyToken = hex.EncodeToString(id.PublicKeyToken)
	return info, nil
}

// parseSemver returns nil for anything that is not a semantic version.
func parseSemver(s string) *semver.Version {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := semver.Parse(s)
	if err != nil {
		return nil
	}
	return &v
}

// ReleaseDate decodes the file version, see DecodeReleaseDate.
// An encoding that is not a valid calendar date yields the zero time.
func (i VersionInfo) ReleaseDate() time.Time {
	t, ok := DecodeReleaseDate(i.FileVersion)
	if !ok {
		return time.Time{}
	}
	return t
}

// DecodeReleaseDate reads v as year.MMDD.HHMM in UTC.
func DecodeReleaseDate(v types.Version) (time.Time, bool) {
	if v.IsZero() {
		return time.Time{}, false
	}
	year, month, day := v.Major(), v.Minor()/100, v.Minor()%100
	hour, minute := v.Build()/100, v.Build()%100

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	// time.Date normalises overflowing days, reject them instead
	if day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ToLatestVersion builds a descriptor from the fields present in this instance.
func (i VersionInfo) ToLatestVersion() latest.Descriptor {
	return latest.Descriptor{
		SoftwareName:    i.Title,
		AssemblyVersion: i.AssemblyVersion,
		FileVersion:     i.FileVersion,
		SetupVersion:    i.SetupVersion,
		UpdateURI:       i.UpdateURI,
		ChannelFlags:    i.ChannelFlags,
		ReleaseDate:     i.ReleaseDate(),
		SetupPackage:    i.SetupPackage,
		SetupArguments:  i.SetupArguments,
	}
}

func (i VersionInfo) String() string {
	return i.Product + " " + semverString(i.InformalVersion)
}

// Render returns the diagnostic listing for FormatFields, one "Name: value" line per field.
func (i VersionInfo) Render(format string) (string, error) {
	if format != FormatFields {
		return "", xerrors.Errorf("%q: %w", format, types.ErrUnsupportedFormat)
	}

	var b strings.Builder
	v := reflect.ValueOf(i)
	t := v.Type()
	for n := 0; n < t.NumField(); n++ {
		fmt.Fprintf(&b, "%s: %s\n", t.Field(n).Name, formatValue(v.Field(n)))
	}
	return b.String(), nil
}

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return ""
	}
	switch x := v.Interface().(type) {
	case []byte:
		return hex.EncodeToString(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v.Interface())
}

// Equal reports whether all fields are equal.
func (i VersionInfo) Equal(o VersionInfo) bool {
	return i.FileVersion == o.FileVersion &&
		i.AssemblyVersion == o.AssemblyVersion &&
		semverString(i.InformalVersion) == semverString(o.InformalVersion) &&
		(i.InformalVersion == nil) == (o.InformalVersion == nil) &&
		i.SetupVersion == o.SetupVersion &&
		i.SetupPackage == o.SetupPackage &&
		i.SetupArguments == o.SetupArguments &&
		i.ChannelFlags == o.ChannelFlags &&
		i.Title == o.Title &&
		i.Product == o.Product &&
		i.Description == o.Description &&
		i.Company == o.Company &&
		i.Configuration == o.Configuration &&
		i.Copyright == o.Copyright &&
		i.Trademark == o.Trademark &&
		i.CultureID == o.CultureID &&
		bytes.Equal(i.PublicKey, o.PublicKey) &&
		i.PublicKeyToken == o.PublicKeyToken &&
		i.ID == o.ID &&
		uriString(i.UpdateURI) == uriString(o.UpdateURI) &&
		(i.UpdateURI == nil) == (o.UpdateURI == nil)
}

// Hash is derived from ID alone. Equal values always hash alike; equal hashes do not imply Equal.
func (i VersionInfo) Hash() uint64 {
	h, err := hashstructure.Hash(i.ID.String(), hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

func semverString(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func uriString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
