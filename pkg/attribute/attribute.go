// Package attribute defines the descriptive metadata attached to a program module.
package attribute

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/cave-go/versioninfo/pkg/types"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindCompany
	KindConfiguration
	KindCopyright
	KindDescription
	KindFileVersion
	KindInformationalVersion
	KindProduct
	KindTitle
	KindTrademark
	KindIdentifier
	KindUpdateURI
	KindChannelFlags
	KindSetupVersion
	KindSetupPackage
)

var kindNames = map[Kind]string{
	KindCompany:              "company",
	KindConfiguration:        "configuration",
	KindCopyright:            "copyright",
	KindDescription:          "description",
	KindFileVersion:          "file-version",
	KindInformationalVersion: "informational-version",
	KindProduct:              "product",
	KindTitle:                "title",
	KindTrademark:            "trademark",
	KindIdentifier:           "identifier",
	KindUpdateURI:            "update-uri",
	KindChannelFlags:         "channel-flags",
	KindSetupVersion:         "setup-version",
	KindSetupPackage:         "setup-package",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Attribute is a tagged value. Only the payload field matching Kind is meaningful.
type Attribute struct {
	Kind Kind

	Text      string // company, configuration, copyright, description, informational version, product, title, trademark, setup package
	Arguments string // setup package arguments
	Version   types.Version
	Flags     types.ChannelFlags
	ID        uuid.UUID
	URI       *url.URL
}

// Provider supplies the attributes of a module.
type Provider interface {
	Attributes() []Attribute
}

// List is a Provider backed by a slice.
type List []Attribute

func (l List) Attributes() []Attribute {
	return l
}

func text(k Kind, s string) Attribute {
	return Attribute{Kind: k, Text: s}
}

func Company(s string) Attribute       { return text(KindCompany, s) }
func Configuration(s string) Attribute { return text(KindConfiguration, s) }
func Copyright(s string) Attribute     { return text(KindCopyright, s) }
func Description(s string) Attribute   { return text(KindDescription, s) }
func Product(s string) Attribute       { return text(KindProduct, s) }
func Title(s string) Attribute         { return text(KindTitle, s) }
func Trademark(s string) Attribute     { return text(KindTrademark, s) }

// InformationalVersion carries the display version. It is parsed leniently at extraction time.
func InformationalVersion(s string) Attribute {
	return text(KindInformationalVersion, s)
}

func FileVersion(v types.Version) Attribute {
	return Attribute{Kind: KindFileVersion, Version: v}
}

func SetupVersion(v types.Version) Attribute {
	return Attribute{Kind: KindSetupVersion, Version: v}
}

func SetupPackage(name, arguments string) Attribute {
	return Attribute{Kind: KindSetupPackage, Text: name, Arguments: arguments}
}

func ChannelFlags(f types.ChannelFlags) Attribute {
	return Attribute{Kind: KindChannelFlags, Flags: f}
}

func Identifier(id uuid.UUID) Attribute {
	return Attribute{Kind: KindIdentifier, ID: id}
}

func UpdateURI(u *url.URL) Attribute {
	return Attribute{Kind: KindUpdateURI, URI: u}
}
