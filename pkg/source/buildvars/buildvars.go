// Package buildvars holds metadata injected at link time, e.g.
//
//	go build -ldflags "-X github.com/cave-go/versioninfo/pkg/source/buildvars.title=Acme"
package buildvars

var (
	title                string
	product              string
	company              string
	copyright            string
	description          string
	trademark            string
	configuration        string
	fileVersion          string
	informationalVersion string
	identifier           string
	updateURI            string
	channel              string
	setupVersion         string
	setupPackage         string
	setupArguments       string
	cultureID            string
	publicKey            string
	publicKeyToken       string
)

// Vars is a snapshot of the injected values. Empty means not provided.
type Vars struct {
	Title                string
	Product              string
	Company              string
	Copyright            string
	Description          string
	Trademark            string
	Configuration        string
	FileVersion          string
	InformationalVersion string
	Identifier           string
	UpdateURI            string
	Channel              string
	SetupVersion         string
	SetupPackage         string
	SetupArguments       string
	CultureID            string
	PublicKey            string // hex
	PublicKeyToken       string // hex
}

func Current() Vars {
	return Vars{
		Title:                title,
		Product:              product,
		Company:              company,
		Copyright:            copyright,
		Description:          description,
		Trademark:            trademark,
		Configuration:        configuration,
		FileVersion:          fileVersion,
		InformationalVersion: informationalVersion,
		Identifier:           identifier,
		UpdateURI:            updateURI,
		Channel:              channel,
		SetupVersion:         setupVersion,
		SetupPackage:         setupPackage,
		SetupArguments:       setupArguments,
		CultureID:            cultureID,
		PublicKey:            publicKey,
		PublicKeyToken:       publicKeyToken,
	}
}
