package source

import (
	"encoding/hex"
	"io"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gopkg.in/yaml.v2"

	"github.com/cave-go/versioninfo/pkg/attribute"
	"github.com/cave-go/versioninfo/pkg/types"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

// Manifest is a YAML document declaring module attributes, e.g.
//
//	title: Acme Tool
//	fileVersion: "2024.0305.1230"
//	channel: Stable|Release
//	identity:
//	  version: "1.2.3.4"
type Manifest struct {
	Title                string              `yaml:"title"`
	Product              string              `yaml:"product"`
	Company              string              `yaml:"company"`
	Copyright            string              `yaml:"copyright"`
	Description          string              `yaml:"description"`
	Trademark            string              `yaml:"trademark"`
	Configuration        string              `yaml:"configuration"`
	FileVersion          types.Version       `yaml:"fileVersion"`
	InformationalVersion string              `yaml:"informationalVersion"`
	ID                   string              `yaml:"id"`
	UpdateURI            string              `yaml:"updateUri"`
	Channel              *types.ChannelFlags `yaml:"channel"`
	SetupVersion         types.Version       `yaml:"setupVersion"`
	Setup                *ManifestSetup      `yaml:"setup"`
	ModuleIdentity       *ManifestIdentity   `yaml:"identity"`
}

type ManifestSetup struct {
	Package   string `yaml:"package"`
	Arguments string `yaml:"arguments"`
}

type ManifestIdentity struct {
	Version        types.Version `yaml:"version"`
	CultureID      int           `yaml:"cultureId"`
	PublicKey      string        `yaml:"publicKey"`
	PublicKeyToken string        `yaml:"publicKeyToken"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	eb := oops.With("file_path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, eb.Wrapf(err, "file open error")
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, eb.Wrapf(err, "manifest parse error")
	}
	return m, nil
}

// ParseManifest decodes a manifest and validates its typed values.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, oops.Wrapf(err, "yaml decode error")
	}
	if _, err := m.Attributes(); err != nil {
		return nil, err
	}
	if _, err := m.Identity(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Attributes returns one attribute per field set in the manifest.
func (m *Manifest) Attributes() ([]attribute.Attribute, error) {
	var attrs []attribute.Attribute

	texts := []struct {
		value string
		attr  func(string) attribute.Attribute
	}{
		{m.Title, attribute.Title},
		{m.Product, attribute.Product},
		{m.Company, attribute.Company},
		{m.Copyright, attribute.Copyright},
		{m.Description, attribute.Description},
		{m.Trademark, attribute.Trademark},
		{m.Configuration, attribute.Configuration},
		{m.InformationalVersion, attribute.InformationalVersion},
	}
	for _, t := range texts {
		if t.value != "" {
			attrs = append(attrs, t.attr(t.value))
		}
	}

	if !m.FileVersion.IsZero() {
		attrs = append(attrs, attribute.FileVersion(m.FileVersion))
	}
	if !m.SetupVersion.IsZero() {
		attrs = append(attrs, attribute.SetupVersion(m.SetupVersion))
	}
	if m.Setup != nil {
		attrs = append(attrs, attribute.SetupPackage(m.Setup.Package, m.Setup.Arguments))
	}
	if m.Channel != nil {
		attrs = append(attrs, attribute.ChannelFlags(*m.Channel))
	}
	if m.ID != "" {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, oops.With("id", m.ID).Wrapf(err, "invalid id")
		}
		attrs = append(attrs, attribute.Identifier(id))
	}
	if m.UpdateURI != "" {
		u, err := url.Parse(m.UpdateURI)
		if err != nil {
			return nil, oops.With("update_uri", m.UpdateURI).Wrapf(err, "invalid update uri")
		}
		attrs = append(attrs, attribute.UpdateURI(u))
	}
	return attrs, nil
}

// Identity returns nil when the manifest has no identity section.
func (m *Manifest) Identity() (*versioninfo.Identity, error) {
	if m.ModuleIdentity == nil {
		return nil, nil
	}

	mi := m.ModuleIdentity
	id := &versioninfo.Identity{
		Version:   mi.Version,
		CultureID: mi.CultureID,
	}
	if mi.PublicKey != "" {
		key, err := hex.DecodeString(mi.PublicKey)
		if err != nil {
			return nil, oops.Wrapf(err, "invalid public key")
		}
		id.PublicKey = key
	}
	if mi.PublicKeyToken != "" {
		token, err := hex.DecodeString(mi.PublicKeyToken)
		if err != nil {
			return nil, oops.Wrapf(err, "invalid public key token")
		}
		id.PublicKeyToken = token
	}
	return id, nil
}
