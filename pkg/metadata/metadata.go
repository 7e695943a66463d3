// Package metadata persists the state of the last update check.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"

	"github.com/cave-go/versioninfo/pkg/latest"
)

const metadataFile = "update.json"

// Metadata is the state of the last update check.
// Location and SoftwareName identify the request it answered.
type Metadata struct {
	Location     string
	SoftwareName string
	Latest       latest.Descriptor
	NextCheck    time.Time
	CheckedAt    time.Time
}

// Fresh reports whether the stored result answers a check of name against location at now.
func (m Metadata) Fresh(now time.Time, location, name string) bool {
	if m.CheckedAt.IsZero() || m.Location != location || m.SoftwareName != name {
		return false
	}
	return now.Before(m.NextCheck)
}

// Client defines the file meta
type Client struct {
	filePath string
}

// NewClient is the factory method for the metadata Client
func NewClient(cacheDir string) Client {
	return Client{
		filePath: Path(cacheDir),
	}
}

func Path(cacheDir string) string {
	return filepath.Join(cacheDir, metadataFile)
}

// Get returns the stored check state
func (c Client) Get() (Metadata, error) {
	eb := oops.With("file_path", c.filePath)

	f, err := os.Open(c.filePath)
	if err != nil {
		return Metadata{}, eb.Wrapf(err, "file open error")
	}
	defer f.Close()

	var metadata Metadata
	if err = json.NewDecoder(f).Decode(&metadata); err != nil {
		return Metadata{}, eb.Wrapf(err, "json decode error")
	}
	return metadata, nil
}

func (c Client) Update(meta Metadata) error {
	eb := oops.With("file_path", c.filePath)

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0o744); err != nil {
		return eb.Wrapf(err, "mkdir error")
	}

	f, err := os.Create(c.filePath)
	if err != nil {
		return eb.Wrapf(err, "file create error")
	}
	defer f.Close()

	if err = json.NewEncoder(f).Encode(&meta); err != nil {
		return eb.Wrapf(err, "json encode error")
	}
	return nil
}

// Delete deletes the state file
func (c Client) Delete() error {
	if err := os.Remove(c.filePath); err != nil {
		return oops.With("file_path", c.filePath).Wrapf(err, "file remove error")
	}
	return nil
}
