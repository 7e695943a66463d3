package metadata_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cave-go/versioninfo/pkg/latest"
	"github.com/cave-go/versioninfo/pkg/metadata"
	"github.com/cave-go/versioninfo/pkg/types"
)

func TestClient(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "versioninfo")
	c := metadata.NewClient(cacheDir)

	_, err := c.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file open error")

	want := metadata.Metadata{
		Location:     "https://example.com/acme/LATESTVERSION",
		SoftwareName: "Acme Tool",
		Latest: latest.Descriptor{
			SoftwareName:    "Acme Tool",
			AssemblyVersion: types.NewVersion(1, 5),
			FileVersion:     types.NewVersion(2024, 305, 1230),
			SetupVersion:    types.NewVersion(1, 5, 0),
			ChannelFlags:    types.StableRelease,
			ReleaseDate:     time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC),
		},
		CheckedAt: time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC),
		NextCheck: time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Update(want))
	assert.FileExists(t, metadata.Path(cacheDir))

	got, err := c.Get()
	require.NoError(t, err)
	assert.True(t, want.Latest.Equal(got.Latest))
	assert.Equal(t, want.Latest.ReleaseDate, got.Latest.ReleaseDate)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.SoftwareName, got.SoftwareName)
	assert.Equal(t, want.CheckedAt, got.CheckedAt)
	assert.Equal(t, want.NextCheck, got.NextCheck)

	require.NoError(t, c.Delete())
	assert.NoFileExists(t, metadata.Path(cacheDir))
	assert.Error(t, c.Delete())
}

func TestClient_GetCorrupt(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(metadata.Path(cacheDir), []byte("{"), 0o600))

	_, err := metadata.NewClient(cacheDir).Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode error")
}

func TestMetadata_Fresh(t *testing.T) {
	const location = "https://example.com/acme/LATESTVERSION"
	checked := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	meta := metadata.Metadata{
		Location:     location,
		SoftwareName: "Acme Tool",
		CheckedAt:    checked,
		NextCheck:    checked.Add(24 * time.Hour),
	}

	tests := []struct {
		name     string
		meta     metadata.Metadata
		now      time.Time
		location string
		software string
		want     bool
	}{
		{
			name:     "before next check",
			meta:     meta,
			now:      checked.Add(time.Hour),
			location: location,
			software: "Acme Tool",
			want:     true,
		},
		{
			name:     "at next check",
			meta:     meta,
			now:      checked.Add(24 * time.Hour),
			location: location,
			software: "Acme Tool",
			want:     false,
		},
		{
			name:     "other location",
			meta:     meta,
			now:      checked.Add(time.Hour),
			location: "https://mirror.example.com/acme/LATESTVERSION",
			software: "Acme Tool",
			want:     false,
		},
		{
			name:     "other software",
			meta:     meta,
			now:      checked.Add(time.Hour),
			location: location,
			software: "Other Tool",
			want:     false,
		},
		{
			name:     "never checked",
			now:      checked,
			location: "",
			software: "",
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.Fresh(tt.now, tt.location, tt.software))
		})
	}
}
