package update_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
	fake "k8s.io/utils/clock/testing"

	"github.com/cave-go/versioninfo/pkg/latest"
	"github.com/cave-go/versioninfo/pkg/metadata"
	"github.com/cave-go/versioninfo/pkg/types"
	"github.com/cave-go/versioninfo/pkg/update"
	"github.com/cave-go/versioninfo/pkg/utils"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

func descriptor(name string, setup types.Version) latest.Descriptor {
	return latest.Descriptor{
		SoftwareName:    name,
		AssemblyVersion: setup,
		FileVersion:     types.NewVersion(2024, 305, 1230),
		SetupVersion:    setup,
		ChannelFlags:    types.StableRelease,
		ReleaseDate:     utils.MustTimeParse("2024-03-05T12:30:00Z"),
		SetupPackage:    "acme-setup.msi",
	}
}

func encode(t *testing.T, d latest.Descriptor) []byte {
	var buf bytes.Buffer
	require.NoError(t, latest.Encode(&buf, d))
	return buf.Bytes()
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    []byte
		want    latest.Descriptor
		wantErr string
	}{
		{
			name: "happy path",
			code: http.StatusOK,
			body: encode(t, descriptor("Acme Tool", types.NewVersion(1, 5))),
			want: descriptor("Acme Tool", types.NewVersion(1, 5)),
		},
		{
			name:    "not found",
			code:    http.StatusNotFound,
			wantErr: "HTTP 404 on fetching latest version",
		},
		{
			name:    "garbage",
			code:    http.StatusOK,
			body:    []byte("hdfjksdhfhkj"),
			wantErr: "failed to read latest version",
		},
		{
			name:    "empty body",
			code:    http.StatusOK,
			wantErr: "json decode error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/acme/LATESTVERSION", r.URL.Path)
				w.WriteHeader(tt.code)
				_, _ = w.Write(tt.body)
			}))
			defer ts.Close()

			got, err := update.HTTPFetcher{URL: ts.URL + "/acme/LATESTVERSION"}.Fetch(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.want.ReleaseDate, got.ReleaseDate)
		})
	}
}

func TestHTTPFetcher_Canceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := update.HTTPFetcher{URL: ts.URL}.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LATESTVERSION")
	want := descriptor("Acme Tool", types.NewVersion(1, 5))
	require.NoError(t, os.WriteFile(path, encode(t, want), 0o600))

	got, err := update.NewFetcher(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = update.FileFetcher{Path: filepath.Join(dir, "missing")}.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file open error")
}

func TestNewFetcher(t *testing.T) {
	assert.Equal(t, update.HTTPFetcher{URL: "https://example.com/LATESTVERSION"}, update.NewFetcher("https://example.com/LATESTVERSION"))
	assert.Equal(t, update.FileFetcher{Path: "/srv/LATESTVERSION"}, update.NewFetcher("file:///srv/LATESTVERSION"))
	assert.Equal(t, update.FileFetcher{Path: "LATESTVERSION"}, update.NewFetcher("LATESTVERSION"))
}

type countingFetcher struct {
	location string
	d        latest.Descriptor
	err      error
	calls    int
}

func (f *countingFetcher) Location() string {
	return f.location
}

func (f *countingFetcher) Fetch(context.Context) (latest.Descriptor, error) {
	f.calls++
	return f.d, f.err
}

func current(name string, setup types.Version) versioninfo.VersionInfo {
	return versioninfo.VersionInfo{
		Title:        name,
		SetupVersion: setup,
	}
}

func TestChecker_Check(t *testing.T) {
	now := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		fetcher       *countingFetcher
		current       versioninfo.VersionInfo
		wantAvailable bool
		wantErr       error
		wantErrMsg    string
	}{
		{
			name:          "update available",
			fetcher:       &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 5))},
			current:       current("Acme Tool", types.NewVersion(1, 4)),
			wantAvailable: true,
		},
		{
			name:    "equal",
			fetcher: &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 4))},
			current: current("Acme Tool", types.NewVersion(1, 4)),
		},
		{
			name:    "ahead of latest",
			fetcher: &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 4))},
			current: current("Acme Tool", types.NewVersion(1, 5)),
		},
		{
			name:          "current without setup version",
			fetcher:       &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 0))},
			current:       current("Acme Tool", types.Version{}),
			wantAvailable: true,
		},
		{
			name:    "other software",
			fetcher: &countingFetcher{d: descriptor("Other Tool", types.NewVersion(9, 0))},
			current: current("Acme Tool", types.NewVersion(1, 4)),
			wantErr: types.ErrIncompatibleComparison,
		},
		{
			name:       "fetch error",
			fetcher:    &countingFetcher{err: xerrors.New("connection refused")},
			current:    current("Acme Tool", types.NewVersion(1, 4)),
			wantErrMsg: "fetch error: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := update.NewChecker(tt.fetcher, update.WithClock(fake.NewFakeClock(now)))

			got, err := c.Check(context.Background(), tt.current)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				return
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, got.Available)
			assert.Equal(t, now, got.CheckedAt)
			assert.Equal(t, tt.current.Title, got.Current.SoftwareName)
			assert.False(t, got.Cached)
		})
	}
}

func TestChecker_WithState(t *testing.T) {
	start := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	clock := fake.NewFakeClock(start)
	client := metadata.NewClient(t.TempDir())
	fetcher := &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 5))}

	c := update.NewChecker(fetcher, update.WithClock(clock), update.WithState(client, 24*time.Hour))
	cur := current("Acme Tool", types.NewVersion(1, 4))

	got, err := c.Check(context.Background(), cur)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.False(t, got.Cached)
	assert.Equal(t, 1, fetcher.calls)

	meta, err := client.Get()
	require.NoError(t, err)
	assert.Equal(t, start, meta.CheckedAt)
	assert.Equal(t, start.Add(24*time.Hour), meta.NextCheck)
	assert.Equal(t, "Acme Tool", meta.SoftwareName)

	// within the interval the stored result is used
	clock.Step(time.Hour)
	fetcher.d = descriptor("Acme Tool", types.NewVersion(1, 6))
	got, err = c.Check(context.Background(), cur)
	require.NoError(t, err)
	assert.True(t, got.Cached)
	assert.Equal(t, start, got.CheckedAt)
	assert.Equal(t, types.NewVersion(1, 5), got.Latest.SetupVersion)
	assert.Equal(t, 1, fetcher.calls)

	// afterwards it is fetched again
	clock.Step(24 * time.Hour)
	got, err = c.Check(context.Background(), cur)
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, types.NewVersion(1, 6), got.Latest.SetupVersion)
	assert.Equal(t, 2, fetcher.calls)
}

func TestChecker_CorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(metadata.Path(dir), []byte("not json"), 0o600))
	fetcher := &countingFetcher{d: descriptor("Acme Tool", types.NewVersion(1, 5))}

	c := update.NewChecker(fetcher, update.WithState(metadata.NewClient(dir), time.Hour))
	got, err := c.Check(context.Background(), current("Acme Tool", types.NewVersion(1, 5)))
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, 1, fetcher.calls)
}

func TestChecker_StateFollowsRequest(t *testing.T) {
	start := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	clock := fake.NewFakeClock(start)
	client := metadata.NewClient(t.TempDir())
	cur := current("Acme Tool", types.NewVersion(1, 4))

	wrong := &countingFetcher{location: "https://example.com/other/LATESTVERSION", d: descriptor("Other Tool", types.NewVersion(9, 0))}
	right := &countingFetcher{location: "https://example.com/acme/LATESTVERSION", d: descriptor("Acme Tool", types.NewVersion(1, 5))}
	mirror := &countingFetcher{location: "https://mirror.example.com/acme/LATESTVERSION", d: descriptor("Acme Tool", types.NewVersion(1, 6))}

	// a failed comparison leaves no state behind
	_, err := update.NewChecker(wrong, update.WithClock(clock), update.WithState(client, 24*time.Hour)).Check(context.Background(), cur)
	assert.ErrorIs(t, err, types.ErrIncompatibleComparison)
	_, err = client.Get()
	require.Error(t, err)

	clock.Step(time.Minute)
	got, err := update.NewChecker(right, update.WithClock(clock), update.WithState(client, 24*time.Hour)).Check(context.Background(), cur)
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, types.NewVersion(1, 5), got.Latest.SetupVersion)
	assert.Equal(t, 1, right.calls)

	meta, err := client.Get()
	require.NoError(t, err)
	assert.Equal(t, right.location, meta.Location)

	// another location is not answered from the stored state
	clock.Step(time.Minute)
	got, err = update.NewChecker(mirror, update.WithClock(clock), update.WithState(client, 24*time.Hour)).Check(context.Background(), cur)
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, types.NewVersion(1, 6), got.Latest.SetupVersion)
	assert.Equal(t, 1, mirror.calls)

	// neither is another program at the same location
	clock.Step(time.Minute)
	_, err = update.NewChecker(mirror, update.WithClock(clock), update.WithState(client, 24*time.Hour)).Check(context.Background(), current("Other Tool", types.NewVersion(1, 0)))
	assert.ErrorIs(t, err, types.ErrIncompatibleComparison)
	assert.Equal(t, 2, mirror.calls)
}

func TestChecker_Reset(t *testing.T) {
	clock := fake.NewFakeClock(time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC))
	cacheDir := t.TempDir()
	client := metadata.NewClient(cacheDir)
	fetcher := &countingFetcher{location: "LATESTVERSION", d: descriptor("Acme Tool", types.NewVersion(1, 5))}
	c := update.NewChecker(fetcher, update.WithClock(clock), update.WithState(client, 24*time.Hour))
	cur := current("Acme Tool", types.NewVersion(1, 4))

	// nothing stored yet
	require.NoError(t, c.Reset())

	_, err := c.Check(context.Background(), cur)
	require.NoError(t, err)
	require.NoError(t, c.Reset())
	assert.NoFileExists(t, metadata.Path(cacheDir))

	got, err := c.Check(context.Background(), cur)
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, 2, fetcher.calls)

	assert.NoError(t, update.NewChecker(fetcher).Reset())
}
