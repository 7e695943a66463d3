package update

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/latest"
)

// Fetcher retrieves the published LATESTVERSION document.
type Fetcher interface {
	Fetch(ctx context.Context) (latest.Descriptor, error)
	// Location names where the document comes from.
	Location() string
}

// HTTPFetcher downloads the document with a GET request.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func (f HTTPFetcher) Location() string {
	return f.URL
}

func (f HTTPFetcher) Fetch(ctx context.Context) (latest.Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return latest.Descriptor{}, xerrors.Errorf("failed to create request for latest version: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return latest.Descriptor{}, xerrors.Errorf("failed to fetch latest version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return latest.Descriptor{}, xerrors.Errorf("HTTP %d on fetching latest version: %s", resp.StatusCode, resp.Status)
	}

	d, err := latest.Decode(resp.Body)
	if err != nil {
		return latest.Descriptor{}, xerrors.Errorf("failed to read latest version: %w", err)
	}
	return d, nil
}

// FileFetcher reads the document from the local file system.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Location() string {
	return f.Path
}

func (f FileFetcher) Fetch(_ context.Context) (latest.Descriptor, error) {
	eb := oops.With("file_path", f.Path)

	r, err := os.Open(f.Path)
	if err != nil {
		return latest.Descriptor{}, eb.Wrapf(err, "file open error")
	}
	defer r.Close()

	d, err := latest.Decode(r)
	if err != nil {
		return latest.Descriptor{}, eb.Wrap(err)
	}
	return d, nil
}

// NewFetcher picks the fetcher for location: http(s) URLs are downloaded, anything else is a file path.
func NewFetcher(location string) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return HTTPFetcher{URL: location}
	}
	return FileFetcher{Path: strings.TrimPrefix(location, "file://")}
}
