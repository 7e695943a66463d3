// Package update compares the running program against its published latest version.
package update

import (
	"context"
	"io/fs"
	"time"

	"golang.org/x/xerrors"
	"k8s.io/utils/clock"

	"github.com/cave-go/versioninfo/pkg/latest"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/metadata"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

// Result is the outcome of one check.
type Result struct {
	Current   latest.Descriptor
	Latest    latest.Descriptor
	Available bool
	CheckedAt time.Time
	Cached    bool
}

type Checker struct {
	fetcher  Fetcher
	clock    clock.Clock
	state    *metadata.Client
	interval time.Duration
	logger   *log.Logger
}

type Option func(*Checker)

func WithClock(clock clock.Clock) Option {
	return func(c *Checker) {
		c.clock = clock
	}
}

// WithState reuses the result stored by client until interval has passed since the last fetch.
func WithState(client metadata.Client, interval time.Duration) Option {
	return func(c *Checker) {
		c.state = &client
		c.interval = interval
	}
}

func NewChecker(fetcher Fetcher, opts ...Option) *Checker {
	c := &Checker{
		fetcher: fetcher,
		clock:   clock.RealClock{},
		logger:  log.WithPrefix("update"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check fetches the latest descriptor and reports whether it is newer than current.
// A descriptor for other software yields types.ErrIncompatibleComparison.
// Only successful comparisons are stored as state.
func (c *Checker) Check(ctx context.Context, current versioninfo.VersionInfo) (Result, error) {
	now := c.clock.Now().UTC()
	cur := current.ToLatestVersion()

	l, checkedAt, cached, err := c.latest(ctx, now, cur.SoftwareName)
	if err != nil {
		return Result{}, err
	}

	available, err := l.GreaterThan(cur)
	if err != nil {
		return Result{}, xerrors.Errorf("compare error: %w", err)
	}

	if !cached {
		c.save(metadata.Metadata{
			Location:     c.fetcher.Location(),
			SoftwareName: cur.SoftwareName,
			Latest:       l,
			CheckedAt:    now,
			NextCheck:    now.Add(c.interval),
		})
	}
	return Result{
		Current:   cur,
		Latest:    l,
		Available: available,
		CheckedAt: checkedAt,
		Cached:    cached,
	}, nil
}

func (c *Checker) latest(ctx context.Context, now time.Time, name string) (latest.Descriptor, time.Time, bool, error) {
	if c.state != nil {
		meta, err := c.state.Get()
		switch {
		case err != nil:
			c.logger.Debug("No usable update state", log.Err(err))
		case meta.Fresh(now, c.fetcher.Location(), name):
			c.logger.Debug("Using cached latest version", log.Any("next_check", meta.NextCheck))
			return meta.Latest, meta.CheckedAt, true, nil
		}
	}

	l, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return latest.Descriptor{}, time.Time{}, false, xerrors.Errorf("fetch error: %w", err)
	}
	return l, now, false, nil
}

func (c *Checker) save(meta metadata.Metadata) {
	if c.state == nil {
		return
	}
	if err := c.state.Update(meta); err != nil {
		c.logger.Warn("Failed to save update state", log.Err(err))
	}
}

// Reset forgets the stored state so the next check fetches again.
func (c *Checker) Reset() error {
	if c.state == nil {
		return nil
	}
	if err := c.state.Delete(); err != nil && !xerrors.Is(err, fs.ErrNotExist) {
		return xerrors.Errorf("reset error: %w", err)
	}
	return nil
}
