// Package program extracts the version information of the running program.
package program

import (
	"path"
	"sync"

	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/attribute"
	"github.com/cave-go/versioninfo/pkg/locator"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/source"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

var ErrProgramNotFound = xerrors.New("program module not found")

// Resolver finds the program module. *locator.Locator implements it.
type Resolver interface {
	Resolve() *locator.Module
}

// SourceFunc returns the attribute source describing m.
type SourceFunc func(m *locator.Module) (source.Source, error)

// Loader memoises the VersionInfo of the module its resolver finds.
type Loader struct {
	resolver  Resolver
	newSource SourceFunc
	manifest  string
	logger    *log.Logger

	mu   sync.Mutex
	info *versioninfo.VersionInfo
}

type Option func(*Loader)

func WithSourceFunc(f SourceFunc) Option {
	return func(l *Loader) {
		l.newSource = f
	}
}

// WithManifest layers the YAML manifest at path over the default source.
func WithManifest(path string) Option {
	return func(l *Loader) {
		l.manifest = path
	}
}

func NewLoader(resolver Resolver, opts ...Option) *Loader {
	l := &Loader{
		resolver:  resolver,
		newSource: BuildInfoSource,
		logger:    log.WithPrefix("program"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the program's VersionInfo. Only successful results are kept.
func (l *Loader) Load() (versioninfo.VersionInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.info != nil {
		return *l.info, nil
	}

	m := l.resolver.Resolve()
	if m == nil {
		return versioninfo.VersionInfo{}, ErrProgramNotFound
	}
	l.logger.Debug("Loading version info", log.Module(m.Name))

	src, err := l.newSource(m)
	if err != nil {
		return versioninfo.VersionInfo{}, xerrors.Errorf("source error: %w", err)
	}
	if l.manifest != "" {
		manifest, err := source.LoadManifest(l.manifest)
		if err != nil {
			return versioninfo.VersionInfo{}, xerrors.Errorf("manifest error: %w", err)
		}
		src = source.Merge(src, manifest)
	}

	info, err := source.Extract(src)
	if err != nil {
		return versioninfo.VersionInfo{}, xerrors.Errorf("extract error: %w", err)
	}
	l.info = &info
	return info, nil
}

// BuildInfoSource describes m with the embedded build info of the binary.
func BuildInfoSource(m *locator.Module) (source.Source, error) {
	bi, err := source.ReadBuildInfo()
	if err != nil {
		return nil, err
	}
	return ModuleSource(bi, m), nil
}

// ModuleSource decorates src with what the located module knows about itself:
// its base name as fallback title and its version as identity version.
func ModuleSource(src source.Source, m *locator.Module) source.Source {
	return moduleSource{Source: src, module: m}
}

type moduleSource struct {
	source.Source
	module *locator.Module
}

func (s moduleSource) Attributes() ([]attribute.Attribute, error) {
	attrs, err := s.Source.Attributes()
	if err != nil {
		return nil, err
	}
	if s.module.Name == "" {
		return attrs, nil
	}
	return append([]attribute.Attribute{attribute.Title(path.Base(s.module.Name))}, attrs...), nil
}

func (s moduleSource) Identity() (*versioninfo.Identity, error) {
	id, err := s.Source.Identity()
	if err != nil {
		return nil, err
	}
	if id == nil {
		id = &versioninfo.Identity{}
	}
	if v := source.ModuleVersion(s.module.Version); !v.IsZero() {
		id.Version = v
	}
	return id, nil
}

var defaultLoader = sync.OnceValue(func() *Loader {
	return NewLoader(resolverFunc(locator.Main))
})

type resolverFunc func() *locator.Module

func (f resolverFunc) Resolve() *locator.Module {
	return f()
}

// Info returns the VersionInfo of the running program.
func Info() (versioninfo.VersionInfo, error) {
	return defaultLoader().Load()
}
