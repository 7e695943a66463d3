// Package locator finds the module that makes up the running program.
package locator

import (
	"sync"

	"github.com/cave-go/versioninfo/pkg/log"
)

// Module is a loadable unit of code known to the host.
type Module struct {
	Name           string
	Version        string
	FileName       string
	HasEntryPoint  bool
	InspectionOnly bool
}

// Frame is one entry of the active call stack.
type Frame struct {
	Function string // bare function or method name
	Static   bool   // false for methods bound to a receiver
	Module   *Module
}

// Host exposes what the runtime knows about the program.
type Host interface {
	// Mobile reports a managed host without a conventional process entry point.
	Mobile() bool
	// EntryModule returns the module registered as program entry, or nil.
	EntryModule() *Module
	// StackFrames returns the active frames, innermost first.
	StackFrames() []Frame
	LoadedModules() []*Module
	// ExecutableExtension is the file extension of native executables, e.g. ".exe".
	ExecutableExtension() string
}

// Strategy is one step of the fallback chain.
type Strategy interface {
	Name() string
	Find(h Host) *Module
}

// DefaultStrategies is the fallback chain used unless WithStrategies is given.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ManagedHost{},
		EntryModule{},
		StaticExecutableFrame{},
		LoadedModules{},
	}
}

// Locator resolves the program module once and keeps the first successful result.
type Locator struct {
	host       Host
	strategies []Strategy
	logger     *log.Logger

	mu     sync.Mutex
	cached *Module
}

type Option func(*Locator)

func WithStrategies(strategies ...Strategy) Option {
	return func(l *Locator) {
		l.strategies = strategies
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

func New(host Host, opts ...Option) *Locator {
	l := &Locator{
		host:       host,
		strategies: DefaultStrategies(),
		logger:     log.WithPrefix("locator"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve walks the fallback chain and returns the first module found, or nil.
// A nil result is not cached, so later calls try again.
func (l *Locator) Resolve() *Module {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached
	}
	if l.host == nil {
		return nil
	}

	for _, s := range l.strategies {
		l.logger.Debug("Trying strategy", log.String("strategy", s.Name()))
		if m := s.Find(l.host); m != nil {
			l.logger.Debug("Program module found", log.String("strategy", s.Name()), log.String("module", m.Name))
			l.cached = m
			return m
		}
	}
	l.logger.Debug("No program module found")
	return nil
}

var defaultLocator = sync.OnceValue(func() *Locator {
	return New(RuntimeHost{})
})

// Main resolves the running program with the process-wide locator.
func Main() *Module {
	return defaultLocator().Resolve()
}
