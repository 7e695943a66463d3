package locator

import (
	"path/filepath"

	"github.com/samber/lo"
)

// lifecycleEntry is the method name mobile hosts call when the program starts.
const lifecycleEntry = "OnCreate"

// ModulePath is the module of this library. Its own frames sit innermost on every
// stack it walks, so ManagedHost skips them like runtime frames.
const ModulePath = "github.com/cave-go/versioninfo"

// RuntimeModules are the modules ManagedHost treats as part of the runtime.
var RuntimeModules = []string{"std", "runtime", "golang.org/x/mobile", ModulePath}

// ManagedHost walks the stack on mobile hosts. The innermost OnCreate frame wins,
// then the innermost frame outside the runtime.
type ManagedHost struct{}

func (ManagedHost) Name() string { return "managed-host" }

func (ManagedHost) Find(h Host) *Module {
	if !h.Mobile() {
		return nil
	}

	frames := lo.Filter(h.StackFrames(), func(f Frame, _ int) bool {
		return f.Module != nil && f.Module.Name != "" && !lo.Contains(RuntimeModules, f.Module.Name)
	})
	if len(frames) == 0 {
		return nil
	}

	if f, ok := lo.Find(frames, func(f Frame) bool { return f.Function == lifecycleEntry }); ok {
		return f.Module
	}
	return frames[0].Module
}

// EntryModule asks the host for its registered entry module.
type EntryModule struct{}

func (EntryModule) Name() string { return "entry-module" }

func (EntryModule) Find(h Host) *Module {
	return h.EntryModule()
}

// StaticExecutableFrame picks the outermost static frame declared in a native executable.
type StaticExecutableFrame struct{}

func (StaticExecutableFrame) Name() string { return "static-executable-frame" }

func (StaticExecutableFrame) Find(h Host) *Module {
	ext := h.ExecutableExtension()

	var found *Module
	for _, f := range h.StackFrames() {
		if !f.Static || f.Module == nil || f.Module.FileName == "" {
			continue
		}
		if filepath.Ext(f.Module.FileName) == ext {
			found = f.Module
		}
	}
	return found
}

// LoadedModules returns the first loaded module with an entry point that is not inspection-only.
type LoadedModules struct{}

func (LoadedModules) Name() string { return "loaded-modules" }

func (LoadedModules) Find(h Host) *Module {
	m, _ := lo.Find(h.LoadedModules(), func(m *Module) bool {
		return m != nil && m.HasEntryPoint && !m.InspectionOnly
	})
	return m
}
