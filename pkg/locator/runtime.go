package locator

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/samber/lo"
)

const (
	stdModule   = "std"
	maxCallers  = 64
	develModule = "(devel)"
)

// RuntimeHost answers Host queries from the Go runtime and the embedded build info.
type RuntimeHost struct{}

func (RuntimeHost) Mobile() bool {
	return runtime.GOOS == "android" || runtime.GOOS == "ios"
}

func (RuntimeHost) ExecutableExtension() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func (h RuntimeHost) EntryModule() *Module {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Path == "" {
		return nil
	}
	return mainModule(bi)
}

func (h RuntimeHost) LoadedModules() []*Module {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	modules := []*Module{mainModule(bi)}
	for _, dep := range bi.Deps {
		modules = append(modules, depModule(dep))
	}
	return modules
}

func (h RuntimeHost) StackFrames() []Frame {
	pcs := make([]uintptr, maxCallers)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return nil
	}

	bi, _ := debug.ReadBuildInfo()
	modules := map[string]*Module{}

	var frames []Frame
	iter := runtime.CallersFrames(pcs[:n])
	for {
		f, more := iter.Next()
		if f.Function != "" {
			pkg, name, static := splitFunction(f.Function)
			frames = append(frames, Frame{
				Function: name,
				Static:   static,
				Module:   moduleOf(pkg, bi, modules),
			})
		}
		if !more {
			break
		}
	}
	return frames
}

func mainModule(bi *debug.BuildInfo) *Module {
	exe, err := os.Executable()
	if err != nil {
		exe = ""
	}
	version := bi.Main.Version
	if version == develModule {
		version = ""
	}
	return &Module{
		Name:          bi.Main.Path,
		Version:       version,
		FileName:      exe,
		HasEntryPoint: true,
	}
}

func depModule(dep *debug.Module) *Module {
	if dep.Replace != nil {
		dep = dep.Replace
	}
	return &Module{
		Name:    dep.Path,
		Version: dep.Version,
	}
}

// moduleOf maps a package path to the module declaring it. Packages of the
// main module and of "main" belong to the executable; unmatched paths are std.
func moduleOf(pkg string, bi *debug.BuildInfo, cache map[string]*Module) *Module {
	if m, ok := cache[pkg]; ok {
		return m
	}

	var m *Module
	switch {
	case bi == nil:
		m = &Module{Name: stdModule}
	case pkg == "main" || hasPathPrefix(pkg, bi.Main.Path):
		m = mainModule(bi)
	default:
		deps := lo.Filter(bi.Deps, func(d *debug.Module, _ int) bool {
			return hasPathPrefix(pkg, d.Path)
		})
		if len(deps) == 0 {
			m = &Module{Name: stdModule}
			break
		}
		longest := lo.MaxBy(deps, func(a, b *debug.Module) bool {
			return len(a.Path) > len(b.Path)
		})
		m = depModule(longest)
	}
	cache[pkg] = m
	return m
}

func hasPathPrefix(pkg, module string) bool {
	if module == "" {
		return false
	}
	return pkg == module || strings.HasPrefix(pkg, module+"/")
}

// splitFunction splits "example.com/a/b.(*T).Method" into the package path,
// the bare name and whether the function has no receiver.
func splitFunction(fn string) (pkg, name string, static bool) {
	slash := strings.LastIndex(fn, "/")
	dot := strings.Index(fn[slash+1:], ".")
	if dot < 0 {
		return fn, fn, true
	}
	pkg = fn[:slash+1+dot]
	rest := fn[slash+1+dot+1:]

	name = rest
	if i := strings.LastIndex(rest, "."); i >= 0 {
		name = rest[i+1:]
	}
	static = !strings.HasPrefix(rest, "(") && !strings.Contains(rest, ".")
	return pkg, name, static
}
