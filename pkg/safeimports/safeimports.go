// Package safeimports decides which modules are safe to drop from an
// import statement. Standard-library modules are side-effect free with a
// handful of exceptions, so removing an unused import of one cannot
// change program behavior. Anything else stays unless the caller
// explicitly allows it.
package safeimports

// Modules whose import alone has observable side effects.
var sideEffectImports = []string{
	"antigravity",
	"rlcompleter",
	"this",
}

// Modules that may be compiled into the interpreter binary and so can be
// missing from a stdlib listing; they are always safe.
var binaryImports = []string{
	"datetime",
	"grp",
	"io",
	"json",
	"math",
	"multiprocessing",
	"operator",
	"os",
	"parser",
	"pwd",
	"string",
	"sys",
	"time",
}

// Set holds top-level module names whose unused imports may be removed.
type Set struct {
	names map[string]struct{}
}

// New builds the default safe set: the pinned standard-library names
// minus the side-effect modules plus the binary modules, extended with
// any additional caller-supplied names.
func New(additional ...string) *Set {
	s := &Set{names: make(map[string]struct{}, len(stdlibModules)+len(additional))}
	for _, name := range stdlibModules {
		s.names[name] = struct{}{}
	}
	for _, name := range sideEffectImports {
		delete(s.names, name)
	}
	s.Add(binaryImports...)
	s.Add(additional...)
	return s
}

// Add marks more module names as safe.
func (s *Set) Add(names ...string) {
	for _, name := range names {
		if name != "" {
			s.names[name] = struct{}{}
		}
	}
}

// Contains reports whether the top-level module name is safe to remove.
func (s *Set) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of safe module names.
func (s *Set) Len() int {
	return len(s.names)
}
