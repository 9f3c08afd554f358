package fix

import (
	"path/filepath"

	"pyprune/pkg/pyfile"
)

// Result describes the outcome of fixing one file.
type Result struct {
	Path    string
	Changed bool
	Diff    string
}

// FixCodeForPath rewrites source as FixCode does, except that import
// removal is suppressed when the path names an __init__.py and the
// fixer is configured to leave package re-exports alone.
func (f *Fixer) FixCodeForPath(source, path string) string {
	ignoreImports := f.opts.IgnoreInitModuleImports && filepath.Base(path) == "__init__.py"
	return f.fixCode(source, ignoreImports)
}

// FixFile rewrites the file at path. With write set the fixed content
// replaces the file in its original encoding; otherwise the result only
// reports what would change.
func (f *Fixer) FixFile(path string, write bool) (*Result, error) {
	src, err := pyfile.Read(path)
	if err != nil {
		return nil, err
	}

	fixed := f.FixCodeForPath(src.Content, path)

	result := &Result{Path: path, Changed: fixed != src.Content}
	if !result.Changed {
		return result, nil
	}
	result.Diff, err = Diff(src.Content, fixed, path)
	if err != nil {
		return nil, err
	}
	if write {
		if err := src.Write(fixed); err != nil {
			return nil, err
		}
	}
	return result, nil
}
