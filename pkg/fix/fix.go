// Package fix rewrites Python source to remove code that diagnostics
// prove dead: unused imports and variables, duplicate dictionary keys,
// star imports, and redundant pass statements. Rewrites are strictly
// line-oriented and conservative; a line the fixer is not sure about
// stays exactly as it was.
package fix

import (
	"regexp"

	"pyprune/pkg/analyzer"
	"pyprune/pkg/pytoken"
	"pyprune/pkg/safeimports"
)

var (
	nonlocalRe = regexp.MustCompile(`\bnonlocal\b`)
	allRe      = regexp.MustCompile(`\b__all__\b`)
	delRe      = regexp.MustCompile(`\bdel\b`)
)

// Fixer applies the configured rewrites to Python sources. A Fixer owns
// a parser and is not safe for concurrent use; create one per goroutine
// and Close it when done.
type Fixer struct {
	analyzer *analyzer.Analyzer
	safe     *safeimports.Set
	opts     Options
}

// New creates a Fixer with the given options.
func New(opts Options) *Fixer {
	return &Fixer{
		analyzer: analyzer.New(),
		safe:     safeimports.New(opts.AdditionalImports...),
		opts:     opts,
	}
}

// Close releases parser resources.
func (f *Fixer) Close() {
	f.analyzer.Close()
}

// Options returns the fixer's configuration.
func (f *Fixer) Options() Options {
	return f.opts
}

// FixCode rewrites source until it reaches a fixed point: each round
// removes flagged code and then redundant pass statements, and removals
// can expose further dead code for the next round.
func (f *Fixer) FixCode(source string) string {
	return f.fixCode(source, false)
}

func (f *Fixer) fixCode(source string, ignoreImports bool) string {
	if source == "" {
		return source
	}
	opts := f.opts
	if opts.RemoveUnusedVariables && nonlocalRe.MatchString(source) {
		// nonlocal makes assignment liveness non-local; leave all
		// variables alone in such files.
		opts.RemoveUnusedVariables = false
	}

	// Each round deletes at least one line, so this bound is never hit
	// before the fixed point.
	limit := len(pytoken.SplitLines(source)) + 1
	for i := 0; i < limit; i++ {
		filtered := FilterUselessPass(
			f.filterCode(source, opts, ignoreImports),
			opts.IgnorePassStatements,
			opts.IgnorePassAfterDocstring,
		)
		if filtered == source {
			break
		}
		source = filtered
	}
	return source
}

// FilterCode runs a single rewrite pass without pass cleanup or
// iteration, which is occasionally useful for inspecting what one round
// would do.
func (f *Fixer) FilterCode(source string) string {
	return f.filterCode(source, f.opts, false)
}
