package fix

// Options select which rewrites run. The zero value removes unused
// standard-library imports and redundant pass statements and nothing
// else.
type Options struct {
	// AdditionalImports extends the set of modules considered safe to
	// remove when unused.
	AdditionalImports []string

	// ExpandStarImports rewrites a sole "from x import *" into an
	// explicit import of the names the file actually needs.
	ExpandStarImports bool

	// RemoveAllUnusedImports removes unused imports regardless of
	// whether the module is known to be side-effect free.
	RemoveAllUnusedImports bool

	// RemoveDuplicateKeys deletes earlier entries of repeated literal
	// dictionary keys.
	RemoveDuplicateKeys bool

	// RemoveUnusedVariables removes function-local assignments whose
	// name is never read.
	RemoveUnusedVariables bool

	// RemoveRHSForUnusedVariables also drops the right-hand side of a
	// removed assignment instead of keeping it for its side effects.
	RemoveRHSForUnusedVariables bool

	// IgnoreInitModuleImports leaves imports in __init__.py files
	// alone, since packages commonly re-export through them.
	IgnoreInitModuleImports bool

	// IgnorePassStatements disables redundant pass removal entirely.
	IgnorePassStatements bool

	// IgnorePassAfterDocstring keeps a pass that directly follows a
	// docstring.
	IgnorePassAfterDocstring bool
}
