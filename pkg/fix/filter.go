package fix

import (
	"strings"

	"pyprune/pkg/analyzer"
	"pyprune/pkg/pytoken"
)

// filterCode runs a single rewrite pass over source, dispatching each
// line to the rewrite its diagnostics call for. Lines containing a
// comment marker are never touched; multiline import statements are
// consumed by a pending fix across iterations.
func (f *Fixer) filterCode(source string, opts Options, ignoreImports bool) string {
	diags := f.analyzer.Analyze([]byte(source))
	lines := pytoken.SplitLines(source)

	markedImports := map[int][]string{}
	if !ignoreImports {
		for _, d := range diags {
			if d.Kind == analyzer.UnusedImport {
				markedImports[d.Line] = append(markedImports[d.Line], d.Module)
			}
		}
	}

	markedVariables := map[int]bool{}
	if opts.RemoveUnusedVariables {
		for _, d := range diags {
			if d.Kind == analyzer.UnusedVariable {
				markedVariables[d.Line] = true
			}
		}
	}

	dupRemovals := map[int]bool{}
	if opts.RemoveDuplicateKeys {
		dupRemovals = duplicateRemovals(diags, lines)
	}

	starLine, starNames := f.starExpansion(source, diags, opts)

	var out strings.Builder
	var pending pendingFix
	previousLine := ""
	for i, line := range lines {
		n := i + 1
		var result string
		switch {
		case pending != nil:
			result, pending = pending.feed(line)
		case strings.Contains(line, "#"):
			result = line
		case len(markedImports[n]) > 0:
			result, pending = f.filterUnusedImport(line, markedImports[n], opts, previousLine)
		case markedVariables[n]:
			result = filterUnusedVariable(line, opts.RemoveRHSForUnusedVariables)
		case dupRemovals[n]:
			result = ""
		case n == starLine:
			result = filterStarImport(line, starNames)
		default:
			result = line
		}
		if pending == nil {
			previousLine = line
			out.WriteString(result)
		}
	}
	if pending != nil {
		out.WriteString(pending.flush())
	}
	return out.String()
}

// starExpansion decides whether the star import can be expanded:
// exactly one star import, names that need defining, and no __all__ or
// del in the file, either of which makes the needed names unknowable.
func (f *Fixer) starExpansion(source string, diags []analyzer.Diagnostic, opts Options) (int, []string) {
	if !opts.ExpandStarImports || allRe.MatchString(source) || delRe.MatchString(source) {
		return 0, nil
	}
	var starLines []int
	var names []string
	for _, d := range diags {
		switch d.Kind {
		case analyzer.StarImport:
			starLines = append(starLines, d.Line)
		case analyzer.StarImportUsage:
			names = append(names, d.Name)
		}
	}
	if len(starLines) != 1 || len(names) == 0 {
		return 0, nil
	}
	return starLines[0], names
}
