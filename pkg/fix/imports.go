package fix

import (
	"regexp"
	"strings"
)

var (
	importSplitRe = regexp.MustCompile(`\bimport\b`)
	fromBaseRe    = regexp.MustCompile(`\bfrom\s+(\S+)`)
	commaSplitRe  = regexp.MustCompile(`\s*,\s*`)
)

// filterUnusedImport rewrites one import line whose diagnostics flag
// the modules in unused. Statements spanning several physical lines
// come back as a pending fix that consumes the remaining lines.
func (f *Fixer) filterUnusedImport(line string, unused []string, opts Options, previousLine string) (string, pendingFix) {
	if multilineImport(line, previousLine) {
		return newMultilineImport(line, unused, opts.RemoveAllUnusedImports, f.safe, previousLine)
	}

	isFromImport := strings.HasPrefix(strings.TrimLeft(line, " \t\v\f"), "from ")

	if strings.Contains(line, ",") && !isFromImport {
		// Split "import a, b" into one import per line; the next
		// rewrite round removes the unused ones individually.
		return breakUpImport(line), nil
	}

	pkg, ok := extractPackageName(line)
	if !ok {
		// Doctest lines look like imports but are not.
		return line, nil
	}
	if !opts.RemoveAllUnusedImports && !f.safe.Contains(pkg) {
		return line, nil
	}

	if strings.Contains(line, ",") {
		return filterFromImport(line, unused), nil
	}

	// "pass" instead of deletion, in case the import is the only
	// statement inside a block.
	return getIndentation(line) + "pass" + getLineEnding(line), nil
}

// extractPackageName returns the top-level package of a single-line
// import statement. ok is false for lines that merely contain the
// import keyword, such as doctests.
func extractPackageName(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "import ") && !strings.HasPrefix(trimmed, "from ") {
		return "", false
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return "", false
	}
	return strings.SplitN(fields[1], ".", 2)[0], true
}

// breakUpImport rewrites "import a, b" as one import statement per
// line, preserving indentation and line ending.
func breakUpImport(line string) string {
	ending := getLineEnding(line)
	if ending == "" {
		return line
	}
	parts := importSplitRe.Split(line, 2)
	if len(parts) != 2 {
		return line
	}
	head := parts[0] + "import "
	var out strings.Builder
	for _, module := range strings.Split(parts[1], ",") {
		out.WriteString(head + strings.TrimSpace(module) + ending)
	}
	return out.String()
}

// filterFromImport removes the unused names from a single-line
// "from x import a, b" statement.
func filterFromImport(line string, unused []string) string {
	parts := importSplitRe.Split(line, 2)
	if len(parts) != 2 {
		return line
	}
	head := parts[0]

	base := ""
	if m := fromBaseRe.FindStringSubmatch(head); m != nil {
		base = m[1]
	}
	sep := "."
	if strings.HasSuffix(base, ".") {
		sep = ""
	}

	removed := make(map[string]bool, len(unused))
	for _, module := range unused {
		removed[module] = true
	}

	var keep []string
	for _, name := range commaSplitRe.Split(strings.TrimSpace(parts[1]), -1) {
		bare := strings.SplitN(name, " as ", 2)[0]
		if !removed[base+sep+bare] {
			keep = append(keep, name)
		}
	}
	if len(keep) == 0 {
		return getIndentation(line) + "pass" + getLineEnding(line)
	}
	return head + "import " + strings.Join(keep, ", ") + getLineEnding(line)
}
