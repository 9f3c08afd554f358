package fix

import (
	"regexp"
	"strings"

	"pyprune/pkg/pytoken"
)

var (
	exceptRe   = regexp.MustCompile(`^\s*except [\s,()\w]+ as \w+:`)
	asTargetRe = regexp.MustCompile(` as \w+:$`)
	nameOnlyRe = regexp.MustCompile(`^\w+\s*$`)
)

// filterUnusedVariable rewrites one line holding an unused binding.
// Except clauses lose their "as name"; simple assignments become pass
// when the right-hand side is inert, otherwise the right-hand side is
// kept for its effects unless dropRHS is set.
func filterUnusedVariable(line string, dropRHS bool) string {
	if exceptRe.MatchString(line) {
		ending := getLineEnding(line)
		stripped := strings.TrimRight(line, " \t\n\r\v\f")
		return asTargetRe.ReplaceAllString(stripped, ":") + ending
	}
	if multilineStatement(line, "") {
		return line
	}
	if strings.Count(line, "=") != 1 {
		return line
	}

	parts := strings.SplitN(line, "=", 2)
	if strings.Contains(parts[0], ",") {
		return line
	}
	value := strings.TrimLeft(parts[1], " \t\v\f")

	if isLiteralOrName(value) {
		// Nothing worth keeping; "pass" avoids leaving a block empty.
		return getIndentation(line) + "pass" + getLineEnding(line)
	}
	if dropRHS {
		return ""
	}
	return getIndentation(line) + value
}

// isLiteralOrName reports whether evaluating value can have no effect:
// a literal, an empty container constructor, or a bare name.
func isLiteralOrName(value string) bool {
	if _, ok := pytoken.LiteralValue(value); ok {
		return true
	}
	switch strings.TrimSpace(value) {
	case "dict()", "list()", "set()":
		return true
	}
	return nameOnlyRe.MatchString(value)
}
