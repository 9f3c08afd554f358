package fix

import (
	"strings"

	"pyprune/pkg/pytoken"
)

// getLineEnding returns the trailing whitespace of line including its
// newline, so rewrites can preserve the original ending exactly.
func getLineEnding(line string) string {
	stripped := strings.TrimRight(line, " \t\n\r\v\f")
	return line[len(stripped):]
}

// getIndentation returns the leading whitespace of line; blank lines
// have no indentation.
func getIndentation(line string) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}
	trimmed := strings.TrimLeft(line, " \t\v\f")
	return line[:len(line)-len(trimmed)]
}

func leadingWhitespace(s string) string {
	trimmed := strings.TrimLeft(s, " \t\v\f")
	return s[:len(s)-len(trimmed)]
}

// multilineImport reports whether an import statement spans physical
// lines, either through parentheses or a continuation.
func multilineImport(line, previousLine string) bool {
	if strings.ContainsAny(line, "()") {
		return true
	}
	return multilineStatement(line, previousLine)
}

// multilineStatement reports whether line cannot be rewritten in
// isolation: it carries continuation or compound-statement syntax, does
// not tokenize on its own, or continues the previous line.
func multilineStatement(line, previousLine string) bool {
	if strings.ContainsAny(line, "\\:;") {
		return true
	}
	if _, err := pytoken.Tokenize(line); err != nil {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(previousLine, " \t\n\r\v\f"), "\\")
}
