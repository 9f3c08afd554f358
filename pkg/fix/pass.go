package fix

import (
	"strings"

	"pyprune/pkg/pytoken"
)

// FilterUselessPass removes pass statements that have no syntactic
// purpose: a pass followed by a statement at the same indentation, and
// a pass that is not the sole statement of its block. Sources that do
// not tokenize come back unchanged.
func FilterUselessPass(source string, ignorePass, ignoreAfterDocstring bool) string {
	if ignorePass {
		return source
	}
	marked := uselessPassLines(source, ignoreAfterDocstring)
	if len(marked) == 0 {
		return source
	}
	var out strings.Builder
	for i, line := range pytoken.SplitLines(source) {
		if !marked[i+1] {
			out.WriteString(line)
		}
	}
	return out.String()
}

// uselessPassLines finds redundant pass statements from the token
// stream. A pass is redundant when the next line continues the block at
// the same indentation (leading pass) or when it does not directly
// follow an INDENT, meaning the block already has other statements
// (trailing pass).
func uselessPassLines(source string, ignoreAfterDocstring bool) map[int]bool {
	tokens, err := pytoken.Tokenize(source)
	if err != nil {
		return nil
	}

	marked := map[int]bool{}
	prevType := pytoken.EndMarker
	lastPassRow := -1
	lastPassIndent := ""
	previousLine := ""
	previousNonEmptyLine := ""

	for _, tok := range tokens {
		line := tok.Line
		isPass := tok.Type == pytoken.Name && strings.TrimSpace(line) == "pass"

		if tok.Row-1 == lastPassRow &&
			getIndentation(line) == lastPassIndent &&
			isAtom(tok.Type) &&
			!isPass {
			marked[tok.Row-1] = true
		}

		if isPass {
			lastPassRow = tok.Row
			lastPassIndent = getIndentation(line)

			trailing := prevType != pytoken.Indent &&
				!strings.HasSuffix(strings.TrimRight(previousLine, " \t\n\r\v\f"), "\\")

			if trailing {
				stripped := strings.TrimRight(previousNonEmptyLine, " \t\n\r\v\f")
				afterDocstring := strings.HasSuffix(stripped, `"""`) ||
					strings.HasSuffix(stripped, "'''")
				if afterDocstring && ignoreAfterDocstring {
					// Keep it, and keep the bookkeeping as it was so a
					// following pass sees the same context.
					continue
				}
				marked[tok.Row] = true
			}
		}

		prevType = tok.Type
		previousLine = line
		if strings.TrimSpace(line) != "" {
			previousNonEmptyLine = line
		}
	}
	return marked
}

func isAtom(t pytoken.Type) bool {
	return t == pytoken.Name || t == pytoken.Number || t == pytoken.String
}
