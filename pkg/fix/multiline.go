package fix

import (
	"regexp"
	"strings"

	"pyprune/pkg/safeimports"
)

// pendingFix is a rewrite that needs more input lines before it can
// produce output. feed returns the replacement text once the statement
// is complete, or the fix itself while it is still consuming. flush
// reconstructs the consumed text when the source ends mid-statement.
type pendingFix interface {
	feed(line string) (string, pendingFix)
	flush() string
}

var (
	importKeywordRe = regexp.MustCompile(`\bimport\b\s*`)
	// One import per segment: the name, an optional continuation-aware
	// alias, and any trailing separator characters. Keeping separators
	// inside the segment preserves the original layout on reassembly.
	segmentRe = regexp.MustCompile(`[^,\s]+(?:[\s\\]+as[\s\\]+[^,\s]+)?[,\s\\)]*`)
)

// Characters that never belong to a module identifier.
const moduleJunk = " \t\n\r\v\f(),\\"

// localModuleTop stands in for the top-level package of relative
// imports, which is never in the safe set.
const localModuleTop = "%LOCAL_MODULE%"

// multilineImportFix removes unused names from an import statement that
// spans physical lines, parenthesized or backslash-continued. Rather
// than reflowing the statement it reuses the existing layout and
// substitutes the surviving identifiers into the leading segments plus
// the final one, which carries the closing parenthesis and ending.
type multilineImportFix struct {
	fromPart      string
	base          string
	parenthesized bool
	giveUp        bool
	remove        map[string]bool
	accumulated   []string
}

func newMultilineImport(line string, unused []string, removeAll bool, safe *safeimports.Set, previousLine string) (string, pendingFix) {
	loc := importKeywordRe.FindStringIndex(line)
	if loc == nil {
		return line, nil
	}

	m := &multilineImportFix{
		fromPart:      line[:loc[0]],
		parenthesized: strings.Contains(line, "("),
		remove:        map[string]bool{},
	}
	if bm := fromBaseRe.FindStringSubmatch(m.fromPart); bm != nil {
		m.base = bm[1]
	}

	switch {
	case removeAll:
		for _, module := range unused {
			m.remove[module] = true
		}
	case m.base != "" && !safe.Contains(topModule(m.base)):
		m.giveUp = true
	default:
		for _, module := range unused {
			if safe.Contains(topModule(module)) {
				m.remove[module] = true
			}
		}
	}
	if strings.Contains(previousLine, "\\") {
		m.giveUp = true
	}

	rest := line[loc[1]:]
	m.accumulated = append(m.accumulated, rest)
	m.analyze(line)
	if m.isOver(rest) {
		return m.complete(), nil
	}
	return "", m
}

func (m *multilineImportFix) feed(line string) (string, pendingFix) {
	m.accumulated = append(m.accumulated, line)
	m.analyze(line)
	if m.isOver(line) {
		return m.complete(), nil
	}
	return "", m
}

func (m *multilineImportFix) flush() string {
	return m.fromPart + "import " + strings.Join(m.accumulated, "")
}

// analyze gives up on statements this rewrite cannot handle safely.
func (m *multilineImportFix) analyze(line string) {
	if strings.ContainsAny(line, ";:#") {
		m.giveUp = true
	}
}

// isOver reports whether line terminates the statement: a closing
// parenthesis for parenthesized imports, otherwise the absence of a
// continuation backslash.
func (m *multilineImportFix) isOver(line string) bool {
	if m.parenthesized {
		return validCharInLine(')', line)
	}
	return !validCharInLine('\\', line)
}

func (m *multilineImportFix) complete() string {
	if m.giveUp {
		return m.flush()
	}
	return m.fix()
}

func (m *multilineImportFix) fix() string {
	oldImports := strings.Join(m.accumulated, "")
	ending := getLineEnding(oldImports)

	segments := segmentRe.FindAllString(oldImports, -1)
	modules := make([]string, len(segments))
	for i, segment := range segments {
		modules[i] = segmentModule(segment)
	}

	sep := "."
	if strings.HasSuffix(m.base, ".") {
		sep = ""
	}
	var keep []string
	for _, module := range modules {
		name := moduleName(module)
		fq := name
		if m.base != "" {
			fq = m.base + sep + name
		}
		if !m.remove[fq] {
			keep = append(keep, module)
		}
	}

	if len(keep) == len(segments) {
		return m.fromPart + "import " + oldImports
	}

	fixed := ""
	if len(keep) > 0 {
		// Reuse the layout that already exists: substitute surviving
		// identifiers into the first len(keep)-1 segments plus the last
		// segment, which holds the closing parenthesis and the ending.
		type template struct{ module, segment string }
		templates := make([]template, 0, len(keep))
		for i := 0; i < len(keep)-1; i++ {
			templates = append(templates, template{modules[i], segments[i]})
		}
		templates = append(templates, template{modules[len(modules)-1], segments[len(segments)-1]})

		var b strings.Builder
		for i, tpl := range templates {
			b.WriteString(strings.ReplaceAll(tpl.segment, tpl.module, keep[i]))
		}
		fixed = b.String()

		// Inline parenthesis with a single surviving import can lose a
		// paren in the substitution; drop the pair entirely.
		if m.parenthesized && (!strings.Contains(fixed, "(") || !strings.Contains(fixed, ")")) {
			fixed = strings.Trim(fixed, " \t\n\r\v\f()") + ending
		}
	}

	if strings.TrimSpace(fixed) == "" {
		return leadingWhitespace(m.fromPart) + "pass" + ending
	}
	return m.fromPart + "import " + fixed
}

// segmentModule extracts the module identifier inside a segment.
// Segments made of layout characters only have no module and reduce to
// the empty string, which never matches a diagnostic, so their layout
// is kept.
func segmentModule(segment string) string {
	return strings.Trim(segment, moduleJunk)
}

// moduleName reduces a module string to the bare identifier used for
// matching against diagnostics, dropping any alias.
func moduleName(module string) string {
	fields := strings.Fields(module)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func topModule(module string) string {
	if strings.HasPrefix(module, ".") {
		return localModuleTop
	}
	return strings.SplitN(module, ".", 2)[0]
}

// validCharInLine reports whether char occurs in line before any
// comment marker.
func validCharInLine(char byte, line string) bool {
	pos := strings.IndexByte(line, char)
	if pos < 0 {
		return false
	}
	hash := strings.IndexByte(line, '#')
	return hash < 0 || hash > pos
}
