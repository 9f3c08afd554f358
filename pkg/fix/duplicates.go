package fix

import (
	"regexp"
	"strings"

	"pyprune/pkg/analyzer"
	"pyprune/pkg/pytoken"
)

var dictEntryRe = regexp.MustCompile(`^\s*(.*):\s*(.*),\s*$`)

// duplicateRemovals maps line numbers to delete for repeated dictionary
// keys. Entries group per key per dictionary; a group is rewritten only
// when every flagged line is a self-contained "key: value," entry, and
// then all but the last occurrence go. Anything doubtful leaves the
// whole group untouched.
func duplicateRemovals(diags []analyzer.Diagnostic, lines []string) map[int]bool {
	type group struct {
		key   string
		lines []int
	}
	groups := map[string]*group{}
	var order []string
	for _, d := range diags {
		if d.Kind != analyzer.DuplicateKey {
			continue
		}
		id := d.Module + "\x00" + d.Name
		g, ok := groups[id]
		if !ok {
			g = &group{key: d.Name}
			groups[id] = g
			order = append(order, id)
		}
		g.lines = append(g.lines, d.Line)
	}

	removals := map[int]bool{}
	for _, id := range order {
		g := groups[id]
		verified := true
		last := 0
		for _, n := range g.lines {
			if n < 1 || n > len(lines) || !dictEntryHasKey(lines[n-1], g.key) {
				verified = false
				break
			}
			if n > last {
				last = n
			}
		}
		if !verified {
			continue
		}
		for _, n := range g.lines {
			if n != last {
				removals[n] = true
			}
		}
	}
	return removals
}

// dictEntryHasKey reports whether line is a complete dictionary entry
// whose literal key matches key in canonical form.
func dictEntryHasKey(line, key string) bool {
	if strings.Contains(line, "#") {
		return false
	}
	m := dictEntryRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	norm, ok := pytoken.LiteralValue(m[1])
	if !ok || norm != key {
		return false
	}
	return !multilineStatement(m[2], "")
}
