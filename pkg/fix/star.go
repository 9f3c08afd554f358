package fix

import (
	"sort"
	"strings"
)

// filterStarImport replaces the wildcard with the sorted list of names
// the file uses but does not define.
func filterStarImport(line string, names []string) string {
	unique := map[string]bool{}
	for _, name := range names {
		unique[name] = true
	}
	sorted := make([]string, 0, len(unique))
	for name := range unique {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return strings.ReplaceAll(line, "*", strings.Join(sorted, ", "))
}
