// Package analyzer produces the diagnostics that drive source fixing:
// unused imports, unused local variables, duplicate dictionary keys, and
// star imports with the names they would need to provide. It is built on
// tree-sitter's Python grammar and is deliberately conservative: any
// parse error yields an empty diagnostic list, which downstream code
// treats as "nothing to do".
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"pyprune/pkg/pytoken"
)

// Kind classifies a diagnostic.
type Kind int

const (
	UnusedImport Kind = iota
	UnusedVariable
	DuplicateKey
	StarImport
	StarImportUsage
)

// Diagnostic is a single finding, located by 1-based source line.
// Module carries the fully qualified module path for import findings
// and, for duplicate keys, a position tag identifying the dictionary
// display so keys from separate dictionaries never group together.
// Name carries a variable name, an undefined name, or a canonical
// dictionary key depending on Kind.
type Diagnostic struct {
	Kind   Kind
	Line   int
	Module string
	Name   string
}

// Analyzer wraps a tree-sitter parser configured for Python. Analyzers
// are not safe for concurrent use; create one per goroutine and Close
// it when done.
type Analyzer struct {
	parser *sitter.Parser
}

// New creates an analyzer.
func New() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Analyzer{parser: p}
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// Analyze parses source and returns all diagnostics. Sources that do
// not parse cleanly return nil.
func (a *Analyzer) Analyze(source []byte) []Diagnostic {
	tree, err := a.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil
	}

	imports, stars := collectImports(root, source)

	names := newNameCollector(source)
	names.walk(root)
	for _, imp := range imports {
		names.bound[imp.local] = true
	}

	var diags []Diagnostic
	for _, imp := range imports {
		if names.uses[imp.local] == 0 {
			diags = append(diags, Diagnostic{Kind: UnusedImport, Line: imp.line, Module: imp.fq})
		}
	}

	diags = append(diags, unusedVariables(root, source)...)
	diags = append(diags, duplicateKeys(root, source)...)
	diags = append(diags, stars...)

	if len(stars) > 0 {
		var undefined []string
		for name, n := range names.uses {
			if n > 0 && !names.bound[name] && !isBuiltin(name) {
				undefined = append(undefined, name)
			}
		}
		sort.Strings(undefined)
		for _, name := range undefined {
			diags = append(diags, Diagnostic{Kind: StarImportUsage, Name: name})
		}
	}

	return diags
}

type importBinding struct {
	local string
	fq    string
	line  int
}

// collectImports gathers the names bound by import statements together
// with star-import diagnostics. Future imports bind nothing visible and
// are skipped entirely.
func collectImports(root *sitter.Node, source []byte) ([]importBinding, []Diagnostic) {
	var imports []importBinding
	var stars []Diagnostic

	walk(root, func(node *sitter.Node, typ string) bool {
		switch typ {
		case "import_statement":
			line := int(node.StartPoint().Row) + 1
			for i := 0; i < int(node.NamedChildCount()); i++ {
				ch := node.NamedChild(i)
				switch ch.Type() {
				case "dotted_name":
					fq := text(ch, source)
					imports = append(imports, importBinding{
						local: strings.SplitN(fq, ".", 2)[0],
						fq:    fq,
						line:  line,
					})
				case "aliased_import":
					name := ch.ChildByFieldName("name")
					alias := ch.ChildByFieldName("alias")
					if name != nil && alias != nil {
						imports = append(imports, importBinding{
							local: text(alias, source),
							fq:    text(name, source),
							line:  line,
						})
					}
				}
			}
			return false

		case "import_from_statement":
			line := int(node.StartPoint().Row) + 1
			moduleNode := node.ChildByFieldName("module_name")
			if moduleNode == nil {
				return false
			}
			base := text(moduleNode, source)
			if base == "__future__" {
				return false
			}
			for i := 0; i < int(node.NamedChildCount()); i++ {
				ch := node.NamedChild(i)
				if sameNode(ch, moduleNode) {
					continue
				}
				switch ch.Type() {
				case "wildcard_import":
					stars = append(stars, Diagnostic{Kind: StarImport, Line: line, Module: base})
				case "dotted_name", "identifier":
					name := text(ch, source)
					segs := strings.Split(name, ".")
					imports = append(imports, importBinding{
						local: segs[len(segs)-1],
						fq:    joinModule(base, name),
						line:  line,
					})
				case "aliased_import":
					name := ch.ChildByFieldName("name")
					alias := ch.ChildByFieldName("alias")
					if name != nil && alias != nil {
						imports = append(imports, importBinding{
							local: text(alias, source),
							fq:    joinModule(base, text(name, source)),
							line:  line,
						})
					}
				}
			}
			return false
		}
		return true
	})

	return imports, stars
}

// joinModule builds the fully qualified name of an imported symbol.
// Relative bases keep their trailing dot: "." plus "lib" is ".lib".
func joinModule(base, name string) string {
	if strings.HasSuffix(base, ".") {
		return base + name
	}
	return base + "." + name
}

// unusedVariables finds bindings that are never read: simple
// single-target assignments inside functions and "except ... as name"
// clauses anywhere.
func unusedVariables(root *sitter.Node, source []byte) []Diagnostic {
	var diags []Diagnostic

	walk(root, func(node *sitter.Node, typ string) bool {
		switch typ {
		case "function_definition":
			diags = append(diags, functionUnused(node, source)...)
		case "except_clause":
			name, line, ok := exceptBinding(node, source)
			if ok {
				scoped := newNameCollector(source)
				scoped.walk(node)
				if scoped.uses[name] == 0 {
					diags = append(diags, Diagnostic{Kind: UnusedVariable, Line: line, Name: name})
				}
			}
		}
		return true
	})

	return diags
}

// functionUnused reports assignments in one function scope whose name
// is never read anywhere in the function, nested scopes included. Names
// declared global or nonlocal are left alone. When a name is assigned
// several times only the last assignment line is reported.
func functionUnused(fn *sitter.Node, source []byte) []Diagnostic {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	declared := map[string]bool{}
	walk(fn, func(node *sitter.Node, typ string) bool {
		if typ == "global_statement" || typ == "nonlocal_statement" {
			for i := 0; i < int(node.NamedChildCount()); i++ {
				declared[text(node.NamedChild(i), source)] = true
			}
		}
		return true
	})

	lastAssign := map[string]int{}
	walk(body, func(node *sitter.Node, typ string) bool {
		switch typ {
		case "function_definition", "class_definition":
			// Different scope.
			return false
		case "assignment":
			left := node.ChildByFieldName("left")
			right := node.ChildByFieldName("right")
			if left != nil && left.Type() == "identifier" && right != nil && right.Type() != "assignment" {
				name := text(left, source)
				if !declared[name] {
					line := int(node.StartPoint().Row) + 1
					if line > lastAssign[name] {
						lastAssign[name] = line
					}
				}
			}
		}
		return true
	})
	if len(lastAssign) == 0 {
		return nil
	}

	scoped := newNameCollector(source)
	scoped.walk(fn)

	var names []string
	for name := range lastAssign {
		if scoped.uses[name] == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var diags []Diagnostic
	for _, name := range names {
		diags = append(diags, Diagnostic{Kind: UnusedVariable, Line: lastAssign[name], Name: name})
	}
	return diags
}

// exceptBinding extracts the "as name" binding of an except clause,
// covering both grammar shapes (bare identifier after the as keyword
// and an as_pattern expression).
func exceptBinding(node *sitter.Node, source []byte) (string, int, bool) {
	sawAs := false
	for i := 0; i < int(node.ChildCount()); i++ {
		ch := node.Child(i)
		if ch.Type() == "as" {
			sawAs = true
			continue
		}
		if sawAs && ch.Type() == "identifier" {
			return text(ch, source), int(node.StartPoint().Row) + 1, true
		}
		if ch.Type() == "as_pattern" {
			if alias := ch.ChildByFieldName("alias"); alias != nil {
				name := alias
				if name.NamedChildCount() > 0 {
					name = name.NamedChild(0)
				}
				if name.Type() == "identifier" {
					return text(name, source), int(node.StartPoint().Row) + 1, true
				}
			}
		}
	}
	return "", 0, false
}

// duplicateKeys reports every occurrence of a repeated literal key
// whose values are not all identical, per dictionary display. Keys that
// are not literals make the key unknowable and are skipped.
func duplicateKeys(root *sitter.Node, source []byte) []Diagnostic {
	var diags []Diagnostic

	walk(root, func(node *sitter.Node, typ string) bool {
		if typ != "dictionary" {
			return true
		}
		dictTag := fmt.Sprintf("%d:%d", node.StartPoint().Row+1, node.StartPoint().Column)
		type occurrence struct {
			line  int
			value string
		}
		groups := map[string][]occurrence{}
		var order []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			pair := node.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			norm, ok := pytoken.LiteralValue(text(key, source))
			if !ok {
				continue
			}
			if _, seen := groups[norm]; !seen {
				order = append(order, norm)
			}
			groups[norm] = append(groups[norm], occurrence{
				line:  int(pair.StartPoint().Row) + 1,
				value: strings.Join(strings.Fields(text(value, source)), " "),
			})
		}
		for _, norm := range order {
			occs := groups[norm]
			if len(occs) < 2 {
				continue
			}
			distinct := map[string]bool{}
			for _, o := range occs {
				distinct[o.value] = true
			}
			if len(distinct) < 2 {
				// Repeating the same value is harmless.
				continue
			}
			for _, o := range occs {
				diags = append(diags, Diagnostic{Kind: DuplicateKey, Line: o.line, Module: dictTag, Name: norm})
			}
		}
		return true
	})

	return diags
}

func walk(node *sitter.Node, visit func(*sitter.Node, string) bool) {
	if node == nil {
		return
	}
	if !visit(node, node.Type()) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
