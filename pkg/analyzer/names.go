package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// nameCollector walks a subtree and separates identifier loads from
// binding occurrences. uses counts only loads; bound records every name
// the subtree defines (functions, classes, parameters, assignment and
// loop targets, with/except aliases, walrus targets).
type nameCollector struct {
	source []byte
	uses   map[string]int
	bound  map[string]bool
}

func newNameCollector(source []byte) *nameCollector {
	return &nameCollector{
		source: source,
		uses:   map[string]int{},
		bound:  map[string]bool{},
	}
}

func (c *nameCollector) use(name string) {
	if name != "" {
		c.uses[name]++
	}
}

func (c *nameCollector) bind(name string) {
	if name != "" {
		c.bound[name] = true
	}
}

func (c *nameCollector) walk(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "import_statement", "import_from_statement":
		// Import bindings are collected separately; nothing in the
		// statement is a load.
		return

	case "identifier":
		c.use(text(node, c.source))
		return

	case "dotted_name":
		// Only the leading segment is a name load; the rest are
		// attribute accesses.
		if node.NamedChildCount() > 0 {
			c.use(text(node.NamedChild(0), c.source))
		}
		return

	case "attribute":
		if obj := node.ChildByFieldName("object"); obj != nil {
			c.walk(obj)
		}
		return

	case "keyword_argument":
		// f(name=value) loads only value.
		if v := node.ChildByFieldName("value"); v != nil {
			c.walk(v)
		}
		return

	case "function_definition", "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			c.bind(text(nameNode, c.source))
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			ch := node.NamedChild(i)
			if sameNode(ch, nameNode) {
				continue
			}
			c.walk(ch)
		}
		return

	case "parameters", "lambda_parameters":
		c.bindParams(node)
		return

	case "assignment", "augmented_assignment":
		if left := node.ChildByFieldName("left"); left != nil {
			c.bindTargets(left, node.Type() == "augmented_assignment")
		}
		if typ := node.ChildByFieldName("type"); typ != nil {
			c.walk(typ)
		}
		if right := node.ChildByFieldName("right"); right != nil {
			c.walk(right)
		}
		return

	case "named_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			c.bindTargets(name, false)
		}
		if v := node.ChildByFieldName("value"); v != nil {
			c.walk(v)
		}
		return

	case "for_statement", "for_in_clause":
		if left := node.ChildByFieldName("left"); left != nil {
			c.bindTargets(left, false)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			ch := node.NamedChild(i)
			if sameNode(ch, node.ChildByFieldName("left")) {
				continue
			}
			c.walk(ch)
		}
		return

	case "as_pattern":
		// with expr as target, except Exc as name.
		if node.NamedChildCount() > 0 {
			c.walk(node.NamedChild(0))
		}
		if alias := node.ChildByFieldName("alias"); alias != nil {
			c.bindTargets(alias, false)
		}
		return

	case "except_clause":
		sawAs := false
		for i := 0; i < int(node.ChildCount()); i++ {
			ch := node.Child(i)
			if ch.Type() == "as" {
				sawAs = true
				continue
			}
			if sawAs && ch.Type() == "identifier" {
				c.bind(text(ch, c.source))
				sawAs = false
				continue
			}
			c.walk(ch)
		}
		return

	case "global_statement", "nonlocal_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c.bind(text(node.NamedChild(i), c.source))
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		c.walk(node.Child(i))
	}
}

// bindTargets records binding occurrences inside an assignment or loop
// target. Attribute and subscript targets load their base object rather
// than bind a name. asUse additionally counts bound identifiers as
// loads, which augmented assignment needs since x += 1 reads x.
func (c *nameCollector) bindTargets(node *sitter.Node, asUse bool) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier":
		c.bind(text(node, c.source))
		if asUse {
			c.use(text(node, c.source))
		}
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list", "as_pattern_target":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c.bindTargets(node.NamedChild(i), asUse)
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		if node.NamedChildCount() > 0 {
			c.bindTargets(node.NamedChild(0), asUse)
		}
	default:
		// a.b = v and a[i] = v load a.
		c.walk(node)
	}
}

// bindParams records the names a parameter list introduces while still
// loading default values and annotations.
func (c *nameCollector) bindParams(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		ch := node.NamedChild(i)
		switch ch.Type() {
		case "identifier":
			c.bind(text(ch, c.source))
		case "default_parameter", "typed_default_parameter":
			if name := ch.ChildByFieldName("name"); name != nil {
				c.bindTargets(name, false)
			}
			if typ := ch.ChildByFieldName("type"); typ != nil {
				c.walk(typ)
			}
			if v := ch.ChildByFieldName("value"); v != nil {
				c.walk(v)
			}
		case "typed_parameter":
			if ch.NamedChildCount() > 0 {
				c.bindTargets(ch.NamedChild(0), false)
			}
			if typ := ch.ChildByFieldName("type"); typ != nil {
				c.walk(typ)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if ch.NamedChildCount() > 0 {
				c.bindTargets(ch.NamedChild(0), false)
			}
		}
	}
}
