package refactor

import (
	"strings"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast"
	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

const (
	indentSpaces = "    "
	indentTab    = "\t"
)

// Extraction describes a completed extract-method refactoring.
type Extraction struct {
	Name    string   `json:"name"              yaml:"name"`
	Params  []string `json:"params,omitempty"  yaml:"params,omitempty"`
	Returns []string `json:"returns,omitempty" yaml:"returns,omitempty"`
	Method  bool     `json:"method"            yaml:"method"`
	Static  bool     `json:"static,omitempty"  yaml:"static,omitempty"`
}

// ExtractMethod moves the complete statements within lines [startLine,
// endLine] into a new function, or a private method when they sit inside a
// method, and replaces them with a call.
//
// Variables used in the selection that already exist before it become
// parameters. Variables written in the selection and used after it are
// returned, as an array when there are several.
func ExtractMethod(tree *node.Tree, startLine, endLine uint, name string) (*Extraction, error) {
	const op = "extract-method"

	rng := LineRange(startLine, endLine)
	if err := rng.Validate(); err != nil {
		return nil, newError(InputError, op, err)
	}

	name, err := ValidateFunctionName(name)
	if err != nil {
		return nil, newError(InputError, op, err)
	}

	list, selected, err := selectStatements(tree.Root, rng)
	if err != nil {
		return nil, newError(KindOf(err), op, err)
	}

	scope := enclosingScope(tree.Root, list)
	if scope != nil && !scope.Kind.IsNamedScope() {
		return nil, newError(InputError, op, ErrClosureScope)
	}

	for _, stmt := range selected {
		if err := checkControlFlow(stmt, 0); err != nil {
			return nil, newError(InputError, op, err)
		}
	}

	extraction := &Extraction{
		Name:   name,
		Method: scope != nil && scope.Kind == node.KindMethod,
	}
	extraction.Static = extraction.Method && uast.IsStaticScope(scope)
	extraction.Params, extraction.Returns = analyzeFlow(tree.Root, scope, selected)

	gen := newMethodWriter(tree, scope, selected, extraction)
	callNode := gen.replaceSelection(list)

	if err := gen.insertDeclaration(list, callNode); err != nil {
		return nil, newError(UnexpectedError, op, err)
	}

	return extraction, nil
}

// selectStatements finds the outermost statement list holding complete
// statements within rng.
func selectStatements(root *node.Node, rng Range) (*node.Node, []*node.Node, error) {
	var (
		list     *node.Node
		selected []*node.Node
		partial  bool
	)

	var search func(n *node.Node) bool

	search = func(n *node.Node) bool {
		if n.Kind.IsStatementList() {
			if stmts, split := statementsWithin(n, rng); len(stmts) > 0 {
				list, selected, partial = n, stmts, split

				return true
			}
		}

		for _, child := range n.Children {
			if child.Pos != nil && (child.Pos.EndLine < rng.StartLine || child.Pos.StartLine > rng.EndLine) {
				continue
			}

			if search(child) {
				return true
			}
		}

		return false
	}

	if !search(root) {
		return nil, nil, errorf(NotFoundError, "", ErrEmptySelection, "lines %s", rng)
	}

	if partial {
		return nil, nil, errorf(InputError, "", ErrPartialSelection, "lines %s", rng)
	}

	for _, stmt := range selected {
		if stmt.Kind == node.KindFunction || stmt.Kind == node.KindClass {
			return nil, nil, errorf(InputError, "", ErrDeclaration, "%s", ScopeName(stmt))
		}
	}

	return list, selected, nil
}

// statementsWithin returns the children of list lying wholly inside rng, and
// whether another child is cut by the range.
func statementsWithin(list *node.Node, rng Range) ([]*node.Node, bool) {
	var (
		stmts []*node.Node
		split bool
	)

	for _, child := range list.Children {
		if child.Pos == nil || !isSelectable(child) {
			continue
		}

		switch {
		case child.Pos.StartLine >= rng.StartLine && child.Pos.EndLine <= rng.EndLine:
			stmts = append(stmts, child)
		case child.Pos.StartLine <= rng.EndLine && child.Pos.EndLine >= rng.StartLine:
			split = true
		}
	}

	return stmts, split
}

func isSelectable(n *node.Node) bool {
	return n.Kind.IsStatement() || n.Kind == node.KindFunction || n.Kind == node.KindClass
}

// enclosingScope returns the innermost scope-introducing ancestor of n.
func enclosingScope(root, n *node.Node) *node.Node {
	ancestors := root.Ancestors(n)

	for idx := len(ancestors) - 1; idx >= 0; idx-- {
		if ancestors[idx].Kind.IsScope() {
			return ancestors[idx]
		}
	}

	return nil
}

// checkControlFlow rejects statements that would leave the extracted body:
// return and yield anywhere, break and continue outside a selected loop.
func checkControlFlow(n *node.Node, loops int) error {
	switch {
	case n.Kind.IsScope():
		return nil
	case n.Kind == node.KindReturn, n.Kind == node.KindYield:
		return errorf(InputError, "", ErrControlFlow, "%s at line %d", n.Kind, n.StartLine())
	case n.Kind == node.KindJump && loops == 0:
		return errorf(InputError, "", ErrControlFlow, "%s at line %d", n.Type, n.StartLine())
	case n.Kind == node.KindLoop, n.Kind == node.KindSwitch:
		loops++
	}

	for _, child := range n.Children {
		if err := checkControlFlow(child, loops); err != nil {
			return err
		}
	}

	return nil
}

// analyzeFlow computes parameters and return values of the extracted body in
// order of first use inside the selection.
func analyzeFlow(root, scope *node.Node, selected []*node.Node) (params, returns []string) {
	start := selected[0].Pos.StartOffset
	end := selected[len(selected)-1].Pos.EndOffset
	writes := uast.VariableWrites(selected...)

	var order []string

	before := map[string]bool{}
	after := map[string]bool{}
	assigned := map[string]bool{}
	definedFirst := map[string]bool{}
	seen := map[string]bool{}

	VisitScopeVariables(root, scope, func(v *node.Node) {
		if v.Pos == nil {
			return
		}

		switch offset := v.Pos.StartOffset; {
		case offset < start:
			before[v.Name] = true
		case offset >= end:
			after[v.Name] = true
		default:
			if !seen[v.Name] {
				seen[v.Name] = true
				definedFirst[v.Name] = writes.Plain[v]

				order = append(order, v.Name)
			}

			if writes.IsWrite(v) {
				assigned[v.Name] = true
			}
		}
	})

	for _, name := range order {
		if name == thisVariable || superglobals[name] {
			continue
		}

		if before[name] && !definedFirst[name] {
			params = append(params, name)
		}

		if assigned[name] && after[name] {
			returns = append(returns, name)
		}
	}

	return params, returns
}

// methodWriter renders the call and the new declaration.
type methodWriter struct {
	tree       *node.Tree
	scope      *node.Node
	extraction *Extraction
	selected   []*node.Node
	declIndent string
	bodyIndent string
}

func newMethodWriter(tree *node.Tree, scope *node.Node, selected []*node.Node, extraction *Extraction) *methodWriter {
	declIndent := ""
	if scope != nil {
		declIndent, _ = tree.Indentation(scope)
	}

	selIndent, _ := tree.Indentation(selected[0])

	unit := indentSpaces
	if strings.Contains(declIndent+selIndent, indentTab) {
		unit = indentTab
	}

	return &methodWriter{
		tree:       tree,
		scope:      scope,
		extraction: extraction,
		selected:   selected,
		declIndent: declIndent,
		bodyIndent: declIndent + unit,
	}
}

// replaceSelection swaps the selected statements for one call statement
// spanning all of them and returns it.
func (w *methodWriter) replaceSelection(list *node.Node) *node.Node {
	first := w.selected[0]
	last := w.selected[len(w.selected)-1]

	span := node.NewPositions(
		first.Pos.StartLine, first.Pos.StartCol, first.Pos.StartOffset,
		last.Pos.EndLine, last.Pos.EndCol, last.Pos.EndOffset,
	)

	callNode := node.NewSynthetic(w.callStatement(), span)
	list.ReplaceChild(first, callNode)

	for _, stmt := range w.selected[1:] {
		list.RemoveChild(stmt)
	}

	return callNode
}

func (w *methodWriter) callStatement() string {
	ext := w.extraction

	callee := ext.Name

	switch {
	case ext.Static:
		callee = "self::" + ext.Name
	case ext.Method:
		callee = "$this->" + ext.Name
	}

	call := callee + "(" + variableList(ext.Params) + ");"

	switch len(ext.Returns) {
	case 0:
		return call
	case 1:
		return "$" + ext.Returns[0] + " = " + call
	default:
		return "[" + variableList(ext.Returns) + "] = " + call
	}
}

// declaration renders the new function without indentation on its first line.
func (w *methodWriter) declaration() string {
	ext := w.extraction

	var sb strings.Builder

	if ext.Method {
		sb.WriteString("private ")

		if ext.Static {
			sb.WriteString("static ")
		}
	}

	sb.WriteString("function " + ext.Name + "(" + variableList(ext.Params) + ")\n")
	sb.WriteString(w.declIndent + "{\n")
	sb.WriteString(w.body())

	switch len(ext.Returns) {
	case 0:
	case 1:
		sb.WriteString("\n" + w.bodyIndent + "return $" + ext.Returns[0] + ";")
	default:
		sb.WriteString("\n" + w.bodyIndent + "return [" + variableList(ext.Returns) + "];")
	}

	sb.WriteString("\n" + w.declIndent + "}")

	return sb.String()
}

// body re-indents the selected source to one level inside the declaration.
func (w *methodWriter) body() string {
	first := w.selected[0]
	last := w.selected[len(w.selected)-1]
	selIndent, _ := w.tree.Indentation(first)

	text := string(w.tree.Source[first.Pos.StartOffset:last.Pos.EndOffset])
	lines := strings.Split(text, "\n")

	for idx, line := range lines {
		switch {
		case idx == 0:
			lines[idx] = w.bodyIndent + line
		case strings.TrimSpace(line) == "":
			lines[idx] = ""
		default:
			lines[idx] = w.bodyIndent + strings.TrimPrefix(line, selIndent)
		}
	}

	return strings.Join(lines, "\n")
}

// insertDeclaration places the new declaration after the enclosing function
// or method, or after the last top-level statement.
func (w *methodWriter) insertDeclaration(list, callNode *node.Node) error {
	parent, anchor := w.anchor(list)
	if parent == nil || anchor == nil {
		return ErrNoStatementList
	}

	if parent.ChildIndex(anchor) < 0 {
		anchor = callNode
	}

	decl := w.declaration()

	var text string

	if next := nextPositioned(parent, anchor); next != nil {
		text = decl + "\n\n"
		if indent, leading := w.tree.Indentation(next); leading {
			text += indent
		}
	} else {
		text = "\n\n" + w.declIndent + decl
	}

	if !parent.InsertAfter(anchor, node.NewSynthetic(text, nil)) {
		return ErrNoStatementList
	}

	return nil
}

// anchor returns the node the declaration follows and its parent. At top
// level this is the last statement of the file, or of the namespace block
// holding the selection.
func (w *methodWriter) anchor(list *node.Node) (parent, anchor *node.Node) {
	root := w.tree.Root

	if w.scope != nil {
		return root.Parent(w.scope), w.scope
	}

	parent = root

	for _, ancestor := range append(root.Ancestors(list), list) {
		if ancestor.Kind == node.KindBlock && uast.IsNamespace(root.Parent(ancestor)) {
			parent = ancestor
		}
	}

	for idx := len(parent.Children) - 1; idx >= 0; idx-- {
		child := parent.Children[idx]
		if child.Kind != node.KindUnknown || child.Synthetic {
			return parent, child
		}
	}

	return parent, nil
}

func nextPositioned(parent, anchor *node.Node) *node.Node {
	idx := parent.ChildIndex(anchor)
	if idx < 0 {
		return nil
	}

	for _, sibling := range parent.Children[idx+1:] {
		if sibling.Pos != nil && !sibling.Synthetic {
			return sibling
		}
	}

	return nil
}

func variableList(names []string) string {
	vars := make([]string, len(names))

	for idx, name := range names {
		vars[idx] = "$" + name
	}

	return strings.Join(vars, ", ")
}
