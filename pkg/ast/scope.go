package ast

// LabelIndex maps a Label's Name to its position within a flat statement list.
// The control-flow passes do not use it: the un-flattener keys its walk by
// state value instead.
type LabelIndex map[string]int

// IndexLabels scans body for top-level Label statements and returns their
// positions. It does not recurse into nested blocks — by construction the
// flattened dispatcher's cases are themselves flat, so nested search is never
// needed for that shape; other callers that need labels at arbitrary depth
// should combine this with Collect.
func IndexLabels(body []Statement) LabelIndex {
	idx := make(LabelIndex)
	for i, s := range body {
		if l, ok := s.(*Label); ok {
			idx[l.Name] = i
		}
	}
	return idx
}

// FindLabel returns the position of a Label named name in body, or -1 if none
// exists at the top level.
func FindLabel(body []Statement, name string) int {
	for i, s := range body {
		if l, ok := s.(*Label); ok && l.Name == name {
			return i
		}
	}
	return -1
}

// DeclaredNames returns the set of names introduced by VariableDecl and
// Parameter in scope, so a caller can test whether a Variable reference
// resolves to a known declaration or is an orphan (used but never declared in
// any enclosing scope). The rename passes build their own maps instead of
// calling it.
func DeclaredNames(params []Parameter, body []Statement) map[string]bool {
	out := make(map[string]bool, len(params))
	for _, p := range params {
		out[p.Name] = true
	}
	var decls []*VariableDecl
	Collect(&Block{Body: body}, &decls, func(n Node, acc *[]*VariableDecl) {
		if d, ok := n.(*VariableDecl); ok {
			*acc = append(*acc, d)
		}
	})
	for _, d := range decls {
		out[d.Name] = true
	}
	return out
}
