// Package rewrite turns annotated statements into assertion calls.
//
// Two trailing-comment annotation forms are recognized on bare expression
// statements:
//
//	add(1, 2) // => 3
//	div(1, 0) // MathError: division by zero
//
// The first becomes a doctest.AssertRepr call wrapping the expression's
// value; the second moves the expression into a lazy thunk passed to
// doctest.AssertError. Additional comment lines in the same trailing group
// extend the expected text, each contributing its text minus its first
// character (the conventional continuation marker).
//
// The rewriter also collects each sample's import declarations for
// document-wide hoisting: sample bodies live inside generated functions,
// where Go disallows imports.
package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"mdtest/internal/sample"
)

// Runtime helper identifiers referenced by rewritten statements. The
// assembler imports the package under this name.
const (
	helperPkg   = "doctest"
	helperRepr  = "AssertRepr"
	helperError = "AssertError"
)

var (
	reprMarker  = regexp.MustCompile(`^\s*=>\s(.*)$`)
	errorMarker = regexp.MustCompile(`^\s*([A-Za-z]*Error):\s(.*)$`)
)

// annotation is the parsed expectation attached to one statement.
type annotation struct {
	isError  bool
	expected string // Repr: expected representation
	name     string // Error: expected kind name
	message  string // Error: expected message
}

// Rewriter processes parsed samples within one compilation. It keeps a
// side table of already-rewritten statements so a re-entrant traversal
// never wraps a replacement twice, and accumulates hoisted imports in
// first-discovery order.
type Rewriter struct {
	fset    *token.FileSet
	done    map[ast.Stmt]ast.Stmt
	seen    map[*ast.File]bool
	hoisted []*ast.ImportSpec
}

// New returns a Rewriter sharing the compilation's FileSet.
func New(fset *token.FileSet) *Rewriter {
	return &Rewriter{
		fset: fset,
		done: make(map[ast.Stmt]ast.Stmt),
		seen: make(map[*ast.File]bool),
	}
}

// Hoisted returns every import lifted out of samples so far, in the order
// they were first discovered.
func (r *Rewriter) Hoisted() []*ast.ImportSpec {
	return r.hoisted
}

// Rewrite returns the sample's statement sequence with every annotated
// statement replaced by its assertion call. Non-annotated statements keep
// their relative order. The sample's imports are appended to the hoist
// list the first time its file is seen.
func (r *Rewriter) Rewrite(p *sample.Parsed) ([]ast.Stmt, error) {
	if !r.seen[p.File] {
		r.seen[p.File] = true
		r.hoisted = append(r.hoisted, p.File.Imports...)
	}

	trailing := r.trailingComments(p)

	var out []ast.Stmt
	for _, stmt := range p.Body() {
		if repl, ok := r.done[stmt]; ok {
			out = append(out, repl)
			continue
		}
		ann, err := detect(stmt, trailing[stmt])
		if err != nil {
			return nil, err
		}
		if ann == nil {
			out = append(out, stmt)
			continue
		}
		repl := rewriteStmt(stmt.(*ast.ExprStmt).X, ann)
		r.done[stmt] = repl
		out = append(out, repl)
	}
	return out, nil
}

// trailingComments maps each body statement to its own trailing comment
// group: the group starting after the statement's end, on the line its
// last token occupies. Comments belonging to sibling or child nodes never
// qualify; when several statements share a line, the group belongs to the
// last one ending before it.
func (r *Rewriter) trailingComments(p *sample.Parsed) map[ast.Stmt]*ast.CommentGroup {
	m := make(map[ast.Stmt]*ast.CommentGroup)
	for _, g := range p.File.Comments {
		gLine := r.fset.Position(g.Pos()).Line
		var owner ast.Stmt
		for _, stmt := range p.Body() {
			if stmt.End() <= g.Pos() && r.fset.Position(stmt.End()).Line == gLine {
				owner = stmt
			}
		}
		if owner == nil {
			continue
		}
		if _, dup := m[owner]; !dup {
			m[owner] = g
		}
	}
	return m
}

// detect classifies a statement's trailing comments. Only bare expression
// statements qualify. A nil annotation with nil error means the statement
// is left untouched. A classification that matches but fails to capture
// its groups would be a logic invariant violation and is surfaced, never
// swallowed.
func detect(stmt ast.Stmt, g *ast.CommentGroup) (*annotation, error) {
	if g == nil || len(g.List) == 0 {
		return nil, nil
	}
	if _, ok := stmt.(*ast.ExprStmt); !ok {
		return nil, nil
	}
	first, ok := lineText(g.List[0])
	if !ok {
		return nil, nil
	}

	if m := reprMarker.FindStringSubmatch(first); m != nil {
		if len(m) != 2 {
			return nil, fmt.Errorf("repr annotation matched but captured nothing: %q", first)
		}
		return &annotation{expected: joinContinuations(m[1], g.List[1:])}, nil
	}
	if m := errorMarker.FindStringSubmatch(first); m != nil {
		if len(m) != 3 {
			return nil, fmt.Errorf("error annotation matched but captured nothing: %q", first)
		}
		return &annotation{
			isError: true,
			name:    m[1],
			message: joinContinuations(m[2], g.List[1:]),
		}, nil
	}
	return nil, nil
}

// lineText returns a line comment's text with the // marker stripped.
// Block comments never carry annotations.
func lineText(c *ast.Comment) (string, bool) {
	if !strings.HasPrefix(c.Text, "//") {
		return "", false
	}
	return c.Text[2:], true
}

// joinContinuations appends each continuation comment line, minus its
// first character, to the first line's remainder.
func joinContinuations(first string, rest []*ast.Comment) string {
	parts := []string{first}
	for _, c := range rest {
		t, ok := lineText(c)
		if !ok {
			break
		}
		if t != "" {
			t = t[1:]
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n")
}

// rewriteStmt builds the replacement statement for an annotated
// expression. The repr form passes the expression itself, so it is still
// evaluated exactly once, in place. The error form defers evaluation into
// a zero-argument thunk so the helper can recover from the panic.
func rewriteStmt(expr ast.Expr, ann *annotation) ast.Stmt {
	if !ann.isError {
		return helperCall(helperRepr, expr, stringLit(ann.expected))
	}
	thunk := &ast.FuncLit{
		Type: &ast.FuncType{Params: &ast.FieldList{}},
		Body: &ast.BlockStmt{List: []ast.Stmt{&ast.ExprStmt{X: expr}}},
	}
	return helperCall(helperError, thunk, stringLit(ann.name), stringLit(ann.message))
}

func helperCall(fn string, args ...ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{
		Fun: &ast.SelectorExpr{
			X:   ast.NewIdent(helperPkg),
			Sel: ast.NewIdent(fn),
		},
		Args: append([]ast.Expr{ast.NewIdent("t")}, args...),
	}}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}
