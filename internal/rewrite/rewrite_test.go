package rewrite

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdtest/internal/sample"
)

func parse(t *testing.T, fset *token.FileSet, src string) *sample.Parsed {
	t.Helper()
	p, err := sample.Parse(fset, t.Name(), src)
	require.NoError(t, err)
	return p
}

// helperArgs unwraps a rewritten statement into its doctest call name and
// arguments (after the leading t).
func helperArgs(t *testing.T, stmt ast.Stmt) (string, []ast.Expr) {
	t.Helper()
	call := stmt.(*ast.ExprStmt).X.(*ast.CallExpr)
	sel := call.Fun.(*ast.SelectorExpr)
	require.Equal(t, "doctest", sel.X.(*ast.Ident).Name)
	require.NotEmpty(t, call.Args)
	require.Equal(t, "t", call.Args[0].(*ast.Ident).Name)
	return sel.Sel.Name, call.Args[1:]
}

func litValue(t *testing.T, e ast.Expr) string {
	t.Helper()
	lit := e.(*ast.BasicLit)
	require.Equal(t, token.STRING, lit.Kind)
	return lit.Value
}

func TestRewrite_ReprAnnotation(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "add(1, 2) // => 3\n")
	orig := p.Body()[0].(*ast.ExprStmt).X

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)
	require.Len(t, out, 1)

	name, args := helperArgs(t, out[0])
	assert.Equal(t, "AssertRepr", name)
	require.Len(t, args, 2)
	assert.Same(t, orig, args[0], "original expression passed through, evaluated once in place")
	assert.Equal(t, `"3"`, litValue(t, args[1]))
}

func TestRewrite_ReprPreservesAuthorQuotes(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "greet() // => \"hello\"\n")

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)

	_, args := helperArgs(t, out[0])
	// Only the => marker is stripped; the author's quotes stay.
	assert.Equal(t, `"\"hello\""`, litValue(t, args[1]))
}

func TestRewrite_ReprMultiLine(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "show() // => line1\n// line2\n")

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)

	name, args := helperArgs(t, out[0])
	assert.Equal(t, "AssertRepr", name)
	assert.Equal(t, `"line1\nline2"`, litValue(t, args[1]))
}

func TestRewrite_ErrorAnnotation(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "risky() // TypeError: bad input\n")
	orig := p.Body()[0].(*ast.ExprStmt).X

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)
	require.Len(t, out, 1)

	name, args := helperArgs(t, out[0])
	assert.Equal(t, "AssertError", name)
	require.Len(t, args, 3)

	thunk := args[0].(*ast.FuncLit)
	require.Empty(t, thunk.Type.Params.List, "thunk takes no arguments")
	require.Len(t, thunk.Body.List, 1)
	assert.Same(t, orig, thunk.Body.List[0].(*ast.ExprStmt).X, "expression deferred into the thunk, not evaluated eagerly")

	assert.Equal(t, `"TypeError"`, litValue(t, args[1]))
	assert.Equal(t, `"bad input"`, litValue(t, args[2]))
}

func TestRewrite_ErrorMultiLineMessage(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "risky() // MathError: division\n// by zero\n")

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)

	name, args := helperArgs(t, out[0])
	assert.Equal(t, "AssertError", name)
	assert.Equal(t, `"MathError"`, litValue(t, args[1]))
	assert.Equal(t, `"division\nby zero"`, litValue(t, args[2]))
}

func TestRewrite_NonAnnotatedUntouched(t *testing.T) {
	t.Run("plain trailing comment", func(t *testing.T) {
		fset := token.NewFileSet()
		p := parse(t, fset, "x() // just a note\ny()\n")
		body := p.Body()

		out, err := New(fset).Rewrite(p)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Same(t, body[0], out[0])
		assert.Same(t, body[1], out[1])
	})

	t.Run("error annotation missing colon shape", func(t *testing.T) {
		fset := token.NewFileSet()
		p := parse(t, fset, "x() // TypeError without colon\n")
		body := p.Body()

		out, err := New(fset).Rewrite(p)
		require.NoError(t, err)
		assert.Same(t, body[0], out[0])
	})

	t.Run("annotation on non-expression statement", func(t *testing.T) {
		fset := token.NewFileSet()
		p := parse(t, fset, "x := compute() // => 3\nuse(x)\n")
		body := p.Body()

		out, err := New(fset).Rewrite(p)
		require.NoError(t, err)
		assert.Same(t, body[0], out[0], "assignments never qualify")
	})

	t.Run("comment inside child node ignored", func(t *testing.T) {
		fset := token.NewFileSet()
		p := parse(t, fset, "compute(\n\t1, // => 99\n)\n")
		body := p.Body()

		out, err := New(fset).Rewrite(p)
		require.NoError(t, err)
		assert.Same(t, body[0], out[0], "only the statement's own trailing comments qualify")
	})
}

func TestRewrite_StatementOrderPreserved(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "before()\nadd(1, 2) // => 3\nafter()\n")
	body := p.Body()

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Same(t, body[0], out[0])
	name, _ := helperArgs(t, out[1])
	assert.Equal(t, "AssertRepr", name)
	assert.Same(t, body[2], out[2])
}

func TestRewrite_Idempotent(t *testing.T) {
	fset := token.NewFileSet()
	p := parse(t, fset, "add(1, 2) // => 3\nplain()\n")

	rw := New(fset)
	first, err := rw.Rewrite(p)
	require.NoError(t, err)
	second, err := rw.Rewrite(p)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Same(t, first[i], second[i], "re-entrant visitation must not double-wrap")
	}
	assert.Empty(t, rw.Hoisted())
}

func TestRewrite_FirstCommentDecidesAnnotation(t *testing.T) {
	// Undocumented but long-standing behavior: when the first trailing
	// comment is an annotation, later unrelated comment lines join the
	// expected text as continuations.
	fset := token.NewFileSet()
	p := parse(t, fset, "v() // => a\n// unrelated prose\n")

	out, err := New(fset).Rewrite(p)
	require.NoError(t, err)

	_, args := helperArgs(t, out[0])
	assert.Equal(t, `"a\nunrelated prose"`, litValue(t, args[1]))
}

func TestRewrite_HoistsImports(t *testing.T) {
	fset := token.NewFileSet()
	rw := New(fset)

	p1 := parse(t, fset, "import \"strings\"\n\nstrings.ToUpper(\"a\") // => \"A\"\n")
	p2 := parse(t, fset, "import \"sort\"\n\nsort.Strings(nil)\n")

	_, err := rw.Rewrite(p1)
	require.NoError(t, err)
	_, err = rw.Rewrite(p2)
	require.NoError(t, err)

	hoisted := rw.Hoisted()
	require.Len(t, hoisted, 2, "first-discovery order across samples")
	assert.Equal(t, `"strings"`, hoisted[0].Path.Value)
	assert.Equal(t, `"sort"`, hoisted[1].Path.Value)

	// Rewriting a sample again must not double-hoist.
	_, err = rw.Rewrite(p1)
	require.NoError(t, err)
	assert.Len(t, rw.Hoisted(), 2)
}
