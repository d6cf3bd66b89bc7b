// Package sample parses one extracted code sample into a Go syntax tree.
//
// A sample is a bare statement sequence, not a complete file, so it is
// embedded as the body of a synthetic function inside a synthetic
// single-file package before parsing. That keeps every sample's
// declarations isolated from every other sample. Go requires import
// declarations to live at file scope, so a lexical pre-pass lifts any
// import declaration out of the sample body and re-emits it in the
// synthetic file's import section, where the rewriter later picks it up
// for document-wide hoisting.
package sample

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// FuncName is the name of the synthetic wrapper function. It exists for
// internal reference only and never appears in generated output.
const FuncName = "sampleBody"

// Parsed is one sample's syntax tree.
type Parsed struct {
	File *ast.File
	Func *ast.FuncDecl
}

// Body returns the sample's statement sequence.
func (p *Parsed) Body() []ast.Stmt {
	return p.Func.Body.List
}

// Parse wraps source in the synthetic package and parses it into fset.
// name identifies the sample in error messages and positions. A parse
// failure means the documentation itself is broken; callers treat it as
// fatal for the whole compilation.
func Parse(fset *token.FileSet, name string, source string) (*Parsed, error) {
	imports, body := liftImports(source)

	var b strings.Builder
	b.WriteString("package sample\n\n")
	for _, imp := range imports {
		b.WriteString(imp)
		b.WriteString("\n")
	}
	b.WriteString("\nfunc ")
	b.WriteString(FuncName)
	b.WriteString("() {\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	file, err := parser.ParseFile(fset, name, b.String(), parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing sample: %w", err)
	}
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == FuncName {
			return &Parsed{File: file, Func: fn}, nil
		}
	}
	return nil, fmt.Errorf("parsing sample: synthetic wrapper %s missing", FuncName)
}

type span struct {
	start, end int
}

// liftImports excises every top-level import declaration from the sample
// text, wherever it appears, and returns the declarations plus the
// remaining body. Imports nested inside braces or parens (impossible in
// valid Go, but cheap to guard) are left alone; string literals and
// comments never confuse the token scanner.
func liftImports(source string) (imports []string, body string) {
	src := []byte(source)
	fset := token.NewFileSet()
	file := fset.AddFile("sample", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, src, nil, 0)

	depth := 0
	var spans []span
	for {
		pos, tok, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		switch tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.IMPORT:
			if depth != 0 {
				continue
			}
			spans = append(spans, importSpan(file, &s, pos))
		}
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		imports = append(imports, strings.TrimSpace(source[sp.start:sp.end]))
		b.WriteString(source[last:sp.start])
		last = sp.end
	}
	b.WriteString(source[last:])
	return imports, b.String()
}

// importSpan consumes the remainder of one import declaration, starting
// just after the import keyword at pos, and returns its byte extent.
func importSpan(file *token.File, s *scanner.Scanner, pos token.Pos) span {
	start := file.Offset(pos)
	end := start + len("import")
	group := 0
	for {
		p, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		switch tok {
		case token.LPAREN:
			group++
		case token.RPAREN:
			group--
			if group == 0 {
				return span{start, file.Offset(p) + 1}
			}
		case token.STRING:
			end = file.Offset(p) + len(lit)
			if group == 0 {
				return span{start, end}
			}
		case token.IDENT, token.PERIOD, token.SEMICOLON, token.COMMENT:
			// alias forms and grouped-spec separators
		default:
			if group == 0 {
				return span{start, end}
			}
		}
	}
	return span{start, end}
}
