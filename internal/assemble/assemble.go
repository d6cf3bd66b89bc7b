// Package assemble builds the generated test program and serializes it.
//
// The program layout is fixed: a generated-code header, the package
// clause, a preamble importing the test harness and the doctest runtime,
// every import hoisted out of the samples (first-discovery order), then a
// single test function registering one suite whose body registers one
// case per sample, in document order.
package assemble

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/printer"
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// HelperImport is the runtime helper package imported by every generated
// program; generated case bodies call into it as "doctest".
const HelperImport = "mdtest/doctest"

// DefaultCaseTitle names test cases whose sample had no preceding
// paragraph to take a title from.
const DefaultCaseTitle = "works"

// Case is one sample's contribution to the suite: its title (possibly
// empty) and its rewritten statement sequence.
type Case struct {
	Title string
	Body  []ast.Stmt
}

// Program is the assembled test program awaiting serialization.
type Program struct {
	SuiteName string
	Package   string
	Imports   []*ast.ImportSpec
	Cases     []Case
}

// Generate serializes the program to Go source. fset must be the FileSet
// the sample statements were parsed into. resolve is the import-specifier
// hook consulted for every hoisted import at emission time; nil means
// pass-through. Output is normalized with go/format, so identical inputs
// yield byte-identical output.
func (p *Program) Generate(fset *token.FileSet, resolve func(spec string) string) ([]byte, error) {
	if resolve == nil {
		resolve = func(spec string) string { return spec }
	}

	var b bytes.Buffer
	b.WriteString("// Code generated by mdtest. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", p.Package)

	b.WriteString("import (\n")
	b.WriteString("\t\"testing\"\n\n")
	fmt.Fprintf(&b, "\t%s\n", strconv.Quote(HelperImport))
	if lines := p.importLines(resolve); len(lines) > 0 {
		b.WriteString("\n")
		for _, l := range lines {
			fmt.Fprintf(&b, "\t%s\n", l)
		}
	}
	b.WriteString(")\n\n")

	fmt.Fprintf(&b, "func %s(t *testing.T) {\n", TestFuncName(p.SuiteName))
	fmt.Fprintf(&b, "\tdoctest.Suite(t, %s, func(t *testing.T) {\n", strconv.Quote(p.SuiteName))
	for _, c := range p.Cases {
		title := c.Title
		if title == "" {
			title = DefaultCaseTitle
		}
		fmt.Fprintf(&b, "\t\tdoctest.Case(t, %s, func(t *testing.T) {\n", strconv.Quote(title))
		body, err := printStmts(fset, c.Body)
		if err != nil {
			return nil, fmt.Errorf("emitting case %q: %w", title, err)
		}
		b.WriteString(body)
		b.WriteString("\t\t})\n")
	}
	b.WriteString("\t})\n}\n")

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated program: %w", err)
	}
	return out, nil
}

// importLines renders the hoisted imports through the resolver hook,
// merging duplicates on first occurrence. The source system left
// duplicate specifiers to its toolchain; the Go compiler rejects them in
// a single file, so merging happens here instead.
func (p *Program) importLines(resolve func(spec string) string) []string {
	seen := make(map[string]bool)
	var lines []string
	for _, imp := range p.Imports {
		spec, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			spec = strings.Trim(imp.Path.Value, "`\"")
		}
		spec = resolve(spec)
		line := strconv.Quote(spec)
		if imp.Name != nil {
			line = imp.Name.Name + " " + line
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return lines
}

// printStmts serializes a case body, indented to sit inside the case
// registration literal. go/printer emits no comments for bare statement
// lists, which is what we want: consumed annotations must not reappear.
func printStmts(fset *token.FileSet, stmts []ast.Stmt) (string, error) {
	if len(stmts) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, stmts); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("\t\t\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// TestFuncName derives the generated test function's identifier from the
// suite name: Test plus the name's alphanumeric runs, each capitalized.
// A name with no usable characters falls back to TestDocs.
func TestFuncName(suite string) string {
	var b strings.Builder
	b.WriteString("Test")
	up := true
	for _, r := range suite {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if up {
				r = unicode.ToUpper(r)
				up = false
			}
			b.WriteRune(r)
			continue
		}
		up = true
	}
	if b.Len() == len("Test") {
		return "TestDocs"
	}
	return b.String()
}
