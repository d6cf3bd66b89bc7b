// Package compile runs the whole documentation-test pipeline: scan the
// document, parse each sample, rewrite annotations, and assemble one
// generated test program. Compilation is one-shot and synchronous; all
// state (the FileSet, the rewriter's side tables, the manifest cache) is
// scoped to a single call, so independent documents can compile
// concurrently.
package compile

import (
	"fmt"
	"go/token"
	"path/filepath"

	"mdtest/internal/assemble"
	"mdtest/internal/remap"
	"mdtest/internal/rewrite"
	"mdtest/internal/sample"
	"mdtest/internal/scan"
)

// DefaultSuiteName is used when neither an explicit name nor a filename
// is available.
const DefaultSuiteName = "docs"

// DefaultPackage names the generated package when options leave it blank.
const DefaultPackage = "docs"

// Options control one compilation.
type Options struct {
	// Name overrides the suite title. Empty falls back to the base of
	// Filename, then to DefaultSuiteName.
	Name string
	// Filename is the document's source path. It feeds the suite-title
	// fallback and anchors manifest lookups for import remapping.
	Filename string
	// Package is the generated file's package clause, DefaultPackage if
	// empty.
	Package string
	// Languages overrides the recognized fence info strings.
	Languages []string
}

// Compile turns one Markdown document into Go test source. A sample that
// fails to parse aborts the whole compilation: broken documentation must
// be fixed before any of it has test value, so no partial suite is ever
// emitted.
func Compile(source []byte, opts Options) ([]byte, error) {
	scanner := &scan.Scanner{Languages: opts.Languages}
	samples := scanner.Scan(source)

	fset := token.NewFileSet()
	rw := rewrite.New(fset)

	cases := make([]assemble.Case, 0, len(samples))
	for i, smp := range samples {
		parsed, err := sample.Parse(fset, fmt.Sprintf("sample%d", i+1), smp.Source)
		if err != nil {
			return nil, fmt.Errorf("sample %d %s: %w", i+1, describeSample(smp), err)
		}
		body, err := rw.Rewrite(parsed)
		if err != nil {
			return nil, fmt.Errorf("sample %d %s: %w", i+1, describeSample(smp), err)
		}
		cases = append(cases, assemble.Case{Title: smp.Title, Body: body})
	}

	prog := &assemble.Program{
		SuiteName: suiteName(opts),
		Package:   packageName(opts),
		Imports:   rw.Hoisted(),
		Cases:     cases,
	}

	resolver := remap.New()
	dir := ""
	if opts.Filename != "" {
		dir = filepath.Dir(opts.Filename)
	}
	return prog.Generate(fset, func(spec string) string {
		return resolver.Resolve(dir, spec)
	})
}

func describeSample(s scan.Sample) string {
	if s.Title == "" {
		return "(untitled)"
	}
	return fmt.Sprintf("(%q)", s.Title)
}

func suiteName(opts Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	if opts.Filename != "" {
		return filepath.Base(opts.Filename)
	}
	return DefaultSuiteName
}

func packageName(opts Options) string {
	if opts.Package != "" {
		return opts.Package
	}
	return DefaultPackage
}
