package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mdtest/internal/compile"
)

var compileCmd = &cobra.Command{
	Use:   "compile [document...]",
	Short: "Compile Markdown documents to go test files",
	Long: `Compiles each document's annotated samples into one _test.go file.
Documents compile independently and concurrently; any malformed sample
fails its whole document with no partial output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	g, _ := errgroup.WithContext(cmd.Context())
	for _, doc := range args {
		g.Go(func() error {
			out, err := compileDocument(doc)
			if err != nil {
				return err
			}
			logger.Info("compiled document",
				zap.String("document", doc),
				zap.String("output", out))
			return nil
		})
	}
	return g.Wait()
}

// compileDocument compiles one document and writes the generated file,
// returning its path.
func compileDocument(doc string) (string, error) {
	src, err := os.ReadFile(doc)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", doc, err)
	}
	generated, err := compile.Compile(src, effectiveOptions(doc))
	if err != nil {
		return "", fmt.Errorf("compiling %s: %w", doc, err)
	}
	out := outputPath(doc)
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(out, generated, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

// effectiveOptions merges config-file settings with flag overrides for
// one document. Flags win.
func effectiveOptions(doc string) compile.Options {
	opts := compile.Options{
		Name:      cfg.Name,
		Filename:  doc,
		Package:   cfg.Package,
		Languages: cfg.Languages,
	}
	if suiteName != "" {
		opts.Name = suiteName
	}
	if pkgName != "" {
		opts.Package = pkgName
	}
	return opts
}

// outputPath places README.md's tests in readme_doc_test.go, either next
// to the document or under the configured output directory.
func outputPath(doc string) string {
	base := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
	name := sanitizeFileName(base) + "_doc_test.go"
	dir := cfg.Output
	if outputDir != "" {
		dir = outputDir
	}
	if dir == "" {
		dir = filepath.Dir(doc)
	}
	return filepath.Join(dir, name)
}

func sanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "docs"
	}
	return b.String()
}
