package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mdtest/internal/compile"
)

var checkCmd = &cobra.Command{
	Use:   "check [document...]",
	Short: "Verify documents compile without writing output",
	Long: `Runs the full compilation pipeline and discards the result.
Intended for CI: exits non-zero when any sample fails to parse.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := false
	for _, doc := range args {
		src, err := os.ReadFile(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", doc, err)
			failed = true
			continue
		}
		if _, err := compile.Compile(src, effectiveOptions(doc)); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", doc, err)
			failed = true
			continue
		}
		logger.Debug("document ok", zap.String("document", doc))
		fmt.Printf("ok   %s\n", doc)
	}
	if failed {
		return fmt.Errorf("one or more documents failed to compile")
	}
	return nil
}
