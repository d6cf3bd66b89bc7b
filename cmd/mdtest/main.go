// Command mdtest compiles annotated Go code samples in Markdown
// documents into runnable go test files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mdtest/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string
	suiteName  string
	pkgName    string
	outputDir  string

	// Loaded project config, merged with flags in effectiveOptions.
	cfg *config.Config

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdtest",
	Short: "mdtest - documentation tests for Go, compiled from Markdown",
	Long: `mdtest turns Markdown documentation into regression tests.

Fenced code blocks tagged "go test" (or "gotest") are extracted, and
trailing-comment annotations on their statements become assertions:

    add(1, 2)  // => 3
    div(1, 0)  // MathError: division by zero

Each document compiles to one _test.go file whose cases run under the
ordinary go test toolchain.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .mdtest.yml")
	rootCmd.PersistentFlags().StringVar(&suiteName, "name", "", "Suite title override")
	rootCmd.PersistentFlags().StringVar(&pkgName, "package", "", "Package clause of generated files")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Directory for generated files")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
