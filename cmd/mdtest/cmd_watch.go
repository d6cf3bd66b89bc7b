package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mdtest/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [document...]",
	Short: "Recompile documents whenever they change",
	Long: `Compiles every document once, then blocks and recompiles any
document that changes on disk. Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	for _, doc := range args {
		if out, err := compileDocument(doc); err != nil {
			logger.Warn("initial compile failed", zap.String("document", doc), zap.Error(err))
		} else {
			logger.Info("compiled document", zap.String("document", doc), zap.String("output", out))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := watch.Watch(ctx, args, func(path string) {
		if out, err := compileDocument(path); err != nil {
			logger.Warn("recompile failed", zap.String("document", path), zap.Error(err))
		} else {
			logger.Info("recompiled document", zap.String("document", path), zap.String("output", out))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
