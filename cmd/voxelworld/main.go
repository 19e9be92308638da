// Command voxelworld runs the voxel world headless: a simulated camera flies
// over generated terrain while the scheduler streams chunks around it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"voxelworld/internal/config"
	"voxelworld/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("voxelworld", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("voxelworld stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
