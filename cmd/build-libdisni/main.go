// Command build-libdisni builds libdisni with autotools and stages the
// shared library into the Java resource tree.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/disni/libdisni-build/cmd/build-libdisni/internal"
	"github.com/disni/libdisni-build/internal/logging"
)

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	logger := logging.New(os.Stderr, &levelVar)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := internal.Execute(ctx, logger, &levelVar, os.Args[1:])
	code := internal.ExitCode(err)
	if err != nil {
		logger.Error("build failed", "error", err, "exit_code", code)
	}
	stop()
	os.Exit(code)
}
