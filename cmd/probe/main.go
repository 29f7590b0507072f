package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilkin0/bomprobe/internal/config"
	"github.com/ilkin0/bomprobe/internal/logger"
	"github.com/ilkin0/bomprobe/internal/probe"
	"github.com/ilkin0/bomprobe/internal/storage"
	"github.com/joho/godotenv"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(logger.Init())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, _, err := config.Parse(args)
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprintln(stdout, err)
			return exitOK
		}
		fmt.Fprintf(stderr, "%v\nrun with --help for usage\n", err)
		return exitUsage
	}

	src, err := storage.Resolve(opts.File, storage.LoadMinIOConfig())
	if err != nil {
		slog.Error("invalid upload source",
			slog.String("source", opts.File),
			slog.String("error", err.Error()),
		)
		return exitFail
	}

	slog.Debug("probe starting",
		slog.String("url", opts.URL),
		slog.String("source", opts.File),
		slog.Duration("timeout", opts.Timeout),
	)

	prober := probe.New(probe.NewHTTPClient(opts.Timeout), opts.Field)
	if err := prober.Run(ctx, opts.URL, src, stdout); err != nil {
		slog.Error("probe failed",
			slog.String("url", opts.URL),
			slog.String("source", opts.File),
			slog.String("error", err.Error()),
		)
		return exitFail
	}

	return exitOK
}
