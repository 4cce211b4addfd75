package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/config"
)

func main() {
	// A .env file is optional; the environment may already be set.
	envErr := godotenv.Load()

	yes := flag.Bool("yes", false, "answer yes to every confirmation")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if envErr != nil {
		slog.Debug("no .env file loaded", "error", envErr)
	}

	if flag.NArg() == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	// SIGINT/SIGTERM cancel in-flight requests and stop watch loops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}

	a := newApp(cfg, store, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr, fd: int(os.Stdin.Fd())})
	a.yes = *yes

	err = a.run(ctx, flag.Args())
	if cerr := closeStore(); cerr != nil {
		slog.Warn("close session store", "error", cerr)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "✗ %s\n", userMessage(err))
		}
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
