// Command snap is the terminal client for a CalorieSnap server.
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

	"github.com/sakif/caloriesnap/internal/cli"
	"github.com/sakif/caloriesnap/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "client config path (optional, defaults to "+config.DefaultClientPath()+")")
	verbose := flag.Bool("v", false, "log requests and sync details to stderr")
	flag.Usage = func() { fmt.Fprint(os.Stderr, cli.Usage()) }
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := cli.New(cli.Options{ConfigPath: *configPath, Out: os.Stdout, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "snap: %v\n", err)
		return 1
	}

	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "snap: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprint(os.Stderr, "\n"+cli.Usage())
			return 2
		}
		return 1
	}
	return 0
}
