// Package cli is the snap command: one short-lived session per invocation
// that syncs the store, runs a command through the syncer and renders the
// result.
//
//	snap signup <email> <password>
//	snap login <email> <password>
//	snap logout
//	snap today
//	snap add -meal lunch -name "Chicken wrap" -cal 520 [-protein 32 -carbs 48 -fats 18]
//	snap search <query> [-meal lunch -pick 1]
//	snap estimate <description> [-meal lunch -pick 1]
//	snap analyze <photo.jpg> [-meal lunch -log]
//	snap delete <log id or prefix>
//	snap goals [-daily 1800 -auto | -breakfast 450 ...]
//	snap history [-month 2024-06]
//	snap day [YYYY-MM-DD]
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/config"
	"github.com/sakif/caloriesnap/internal/history"
	"github.com/sakif/caloriesnap/internal/remote"
	"github.com/sakif/caloriesnap/internal/store"
	"github.com/sakif/caloriesnap/internal/syncer"
)

// ErrUsage marks a bad command line; main prints usage and exits 2.
var ErrUsage = errors.New("usage")

// Options configure an App.
type Options struct {
	ConfigPath string
	Out        io.Writer
	Logger     *slog.Logger
	Now        func() time.Time // defaults to time.Now
}

// App wires the client packages for one invocation.
type App struct {
	cfgPath string
	cfg     config.Client
	client  *remote.Client
	store   *store.Store
	syncer  *syncer.Syncer
	history *history.Service
	out     io.Writer
	styles  styles
	logger  *slog.Logger
	now     func() time.Time
}

func New(opts Options) (*App, error) {
	cfg, err := config.LoadClient(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	client, err := remote.New(cfg.ServerURL, cfg.Token, logger)
	if err != nil {
		return nil, err
	}

	st := store.New()
	return &App{
		cfgPath: opts.ConfigPath,
		cfg:     cfg,
		client:  client,
		store:   st,
		syncer:  syncer.New(client, st, logger),
		history: history.NewService(client),
		out:     opts.Out,
		styles:  newStyles(opts.Out),
		logger:  logger,
		now:     now,
	}, nil
}

type command struct {
	run     func(a *App, ctx context.Context, args []string) error
	session bool // needs a synced session first
	help    string
}

var commands = map[string]command{
	"signup":   {run: (*App).signup, help: "signup <email> <password>"},
	"login":    {run: (*App).login, help: "login <email> <password>"},
	"logout":   {run: (*App).logout, help: "logout"},
	"today":    {run: (*App).today, session: true, help: "today"},
	"add":      {run: (*App).add, session: true, help: "add -meal <slot> -name <food> -cal <kcal> [-protein g -carbs g -fats g]"},
	"search":   {run: (*App).search, session: true, help: "search <query> [-meal <slot> -pick <n>]"},
	"estimate": {run: (*App).estimate, session: true, help: "estimate <description> [-meal <slot> -pick <n>]"},
	"analyze":  {run: (*App).analyze, session: true, help: "analyze <image> [-meal <slot> -log]"},
	"delete":   {run: (*App).remove, session: true, help: "delete <log id or prefix>"},
	"goals":    {run: (*App).goals, session: true, help: "goals [-daily n -protein n -carbs n -fats n -breakfast n -lunch n -dinner n -snack n -auto]"},
	"history":  {run: (*App).month, session: true, help: "history [-month YYYY-MM]"},
	"day":      {run: (*App).day, session: true, help: "day [YYYY-MM-DD]"},
}

// Usage lists the commands.
func Usage() string {
	order := []string{"signup", "login", "logout", "today", "add", "search", "estimate", "analyze", "delete", "goals", "history", "day"}
	var b strings.Builder
	b.WriteString("usage: snap [-config path] [-v] <command>\n\ncommands:\n")
	for _, name := range order {
		fmt.Fprintf(&b, "  %s\n", commands[name].help)
	}
	return b.String()
}

// Run executes one command line.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	if cmd.session {
		if a.client.Token() == "" {
			return apperror.Unauthorized("not logged in; run: snap login <email> <password>")
		}
		if err := a.syncer.Sync(ctx); err != nil {
			// A half-failed sync still leaves usable state; only a missing
			// session stops the command.
			if errors.Is(err, apperror.ErrUnauthorized) {
				return apperror.Unauthorized("session expired; run: snap login <email> <password>")
			}
			a.logger.Warn("sync incomplete", slog.String("error", err.Error()))
			if _, ok := a.store.Profile(); !ok {
				return err
			}
		}
	}

	if !cmd.session {
		return cmd.run(a, ctx, args[1:])
	}

	// Whatever a command changes in the store is reflected in a one-line
	// summary of today once it finishes.
	var changed *store.Snapshot
	cancel := a.store.Subscribe(func(snap store.Snapshot) { changed = &snap })
	defer cancel()

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		return err
	}
	if changed != nil {
		fmt.Fprint(a.out, a.styles.summary(a.dashboard(*changed)))
	}
	return nil
}

// saveSession persists the client's current token.
func (a *App) saveSession(email string) error {
	a.cfg.Token = a.client.Token()
	a.cfg.Email = email
	return config.SaveClient(a.cfgPath, a.cfg)
}

// parseFlags parses args, allowing flags after positional arguments
// ("search banana -pick 1").
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
