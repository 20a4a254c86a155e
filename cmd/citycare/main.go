package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/config"
	"github.com/spec-kit/citycare/internal/gateway"
	"github.com/spec-kit/citycare/internal/observability"
	"github.com/spec-kit/citycare/internal/screen"
	"github.com/spec-kit/citycare/internal/service"
	"github.com/spec-kit/citycare/internal/session"
)

// app holds the wired client for one invocation.
type app struct {
	logger        *zap.Logger
	metrics       *observability.Metrics
	provider      *session.Provider
	auth          *service.AuthService
	complaints    *service.ComplaintService
	notifications *service.NotificationService
	settings      *service.SettingsService

	stdout io.Writer
	json   bool
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":           {"login -email E -password P [-remember] [-admin]", cmdLogin},
	"register":        {"register -name N -email E -password P [-confirm P]", cmdRegister},
	"logout":          {"logout", cmdLogout},
	"whoami":          {"whoami", cmdWhoami},
	"forgot-password": {"forgot-password -email E", cmdForgotPassword},
	"profile":         {"profile [-name N] [-email E]", cmdProfile},
	"report":          {"report -title T -category C (-location L | -lat X -lng Y) -description D", cmdReport},
	"reports":         {"reports [-status S]", cmdReports},
	"show":            {"show ID", cmdShow},
	"feedback":        {"feedback -issue ID -text T", cmdFeedback},
	"notifications":   {"notifications", cmdNotifications},
	"settings":        {"settings [-notifications on|off|toggle]", cmdSettings},
	"admin":           {"admin issues|set-status|feedback|notifications|notify ...", cmdAdmin},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("citycare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiFlag := fs.String("api", "", "Override API base URL (default $CITYCARE_API_BASE)")
	sessionFlag := fs.String("session", "", "Session backend: file|redis|memory (default $SESSION_BACKEND)")
	jsonFlag := fs.Bool("json", false, "Print machine-readable JSON")
	verbose := fs.Bool("v", false, "Print request counters after the command")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n", fs.Arg(0))
		usage(fs, stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if *apiFlag != "" {
		cfg.API.BaseURL = *apiFlag
	}
	if *sessionFlag != "" {
		cfg.Session.Backend = *sessionFlag
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeStore, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer closeStore()
	a.json = *jsonFlag

	err = cmd.run(a, ctx, fs.Args()[1:])
	if *verbose {
		printMetrics(stderr, a.metrics.Snapshot())
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, "Usage: citycare", cmd.usage)
			return 2
		}
		msg := screen.Alert(err)
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(stderr, "Error:", msg)
		logger.Debug("command failed", zap.String("command", fs.Arg(0)), zap.Error(err))
		return 1
	}
	return 0
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) (*app, func(), error) {
	store, closeStore, err := session.Open(ctx, cfg.Session, cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}

	metrics := observability.NewMetrics()
	gw, err := gateway.New(cfg.API.BaseURL,
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithTimeout(cfg.API.RequestTimeout()),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	provider := session.NewProvider(store)
	return &app{
		logger:        logger,
		metrics:       metrics,
		provider:      provider,
		auth:          service.NewAuthService(gw, provider, logger),
		complaints:    service.NewComplaintService(gw, provider),
		notifications: service.NewNotificationService(gw, provider),
		settings:      service.NewSettingsService(provider),
		stdout:        stdout,
	}, closeStore, nil
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Usage: citycare [flags] <command> [args]")
	fmt.Fprintln(w, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.PrintDefaults()
}

func printMetrics(w io.Writer, snap observability.Snapshot) {
	fmt.Fprintln(w, "requests:")
	for _, c := range snap.Requests {
		fmt.Fprintf(w, "  %s %d\n", c.Key, c.Count)
	}
	for _, c := range snap.Errors {
		fmt.Fprintf(w, "  error %s %d\n", c.Key, c.Count)
	}
	fmt.Fprintf(w, "total time: %s\n", snap.TotalDuration.Round(time.Millisecond))
}
