package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sugarwarrior/internal/action"
	"github.com/roach88/sugarwarrior/internal/clock"
	"github.com/roach88/sugarwarrior/internal/config"
	"github.com/roach88/sugarwarrior/internal/engine"
	"github.com/roach88/sugarwarrior/internal/ident"
	"github.com/roach88/sugarwarrior/internal/metrics"
	"github.com/roach88/sugarwarrior/internal/remote"
	"github.com/roach88/sugarwarrior/internal/session"
	"github.com/roach88/sugarwarrior/internal/store"
)

// app is everything a command needs, wired from config and flags.
type app struct {
	cfg     *config.Config
	db      *store.Store
	session *session.Store
	handler *action.Handler
	clock   clock.Clock
	metrics *metrics.Metrics

	// timerDone receives the outcome of an expired walk countdown.
	timerDone chan action.Result

	out    *OutputFormatter
	logger *slog.Logger
}

// syncMode controls whether openApp pulls backend state first.
type syncMode int

const (
	syncSkip syncMode = iota
	syncOnOpen
)

// openApp configures logging, loads config, opens the state database
// and creates the session store. With syncOnOpen the store is refreshed
// from the backend; failures are logged and the command continues on
// local state.
func openApp(cmd *cobra.Command, opts *RootOptions, mode syncMode) (*app, error) {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.Metrics != "" {
		cfg.MetricsFile = opts.Metrics
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem(loc)
	}
	ids := opts.IDs
	if ids == nil {
		ids = ident.UUIDv7{}
	}
	backend := opts.Backend
	if backend == nil {
		client, err := remote.NewClient(cfg.APIURL,
			remote.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			remote.WithClientLogger(logger))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid backend URL", err)
		}
		backend = client
	}

	if err := config.EnsureDBDir(cfg.DatabasePath); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create state directory", err)
	}
	logger.Debug("opening database", "path", cfg.DatabasePath)
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	seed := cfg.MessageSeed
	if seed == 0 {
		seed = uint64(clk.Now().UnixNano())
	}

	m := metrics.New()
	ctx := commandContext(cmd)
	sess, err := session.Open(ctx, session.Options{
		Backend:         backend,
		Persist:         db,
		Clock:           clk,
		IDs:             ids,
		Engine:          engine.New(engine.WithMessages(engine.NewRandomMessages(seed))),
		Logger:          logger,
		Metrics:         m,
		NotificationTTL: cfg.NotificationTTL,
	})
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open session", err)
	}

	a := &app{
		cfg:     cfg,
		db:      db,
		session: sess,
		clock:   clk,
		metrics: m,
		logger:  logger,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}
	a.timerDone = make(chan action.Result, 1)
	a.handler = action.NewHandler(clk, ids, sess,
		action.WithTimerDuration(cfg.SuggestionTimer),
		action.WithLogger(logger),
		action.WithTimerCallback(func(r action.Result) {
			select {
			case a.timerDone <- r:
			default:
			}
		}))

	if mode == syncOnOpen {
		if err := sess.InitializeData(ctx); err != nil {
			if session.IsIdentityInvalidated(err) {
				logger.Warn("stored account no longer exists on the backend; signed out", "error", err)
			} else {
				logger.Warn("could not sync with backend, using local state", "error", err)
			}
		}
	}
	return a, nil
}

// Close releases the session and database, then flushes counters to the
// configured metrics file.
func (a *app) Close() {
	a.handler.CancelTimer()
	if err := a.session.Close(); err != nil {
		a.logger.Error("error closing session", "error", err)
	}
	if path := a.cfg.MetricsFile; path != "" {
		if err := a.metrics.WriteFile(path); err != nil {
			a.logger.Warn("could not write metrics", "error", err)
		} else {
			a.logger.Debug("wrote metrics", "path", path)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM or when the
// parent is cancelled.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan) // Prevent signal handler leak
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()
	return ctx, cancel
}
