package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"load_transient/internal/config"
	"load_transient/internal/handlers"
	"load_transient/internal/instrument/sim"
	"load_transient/internal/logger"
	"load_transient/internal/reporter"
	"load_transient/internal/repository"
	"load_transient/internal/repository/db"
	"load_transient/internal/server"
	"load_transient/internal/service"

	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	cmdServe = "serve"
	cmdRun   = "run"

	shutdownTimeout = 15 * time.Second
)

type arguments struct {
	command    string
	configPath string
	logLevel   string
	setpoints  []float64
	noColor    bool
}

func parseArgs(args []string) (*arguments, error) {
	app := kingpin.New("bench", "Load transient performance test bench.")
	configPath := app.Flag("config", "Config file to read (defaults to configs/config.yml).").String()
	logLevel := app.Flag("logLevel", "Overrides log.level from the config.").Enum(logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel)

	app.Command(cmdServe, "Serve the control API; runs are started over HTTP.").Default()

	run := app.Command(cmdRun, "Run one test with the configured parameters, print the results and exit.")
	setpoints := run.Flag("setpoint", "Temperature setpoint in °C, may be repeated (overrides test.temperature_setpoints).").Float64List()
	noColor := run.Flag("noColor", "Disable colored console output.").Default("false").Bool()

	command, err := app.Parse(args)
	if err != nil {
		return nil, err
	}

	return &arguments{
		command:    command,
		configPath: *configPath,
		logLevel:   *logLevel,
		setpoints:  *setpoints,
		noColor:    *noColor,
	}, nil
}

func (a *arguments) execute() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if a.noColor {
		reporter.DisableColor()
	}

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := reporter.NewConsole(nil)
	rep := reporter.Multi{reporter.NewLog(log)}
	if a.command == cmdRun {
		rep = append(rep, console)
	}

	services := service.NewService(repository.NewRepository(conn), service.Deps{
		Instruments: sim.NewBench(cfg.Simulator),
		Reporter:    rep,
		Log:         log,
		Defaults:    cfg.Test,
		SigningKey:  cfg.Auth.SigningKey,
		TokenTTL:    cfg.Auth.TokenTTL,
	})

	switch a.command {
	case cmdRun:
		return a.runOnce(ctx, services, console, log)
	default:
		return serve(ctx, cfg, services, log)
	}
}

// serve runs the HTTP API until ctx is canceled, then cancels any active
// run so the instruments are left idle.
func serve(ctx context.Context, cfg *config.Config, services *service.Service, log *logger.Logger) error {
	if cfg.Auth.SigningKey == config.DefaultSigningKey {
		log.Warnw("default signing key in use; set auth.signing_key or BENCH_AUTH_SIGNING_KEY")
	}

	srv := &server.Server{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(cfg.Port, handlers.NewHandler(services, log).InitRoutes())
	}()
	log.Infow("server started", "port", cfg.Port)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := services.TestRun.Cancel(sctx); err != nil && !errors.Is(err, service.ErrNoActiveRun) {
		log.Errorw("failed to cancel active run", "err", err)
	}
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// runOnce executes a single test and reports the outcome on the console.
// An interrupt cancels the run and waits for the shutdown sequence.
func (a *arguments) runOnce(ctx context.Context, services *service.Service, console *reporter.Console, log *logger.Logger) error {
	cfg := services.TestRun.Defaults()
	if len(a.setpoints) > 0 {
		cfg.TemperatureSetpoints = a.setpoints
	}

	st, err := services.TestRun.Start(ctx, 0, cfg)
	if err != nil {
		console.Completed(err)
		return err
	}
	log.Infow("test run started", "session", st.SessionID, "setpoints", cfg.TemperatureSetpoints)

	err = services.TestRun.Wait(ctx)
	if ctx.Err() != nil {
		log.Infow("interrupt received, canceling test run")
		if cerr := services.TestRun.Cancel(context.Background()); cerr != nil && !errors.Is(cerr, service.ErrNoActiveRun) {
			log.Errorw("failed to cancel test run", "err", cerr)
		}
		err = services.TestRun.Wait(context.Background())
	}
	console.Completed(err)
	return err
}

func main() {
	kingpin.Version("0.1.0")
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("failed to parse arguments, %s, try --help", err)
	}
	if err := args.execute(); err != nil {
		kingpin.Fatalf("%s", err)
	}
}
