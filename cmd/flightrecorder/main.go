package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flightrecorder/internal/api"
	"flightrecorder/pkg/config"
	"flightrecorder/pkg/core"
	"flightrecorder/pkg/db"
	"flightrecorder/pkg/db/maintenance"
	"flightrecorder/pkg/logging"
	"flightrecorder/pkg/probe"
	"flightrecorder/pkg/recorder"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/store"
	"flightrecorder/pkg/version"
)

const defaultConfigPath = "configs/flightrecorder.yaml"

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
)

func main() {
	flag.Parse()

	// .env is optional; it only feeds the FLIGHTRECORDER_* overrides.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
	}

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("FlightRecorder Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	prov := config.NewProvider(appCfg, st)

	if err := maintenance.Run(ctx, st, dbConn, prov.RecordingRetention(ctx)); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	simClient := initializeSimClient(ctx, prov)
	defer simClient.Close()

	results := probe.Run(ctx, startupProbes(dbConn, st, simClient))
	if err := probe.Evaluate(slog.Default(), results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	// Telemetry Handler (must be created before scheduler and recorder to receive updates)
	telH := api.NewTelemetryHandler()

	rec := recorder.New(recorder.Config{
		QueueSize:   appCfg.Recorder.QueueSize,
		MaxFrames:   appCfg.Recorder.MaxFrames,
		ReplaySpeed: appCfg.Recorder.ReplaySpeed,
	}, st, telH, slog.With("component", "recorder"))
	go rec.Run(ctx)

	sched, trig := setupScheduler(ctx, prov, simClient, st, rec, telH)
	telH.SetTriggerSource(trig)
	go sched.Start(ctx)

	return runServer(ctx, prov, st, rec, telH)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func startupProbes(dbConn *db.DB, st store.RecordingStore, simClient sim.Client) []probe.Probe {
	return []probe.Probe{
		{
			Name:     "Database",
			Check:    dbConn.PingContext,
			Critical: true,
		},
		{
			Name: "Recording store",
			Check: func(ctx context.Context) error {
				_, err := st.ListRecordings(ctx, 1)
				return err
			},
			Critical: true,
		},
		{
			// The sim may connect later; this only surfaces its state at startup.
			Name: "Sim connection",
			Check: func(context.Context) error {
				if s := simClient.GetState(); s == sim.StateDisconnected {
					return sim.ErrNotConnected
				}
				return nil
			},
		},
	}
}

func setupScheduler(ctx context.Context, prov config.Provider, simClient sim.Client, st store.RecordingStore, rec *recorder.Recorder, telH *api.TelemetryHandler) (*core.Scheduler, *core.TriggerJob) {
	sched := core.NewScheduler(prov, simClient, telH)

	// Replayed frames own the telemetry view while a playback runs.
	sched.SetPublishGate(func() bool { return !rec.Mode().IsReplaying() })

	// Order matters: the recorder buffers the sample before the trigger
	// can stop the recording on the same tick.
	sched.AddHandler(core.NewCaptureHandler(rec))
	trig := core.NewTriggerJob(ctx, prov, rec)
	sched.AddHandler(trig)

	interval := time.Duration(prov.AppConfig().Recorder.PruneInterval)
	if interval <= 0 {
		interval = time.Hour
	}
	sched.AddJob(core.NewRecordingPruneJob(prov, st, interval))

	return sched, trig
}

func runServer(ctx context.Context, prov config.Provider, st store.RecordingStore, rec *recorder.Recorder, telH *api.TelemetryHandler) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(prov.AppConfig().Server.Address,
		telH,
		api.NewConfigHandler(prov),
		api.NewRecorderHandler(rec),
		api.NewRecordingsHandler(st, rec),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
