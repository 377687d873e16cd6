// Package main provides the draw ingestion service: one-off and scheduled
// ingestion of historical draws plus schema migrations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/euromillions/internal/config"
	"github.com/yourusername/euromillions/internal/database"
	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/health"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/metrics"
	"github.com/yourusername/euromillions/internal/pipeline"
	"github.com/yourusername/euromillions/internal/repository"
	"github.com/yourusername/euromillions/internal/scheduler"
	"github.com/yourusername/euromillions/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	sourceName string
	downSteps  int

	appLogger *logrus.Logger
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "ingestion",
	Short:        "Ingest historical EuroMillions draws",
	Version:      fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadAndPrepare(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest every enabled source once",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setupDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.db.Close()

		sources, err := selectSources(deps.sources, sourceName)
		if err != nil {
			return err
		}

		reports, err := deps.ingestion.IngestAll(cmd.Context(), sources)
		for _, report := range reports {
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
		}
		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingestion on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.db.Close()

		sched := scheduler.NewScheduler(deps.ingestion, appLogger)
		if _, err := sched.ScheduleIngestion(cfg.DataIngestion.Schedule.Cron, deps.sources); err != nil {
			return err
		}

		healthSrv := health.NewServer(health.Config{
			ServiceName: "euromillions-ingestion",
			Version:     Version,
			Commit:      GitCommit,
			Port:        healthPort(),
			Logger:      appLogger,
			DB:          deps.db,
			Checks: map[string]health.CheckFunc{
				"scheduler": func(context.Context) error {
					if !sched.IsRunning() {
						return fmt.Errorf("scheduler is not running")
					}
					return nil
				},
			},
			Metrics: sharedMetricsHandler(),
		})
		if err := healthSrv.Start(ctx); err != nil {
			return err
		}
		serveMetrics(ctx)

		if cfg.DataIngestion.Schedule.RunOnStart {
			sched.RunNow(ctx, deps.sources)
		}

		if err := sched.Start(); err != nil {
			return err
		}
		healthSrv.SetReady(true)
		appLogger.WithField("next_run", sched.GetNextRun()).Info("Ingestion scheduler running")

		<-ctx.Done()
		appLogger.Info("Shutting down ingestion scheduler")
		healthSrv.SetReady(false)

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return sched.Stop(stopCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newMigrator().Up()
		if err != nil {
			return err
		}
		logger.NewAuditLogger(appLogger).LogMigration("up", status.Version, status.Dirty)
		printStatus(cmd, status)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newMigrator().Down(downSteps)
		if err != nil {
			return err
		}
		logger.NewAuditLogger(appLogger).LogMigration("down", status.Version, status.Dirty)
		printStatus(cmd, status)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newMigrator().Status()
		if err != nil {
			return err
		}
		printStatus(cmd, status)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().StringVar(&sourceName, "source", "", "Only ingest the named source")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(runCmd, scheduleCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

type dependencies struct {
	db        *database.DB
	sources   []datasource.DrawSource
	ingestion *service.IngestionService
}

func setupDependencies(ctx context.Context) (*dependencies, error) {
	db, err := database.Initialize(ctx, cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfigFrom(cfg.DataIngestion.HTTP), appLogger)
	sources, err := datasource.NewFactory(httpClient, appLogger).NewDrawSources(cfg.DataIngestion)
	if err != nil {
		db.Close()
		return nil, err
	}

	var rescorer service.Rescorer
	if cfg.Scoring.Enabled {
		engine, err := pipeline.New(pipeline.ConfigFromSettings(cfg.Features, cfg.Scoring))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("invalid feature settings: %w", err)
		}
		// Rescoring needs the population only, never the classifier
		rescorer = service.NewEvaluationService(engine, nil, nil, repos.Draw, nil, cfg.Scoring.EvaluationWorkers, appLogger)
	}

	return &dependencies{
		db:        db,
		sources:   sources,
		ingestion: service.NewIngestionService(repos.Draw, service.NewDrawValidator(appLogger), rescorer, appLogger),
	}, nil
}

func selectSources(sources []datasource.DrawSource, name string) ([]datasource.DrawSource, error) {
	if name == "" {
		return sources, nil
	}
	for _, s := range sources {
		if s.Name() == name {
			return []datasource.DrawSource{s}, nil
		}
	}
	return nil, fmt.Errorf("no enabled source named %q", name)
}

func healthPort() string {
	if cfg.Health.Port == 0 {
		return ""
	}
	return strconv.Itoa(cfg.Health.Port)
}

// sharedMetricsHandler mounts /metrics on the health server when both are
// configured on the same port.
func sharedMetricsHandler() http.Handler {
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != cfg.Health.Port {
		return nil
	}
	return metrics.Handler()
}

// serveMetrics exposes the registry on its own port until ctx is done
func serveMetrics(ctx context.Context) {
	if !cfg.Metrics.Enabled || cfg.Metrics.Port == cfg.Health.Port {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.WithFields(logrus.Fields{"port": cfg.Metrics.Port, "path": cfg.Metrics.Path}).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("Metrics server error")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func newMigrator() *database.Migrator {
	return database.NewMigrator(cfg.GetDatabaseDSN(), appLogger)
}

func printStatus(cmd *cobra.Command, status database.MigrationStatus) {
	if !status.Applied {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
		return
	}
	dirty := ""
	if status.Dirty {
		dirty = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d%s\n", status.Version, dirty)
}
