// Package main provides the quick-start CLI: evaluate a ticket against the
// historical draws, or score the stored population.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/euromillions/internal/config"
	"github.com/yourusername/euromillions/internal/database"
	"github.com/yourusername/euromillions/internal/datasource"
	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/ml"
	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/pipeline"
	"github.com/yourusername/euromillions/internal/repository"
	"github.com/yourusername/euromillions/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile     string
	populationFile string
	mainNumbers    string
	luckyNumbers   string
	drawYear       int
	noStore        bool

	appLogger *logrus.Logger
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "quickstart",
	Short:        "Check whether a EuroMillions ticket is a good pick",
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

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one ticket",
	Long: `Evaluates a ticket of five main numbers (1-50) and two lucky stars (1-12)
against the historical draws and prints the classifier verdict. Numbers not
given as flags are read from standard input.`,
	Example: `  quickstart evaluate --main "45 30 12 1 7" --lucky "2 11"
  quickstart evaluate --population-file data/euromillions.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ticket, err := readTicket(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		svc, cleanup, err := buildEvaluationService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		evaluation, err := svc.Evaluate(cmd.Context(), ticket)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		printEvaluation(cmd.OutOrStdout(), evaluation)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the historical population and print the avg_win distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := buildEvaluationService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := svc.ScorePopulation(cmd.Context())
		if err != nil {
			return fmt.Errorf("scoring failed: %w", err)
		}
		printScoreReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&populationFile, "population-file", "", "Read historical draws from this CSV instead of the database")

	evaluateCmd.Flags().StringVar(&mainNumbers, "main", "", "Five main numbers, space or comma separated")
	evaluateCmd.Flags().StringVar(&luckyNumbers, "lucky", "", "Two lucky stars, space or comma separated")
	evaluateCmd.Flags().IntVar(&drawYear, "year", time.Now().Year(), "Draw year the ticket is played in")
	evaluateCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not persist the evaluation")

	rootCmd.AddCommand(evaluateCmd, batchCmd, scoreCmd, featuresCmd, historyCmd, statusCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// readTicket builds the ticket from flags, prompting for whatever is missing
func readTicket(in io.Reader, out io.Writer) (models.Ticket, error) {
	scanner := bufio.NewScanner(in)
	prompt := func(current, label string) (string, error) {
		if current != "" {
			return current, nil
		}
		fmt.Fprintf(out, "Enter %s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("no %s given", label)
		}
		return scanner.Text(), nil
	}

	mainText, err := prompt(mainNumbers, "5 main numbers (1-50)")
	if err != nil {
		return models.Ticket{}, err
	}
	luckyText, err := prompt(luckyNumbers, "2 lucky stars (1-12)")
	if err != nil {
		return models.Ticket{}, err
	}

	mainNums, err := models.ParseNumbers(mainText)
	if err != nil {
		return models.Ticket{}, err
	}
	lucky, err := models.ParseNumbers(luckyText)
	if err != nil {
		return models.Ticket{}, err
	}
	return models.NewTicket(drawYear, mainNums, lucky)
}

// buildEvaluationService wires the population, classifier and store. The
// returned cleanup closes anything that was opened.
func buildEvaluationService(ctx context.Context) (*service.EvaluationService, func(), error) {
	engine, err := pipeline.New(
		pipeline.ConfigFromSettings(cfg.Features, cfg.Scoring),
		pipeline.WithLogger(logger.NewPipelineLogger(appLogger)),
	)
	if err != nil {
		return nil, func() {}, fmt.Errorf("invalid feature settings: %w", err)
	}

	featureList, err := ml.LoadFeatureList(cfg.Features.FeatureListPath)
	if err != nil {
		return nil, func() {}, err
	}
	mlLog := logger.NewMLLogger(appLogger)
	mlLog.LogFeatureListLoaded(cfg.Features.FeatureListPath, len(featureList.Features))

	var (
		population service.PopulationLoader
		store      service.EvaluationStore
		cleanup    = func() {}
	)

	if populationFile != "" {
		population = service.SourcePopulation{Source: datasource.NewFileSource("population", populationFile, true)}
	} else {
		repos, closeDB, err := openRepositories(ctx)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = closeDB
		population = repos.Draw
		if !noStore {
			store = repos.Evaluation
		}
	}

	svc := service.NewEvaluationService(engine, newClassifier(featureList, mlLog), featureList, population, store,
		cfg.Scoring.EvaluationWorkers, appLogger)
	return svc, cleanup, nil
}

func newClassifier(featureList *ml.FeatureList, mlLog *logger.MLLogger) *ml.CachedClassifier {
	cache := ml.NewPredictionCache(time.Duration(cfg.Classifier.CacheTTLSeconds)*time.Second, cfg.Classifier.CacheMaxSize)
	return ml.NewCachedClassifier(ml.NewHTTPClassifier(&cfg.Classifier, mlLog), cache, featureList.ModelVersion, mlLog)
}

func openRepositories(ctx context.Context) (*repository.Repositories, func(), error) {
	db, err := database.Initialize(ctx, cfg, appLogger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, func() {}, err
	}
	return repos, db.Close, nil
}

func printEvaluation(out io.Writer, e *models.Evaluation) {
	fmt.Fprintf(out, "\nTicket: %v + %v (%d)\n", e.Ticket.Main, e.Ticket.Lucky, e.Ticket.DrawYear)
	fmt.Fprintf(out, "Verdict: %s (%.1f%% confident)\n", e.Verdict, e.Confidence*100)
	fmt.Fprintf(out, "Model: %s, compared against %d draws\n", e.ModelVersion, e.PopulationSize)

	classes := make([]string, 0, len(e.Probabilities))
	for class := range e.Probabilities {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	parts := make([]string, len(classes))
	for i, class := range classes {
		parts[i] = fmt.Sprintf("%s=%.3f", class, e.Probabilities[class])
	}
	fmt.Fprintf(out, "Class probabilities: %s\n", strings.Join(parts, ", "))
}

func printScoreReport(out io.Writer, r *service.ScoreReport) {
	fmt.Fprintf(out, "\nPopulation: %d draws, %d scored, %d skipped\n", r.Population, len(r.Scored), len(r.Skipped))
	if len(r.Scored) == 0 {
		return
	}

	avgWins := make([]float64, len(r.Scored))
	for i, s := range r.Scored {
		avgWins[i] = s.AvgWin
	}
	sort.Float64s(avgWins)
	fmt.Fprintf(out, "avg_win min=%.3f median=%.3f max=%.3f\n",
		avgWins[0], avgWins[len(avgWins)/2], avgWins[len(avgWins)-1])

	for _, skipped := range r.Skipped {
		if errors.Is(skipped.Err, models.ErrMissingData) {
			fmt.Fprintf(out, "  record %d: no sales or winners data\n", skipped.Index)
			continue
		}
		fmt.Fprintf(out, "  record %d: %v\n", skipped.Index, skipped.Err)
	}
}
