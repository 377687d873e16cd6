package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/euromillions/internal/logger"
	"github.com/yourusername/euromillions/internal/ml"
	"github.com/yourusername/euromillions/internal/models"
	"github.com/yourusername/euromillions/internal/pipeline"
)

var (
	featuresOut  string
	historyLimit int
	historyID    string
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Evaluate every ticket in a file",
	Long: `Evaluates one ticket per line: five main numbers followed by two lucky
stars. Blank lines and lines starting with # are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		tickets, lines, err := readTicketFile(f, drawYear)
		if err != nil {
			return err
		}

		svc, cleanup, err := buildEvaluationService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := svc.EvaluateBatch(cmd.Context(), tickets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			t := tickets[r.Index]
			if r.Err != nil {
				fmt.Fprintf(out, "line %d: %v + %v: error: %v\n", lines[r.Index], t.Main, t.Lucky, r.Err)
				continue
			}
			fmt.Fprintf(out, "line %d: %v + %v: %s (%.1f%%)\n", lines[r.Index], t.Main, t.Lucky,
				r.Evaluation.Verdict, r.Evaluation.Confidence*100)
		}
		return nil
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Write the engineered population feature table as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := buildEvaluationService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		table, err := svc.FeatureTable(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if featuresOut != "" {
			f, err := os.Create(featuresOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return writeFeatureTable(out, table)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, cleanup, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if historyID != "" {
			id, err := uuid.Parse(historyID)
			if err != nil {
				return fmt.Errorf("invalid evaluation id: %w", err)
			}
			evaluation, err := repos.Evaluation.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			printEvaluation(cmd.OutOrStdout(), evaluation)
			return nil
		}

		evaluations, err := repos.Evaluation.ListRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		for _, e := range evaluations {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %v + %v  %s (%.1f%%)\n", e.EvaluatedAt.Format(time.RFC3339),
				e.ID, e.Ticket.Main, e.Ticket.Lucky, e.Verdict, e.Confidence*100)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the classifier and the stored population",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		out := cmd.OutOrStdout()

		featureList, err := ml.LoadFeatureList(cfg.Features.FeatureListPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Feature list: %s (model %s, %d features)\n",
			cfg.Features.FeatureListPath, featureList.ModelVersion, len(featureList.Features))

		engine, err := pipeline.New(pipeline.ConfigFromSettings(cfg.Features, cfg.Scoring))
		if err != nil {
			return err
		}
		if _, err := pipeline.SelectFeatures(placeholderRow(engine.Columns()), featureList.Features); err != nil {
			fmt.Fprintf(out, "Feature columns: MISMATCH: %v\n", err)
		} else {
			fmt.Fprintln(out, "Feature columns: OK")
		}

		classifier := newClassifier(featureList, logger.NewMLLogger(appLogger))
		if err := classifier.HealthCheck(ctx); err != nil {
			fmt.Fprintf(out, "Classifier %s: UNAVAILABLE (%v)\n", cfg.Classifier.URL, err)
		} else {
			fmt.Fprintf(out, "Classifier %s: ONLINE\n", cfg.Classifier.URL)
		}

		repos, cleanup, err := openRepositories(ctx)
		if err != nil {
			fmt.Fprintf(out, "Database: UNAVAILABLE (%v)\n", err)
			return nil
		}
		defer cleanup()

		count, err := repos.Draw.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Database: %d draws stored\n", count)
		return nil
	},
}

func init() {
	featuresCmd.Flags().StringVarP(&featuresOut, "out", "o", "", "Write to this file instead of standard output")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of evaluations to list")
	historyCmd.Flags().StringVar(&historyID, "id", "", "Show a single evaluation")
	batchCmd.Flags().IntVar(&drawYear, "year", time.Now().Year(), "Draw year the tickets are played in")
}

// readTicketFile parses one ticket per line and returns the tickets with
// their line numbers
func readTicketFile(r io.Reader, year int) ([]models.Ticket, []int, error) {
	var (
		tickets []models.Ticket
		lines   []int
	)

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		nums, err := models.ParseNumbers(text)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(nums) != models.MainCount+models.LuckyCount {
			return nil, nil, fmt.Errorf("line %d: %w", line, models.NewValidationError("numbers",
				fmt.Sprintf("expected %d numbers, got %d", models.MainCount+models.LuckyCount, len(nums))))
		}

		ticket, err := models.NewTicket(year, nums[:models.MainCount], nums[models.MainCount:])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		tickets = append(tickets, ticket)
		lines = append(lines, line)
	}
	return tickets, lines, scanner.Err()
}

func writeFeatureTable(w io.Writer, table *pipeline.FeatureTable) error {
	columns := table.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range table.Rows() {
		for i, c := range columns {
			if v, ok := row[c]; ok {
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func placeholderRow(columns []string) map[string]float64 {
	row := make(map[string]float64, len(columns))
	for _, c := range columns {
		row[c] = 0
	}
	return row
}
