package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/align"
	"github.com/sells-group/payee-cli/internal/classify"
	"github.com/sells-group/payee-cli/internal/model"
)

var (
	runInput   string
	runColumn  string
	runOutput  string
	runOffline bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify every payee in a CSV or XLSX file",
	Long:  "Reads the payee column from a file, deduplicates near-identical names, classifies each cluster once, and writes the original rows back out with classification columns appended.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runID := uuid.NewString()

		names, rows, err := readNamesFile(ctx, runInput, runColumn)
		if err != nil {
			return err
		}
		zap.L().Info("input loaded",
			zap.String("run_id", runID),
			zap.String("file", runInput),
			zap.Int("rows", len(names)),
		)

		ccfg := classifyConfig()
		ccfg.DedupThreshold = cfg.Dedup.SimilarityThreshold
		if runOffline {
			ccfg.Offline = true
		}
		classifier, err := initClassifier(ccfg)
		if err != nil {
			return err
		}

		runner := classify.NewRunner(classifier, ccfg)
		results, err := runner.Run(ctx, names, func(current, total int, percentage float64, phase string) {
			fmt.Fprintf(os.Stderr, "\r%s: %d/%d (%.0f%%)", phase, current, total, percentage)
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return eris.Wrap(err, "classification run")
		}

		perRow := make([]model.PerRowResult, len(results))
		for i, r := range results {
			perRow[i] = model.PerRowResult{
				RowIndex:       i,
				Status:         model.RowStatusSuccess,
				Classification: r.Classification,
				Confidence:     r.Confidence,
				Reasoning:      r.Reasoning,
			}
		}

		merged, err := align.Merge(rows, perRow)
		if err != nil {
			return eris.Wrap(err, "merge results")
		}

		out := os.Stdout
		if runOutput != "" {
			f, err := os.Create(runOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", runOutput)
			}
			defer f.Close()
			out = f
		}
		if err := align.WriteCSV(out, merged); err != nil {
			return eris.Wrap(err, "write output")
		}

		zap.L().Info("run complete",
			zap.String("run_id", runID),
			zap.Int("rows", len(merged)),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "input CSV or XLSX file (required)")
	runCmd.Flags().StringVar(&runColumn, "column", "payee", "header name of the payee column")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output CSV path (default stdout)")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "skip the AI tier")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
