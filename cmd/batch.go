package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/align"
	"github.com/sells-group/payee-cli/internal/batch"
	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/store"
	"github.com/sells-group/payee-cli/pkg/anthropic"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage asynchronous classification batch jobs",
}

// initOrchestrator builds the orchestrator plus its store. Callers own the
// returned store's lifetime.
func initOrchestrator(cmd *cobra.Command) (*batch.Orchestrator, store.Store, error) {
	if cfg.Anthropic.Key == "" {
		return nil, nil, eris.New("anthropic.key is required for batch jobs")
	}

	st, err := initStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	bcfg := batch.DefaultConfig()
	if cfg.Anthropic.Model != "" {
		bcfg.Model = cfg.Anthropic.Model
	}
	if cfg.Anthropic.MaxTokens > 0 {
		bcfg.MaxTokens = cfg.Anthropic.MaxTokens
	}
	bcfg.DedupThreshold = cfg.Dedup.SimilarityThreshold

	client := anthropic.NewClient(cfg.Anthropic.Key)
	return batch.NewOrchestrator(client, st, bcfg), st, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	batchSubmitInput  string
	batchSubmitColumn string
	batchSubmitWait   bool
)

var batchSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a payee file as an asynchronous batch job",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		names, rows, err := readNamesFile(ctx, batchSubmitInput, batchSubmitColumn)
		if err != nil {
			return err
		}

		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		job, err := orch.Submit(ctx, names, rows)
		if err != nil {
			return eris.Wrap(err, "submit batch")
		}

		zap.L().Info("batch submitted",
			zap.String("job_id", job.ID),
			zap.String("status", string(job.Status)),
			zap.Int("names", len(names)),
		)

		if batchSubmitWait {
			job, err = orch.Wait(ctx, job.ID, cfg.Batch.PollInterval(), cfg.Batch.MaxPollInterval())
			if err != nil {
				return eris.Wrap(err, "wait for batch")
			}
		}
		return printJSON(job)
	},
}

var batchStatusWatch bool

var batchStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Poll a batch job's remote status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobID := args[0]

		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if !batchStatusWatch {
			job, err := orch.Poll(ctx, jobID)
			if err != nil {
				return eris.Wrap(err, "poll batch")
			}
			return printJSON(job)
		}

		sched := batch.NewScheduler(orch, cfg.Batch.PollInterval(), cfg.Batch.MaxPollInterval())
		defer sched.StopAll()

		done := make(chan *model.BatchJob, 1)
		sched.Track(ctx, jobID, func(job *model.BatchJob) {
			fmt.Fprintf(os.Stderr, "status=%s completed=%d/%d\n",
				job.Status, job.RequestCounts.Completed, job.RequestCounts.Total)
			if job.Status.Terminal() {
				select {
				case done <- job:
				default:
				}
			}
		})

		select {
		case job := <-done:
			return printJSON(job)
		case <-ctx.Done():
			return ctx.Err()
		}
	},
}

var batchResultsOutput string

var batchResultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Retrieve per-row results for a finished batch job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobID := args[0]

		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		record, err := st.GetJob(ctx, jobID)
		if err != nil {
			return eris.Wrapf(err, "job %s", jobID)
		}

		results, err := orch.RetrieveResults(ctx, jobID, record.PayeeNames)
		if err != nil {
			return eris.Wrap(err, "retrieve results")
		}

		if batchResultsOutput == "" {
			return printJSON(results)
		}

		merged, err := align.Merge(record.OriginalRowData, results)
		if err != nil {
			return eris.Wrap(err, "merge results")
		}
		f, err := os.Create(batchResultsOutput)
		if err != nil {
			return eris.Wrapf(err, "create %s", batchResultsOutput)
		}
		defer f.Close()
		if err := align.WriteCSV(f, merged); err != nil {
			return eris.Wrap(err, "write output")
		}

		zap.L().Info("results exported",
			zap.String("job_id", jobID),
			zap.String("file", batchResultsOutput),
			zap.Int("rows", len(merged)),
		)
		return nil
	},
}

var batchCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Request cancellation of an active batch job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		job, err := orch.Cancel(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "cancel batch")
		}
		return printJSON(job)
	},
}

var batchListStatus string

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked batch jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.JobFilter{Status: model.JobStatus(batchListStatus)}
		jobs, err := st.ListJobs(cmd.Context(), filter)
		if err != nil {
			return eris.Wrap(err, "list jobs")
		}
		if jobs == nil {
			jobs = []model.BatchJobRecord{}
		}
		return printJSON(jobs)
	},
}

var batchRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Delete a job record from local tracking",
	Long:  "Removes the local record only; the remote batch is untouched. Cancel active jobs first if needed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteJob(cmd.Context(), args[0]); err != nil {
			return eris.Wrapf(err, "remove job %s", args[0])
		}
		zap.L().Info("job removed", zap.String("job_id", args[0]))
		return nil
	},
}

var batchReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Refresh remote status for every non-terminal tracked job",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := orch.Reload(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "reload jobs")
		}
		return printJSON(records)
	},
}

func init() {
	batchSubmitCmd.Flags().StringVar(&batchSubmitInput, "input", "", "input CSV or XLSX file (required)")
	batchSubmitCmd.Flags().StringVar(&batchSubmitColumn, "column", "payee", "header name of the payee column")
	batchSubmitCmd.Flags().BoolVar(&batchSubmitWait, "wait", false, "block until the remote batch ends")
	_ = batchSubmitCmd.MarkFlagRequired("input")

	batchStatusCmd.Flags().BoolVar(&batchStatusWatch, "watch", false, "poll until the job reaches a terminal state")
	batchResultsCmd.Flags().StringVar(&batchResultsOutput, "output", "", "write merged rows as CSV to this path instead of printing JSON results")
	batchListCmd.Flags().StringVar(&batchListStatus, "status", "", "filter by job status")

	batchCmd.AddCommand(batchSubmitCmd, batchStatusCmd, batchResultsCmd, batchCancelCmd, batchListCmd, batchRemoveCmd, batchReloadCmd)
	rootCmd.AddCommand(batchCmd)
}
