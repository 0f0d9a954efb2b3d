package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/batch"
	"github.com/sells-group/payee-cli/internal/classify"
	"github.com/sells-group/payee-cli/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ccfg := classifyConfig()
		ccfg.DedupThreshold = cfg.Dedup.SimilarityThreshold
		classifier, err := initClassifier(ccfg)
		if err != nil {
			return err
		}
		runner := classify.NewRunner(classifier, ccfg)

		orch, st, err := initOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		// Resume tracking for jobs that were in flight before the restart.
		sched := batch.NewScheduler(orch, cfg.Batch.PollInterval(), cfg.Batch.MaxPollInterval())
		defer sched.StopAll()

		records, err := orch.Reload(ctx)
		if err != nil {
			zap.L().Warn("job reload failed", zap.Error(err))
		}
		for _, rec := range records {
			if rec.Job.Status.Terminal() {
				continue
			}
			sched.Track(ctx, rec.Job.ID, nil)
		}
		if tracked := sched.Tracked(); len(tracked) > 0 {
			zap.L().Info("resumed job tracking", zap.Strings("job_ids", tracked))
		}

		srv := server.New(classifier, runner, orch, st)
		return srv.ListenAndServe(ctx, cfg.Server.Port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
