package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	classifyOffline   bool
	classifySkipRules bool
	classifyRuns      int
)

var classifyCmd = &cobra.Command{
	Use:   "classify <name>",
	Short: "Classify a single payee name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ccfg := classifyConfig()
		if classifyOffline {
			ccfg.Offline = true
		}
		if classifySkipRules {
			ccfg.SkipRules = true
		}
		if classifyRuns > 0 {
			ccfg.ConsensusRuns = classifyRuns
		}

		classifier, err := initClassifier(ccfg)
		if err != nil {
			return err
		}

		result := classifier.Classify(cmd.Context(), args[0])

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyOffline, "offline", false, "skip the AI tier; ambiguous names keep the structural guess")
	classifyCmd.Flags().BoolVar(&classifySkipRules, "skip-rules", false, "bypass rule and structural tiers, go straight to AI")
	classifyCmd.Flags().IntVar(&classifyRuns, "consensus-runs", 0, "AI samples per name (values above 1 enable the consensus voter)")
	rootCmd.AddCommand(classifyCmd)
}
