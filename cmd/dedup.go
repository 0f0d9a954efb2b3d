package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/payee-cli/internal/match"
)

var (
	dedupInput     string
	dedupColumn    string
	dedupThreshold float64
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Preview duplicate clusters for a payee file",
	Long:  "Shows how near-duplicate names would group before classification, without making any AI calls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, _, err := readNamesFile(cmd.Context(), dedupInput, dedupColumn)
		if err != nil {
			return err
		}

		threshold := dedupThreshold
		if threshold <= 0 {
			threshold = cfg.Dedup.SimilarityThreshold
		}

		clusters := match.NewDeduplicator(threshold).Cluster(names)

		type clusterView struct {
			Canonical string   `json:"canonical"`
			Size      int      `json:"size"`
			Members   []string `json:"members,omitempty"`
		}
		views := make([]clusterView, 0, len(clusters))
		for _, c := range clusters {
			v := clusterView{Canonical: c.CanonicalName, Size: c.Size()}
			for _, m := range c.Members {
				if m.Text != c.CanonicalName {
					v.Members = append(v.Members, m.Text)
				}
			}
			views = append(views, v)
		}
		return printJSON(map[string]any{
			"names":    len(names),
			"clusters": len(views),
			"groups":   views,
		})
	},
}

func init() {
	dedupCmd.Flags().StringVar(&dedupInput, "input", "", "input CSV or XLSX file (required)")
	dedupCmd.Flags().StringVar(&dedupColumn, "column", "payee", "header name of the payee column")
	dedupCmd.Flags().Float64Var(&dedupThreshold, "threshold", 0, "similarity threshold override (0 uses config)")
	_ = dedupCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(dedupCmd)
}
