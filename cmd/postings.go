package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "List discovered postings, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		s := newSession()
		defer s.Close()

		postings, err := s.store.ListPostings(s.ctx, s.ownerID, limit)
		if err != nil {
			s.fail("listing postings", err)
		}

		s.logger.Info("postings found", zap.Int("count", len(postings)))

		if err := printJSON(postings); err != nil {
			s.logger.Fatal("printing postings", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(postingsCmd)

	postingsCmd.Flags().IntP("limit", "l", 50, "maximum number of postings to list")
}
