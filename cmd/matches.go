package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List scored postings of a profile, best first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		profileID, _ := cmd.Flags().GetInt64("profile")

		s := newSession()
		defer s.Close()

		rec, err := s.profile(profileID)
		if err != nil {
			s.fail("getting the profile", err)
		}

		matches, err := s.store.ListMatches(s.ctx, rec.ID)
		if err != nil {
			s.fail("listing matches", err)
		}

		s.logger.Info("matches found", zap.Int64("profile_id", rec.ID), zap.Int("count", len(matches)))

		if err := printJSON(matches); err != nil {
			s.logger.Fatal("printing matches", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().Int64P("profile", "p", 0, "profile id (default is the most recent profile)")
}
