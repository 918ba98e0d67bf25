package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score <posting-id>",
	Short: "Score how well a profile fits one posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profileID, _ := cmd.Flags().GetInt64("profile")

		s := newSession()
		defer s.Close()

		postingID, err := parseID(args[0])
		if err != nil {
			s.logger.Fatal("parsing the posting id", zap.Error(err))
		}

		rec, err := s.profile(profileID)
		if err != nil {
			s.fail("getting the profile", err)
		}

		match, err := s.matcher().ScorePosting(s.ctx, s.ownerID, rec.ID, postingID)
		if err != nil {
			s.fail("scoring the posting", err)
		}

		s.logger.Info("posting scored",
			zap.Int64("posting_id", postingID),
			zap.Int("score", match.Score()),
		)

		if err := printJSON(match); err != nil {
			s.logger.Fatal("printing the match", zap.Error(err))
		}
	},
}

var scoreAllCmd = &cobra.Command{
	Use:   "score-all",
	Short: "Score every unscored posting against the most recent profile",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		s := newSession()
		defer s.Close()

		summary, err := s.matcher().ScoreAll(s.ctx, s.ownerID)
		if err != nil {
			s.fail("scoring postings", err)
		}

		s.logger.Info(summary.Message,
			zap.String("run_id", summary.RunID),
			zap.Int("total", summary.Total),
			zap.Int("succeeded", summary.Succeeded),
		)

		if err := printJSON(summary); err != nil {
			s.logger.Fatal("printing the summary", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(scoreAllCmd)

	scoreCmd.Flags().Int64P("profile", "p", 0, "profile id to score with (default is the most recent profile)")
}
