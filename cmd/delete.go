package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <profile-id>",
	Short: "Delete a profile and its matches",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s := newSession()
		defer s.Close()

		id, err := parseID(args[0])
		if err != nil {
			s.logger.Fatal("parsing the profile id", zap.Error(err))
		}

		if err := s.store.DeleteProfile(s.ctx, s.ownerID, id); err != nil {
			s.fail("deleting the profile", err)
		}

		s.logger.Info("profile deleted", zap.Int64("profile_id", id))
	},
}

var deletePostingCmd = &cobra.Command{
	Use:   "delete-posting <posting-id>",
	Short: "Delete a posting and its matches",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		s := newSession()
		defer s.Close()

		id, err := parseID(args[0])
		if err != nil {
			s.logger.Fatal("parsing the posting id", zap.Error(err))
		}

		if err := s.store.DeletePosting(s.ctx, s.ownerID, id); err != nil {
			s.fail("deleting the posting", err)
		}

		s.logger.Info("posting deleted", zap.Int64("posting_id", id))
	},
}

func init() {
	rootCmd.AddCommand(deleteProfileCmd)
	rootCmd.AddCommand(deletePostingCmd)
}
