package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List uploaded profiles, newest first",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		s := newSession()
		defer s.Close()

		records, err := s.store.ListProfiles(s.ctx, s.ownerID)
		if err != nil {
			s.fail("listing profiles", err)
		}

		s.logger.Info("profiles found", zap.Int("count", len(records)))

		if err := printJSON(records); err != nil {
			s.logger.Fatal("printing profiles", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
