package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/aggregator"
	"github.com/spigell/job-matcher/internal/jobs"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search job sources for the skills of a profile and store new postings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		profileID, _ := cmd.Flags().GetInt64("profile")
		autoApprove, _ := cmd.Flags().GetBool("yes")
		discover(profileID, autoApprove)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Int64P("profile", "p", 0, "profile id to take skills from (default is the most recent profile)")
	discoverCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before saving postings")
}

func discover(profileID int64, autoApprove bool) {
	s := newSession()
	defer s.Close()

	rec, err := s.profile(profileID)
	if err != nil {
		s.fail("getting the profile", err)
	}

	log := s.logger.With(zap.Int64("profile_id", rec.ID))

	client := jobs.NewClient(s.logger, s.config.Discover.UserAgent, s.config.Discover.Timeout)
	sources := jobs.DefaultSources(client, jobs.Options{Location: s.config.Discover.Location})
	agg := aggregator.New(s.logger, sources, aggregator.Options{
		ExcludedCompanies: s.config.Discover.ExcludeCompanies,
		ExcludeFile:       s.config.Discover.ExcludeFile,
	})

	log.Info("starting the search", zap.Strings("skills", rec.Profile.Skills))

	result := agg.Search(s.ctx, rec.Profile.Skills)

	if result.FallbackTerm {
		log.Warn("the profile has no usable skills, searched for a generic term", zap.Strings("terms", result.Skills))
	}

	switch {
	case result.Failed():
		log.Error("every job source failed, try again later")
		return
	case len(result.Postings) == 0:
		log.Info("no postings found for the profile skills", zap.Strings("terms", result.Skills))
		return
	}

	log.Info("postings found", zap.Int("count", len(result.Postings)))

	if !autoApprove {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Save %d postings?", len(result.Postings)),
			Items: []string{PromptYes, PromptNo},
		}

		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("prompt failed", zap.Error(err))
		}
		if action != PromptYes {
			log.Info("nothing saved")
			return
		}
	}

	created, err := s.store.SavePostings(s.ctx, s.ownerID, result.Postings)
	if err != nil {
		s.fail("saving postings", err)
	}

	log.Info("postings saved",
		zap.Int("new", created),
		zap.Int("known", len(result.Postings)-created),
	)
}
