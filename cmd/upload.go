package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/ai/gemini"
	"github.com/spigell/job-matcher/internal/profile"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <resume>",
	Short: "Extract a profile from a résumé file and store it",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		upload(args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func upload(path string) {
	s := newSession()
	defer s.Close()

	filename := filepath.Base(path)
	log := s.logger.With(zap.String("filename", filename))

	existing, err := s.store.ListProfiles(s.ctx, s.ownerID)
	if err != nil {
		s.fail("listing profiles", err)
	}
	for _, rec := range existing {
		if rec.Filename == filename {
			log.Warn("a profile with this filename is already uploaded", zap.Int64("profile_id", rec.ID))
			return
		}
	}

	text, err := profile.NewTextExtractor().Extract(path)
	if err != nil {
		var unsupported *profile.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			log.Fatal("unsupported résumé format", zap.Error(err))
		}
		s.fail("document text unreadable", &ai.ExtractionError{Err: err})
	}

	extracted, err := gemini.NewExtractor(s.generator(), s.logger).Extract(s.ctx, text)
	if err != nil {
		s.fail("extracting the profile", err)
	}

	if s.config.UploadDir != "" {
		if err := keepCopy(path, filepath.Join(s.config.UploadDir, fmt.Sprintf("%d", s.ownerID), filename)); err != nil {
			log.Warn("keeping a copy of the résumé", zap.Error(err))
		}
	}

	rec, created, err := s.store.SaveProfile(s.ctx, s.ownerID, filename, extracted)
	if err != nil {
		s.fail("saving the profile", err)
	}
	if !created {
		log.Warn("a profile with this filename is already uploaded", zap.Int64("profile_id", rec.ID))
		return
	}

	log.Info("profile uploaded",
		zap.Int64("profile_id", rec.ID),
		zap.String("name", rec.DisplayName()),
		zap.Int("skills", len(extracted.Skills)),
	)

	if err := printJSON(rec); err != nil {
		log.Fatal("printing the profile", zap.Error(err))
	}
}

func keepCopy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
