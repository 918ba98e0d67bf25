package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai/gemini"
	"github.com/spigell/job-matcher/internal/fetcher"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/store"
)

// session holds everything a command needs to act for one user.
type session struct {
	ctx     context.Context
	logger  *zap.Logger
	config  *Config
	store   *store.Store
	ownerID int64
}

// newSession builds the logger, loads the config, opens the database and
// resolves the acting user. Any failure is fatal.
func newSession() *session {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.User) == "" {
		logger.Fatal("user is required",
			zap.String("hint", "pass --user, set JOB_MATCHER_USER or the 'user' key in the configuration file"),
		)
	}

	db, err := store.Open(ctx, config.Database)
	if err != nil {
		logger.Fatal("opening the database", zap.String("path", config.Database), zap.Error(err))
	}

	ownerID, err := db.EnsureUser(ctx, config.User)
	if err != nil {
		logger.Fatal("resolving the user", zap.Error(err))
	}

	return &session{
		ctx:     ctx,
		logger:  logger.Named(app).With(zap.Int64("user_id", ownerID)),
		config:  config,
		store:   db,
		ownerID: ownerID,
	}
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing the database", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// generator connects to Gemini with the configured key and model order.
func (s *session) generator() *gemini.Generator {
	apiKey, origin, err := secrets.Resolve(secrets.Source{
		Name:  "gemini api key",
		Value: s.config.Gemini.APIKey,
		File:  s.config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		s.logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	s.logger.Debug("gemini api key resolved", zap.String("origin", string(origin)))

	gen, err := gemini.NewGenerator(s.ctx, apiKey, s.config.Gemini.Models, s.config.Gemini.MaxLogLength, s.logger)
	if err != nil {
		s.logger.Fatal("creating gemini client", zap.Error(err))
	}

	s.logger.Debug("gemini client ready", zap.Strings("models", gen.Models()))

	return gen
}

func (s *session) matcher() *matching.Service {
	scorer := gemini.NewScorer(s.generator(), s.logger)
	pages := fetcher.New(fetcher.Config{
		Timeout:   s.config.Fetch.Timeout,
		UserAgent: s.config.Fetch.UserAgent,
		MaxChars:  s.config.Fetch.MaxChars,
		MinChars:  s.config.Fetch.MinChars,
	}, s.logger)

	return matching.NewService(s.store, scorer, pages, s.config.Batch.Workers, s.logger)
}

// profile returns the owner's profile with the given id, or the most recent one when id is zero.
func (s *session) profile(id int64) (*profile.Record, error) {
	if id == 0 {
		rec, err := s.store.LatestProfile(s.ctx, s.ownerID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, matching.ErrNoProfile
		}
		return rec, nil
	}

	rec, err := s.store.GetProfile(s.ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != s.ownerID {
		return nil, &matching.AuthorizationError{Kind: "profile", ID: id, OwnerID: s.ownerID}
	}
	return rec, nil
}

// fail logs err with a message that depends on its kind and exits.
func (s *session) fail(msg string, err error) {
	var authErr *matching.AuthorizationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Fatal(msg+": not found", zap.Error(err))
	case errors.Is(err, matching.ErrNoProfile):
		s.logger.Fatal(msg, zap.Error(err), zap.String("hint", "upload a résumé first"))
	case errors.As(err, &authErr):
		s.logger.Fatal(msg+": access denied", zap.Error(err))
	default:
		s.logger.Fatal(msg, zap.Error(err))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
