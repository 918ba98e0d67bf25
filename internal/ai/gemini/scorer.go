package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	scoreTemperature = 0.1
	minPostingRunes  = 50

	// genericPosting replaces posting text that is too short to evaluate.
	genericPosting = "The full posting could not be retrieved. Give a general evaluation based on the job title and company only."
)

//go:embed prompts/score.md
var scorePrompt string

// Scorer rates how well a profile fits a posting.
type Scorer struct {
	gen    *Generator
	logger *zap.Logger
}

func NewScorer(gen *Generator, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{gen: gen, logger: logger}
}

// Score asks the models for the five sub-scores and computes the composite locally.
// Exhausting every model yields *ai.ScoringError.
func (s *Scorer) Score(ctx context.Context, p *profile.Profile, postingText string) (*matching.Assessment, error) {
	content, err := scoringContent(p, postingText)
	if err != nil {
		return nil, &ai.ScoringError{Err: err}
	}

	req := Request{
		System:      scorePrompt,
		Content:     content,
		Schema:      scoringSchema(),
		Temperature: scoreTemperature,
	}

	var result *matching.Assessment
	model, err := s.gen.generateJSON(ctx, req, func(raw string) error {
		a, err := parseAssessment(raw)
		if err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, &ai.ScoringError{Model: model, Err: err}
	}

	result.Model = model
	s.logger.Debug("posting scored", zap.String(logger.FieldModel, model), zap.Int("score", result.Score))

	return result, nil
}

func scoringContent(p *profile.Profile, postingText string) (string, error) {
	if p == nil {
		p = &profile.Profile{}
	}

	candidate, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	postingText = strings.TrimSpace(postingText)
	if utf8.RuneCountInString(postingText) < minPostingRunes {
		postingText = genericPosting
	}

	return fmt.Sprintf("CANDIDATE:\n%s\n\nJOB POSTING:\n%s", candidate, postingText), nil
}

func parseAssessment(raw string) (*matching.Assessment, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	a := matching.NewAssessment(matching.SubScores{
		Technical:   coerceInt(data["technical_score"]),
		Experience:  coerceInt(data["experience_score"]),
		Education:   coerceInt(data["education_score"]),
		Language:    coerceInt(data["language_score"]),
		Certificate: coerceInt(data["certificate_score"]),
	})

	a.FitReason = coerceString(data["fit_reason"])
	a.MatchedSkills = coerceStrings(data["matched_skills"])
	a.MissingSkills = coerceStrings(data["missing_skills"])
	a.ExperienceFit = coerceString(data["experience_fit"])
	a.EducationFit = coerceString(data["education_fit"])
	a.LanguageFit = coerceString(data["language_fit"])
	a.Strengths = coerceStrings(data["strengths"])
	a.Improvements = coerceStrings(data["improvements"])
	a.Recommendations = coerceStrings(data["recommendations"])

	return a, nil
}
