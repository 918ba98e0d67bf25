package gemini

import (
	"context"
	"errors"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/profile"
)

const extractTemperature = 0.3

//go:embed prompts/extract.md
var extractPrompt string

// Extractor turns résumé text into a structured profile.
type Extractor struct {
	gen    *Generator
	logger *zap.Logger
}

func NewExtractor(gen *Generator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{gen: gen, logger: logger}
}

// Extract returns the profile found in text. Exhausting every model yields *ai.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, text string) (*profile.Profile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ai.ExtractionError{Err: errors.New("document text is empty")}
	}

	req := Request{
		System:      extractPrompt,
		Content:     text,
		Schema:      profileSchema(),
		Temperature: extractTemperature,
	}

	var result *profile.Profile
	model, err := e.gen.generateJSON(ctx, req, func(raw string) error {
		p, err := parseProfile(raw)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, &ai.ExtractionError{Model: model, Err: err}
	}

	e.logger.Info("profile extracted",
		zap.String(logger.FieldModel, model),
		zap.Int("skills", len(result.Skills)),
		zap.Int("experience", len(result.Experience)),
	)

	return result, nil
}

// parseProfile decodes loosely typed model output, so a numeric
// total_experience_years or a single string where a list is expected still fits.
func parseProfile(raw string) (*profile.Profile, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, err
	}

	return &p, nil
}
