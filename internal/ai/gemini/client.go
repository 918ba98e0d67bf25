// Package gemini implements profile extraction and fit scoring on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/utils"
)

const (
	providerName        = "gemini"
	defaultMaxLogLength = 200
)

// DefaultModels is the fallback order used when no models are configured.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.0-flash-lite"}

// modelsAPI is the part of genai.Models the generator needs.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Request is one structured completion: an instruction, the content to work on,
// and the schema the JSON answer must follow.
type Request struct {
	System      string
	Content     string
	Schema      *genai.Schema
	Temperature float32
}

// Generator calls Gemini models in a fixed fallback order.
type Generator struct {
	models    modelsAPI
	order     []string
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, models []string, maxLogLength int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, models, maxLogLength, logger), nil
}

func newGenerator(api modelsAPI, models []string, maxLogLength int, logger *zap.Logger) *Generator {
	order := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			order = append(order, m)
		}
	}
	if len(order) == 0 {
		order = append(order, DefaultModels...)
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{models: api, order: order, logger: logger, maxLogLen: maxLogLength}
}

// Models returns the fallback order.
func (g *Generator) Models() []string {
	return append([]string(nil), g.order...)
}

// Generate sends req to a single model and returns the concatenated text parts.
func (g *Generator) Generate(ctx context.Context, model string, req Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", errors.New("content must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if system := strings.TrimSpace(req.System); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	log := logger.WithCommonFields(g.logger, providerName, model)
	log.Debug("gemini generate content request",
		zap.Int("content_length", utf8.RuneCountInString(content)),
		zap.String("content_preview", utils.TruncateForLog(content, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, model, genai.Text(content), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

// generateJSON tries each model in order until one returns text that parse accepts.
// A transport error, an empty answer and a parse failure all move on to the next
// model without waiting. On exhaustion it returns the last model and its failure.
func (g *Generator) generateJSON(ctx context.Context, req Request, parse func(raw string) error) (string, error) {
	var (
		lastModel string
		lastErr   error
	)

	for _, model := range g.order {
		if err := ctx.Err(); err != nil {
			if lastModel == "" {
				lastModel = model
			}
			return lastModel, err
		}

		lastModel = model
		raw, err := g.Generate(ctx, model, req)
		if err == nil {
			if err = parse(extractJSON(raw)); err == nil {
				return model, nil
			}
			err = fmt.Errorf("parse gemini response: %w", err)
		}

		lastErr = err
		logger.WithCommonFields(g.logger, providerName, model).Warn("model failed, trying next", zap.Error(err))
	}

	return lastModel, lastErr
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate with text is used.
		if builder.Len() > 0 {
			break
		}
	}

	return strings.TrimSpace(builder.String())
}
