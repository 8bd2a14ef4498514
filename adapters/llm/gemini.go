package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTimeoutSeconds = 15
	maxSuggestionTokens   = 256
)

// GeminiSuggestionGenerator implements SuggestionGenerator using Google's
// Gemini API. Every failure mode collapses into a fallback-text result so a
// broken or slow generator can never abort a session.
type GeminiSuggestionGenerator struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

// NewGeminiSuggestionGenerator creates a Gemini-backed suggestion generator.
func NewGeminiSuggestionGenerator(logger *zap.Logger) (*GeminiSuggestionGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	timeout := defaultTimeoutSeconds * time.Second
	if raw := os.Getenv("SUGGESTION_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			timeout = time.Duration(seconds) * time.Second
		}
	}

	return &GeminiSuggestionGenerator{
		client:  client,
		logger:  logger,
		model:   defaultModel,
		timeout: timeout,
	}, nil
}

// Suggest generates a reply suggestion for one finalized transcript segment.
func (g *GeminiSuggestionGenerator) Suggest(ctx context.Context, req repositories.SuggestionRequest) entities.SuggestionResult {
	result := entities.SuggestionResult{
		RequestText: req.Transcript,
		StylePrompt: req.StylePrompt,
		Language:    req.Language,
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(req.StylePrompt, genai.RoleUser),
		genai.NewContentFromText(fmt.Sprintf(
			"Based on the following transcript, provide a response in %s. Transcript: %s",
			req.Language, req.Transcript,
		), genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.7)),
		MaxOutputTokens: maxSuggestionTokens,
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Warn("suggestion generation failed, using fallback",
			zap.String("language", req.Language),
			zap.Error(err))
		return g.fallback(result)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		g.logger.Warn("suggestion generation returned no candidates, using fallback")
		return g.fallback(result)
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		g.logger.Warn("suggestion generation returned empty text, using fallback")
		return g.fallback(result)
	}

	result.Text = text
	result.OK = true
	return result
}

func (g *GeminiSuggestionGenerator) fallback(result entities.SuggestionResult) entities.SuggestionResult {
	result.Text = entities.FallbackText(result.Language)
	result.OK = false
	return result
}
