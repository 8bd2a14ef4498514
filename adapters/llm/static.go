package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/meetmate-ai/server/domain/entities"
	"github.com/meetmate-ai/server/domain/repositories"
)

// StaticSuggestionGenerator is a placeholder generator for development
// without Gemini credentials. It echoes a canned acknowledgement.
type StaticSuggestionGenerator struct {
	logger *zap.Logger
}

// NewStaticSuggestionGenerator creates a static suggestion generator.
func NewStaticSuggestionGenerator(logger *zap.Logger) *StaticSuggestionGenerator {
	return &StaticSuggestionGenerator{logger: logger}
}

func (s *StaticSuggestionGenerator) Suggest(ctx context.Context, req repositories.SuggestionRequest) entities.SuggestionResult {
	s.logger.Info("generating static suggestion",
		zap.String("language", req.Language),
		zap.Int("transcriptLength", len(req.Transcript)))

	return entities.SuggestionResult{
		RequestText: req.Transcript,
		StylePrompt: req.StylePrompt,
		Language:    req.Language,
		Text:        "Sounds good, let's proceed.",
		OK:          true,
	}
}
