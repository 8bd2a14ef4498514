package repositories

import (
	"context"

	"github.com/meetmate-ai/server/domain/entities"
)

// SuggestionRequest carries one finalized transcript segment to the
// suggestion generator.
type SuggestionRequest struct {
	Transcript  string
	StylePrompt string
	Language    string
}

// SuggestionGenerator produces a reply suggestion for a finalized transcript
// segment. Implementations never return an error: any failure (timeout,
// provider error, empty response) yields a result with OK=false carrying the
// fallback text for the requested language.
type SuggestionGenerator interface {
	Suggest(ctx context.Context, req SuggestionRequest) entities.SuggestionResult
}
