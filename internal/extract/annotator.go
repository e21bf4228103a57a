package extract

import (
	"context"

	"github.com/ppiankov/indicacoes/internal/model"
)

// Annotation holds the fields derived from a summary
type Annotation struct {
	Category model.Category `json:"category"`
	Location model.Location `json:"location"`
}

// Annotator derives category and location from a summary.
// Heuristic is the built-in variant; the llm package provides an AI-backed one.
type Annotator interface {
	Annotate(ctx context.Context, summary string) (Annotation, error)
}

// Heuristic annotates with keyword classification and location patterns
type Heuristic struct{}

// NewHeuristic creates the keyword/pattern annotator
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Annotate never fails
func (h *Heuristic) Annotate(_ context.Context, summary string) (Annotation, error) {
	return Annotate(summary), nil
}

// Annotate applies Classify and ExtractLocation to a summary
func Annotate(summary string) Annotation {
	return Annotation{
		Category: Classify(summary),
		Location: ExtractLocation(summary),
	}
}
