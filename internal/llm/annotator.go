package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/indicacoes/internal/cache"
	"github.com/ppiankov/indicacoes/internal/extract"
	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/model"
	"go.uber.org/zap"
)

// Annotator implements extract.Annotator on top of a Provider.
// Successful annotations are cached by summary; failures are returned
// so the parser can fall back to the heuristic for that row.
type Annotator struct {
	provider Provider
	model    string
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewAnnotator wraps provider. c, logger and m may be nil.
func NewAnnotator(provider Provider, modelName string, c cache.Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Annotator {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{
		provider: provider,
		model:    modelName,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
	}
}

// Annotate returns the cached annotation or asks the provider
func (a *Annotator) Annotate(ctx context.Context, summary string) (extract.Annotation, error) {
	key := cache.AnnotationKey(a.provider.Name(), a.model, summary)

	if raw, ok := a.cache.Get(key); ok {
		var cached extract.Annotation
		if err := json.Unmarshal(raw, &cached); err == nil && cached.Category.Valid() {
			a.metrics.ObserveAnnotationCache(true)
			return cached, nil
		}
		_ = a.cache.Delete(key)
	}
	a.metrics.ObserveAnnotationCache(false)

	resp, err := a.provider.Annotate(ctx, AnnotateRequest{Summary: summary})
	if err != nil {
		a.metrics.IncAnnotationErrors()
		a.logger.Warn("AI annotation failed",
			zap.String("provider", a.provider.Name()),
			zap.Error(err))
		return extract.Annotation{}, fmt.Errorf("annotate with %s: %w", a.provider.Name(), err)
	}

	annotation := extract.Annotation{
		Category: resp.Category,
		Location: model.Location{
			Address:      resp.Address,
			Neighborhood: resp.Neighborhood,
		},
	}
	if annotation.Location.Address == "" {
		annotation.Location = extract.ExtractLocation(summary)
	}

	if raw, err := json.Marshal(annotation); err == nil {
		if err := a.cache.Set(key, raw, a.ttl); err != nil {
			a.logger.Debug("annotation cache write failed", zap.Error(err))
		}
	}

	return annotation, nil
}
