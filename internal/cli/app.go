package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/indicacoes/internal/cache"
	"github.com/ppiankov/indicacoes/internal/extract"
	"github.com/ppiankov/indicacoes/internal/llm"
	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/model"
	"github.com/ppiankov/indicacoes/internal/pipeline"
	"go.uber.org/zap"
)

// buildAnnotator returns the AI annotator when a provider is configured, nil otherwise
func buildAnnotator(ctx context.Context, cfg *model.Config, logger *zap.Logger, m *metrics.Metrics) (extract.Annotator, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		logger.Info("using heuristic annotation")
		return nil, nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if !provider.IsAvailable(checkCtx) {
		logger.Warn("LLM provider not reachable, rows will fall back to heuristics",
			zap.String("provider", provider.Name()))
	}

	logger.Info("using AI annotation",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("cache", cfg.Cache.Enabled))

	return llm.NewAnnotator(provider, cfg.LLM.Model, cache.New(cfg.Cache), cfg.Cache.DiskTTL, logger.Named("llm"), m), nil
}

// buildPipeline wires the aggregator from cfg
func buildPipeline(ctx context.Context, cfg *model.Config, logger *zap.Logger, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	annotator, err := buildAnnotator(ctx, cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(cfg, annotator, logger.Named("pipeline"), m)
}
