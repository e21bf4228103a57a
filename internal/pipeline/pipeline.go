package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/indicacoes/internal/extract"
	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/model"
	"github.com/ppiankov/indicacoes/internal/util"
	"github.com/ppiankov/indicacoes/internal/worker"
	"go.uber.org/zap"
)

// Pipeline aggregates every listing page into one ordered, deduplicated snapshot
type Pipeline struct {
	fetcher *Fetcher
	parser  *extract.MatterParser
	query   *SearchQuery
	robots  *util.RobotsChecker
	limiter *worker.Limiter
	batch   *worker.BatchProcessor
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPipeline wires the fetcher, parser and page pool from cfg.
// annotator, logger and m may be nil.
func NewPipeline(cfg *model.Config, annotator extract.Annotator, logger *zap.Logger, m *metrics.Metrics) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parser, err := extract.NewMatterParser(cfg.Portal.BaseURL, annotator, logger.Named("parser"))
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var robots *util.RobotsChecker
	if cfg.Portal.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: util.NewTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		})
	}

	return &Pipeline{
		fetcher: NewFetcher(cfg.HTTP, limiter, m),
		parser:  parser,
		query:   NewSearchQuery(cfg.Portal),
		robots:  robots,
		limiter: limiter,
		batch:   worker.NewBatchProcessor(cfg.Concurrency.MaxPages, true),
		logger:  logger,
		metrics: m,
	}, nil
}

// pageJob fetches and parses one listing page
type pageJob struct {
	page int
	url  string
	p    *Pipeline
}

// pageResult implements worker.Result
type pageResult struct {
	page   int
	result *extract.PageResult
	err    error
}

func (r *pageResult) GetError() error {
	return r.err
}

func (j *pageJob) Execute(ctx context.Context) worker.Result {
	result, err := j.p.scrape(ctx, j.url)
	return &pageResult{page: j.page, result: result, err: err}
}

// Collect runs one full ingestion: page 1, pagination discovery, the remaining
// pages concurrently, then merge, dedupe and sort. Any page failure fails the run.
func (p *Pipeline) Collect(ctx context.Context) ([]model.LegislativeMatter, error) {
	start := time.Now()
	matters, pages, err := p.collect(ctx)
	elapsed := time.Since(start)

	p.metrics.ObserveAggregation(err, pages, len(matters), elapsed)
	if err != nil {
		p.logger.Error("aggregation failed", zap.Error(err), zap.Duration("duration", elapsed))
		return nil, err
	}

	p.logger.Info("aggregation complete",
		zap.Int("pages", pages),
		zap.Int("matters", len(matters)),
		zap.Duration("duration", elapsed))

	return matters, nil
}

func (p *Pipeline) collect(ctx context.Context) ([]model.LegislativeMatter, int, error) {
	firstURL := p.query.PageURL(1)

	if err := p.checkRobots(ctx, firstURL); err != nil {
		return nil, 0, &AggregationError{Page: 1, Err: err}
	}

	body, err := p.fetcher.FetchPage(ctx, firstURL)
	if err != nil {
		return nil, 0, &AggregationError{Page: 1, Err: err}
	}

	doc, err := extract.ParseDocument(body)
	if err != nil {
		return nil, 0, &AggregationError{Page: 1, Err: err}
	}

	first, err := p.parse(ctx, doc)
	if err != nil {
		return nil, 0, &AggregationError{Page: 1, Err: err}
	}

	lastPage := extract.LastPage(doc)
	p.logger.Debug("discovered pagination", zap.Int("last_page", lastPage))

	byPage := make([][]model.LegislativeMatter, lastPage+1)
	byPage[1] = first.Matters

	if lastPage > 1 {
		jobs := make([]worker.Job, 0, lastPage-1)
		for n := 2; n <= lastPage; n++ {
			jobs = append(jobs, &pageJob{page: n, url: p.query.PageURL(n), p: p})
		}

		results, cause := p.batch.Process(ctx, jobs)
		if cause != nil {
			return nil, lastPage, pageFailure(results, cause)
		}

		for _, r := range results {
			pr := r.(*pageResult)
			byPage[pr.page] = pr.result.Matters
		}
	}

	var all []model.LegislativeMatter
	for _, matters := range byPage {
		all = append(all, matters...)
	}

	merged := Dedupe(all)
	SortByIdentifier(merged)

	return merged, lastPage, nil
}

func (p *Pipeline) scrape(ctx context.Context, rawURL string) (*extract.PageResult, error) {
	body, err := p.fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := extract.ParseDocument(body)
	if err != nil {
		return nil, err
	}

	return p.parse(ctx, doc)
}

func (p *Pipeline) parse(ctx context.Context, doc *goquery.Document) (*extract.PageResult, error) {
	result, err := p.parser.Parse(ctx, doc)
	if err != nil {
		return nil, err
	}
	p.metrics.AddRowAnomalies(len(result.Anomalies))
	return result, nil
}

// pageFailure names the page behind the cause that stopped the batch. A failed
// job is matched by its own error; a cancelled parent is pinned to the lowest
// page that observed it, or page 0 when no page had started.
func pageFailure(results []worker.Result, cause error) *AggregationError {
	var failed *pageResult
	for _, r := range results {
		pr := r.(*pageResult)
		if pr.err == nil {
			continue
		}
		if errors.Is(pr.err, cause) {
			if failed == nil || !errors.Is(failed.err, cause) || pr.page < failed.page {
				failed = pr
			}
			continue
		}
		if failed == nil || (!errors.Is(failed.err, cause) && pr.page < failed.page) {
			failed = pr
		}
	}

	if failed == nil {
		return &AggregationError{Page: 0, Err: cause}
	}
	return &AggregationError{Page: failed.page, Err: failed.err}
}

func (p *Pipeline) checkRobots(ctx context.Context, rawURL string) error {
	if p.robots == nil {
		return nil
	}

	verdict, err := p.robots.Check(ctx, rawURL)
	if err != nil {
		return err
	}
	if !verdict.Allowed {
		return ErrDisallowed
	}

	if verdict.CrawlDelay > 0 {
		if u, err := url.Parse(rawURL); err == nil {
			p.limiter.SetCrawlDelay(u.Host, verdict.CrawlDelay)
		}
		p.logger.Debug("robots crawl delay", zap.Duration("delay", verdict.CrawlDelay))
	}

	return nil
}
