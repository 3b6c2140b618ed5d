// Package scan orchestrates one accessibility scan: bounded same-site crawl,
// per-page audit, violation aggregation, importance sampling, tiered AI
// enrichment and assembly of the final response.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/crawler"
	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/frontier"
	"github.com/v0xg/a11yscan/internal/logger"
)

// DefaultNavTimeout bounds each page navigation.
const DefaultNavTimeout = 30 * time.Second

// Scanner runs scans. Collaborators are shared across scans; all per-scan state
// is created inside Scan.
type Scanner struct {
	launch       crawler.LaunchFunc
	engine       audit.Engine
	provider     ai.Provider
	log          logger.Logger
	navTimeout   time.Duration
	scorePenalty int
	snapshotCap  int
	enrichCfg    enrich.Config
	enrichOpts   []enrich.Option
	now          func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithNavTimeout overrides DefaultNavTimeout.
func WithNavTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.navTimeout = d
		}
	}
}

// WithScorePenalty overrides DefaultScorePenalty.
func WithScorePenalty(p int) Option {
	return func(s *Scanner) { s.scorePenalty = p }
}

// WithSnapshotCap overrides DefaultSnapshotCap.
func WithSnapshotCap(n int) Option {
	return func(s *Scanner) { s.snapshotCap = n }
}

// WithEnrichment sets the enrichment pacing and pipeline options.
func WithEnrichment(cfg enrich.Config, opts ...enrich.Option) Option {
	return func(s *Scanner) {
		s.enrichCfg = cfg
		s.enrichOpts = opts
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// NewScanner creates a scanner. provider may be nil, in which case enrichment
// is skipped for every plan.
func NewScanner(launch crawler.LaunchFunc, engine audit.Engine, provider ai.Provider, log logger.Logger, opts ...Option) *Scanner {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Scanner{
		launch:       launch,
		engine:       engine,
		provider:     provider,
		log:          log,
		navTimeout:   DefaultNavTimeout,
		scorePenalty: DefaultScorePenalty,
		snapshotCap:  DefaultSnapshotCap,
		enrichCfg:    enrich.DefaultConfig(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs one scan to completion. It never returns an error or panics: every
// outcome, including validation and internal failures, is a Response.
func (s *Scanner) Scan(ctx context.Context, req Request) (resp *Response) {
	start := s.now()
	elapsed := func() time.Duration { return s.now().Sub(start) }

	if err := req.Validate(); err != nil {
		s.log.Warn("Rejected scan request", logger.Error(err))
		return Failure(FailureValidation, req.Metadata(), err.Error(), "", elapsed())
	}

	log := s.log.With(
		logger.String("scan_id", req.ScanID),
		logger.String("customer_id", req.CustomerID),
	)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrPanic, r)
			log.Error("Scan aborted", logger.Error(err))
			resp = Failure(FailureInternal, req.Metadata(), "Scan failed due to an internal error", err.Error(), elapsed())
		}
	}()

	level := req.Level()
	log.Info("Starting scan",
		logger.String("url", req.URL),
		logger.String("plan", req.Plan),
		logger.String("enrichment_level", string(level)),
		logger.Int("page_budget", req.Budget()),
	)

	renderer, err := s.launch(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBrowserLaunch, err)
		log.Error("Scan aborted", logger.Error(err))
		return Failure(FailureInternal, req.Metadata(), "Scan failed due to an internal error", err.Error(), elapsed())
	}
	release := func() {
		if renderer == nil {
			return
		}
		if closeErr := renderer.Close(); closeErr != nil {
			log.Warn("Failed to close browser", logger.Error(closeErr))
		}
		renderer = nil
	}
	defer release()

	c := &crawl{
		renderer:   renderer,
		engine:     s.engine,
		frontier:   frontier.New(req.URL, req.Budget()),
		aggregator: NewAggregator(req.ScanID, s.scorePenalty),
		classifier: NewClassifier(s.snapshotCap),
		advanced:   level.Analyzes(),
		navTimeout: s.navTimeout,
		now:        s.now,
		log:        log,
	}
	c.run(ctx)
	release()

	if len(c.scanned) == 0 {
		err := fmt.Errorf("%w: none of the %d attempted pages could be loaded", ErrUnreachable, len(c.frontier.Failed()))
		if c.lastErr != nil {
			err = fmt.Errorf("%w: %w", err, c.lastErr)
		}
		log.Warn("Scan found site unreachable", logger.Error(err))
		out := Failure(FailureUnreachable, req.Metadata(), "Unable to access website", err.Error(), elapsed())
		out.FailedURLs = c.frontier.Failed()
		out.PageBudget = c.frontier.Budget()
		out.EnrichmentLevel = level
		return out
	}

	resp = s.assemble(c, req, level)
	s.enrichResponse(ctx, log, level, c, resp)
	resp.ScanDurationSeconds = durationSeconds(elapsed())

	log.Info("Scan completed",
		logger.Int("pages_scanned", resp.PagesScanned),
		logger.Int("failed_pages", len(resp.FailedURLs)),
		logger.Int("total_violations", resp.TotalViolations),
		logger.Int("compliance_score", resp.ComplianceScore),
		logger.Duration("duration", elapsed()),
	)

	return resp
}

func (s *Scanner) assemble(c *crawl, req Request, level enrich.Level) *Response {
	return &Response{
		Success:         true,
		Status:          StatusCompleted,
		Violations:      c.aggregator.Violations(),
		Counts:          c.aggregator.Counts(),
		TotalViolations: c.aggregator.Total(),
		ComplianceScore: c.aggregator.Score(),
		PagesScanned:    len(c.scanned),
		ScannedURLs:     c.scanned,
		FailedURLs:      c.frontier.Failed(),
		PageBudget:      c.frontier.Budget(),
		EnrichmentLevel: level,
		Metadata:        req.Metadata(),
	}
}

// enrichResponse attaches explanations to the violations and deep analyses to the
// response. Failures only leave the affected fields empty.
func (s *Scanner) enrichResponse(ctx context.Context, log logger.Logger, level enrich.Level, c *crawl, resp *Response) {
	if !level.Explains() {
		return
	}
	if s.provider == nil {
		log.Warn("AI provider not configured, skipping enrichment", logger.String("enrichment_level", string(level)))
		return
	}

	pipeline := enrich.New(s.provider, s.enrichCfg, log, s.enrichOpts...)

	inputs := make([]enrich.RuleInput, 0, len(resp.Violations))
	for _, v := range resp.Violations {
		inputs = append(inputs, enrich.RuleInput{
			RuleID:      v.RuleID,
			Impact:      string(v.Impact),
			Description: v.Description,
			Help:        v.Help,
			HelpURL:     v.HelpURL,
			Selector:    v.Selector,
			PageURL:     v.URL,
		})
	}

	explanations := pipeline.ExplainRules(ctx, inputs)
	explained := 0
	for i := range resp.Violations {
		if res, ok := explanations[resp.Violations[i].RuleID]; ok && res.OK() {
			resp.Violations[i].AIExplanation = res.Value
			explained++
		}
	}
	log.Info("Rule explanations finished",
		logger.Int("rules", len(explanations)),
		logger.Int("violations_explained", explained),
	)

	if !level.Analyzes() {
		return
	}

	results := pipeline.AnalyzePages(ctx, c.snapshots)
	resp.DeepAnalysis = make([]DeepAnalysis, 0, len(results))
	for _, r := range results {
		resp.DeepAnalysis = append(resp.DeepAnalysis, DeepAnalysis{
			URL:      r.URL,
			Outcome:  r.Result.Outcome,
			Analysis: r.Result.Value,
		})
	}
	log.Info("Deep analysis finished", logger.Int("pages", len(results)))
}
