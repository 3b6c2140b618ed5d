// Package enrich runs the tiered AI enrichment over a finished crawl: rule
// explanations first, then deep analysis of importance-tagged pages. Calls are
// issued one at a time with a fixed pause between them, and every failure is
// confined to the rule or page it belongs to.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/logger"
	"github.com/v0xg/a11yscan/internal/screenshot"
)

// Level is the depth of AI assistance a plan receives.
type Level string

const (
	LevelNone     Level = "none"
	LevelBasic    Level = "basic"
	LevelAdvanced Level = "advanced"
)

// Plan tiers accepted on scan requests.
const (
	PlanFree         = "free"
	PlanGuest        = "guest"
	PlanEssentials   = "essentials"
	PlanProfessional = "professional"
)

var planLevels = map[string]Level{
	PlanFree:         LevelNone,
	PlanGuest:        LevelBasic,
	PlanEssentials:   LevelAdvanced,
	PlanProfessional: LevelAdvanced,
}

// LevelForPlan maps a plan tier onto its enrichment level.
func LevelForPlan(plan string) (Level, bool) {
	level, ok := planLevels[strings.ToLower(strings.TrimSpace(plan))]
	return level, ok
}

// Explains reports whether rule explanations run at this level.
func (l Level) Explains() bool { return l == LevelBasic || l == LevelAdvanced }

// Analyzes reports whether deep page analysis runs at this level.
func (l Level) Analyzes() bool { return l == LevelAdvanced }

// Config holds the pacing policy.
type Config struct {
	ExplainDelay  time.Duration
	AnalysisDelay time.Duration
	MaxImageWidth uint
}

// DefaultConfig returns the standard pacing: 500ms between explanations and
// one second between page analyses.
func DefaultConfig() Config {
	return Config{
		ExplainDelay:  500 * time.Millisecond,
		AnalysisDelay: time.Second,
		MaxImageWidth: screenshot.DefaultMaxWidth,
	}
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pipeline issues enrichment calls against one provider.
type Pipeline struct {
	provider ai.Provider
	cfg      Config
	log      logger.Logger
	sleep    SleepFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSleep replaces the pacing sleep.
func WithSleep(fn SleepFunc) Option {
	return func(p *Pipeline) {
		p.sleep = fn
	}
}

// New creates a pipeline.
func New(provider ai.Provider, cfg Config, log logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	p := &Pipeline{
		provider: provider,
		cfg:      cfg,
		log:      log,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pace waits before every call but the first.
func (p *Pipeline) pace(ctx context.Context, index int, d time.Duration) error {
	if index == 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, d)
}
