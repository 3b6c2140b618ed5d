package main

import (
	"context"
	"fmt"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/config"
	"github.com/v0xg/a11yscan/internal/crawler"
	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/logger"
	"github.com/v0xg/a11yscan/internal/scan"
	"github.com/v0xg/a11yscan/internal/screenshot"
)

// buildScanner constructs the long-lived collaborators once: the axe-core
// payload, the AI client and the browser launcher.
func buildScanner(ctx context.Context, cfg *config.Config, log logger.Logger) (*scan.Scanner, error) {
	script, err := audit.LoadAxeScript(ctx, cfg.Axe.ScriptPath, cfg.Axe.ScriptURL)
	if err != nil {
		return nil, fmt.Errorf("load axe-core: %w", err)
	}
	engine, err := audit.NewAxeEngine(script)
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded axe-core", logger.Int("bytes", len(script)))

	var provider ai.Provider
	if cfg.AI.Enabled() {
		provider, err = ai.NewProvider(ai.ProviderConfig{
			Name:         cfg.AI.Provider,
			Model:        cfg.AI.Model,
			AnthropicKey: cfg.AI.AnthropicKey,
			OpenAIKey:    cfg.AI.OpenAIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("AI provider init failed: %w", err)
		}
		log.Info("AI enrichment enabled", logger.String("provider", provider.Name()))
	} else {
		log.Warn("No AI key configured, enrichment disabled for every plan",
			logger.String("provider", cfg.AI.Provider))
	}

	launch := crawler.NewLauncher(crawler.Options{
		Bin:       cfg.Browser.Bin,
		Headless:  cfg.Browser.Headless,
		NoSandbox: cfg.Browser.NoSandbox,
		Width:     cfg.Browser.Width,
		Height:    cfg.Browser.Height,
	})

	return scan.NewScanner(launch, engine, provider, log,
		scan.WithNavTimeout(cfg.Browser.NavTimeout),
		scan.WithScorePenalty(cfg.Scan.ScorePenalty),
		scan.WithSnapshotCap(cfg.Scan.SnapshotCap),
		scan.WithEnrichment(enrich.Config{
			ExplainDelay:  cfg.AI.ExplainDelay,
			AnalysisDelay: cfg.AI.AnalysisDelay,
			MaxImageWidth: screenshot.DefaultMaxWidth,
		}),
	), nil
}
