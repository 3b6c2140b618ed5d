package scan

import (
	"context"

	"github.com/v0xg/a11yscan/internal/content"
	"github.com/v0xg/a11yscan/internal/crawler"
	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/frontier"
	"github.com/v0xg/a11yscan/internal/logger"
)

// pageReport is the output of one successful page audit.
type pageReport struct {
	violations int
	links      []string
	snapshot   *enrich.PageInput
}

// visit audits one frontier entry in its own rendering context. The page is
// closed on every return path. Once the audit succeeds the page is recorded
// with the aggregator, and its aggregated count feeds the importance signal.
func (c *crawl) visit(ctx context.Context, e frontier.Entry) (*pageReport, error) {
	page, err := c.renderer.NewPage(ctx)
	if err != nil {
		return nil, &PageError{URL: e.URL, Stage: "open", Err: err}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			c.log.Debug("Failed to close page", logger.String("url", e.URL), logger.Error(closeErr))
		}
	}()

	if err := page.Navigate(ctx, e.URL, c.navTimeout); err != nil {
		return nil, &PageError{URL: e.URL, Stage: "navigate", Err: err}
	}

	findings, err := c.engine.Audit(ctx, page)
	if err != nil {
		return nil, &PageError{URL: e.URL, Stage: "audit", Err: err}
	}

	first := len(c.scanned) == 0
	report := &pageReport{violations: c.aggregator.Add(e.URL, findings, c.now())}
	c.scanned = append(c.scanned, e.URL)

	html, err := page.HTML(ctx)
	if err != nil {
		// The audit stands; only link discovery and content are lost.
		c.log.Warn("Failed to read rendered document", logger.String("url", e.URL), logger.Error(err))
		return report, nil
	}

	base := page.URL(ctx)
	if base == "" {
		base = e.URL
	}
	report.links, err = crawler.ExtractLinks(html, base, c.frontier.SeedHost())
	if err != nil {
		c.log.Warn("Failed to extract links", logger.String("url", e.URL), logger.Error(err))
	}

	if !c.advanced {
		return report, nil
	}

	pageContent, err := content.Extract(html)
	if err != nil {
		c.log.Warn("Failed to extract page content", logger.String("url", e.URL), logger.Error(err))
	}

	signal := Signal{
		First:        first,
		FormControls: pageContent.FormControlCount(),
		Violations:   report.violations,
	}
	if !c.classifier.Admit(e.URL, signal) {
		return report, nil
	}

	shot, err := page.Screenshot(ctx)
	if err != nil {
		c.log.Warn("Failed to capture screenshot", logger.String("url", e.URL), logger.Error(err))
	}
	report.snapshot = &enrich.PageInput{
		URL:            e.URL,
		Screenshot:     shot,
		Content:        pageContent,
		ViolationCount: report.violations,
	}

	return report, nil
}
