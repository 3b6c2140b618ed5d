package scan

import (
	"context"
	"time"

	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/crawler"
	"github.com/v0xg/a11yscan/internal/enrich"
	"github.com/v0xg/a11yscan/internal/frontier"
	"github.com/v0xg/a11yscan/internal/logger"
)

// crawl is the state of one bounded traversal. Pages are audited strictly one
// at a time, so nothing here is shared or locked.
type crawl struct {
	renderer   crawler.Renderer
	engine     audit.Engine
	frontier   *frontier.Frontier
	aggregator *Aggregator
	classifier *Classifier
	advanced   bool
	navTimeout time.Duration
	now        func() time.Time
	log        logger.Logger

	scanned   []string
	snapshots []enrich.PageInput
	lastErr   error
}

// run drains the frontier until it is empty, the budget is spent or ctx ends.
func (c *crawl) run(ctx context.Context) {
	for {
		if err := ctx.Err(); err != nil {
			c.log.Warn("Crawl interrupted", logger.Error(err), logger.Int("pages_scanned", len(c.scanned)))
			if c.lastErr == nil {
				c.lastErr = err
			}
			return
		}

		entry, ok := c.frontier.Next()
		if !ok {
			return
		}

		report, err := c.visit(ctx, entry)
		if err != nil {
			c.frontier.Fail(entry)
			c.lastErr = err
			c.log.Warn("Page audit failed", logger.String("url", entry.URL), logger.Error(err))
			continue
		}

		added := 0
		for _, link := range report.links {
			if c.frontier.Add(link) {
				added++
			}
		}

		if report.snapshot != nil {
			c.snapshots = append(c.snapshots, *report.snapshot)
		}

		c.log.Info("Page audited",
			logger.String("url", entry.URL),
			logger.Int("violations", report.violations),
			logger.Int("links_queued", added),
			logger.Bool("snapshot", report.snapshot != nil),
		)
	}
}
