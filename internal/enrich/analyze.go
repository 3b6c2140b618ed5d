package enrich

import (
	"context"
	"encoding/json"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/content"
	"github.com/v0xg/a11yscan/internal/logger"
	"github.com/v0xg/a11yscan/internal/screenshot"
)

// PageInput is an importance-tagged page ready for deep analysis.
type PageInput struct {
	URL            string
	Screenshot     []byte
	Content        *content.Content
	ViolationCount int
}

// PageResult pairs a page with its analysis outcome.
type PageResult struct {
	URL    string
	Result ai.Result[ai.PageAnalysis]
}

// AnalyzePages requests one deep analysis per page, in order. A failed page
// yields a non-OK result and the remaining pages still run.
func (p *Pipeline) AnalyzePages(ctx context.Context, pages []PageInput) []PageResult {
	results := make([]PageResult, 0, len(pages))

	for i, page := range pages {
		res := p.analyzePage(ctx, i, page)
		if !res.OK() {
			p.log.Warn("Page analysis unavailable",
				logger.String("url", page.URL),
				logger.String("outcome", string(res.Outcome)),
				logger.Error(res.Err),
			)
		}
		results = append(results, PageResult{URL: page.URL, Result: res})
	}

	return results
}

func (p *Pipeline) analyzePage(ctx context.Context, index int, page PageInput) ai.Result[ai.PageAnalysis] {
	if err := p.pace(ctx, index, p.cfg.AnalysisDelay); err != nil {
		return ai.CallFailed[ai.PageAnalysis](err)
	}

	var contentJSON []byte
	if page.Content != nil {
		data, err := json.MarshalIndent(page.Content, "", "  ")
		if err != nil {
			return ai.CallFailed[ai.PageAnalysis](err)
		}
		contentJSON = data
	}

	image := page.Screenshot
	if len(image) > 0 {
		small, err := screenshot.Downscale(image, p.cfg.MaxImageWidth)
		if err != nil {
			p.log.Debug("Sending screenshot at original size",
				logger.String("url", page.URL),
				logger.Error(err),
			)
		} else {
			image = small
		}
	}

	req := ai.BuildAnalysisRequest(page.URL, page.ViolationCount, string(contentJSON), image)
	text, err := p.provider.Complete(ctx, req)
	if err != nil {
		return ai.CallFailed[ai.PageAnalysis](err)
	}

	return ai.Decode[ai.PageAnalysis](text)
}
