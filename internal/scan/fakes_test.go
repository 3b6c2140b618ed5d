package scan_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/audit"
	"github.com/v0xg/a11yscan/internal/crawler"
	"github.com/v0xg/a11yscan/internal/frontier"
)

var errNavigation = errors.New("net::ERR_NAME_NOT_RESOLVED")

// fakePage is one page of a fakeSite.
type fakePage struct {
	html     string
	findings []audit.Finding
	fail     bool
}

// fakeSite is an in-memory website keyed by normalized URL. Unknown URLs fail
// to load unless generate is set.
type fakeSite struct {
	mu        sync.Mutex
	pages     map[string]fakePage
	generate  func(url string) (fakePage, bool)
	navigated []string
	audited   map[string]int
	open      int
	launched  int
	closed    int
	launchErr error
}

func newFakeSite(pages map[string]fakePage) *fakeSite {
	site := &fakeSite{
		pages:   make(map[string]fakePage, len(pages)),
		audited: make(map[string]int),
	}
	for u, p := range pages {
		site.pages[frontier.Normalize(u)] = p
	}
	return site
}

func (s *fakeSite) lookup(url string) (fakePage, bool) {
	if p, ok := s.pages[frontier.Normalize(url)]; ok {
		return p, true
	}
	if s.generate != nil {
		return s.generate(url)
	}
	return fakePage{}, false
}

func (s *fakeSite) Launch(context.Context) (crawler.Renderer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launchErr != nil {
		return nil, s.launchErr
	}
	s.launched++
	return &fakeRenderer{site: s}, nil
}

type fakeRenderer struct {
	site *fakeSite
}

func (r *fakeRenderer) NewPage(context.Context) (crawler.Page, error) {
	r.site.mu.Lock()
	defer r.site.mu.Unlock()
	r.site.open++
	return &fakeTab{site: r.site}, nil
}

func (r *fakeRenderer) Close() error {
	r.site.mu.Lock()
	defer r.site.mu.Unlock()
	r.site.closed++
	return nil
}

// fakeTab implements crawler.Page over a fakeSite.
type fakeTab struct {
	site    *fakeSite
	current string
	page    fakePage
}

func (t *fakeTab) Navigate(_ context.Context, url string, _ time.Duration) error {
	t.site.mu.Lock()
	t.site.navigated = append(t.site.navigated, url)
	t.site.mu.Unlock()

	p, ok := t.site.lookup(url)
	if !ok || p.fail {
		return errNavigation
	}
	t.current = url
	t.page = p
	return nil
}

func (t *fakeTab) URL(context.Context) string { return t.current }

func (t *fakeTab) HTML(context.Context) (string, error) { return t.page.html, nil }

func (t *fakeTab) InjectScript(context.Context, string) error { return nil }

func (t *fakeTab) Eval(context.Context, string, ...any) ([]byte, error) { return []byte("null"), nil }

func (t *fakeTab) Screenshot(context.Context) ([]byte, error) { return []byte("png"), nil }

func (t *fakeTab) Close() error {
	t.site.mu.Lock()
	defer t.site.mu.Unlock()
	t.site.open--
	return nil
}

// fakeEngine returns the findings configured on the current fake page.
type fakeEngine struct {
	panicOn string
}

func (e *fakeEngine) Audit(_ context.Context, doc audit.Document) ([]audit.Finding, error) {
	tab := doc.(*fakeTab)
	if e.panicOn != "" && strings.Contains(tab.current, e.panicOn) {
		panic("engine exploded")
	}
	tab.site.mu.Lock()
	tab.site.audited[frontier.Normalize(tab.current)]++
	tab.site.mu.Unlock()
	return tab.page.findings, nil
}

const (
	validExplanation = `Here you go: {"explanation":"Text needs enough contrast.","user_impact":"Low vision users cannot read it.","how_to_fix":["Darken the text"],"code_example":{"before":"color:#aaa","after":"color:#333"},"estimated_time":"10 minutes"}`
	validAnalysis    = "```json\n{\"summary\":\"Form relies on placeholders.\",\"issues\":[{\"category\":\"placeholder_only_label\",\"severity\":\"serious\",\"description\":\"Email field has no label\",\"recommendation\":\"Add a visible label\"}]}\n```"
)

// fakeProvider answers explanation and analysis prompts.
type fakeProvider struct {
	mu           sync.Mutex
	failRules    map[string]bool
	explainCalls int
	analyzeCalls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, req ai.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.HasPrefix(req.Prompt, "Explain this accessibility violation") {
		p.explainCalls++
		for rule := range p.failRules {
			if strings.Contains(req.Prompt, "Rule: "+rule+"\n") {
				return "", errors.New("upstream 529 overloaded")
			}
		}
		return validExplanation, nil
	}

	p.analyzeCalls++
	return validAnalysis, nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func finding(rule string, impact audit.Impact, selector string) audit.Finding {
	return audit.Finding{
		RuleID:      rule,
		Impact:      impact,
		Description: "Ensures " + rule + " passes",
		Help:        rule + " help",
		HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/" + rule,
		Selector:    selector,
	}
}
