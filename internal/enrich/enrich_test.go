package enrich_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/content"
	"github.com/v0xg/a11yscan/internal/enrich"
)

const validExplanation = `{"explanation":"Images need text alternatives.","user_impact":"Screen reader users miss the content.","how_to_fix":["Add an alt attribute"],"code_example":{"before":"<img src=a.png>","after":"<img src=a.png alt=\"Logo\">"},"estimated_time":"5 minutes"}`

const validAnalysis = "```json\n{\"summary\":\"Mostly fine.\",\"issues\":[{\"category\":\"generic_link_text\",\"severity\":\"minor\",\"description\":\"Link says click here\",\"recommendation\":\"Describe the target\"}]}\n```"

// scriptedProvider replies per call based on the prompt text.
type scriptedProvider struct {
	mu    sync.Mutex
	calls []ai.Request
	reply func(req ai.Request) (string, error)
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, req ai.Request) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	return p.reply(req)
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func TestLevelForPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan  string
		level enrich.Level
		ok    bool
	}{
		{"free", enrich.LevelNone, true},
		{"guest", enrich.LevelBasic, true},
		{"essentials", enrich.LevelAdvanced, true},
		{"Professional", enrich.LevelAdvanced, true},
		{"enterprise", "", false},
	}

	for _, tt := range tests {
		level, ok := enrich.LevelForPlan(tt.plan)
		assert.Equal(t, tt.ok, ok, tt.plan)
		assert.Equal(t, tt.level, level, tt.plan)
	}

	assert.False(t, enrich.LevelNone.Explains())
	assert.True(t, enrich.LevelBasic.Explains())
	assert.False(t, enrich.LevelBasic.Analyzes())
	assert.True(t, enrich.LevelAdvanced.Analyzes())
}

func TestGroupByRule(t *testing.T) {
	t.Parallel()

	groups := enrich.GroupByRule([]enrich.RuleInput{
		{RuleID: "image-alt", Selector: "img.a"},
		{RuleID: "label", Selector: "#email"},
		{RuleID: "image-alt", Selector: "img.b"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "image-alt", groups[0].Representative.RuleID)
	assert.Equal(t, "img.a", groups[0].Representative.Selector)
	assert.Equal(t, 2, groups[0].Occurrences)
	assert.Equal(t, "label", groups[1].Representative.RuleID)
	assert.Equal(t, 1, groups[1].Occurrences)
}

func TestExplainRules_IsolatesFailures(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: func(req ai.Request) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Rule: image-alt"):
			return validExplanation, nil
		case strings.Contains(req.Prompt, "Rule: label"):
			return "I cannot help with that.", nil
		case strings.Contains(req.Prompt, "Rule: color-contrast"):
			return `{"explanation":"","how_to_fix":[]}`, nil
		default:
			return "", errors.New("rate limited")
		}
	}}
	sleeper := &sleepRecorder{}
	p := enrich.New(provider, enrich.DefaultConfig(), nil, enrich.WithSleep(sleeper.sleep))

	results := p.ExplainRules(context.Background(), []enrich.RuleInput{
		{RuleID: "image-alt"},
		{RuleID: "label"},
		{RuleID: "color-contrast"},
		{RuleID: "region"},
		{RuleID: "image-alt"},
	})

	require.Len(t, results, 4)
	assert.Equal(t, ai.OutcomeOK, results["image-alt"].Outcome)
	require.NotNil(t, results["image-alt"].Value)
	assert.Equal(t, []string{"Add an alt attribute"}, results["image-alt"].Value.HowToFix)
	assert.Equal(t, ai.OutcomeUnparseable, results["label"].Outcome)
	assert.Equal(t, ai.OutcomeInvalid, results["color-contrast"].Outcome)
	assert.Equal(t, ai.OutcomeCallFailed, results["region"].Outcome)

	// One call per distinct rule, paced between calls only.
	assert.Len(t, provider.calls, 4)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
	}, sleeper.delays)
	assert.Contains(t, provider.calls[0].Prompt, "Occurrences in this scan: 2")
}

func TestExplainRules_CancelledContext(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: func(ai.Request) (string, error) {
		return validExplanation, nil
	}}
	p := enrich.New(provider, enrich.DefaultConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ExplainRules(ctx, []enrich.RuleInput{{RuleID: "a"}, {RuleID: "b"}})

	require.Len(t, results, 2)
	assert.Equal(t, ai.OutcomeCallFailed, results["a"].Outcome)
	assert.Equal(t, ai.OutcomeCallFailed, results["b"].Outcome)
	assert.Empty(t, provider.calls)
}

func TestAnalyzePages(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: func(req ai.Request) (string, error) {
		if strings.Contains(req.Prompt, "https://example.com/broken") {
			return "", errors.New("timeout")
		}
		return validAnalysis, nil
	}}
	sleeper := &sleepRecorder{}
	p := enrich.New(provider, enrich.DefaultConfig(), nil, enrich.WithSleep(sleeper.sleep))

	pages := []enrich.PageInput{
		{URL: "https://example.com/signup", Content: &content.Content{TextSample: "Sign up"}, ViolationCount: 3},
		{URL: "https://example.com/broken"},
		{URL: "https://example.com/contact", Screenshot: []byte("not a png")},
	}

	results := p.AnalyzePages(context.Background(), pages)

	require.Len(t, results, 3)
	assert.Equal(t, "https://example.com/signup", results[0].URL)
	assert.True(t, results[0].Result.OK())
	require.Len(t, results[0].Result.Value.Issues, 1)
	assert.Equal(t, ai.CategoryGenericLinkText, results[0].Result.Value.Issues[0].Category)

	assert.Equal(t, ai.OutcomeCallFailed, results[1].Result.Outcome)

	// An undecodable screenshot is sent as captured.
	assert.True(t, results[2].Result.OK())
	assert.Equal(t, []byte("not a png"), provider.calls[2].Image)

	assert.Contains(t, provider.calls[0].Prompt, "Sign up")
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.delays)
}
