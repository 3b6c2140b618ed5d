package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultAxeURL is where the axe-core bundle is fetched from when no local
// script path is configured.
const DefaultAxeURL = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

const maxScriptBytes = 8 << 20

var errEmptyScript = errors.New("axe script is empty")

// runAxe runs axe with a tag filter and flattens results to one entry per
// affected node.
const runAxe = `async (tags) => {
	const results = await axe.run(document, { runOnly: { type: 'tag', values: tags }, resultTypes: ['violations'] });
	const out = [];
	for (const v of results.violations) {
		for (const node of v.nodes) {
			out.push({
				id: v.id,
				impact: node.impact || v.impact || '',
				description: v.description,
				help: v.help,
				helpUrl: v.helpUrl,
				target: (node.target || []).map(t => Array.isArray(t) ? t.join(' ') : String(t)).join(', ')
			});
		}
	}
	return out;
}`

const hasAxe = `() => typeof window.axe !== 'undefined'`

// AxeEngine injects axe-core into each page and runs it.
type AxeEngine struct {
	script string
	tags   []string
}

// NewAxeEngine creates an engine around an already loaded axe-core bundle.
func NewAxeEngine(script string) (*AxeEngine, error) {
	if script == "" {
		return nil, errEmptyScript
	}
	return &AxeEngine{script: script, tags: RuleTags}, nil
}

// LoadAxeScript reads the axe-core bundle from path when set, else downloads it
// from url. It is called once at process start.
func LoadAxeScript(ctx context.Context, path, url string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read axe script: %w", err)
		}
		return string(data), nil
	}
	if url == "" {
		url = DefaultAxeURL
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build axe request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download axe script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download axe script: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return "", fmt.Errorf("read axe script body: %w", err)
	}
	return string(data), nil
}

type axeNode struct {
	ID          string `json:"id"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
	Help        string `json:"help"`
	HelpURL     string `json:"helpUrl"`
	Target      string `json:"target"`
}

// Audit injects axe when the page does not already have it and returns one
// Finding per violating element.
func (e *AxeEngine) Audit(ctx context.Context, doc Document) ([]Finding, error) {
	present, err := doc.Eval(ctx, hasAxe)
	if err != nil {
		return nil, fmt.Errorf("probe axe: %w", err)
	}
	if string(present) != "true" {
		if err := doc.InjectScript(ctx, e.script); err != nil {
			return nil, fmt.Errorf("inject axe: %w", err)
		}
	}

	raw, err := doc.Eval(ctx, runAxe, e.tags)
	if err != nil {
		return nil, fmt.Errorf("run axe: %w", err)
	}

	var nodes []axeNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("decode axe results: %w", err)
	}

	findings := make([]Finding, 0, len(nodes))
	for _, n := range nodes {
		findings = append(findings, Finding{
			RuleID:      n.ID,
			Impact:      ParseImpact(n.Impact),
			Description: n.Description,
			Help:        n.Help,
			HelpURL:     n.HelpURL,
			Selector:    n.Target,
		})
	}
	return findings, nil
}
