package ai

import (
	"fmt"
	"strings"
)

const explainSystemPrompt = `You are an accessibility consultant explaining automated WCAG audit results to website owners who are not accessibility experts.

Respond ONLY with a JSON object of this shape, no markdown:
{
  "explanation": "what the rule means, in one or two plain sentences",
  "user_impact": "who is affected and how",
  "how_to_fix": ["step 1", "step 2"],
  "code_example": {"before": "<failing markup>", "after": "<fixed markup>"},
  "estimated_time": "e.g. 15 minutes"
}`

const explainPrompt = `Explain this accessibility violation.

Rule: %s
Impact: %s
Description: %s
Help: %s
Reference: %s
Example element: %s
Found on: %s
Occurrences in this scan: %d`

const analysisSystemPrompt = `You are an expert accessibility auditor reviewing a web page screenshot together with structured data extracted from its DOM.

An automated rule engine (axe-core) has ALREADY checked this page. Do NOT report anything it covers: color contrast ratios, missing alt attributes, missing form labels in markup, ARIA attribute validity, heading order, document language, landmark structure, duplicate ids.

Report ONLY issues observable visually or from content quality:
- touch_target_size: interactive targets that look smaller than 24x24 CSS px or are crowded together
- focus_indicator: controls likely to have no visible focus state
- text_in_image: meaningful text rendered as an image
- layout: content that would break on zoom/reflow, overlapping or truncated text
- reading_level: text considerably harder to read than its audience needs
- placeholder_only_label: fields relying on placeholder text as their only label
- generic_link_text: links or buttons like "click here" or "read more"
- error_message_quality: error messages that are vague, missing, or not tied to a field
- sensory_instruction: instructions relying on color, shape, size, or position

Respond ONLY with a JSON object of this shape, no markdown:
{
  "summary": "one paragraph overall assessment",
  "issues": [
    {"category": "<one of the categories above>", "severity": "critical|serious|moderate|minor", "description": "...", "element": "selector or visible text", "recommendation": "...", "wcag_criterion": "e.g. 2.5.8"}
  ]
}
If nothing qualifies, return an empty issues array.`

const analysisPrompt = `Page: %s
Automated violations already reported for this page: %d

Structured page data:
%s`

// ViolationContext is what the explanation prompt needs about one rule.
type ViolationContext struct {
	RuleID      string
	Impact      string
	Description string
	Help        string
	HelpURL     string
	Selector    string
	PageURL     string
	Occurrences int
}

// BuildExplainRequest builds the request explaining one rule.
func BuildExplainRequest(v ViolationContext) Request {
	return Request{
		System: explainSystemPrompt,
		Prompt: fmt.Sprintf(explainPrompt,
			v.RuleID, v.Impact, v.Description, v.Help, v.HelpURL, v.Selector, v.PageURL, v.Occurrences),
		MaxTokens: 1024,
	}
}

// BuildAnalysisRequest builds the deep-analysis request for one page.
// contentJSON is the page's structured content.
func BuildAnalysisRequest(pageURL string, violationCount int, contentJSON string, screenshot []byte) Request {
	if strings.TrimSpace(contentJSON) == "" {
		contentJSON = "{}"
	}
	return Request{
		System:    analysisSystemPrompt,
		Prompt:    fmt.Sprintf(analysisPrompt, pageURL, violationCount, contentJSON),
		Image:     screenshot,
		MaxTokens: 2048,
	}
}
