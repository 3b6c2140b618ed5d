package ai

import (
	"errors"
	"fmt"
)

// Explanation is the plain-language write-up of one accessibility rule.
type Explanation struct {
	Explanation   string      `json:"explanation"`
	UserImpact    string      `json:"user_impact"`
	HowToFix      []string    `json:"how_to_fix"`
	CodeExample   CodeExample `json:"code_example"`
	EstimatedTime string      `json:"estimated_time"`
}

// CodeExample shows markup before and after the fix.
type CodeExample struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Validate rejects explanations without text or fix steps.
func (e *Explanation) Validate() error {
	if e.Explanation == "" {
		return errors.New("explanation: missing explanation text")
	}
	if len(e.HowToFix) == 0 {
		return errors.New("explanation: missing fix steps")
	}
	return nil
}

// Issue categories the deep analysis may report. Anything the rule engine
// already covers is deliberately absent.
const (
	CategoryTouchTarget        = "touch_target_size"
	CategoryFocusIndicator     = "focus_indicator"
	CategoryTextInImage        = "text_in_image"
	CategoryLayout             = "layout"
	CategoryReadingLevel       = "reading_level"
	CategoryPlaceholderLabel   = "placeholder_only_label"
	CategoryGenericLinkText    = "generic_link_text"
	CategoryErrorMessage       = "error_message_quality"
	CategorySensoryInstruction = "sensory_instruction"
)

var knownCategories = map[string]struct{}{
	CategoryTouchTarget: {}, CategoryFocusIndicator: {}, CategoryTextInImage: {},
	CategoryLayout: {}, CategoryReadingLevel: {}, CategoryPlaceholderLabel: {},
	CategoryGenericLinkText: {}, CategoryErrorMessage: {}, CategorySensoryInstruction: {},
}

// PageAnalysis is the deep, visual and content-quality review of one page.
type PageAnalysis struct {
	Summary string  `json:"summary"`
	Issues  []Issue `json:"issues"`
}

// Issue is one observation from the deep analysis.
type Issue struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Element        string `json:"element,omitempty"`
	Recommendation string `json:"recommendation"`
	WCAGCriterion  string `json:"wcag_criterion,omitempty"`
}

// Validate requires a summary or an issue list. Issues outside the known
// categories, or without a description, are dropped.
func (a *PageAnalysis) Validate() error {
	if a.Summary == "" && a.Issues == nil {
		return errors.New("page analysis: missing summary and issues")
	}

	kept := make([]Issue, 0, len(a.Issues))
	for _, issue := range a.Issues {
		if _, ok := knownCategories[issue.Category]; !ok || issue.Description == "" {
			continue
		}
		kept = append(kept, issue)
	}
	if len(a.Issues) > 0 && len(kept) == 0 && a.Summary == "" {
		return fmt.Errorf("page analysis: none of %d issues usable", len(a.Issues))
	}
	a.Issues = kept

	return nil
}
