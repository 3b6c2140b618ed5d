package enrich

import (
	"context"

	"github.com/v0xg/a11yscan/internal/ai"
	"github.com/v0xg/a11yscan/internal/logger"
)

// RuleInput is one violation as seen by the explanation step.
type RuleInput struct {
	RuleID      string
	Impact      string
	Description string
	Help        string
	HelpURL     string
	Selector    string
	PageURL     string
}

// RuleGroup is a distinct rule with its representative violation.
type RuleGroup struct {
	Representative RuleInput
	Occurrences    int
}

// GroupByRule folds violations into one group per rule id in first-seen order.
// The first violation of each rule is its representative.
func GroupByRule(violations []RuleInput) []RuleGroup {
	index := make(map[string]int)
	groups := make([]RuleGroup, 0)
	for _, v := range violations {
		if i, ok := index[v.RuleID]; ok {
			groups[i].Occurrences++
			continue
		}
		index[v.RuleID] = len(groups)
		groups = append(groups, RuleGroup{Representative: v, Occurrences: 1})
	}
	return groups
}

// ExplainRules requests one explanation per distinct rule. The returned map
// holds a result for every rule id; failures never affect other rules.
func (p *Pipeline) ExplainRules(ctx context.Context, violations []RuleInput) map[string]ai.Result[ai.Explanation] {
	groups := GroupByRule(violations)
	results := make(map[string]ai.Result[ai.Explanation], len(groups))

	for i, g := range groups {
		rule := g.Representative.RuleID
		if err := p.pace(ctx, i, p.cfg.ExplainDelay); err != nil {
			results[rule] = ai.CallFailed[ai.Explanation](err)
			continue
		}

		req := ai.BuildExplainRequest(ai.ViolationContext{
			RuleID:      rule,
			Impact:      g.Representative.Impact,
			Description: g.Representative.Description,
			Help:        g.Representative.Help,
			HelpURL:     g.Representative.HelpURL,
			Selector:    g.Representative.Selector,
			PageURL:     g.Representative.PageURL,
			Occurrences: g.Occurrences,
		})

		text, err := p.provider.Complete(ctx, req)
		if err != nil {
			results[rule] = ai.CallFailed[ai.Explanation](err)
		} else {
			results[rule] = ai.Decode[ai.Explanation](text)
		}

		if res := results[rule]; !res.OK() {
			p.log.Warn("Rule explanation unavailable",
				logger.String("rule_id", rule),
				logger.String("outcome", string(res.Outcome)),
				logger.Error(res.Err),
			)
		}
	}

	return results
}
