package service

import (
	"sort"

	"filewise/internal/domain"
)

const (
	minRuleCount    = 2
	maxRuleExamples = 3
)

// RuleQuery narrows mined rules to those touching a file type or category.
type RuleQuery struct {
	FileType string
	Category string
	Limit    int
}

type ruleKey struct {
	field    domain.CorrectableField
	from, to string
}

// MineRules buckets corrections by (predicted, corrected) value independently
// for file type and category, keeps buckets seen at least twice and orders them
// by count. It does not retain or mutate its input.
func MineRules(corrections []domain.FilingCorrection, q RuleQuery) []domain.ConsolidatedRule {
	buckets := map[ruleKey]*domain.ConsolidatedRule{}
	var order []ruleKey

	add := func(field domain.CorrectableField, from, to string, c *domain.FilingCorrection) {
		k := ruleKey{field: field, from: from, to: to}
		r, ok := buckets[k]
		if !ok {
			r = &domain.ConsolidatedRule{Field: field, From: from, To: to}
			buckets[k] = r
			order = append(order, k)
		}
		r.Count++
		r.AverageConfidence += (c.AIPrediction.Confidence - r.AverageConfidence) / float64(r.Count)
		if len(r.Examples) < maxRuleExamples {
			r.Examples = append(r.Examples, c.FileName)
		}
	}

	for i := range corrections {
		c := &corrections[i]
		if domain.FieldDiffers(domain.FieldFileType, c.AIPrediction, c.UserCorrection) {
			add(domain.FieldFileType, c.AIPrediction.FileType, *c.UserCorrection.FileType, c)
		}
		if domain.FieldDiffers(domain.FieldCategory, c.AIPrediction, c.UserCorrection) {
			add(domain.FieldCategory, c.AIPrediction.Category, *c.UserCorrection.Category, c)
		}
	}

	rules := make([]domain.ConsolidatedRule, 0, len(order))
	for _, k := range order {
		r := buckets[k]
		if r.Count < minRuleCount || !q.touches(r) {
			continue
		}
		rules = append(rules, *r)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Count > rules[j].Count
	})

	if q.Limit > 0 && len(rules) > q.Limit {
		rules = rules[:q.Limit]
	}
	return rules
}

func (q RuleQuery) touches(r *domain.ConsolidatedRule) bool {
	if q.FileType == "" && q.Category == "" {
		return true
	}
	switch r.Field {
	case domain.FieldFileType:
		return q.FileType != "" && (r.From == q.FileType || r.To == q.FileType)
	case domain.FieldCategory:
		return q.Category != "" && (r.From == q.Category || r.To == q.Category)
	}
	return false
}
