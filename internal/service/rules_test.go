package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
	"filewise/internal/service"
)

func TestMineRules_RepeatedCorrectionBecomesRule(t *testing.T) {
	in := []domain.FilingCorrection{
		correction("q1.pdf", "Other", "Performance", strPtr("Track Record")),
		correction("q2.pdf", "Other", "Performance", strPtr("Track Record")),
		correction("q3.pdf", "Other", "Performance", strPtr("Track Record")),
		correction("q4.pdf", "Other", "Performance", strPtr("Track Record")),
	}
	in[0].AIPrediction.Confidence = 0.2
	in[1].AIPrediction.Confidence = 0.4

	rules := service.MineRules(in, service.RuleQuery{})

	require.Len(t, rules, 1)
	r := rules[0]
	assert.Equal(t, domain.FieldFileType, r.Field)
	assert.Equal(t, 4, r.Count)
	assert.InDelta(t, 0.45, r.AverageConfidence, 1e-9)
	assert.Equal(t, []string{"q1.pdf", "q2.pdf", "q3.pdf"}, r.Examples)
}

func TestMineRules_SingleCorrectionIsNotARule(t *testing.T) {
	rules := service.MineRules([]domain.FilingCorrection{
		correction("lease.pdf", "Other", "Legal", strPtr("Lease")),
	}, service.RuleQuery{})

	assert.Empty(t, rules)
}

func TestMineRules_FieldsBucketedIndependently(t *testing.T) {
	withCategory := func(name string) domain.FilingCorrection {
		c := correction(name, "Other", "Misc", strPtr("Track Record"))
		c.UserCorrection.Category = strPtr("Performance")
		return c
	}
	in := []domain.FilingCorrection{withCategory("a.pdf"), withCategory("b.pdf"), withCategory("c.pdf")}
	in = append(in, correction("d.pdf", "Memo", "Misc", strPtr("Letter")), correction("e.pdf", "Memo", "Misc", strPtr("Letter")))

	rules := service.MineRules(in, service.RuleQuery{})

	require.Len(t, rules, 3)
	assert.Equal(t, 3, rules[0].Count)
	assert.Equal(t, 3, rules[1].Count)
	assert.Equal(t, domain.FieldFileType, rules[0].Field)
	assert.Equal(t, domain.FieldCategory, rules[1].Field)
	assert.Equal(t, "Memo", rules[2].From)
}

func TestMineRules_QueryAndLimit(t *testing.T) {
	in := []domain.FilingCorrection{
		correction("a.pdf", "Other", "Misc", strPtr("Track Record")),
		correction("b.pdf", "Other", "Misc", strPtr("Track Record")),
		correction("c.pdf", "Memo", "Misc", strPtr("Letter")),
		correction("d.pdf", "Memo", "Misc", strPtr("Letter")),
	}

	rules := service.MineRules(in, service.RuleQuery{FileType: "Letter"})
	require.Len(t, rules, 1)
	assert.Equal(t, "Memo", rules[0].From)

	rules = service.MineRules(in, service.RuleQuery{Category: "Misc"})
	assert.Empty(t, rules)

	rules = service.MineRules(in, service.RuleQuery{Limit: 1})
	require.Len(t, rules, 1)
	assert.Equal(t, "Other", rules[0].From)
}
