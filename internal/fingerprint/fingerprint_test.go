package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_KnownValues(t *testing.T) {
	assert.Equal(t, "00001505", Hash(""))
	assert.Equal(t, "0002b606", Hash("a"))
}

func TestHash_Deterministic(t *testing.T) {
	content := "Red Book Valuation - 28 Wimbledon Park Road"
	assert.Equal(t, Hash(content), Hash(content))
	assert.Len(t, Hash(content), 8)
}

func TestHash_IgnoresCaseAndSurroundingWhitespace(t *testing.T) {
	assert.Equal(t, Hash("Facility Letter"), Hash("  facility letter\n"))
	assert.Equal(t, Hash("TERM SHEET"), Hash("term sheet"))
}

func TestHash_DiffersForDifferentPrefix(t *testing.T) {
	assert.NotEqual(t, Hash("valuation report v1"), Hash("valuation report v2"))
}

func TestHash_OnlyPrefixContributes(t *testing.T) {
	prefix := strings.Repeat("x", MaxHashedChars)
	assert.Equal(t, Hash(prefix+"tail one"), Hash(prefix+"tail two"))
}

func TestHash_NeverNegative(t *testing.T) {
	for _, s := range []string{"zzzzzzzzzzzzzzzz", strings.Repeat("ÿ", 50), "appraisal"} {
		h := Hash(s)
		assert.Len(t, h, 8)
		assert.NotContains(t, h, "-")
	}
}

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Valuation_Report-2024.pdf", "valuation report #"},
		{"  Bank   Statement 03.2025.PDF ", "bank statement # #"},
		{"term-sheet_v12.docx", "term sheet v#"},
		{"README", "readme"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFilename(tt.in))
		})
	}
}

func TestNormalizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"Valuation_Report-2024.pdf",
		"a.b.c.d",
		"Scan 0001 (copy).jpeg",
		"WIMBPARK28-APPRAISAL-EXT-JS-V1.0-2026-01-12.pdf",
	}
	for _, in := range inputs {
		once := NormalizeFilename(in)
		assert.Equal(t, once, NormalizeFilename(once), in)
	}
}

func TestCompute(t *testing.T) {
	fp := Compute("Some content", "Some_File.pdf")
	assert.Equal(t, Hash("Some content"), fp.Hash)
	assert.Equal(t, "some file", fp.NormalizedFilename)
}
