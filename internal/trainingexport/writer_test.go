package trainingexport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
)

func sampleExample() Example {
	return Example{
		FileName:       "Track_Record_2024.pdf",
		ClientType:     "developer",
		ContentSummary: "Schedule of completed schemes",
		FileType:       "Track Record",
		Category:       "Borrower",
		TargetFolder:   "KYC",
	}
}

func readLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewWriter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, domain.ExportFormat("csv"))
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestWriter_OpenAIChat(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, domain.ExportFormatOpenAIChat)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleExample()))
	require.NoError(t, w.Write(sampleExample()))
	assert.Equal(t, 2, w.Count())

	lines := readLines(t, &buf)
	require.Len(t, lines, 2)
	msgs := lines[0]["messages"].([]interface{})
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", msgs[1].(map[string]interface{})["role"])
	assistant := msgs[2].(map[string]interface{})
	assert.Equal(t, "assistant", assistant["role"])
	assert.JSONEq(t, `{"fileType":"Track Record","category":"Borrower","targetFolder":"KYC"}`, assistant["content"].(string))
}

func TestWriter_DelimitedPrompt(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, domain.ExportFormatDelimitedPrompt)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleExample()))

	assert.Contains(t, buf.String(), "<|system|>", "role markers are not HTML-escaped")
	lines := readLines(t, &buf)
	require.Len(t, lines, 1)
	text := lines[0]["text"].(string)
	assert.True(t, strings.HasPrefix(text, "<|system|>\n"))
	assert.Contains(t, text, "\n<|user|>\nFile name: Track_Record_2024.pdf")
	assert.Contains(t, text, "\n<|assistant|>\n{")
}

func TestWriter_Alpaca(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, domain.ExportFormatAlpaca)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleExample()))

	lines := readLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, SystemPrompt, lines[0]["instruction"])
	assert.Contains(t, lines[0]["input"], "Client type: developer")
	assert.Contains(t, lines[0]["output"], `"fileType":"Track Record"`)
}

func TestFromCorrection_CorrectionWins(t *testing.T) {
	ft := "Track Record"
	c := &domain.FilingCorrection{
		FileName:       "tr.pdf",
		AIPrediction:   domain.AIPrediction{FileType: "Other", Category: "Borrower", TargetFolder: "Misc"},
		UserCorrection: domain.UserCorrection{FileType: &ft},
	}
	ex := FromCorrection(c)
	assert.Equal(t, "Track Record", ex.FileType)
	assert.Equal(t, "Borrower", ex.Category)
	assert.Equal(t, "Misc", ex.TargetFolder)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q1_valuations_2026", SanitizeFilename("Q1 valuations / 2026"))
	assert.Equal(t, "a-b_c", SanitizeFilename("__a-b___c__"))
	assert.Len(t, SanitizeFilename(strings.Repeat("x", 150)), 100)
}

func TestBuildArtifactKey(t *testing.T) {
	id := uuid.MustParse("7b0f1c7e-3c1e-4a4e-9d7e-2f0c0d7b9a11")
	at := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"training-exports/7b0f1c7e-3c1e-4a4e-9d7e-2f0c0d7b9a11/March_run_2026-01-12.jsonl",
		BuildArtifactKey(id, "March run", at))
	assert.Equal(t,
		"training-exports/7b0f1c7e-3c1e-4a4e-9d7e-2f0c0d7b9a11/export_2026-01-12.jsonl",
		BuildArtifactKey(id, "???", at))
}
