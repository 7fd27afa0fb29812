// Package trainingexport serializes correction-derived training examples as
// JSON Lines in one of the supported fine-tuning formats.
package trainingexport

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// ArtifactPrefix is the object storage prefix for export artifacts.
const ArtifactPrefix = "training-exports"

// SystemPrompt is the instruction every example is framed with.
const SystemPrompt = "You are a document filing assistant. Given a file name, the client type and a summary " +
	"of the document, reply with a JSON object containing fileType, category and targetFolder."

// Example is one supervised example. The target fields already hold the
// correction when there was one and the original prediction otherwise.
type Example struct {
	FileName       string
	ClientType     string
	ContentSummary string
	FileType       string
	Category       string
	TargetFolder   string
}

// FromCorrection maps a correction to an example.
func FromCorrection(c *domain.FilingCorrection) Example {
	return Example{
		FileName:       c.FileName,
		ClientType:     c.ClientType,
		ContentSummary: c.ContentSummary,
		FileType:       c.EffectiveFileType(),
		Category:       c.EffectiveCategory(),
		TargetFolder:   c.EffectiveTargetFolder(),
	}
}

// Prompt renders the user turn.
func (e Example) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File name: %s", e.FileName)
	if e.ClientType != "" {
		fmt.Fprintf(&b, "\nClient type: %s", e.ClientType)
	}
	if e.ContentSummary != "" {
		fmt.Fprintf(&b, "\nSummary: %s", e.ContentSummary)
	}
	return b.String()
}

// Completion renders the assistant turn.
func (e Example) Completion() string {
	raw, _ := json.Marshal(struct {
		FileType     string `json:"fileType"`
		Category     string `json:"category"`
		TargetFolder string `json:"targetFolder"`
	}{e.FileType, e.Category, e.TargetFolder})
	return string(raw)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatLine struct {
	Messages []chatMessage `json:"messages"`
}

type delimitedLine struct {
	Text string `json:"text"`
}

type alpacaLine struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Writer writes one JSON object per line.
type Writer struct {
	enc    *json.Encoder
	format domain.ExportFormat
	count  int
}

// NewWriter creates a Writer that writes format to w.
func NewWriter(w io.Writer, format domain.ExportFormat) (*Writer, error) {
	if !domain.ValidExportFormats[format] {
		return nil, domain.ErrInvalidExportFormat
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc, format: format}, nil
}

// Write serializes a single example.
func (w *Writer) Write(ex Example) error {
	var line interface{}
	switch w.format {
	case domain.ExportFormatOpenAIChat:
		line = chatLine{Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: ex.Prompt()},
			{Role: "assistant", Content: ex.Completion()},
		}}
	case domain.ExportFormatDelimitedPrompt:
		line = delimitedLine{Text: "<|system|>\n" + SystemPrompt +
			"\n<|user|>\n" + ex.Prompt() +
			"\n<|assistant|>\n" + ex.Completion()}
	case domain.ExportFormatAlpaca:
		line = alpacaLine{Instruction: SystemPrompt, Input: ex.Prompt(), Output: ex.Completion()}
	}
	if err := w.enc.Encode(line); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns how many examples were written.
func (w *Writer) Count() int {
	return w.count
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildArtifactKey returns the storage key for an export artifact.
// Format: training-exports/{job_id}/{sanitized_name}_{YYYY-MM-DD}.jsonl
func BuildArtifactKey(jobID uuid.UUID, exportName string, at time.Time) string {
	name := SanitizeFilename(exportName)
	if name == "" {
		name = "export"
	}
	return fmt.Sprintf("%s/%s/%s_%s.jsonl", ArtifactPrefix, jobID, name, at.Format("2006-01-02"))
}
