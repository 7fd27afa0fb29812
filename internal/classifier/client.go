package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"filewise/internal/config"
	"filewise/internal/domain"
	"filewise/internal/port"
)

const classifyPath = "/v1/classify"

// Client implements port.Classifier against the classification service's
// JSON API.
type Client struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a classification client from an endpoint config.
func NewClient(cfg *config.ClassifierEndpointConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.Endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom base URL (for testing).
func NewClientWithEndpoint(cfg *config.ClassifierEndpointConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "classifier"
	}
	return &Client{
		name:     name,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(endpoint, "/") + classifyPath,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the endpoint in logs and rate-limit errors.
func (c *Client) Name() string {
	return c.name
}

type classifyRequest struct {
	Model       string                    `json:"model,omitempty"`
	FileName    string                    `json:"fileName"`
	ContentType string                    `json:"contentType"`
	FileData    string                    `json:"fileData"`
	ContentHash string                    `json:"contentHash,omitempty"`
	Context     port.ClassifyContext      `json:"context"`
	Hints       *port.ClassificationHints `json:"hints,omitempty"`
}

type confusionPair struct {
	Field   string `json:"field"`
	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
}

// classifyResponse models the service's per-document result. Intelligence
// fields may arrive at the top level, under extractedData or nested in
// documentAnalysis.
type classifyResponse struct {
	Summary                 string          `json:"summary"`
	FileType                string          `json:"fileType"`
	Category                string          `json:"category"`
	Confidence              *float64        `json:"confidence"`
	SuggestedFolder         string          `json:"suggestedFolder"`
	IsInternal              *bool           `json:"isInternal"`
	SuggestedChecklistItems []string        `json:"suggestedChecklistItems"`
	GeneratedDocumentCode   string          `json:"generatedDocumentCode"`
	ChecklistMatches        []string        `json:"checklistMatches"`
	IntelligenceFields      json.RawMessage `json:"intelligenceFields"`
	ExtractedData           json.RawMessage `json:"extractedData"`
	DocumentAnalysis        *struct {
		IntelligenceFields json.RawMessage `json:"intelligenceFields"`
		Reasoning          string          `json:"reasoning"`
	} `json:"documentAnalysis"`
	ClassificationReasoning string          `json:"classificationReasoning"`
	ConfusedBetween         []confusionPair `json:"confusedBetween"`
	Model                   string          `json:"model"`
}

func (c *Client) Classify(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	reqBody := classifyRequest{
		Model:       c.model,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		FileData:    base64.StdEncoding.EncodeToString(input.FileBytes),
		ContentHash: input.ContentHash,
		Context:     input.Context,
	}
	if !input.Hints.Empty() {
		reqBody.Hints = input.Hints
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s error (status %d): %s", c.name, resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, NewRateLimitError(c.name, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, c.model)
}

func parseResponse(body []byte, model string) (*port.ClassifyOutput, error) {
	var resp classifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w (raw: %s)", err, truncate(string(body), 500))
	}
	if strings.TrimSpace(resp.FileType) == "" && strings.TrimSpace(resp.Category) == "" {
		return nil, fmt.Errorf("%w: response has neither fileType nor category", domain.ErrClassificationFailed)
	}

	confidence := 0.0
	if resp.Confidence != nil && !math.IsNaN(*resp.Confidence) {
		confidence = math.Max(0, math.Min(1, *resp.Confidence))
	}

	fields := resp.IntelligenceFields
	reasoning := resp.ClassificationReasoning
	if resp.DocumentAnalysis != nil {
		if len(fields) == 0 {
			fields = resp.DocumentAnalysis.IntelligenceFields
		}
		if reasoning == "" {
			reasoning = resp.DocumentAnalysis.Reasoning
		}
	}
	if len(fields) == 0 {
		fields = resp.ExtractedData
	}

	var confused []domain.ConfusionPair
	for _, p := range resp.ConfusedBetween {
		if p.OptionA == "" || p.OptionB == "" {
			continue
		}
		switch f := domain.CorrectableField(p.Field); f {
		case domain.FieldFileType, domain.FieldCategory, domain.FieldTargetFolder:
			confused = append(confused, domain.ConfusionPair{Field: f, OptionA: p.OptionA, OptionB: p.OptionB})
		}
	}

	if resp.Model != "" {
		model = resp.Model
	}

	return &port.ClassifyOutput{
		Summary: strings.TrimSpace(resp.Summary),
		Classification: domain.Classification{
			FileType:                strings.TrimSpace(resp.FileType),
			Category:                strings.TrimSpace(resp.Category),
			TargetFolder:            strings.TrimSpace(resp.SuggestedFolder),
			Confidence:              confidence,
			IsInternal:              resp.IsInternal,
			SuggestedChecklistItems: resp.SuggestedChecklistItems,
		},
		GeneratedDocumentCode: strings.TrimSpace(resp.GeneratedDocumentCode),
		ChecklistMatches:      resp.ChecklistMatches,
		IntelligenceFields:    SanitizeFields(fields),
		Reasoning:             reasoning,
		ConfusedBetween:       confused,
		ModelUsed:             model,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
