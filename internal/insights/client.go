package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("insights generation is not configured")

// Generator produces a narrative report for a reconciliation result.
type Generator interface {
	Generate(ctx context.Context, result *recon.Result) (*Report, error)
}

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ Generator = (*Client)(nil)

// NewClient creates an insights client. An empty API key yields a client
// whose Generate always returns ErrDisabled, so callers can wire it
// unconditionally.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Generate builds the analyst prompt from the result summary and a small
// sample of the discrepancies, and parses the JSON report out of the
// model response.
func (c *Client) Generate(ctx context.Context, result *recon.Result) (*Report, error) {
	if c.apiKey == "" {
		return nil, ErrDisabled
	}

	prompt, err := buildPrompt(result)
	if err != nil {
		return nil, err
	}

	request := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a senior financial analyst reviewing a donation reconciliation report for a Singapore-based social service agency. Respond with a single JSON object."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		// Low temperature keeps the report grounded in the supplied figures.
		Temperature: 0.1,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, fmt.Errorf("insights API error: %s (type: %s)", errorResp.Error.Message, errorResp.Error.Type)
		}
		return nil, fmt.Errorf("insights API returned status %d: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("insights API returned no choices")
	}

	var report Report
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	return &report, nil
}

// buildPrompt renders the summary figures plus at most five examples from
// each discrepancy bucket; full transaction lists never leave the service.
func buildPrompt(result *recon.Result) (string, error) {
	s := summary.Compute(result)

	sample := struct {
		PartialMatches []recon.PartialMatch `json:"partialMatches"`
		UnmatchedA     []recon.Transaction  `json:"unmatchedA"`
		UnmatchedB     []recon.Transaction  `json:"unmatchedB"`
	}{
		PartialMatches: head(result.PartialMatches, 5),
		UnmatchedA:     head(result.UnmatchedA, 5),
		UnmatchedB:     head(result.UnmatchedB, 5),
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Reconciliation outcome:
- Perfect matches: %d
- Partial matches awaiting review: %d
- Unmatched in the processor report: %d
- Unmatched in the donor system: %d
- Reconciled amount: S$%s

Discrepancy samples:
%s

Produce a JSON object with these fields:
- "commonPatterns": 2-3 recurring discrepancy patterns you observe
- "timeSavingsEstimate": projected time saved versus a 20-hour manual process
- "riskAssessment": brief compliance/financial risk of the unreconciled items
- "successMetrics": {"timeReduction", "errorRateReduction", "closureAcceleration"} with specific figures`,
		s.PerfectMatches, s.PartialMatches, s.UnmatchedA, s.UnmatchedB,
		s.ReconciledAmount.StringFixed(2), sampleJSON), nil
}

func head[T any](list []T, n int) []T {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
