// Package insights generates the optional human-facing narrative over a
// finished reconciliation. It lives strictly outside the engine: the call
// is network-bound, context-cancellable and best-effort, and nothing in
// the matching pipeline depends on it.
package insights

// Report is the analyst-style narrative rendered on the dashboard.
type Report struct {
	CommonPatterns      []string       `json:"commonPatterns"`
	TimeSavingsEstimate string         `json:"timeSavingsEstimate"`
	RiskAssessment      string         `json:"riskAssessment"`
	SuccessMetrics      SuccessMetrics `json:"successMetrics"`
}

// SuccessMetrics quantifies projected process improvements.
type SuccessMetrics struct {
	TimeReduction       string `json:"timeReduction"`
	ErrorRateReduction  string `json:"errorRateReduction"`
	ClosureAcceleration string `json:"closureAcceleration"`
}

// chatCompletionRequest is the OpenAI chat completion payload.
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
