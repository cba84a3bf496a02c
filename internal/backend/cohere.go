package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"CohereChat/internal/session"
)

// CohereRequest represents the request body for the Cohere v2 chat API
type CohereRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// CohereResponse represents the response from the Cohere chat API.
// v2 responses carry a nested message, older ones a flat text field.
type CohereResponse struct {
	ID           string        `json:"id"`
	FinishReason string        `json:"finish_reason"`
	Message      *ReplyMessage `json:"message"`
	Text         string        `json:"text"`
	Usage        *CohereUsage  `json:"usage,omitempty"`
}

// CohereUsage reports billed tokens for a request
type CohereUsage struct {
	BilledUnits struct {
		InputTokens  float64 `json:"input_tokens"`
		OutputTokens float64 `json:"output_tokens"`
	} `json:"billed_units"`
}

// CohereErrorResponse is the body returned with non-2xx statuses
type CohereErrorResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Reply extracts the assistant content shapes from the response
func (r CohereResponse) Reply() Reply {
	return Reply{Message: r.Message, Text: r.Text}
}

// CohereClient calls the Cohere chat endpoint
type CohereClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCohere creates a Cohere client. baseURL is the API root, e.g. https://api.cohere.com
func NewCohere(apiKey, baseURL string, httpClient *http.Client, logger *slog.Logger) *CohereClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CohereClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send posts the whole history to /v2/chat
func (c *CohereClient) Send(ctx context.Context, model string, history []session.Message, temperature float64) (string, error) {
	if err := validateRequest(history, temperature); err != nil {
		return "", err
	}

	reqBody := CohereRequest{
		Model:       model,
		Messages:    toChatMessages(history),
		Temperature: temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Description: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Kind: KindUnknown, Description: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Description: fmt.Sprintf("failed to send request: %v", err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Description: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.statusError(resp, body)
	}

	var apiResp CohereResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &Error{Kind: KindUnknown, Description: "failed to unmarshal response", Err: err}
	}

	if apiResp.Usage != nil {
		c.logger.Debug("cohere usage",
			"response_id", apiResp.ID,
			"input_tokens", apiResp.Usage.BilledUnits.InputTokens,
			"output_tokens", apiResp.Usage.BilledUnits.OutputTokens,
		)
	}

	return apiResp.Reply().Content(), nil
}

func (c *CohereClient) statusError(resp *http.Response, body []byte) *Error {
	var apiErr CohereErrorResponse
	description := resp.Status
	if err := json.Unmarshal(body, &apiErr); err == nil && strings.TrimSpace(apiErr.Message) != "" {
		description = apiErr.Message
	}

	kind := KindProvider
	if resp.StatusCode == http.StatusNotFound {
		kind = KindModelNotFound
	}
	c.logger.Warn("cohere api error", "status", resp.StatusCode, "kind", kind.String(), "message", description)

	return &Error{
		Kind:        kind,
		Description: description,
		StatusCode:  resp.StatusCode,
		Err:         fmt.Errorf("API error: %s", resp.Status),
	}
}
