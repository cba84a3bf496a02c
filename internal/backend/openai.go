package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"CohereChat/internal/session"
)

// OpenAIClient calls an OpenAI-compatible chat completions API
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAI creates a client. An empty baseURL uses the SDK default.
// SDK retries are disabled, every turn makes exactly one call.
func NewOpenAI(apiKey, baseURL string, httpClient *http.Client) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Send runs one chat completion over the whole history
func (c *OpenAIClient) Send(ctx context.Context, model string, history []session.Message, temperature float64) (string, error) {
	if err := validateRequest(history, temperature); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for i, msg := range history {
		switch msg.Role {
		case session.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return "", invalidRequest(fmt.Sprintf("invalid message role at index %d: %q", i, msg.Role))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}

	msg := completion.Choices[0].Message
	reply := Reply{Text: msg.Refusal}
	if msg.Content != "" {
		reply.Message = &ReplyMessage{
			Role:    string(msg.Role),
			Content: []ContentBlock{{Type: "text", Text: msg.Content}},
		}
	}
	return reply.Content(), nil
}

func classifyOpenAIError(err error) *Error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &Error{Kind: KindUnknown, Description: err.Error(), Err: err}
	}

	description := strings.TrimSpace(apiErr.Message)
	if description == "" {
		description = http.StatusText(apiErr.StatusCode)
	}
	kind := KindProvider
	if apiErr.StatusCode == http.StatusNotFound {
		kind = KindModelNotFound
	}
	return &Error{
		Kind:        kind,
		Description: description,
		StatusCode:  apiErr.StatusCode,
		Err:         err,
	}
}
