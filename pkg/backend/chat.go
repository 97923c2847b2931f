package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/pario-ai/ipstrategy/pkg/config"
	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Chat sends the prompt as a single user message to an OpenAI-compatible
// chat completion endpoint.
type Chat struct {
	cfg    config.ChatConfig
	client *openai.Client
}

// NewChat creates a Chat backend. The client is only built when an API key
// is configured; without one every call reports a ConfigurationError.
func NewChat(cfg config.ChatConfig, timeout time.Duration) *Chat {
	c := &Chat{cfg: cfg}
	if cfg.APIKey == "" {
		return c
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: httpTimeout(timeout)}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	c.client = &client
	return c
}

func (*Chat) Name() string { return "chat" }

func (c *Chat) Call(ctx context.Context, req Request) (models.Strategy, error) {
	if c.client == nil {
		return models.Strategy{}, models.Configurationf(
			"chat backend api key is not set: set chat.api_key or IPSTRATEGY_OPENAI_API_KEY")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = openai.Float(c.cfg.Temperature)
	}
	if c.cfg.TopP > 0 {
		params.TopP = openai.Float(c.cfg.TopP)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return models.Strategy{}, models.BackendFailure(apiErr.StatusCode, "chat backend returned an error", err)
		}
		return models.Strategy{}, transportFailure(err)
	}

	if len(resp.Choices) == 0 {
		return models.Strategy{}, models.BackendFailure(http.StatusOK, "chat backend returned no choices", nil)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return models.Strategy{}, models.BackendFailure(http.StatusOK, "chat backend returned an empty message", nil)
	}
	return models.Strategy{Text: text, Backend: c.Name()}, nil
}
