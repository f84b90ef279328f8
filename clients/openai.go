package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

const (
	lyricTemperature = 0.8
	lyricMaxTokens   = 1024
)

// OpenAILyrics writes lyrics with an OpenAI-compatible chat completion API.
type OpenAILyrics struct {
	client *openai.Client
	model  string

	// Log receives token usage. Nil means the standard logrus logger.
	Log logrus.FieldLogger
}

// NewOpenAILyrics builds a lyric writer. baseURL may be empty for the
// default endpoint.
func NewOpenAILyrics(apiKey, baseURL, model string, opts ...option.RequestOption) (*OpenAILyrics, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai lyrics: missing api key")
	}
	if model == "" {
		return nil, fmt.Errorf("openai lyrics: missing model")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	client := openai.NewClient(reqOpts...)
	return &OpenAILyrics{client: &client, model: model}, nil
}

func (o *OpenAILyrics) Generate(ctx context.Context, req LyricRequest) (string, error) {
	system, user := BuildLyricPrompt(req)
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(lyricMaxTokens),
		Temperature: openai.Float(lyricTemperature),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices returned")
	}

	loggerOr(o.Log).WithFields(logrus.Fields{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"finish_reason":     resp.Choices[0].FinishReason,
	}).Debug("lyrics generated")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
