package services

import (
	"context"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkg/errors"
)

const DefaultChatModel = "gpt-4o"

// Answerer 将组装好的提示词发送给语言模型并返回文本回答
type Answerer interface {
	Answer(ctx context.Context, prompt, model string) (string, error)
}

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIAnswerer talks to an OpenAI-compatible chat completions endpoint.
type OpenAIAnswerer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnswerer(opts OpenAIOptions) *OpenAIAnswerer {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// 失败直接返回给调用方，不做重试
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIAnswerer{client: &client, model: model}
}

// Answer sends prompt as a single user message. An empty model selects the
// configured default.
func (a *OpenAIAnswerer) Answer(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = a.model
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &GenerationError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &GenerationError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
