package completion

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-library-assistant/internal/eval/template"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIOptions configure the OpenAI completer
type OpenAIOptions struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
	// UserPrompt is the Handlebars template of the user message; it sees
	// the question as {{question}}
	UserPrompt string
}

// OpenAI calls the Chat Completions API with the instruction as the system
// message and the rendered question as the user message.
type OpenAI struct {
	client    *openai.Client
	opts      OpenAIOptions
	templates *template.Engine
}

// NewOpenAI creates an OpenAI completer. Retries are disabled; a failed call
// is reported to the caller as is.
func NewOpenAI(optFns ...func(o *OpenAIOptions)) (*OpenAI, error) {
	opts := OpenAIOptions{
		Model:               "gpt-4.1-nano",
		Temperature:         0.2,
		MaxCompletionTokens: 150,
		UserPrompt:          userPromptTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	templates := template.NewEngine()
	if err := templates.ValidateTemplate(opts.UserPrompt); err != nil {
		return nil, fmt.Errorf("invalid user prompt template: %w", err)
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(reqOpts...)
	return &OpenAI{
		client:    &client,
		opts:      opts,
		templates: templates,
	}, nil
}

// Complete implements Completer
func (o *OpenAI) Complete(ctx context.Context, instruction, question string) (string, error) {
	userPrompt, err := o.templates.Render(o.opts.UserPrompt, map[string]interface{}{
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(userPrompt),
		},
		Model:               o.opts.Model,
		Temperature:         openai.Float(o.opts.Temperature),
		MaxCompletionTokens: openai.Int(o.opts.MaxCompletionTokens),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
