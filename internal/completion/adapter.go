package completion

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-libs/pkg/domain"
	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/aescanero/dago-library-assistant/internal/eval/template"
)

// adapterMaxTokens caps replies from dago-adapters providers
const adapterMaxTokens = 150

// Adapter drives any dago-adapters LLM client (anthropic, gemini, ollama,
// openai-compatible) through a single user message.
type Adapter struct {
	client    ports.LLMClient
	model     string
	templates *template.Engine
}

// NewAdapter wraps an LLM client built by dago-adapters
func NewAdapter(client ports.LLMClient, model string) (*Adapter, error) {
	templates := template.NewEngine()
	if err := templates.ValidateTemplate(combinedPromptTemplate); err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}

	return &Adapter{
		client:    client,
		model:     model,
		templates: templates,
	}, nil
}

// Complete implements Completer
func (a *Adapter) Complete(ctx context.Context, instruction, question string) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("llm client not configured")
	}

	prompt, err := a.templates.Render(combinedPromptTemplate, map[string]interface{}{
		"instruction": instruction,
		"question":    question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	req := &domain.LLMRequest{
		Model: a.model,
		Messages: []domain.Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: adapterMaxTokens,
	}

	respInterface, err := a.client.GenerateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	resp, ok := respInterface.(*domain.LLMResponse)
	if !ok {
		return "", fmt.Errorf("unexpected response type from LLM: %T", respInterface)
	}

	return resp.Content, nil
}
