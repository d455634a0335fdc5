// Package completion provides the text-completion collaborator used by the
// classify step.
//
// Two providers are available:
//   - OpenAI: the official openai-go client, instruction as system message
//   - Adapter: any client built by dago-adapters (anthropic, gemini, ollama)
//
// Example usage:
//
//	openAI, err := completion.NewOpenAI(func(o *completion.OpenAIOptions) {
//	    o.APIKey = cfg.LLMAPIKey
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := completion.WithTimeout(openAI, cfg.LLMTimeout)
//
//	reply, err := c.Complete(ctx, instruction, "When does library open?")
//
// Prompts are rendered with the Handlebars engine from internal/eval/template
// and validated when a completer is built.
package completion
