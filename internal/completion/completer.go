package completion

import (
	"context"
	"fmt"
	"time"
)

// Completer is the text-completion collaborator. It sends a fixed
// instruction and a user question and returns the model's free-text reply.
type Completer interface {
	Complete(ctx context.Context, instruction, question string) (string, error)
}

// Func adapts a function to Completer
type Func func(ctx context.Context, instruction, question string) (string, error)

// Complete calls f
func (f Func) Complete(ctx context.Context, instruction, question string) (string, error) {
	return f(ctx, instruction, question)
}

// Static returns a Completer that always replies with text
func Static(text string) Completer {
	return Func(func(context.Context, string, string) (string, error) {
		return text, nil
	})
}

// userPromptTemplate is the user turn sent alongside a system instruction
const userPromptTemplate = "Question: {{{question}}}"

// combinedPromptTemplate folds the instruction into a single user turn for
// providers driven through a plain message list
const combinedPromptTemplate = "{{{trim instruction}}}\n\nQuestion: {{{question}}}"

type timeoutCompleter struct {
	next    Completer
	timeout time.Duration
}

// WithTimeout bounds every call of next by timeout. A non-positive timeout
// returns next unchanged.
func WithTimeout(next Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return next
	}
	return &timeoutCompleter{next: next, timeout: timeout}
}

func (t *timeoutCompleter) Complete(ctx context.Context, instruction, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	reply, err := t.next.Complete(ctx, instruction, question)
	if err != nil {
		return "", fmt.Errorf("completion (timeout %s): %w", t.timeout, err)
	}
	return reply, nil
}
