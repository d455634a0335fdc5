package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/aescanero/dago-library-assistant/internal/completion"
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"go.uber.org/zap"
)

// Guards for the defaulting steps
const (
	faqMissing      = `!has(state.faq_answer) || state.faq_answer == ""`
	checkoutMissing = `!has(state.checkout_info) || state.checkout_info == ""`
)

type steps struct {
	completer completion.Completer
	logger    *zap.Logger
}

// classify asks the completion collaborator and reads its reply
func (s *steps) classify(ctx context.Context, state pipeline.State) (pipeline.Update, error) {
	question := state.Get(FieldQuestion)

	reply, err := s.completer.Complete(ctx, ClassifierInstruction, question)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	s.logger.Debug("classifier reply received",
		zap.String("run_id", pipeline.RunID(ctx)),
		zap.String("reply", reply),
	)

	c := ParseClassification(reply)
	if _, ok := c.(Unparsed); ok {
		s.logger.Warn("classifier reply is not a JSON object, using it as the FAQ answer",
			zap.String("run_id", pipeline.RunID(ctx)),
		)
	}

	return classificationUpdate(c), nil
}

// defaultFAQ runs only when classify produced no FAQ answer
func defaultFAQ(context.Context, pipeline.State) (pipeline.Update, error) {
	return pipeline.Update{FieldFAQAnswer: DefaultFAQ}, nil
}

// defaultCheckout runs only when classify produced no checkout info
func defaultCheckout(context.Context, pipeline.State) (pipeline.Update, error) {
	return pipeline.Update{FieldCheckoutInfo: DefaultCheckout}, nil
}

// respond assembles the final answer from the non-empty fields
func respond(_ context.Context, state pipeline.State) (pipeline.Update, error) {
	return pipeline.Update{FieldFinalAnswer: FormatAnswer(
		state.Get(FieldQuestion),
		state.Get(FieldFAQAnswer),
		state.Get(FieldCheckoutInfo),
	)}, nil
}

// FormatAnswer renders the answer text. Empty fields are left out.
func FormatAnswer(question, faq, checkout string) string {
	var sb strings.Builder
	sb.WriteString("Q: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	if faq != "" {
		sb.WriteString("FAQ: ")
		sb.WriteString(faq)
		sb.WriteString("\n")
	}
	if checkout != "" {
		sb.WriteString("Checkout: ")
		sb.WriteString(checkout)
	}
	return sb.String()
}
