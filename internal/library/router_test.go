package library

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aescanero/dago-library-assistant/internal/completion"
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"
)

func newTestRouter(t *testing.T, reply string, opts ...pipeline.Option) *Router {
	t.Helper()
	r, err := NewRouter(completion.Static(reply), zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return r
}

func TestRouter_OpeningHoursExample(t *testing.T) {
	r := newTestRouter(t, `{"faq_answer": "9am-5pm", "checkout_info": ""}`)

	final, err := r.Run(context.Background(), pipeline.NewState(map[string]string{
		FieldQuestion: "When does library open?",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9am-5pm", final.Get(FieldFAQAnswer))
	assert.Equal(t, "Checkout info: Not requested", final.Get(FieldCheckoutInfo))
	assert.Equal(t,
		"Q: When does library open?\nFAQ: 9am-5pm\nCheckout: Checkout info: Not requested",
		final.Get(FieldFinalAnswer),
	)
}

func TestRouter_BothFieldsEmpty(t *testing.T) {
	r := newTestRouter(t, `{"faq_answer": "", "checkout_info": ""}`)

	answer, err := r.Answer(context.Background(), "Hello?")
	require.NoError(t, err)

	assert.Equal(t, "Q: Hello?\nFAQ: Default FAQ: Library rules apply\nCheckout: Checkout info: Not requested", answer)
}

func TestRouter_CheckoutOnly(t *testing.T) {
	r := newTestRouter(t, `{"faq_answer": "", "checkout_info": "The Hobbit is on shelf 3"}`)

	answer, err := r.Answer(context.Background(), "Is The Hobbit available?")
	require.NoError(t, err)

	assert.Equal(t, "Q: Is The Hobbit available?\nFAQ: Default FAQ: Library rules apply\nCheckout: The Hobbit is on shelf 3", answer)
}

func TestRouter_MalformedReply(t *testing.T) {
	r := newTestRouter(t, "The library opens at 9am.")

	final, err := r.Run(context.Background(), pipeline.NewState(map[string]string{
		FieldQuestion: "When does library open?",
	}))
	require.NoError(t, err)

	assert.Equal(t, "The library opens at 9am.", final.Get(FieldFAQAnswer))
	assert.Equal(t, DefaultCheckout, final.Get(FieldCheckoutInfo))
	assert.Equal(t, "Q: When does library open?\nFAQ: The library opens at 9am.\nCheckout: Checkout info: Not requested", final.Get(FieldFinalAnswer))
}

func TestRouter_ClassifyWritesBothFieldsOnMalformedReply(t *testing.T) {
	var afterClassify pipeline.StepEvent
	r := newTestRouter(t, "not json", pipeline.WithObserver(pipeline.ObserverFunc(func(_ context.Context, e pipeline.StepEvent) error {
		if e.Step == StepClassify {
			afterClassify = e
		}
		return nil
	})))

	_, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, pipeline.StepCompleted, afterClassify.Status)
	assert.Equal(t, []string{FieldCheckoutInfo, FieldFAQAnswer}, afterClassify.Fields)
}

func TestRouter_SendsInstructionAndQuestion(t *testing.T) {
	var gotInstruction, gotQuestion string
	c := completion.Func(func(_ context.Context, instruction, question string) (string, error) {
		gotInstruction, gotQuestion = instruction, question
		return `{"faq_answer": "x"}`, nil
	})

	r, err := NewRouter(c, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = r.Answer(context.Background(), "Is The Hobbit available?")
	require.NoError(t, err)

	assert.Equal(t, ClassifierInstruction, gotInstruction)
	assert.Equal(t, "Is The Hobbit available?", gotQuestion)
}

func TestRouter_CompletionError(t *testing.T) {
	down := errors.New("connection refused")
	c := completion.Func(func(context.Context, string, string) (string, error) {
		return "", down
	})

	r, err := NewRouter(c, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = r.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, down)

	var stepErr *pipeline.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepClassify, stepErr.Step)
}

func TestRouter_ParallelBranches(t *testing.T) {
	replies := []string{
		`{"faq_answer": "9am-5pm", "checkout_info": ""}`,
		`{"faq_answer": "", "checkout_info": "available"}`,
		`{}`,
		"plain",
	}

	for _, reply := range replies {
		seq := newTestRouter(t, reply)
		par := newTestRouter(t, reply, pipeline.WithParallelLevels(true))

		want, err := seq.Answer(context.Background(), "q")
		require.NoError(t, err)
		got, err := par.Answer(context.Background(), "q")
		require.NoError(t, err)

		assert.Equal(t, want, got, reply)
	}
}

func TestNewGraph_Topology(t *testing.T) {
	g, err := NewGraph(completion.Static(""), nil)
	require.NoError(t, err)

	assert.Equal(t, StepClassify, g.Start())
	assert.Equal(t, StepRespond, g.Terminal())
	assert.Equal(t, [][]string{{StepClassify}, {StepFAQ, StepCheckout}, {StepRespond}}, g.Levels())
	assert.Equal(t, []pipeline.Edge{
		{From: StepClassify, To: StepFAQ},
		{From: StepClassify, To: StepCheckout},
		{From: StepFAQ, To: StepRespond},
		{From: StepCheckout, To: StepRespond},
	}, g.Edges())
}

func TestNewGraph_RequiresCompleter(t *testing.T) {
	_, err := NewGraph(nil, nil)
	assert.Error(t, err)
}

func TestFormatAnswer(t *testing.T) {
	assert.Equal(t, "Q: q\nFAQ: f\nCheckout: c", FormatAnswer("q", "f", "c"))

	faqOnly := FormatAnswer("q", "f", "")
	assert.Contains(t, faqOnly, "FAQ: f")
	assert.NotContains(t, faqOnly, "Checkout:")

	checkoutOnly := FormatAnswer("q", "", "c")
	assert.Contains(t, checkoutOnly, "Checkout: c")
	assert.NotContains(t, checkoutOnly, "FAQ:")

	assert.Equal(t, "Q: q\n", FormatAnswer("q", "", ""))
}

func TestRouter_AnswerStartsWithQuestion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		question := rapid.String().Draw(rt, "question")
		faq := rapid.String().Draw(rt, "faq")
		checkout := rapid.String().Draw(rt, "checkout")

		var reply string
		if rapid.Bool().Draw(rt, "json_reply") {
			reply = `{"faq_answer": ` + quote(faq) + `, "checkout_info": ` + quote(checkout) + `}`
		} else {
			reply = faq
		}

		r, err := NewRouter(completion.Static(reply), nil)
		if err != nil {
			rt.Fatalf("NewRouter: %v", err)
		}

		answer, err := r.Answer(context.Background(), question)
		if err != nil {
			rt.Fatalf("Answer: %v", err)
		}

		if !strings.HasPrefix(answer, "Q: "+question+"\n") {
			rt.Fatalf("answer %q does not start with the question %q", answer, question)
		}
		if !strings.Contains(answer, "\nFAQ: ") || !strings.Contains(answer, "Checkout: ") {
			rt.Fatalf("answer %q is missing a branch line", answer)
		}
	})
}

// quote encodes s as a JSON string literal
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r < 0x20:
			sb.WriteString(`\u00`)
			sb.WriteByte("0123456789abcdef"[r>>4])
			sb.WriteByte("0123456789abcdef"[r&0xf])
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func TestRouter_FalsyFieldsGetPlaceholders(t *testing.T) {
	r := newTestRouter(t, `{"faq_answer": false, "checkout_info": 0}`)

	answer, err := r.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Q: q\nFAQ: Default FAQ: Library rules apply\nCheckout: Checkout info: Not requested", answer)
}
