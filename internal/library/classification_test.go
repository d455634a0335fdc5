package library

import (
	"testing"

	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Classification
	}{
		{"object", `{"faq_answer": "9am-5pm", "checkout_info": ""}`, Parsed{FAQ: "9am-5pm"}},
		{"both fields", `{"faq_answer": "a", "checkout_info": "b"}`, Parsed{FAQ: "a", Checkout: "b"}},
		{"missing keys", `{}`, Parsed{}},
		{"null values", `{"faq_answer": null, "checkout_info": null}`, Parsed{}},
		{"false and zero", `{"faq_answer": false, "checkout_info": 0}`, Parsed{}},
		{"empty containers", `{"faq_answer": [], "checkout_info": {}}`, Parsed{}},
		{"zero float", `{"faq_answer": 0.0}`, Parsed{}},
		{"truthy non-strings", `{"faq_answer": true, "checkout_info": 2}`, Parsed{FAQ: "true", Checkout: "2"}},
		{"non-empty containers", `{"faq_answer": ["9am"], "checkout_info": {"copies": 2}}`, Parsed{FAQ: `["9am"]`, Checkout: `{"copies": 2}`}},
		{"repeated key keeps last", `{"faq_answer": "a", "faq_answer": "b"}`, Parsed{FAQ: "b"}},
		{"surrounding whitespace", "\n {\"checkout_info\": \"On shelf\"} \n", Parsed{Checkout: "On shelf"}},
		{"plain text", "The library opens at 9am.", Unparsed{Raw: "The library opens at 9am."}},
		{"empty reply", "", Unparsed{Raw: ""}},
		{"truncated json", `{"faq_answer": "9am`, Unparsed{Raw: `{"faq_answer": "9am`}},
		{"json array", `["9am"]`, Unparsed{Raw: `["9am"]`}},
		{"json string", `"9am"`, Unparsed{Raw: `"9am"`}},
		{"fenced json", "```json\n{\"faq_answer\": \"x\"}\n```", Unparsed{Raw: "```json\n{\"faq_answer\": \"x\"}\n```"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClassification(tt.reply))
		})
	}
}

func TestClassificationUpdate(t *testing.T) {
	assert.Equal(t,
		pipeline.Update{FieldFAQAnswer: "9am-5pm", FieldCheckoutInfo: ""},
		classificationUpdate(Parsed{FAQ: "9am-5pm"}),
	)
	assert.Equal(t,
		pipeline.Update{FieldFAQAnswer: "not json", FieldCheckoutInfo: ""},
		classificationUpdate(Unparsed{Raw: "not json"}),
	)
}
