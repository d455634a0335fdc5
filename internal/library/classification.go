package library

import (
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/tidwall/gjson"
)

// Classification is the result of reading a classifier reply: Parsed or Unparsed
type Classification interface {
	isClassification()
}

// Parsed is a reply that was a JSON object. Missing keys and falsy values
// (null, false, 0, "", [], {}) are empty.
type Parsed struct {
	FAQ      string
	Checkout string
}

// Unparsed is a reply that was not a JSON object
type Unparsed struct {
	Raw string
}

func (Parsed) isClassification()   {}
func (Unparsed) isClassification() {}

// ParseClassification reads a classifier reply
func ParseClassification(reply string) Classification {
	if !gjson.Valid(reply) {
		return Unparsed{Raw: reply}
	}

	obj := gjson.Parse(reply)
	if !obj.IsObject() {
		return Unparsed{Raw: reply}
	}

	// A repeated key keeps its last value
	var faq, checkout gjson.Result
	obj.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case FieldFAQAnswer:
			faq = value
		case FieldCheckoutInfo:
			checkout = value
		}
		return true
	})

	return Parsed{
		FAQ:      fieldText(faq),
		Checkout: fieldText(checkout),
	}
}

// fieldText returns the text of a reply field, or "" for a falsy value
func fieldText(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		if r.Float() == 0 {
			return ""
		}
		return r.Raw
	case gjson.True:
		return r.Raw
	case gjson.JSON:
		if (r.IsArray() && len(r.Array()) == 0) || (r.IsObject() && len(r.Map()) == 0) {
			return ""
		}
		return r.Raw
	default:
		return ""
	}
}

// classificationUpdate turns a classification into the classify step update.
// An unparsed reply becomes the FAQ answer as a whole.
func classificationUpdate(c Classification) pipeline.Update {
	switch v := c.(type) {
	case Parsed:
		return pipeline.Update{
			FieldFAQAnswer:    v.FAQ,
			FieldCheckoutInfo: v.Checkout,
		}
	case Unparsed:
		return pipeline.Update{
			FieldFAQAnswer:    v.Raw,
			FieldCheckoutInfo: "",
		}
	default:
		return pipeline.Update{
			FieldFAQAnswer:    "",
			FieldCheckoutInfo: "",
		}
	}
}
