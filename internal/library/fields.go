package library

// State fields
const (
	FieldQuestion     = "question"
	FieldFAQAnswer    = "faq_answer"
	FieldCheckoutInfo = "checkout_info"
	FieldFinalAnswer  = "final_answer"
)

// Step names
const (
	StepClassify = "classify"
	StepFAQ      = "faq"
	StepCheckout = "checkout"
	StepRespond  = "respond"
)

// Placeholders used when classify leaves a field empty
const (
	DefaultFAQ      = "Default FAQ: Library rules apply"
	DefaultCheckout = "Checkout info: Not requested"
)

// ClassifierInstruction is sent to the completion collaborator with every question
const ClassifierInstruction = `You are a classifier agent in a library system.
Decide if the user is asking about book availability/checkout or about library FAQs.
Reply with JSON containing keys: faq_answer and checkout_info.`

// ExampleQuestions are answered by the demo entry point
var ExampleQuestions = []string{
	"When does library open?",
	"Is The Hobbit available?",
}
