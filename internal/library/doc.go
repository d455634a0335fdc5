// Package library answers library questions.
//
// The router runs four steps over a shared state:
//
//	classify ─┬─> faq ──────┬─> respond
//	          └─> checkout ─┘
//
// classify asks the completion collaborator to reply with a JSON object
// holding faq_answer and checkout_info. A reply that is not a JSON object is
// kept whole as the FAQ answer. faq and checkout fill their field with a
// placeholder when classify left it empty. respond writes final_answer:
//
//	Q: <question>
//	FAQ: <faq_answer>
//	Checkout: <checkout_info>
//
// Example usage:
//
//	router, err := library.NewRouter(completer, logger)
//	answer, err := router.Answer(ctx, "When does library open?")
package library
