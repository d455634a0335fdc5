// Package template provides a Handlebars template engine for rendering LLM prompts.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "question": "Is The Hobbit available?",
//	}
//
//	prompt, err := engine.Render("Question: {{{trim question}}}", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// prompt == "Question: Is The Hobbit available?"
//
// Use triple-stash ({{{ }}}) for raw text: double-stash output is HTML escaped,
// which is wrong for prompts.
//
// The trim helper strips surrounding whitespace. Prompt templates are checked
// with ValidateTemplate when a completer is built.
package template
