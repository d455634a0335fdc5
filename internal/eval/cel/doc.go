// Package cel provides a CEL (Common Expression Language) evaluator for step guards.
//
// A guard is a boolean expression over the pipeline state. The router evaluates
// it before running a step and skips the step when it is false.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "state": map[string]interface{}{
//	        "question":   "When does library open?",
//	        "faq_answer": "",
//	    },
//	}
//
//	run, err := evaluator.EvaluateBool(ctx, `state.faq_answer == ""`, vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// run == true
//
// Compiled programs are cached per expression and safe for concurrent use.
package cel
