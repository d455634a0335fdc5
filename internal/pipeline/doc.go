// Package pipeline runs a fixed graph of steps over a shared string-keyed state.
//
// The topology is an explicit list of (step, dependencies) pairs. NewGraph
// validates it (one start step, one terminal step, no cycles) and groups the
// steps into levels: every dependency of a step sits in an earlier level.
// The Router executes the levels in order, hands each step the accumulated
// state and merges the partial update the step returns (shallow, last write
// wins).
//
//	graph, err := pipeline.NewGraph(
//	    pipeline.Node{Name: "classify", Run: classify},
//	    pipeline.Node{Name: "faq", DependsOn: []string{"classify"}, When: `state.faq_answer == ""`, Run: faq},
//	    pipeline.Node{Name: "checkout", DependsOn: []string{"classify"}, Run: checkout},
//	    pipeline.Node{Name: "respond", DependsOn: []string{"faq", "checkout"}, Run: respond},
//	)
//	router, err := pipeline.NewRouter(graph, logger)
//	final, err := router.Run(ctx, pipeline.NewState(map[string]string{"question": q}))
//
// A step may carry a CEL guard in When; it is skipped when the guard is false.
// With WithParallelLevels the steps of one level run concurrently on snapshots
// of the state and their updates are merged in declaration order, which gives
// the same result as sequential execution for steps that write disjoint fields.
package pipeline
