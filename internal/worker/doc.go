// Package worker answers library questions delivered over Redis Streams.
//
// The worker reads question messages from a stream through a consumer group,
// runs each question through the library router, and publishes the final
// answer to a result stream. Failures go to "<result stream>.errors". Every
// message is acknowledged, answered or not.
//
// Message payloads are JSON under the "data" field:
//
//	XADD library.questions * data '{"request_id":"r-1","question":"When does library open?"}'
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	events := worker.NewStepEventPublisher(redisClient, cfg.EventStream, logger)
//	router, _ := library.NewRouter(completer, logger, pipeline.WithObserver(events))
//
//	w := worker.NewWorker(cfg, redisClient, router, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
