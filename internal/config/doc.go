// Package config provides configuration management for the library assistant.
//
// Configuration is loaded from environment variables (after an optional .env
// file) and validated on startup. All options except the LLM API key have
// defaults suitable for development. OPENAI_API_KEY is honoured when
// LLM_API_KEY is not set.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
