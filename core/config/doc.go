// Package config provides configuration management for the reconciler.
//
// It loads an optional .env file with godotenv, then reads environment variables
// through Viper. Defaults come from the `default` struct tags of each section, so every
// key is known to Viper before AutomaticEnv runs.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, body limit
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials, bucket and records prefix
//   - Log: Logging level and format
//   - Matching: engine thresholds, id field and worker count
//   - Lock: run guard backend (memory or redis)
//   - Cache: record set cache TTL
//
// Nested keys map to upper-case variables joined by underscores:
// MATCHING_THRESHOLDS_MATCH sets matching.thresholds.match.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
