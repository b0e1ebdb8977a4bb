// Package config provides configuration management for the score ledger.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - Database: ledger connection details (mysql or sqlite)
//   - Storage: S3/MinIO credentials for the chat archive
//   - Log: Logging level and format
//   - Score: posting keyword, remarks keyword, rule file and active rule version
//   - Comparison: reconciliation sweep window, thread policy and markers
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Comparison.Source)
package config
