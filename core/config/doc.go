// Package config provides configuration management for the sheet reconciler.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file, and for reading the per-dataset config files a merge is started
// with.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (host, port, API key)
//   - Database: MySQL connection details for the merge run ledger
//   - Storage: S3/MinIO credentials and the upload bucket
//   - Log: Logging level and format
//   - Merge: dataset config directory, restart cap and upload settings
//
// Defaults come from the `default` struct tags. Environment variables map onto nested
// keys, so MERGE_MAX_ATTEMPTS sets merge.max_attempts.
//
// # Dataset Configs
//
// A dataset config is a small JSON, YAML or TOML file with the keys location,
// id_column and id_char_count:
//
//	{"location": "data/owners.csv", "id_column": "APN", "id_char_count": 10}
//
// LoadDataset looks the file up by name inside merge.config_dir, or reads it directly
// when given a path.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	master, err := config.LoadDataset(cfg.Merge.ConfigDir, "owners")
package config
