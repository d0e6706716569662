// Package config provides configuration management for cardstock.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections owned by the packages they configure:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for the local catalog mirror
//   - Storage: S3/MinIO credentials and bucket for run-report archives
//   - Provider: remote catalog API endpoint, credential, scope and retry tuning
//   - Sync: orchestrator tuning (chunk size, duplicate-sync guard window)
//   - Log: Logging level and format
//
// Credentials and endpoints are never read ambiently at call sites; everything
// flows through this struct into explicit constructors.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Provider.Endpoint)
package config
