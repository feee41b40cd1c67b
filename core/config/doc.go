// Package config provides configuration management for the inventory counter.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: application database connection details
//   - Source: optional inventory source database for sql imports (ERP_*)
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Import: virtual-snapshot source mode and column mapping
//   - Adjustment: adjustment API endpoint and credentials
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
