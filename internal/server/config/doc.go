// Package config provides server configuration for stakewatch.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (addresses, engine, schedule)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from defaults, an
// optional YAML file and STAKEWATCH_* environment variables.
package config
