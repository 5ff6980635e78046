// Package config provides configuration management for Fortitude.
//
// Configuration is loaded from a YAML file with environment variable
// overrides, validated, and defaulted before any other package sees
// it.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow FORTITUDE_SECTION_FIELD, e.g.
// FORTITUDE_SERVER_LISTEN_ADDRESS or
// FORTITUDE_PROVIDERS_CLAUDE_API_KEY, and always take precedence over
// the YAML file.
//
// # Precedence
//
//  1. Defaults (defaults.go)
//  2. YAML file
//  3. Environment overrides
//  4. Validation
//
// # Singleton
//
//	if err := config.Initialize("config.yaml"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Tests should prefer explicit Config values over the singleton.
package config
