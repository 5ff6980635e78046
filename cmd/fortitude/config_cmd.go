package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage Fortitude configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (env overrides and defaults applied)",
	RunE:  runConfigShow,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate <path>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGenerate,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without starting anything",
	RunE:  runConfigValidate,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration field and rewrite the file",
	Long: `Set updates a single well-known field and re-saves the config
file, re-validating before it writes. Supported keys:
  server.listen_address, storage.backend, quality.profile,
  auth.disabled, auth.max_requests_per_minute, telemetry.logging.level`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configGenerateCmd, configValidateCmd, configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return printResult(redactedConfig(cfg))
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"claude": {Type: "claude", BaseURL: "https://api.anthropic.com", Model: "claude-3-5-sonnet-20241022"},
		},
	}
	config.ApplyDefaults(cfg)

	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return cli.NewCommandError("config generate", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return cli.NewCommandError("config generate", err)
	}

	fmt.Printf("wrote default configuration to %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return cli.NewCommandError("config validate", err)
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewCommandError("config validate", err)
	}
	fmt.Println("configuration is valid")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	raw, err := os.ReadFile(cfgFile)
	if err != nil {
		return cli.NewConfigError(key, fmt.Sprintf("failed to read %s: %v", cfgFile, err))
	}
	var cfg config.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cli.NewConfigError(key, fmt.Sprintf("failed to parse %s: %v", cfgFile, err))
	}

	if err := applyConfigSet(&cfg, key, value); err != nil {
		return cli.NewConfigError(key, err.Error())
	}

	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return cli.NewCommandError("config set", err)
	}

	encoded, err := yaml.Marshal(&cfg)
	if err != nil {
		return cli.NewCommandError("config set", err)
	}
	if err := os.WriteFile(cfgFile, encoded, 0o644); err != nil {
		return cli.NewCommandError("config set", err)
	}

	fmt.Printf("set %s = %s\n", key, value)
	return nil
}

func applyConfigSet(cfg *config.Config, key, value string) error {
	switch key {
	case "server.listen_address":
		cfg.Server.ListenAddress = value
	case "storage.backend":
		cfg.Storage.Backend = value
	case "quality.profile":
		cfg.Quality.Profile = value
	case "auth.disabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("not a bool: %s", value)
		}
		cfg.Auth.Disabled = b
	case "auth.max_requests_per_minute":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("not an integer: %s", value)
		}
		cfg.Auth.MaxRequestsPerMinute = n
	case "telemetry.logging.level":
		cfg.Telemetry.Logging.Level = value
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
	return nil
}

// redactedConfig returns a shallow copy of cfg with every secret
// replaced, matching the MCP config/current resource's redaction
// contract so `config show` never leaks credentials to a terminal or
// log capture.
func redactedConfig(cfg *config.Config) *config.Config {
	out := *cfg
	out.Auth.SigningKey = redactIfSet(cfg.Auth.SigningKey)

	out.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		p.APIKey = redactIfSet(p.APIKey)
		out.Providers[name] = p
	}
	return &out
}

func redactIfSet(s string) string {
	if s == "" {
		return s
	}
	return "[REDACTED]"
}
