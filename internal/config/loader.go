package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables that override config keys,
// e.g. MDB2JSON_TOOLS_EXPORT_COMMAND.
const EnvPrefix = "MDB2JSON"

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOptional behaves like Load, but a missing file yields the defaults
// (still subject to environment overrides). Any other read error is returned.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromViper(newViper())
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return LoadFromViper(newViper())
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// newViper returns a viper instance that knows every config key, so that
// environment overrides apply even when no file sets the key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("tools.list_command", def.Tools.ListCommand)
	v.SetDefault("tools.list_args", def.Tools.ListArgs)
	v.SetDefault("tools.export_command", def.Tools.ExportCommand)
	v.SetDefault("tools.export_args", def.Tools.ExportArgs)
	v.SetDefault("tools.delimiter", def.Tools.Delimiter)
	v.SetDefault("tools.timeout_seconds", def.Tools.TimeoutSeconds)
	v.SetDefault("output.indent", def.Output.Indent)
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("database.host", def.Database.Host)
	v.SetDefault("database.port", def.Database.Port)
	v.SetDefault("database.user", def.Database.User)
	v.SetDefault("database.password", def.Database.Password)
	v.SetDefault("database.database", def.Database.Database)
	v.SetDefault("database.tls", def.Database.TLS)
	v.SetDefault("verification.method", def.Verification.Method)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
	return v
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Tools.ListCommand = expandEnvVar(cfg.Tools.ListCommand)
	cfg.Tools.ExportCommand = expandEnvVar(cfg.Tools.ExportCommand)

	cfg.Database.Path = expandEnvVar(cfg.Database.Path)
	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.ListCommand != "" {
		c.Tools.ListCommand = o.ListCommand
	}
	if o.ExportCommand != "" {
		c.Tools.ExportCommand = o.ExportCommand
	}
	if o.TimeoutSeconds > 0 {
		c.Tools.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.Driver != "" {
		c.Database.Driver = o.Driver
	}
	if o.DatabasePath != "" {
		c.Database.Path = o.DatabasePath
	}
	if o.SkipVerify {
		c.Verification.Method = "skip"
	}
}

// Overrides contains command line values that take precedence over the file.
type Overrides struct {
	LogLevel       string
	LogFormat      string
	ListCommand    string
	ExportCommand  string
	TimeoutSeconds int
	Driver         string
	DatabasePath   string
	SkipVerify     bool
}
