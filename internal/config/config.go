// Package config provides configuration structures and loading for mdb2json.
package config

// Config represents the complete application configuration.
type Config struct {
	Tools        ToolsConfig        `yaml:"tools" mapstructure:"tools"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Database     DatabaseConfig     `yaml:"database" mapstructure:"database"`
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// ToolsConfig describes how the external mdbtools utilities are invoked.
type ToolsConfig struct {
	ListCommand    string   `yaml:"list_command" mapstructure:"list_command"`       // mdb-tables
	ListArgs       []string `yaml:"list_args" mapstructure:"list_args"`             // inserted before the source path
	ExportCommand  string   `yaml:"export_command" mapstructure:"export_command"`   // mdb-export
	ExportArgs     []string `yaml:"export_args" mapstructure:"export_args"`         // inserted before the source path
	Delimiter      string   `yaml:"delimiter" mapstructure:"delimiter"`             // single character, must match export_args
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 disables the timeout
}

// OutputConfig represents JSON output settings.
type OutputConfig struct {
	Indent int `yaml:"indent" mapstructure:"indent"`
}

// DatabaseConfig represents the SQL database the load command writes to.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // sqlite or mysql
	Path     string `yaml:"path" mapstructure:"path"`     // sqlite file
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	TLS      string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
}

// VerificationConfig represents post-load verification settings.
type VerificationConfig struct {
	Method string `yaml:"method" mapstructure:"method"` // "count" or "skip"
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			ListCommand:   "mdb-tables",
			ExportCommand: "mdb-export",
			Delimiter:     ",",
		},
		Output: OutputConfig{
			Indent: 2,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Port:   3306,
			TLS:    "preferred",
		},
		Verification: VerificationConfig{
			Method: "count",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// DelimiterRune returns the configured CSV delimiter, defaulting to a comma.
func (t ToolsConfig) DelimiterRune() rune {
	for _, r := range t.Delimiter {
		return r
	}
	return ','
}
