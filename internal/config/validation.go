package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the settings every command needs: tools, output and logging.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateTools()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateForLoad runs Validate plus the database and verification checks
// that only the load command depends on.
func (c *Config) ValidateForLoad() error {
	var errors ValidationErrors

	if err := c.Validate(); err != nil {
		errors = append(errors, err.(ValidationErrors)...)
	}
	errors = append(errors, c.validateDatabase()...)
	errors = append(errors, c.validateVerification()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateTools() ValidationErrors {
	var errors ValidationErrors

	if c.Tools.ListCommand == "" {
		errors = append(errors, ValidationError{
			Field:   "tools.list_command",
			Message: "list_command is required",
		})
	}

	if c.Tools.ExportCommand == "" {
		errors = append(errors, ValidationError{
			Field:   "tools.export_command",
			Message: "export_command is required",
		})
	}

	if utf8.RuneCountInString(c.Tools.Delimiter) > 1 {
		errors = append(errors, ValidationError{
			Field:   "tools.delimiter",
			Message: "delimiter must be a single character",
		})
	}
	switch c.Tools.DelimiterRune() {
	case '"', '\r', '\n', utf8.RuneError:
		errors = append(errors, ValidationError{
			Field:   "tools.delimiter",
			Message: "delimiter cannot be a quote or line break",
		})
	}

	if c.Tools.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "tools.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		errors = append(errors, ValidationError{
			Field:   "output.indent",
			Message: "indent must be between 0 and 8",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	switch db.Driver {
	case "sqlite":
		if db.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "database.path",
				Message: "path is required for the sqlite driver",
			})
		}
	case "mysql":
		if db.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "database.host",
				Message: "host is required",
			})
		}
		if db.Port <= 0 || db.Port > 65535 {
			errors = append(errors, ValidationError{
				Field:   "database.port",
				Message: "port must be between 1 and 65535",
			})
		}
		if db.User == "" {
			errors = append(errors, ValidationError{
				Field:   "database.user",
				Message: "user is required",
			})
		}
		if db.Database == "" {
			errors = append(errors, ValidationError{
				Field:   "database.database",
				Message: "database name is required",
			})
		}
		validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
		if !validTLS[db.TLS] {
			errors = append(errors, ValidationError{
				Field:   "database.tls",
				Message: "tls must be 'disable', 'preferred', or 'required'",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: "driver must be 'sqlite' or 'mysql'",
		})
	}

	return errors
}

func (c *Config) validateVerification() ValidationErrors {
	var errors ValidationErrors

	validMethods := map[string]bool{"count": true, "skip": true, "": true}
	if !validMethods[c.Verification.Method] {
		errors = append(errors, ValidationError{
			Field:   "verification.method",
			Message: "method must be 'count' or 'skip'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
