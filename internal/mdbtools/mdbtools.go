// Package mdbtools runs the external mdbtools utilities that read Access
// database files. The binary format itself is never parsed here.
package mdbtools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dbsmedya/mdb2json/internal/config"
)

// Toolset lists and exports the tables of a source database file.
type Toolset interface {
	// ListTables returns the table names of the source file in the order the
	// listing utility prints them.
	ListTables(ctx context.Context, source string) ([]string, error)
	// ExportTable returns the table as delimited text: a header row of column
	// names followed by data rows.
	ExportTable(ctx context.Context, source, table string) (string, error)
}

// CommandError describes a failed invocation of an external utility.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int // -1 when the process did not run to completion
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Command, strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s: exit status %d", msg, e.ExitCode)
	} else {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Tools invokes mdb-tables and mdb-export (or compatible replacements).
type Tools struct {
	ListCommand   string
	ListArgs      []string
	ExportCommand string
	ExportArgs    []string
	Timeout       time.Duration // zero means no timeout
	Env           []string      // appended to the inherited environment
}

var _ Toolset = (*Tools)(nil)

// New creates Tools from configuration.
func New(cfg config.ToolsConfig) *Tools {
	return &Tools{
		ListCommand:   cfg.ListCommand,
		ListArgs:      cfg.ListArgs,
		ExportCommand: cfg.ExportCommand,
		ExportArgs:    cfg.ExportArgs,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// ListTables runs the listing utility and splits its output on whitespace.
func (t *Tools) ListTables(ctx context.Context, source string) ([]string, error) {
	args := append(append([]string{}, t.ListArgs...), source)
	out, err := t.run(ctx, t.ListCommand, args)
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

// ExportTable runs the export utility for one table and returns its stdout.
func (t *Tools) ExportTable(ctx context.Context, source, table string) (string, error) {
	args := append(append([]string{}, t.ExportArgs...), source, table)
	return t.run(ctx, t.ExportCommand, args)
}

func (t *Tools) run(ctx context.Context, command string, args []string) (string, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if len(t.Env) > 0 {
		cmd.Env = append(cmd.Environ(), t.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Command:  command,
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			cmdErr.Err = ctxErr
		}
		return "", cmdErr
	}

	return stdout.String(), nil
}
