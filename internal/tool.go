/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal/logging"
)

// ToolBuilder contains the data and logic needed to create an instance of the command line tool.
// Don't create instances of this directly, use the NewTool function instead.
type ToolBuilder struct {
	logger   *slog.Logger
	args     []string
	in       io.Reader
	out      io.Writer
	err      io.Writer
	commands []func() *cobra.Command
}

// Tool is an instance of the command line tool. Don't create instances of this directly, use the
// NewTool function instead.
type Tool struct {
	logger   *slog.Logger
	args     []string
	in       io.Reader
	out      io.Writer
	err      io.Writer
	commands []func() *cobra.Command
	cmd      *cobra.Command
}

// NewTool creates a builder that can then be used to configure and create an instance of the
// command line tool.
func NewTool() *ToolBuilder {
	return &ToolBuilder{}
}

// SetLogger sets the logger that the tool will use. This is optional, by default the logger is
// created from the command line flags.
func (b *ToolBuilder) SetLogger(value *slog.Logger) *ToolBuilder {
	b.logger = value
	return b
}

// AddArgs adds command line arguments. The first one is the name of the binary.
func (b *ToolBuilder) AddArgs(values ...string) *ToolBuilder {
	b.args = append(b.args, values...)
	return b
}

// SetIn sets the standard input stream. This is mandatory.
func (b *ToolBuilder) SetIn(value io.Reader) *ToolBuilder {
	b.in = value
	return b
}

// SetOut sets the standard output stream. This is mandatory.
func (b *ToolBuilder) SetOut(value io.Writer) *ToolBuilder {
	b.out = value
	return b
}

// SetErr sets the standard error stream. This is mandatory.
func (b *ToolBuilder) SetErr(value io.Writer) *ToolBuilder {
	b.err = value
	return b
}

// AddCommand adds a function that creates a sub-command of the tool.
func (b *ToolBuilder) AddCommand(value func() *cobra.Command) *ToolBuilder {
	b.commands = append(b.commands, value)
	return b
}

// Build uses the data stored in the builder to create a new instance of the command line tool.
func (b *ToolBuilder) Build() (result *Tool, err error) {
	if len(b.args) == 0 {
		err = errors.New("at least one argument containing the name of the binary is required")
		return
	}
	if b.in == nil {
		err = errors.New("standard input stream is mandatory")
		return
	}
	if b.out == nil {
		err = errors.New("standard output stream is mandatory")
		return
	}
	if b.err == nil {
		err = errors.New("standard error stream is mandatory")
		return
	}

	result = &Tool{
		logger:   b.logger,
		args:     slices.Clone(b.args),
		in:       b.in,
		out:      b.out,
		err:      b.err,
		commands: slices.Clone(b.commands),
	}
	return
}

// Run runs the tool with the arguments given to the builder.
func (t *Tool) Run(ctx context.Context) error {
	t.cmd = t.createCommand()
	t.cmd.SetArgs(t.args[1:])
	t.cmd.SetIn(t.in)
	t.cmd.SetOut(t.out)
	t.cmd.SetErr(t.err)
	return t.cmd.ExecuteContext(ToolIntoContext(ctx, t)) // nolint: wrapcheck
}

// Logger returns the logger of the tool. It is nil until a command starts.
func (t *Tool) Logger() *slog.Logger {
	return t.logger
}

func (t *Tool) createCommand() *cobra.Command {
	result := &cobra.Command{
		Use:               filepath.Base(t.args[0]),
		Short:             "Data subscriptions service",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: t.before,
	}
	logging.AddFlags(result.PersistentFlags())
	for _, command := range t.commands {
		result.AddCommand(command())
	}
	return result
}

// before creates the logger from the flags and makes it available to the command.
func (t *Tool) before(cmd *cobra.Command, args []string) error {
	if t.logger == nil {
		logger, err := logging.NewLogger().
			SetFlags(cmd.Flags()).
			Build()
		if err != nil {
			return err // nolint: wrapcheck
		}
		t.logger = logger
	}
	slog.SetDefault(t.logger)
	cmd.SetContext(LoggerIntoContext(cmd.Context(), t.logger))
	return nil
}
