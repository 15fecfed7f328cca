/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/oran-dsapi/internal"
)

// Version creates and returns the `version` command.
func Version() *cobra.Command {
	c := NewVersionCommand()
	return &cobra.Command{
		Use:   "version",
		Short: "Prints version information",
		Long:  "Prints version information",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
}

// VersionCommand contains the data and logic needed to run the `version` command.
type VersionCommand struct {
	readBuildInfo func() (*debug.BuildInfo, bool)
}

// NewVersionCommand creates a new runner that knows how to execute the `version` command.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{
		readBuildInfo: debug.ReadBuildInfo,
	}
}

// BuildDetails are the version details of the binary
type BuildDetails struct {
	Version string
	Commit  string
	Time    string
}

// details calculates the version details from the build settings.
func (c *VersionCommand) details() BuildDetails {
	result := BuildDetails{
		Version: unknownSettingValue,
		Commit:  unknownSettingValue,
		Time:    unknownSettingValue,
	}
	info, ok := c.readBuildInfo()
	if !ok {
		return result
	}
	if info.Main.Version != "" {
		result.Version = info.Main.Version
	}
	if value := c.getSetting(info, vcsRevisionSettingKey); value != "" {
		result.Commit = value
	}
	if value := c.getSetting(info, vcsTimeSettingKey); value != "" {
		result.Time = value
	}
	return result
}

// run executes the `version` command.
func (c *VersionCommand) run(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	logger := internal.LoggerFromContext(ctx)

	details := c.details()
	logger.DebugContext(
		ctx,
		"Version",
		slog.String("version", details.Version),
		slog.String("commit", details.Commit),
		slog.String("time", details.Time),
	)
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "version: %s\ncommit: %s\ntime: %s\n",
		details.Version, details.Commit, details.Time)
	return err // nolint: wrapcheck
}

// getSetting returns the value of the build setting with the given key. Returns an empty string
// if no such setting exists.
func (c *VersionCommand) getSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Names of build settings we are interested on:
const (
	vcsRevisionSettingKey = "vcs.revision"
	vcsTimeSettingKey     = "vcs.time"
)

// Fallback value for unknown settings:
const unknownSettingValue = "unknown"
