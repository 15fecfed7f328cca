/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// LoggerBuilder contains the data and logic needed to create a logger. Don't create instances of
// this directly, use the NewLogger function instead.
type LoggerBuilder struct {
	writer io.Writer
	level  string
	file   string
	source bool
	fields map[string]any
	redact bool
}

// NewLogger creates a builder that can then be used to configure and create a logger.
func NewLogger() *LoggerBuilder {
	return &LoggerBuilder{
		redact: true,
	}
}

// SetWriter sets the writer that the logger will write to. This is optional, and if not specified
// the logger will write to the file selected with SetFile, or to the standard output stream.
func (b *LoggerBuilder) SetWriter(value io.Writer) *LoggerBuilder {
	b.writer = value
	return b
}

// AddField adds a field that will be added to all the log messages. The value '%p' is replaced by
// the process identifier, any other value is added without change.
func (b *LoggerBuilder) AddField(name string, value any) *LoggerBuilder {
	if b.fields == nil {
		b.fields = map[string]any{}
	}
	b.fields[name] = value
	return b
}

// AddFields adds a set of fields that will be added to all the log messages.
func (b *LoggerBuilder) AddFields(values map[string]any) *LoggerBuilder {
	if b.fields == nil {
		b.fields = maps.Clone(values)
	} else {
		maps.Copy(b.fields, values)
	}
	return b
}

// SetLevel sets the log level.
func (b *LoggerBuilder) SetLevel(value string) *LoggerBuilder {
	b.level = value
	return b
}

// SetFile sets the file that the logger will write to. The special values 'stdout' and 'stderr'
// select the standard streams of the process.
func (b *LoggerBuilder) SetFile(value string) *LoggerBuilder {
	b.file = value
	return b
}

// SetSource enables adding the source file and line to each message.
func (b *LoggerBuilder) SetSource(value bool) *LoggerBuilder {
	b.source = value
	return b
}

// SetRedact sets the flag that indicates if security sensitive data should be removed from the
// log. These fields are indicated by adding an exclamation mark in front of the field name:
//
//	logger.Info(
//		"Database connection",
//		"user", user,
//		"!password", password,
//	)
//
// When redacting is enabled the value of the sensitive field is replaced by `***`. The
// exclamation mark is always removed from the field name.
func (b *LoggerBuilder) SetRedact(value bool) *LoggerBuilder {
	b.redact = value
	return b
}

// SetFlags sets the command line flags that should be used to configure the logger. This is
// optional.
func (b *LoggerBuilder) SetFlags(flags *pflag.FlagSet) *LoggerBuilder {
	if flags == nil {
		return b
	}
	if flags.Changed(levelFlagName) {
		if value, err := flags.GetString(levelFlagName); err == nil {
			b.SetLevel(value)
		}
	}
	if flags.Changed(fileFlagName) {
		if value, err := flags.GetString(fileFlagName); err == nil {
			b.SetFile(value)
		}
	}
	if flags.Changed(fieldFlagName) {
		if values, err := flags.GetStringArray(fieldFlagName); err == nil {
			b.AddFields(parseFieldItems(values))
		}
	}
	if flags.Changed(fieldsFlagName) {
		if values, err := flags.GetStringSlice(fieldsFlagName); err == nil {
			b.AddFields(parseFieldItems(values))
		}
	}
	if flags.Changed(sourceFlagName) {
		if value, err := flags.GetBool(sourceFlagName); err == nil {
			b.SetSource(value)
		}
	}
	if flags.Changed(redactFlagName) {
		if value, err := flags.GetBool(redactFlagName); err == nil {
			b.SetRedact(value)
		}
	}
	return b
}

func parseFieldItems(items []string) map[string]any {
	fields := map[string]any{}
	for _, item := range items {
		if item == pidLogFieldValue {
			fields[pidLogFieldName] = pidLogFieldValue
			continue
		}
		name, value, _ := strings.Cut(item, "=")
		fields[strings.TrimSpace(name)] = value
	}
	return fields
}

// Build uses the data stored in the builder to create a new logger. The returned logger wraps a
// JSON handler with a LoggingContextHandler so that attributes added with AppendCtx are included
// in every record written with that context.
func (b *LoggerBuilder) Build() (result *slog.Logger, err error) {
	writer := b.writer
	if writer == nil {
		writer, err = b.openWriter()
		if err != nil {
			return
		}
	}

	level := slog.LevelInfo
	if b.level != "" {
		err = level.UnmarshalText([]byte(b.level))
		if err != nil {
			return
		}
	}

	replacers := []func([]string, slog.Attr) slog.Attr{replaceTime, preserveRedacted}
	if b.redact {
		replacers[1] = replaceRedacted
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		AddSource:   b.source,
		Level:       level,
		ReplaceAttr: composeReplacers(replacers),
	})

	result = slog.New(NewLoggingContextHandler(handler, level)).With(b.customFields()...)
	return
}

func (b *LoggerBuilder) openWriter() (io.Writer, error) {
	switch b.file {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(b.file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0660) // nolint: wrapcheck
	}
}

func (b *LoggerBuilder) customFields() []any {
	names := slices.Sorted(maps.Keys(b.fields))
	fields := make([]any, 0, 2*len(names))
	for _, name := range names {
		value := b.fields[name]
		if value == pidLogFieldValue {
			value = os.Getpid()
		}
		fields = append(fields, name, value)
	}
	return fields
}

func composeReplacers(replacers []func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, replacer := range replacers {
			a = replacer(groups, a)
		}
		return a
	}
}

func replaceTime(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindTime {
		value := a.Value.Time().UTC()
		a = slog.String(a.Key, value.Format(time.RFC3339))
	}
	return a
}

func replaceRedacted(groups []string, a slog.Attr) slog.Attr {
	if strings.HasPrefix(a.Key, "!") {
		a = slog.String(a.Key[1:], "***")
	}
	return a
}

func preserveRedacted(groups []string, a slog.Attr) slog.Attr {
	a.Key = strings.TrimPrefix(a.Key, "!")
	return a
}

// Values of log fields with special meanings.
const (
	pidLogFieldName  = "pid"
	pidLogFieldValue = "%p"
)
