/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Sink receives the audit events
type Sink interface {
	Submit(ctx context.Context, event Event) error
}

// ConfigurationChangesPath is appended to the audit log service URL
const ConfigurationChangesPath = "/audit-log/oauth2/v2/configuration-changes"

// HTTPSink posts events to the audit log service. The client is expected to add the credentials
// to the requests.
type HTTPSink struct {
	client *http.Client
	url    string
}

// NewHTTPSink returns a sink posting to the audit log service at the given base URL
func NewHTTPSink(client *http.Client, baseURL string) *HTTPSink {
	return &HTTPSink{
		client: client,
		url:    strings.TrimSuffix(baseURL, "/") + ConfigurationChangesPath,
	}
}

func (s *HTTPSink) Submit(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send audit event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("audit log service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// LogSink writes the events to the log. It is used when no audit log service is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(ctx context.Context, event Event) error {
	attributes := make([]any, 0, len(event.Attributes))
	for _, attribute := range event.Attributes {
		attributes = append(attributes, slog.Group(attribute.Name,
			slog.String("old", attribute.Old), slog.String("new", attribute.New)))
	}
	s.logger.InfoContext(ctx, "Audit event",
		slog.String("namespace", event.Namespace),
		slog.String("operation", string(event.Operation)),
		slog.String("state", string(event.State)),
		slog.String("object_id", event.Object.ID),
		slog.String("tenant", event.Tenant),
		slog.String("user", event.User),
		slog.Group("attributes", attributes...),
	)
	return nil
}
