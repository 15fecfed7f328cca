/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// This file contains functions that calculate the labels included in metrics.

package metrics

import (
	"strconv"
	"strings"
)

// methodLabel calculates the `method` label from the given HTTP method.
func methodLabel(method string) string {
	return strings.ToUpper(method)
}

// pathLabel calculates the `path` label from the URL path. Segments that match a `-` node of the
// tree are replaced by `-`, and paths that aren't in the tree are accumulated in `/-`.
func pathLabel(paths pathTree, path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	current := paths
	for i, segment := range segments {
		if current == nil {
			return "/-"
		}
		if next, ok := current[segment]; ok {
			current = next
			continue
		}
		if next, ok := current["-"]; ok {
			segments[i] = "-"
			current = next
			continue
		}
		return "/-"
	}

	return "/" + strings.Join(segments, "/")
}

// codeLabel calculates the `code` label from the given HTTP response code.
func codeLabel(code int) string {
	return strconv.Itoa(code)
}

// Names of the labels added to metrics:
const (
	codeLabelName   = "code"
	methodLabelName = "method"
	pathLabelName   = "path"
)

// Array of labels added to request metrics:
var requestLabelNames = []string{
	codeLabelName,
	methodLabelName,
	pathLabelName,
}
