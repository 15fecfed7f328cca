/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import "strings"

// pathTree is a tree of URL path segments used to decide which segments of a request path are
// kept in the `path` label. A `-` segment matches any value, which is how identifiers are
// collapsed. Leaves are nil.
type pathTree map[string]pathTree

// add adds the given path to the tree.
func (t pathTree) add(path string) {
	path = strings.Trim(path, "/")
	if path == "" {
		return
	}
	segments := strings.Split(path, "/")
	current := t
	for i, segment := range segments {
		next, ok := current[segment]
		if i == len(segments)-1 {
			if !ok {
				current[segment] = nil
			}
			return
		}
		if next == nil {
			next = pathTree{}
			current[segment] = next
		}
		current = next
	}
}
