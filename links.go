// Copyright 2026 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package obsidized

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Links returns the distinct targets of the internal links
// and internal images in the document, in document order.
// Targets are compared after NFC normalization,
// and any "|alias" or "#heading" suffix is removed.
// Links does not check whether the targets exist.
func Links(doc *Document) []string {
	var targets []string
	seen := make(map[string]struct{})
	for _, block := range doc.Contents {
		Walk(block, &WalkOptions{
			Pre: func(c *Cursor) bool {
				e := c.Expression()
				if e.Kind != InternalLinkKind && e.Kind != InternalImageKind {
					return true
				}
				target := LinkTarget(e.Text)
				if _, dup := seen[target]; target != "" && !dup {
					seen[target] = struct{}{}
					targets = append(targets, target)
				}
				return false
			},
		})
	}
	return targets
}

// LinkTarget returns the note name referenced by
// the contents of a [[wiki link]], in NFC form.
func LinkTarget(link string) string {
	if i := strings.IndexAny(link, "|#^"); i >= 0 {
		link = link[:i]
	}
	return norm.NFC.String(strings.TrimSpace(link))
}
