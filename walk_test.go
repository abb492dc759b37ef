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
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalk(t *testing.T) {
	root := block(
		text("a"),
		styledExpr(BoldKind, text("b"), styledExpr(ItalicKind, text("c"))),
		&Expression{
			Kind: TablesKind,
			Rows: [][]*Expression{
				{block(text("d")), block(text("e"))},
				{block(text("f"))},
			},
		},
	)

	t.Run("Order", func(t *testing.T) {
		var got []string
		Walk(root, &WalkOptions{
			Pre: func(c *Cursor) bool {
				got = append(got, fmt.Sprintf("pre %v%s@%d", c.Expression().Kind, c.Expression().Text, c.Depth()))
				return true
			},
			Post: func(c *Cursor) bool {
				if c.Expression().IsContainer() && c.Expression().Kind != BlockKind {
					got = append(got, fmt.Sprintf("post %v", c.Expression().Kind))
				}
				return true
			},
		})
		want := []string{
			"pre Block@0",
			"pre Texta@1",
			"pre Bold@1",
			"pre Textb@2",
			"pre Italic@2",
			"pre Textc@3",
			"post Italic",
			"post Bold",
			"pre Tables@1",
			"pre Block@2",
			"pre Textd@3",
			"pre Block@2",
			"pre Texte@3",
			"pre Block@2",
			"pre Textf@3",
			"post Tables",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("visits (-want +got):\n%s", diff)
		}
	})

	t.Run("SkipChildren", func(t *testing.T) {
		var got []string
		Walk(root, &WalkOptions{
			Pre: func(c *Cursor) bool {
				if c.Expression().Kind == TextKind {
					got = append(got, c.Expression().Text)
				}
				return c.Expression().Kind != BoldKind && c.Expression().Kind != TablesKind
			},
		})
		if diff := cmp.Diff([]string{"a"}, got); diff != "" {
			t.Errorf("texts (-want +got):\n%s", diff)
		}
	})

	t.Run("Stop", func(t *testing.T) {
		var got []string
		Walk(root, &WalkOptions{
			Pre: func(c *Cursor) bool {
				if c.Expression().Kind == TextKind {
					got = append(got, c.Expression().Text)
				}
				return true
			},
			Post: func(c *Cursor) bool {
				return c.Expression().Kind != ItalicKind
			},
		})
		if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
			t.Errorf("texts (-want +got):\n%s", diff)
		}
	})

	t.Run("Parent", func(t *testing.T) {
		Walk(root, &WalkOptions{
			Pre: func(c *Cursor) bool {
				if c.Expression() == root {
					if c.Parent() != nil {
						t.Errorf("root parent = %v; want <nil>", c.Parent().Kind)
					}
					return true
				}
				parent := c.Parent()
				found := false
				for i := 0; i < parent.ChildCount(); i++ {
					if parent.Child(i) == c.Expression() {
						found = true
					}
				}
				if !found {
					t.Errorf("%v is not a child of its parent %v", c.Expression().Kind, parent.Kind)
				}
				return true
			},
		})
	})
}
