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

// A Cursor describes an [*Expression] encountered during [Walk].
type Cursor struct {
	expr   *Expression
	parent *Expression
	depth  int
}

// Expression returns the current expression.
func (c *Cursor) Expression() *Expression {
	return c.expr
}

// Parent returns the parent of the current expression
// or nil if the current expression is the root of the walk.
func (c *Cursor) Parent() *Expression {
	return c.parent
}

// Depth returns the number of ancestors of the current expression
// below the root of the walk.
func (c *Cursor) Depth() int {
	return c.depth
}

// WalkOptions is the set of parameters to [Walk].
type WalkOptions struct {
	// If Pre is not nil, it is called for each expression before its children are traversed (pre-order).
	// If Pre returns false, no children are traversed, and Post is not called for that expression.
	Pre func(c *Cursor) bool
	// If Post is not nil, it is called for each expression after its children are traversed (post-order).
	// If Post returns false, traversal is terminated and Walk returns immediately.
	Post func(c *Cursor) bool
}

// Walk traverses an expression tree depth-first, starting with root,
// and calling [WalkOptions.Pre] and [WalkOptions.Post].
// Table cells are visited in row-major order.
func Walk(root *Expression, opts *WalkOptions) {
	type walkFrame struct {
		expr   *Expression
		parent *Expression
		depth  int
		post   bool
	}

	stack := []walkFrame{{expr: root}}
	cursor := new(Cursor)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cursor.expr = curr.expr
		cursor.parent = curr.parent
		cursor.depth = curr.depth
		if curr.post {
			if opts.Post != nil && !opts.Post(cursor) {
				break
			}
			continue
		}

		if opts.Pre != nil && !opts.Pre(cursor) {
			continue
		}
		curr.post = true
		stack = append(stack, curr)
		for i := curr.expr.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{
				expr:   curr.expr.Child(i),
				parent: curr.expr,
				depth:  curr.depth + 1,
			})
		}
	}
}
