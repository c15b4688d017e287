// Package planctx is the Alias Allocator & Context of spec.md §4.3: it
// allocates monotonic table aliases for a single statement and carries the
// traversal state (current model, current field, operation kind, parent
// alias, relation path) through the planner's recursive descent.
package planctx

import (
	"fmt"

	"github.com/arqdb/arq/dialect"
	"github.com/arqdb/arq/schema"
)

// Operation identifies which root operation is being planned. Clause
// builders consult it for operation-specific behavior (e.g. findFirst
// always appending LIMIT 1).
type Operation string

const (
	OpFindMany    Operation = "findMany"
	OpFindFirst   Operation = "findFirst"
	OpFindUnique  Operation = "findUnique"
	OpCreate      Operation = "create"
	OpCreateMany  Operation = "createMany"
	OpUpdate      Operation = "update"
	OpUpdateMany  Operation = "updateMany"
	OpUpsert      Operation = "upsert"
	OpDelete      Operation = "delete"
	OpDeleteMany  Operation = "deleteMany"
	OpCount       Operation = "count"
	OpAggregate   Operation = "aggregate"
	OpGroupBy     Operation = "groupBy"
	OpExist       Operation = "exist"
)

// Aliases allocates monotonic per-statement table aliases (t0, t1, ...),
// never reusing one within the same statement. It is shared by reference
// across an entire statement's Context tree so every descent (including
// into relation subqueries) draws from the same counter.
type Aliases struct {
	next int
}

// NewAliases creates a fresh allocator for one statement.
func NewAliases() *Aliases { return &Aliases{} }

// Next allocates and returns the next unused alias.
func (a *Aliases) Next() string {
	alias := fmt.Sprintf("t%d", a.next)
	a.next++
	return alias
}

// Context is the traversal state threaded through the recursive planner.
// It is cheap to clone for descent into a relation subquery: Child copies
// the value and only swaps the fields that change for the new scope.
type Context struct {
	Adapter   dialect.Adapter
	Aliases   *Aliases
	Model     *schema.Model
	ModelAlias string
	Field     *schema.Field // non-nil only while inside a field-scoped filter
	Operation Operation

	// ParentAlias is the enclosing statement's table alias, used by a
	// relation subquery's correlated WHERE clause to reference the
	// outer row. Empty at the root.
	ParentAlias string

	// RelationPath accumulates the chain of relation names from the root
	// model to the current scope (e.g. ["posts", "comments"]), used for
	// error messages and for validating aggregate-field placement.
	RelationPath []string
}

// Root constructs the top-level Context for a new statement against model,
// allocating its table alias.
func Root(adapter dialect.Adapter, model *schema.Model, op Operation) *Context {
	aliases := NewAliases()
	return &Context{
		Adapter:    adapter,
		Aliases:    aliases,
		Model:      model,
		ModelAlias: aliases.Next(),
		Operation:  op,
	}
}

// Child descends into a relation named relationName, targeting childModel,
// allocating a new table alias and extending RelationPath. The returned
// Context shares this Context's Aliases so alias numbering stays
// statement-wide and monotonic.
func (c *Context) Child(relationName string, childModel *schema.Model) *Context {
	path := make([]string, len(c.RelationPath)+1)
	copy(path, c.RelationPath)
	path[len(path)-1] = relationName

	return &Context{
		Adapter:      c.Adapter,
		Aliases:      c.Aliases,
		Model:        childModel,
		ModelAlias:   c.Aliases.Next(),
		Operation:    c.Operation,
		ParentAlias:  c.ModelAlias,
		RelationPath: path,
	}
}

// WithField returns a copy of Context scoped to field f, used while a
// filter handler evaluates a single field's predicate.
func (c *Context) WithField(f *schema.Field) *Context {
	cp := *c
	cp.Field = f
	return &cp
}
