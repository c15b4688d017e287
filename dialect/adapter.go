// Package dialect is the Dialect Adapter of spec.md §4.2: every
// dialect-specific spelling the planner and differ need sits behind one
// interface, so clause builders in plan/plan/filter are written once and
// parameterized by whichever Adapter a query runs against.
package dialect

import (
	"github.com/arqdb/arq/schema"
	"github.com/arqdb/arq/sqlfrag"
)

// Name identifies a supported SQL dialect.
type Name string

const (
	Postgres Name = "postgres"
	MySQL    Name = "mysql"
	SQLite   Name = "sqlite"
)

// Capabilities are the flags the planner consults to choose between a
// native SQL feature and an emulation (spec.md §4.2).
type Capabilities struct {
	SupportsReturning     bool
	SupportsDefaultValues bool
	SupportsDistinctOn    bool
	SupportsArrayColumns  bool
	SupportsNativeEnum    bool
	RequiresLimitForOffset bool
	NeedsTypeConversion   bool
	VectorAvailable       bool
	GeoAvailable          bool
}

// Adapter is the single interface every dialect-specific spelling sits
// behind. Clause builders and filter handlers in the plan package consume
// an Adapter value; they never branch on dialect themselves.
type Adapter interface {
	Name() Name
	Capabilities() Capabilities

	// Placeholder is the sqlfrag.Style this dialect's driver binds with.
	Placeholder() sqlfrag.Style

	QuoteIdentifier(name string) string
	QuoteTable(schema, name string) string

	// MapType returns the SQL column type for a field, honoring any
	// per-dialect native type override the field carries.
	MapType(f *schema.Field) string

	BooleanLiteral(v bool) string

	// NullsOrderingSQL returns the NULLS FIRST/LAST fragment to append
	// after a direction keyword, or "" when the dialect has no such
	// syntax (its default nulls placement is used instead).
	NullsOrderingSQL(nullsFirst bool) string

	// JSONArrayAgg wraps a correlated subquery's object-shaping expression
	// into this dialect's JSON array aggregation form, coalesced to an
	// empty JSON array rather than SQL NULL for an empty collection
	// (spec.md §8's "relation subquery for an empty collection coalesces
	// to the dialect's empty array literal" property).
	JSONArrayAgg(rowExpr *sqlfrag.Frag, fromClause *sqlfrag.Frag) *sqlfrag.Frag

	// JSONObject builds a dialect-native JSON object expression from
	// alternating key/column-reference pairs, used both standalone (a
	// oneToOne/manyToOne relation materializes as a single object, not an
	// array) and nested inside JSONArrayAgg.
	JSONObject(pairs []JSONPair) *sqlfrag.Frag

	// JSONPathExtract returns a fragment extracting the value at path from
	// a JSON column reference, per this dialect's native JSON operator.
	JSONPathExtract(column *sqlfrag.Frag, path []PathSegment) *sqlfrag.Frag

	TransformToDatabase(value any, f *schema.Field) (any, error)
	TransformFromDatabase(value any, f *schema.Field) (any, error)

	// IsSystemIndex/IsSystemTable let the differ and introspector exclude
	// dialect-managed bookkeeping objects from a structural comparison.
	IsSystemIndex(name string) bool
	IsSystemTable(name string) bool
}

// JSONPair is one key/value mapping in a JSONObject expression. Value is a
// raw SQL fragment (typically a quoted column reference).
type JSONPair struct {
	Key   string
	Value *sqlfrag.Frag
}

// PathSegment is one step of a JSON filter `path` (spec.md §9's Open
// Question decision: dot-separated keys plus one trailing array index).
type PathSegment struct {
	Key   string // non-empty for a key segment
	Index int    // used when IsIndex is true
	IsIndex bool
}
