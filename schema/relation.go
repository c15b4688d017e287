package schema

import (
	"fmt"
	"strings"
	"sync"
)

// Cardinality identifies a relation's shape (spec.md §3's Relation.kind).
type Cardinality string

const (
	OneToOne   Cardinality = "oneToOne"
	OneToMany  Cardinality = "oneToMany"
	ManyToOne  Cardinality = "manyToOne"
	ManyToMany Cardinality = "manyToMany"
)

// ReferentialAction is the action a dialect's FK takes on delete/update.
type ReferentialAction string

const (
	ActionCascade  ReferentialAction = "cascade"
	ActionSetNull  ReferentialAction = "setNull"
	ActionRestrict ReferentialAction = "restrict"
	ActionNoAction ReferentialAction = "noAction"
)

// Junction describes the bridge table of a many-to-many relation.
type Junction struct {
	TableName string
	ColumnA   string // junction column pointing at the declaring side
	ColumnB   string // junction column pointing at the target side
}

// Relation is a resolved relation attribute of a Model. The target Model is
// a lazy reference: it is looked up by name through the owning Set on first
// traversal and memoized, so a Set of models with relation cycles between
// them can be built without forward-declaration ordering and is safe to
// traverse from multiple planner goroutines concurrently (spec.md §5).
type Relation struct {
	Name         string
	Kind         Cardinality
	TargetName   string // logical model name, resolved lazily
	Fields       []string
	References   []string
	Junction     *Junction
	OnDelete     ReferentialAction
	OnUpdate     ReferentialAction
	Optional     bool

	set        *Set
	resolve    sync.Once
	resolved   *Model
	resolveErr error
}

// bind attaches the owning Set so Target can resolve lazily. Called once by
// Set.AddModel; never exported because a Relation only ever belongs to the
// Set that constructed it.
func (r *Relation) bind(set *Set) {
	r.set = set
}

// Target resolves and memoizes the relation's target Model. Safe for
// concurrent use: the sync.Once ensures the lookup through the arena
// happens exactly once regardless of how many goroutines call Target
// concurrently on an immutable, fully-built Set.
func (r *Relation) Target() (*Model, error) {
	r.resolve.Do(func() {
		if r.set == nil {
			r.resolveErr = fmt.Errorf("schema: relation %q is not bound to a model set", r.Name)
			return
		}
		m, err := r.set.Model(r.TargetName)
		if err != nil {
			r.resolveErr = fmt.Errorf("schema: relation %q target %q: %w", r.Name, r.TargetName, err)
			return
		}
		r.resolved = m
	})
	return r.resolved, r.resolveErr
}

// IsOwning reports whether this side of the relation carries the local FK
// columns (manyToOne and owning oneToOne declarations).
func (r *Relation) IsOwning() bool {
	return len(r.Fields) > 0 && len(r.References) > 0
}

// defaultJunction computes the deterministic junction table/columns for a
// manyToMany relation that declares no explicit Junction.
func defaultJunction(ownerModel, targetModel string) *Junction {
	table := JunctionTableName(ownerModel, targetModel)
	colA, colB := "A", "B"
	if strings.ToLower(ownerModel) > strings.ToLower(targetModel) {
		colA, colB = "B", "A"
	}
	return &Junction{TableName: table, ColumnA: colA, ColumnB: colB}
}
