package schema

import "github.com/google/uuid"

// Kind is a field's scalar type, independent of any dialect's native type
// spellings (spec.md §3's Field.scalar kind).
type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindDecimal  Kind = "decimal"
	KindBigInt   Kind = "bigint"
	KindBoolean  Kind = "boolean"
	KindDateTime Kind = "datetime"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindJSON     Kind = "json"
	KindBlob     Kind = "blob"
	KindEnum     Kind = "enum"
	KindVector   Kind = "vector"
	KindPoint    Kind = "point"
)

// IsNumeric reports whether the kind uses the numeric filter operator set.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindFloat, KindDecimal, KindBigInt:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether the kind uses the temporal filter operator set.
func (k Kind) IsTemporal() bool {
	switch k {
	case KindDateTime, KindDate, KindTime:
		return true
	default:
		return false
	}
}

// Generator identifies an auto-generation strategy for a field's default
// value (spec.md §3's generator kind enum). It is distinct from Kind: a
// generator constrains which kinds it may attach to (see CompatibleWith).
type Generator string

const (
	GeneratorNone      Generator = ""
	GeneratorUUID      Generator = "uuid"
	GeneratorULID      Generator = "ulid"
	GeneratorNanoID    Generator = "nanoid"
	GeneratorCUID      Generator = "cuid"
	GeneratorIncrement Generator = "increment"
	GeneratorNow       Generator = "now"
	GeneratorUpdatedAt Generator = "updatedAt"
)

// compatibleKinds lists which Kinds a generator is legal on, per spec.md
// §3's auto-generation invariant.
func (g Generator) compatibleKinds() []Kind {
	switch g {
	case GeneratorIncrement:
		return []Kind{KindInt, KindBigInt}
	case GeneratorNow, GeneratorUpdatedAt:
		return []Kind{KindDateTime, KindDate, KindTime}
	case GeneratorUUID, GeneratorULID, GeneratorNanoID, GeneratorCUID:
		return []Kind{KindString}
	default:
		return nil
	}
}

// CompatibleWith reports whether this generator may attach to a field of
// the given kind.
func (g Generator) CompatibleWith(k Kind) bool {
	if g == GeneratorNone {
		return true
	}
	for _, c := range g.compatibleKinds() {
		if c == k {
			return true
		}
	}
	return false
}

// Generators is a pluggable registry of value producers for string-shaped
// ID generator kinds. Callers may register their own producers (e.g. a real
// ULID/NanoID/CUID library); the default registry only wires `uuid` to a
// real dependency since no other generator ships in the reference stack.
type Generators struct {
	producers map[Generator]func() string
}

// NewGenerators builds the default registry: `uuid` backed by
// google/uuid.NewString. `ulid`, `nanoid`, and `cuid` are left unregistered
// until a caller supplies an implementation — Produce reports false for
// those rather than fabricating a non-conformant identifier.
func NewGenerators() *Generators {
	g := &Generators{producers: make(map[Generator]func() string)}
	g.Register(GeneratorUUID, uuid.NewString)
	return g
}

// Register installs or replaces the producer for a generator kind.
func (g *Generators) Register(kind Generator, fn func() string) {
	g.producers[kind] = fn
}

// Produce invokes the registered producer for kind, if any.
func (g *Generators) Produce(kind Generator) (string, bool) {
	fn, ok := g.producers[kind]
	if !ok {
		return "", false
	}
	return fn(), true
}

// Field is a resolved scalar attribute of a Model (spec.md §3's Field).
// Relations are modeled separately by Relation; Field never describes one.
type Field struct {
	Name          string
	Kind          Kind
	Nullable      bool
	IsArray       bool
	IsID          bool
	IsUnique      bool
	HasDefault    bool
	Default       any
	Generator     Generator
	SQLColumnName string
	NativeType    string // optional per-dialect override, e.g. "@db.Money"
	EnumName      string // set when Kind == KindEnum

	// Validate, if set, is an external value-schema validator the planner
	// never calls — payload validation is out of scope (spec.md §1) — but
	// is carried on the resolved field so a caller-side validator can reach
	// it without a second schema representation.
	Validate func(any) error
}

// ColumnName returns the field's SQL column name, defaulting to the logical
// field name when no explicit mapping is set.
func (f *Field) ColumnName() string {
	if f.SQLColumnName != "" {
		return f.SQLColumnName
	}
	return f.Name
}
