package schema

import "fmt"

// IndexMethod is a dialect-native index access method. Dialects that don't
// support a given method fall back to their default (btree-equivalent).
type IndexMethod string

const (
	IndexMethodDefault IndexMethod = ""
	IndexMethodBTree   IndexMethod = "btree"
	IndexMethodHash    IndexMethod = "hash"
	IndexMethodGIN     IndexMethod = "gin"
	IndexMethodGiST    IndexMethod = "gist"
)

// IndexDef is an ordered index declaration on a Model (spec.md §3).
type IndexDef struct {
	Name      string
	Fields    []string
	Unique    bool
	Method    IndexMethod
	Predicate string // partial index predicate, dialect-native SQL; empty if none
}

// Model is a resolved entity in a Set (spec.md §3's Model).
type Model struct {
	Name      string
	TableName string

	fieldOrder []string
	fields     map[string]*Field

	relationOrder []string
	relations     map[string]*Relation

	// CompoundUniques and CompoundID are each a mapping from constraint
	// name to the ordered field list it covers.
	CompoundUniques map[string][]string
	CompoundID      map[string][]string

	Indexes []IndexDef

	// Omit is the set of logical field names excluded from default
	// projection (spec.md §3's Model.omit).
	Omit map[string]bool
}

// NewModel constructs an empty Model. Fields and relations are added with
// AddField/AddRelation before the owning Set validates and freezes it.
func NewModel(name string) *Model {
	return &Model{
		Name:            name,
		TableName:       ModelNameToTableName(name),
		fields:          make(map[string]*Field),
		relations:       make(map[string]*Relation),
		CompoundUniques: make(map[string][]string),
		CompoundID:      make(map[string][]string),
		Omit:            make(map[string]bool),
	}
}

// WithTableName overrides the default derived table name.
func (m *Model) WithTableName(name string) *Model {
	m.TableName = name
	return m
}

// AddField appends a scalar field, preserving declaration order.
func (m *Model) AddField(f *Field) *Model {
	if _, exists := m.fields[f.Name]; !exists {
		m.fieldOrder = append(m.fieldOrder, f.Name)
	}
	m.fields[f.Name] = f
	return m
}

// AddRelation appends a relation, preserving declaration order.
func (m *Model) AddRelation(r *Relation) *Model {
	if _, exists := m.relations[r.Name]; !exists {
		m.relationOrder = append(m.relationOrder, r.Name)
	}
	m.relations[r.Name] = r
	return m
}

// Field looks up a scalar field by logical name.
func (m *Model) Field(name string) (*Field, error) {
	f, ok := m.fields[name]
	if !ok {
		return nil, fmt.Errorf("schema: model %q has no field %q", m.Name, name)
	}
	return f, nil
}

// Fields returns scalar fields in declaration order.
func (m *Model) Fields() []*Field {
	out := make([]*Field, 0, len(m.fieldOrder))
	for _, name := range m.fieldOrder {
		out = append(out, m.fields[name])
	}
	return out
}

// Relation looks up a relation by logical name.
func (m *Model) Relation(name string) (*Relation, error) {
	r, ok := m.relations[name]
	if !ok {
		return nil, fmt.Errorf("schema: model %q has no relation %q", m.Name, name)
	}
	return r, nil
}

// Relations returns relations in declaration order.
func (m *Model) Relations() []*Relation {
	out := make([]*Relation, 0, len(m.relationOrder))
	for _, name := range m.relationOrder {
		out = append(out, m.relations[name])
	}
	return out
}

// HasField reports whether a logical name is a scalar field on this model.
func (m *Model) HasField(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// HasRelation reports whether a logical name is a relation on this model.
func (m *Model) HasRelation(name string) bool {
	_, ok := m.relations[name]
	return ok
}

// PrimaryKey returns the single field marked IsID, if the model has one.
// A model with a compound id has no single PrimaryKey field; callers must
// check CompoundID too.
func (m *Model) PrimaryKey() (*Field, bool) {
	for _, name := range m.fieldOrder {
		if m.fields[name].IsID {
			return m.fields[name], true
		}
	}
	return nil, false
}

// UniqueFields returns scalar fields marked unique or serving as the sole
// id, in declaration order (spec.md §3's Model.uniqueFields).
func (m *Model) UniqueFields() []*Field {
	var out []*Field
	for _, name := range m.fieldOrder {
		f := m.fields[name]
		if f.IsUnique || f.IsID {
			out = append(out, f)
		}
	}
	return out
}

// validate checks the invariants spec.md §3 places on a single Model.
// Owning-side relation fields are checked against this model's own fields;
// target-side checks are done by Set.Validate.
func (m *Model) validate() error {
	if m.Name == "" {
		return fmt.Errorf("schema: model has empty name")
	}
	if m.TableName == "" {
		return fmt.Errorf("schema: model %q has empty table name", m.Name)
	}
	if len(m.fields) == 0 {
		return fmt.Errorf("schema: model %q has no fields", m.Name)
	}

	seenColumns := make(map[string]string, len(m.fields))
	idCount := 0
	for _, name := range m.fieldOrder {
		f := m.fields[name]
		if f.IsID {
			idCount++
		}
		col := f.ColumnName()
		if owner, exists := seenColumns[col]; exists {
			return fmt.Errorf("schema: model %q has duplicate column name %q (fields %q and %q)", m.Name, col, owner, name)
		}
		seenColumns[col] = name
		if !f.Generator.CompatibleWith(f.Kind) {
			return fmt.Errorf("schema: model %q field %q: generator %q incompatible with kind %q", m.Name, name, f.Generator, f.Kind)
		}
	}

	if idCount > 1 {
		return fmt.Errorf("schema: model %q has more than one field marked as id", m.Name)
	}
	if idCount == 1 && len(m.CompoundID) > 0 {
		return fmt.Errorf("schema: model %q has both a single id field and a compound id", m.Name)
	}
	if len(m.CompoundID) > 1 {
		return fmt.Errorf("schema: model %q declares more than one compound id", m.Name)
	}
	if idCount == 0 && len(m.CompoundID) == 0 {
		return fmt.Errorf("schema: model %q has no id: declare an id field or a compound id", m.Name)
	}

	for constraintName, fields := range m.CompoundID {
		if err := m.checkFieldsExist(constraintName, fields); err != nil {
			return err
		}
	}
	for constraintName, fields := range m.CompoundUniques {
		if err := m.checkFieldsExist(constraintName, fields); err != nil {
			return err
		}
	}
	for _, idx := range m.Indexes {
		if err := m.checkFieldsExist(idx.Name, idx.Fields); err != nil {
			return err
		}
	}
	for name := range m.Omit {
		if !m.HasField(name) {
			return fmt.Errorf("schema: model %q omits unknown field %q", m.Name, name)
		}
	}

	for _, rname := range m.relationOrder {
		r := m.relations[rname]
		if m.HasField(rname) {
			return fmt.Errorf("schema: model %q relation %q collides with a field name", m.Name, rname)
		}
		if len(r.Fields) != len(r.References) {
			return fmt.Errorf("schema: model %q relation %q: fields/references length mismatch", m.Name, rname)
		}
		if r.IsOwning() {
			if err := m.checkFieldsExist(rname, r.Fields); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Model) checkFieldsExist(constraintName string, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("schema: model %q constraint %q names no fields", m.Name, constraintName)
	}
	for _, f := range fields {
		if !m.HasField(f) {
			return fmt.Errorf("schema: model %q constraint %q references unknown field %q", m.Name, constraintName, f)
		}
	}
	return nil
}
