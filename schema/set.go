package schema

import "fmt"

// Set is the resolved model set (spec.md §3's ModelSet): an arena of Models
// indexed by logical name. Relations reference models by name rather than
// by pointer so the arena can be built in any declaration order, including
// relation cycles, and frozen immutable once Validate succeeds.
type Set struct {
	order  []string
	models map[string]*Model
}

// New creates an empty Set.
func New() *Set {
	return &Set{models: make(map[string]*Model)}
}

// AddModel registers a model under its logical name and binds every
// relation it declares to this set for later lazy resolution. Adding a
// second model under an already-registered name is a programmer error.
func (s *Set) AddModel(m *Model) error {
	if _, exists := s.models[m.Name]; exists {
		return fmt.Errorf("schema: duplicate model name %q", m.Name)
	}
	s.order = append(s.order, m.Name)
	s.models[m.Name] = m
	for _, r := range m.Relations() {
		r.bind(s)
	}
	return nil
}

// Model looks up a model by logical name.
func (s *Set) Model(name string) (*Model, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("schema: unknown model %q", name)
	}
	return m, nil
}

// MustModel looks up a model by logical name, panicking if absent. Intended
// for call sites downstream of Validate, where an unknown model name is a
// programmer error rather than a recoverable condition.
func (s *Set) MustModel(name string) *Model {
	m, err := s.Model(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Models returns every model in the set, in registration order.
func (s *Set) Models() []*Model {
	out := make([]*Model, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name])
	}
	return out
}

// Validate checks every invariant spec.md §3 places on the set as a whole:
// per-model structural invariants, then cross-model relation invariants
// (target existence, owning-side field/reference shape, manyToMany
// junction consistency). It should be called once after every model has
// been added and before the set is shared with the planner.
func (s *Set) Validate() error {
	for _, name := range s.order {
		if err := s.models[name].validate(); err != nil {
			return err
		}
	}

	for _, name := range s.order {
		m := s.models[name]
		for _, r := range m.Relations() {
			target, ok := s.models[r.TargetName]
			if !ok {
				return fmt.Errorf("schema: model %q relation %q targets unknown model %q", m.Name, r.Name, r.TargetName)
			}

			switch r.Kind {
			case ManyToOne, OneToOne:
				if r.IsOwning() {
					if err := checkReferencesExist(target, r.References); err != nil {
						return fmt.Errorf("schema: model %q relation %q: %w", m.Name, r.Name, err)
					}
					if len(r.Fields) != len(r.References) {
						return fmt.Errorf("schema: model %q relation %q: fields/references arity mismatch", m.Name, r.Name)
					}
				}
			case OneToMany:
				// The owning side lives on the target model's matching
				// manyToOne/oneToOne relation; nothing local to check beyond
				// target existence.
			case ManyToMany:
				if r.Junction == nil {
					r.Junction = defaultJunction(m.Name, r.TargetName)
				}
			default:
				return fmt.Errorf("schema: model %q relation %q has unknown cardinality %q", m.Name, r.Name, r.Kind)
			}
		}
	}
	return nil
}

func checkReferencesExist(target *Model, references []string) error {
	for _, col := range references {
		if !target.HasField(col) {
			return fmt.Errorf("references unknown field %q on model %q", col, target.Name)
		}
	}
	return nil
}
