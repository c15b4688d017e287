package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userModel() *Model {
	m := NewModel("User")
	m.AddField(&Field{Name: "id", Kind: KindString, IsID: true, Generator: GeneratorUUID})
	m.AddField(&Field{Name: "email", Kind: KindString, IsUnique: true})
	m.AddField(&Field{Name: "name", Kind: KindString, Nullable: true})
	return m
}

func TestNewModel_DefaultTableName(t *testing.T) {
	m := NewModel("OrderItem")
	assert.Equal(t, "order_items", m.TableName)
}

func TestModel_FieldsPreserveOrder(t *testing.T) {
	m := userModel()
	names := make([]string, 0, 3)
	for _, f := range m.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "email", "name"}, names)
}

func TestModel_PrimaryKey(t *testing.T) {
	m := userModel()
	pk, ok := m.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "id", pk.Name)
}

func TestModel_UniqueFields(t *testing.T) {
	m := userModel()
	var names []string
	for _, f := range m.UniqueFields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "email"}, names)
}

func TestModel_Validate_NoID(t *testing.T) {
	m := NewModel("Broken")
	m.AddField(&Field{Name: "name", Kind: KindString})
	err := m.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestModel_Validate_DuplicateColumn(t *testing.T) {
	m := NewModel("Broken")
	m.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	m.AddField(&Field{Name: "alias", Kind: KindString, SQLColumnName: "id"})
	err := m.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestModel_Validate_IncompatibleGenerator(t *testing.T) {
	m := NewModel("Broken")
	m.AddField(&Field{Name: "id", Kind: KindString, IsID: true, Generator: GeneratorIncrement})
	err := m.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestModel_Validate_CompoundIDAndSingleID(t *testing.T) {
	m := NewModel("Broken")
	m.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	m.AddField(&Field{Name: "tenant", Kind: KindString})
	m.CompoundID["pk"] = []string{"id", "tenant"}
	err := m.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both a single id field and a compound id")
}

func TestModel_Validate_OmitUnknownField(t *testing.T) {
	m := userModel()
	m.Omit["doesNotExist"] = true
	err := m.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "omits unknown field")
}
