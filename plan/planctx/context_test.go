package planctx

import (
	"testing"

	"github.com/arqdb/arq/dialect/postgres"
	"github.com/arqdb/arq/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, name string) *schema.Model {
	t.Helper()
	m := schema.NewModel(name)
	m.AddField(&schema.Field{Name: "id", Kind: schema.KindString, IsID: true})
	return m
}

func TestAliases_MonotonicNeverReused(t *testing.T) {
	a := NewAliases()
	seen := map[string]bool{}
	var got []string
	for i := 0; i < 5; i++ {
		alias := a.Next()
		require.False(t, seen[alias], "alias %q reused", alias)
		seen[alias] = true
		got = append(got, alias)
	}
	assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4"}, got)
}

func TestRoot_AllocatesAliasForModel(t *testing.T) {
	c := Root(postgres.New(), testModel(t, "User"), OpFindMany)
	assert.Equal(t, "t0", c.ModelAlias)
	assert.Equal(t, "", c.ParentAlias)
	assert.Empty(t, c.RelationPath)
}

func TestChild_AllocatesNewAliasAndExtendsPath(t *testing.T) {
	root := Root(postgres.New(), testModel(t, "User"), OpFindMany)
	child := root.Child("posts", testModel(t, "Post"))

	assert.Equal(t, "t1", child.ModelAlias)
	assert.Equal(t, "t0", child.ParentAlias)
	assert.Equal(t, []string{"posts"}, child.RelationPath)

	grandchild := child.Child("comments", testModel(t, "Comment"))
	assert.Equal(t, "t2", grandchild.ModelAlias)
	assert.Equal(t, []string{"posts", "comments"}, grandchild.RelationPath)
}

func TestChild_SharesAliasAllocatorAcrossSiblings(t *testing.T) {
	root := Root(postgres.New(), testModel(t, "User"), OpFindMany)
	first := root.Child("posts", testModel(t, "Post"))
	second := root.Child("comments", testModel(t, "Comment"))

	assert.NotEqual(t, first.ModelAlias, second.ModelAlias)
}

func TestWithField_DoesNotMutateOriginal(t *testing.T) {
	root := Root(postgres.New(), testModel(t, "User"), OpFindMany)
	f := &schema.Field{Name: "email", Kind: schema.KindString}
	scoped := root.WithField(f)

	assert.Nil(t, root.Field)
	assert.Same(t, f, scoped.Field)
}
