package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUserPostSet(t *testing.T) *Set {
	t.Helper()

	user := NewModel("User")
	user.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	user.AddRelation(&Relation{
		Name: "posts", Kind: OneToMany, TargetName: "Post",
	})

	post := NewModel("Post")
	post.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	post.AddField(&Field{Name: "authorId", Kind: KindString})
	post.AddRelation(&Relation{
		Name: "author", Kind: ManyToOne, TargetName: "User",
		Fields: []string{"authorId"}, References: []string{"id"},
	})

	set := New()
	require.NoError(t, set.AddModel(user))
	require.NoError(t, set.AddModel(post))
	require.NoError(t, set.Validate())
	return set
}

func TestSet_LazyRelationResolution(t *testing.T) {
	set := buildUserPostSet(t)
	post := set.MustModel("Post")
	author, err := post.relations["author"].Target()
	require.NoError(t, err)
	assert.Equal(t, "User", author.Name)
}

func TestSet_LazyRelationResolution_Concurrent(t *testing.T) {
	set := buildUserPostSet(t)
	user := set.MustModel("User")
	rel, err := user.Relation("posts")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Model, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := rel.Target()
			require.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Same(t, results[0], m, "memoized target must be the same pointer across goroutines")
	}
}

func TestSet_UnknownRelationTarget(t *testing.T) {
	m := NewModel("Orphan")
	m.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	m.AddRelation(&Relation{Name: "ghost", Kind: ManyToOne, TargetName: "DoesNotExist", Fields: []string{"id"}, References: []string{"id"}})

	set := New()
	require.NoError(t, set.AddModel(m))
	err := set.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestSet_DuplicateModelName(t *testing.T) {
	set := New()
	require.NoError(t, set.AddModel(NewModel("User").AddField(&Field{Name: "id", Kind: KindString, IsID: true})))
	err := set.AddModel(NewModel("User").AddField(&Field{Name: "id", Kind: KindString, IsID: true}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate model")
}

func TestSet_ManyToMany_DefaultJunction(t *testing.T) {
	user := NewModel("User")
	user.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	user.AddRelation(&Relation{Name: "roles", Kind: ManyToMany, TargetName: "Role"})

	role := NewModel("Role")
	role.AddField(&Field{Name: "id", Kind: KindString, IsID: true})
	role.AddRelation(&Relation{Name: "users", Kind: ManyToMany, TargetName: "User"})

	set := New()
	require.NoError(t, set.AddModel(user))
	require.NoError(t, set.AddModel(role))
	require.NoError(t, set.Validate())

	rel, err := set.MustModel("User").Relation("roles")
	require.NoError(t, err)
	require.NotNil(t, rel.Junction)
	assert.Equal(t, "role_users", rel.Junction.TableName)
}

func TestSet_ModelsPreserveRegistrationOrder(t *testing.T) {
	set := buildUserPostSet(t)
	var names []string
	for _, m := range set.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"User", "Post"}, names)
}
