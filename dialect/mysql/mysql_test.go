package mysql

import (
	"testing"

	"github.com/arqdb/arq/schema"
	"github.com/arqdb/arq/sqlfrag"
	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	a := New()
	assert.Equal(t, "`users`", a.QuoteIdentifier("users"))
}

func TestMapType_ArrayEmulatedAsJSON(t *testing.T) {
	a := New()
	assert.Equal(t, "json", a.MapType(&schema.Field{Kind: schema.KindInt, IsArray: true}))
}

func TestCapabilities_NoReturningRequiresLimitForOffset(t *testing.T) {
	caps := New().Capabilities()
	assert.False(t, caps.SupportsReturning)
	assert.True(t, caps.RequiresLimitForOffset)
	assert.False(t, caps.SupportsDistinctOn)
}

func TestNullsOrderingSQL_Unsupported(t *testing.T) {
	a := New()
	assert.Equal(t, "", a.NullsOrderingSQL(true))
	assert.Equal(t, "", a.NullsOrderingSQL(false))
}

func TestJSONArrayAgg_EmptyCollectionCoalescesToEmptyArray(t *testing.T) {
	a := New()
	frag := a.JSONArrayAgg(sqlfrag.Raw("obj"), sqlfrag.Raw("t1"))
	sql, _ := frag.Render(sqlfrag.StyleQuestion)
	assert.Contains(t, sql, "COALESCE(JSON_ARRAYAGG(obj), JSON_ARRAY())")
}

func TestBooleanRoundTrip(t *testing.T) {
	a := New()
	f := &schema.Field{Kind: schema.KindBoolean}

	stored, err := a.TransformToDatabase(true, f)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored)

	back, err := a.TransformFromDatabase(int64(1), f)
	assert.NoError(t, err)
	assert.Equal(t, true, back)
}
