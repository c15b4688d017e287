package postgres

import (
	"testing"

	"github.com/arqdb/arq/schema"
	"github.com/arqdb/arq/sqlfrag"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	a := New()
	assert.Equal(t, `"users"`, a.QuoteIdentifier("users"))
	assert.Equal(t, `"weird""name"`, a.QuoteIdentifier(`weird"name`))
}

func TestMapType(t *testing.T) {
	a := New()
	tests := []struct {
		field    *schema.Field
		expected string
	}{
		{&schema.Field{Kind: schema.KindString}, "text"},
		{&schema.Field{Kind: schema.KindDecimal}, "numeric"},
		{&schema.Field{Kind: schema.KindInt, IsArray: true}, "integer[]"},
		{&schema.Field{Kind: schema.KindString, NativeType: "@db.VarChar(255)"}, "@db.VarChar(255)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, a.MapType(tt.field))
	}
}

func TestJSONArrayAgg_EmptyCollectionCoalescesToEmptyArray(t *testing.T) {
	a := New()
	row := sqlfrag.Raw("t1")
	from := sqlfrag.Raw("post AS t1")
	frag := a.JSONArrayAgg(row, from)
	sql, _ := frag.Render(sqlfrag.StyleDollar)
	assert.Contains(t, sql, "COALESCE(json_agg(row_to_json(t1)), '[]'::json)")
}

func TestDecimalRoundTrip(t *testing.T) {
	a := New()
	f := &schema.Field{Name: "price", Kind: schema.KindDecimal}
	d := decimal.RequireFromString("19.99")

	stored, err := a.TransformToDatabase(d, f)
	require.NoError(t, err)
	assert.Equal(t, "19.99", stored)

	back, err := a.TransformFromDatabase(stored, f)
	require.NoError(t, err)
	assert.True(t, d.Equal(back.(decimal.Decimal)))
}

func TestCapabilities(t *testing.T) {
	caps := New().Capabilities()
	assert.True(t, caps.SupportsReturning)
	assert.True(t, caps.SupportsDistinctOn)
	assert.False(t, caps.RequiresLimitForOffset)
}

func TestIsSystemIndex(t *testing.T) {
	a := New()
	assert.True(t, a.IsSystemIndex("users_pkey"))
	assert.True(t, a.IsSystemIndex("users_email_key"))
	assert.False(t, a.IsSystemIndex("idx_users_email"))
}
