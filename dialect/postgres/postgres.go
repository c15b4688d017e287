// Package postgres is the dialect.Adapter for PostgreSQL, grounded on the
// teacher's drivers/postgresql/capabilities.go capability flags and
// identifier quoting.
package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arqdb/arq/dialect"
	"github.com/arqdb/arq/schema"
	"github.com/arqdb/arq/sqlfrag"
	"github.com/shopspring/decimal"
)

type adapter struct{}

// New returns the PostgreSQL dialect.Adapter.
func New() dialect.Adapter { return adapter{} }

func (adapter) Name() dialect.Name { return dialect.Postgres }

func (adapter) Capabilities() dialect.Capabilities {
	return dialect.Capabilities{
		SupportsReturning:      true,
		SupportsDefaultValues:  true,
		SupportsDistinctOn:     true,
		SupportsArrayColumns:   true,
		SupportsNativeEnum:     true,
		RequiresLimitForOffset: false,
		NeedsTypeConversion:    false,
		VectorAvailable:        true,
		GeoAvailable:           true,
	}
}

func (adapter) Placeholder() sqlfrag.Style { return sqlfrag.StyleDollar }

func (adapter) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (a adapter) QuoteTable(schemaName, name string) string {
	if schemaName == "" {
		return a.QuoteIdentifier(name)
	}
	return a.QuoteIdentifier(schemaName) + "." + a.QuoteIdentifier(name)
}

func (a adapter) MapType(f *schema.Field) string {
	if f.NativeType != "" {
		return f.NativeType
	}
	if f.IsArray {
		return a.scalarType(f) + "[]"
	}
	return a.scalarType(f)
}

func (adapter) scalarType(f *schema.Field) string {
	switch f.Kind {
	case schema.KindString:
		return "text"
	case schema.KindInt:
		return "integer"
	case schema.KindBigInt:
		return "bigint"
	case schema.KindFloat:
		return "double precision"
	case schema.KindDecimal:
		return "numeric"
	case schema.KindBoolean:
		return "boolean"
	case schema.KindDateTime:
		return "timestamptz"
	case schema.KindDate:
		return "date"
	case schema.KindTime:
		return "time"
	case schema.KindJSON:
		return "jsonb"
	case schema.KindBlob:
		return "bytea"
	case schema.KindEnum:
		if f.EnumName != "" {
			return f.EnumName
		}
		return "text"
	case schema.KindVector:
		return "vector"
	case schema.KindPoint:
		return "point"
	default:
		return "text"
	}
}

func (adapter) BooleanLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (adapter) NullsOrderingSQL(nullsFirst bool) string {
	if nullsFirst {
		return " NULLS FIRST"
	}
	return " NULLS LAST"
}

func (adapter) JSONArrayAgg(rowExpr, fromClause *sqlfrag.Frag) *sqlfrag.Frag {
	inner := sqlfrag.New(
		[]string{"SELECT COALESCE(json_agg(row_to_json(", ")), '[]'::json) FROM"}, rowExpr)
	return sqlfrag.New([]string{"(", " ", ")"}, inner, fromClause)
}

func (adapter) JSONObject(pairs []dialect.JSONPair) *sqlfrag.Frag {
	parts := make([]string, 0, len(pairs)*2+1)
	var args []any
	parts = append(parts, "json_build_object(")
	for i, p := range pairs {
		if i > 0 {
			parts[len(parts)-1] += ", '" + p.Key + "', "
		} else {
			parts[len(parts)-1] += "'" + p.Key + "', "
		}
		parts = append(parts, "")
		args = append(args, p.Value)
	}
	parts[len(parts)-1] += ")"
	return sqlfrag.New(parts, args...)
}

func (adapter) JSONPathExtract(column *sqlfrag.Frag, path []dialect.PathSegment) *sqlfrag.Frag {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 {
			b.WriteString(",")
		}
		if seg.IsIndex {
			fmt.Fprintf(&b, "%d", seg.Index)
		} else {
			b.WriteString(seg.Key)
		}
	}
	return sqlfrag.New([]string{"", " #>> '{" + b.String() + "}'"}, column)
}

func (adapter) TransformToDatabase(value any, f *schema.Field) (any, error) {
	switch f.Kind {
	case schema.KindDecimal:
		switch v := value.(type) {
		case decimal.Decimal:
			return v.String(), nil
		case string:
			return v, nil
		}
	case schema.KindJSON:
		if value == nil {
			return nil, nil
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("postgres: marshal json field %q: %w", f.Name, err)
		}
		return string(b), nil
	}
	return value, nil
}

func (adapter) TransformFromDatabase(value any, f *schema.Field) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case schema.KindDecimal:
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse decimal field %q: %w", f.Name, err)
		}
		return d, nil
	case schema.KindJSON:
		s, ok := value.(string)
		if !ok {
			if b, ok := value.([]byte); ok {
				s = string(b)
			} else {
				return value, nil
			}
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal json field %q: %w", f.Name, err)
		}
		return out, nil
	}
	return value, nil
}

func (adapter) IsSystemIndex(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "_pkey") ||
		strings.HasSuffix(lower, "_key") ||
		strings.HasSuffix(lower, "_fkey") ||
		strings.HasPrefix(lower, "pg_")
}

func (adapter) IsSystemTable(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "pg_") ||
		strings.HasPrefix(lower, "information_schema") ||
		lower == "pg_catalog"
}
