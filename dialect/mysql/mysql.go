// Package mysql is the dialect.Adapter for MySQL, grounded on the
// teacher's drivers/mysql/capabilities.go capability flags.
package mysql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arqdb/arq/dialect"
	"github.com/arqdb/arq/schema"
	"github.com/arqdb/arq/sqlfrag"
	"github.com/shopspring/decimal"
)

type adapter struct{}

// New returns the MySQL dialect.Adapter.
func New() dialect.Adapter { return adapter{} }

func (adapter) Name() dialect.Name { return dialect.MySQL }

func (adapter) Capabilities() dialect.Capabilities {
	return dialect.Capabilities{
		SupportsReturning:      false,
		SupportsDefaultValues:  false,
		SupportsDistinctOn:     false,
		SupportsArrayColumns:   false,
		SupportsNativeEnum:     true,
		RequiresLimitForOffset: true,
		NeedsTypeConversion:    true,
		VectorAvailable:        false,
		GeoAvailable:           false,
	}
}

func (adapter) Placeholder() sqlfrag.Style { return sqlfrag.StyleQuestion }

func (adapter) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
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
	// MySQL has no native array type; array columns are emulated as JSON.
	if f.IsArray {
		return "json"
	}
	return a.scalarType(f)
}

func (adapter) scalarType(f *schema.Field) string {
	switch f.Kind {
	case schema.KindString:
		return "varchar(191)"
	case schema.KindInt:
		return "int"
	case schema.KindBigInt:
		return "bigint"
	case schema.KindFloat:
		return "double"
	case schema.KindDecimal:
		return "decimal(65,30)"
	case schema.KindBoolean:
		return "tinyint(1)"
	case schema.KindDateTime:
		return "datetime(3)"
	case schema.KindDate:
		return "date"
	case schema.KindTime:
		return "time"
	case schema.KindJSON:
		return "json"
	case schema.KindBlob:
		return "blob"
	case schema.KindEnum:
		return "enum"
	case schema.KindVector, schema.KindPoint:
		return "json" // emulated: no native support
	default:
		return "varchar(191)"
	}
}

func (adapter) BooleanLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (adapter) NullsOrderingSQL(bool) string {
	// MySQL has no NULLS FIRST/LAST syntax; it always sorts NULL first for
	// ASC and last for DESC, matching its capabilities.go counterpart.
	return ""
}

func (adapter) JSONArrayAgg(rowExpr, fromClause *sqlfrag.Frag) *sqlfrag.Frag {
	inner := sqlfrag.New([]string{"SELECT COALESCE(JSON_ARRAYAGG(", "), JSON_ARRAY()) FROM ", ""}, rowExpr, fromClause)
	return sqlfrag.New([]string{"(", ")"}, inner)
}

func (adapter) JSONObject(pairs []dialect.JSONPair) *sqlfrag.Frag {
	parts := make([]string, 0, len(pairs)*2+1)
	var args []any
	parts = append(parts, "JSON_OBJECT(")
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
	b.WriteString("$")
	for _, seg := range path {
		if seg.IsIndex {
			b.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		} else {
			b.WriteString("." + seg.Key)
		}
	}
	return sqlfrag.New([]string{"JSON_UNQUOTE(JSON_EXTRACT(", ", '" + b.String() + "'))"}, column)
}

func (adapter) TransformToDatabase(value any, f *schema.Field) (any, error) {
	switch f.Kind {
	case schema.KindDecimal:
		switch v := value.(type) {
		case decimal.Decimal:
			return v.String(), nil
		}
	case schema.KindJSON:
		if value == nil {
			return nil, nil
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("mysql: marshal json field %q: %w", f.Name, err)
		}
		return string(b), nil
	case schema.KindBoolean:
		if v, ok := value.(bool); ok {
			if v {
				return 1, nil
			}
			return 0, nil
		}
	}
	return value, nil
}

func (adapter) TransformFromDatabase(value any, f *schema.Field) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case schema.KindDecimal:
		s, err := coerceString(value)
		if err != nil {
			return nil, fmt.Errorf("mysql: decimal field %q: %w", f.Name, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("mysql: parse decimal field %q: %w", f.Name, err)
		}
		return d, nil
	case schema.KindBoolean:
		switch v := value.(type) {
		case int64:
			return v != 0, nil
		case []byte:
			return string(v) == "1", nil
		}
	case schema.KindJSON:
		s, err := coerceString(value)
		if err != nil {
			return nil, fmt.Errorf("mysql: json field %q: %w", f.Name, err)
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("mysql: unmarshal json field %q: %w", f.Name, err)
		}
		return out, nil
	}
	return value, nil
}

// coerceString normalizes the string-shaped values MySQL's driver returns
// (it surfaces numeric and JSON columns as either string or []byte
// depending on how the column was described) into a plain string, matching
// the teacher's own NeedsTypeConversion posture for this dialect.
func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unexpected type %T", value)
	}
}

func (adapter) IsSystemIndex(name string) bool {
	lower := strings.ToLower(name)
	return lower == "primary" ||
		strings.HasPrefix(lower, "fk_") ||
		strings.HasPrefix(lower, "mysql_")
}

func (adapter) IsSystemTable(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "mysql.") ||
		strings.HasPrefix(lower, "information_schema") ||
		strings.HasPrefix(lower, "performance_schema") ||
		lower == "mysql" || lower == "sys"
}
