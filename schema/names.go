// Package schema is the resolved, immutable schema model consumed by the
// planner and differ. Nothing in this package talks to a database; it is
// built once by an external caller (a schema-definition builder is
// explicitly out of scope) and then only ever read.
package schema

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	snakeRe1 = regexp.MustCompile("([a-z0-9])([A-Z])")
	snakeRe2 = regexp.MustCompile("([A-Z])([A-Z][a-z])")
)

// CamelToSnakeCase converts camelCase/PascalCase to snake_case.
func CamelToSnakeCase(input string) string {
	if input == "" {
		return ""
	}
	result := snakeRe1.ReplaceAllString(input, "${1}_${2}")
	result = snakeRe2.ReplaceAllString(result, "${1}_${2}")
	return strings.ToLower(result)
}

// Pluralize applies a simple English pluralization, sufficient for default
// table-name derivation. Callers that need exact plurals map the table name
// explicitly instead of relying on this heuristic.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	word = strings.ToLower(word)

	switch {
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"), strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(rune(word[len(word)-2])):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "fe"):
		return word[:len(word)-2] + "ves"
	case strings.HasSuffix(word, "f"):
		return word[:len(word)-1] + "ves"
	default:
		return word + "s"
	}
}

// Singularize strips a trailing plural suffix. It is the inverse used by
// junction-table naming, not a general English singularizer.
func Singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ses") && len(word) > 3:
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && len(word) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

// ModelNameToTableName derives the default SQL table name for a logical
// model name: snake_case then pluralized. A Model's explicit TableName
// mapping always takes priority over this default.
func ModelNameToTableName(modelName string) string {
	return Pluralize(CamelToSnakeCase(modelName))
}

// JunctionTableName derives the default many-to-many junction table name
// from the two model names in a fixed, order-independent way, so both
// relation declarations (A's and B's) compute the same name independently.
func JunctionTableName(modelA, modelB string) string {
	if modelA == modelB {
		table := ModelNameToTableName(modelA)
		return Singularize(table) + "_" + table
	}

	first, second := modelA, modelB
	if strings.ToLower(modelA) > strings.ToLower(modelB) {
		first, second = modelB, modelA
	}

	tableA := ModelNameToTableName(first)
	tableB := ModelNameToTableName(second)
	return Singularize(tableA) + "_" + tableB
}
