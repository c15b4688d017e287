// Package sqlfrag is the module's SQL Value (spec.md §4.1): an immutable,
// alternating sequence of literal text and bound parameters that renders to
// a placeholder style without ever inspecting the parameters it carries.
package sqlfrag

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Frag is an immutable fragment of SQL text interleaved with bound
// parameters. len(parts) == len(args)+1 always holds; parts[i] is the
// literal text preceding args[i], and the final parts entry trails the
// last argument.
type Frag struct {
	parts []string
	args  []any

	once     [styleCount]sync.Once
	rendered [styleCount]rendered
}

type rendered struct {
	sql  string
	args []any
}

// Empty is the zero-argument, zero-text fragment. It is the identity value
// for Join and the result of building a clause with nothing to render.
var Empty = &Frag{parts: []string{""}}

// New constructs a Frag from literal parts and the values interleaved
// between them. len(parts) must equal len(args)+1; a mismatch is a
// programmer error and panics rather than producing a malformed fragment.
// A value in args that is itself a *Frag splices its own parts/args into
// the result so the flattened sequence stays alternating with exactly one
// parameter between each pair of adjacent literal strings.
func New(parts []string, args ...any) *Frag {
	if len(parts) != len(args)+1 {
		panic(fmt.Sprintf("sqlfrag: mismatched lengths: %d parts, %d args", len(parts), len(args)))
	}

	outParts := make([]string, 0, len(parts))
	outArgs := make([]any, 0, len(args))

	outParts = append(outParts, parts[0])
	for i, a := range args {
		if nested, ok := a.(*Frag); ok {
			splice(&outParts, &outArgs, nested)
			outParts[len(outParts)-1] += parts[i+1]
		} else {
			outArgs = append(outArgs, a)
			outParts = append(outParts, parts[i+1])
		}
	}

	return &Frag{parts: outParts, args: outArgs}
}

// splice appends a nested Frag's parts/args into the accumulating output,
// merging the nested fragment's leading literal text into the output's
// current trailing part so concatenation never introduces a spurious
// empty parameter boundary.
func splice(outParts *[]string, outArgs *[]any, nested *Frag) {
	last := len(*outParts) - 1
	(*outParts)[last] += nested.parts[0]
	for i, a := range nested.args {
		*outArgs = append(*outArgs, a)
		*outParts = append(*outParts, nested.parts[i+1])
	}
}

// Raw wraps literal text with no parameters. It is an escape hatch for SQL
// text a caller asserts is safe to splice verbatim (e.g. a validated
// identifier already quoted by the dialect adapter); it must never carry
// unescaped user input.
func Raw(text string) *Frag {
	return &Frag{parts: []string{text}}
}

// Join concatenates fragments with separator between them and prefix/suffix
// wrapping the whole. Join(nil, ...) and Join of an all-empty slice both
// return Empty's equivalent (no parts, no args).
func Join(frags []*Frag, separator, prefix, suffix string) *Frag {
	nonEmpty := make([]*Frag, 0, len(frags))
	for _, f := range frags {
		if f != nil && !f.IsEmpty() {
			nonEmpty = append(nonEmpty, f)
		}
	}
	if len(nonEmpty) == 0 {
		return Empty
	}

	outParts := []string{prefix}
	var outArgs []any
	for i, f := range nonEmpty {
		if i > 0 {
			outParts[len(outParts)-1] += separator
		}
		splice(&outParts, &outArgs, f)
	}
	outParts[len(outParts)-1] += suffix

	return &Frag{parts: outParts, args: outArgs}
}

// IsEmpty reports whether the fragment carries no text and no parameters.
func (f *Frag) IsEmpty() bool {
	return len(f.args) == 0 && (len(f.parts) == 0 || f.parts[0] == "")
}

// Args returns the fragment's bound parameters in left-to-right order.
func (f *Frag) Args() []any {
	return append([]any(nil), f.args...)
}

// Render concatenates the fragment's text with placeholders substituted in
// left-to-right order for the given style, returning the statement text and
// the parameter slice the external driver binds. Results are memoized per
// style: a Frag shared across multiple render sites (e.g. a WHERE fragment
// reused unchanged by both a SELECT and its COUNT sibling) renders each
// style's text exactly once.
func (f *Frag) Render(style Style) (string, []any) {
	r := &f.rendered[style]
	f.once[style].Do(func() {
		var b strings.Builder
		for i, part := range f.parts {
			b.WriteString(part)
			if i < len(f.args) {
				b.WriteString(placeholder(style, i+1))
			}
		}
		r.sql = b.String()
		r.args = append([]any(nil), f.args...)
	})
	return r.sql, r.args
}

func placeholder(style Style, n int) string {
	switch style {
	case StyleDollar:
		return "$" + strconv.Itoa(n)
	case StyleColon:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}
