package sqlfrag

import "fmt"

// Ref is a symbolic reference to a column of a prior statement's RETURNING
// row within a write plan (spec.md §9's "any scheme that preserves
// ordering guarantees is acceptable" for nested-write statement ordering).
// A Ref is bound as an ordinary Frag argument; the write-plan executor,
// which runs the statements in order and holds their RETURNING rows, is
// responsible for substituting it with the real value before binding —
// sqlfrag itself never resolves one.
type Ref struct {
	StmtIndex int
	Column    string
}

func (r Ref) String() string {
	return fmt.Sprintf("sqlfrag.Ref{stmt=%d, column=%s}", r.StmtIndex, r.Column)
}
