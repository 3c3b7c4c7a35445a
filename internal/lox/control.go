package lox

// stepKind distinguishes the non-local-exit signals a statement's
// execution may produce (spec.md §4.5/§9 "Control signals" / "Signal" in
// the GLOSSARY). Represented as a value rather than a panic, per spec.md
// §9's redesign note — loops consume stepBreak/stepContinue, function
// bodies consume stepReturn; everything else propagates stepNormal up
// through its enclosing block unchanged.
type stepKind int

const (
	stepNormal stepKind = iota
	stepBreak
	stepContinue
	stepReturn
)

// stepResult is what Stmt execution returns. value is only meaningful
// when kind == stepReturn. Grounded on the teacher's own
// `(retVal Object, ret bool)` return shape (ast.go/run.go), generalized
// from a two-state signal to the three-state Return/Break/Continue
// taxonomy spec.md requires, itself grounded on
// original_source/src/Lox/ControlException.h's three exception types.
type stepResult struct {
	kind  stepKind
	value Value
}

var normalStep = stepResult{kind: stepNormal}
