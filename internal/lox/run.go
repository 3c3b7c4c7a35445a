package lox

// Result is the outcome of a single Run call: the Diagnostics accumulated
// across Scan/Parse/Resolve (always non-nil) and, if the pipeline reached
// the Interpret stage, the runtime errors its top-level statements raised,
// joined into one error (nil on success).
// Grounded on the teacher's Interpreter.Scan/Parse/Evaluate split
// (interpreter.go), collapsed into a single entry point per spec.md §6.2
// run_prompt/run_file share.
type Result struct {
	Diagnostics *Diagnostics
	RuntimeErr  error
}

// Run drives one source string through Scan, Parse, Resolve and
// Interpret against the given Interpreter. Scan/Parse/Resolve errors
// accumulate and abort before Interpret runs at all; a runtime error
// aborts only the statement it occurred in (spec.md §7).
func Run(interp *Interpreter, source string) Result {
	diags := NewDiagnostics()

	scanner := NewScanner(source, diags)
	tokens := scanner.Scan()

	parser := NewParser(tokens, diags)
	program := parser.Parse()

	if diags.HasErrors() {
		return Result{Diagnostics: diags}
	}

	resolver := NewResolver(diags)
	locals := resolver.Resolve(program)

	if diags.HasErrors() {
		return Result{Diagnostics: diags}
	}

	interp.Resolve(locals)
	err := interp.Interpret(program)
	return Result{Diagnostics: diags, RuntimeErr: err}
}
