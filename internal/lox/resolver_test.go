package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resolveSource(t *testing.T, source string) (map[Expr]int, *Diagnostics) {
	t.Helper()
	diags := NewDiagnostics()
	toks := NewScanner(source, diags).Scan()
	program := NewParser(toks, diags).Parse()
	if diags.HasErrors() {
		return nil, diags
	}
	locals := NewResolver(diags).Resolve(program)
	return locals, diags
}

func TestResolveLocalVariableRecordsHops(t *testing.T) {
	locals, diags := resolveSource(t, `
		var a = 1;
		{
			var b = 2;
			print a + b;
		}
	`)
	assert.False(t, diags.HasErrors())
	assert.NotEmpty(t, locals)
}

func TestResolveSelfReferentialInitializerIsError(t *testing.T) {
	_, diags := resolveSource(t, `
		var a = 1;
		{
			var a = a;
		}
	`)
	assert.True(t, diags.HasErrors())
	assert.Equal(t, ResolveError, diags.Errors()[0].Kind)
}

func TestResolveRedeclarationInLocalScopeIsError(t *testing.T) {
	_, diags := resolveSource(t, `
		{
			var a = 1;
			var a = 2;
		}
	`)
	assert.True(t, diags.HasErrors())
}

func TestResolveReturnOutsideFunctionIsError(t *testing.T) {
	_, diags := resolveSource(t, `return 1;`)
	assert.True(t, diags.HasErrors())
}

func TestResolveReturnValueFromInitializerIsError(t *testing.T) {
	_, diags := resolveSource(t, `
		class A {
			init() { return 1; }
		}
	`)
	assert.True(t, diags.HasErrors())
}

func TestResolveBreakOutsideLoopIsError(t *testing.T) {
	_, diags := resolveSource(t, `break;`)
	assert.True(t, diags.HasErrors())
}

func TestResolveContinueOutsideLoopIsError(t *testing.T) {
	_, diags := resolveSource(t, `continue;`)
	assert.True(t, diags.HasErrors())
}

func TestResolveThisOutsideClassIsError(t *testing.T) {
	_, diags := resolveSource(t, `print this;`)
	assert.True(t, diags.HasErrors())
}

func TestResolveBreakInsideNestedLoopIsFine(t *testing.T) {
	_, diags := resolveSource(t, `
		while (true) {
			while (true) {
				break;
			}
			break;
		}
	`)
	assert.False(t, diags.HasErrors())
}
