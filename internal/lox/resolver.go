package lox

// FunctionKind tracks what kind of function body the resolver is
// currently inside, used to validate return placement, including a value
// returned from an initializer (spec.md §4.3). `this` placement is checked
// with ClassKind.
type FunctionKind int

const (
	FuncNone FunctionKind = iota
	FuncFunction
	FuncMethod
	FuncInitializer
)

type ClassKind int

const (
	ClassNone ClassKind = iota
	ClassInClass
)

// Resolver performs the single static-analysis pass of spec.md §4.3: no
// evaluation, just scope bookkeeping that produces the hops side-table
// the interpreter consults at runtime. Grounded almost directly on the
// teacher's resolver.go, which already implements this pass faithfully —
// the one file in the teacher repo that matches the spec's design without
// needing to be generalized, only extended for break/continue/lambda.
type Resolver struct {
	locals          map[Expr]int
	scopes          []map[string]bool
	currentFunction FunctionKind
	currentClass    ClassKind
	loopDepth       int
	diags           *Diagnostics
}

func NewResolver(diags *Diagnostics) *Resolver {
	return &Resolver{locals: make(map[Expr]int), diags: diags}
}

// Resolve resolves every statement in program and returns the hops
// side-table (spec.md §3.6).
func (r *Resolver) Resolve(program []Stmt) map[Expr]int {
	for _, s := range program {
		r.resolveStmt(s)
	}
	return r.locals
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, make(map[string]bool)) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) err(line int, tok Token, msg string) {
	r.diags.Add(&LoxError{Kind: ResolveError, Line: line, Token: &tok, Message: msg})
}

func (r *Resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.err(name.Line, name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) resolveLocal(expr Expr, name Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: treated as global (spec.md §3.6).
}

func (r *Resolver) resolveFunction(fn *FunctionStmt, kind FunctionKind) {
	enclosing := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param.Lexeme)
	}
	for _, stmt := range fn.Body.Statements {
		r.resolveStmt(stmt)
	}
	r.endScope()

	r.currentFunction = enclosing
}

func (r *Resolver) resolveStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *BlockStmt:
		r.beginScope()
		for _, d := range s.Statements {
			r.resolveStmt(d)
		}
		r.endScope()
	case *VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name.Lexeme)
	case *FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name.Lexeme)
		r.resolveFunction(s, FuncFunction)
	case *ClassStmt:
		enclosingClass := r.currentClass
		r.currentClass = ClassInClass

		r.declare(s.Name)
		r.define(s.Name.Lexeme)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["this"] = true
		for _, method := range s.Methods {
			kind := FuncMethod
			if method.Name.Lexeme == "init" {
				kind = FuncInitializer
			}
			r.resolveFunction(method, kind)
		}
		r.endScope()

		r.currentClass = enclosingClass
	case *ExpressionStmt:
		r.resolveExpr(s.Expression)
	case *IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *PrintStmt:
		r.resolveExpr(s.Expression)
	case *ReturnStmt:
		if r.currentFunction == FuncNone {
			r.err(s.Keyword.Line, s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == FuncInitializer {
				r.err(s.Keyword.Line, s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *WhileStmt:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--
	case *BreakStmt:
		if r.loopDepth == 0 {
			r.err(s.Keyword.Line, s.Keyword, "Can't use 'break' outside of a loop.")
		}
	case *ContinueStmt:
		if r.loopDepth == 0 {
			r.err(s.Keyword.Line, s.Keyword, "Can't use 'continue' outside of a loop.")
		}
	default:
		panic("lox: resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveExpr(expr Expr) {
	switch e := expr.(type) {
	case *VariableExpr:
		if len(r.scopes) > 0 {
			if defined, declared := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; declared && !defined {
				r.err(e.Name.Line, e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	case *AssignmentExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ThisExpr:
		if r.currentClass == ClassNone {
			r.err(e.Keyword.Line, e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *GroupingExpr:
		r.resolveExpr(e.Expression)
	case *LiteralExpr:
		// nothing to resolve
	case *UnaryExpr:
		r.resolveExpr(e.Right)
	case *BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *SequenceExpr:
		for _, x := range e.Exprs {
			r.resolveExpr(x)
		}
	case *TernaryExpr:
		r.resolveExpr(e.Predicate)
		r.resolveExpr(e.Then)
		if e.Else != nil {
			r.resolveExpr(e.Else)
		}
	case *CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
	case *LambdaExpr:
		r.resolveFunction(e.Function, FuncFunction)
	case *GetExpr:
		r.resolveExpr(e.Object)
	case *SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	default:
		panic("lox: resolver: unhandled expression type")
	}
}
