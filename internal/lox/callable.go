package lox

import "fmt"

// Callable is a Value that can be invoked: a Function, a NativeFunction,
// or a Class (calling a Class constructs an Instance). Folding all three
// into one invocation contract is the redesign spec.md §9 calls for in
// place of the source's double-dispatch between LoxCallable and LoxClass.
type Callable interface {
	Value
	Call(interp *Interpreter, args []Value) (Value, error)
	Arity() int
}

// Function is a user-defined function or method: its parameter list, its
// body, and the environment it closed over at definition time. Grounded
// on the teacher's LoxFunction (object.go/callable.go).
type Function struct {
	Name          string
	Decl          *FunctionStmt
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Kind() ValueKind { return CallableKind }
func (f *Function) String() string  { return fmt.Sprintf("<fn %s>", f.Name) }
func (f *Function) Arity() int      { return len(f.Decl.Params) }

// Call implements spec.md §4.5's function-call semantics: a fresh
// environment parented on the closure, parameters bound positionally,
// the body executed, and the normal-completion/return/initializer rules
// applied.
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)
	for i, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	step, err := interp.executeBlock(f.Decl.Body.Statements, env)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		this, _ := f.Closure.GetAt(0, "this")
		return this, nil
	}

	if step.kind == stepReturn {
		return step.value, nil
	}
	return Nil, nil
}

// bind produces a copy of f whose closure additionally defines "this" as
// instance — the mechanism behind method binding (spec.md §4.5 Get/Set).
func (f *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Name: f.Name, Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// NativeFunction wraps a host-provided primitive (spec.md §6.4's clock,
// and a stringify helper used internally by the `+` coercion rule).
// Grounded on original_source/src/Lox/NativeFunctions.h: the original
// keeps natives as a distinct Callable variant rather than special-casing
// them by name inside call evaluation, which is what the teacher's
// evaluate.go does for clock.
type NativeFunction struct {
	Name string
	Ar   int
	Fn   func(interp *Interpreter, args []Value) (Value, error)
}

func (n *NativeFunction) Kind() ValueKind { return CallableKind }
func (n *NativeFunction) String() string  { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *NativeFunction) Arity() int      { return n.Ar }
func (n *NativeFunction) Call(interp *Interpreter, args []Value) (Value, error) {
	return n.Fn(interp, args)
}

// Class is a callable that constructs Instances. Superclass exists but is
// never populated by the parser (spec.md §3.5/§9): inheritance is absent.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) Kind() ValueKind { return CallableKind }
func (c *Class) String() string  { return c.Name }

// FindMethod looks up name in c's method table, falling back to the
// (currently always-nil) superclass chain.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance and, if the class defines init, binds
// and invokes it before returning the instance (spec.md §4.5 Call).
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Value)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a runtime object: an owning class reference and a mutable
// field map, mutated in place by Set (spec.md §3.5).
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) Kind() ValueKind { return InstanceKind }
func (i *Instance) String() string  { return i.Class.Name + " instance" }

// Get implements spec.md §4.5 Get: fields shadow methods; a method hit is
// bound to the instance before being returned.
func (i *Instance) Get(name Token) (Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return m.bind(i), nil
	}
	return nil, NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name Token, value Value) {
	i.Fields[name.Lexeme] = value
}
