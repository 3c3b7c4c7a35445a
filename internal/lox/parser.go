package lox

// Parser is a recursive-descent parser following the precedence ladder
// of spec.md §4.2 (sequence > assignment > ternary > or > and > equality
// > comparison > term > factor > unary > call > primary). Grounded on
// the teacher's parser.go, extended with the sequence/ternary/lambda/
// compound-assignment/break/continue/class grammar spec.md adds, and
// switched from the teacher's os.Exit(65) panics to the Diagnostics
// accumulator plus a synchronize() recovery step (spec.md §4.2/§7).
type Parser struct {
	tokens []Token
	idx    int
	diags  *Diagnostics
}

func NewParser(tokens []Token, diags *Diagnostics) *Parser {
	return &Parser{tokens: tokens, diags: diags}
}

// parseError is raised internally to unwind to the nearest
// synchronization point; it is never returned to callers of Parse.
type parseError struct{}

func (p *Parser) Parse() []Stmt {
	var stmts []Stmt
	for !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) declaration() (stmt Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(CLASS):
		return p.classDecl()
	case p.match(FUN):
		return p.function("function")
	case p.match(VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() Stmt {
	name := p.consume(IDENTIFIER, "Expect class name.")
	p.consume(LEFT_BRACE, "Expect '{' before class body.")

	var methods []*FunctionStmt
	for !p.check(RIGHT_BRACE) && !p.atEnd() {
		methods = append(methods, p.function("method").(*FunctionStmt))
	}
	p.consume(RIGHT_BRACE, "Expect '}' after class body.")

	return &ClassStmt{Name: name, Methods: methods}
}

// function parses the shared "IDENTIFIER ( params ) block" shape used by
// both top-level fun declarations and methods. kind is used only in
// error messages.
func (p *Parser) function(kind string) Stmt {
	name := p.consume(IDENTIFIER, "Expect "+kind+" name.")
	return p.functionBody(name)
}

func (p *Parser) functionBody(name Token) Stmt {
	p.consume(LEFT_PAREN, "Expect '(' after name.")
	params := p.paramList()
	p.consume(LEFT_BRACE, "Expect '{' before body.")
	body := p.blockStatements()
	return &FunctionStmt{Name: name, Params: params, Body: &BlockStmt{Statements: body}}
}

func (p *Parser) paramList() []Token {
	var params []Token
	if !p.check(RIGHT_PAREN) {
		for {
			if len(params) >= 255 {
				p.errorAt(p.current(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(IDENTIFIER, "Expect parameter name."))
			if !p.match(COMMA) {
				break
			}
		}
	}
	p.consume(RIGHT_PAREN, "Expect ')' after parameters.")
	return params
}

func (p *Parser) varDecl() Stmt {
	name := p.consume(IDENTIFIER, "Expect variable name.")

	var init Expr
	if p.match(EQUAL) {
		init = p.expression()
	}
	p.consume(SEMICOLON, "Expect ';' after variable declaration.")
	return &VarStmt{Name: name, Initializer: init}
}

func (p *Parser) statement() Stmt {
	switch {
	case p.match(FOR):
		return p.forStmt()
	case p.match(IF):
		return p.ifStmt()
	case p.match(PRINT):
		return p.printStmt()
	case p.match(RETURN):
		return p.returnStmt()
	case p.match(WHILE):
		return p.whileStmt()
	case p.match(BREAK):
		kw := p.previous()
		p.consume(SEMICOLON, "Expect ';' after 'break'.")
		return &BreakStmt{Keyword: kw}
	case p.match(CONTINUE):
		kw := p.previous()
		p.consume(SEMICOLON, "Expect ';' after 'continue'.")
		return &ContinueStmt{Keyword: kw}
	case p.match(LEFT_BRACE):
		return &BlockStmt{Statements: p.blockStatements()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() Stmt {
	expr := p.expression()
	p.consume(SEMICOLON, "Expect ';' after expression.")
	return &ExpressionStmt{Expression: expr}
}

func (p *Parser) printStmt() Stmt {
	expr := p.expression()
	p.consume(SEMICOLON, "Expect ';' after value.")
	return &PrintStmt{Expression: expr}
}

func (p *Parser) returnStmt() Stmt {
	kw := p.previous()
	var value Expr
	if !p.check(SEMICOLON) {
		value = p.expression()
	}
	p.consume(SEMICOLON, "Expect ';' after return value.")
	return &ReturnStmt{Keyword: kw, Value: value}
}

func (p *Parser) ifStmt() Stmt {
	p.consume(LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(RIGHT_PAREN, "Expect ')' after if condition.")
	then := p.statement()
	var els Stmt
	if p.match(ELSE) {
		els = p.statement()
	}
	return &IfStmt{Condition: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() Stmt {
	p.consume(LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(RIGHT_PAREN, "Expect ')' after condition.")
	body := p.statement()
	return &WhileStmt{Condition: cond, Body: body}
}

// forStmt desugars "for (init; cond; incr) body" into the equivalent
// while-loop form (spec.md §4.2/§9). The increment lives in the inner
// block alongside body, which is what makes `continue` skip it — a
// literal consequence of the desugar that spec.md keeps rather than
// special-cases away.
func (p *Parser) forStmt() Stmt {
	p.consume(LEFT_PAREN, "Expect '(' after 'for'.")

	var init Stmt
	switch {
	case p.match(SEMICOLON):
		init = nil
	case p.match(VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond Expr
	if !p.check(SEMICOLON) {
		cond = p.expression()
	}
	p.consume(SEMICOLON, "Expect ';' after loop condition.")

	var incr Expr
	if !p.check(RIGHT_PAREN) {
		incr = p.expression()
	}
	p.consume(RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if incr != nil {
		body = &BlockStmt{Statements: []Stmt{body, &ExpressionStmt{Expression: incr}}}
	}
	if cond == nil {
		cond = &LiteralExpr{Value: NewBool(true)}
	}
	var loop Stmt = &WhileStmt{Condition: cond, Body: body}
	if init != nil {
		loop = &BlockStmt{Statements: []Stmt{init, loop}}
	}
	return loop
}

func (p *Parser) blockStatements() []Stmt {
	var stmts []Stmt
	for !p.check(RIGHT_BRACE) && !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.consume(RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

// expression is the comma operator's home: a top-level expression is a
// sequence of one or more assignment-level expressions.
func (p *Parser) expression() Expr {
	first := p.assignment()
	if !p.check(COMMA) {
		return first
	}
	exprs := []Expr{first}
	for p.match(COMMA) {
		exprs = append(exprs, p.assignment())
	}
	return &SequenceExpr{Exprs: exprs}
}

var compoundOps = map[TokenType]TokenType{
	PLUS_EQUAL:  PLUS,
	MINUS_EQUAL: MINUS,
	STAR_EQUAL:  STAR,
	SLASH_EQUAL: SLASH,
}

// assignment handles both plain "=" and the compound "+= -= *= /=" forms,
// desugaring the latter into "name = name op value" (spec.md §4.2). It
// also builds SetExpr when the target is a property access.
func (p *Parser) assignment() Expr {
	expr := p.ternary()

	if p.match(EQUAL) {
		equals := p.previous()
		value := p.assignment()
		return p.finishAssignment(expr, equals, value)
	}

	if p.match(PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL) {
		op := p.previous()
		value := p.assignment()
		desugared := &BinaryExpr{Left: expr, Op: Token{Type: compoundOps[op.Type], Lexeme: string([]byte{op.Lexeme[0]}), Line: op.Line}, Right: value}
		return p.finishAssignment(expr, op, desugared)
	}

	return expr
}

func (p *Parser) finishAssignment(target Expr, tok Token, value Expr) Expr {
	switch t := target.(type) {
	case *VariableExpr:
		return &AssignmentExpr{Name: t.Name, Value: value}
	case *GetExpr:
		return &SetExpr{Object: t.Object, Name: t.Name, Value: value}
	default:
		p.errorAt(tok, "Invalid assignment target.")
		return target
	}
}

func (p *Parser) ternary() Expr {
	expr := p.logicOr()
	if p.match(QUESTION) {
		then := p.expression()
		p.consume(COLON, "Expect ':' in ternary expression.")
		els := p.ternary()
		return &TernaryExpr{Predicate: expr, Then: then, Else: els}
	}
	return expr
}

func (p *Parser) logicOr() Expr {
	expr := p.logicAnd()
	for p.match(OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() Expr {
	expr := p.equality()
	for p.match(AND) {
		op := p.previous()
		right := p.equality()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() Expr {
	expr := p.comparison()
	for p.match(EQUAL_EQUAL, BANG_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() Expr {
	expr := p.term()
	for p.match(LESS, LESS_EQUAL, GREATER, GREATER_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() Expr {
	expr := p.factor()
	for p.match(PLUS, MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() Expr {
	expr := p.unary()
	for p.match(STAR, SLASH) {
		op := p.previous()
		right := p.unary()
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

// unary handles !/- and prefix ++/--.
func (p *Parser) unary() Expr {
	if p.match(BANG, MINUS, PLUS_PLUS, MINUS_MINUS) {
		op := p.previous()
		right := p.unary()
		return &UnaryExpr{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(DOT):
			name := p.consume(IDENTIFIER, "Expect property name after '.'.")
			expr = &GetExpr{Object: expr, Name: name}
		case p.check(PLUS_PLUS) || p.check(MINUS_MINUS):
			op := p.advance()
			expr = &UnaryExpr{Op: op, Right: expr, Postfix: true}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee Expr) Expr {
	var args []Expr
	if !p.check(RIGHT_PAREN) {
		for {
			if len(args) >= 255 {
				p.errorAt(p.current(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.assignment())
			if !p.match(COMMA) {
				break
			}
		}
	}
	paren := p.consume(RIGHT_PAREN, "Expect ')' after arguments.")
	return &CallExpr{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) primary() Expr {
	switch {
	case p.match(FALSE):
		return &LiteralExpr{Value: NewBool(false)}
	case p.match(TRUE):
		return &LiteralExpr{Value: NewBool(true)}
	case p.match(NIL):
		return &LiteralExpr{Value: Nil}
	case p.match(NUMBER):
		return &LiteralExpr{Value: parseNumberLiteral(p.previous().Literal)}
	case p.match(STRING):
		return &LiteralExpr{Value: NewString(p.previous().Literal)}
	case p.match(THIS):
		return &ThisExpr{Keyword: p.previous()}
	case p.match(IDENTIFIER):
		return &VariableExpr{Name: p.previous()}
	case p.match(LAMBDA):
		return p.lambda()
	case p.match(LEFT_PAREN):
		expr := p.expression()
		p.consume(RIGHT_PAREN, "Expect ')' after expression.")
		return &GroupingExpr{Expression: expr}
	default:
		p.errorAt(p.current(), "Expect expression.")
		panic(parseError{})
	}
}

func (p *Parser) lambda() Expr {
	name := Token{Type: IDENTIFIER, Lexeme: "lambda", Line: p.previous().Line}
	fn := p.functionBody(name).(*FunctionStmt)
	return &LambdaExpr{Function: fn}
}

// --------------- Helper Functions --------------- //

func (p *Parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t TokenType, msg string) Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAt(p.current(), msg)
	panic(parseError{})
}

func (p *Parser) check(t TokenType) bool {
	return !p.atEnd() && p.current().Type == t
}

func (p *Parser) advance() Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.current().Type == END
}

func (p *Parser) current() Token {
	return p.tokens[p.idx]
}

func (p *Parser) previous() Token {
	if p.idx > 0 {
		return p.tokens[p.idx-1]
	}
	return p.current()
}

func (p *Parser) errorAt(tok Token, msg string) {
	p.diags.Add(&LoxError{Kind: ParseError, Line: tok.Line, Token: &tok, Message: msg})
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one parse error reports instead of cascading into dozens
// (spec.md §4.2/§7).
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == SEMICOLON {
			return
		}
		switch p.current().Type {
		case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN, BREAK, CONTINUE:
			return
		}
		p.advance()
	}
}
