// Package parser implements OtterLang's recursive-descent, Pratt-style
// expression parser. Statement parsing is driven by the lexer's
// INDENT/DEDENT/NEWLINE markers: a block is INDENT stmt+ DEDENT.
package parser

import (
	"strconv"

	"github.com/ztrue/tracerr"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/lexer"
	"github.com/otterlang/otterc/internal/token"
)

type Parser struct {
	lex   *lexer.Lexer
	diags *diag.Bag
	tok   token.Token
	path  string
}

func New(lex *lexer.Lexer, path string, diags *diag.Bag) *Parser {
	p := &Parser{lex: lex, diags: diags, path: path}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
}

func (p *Parser) at(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.tok.Kind != kind {
		p.errorf(diag.ExpectedToken, "expected %s, got %s", kind, p.tok.Kind)
		// Recover to the next NEWLINE at the current indentation (spec §4.2
		// failure-mode note) so one bad token doesn't abort the whole module.
		for !p.at(token.NEWLINE, token.EOF, token.DEDENT) {
			p.advance()
		}
		return p.tok
	}
	t := p.tok
	p.advance()
	return t
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) {
	p.diags.Errorf(diag.Parse, code, p.tok.Span, format, args...)
}

// Parse parses one module's worth of top-level declarations. Internal
// compiler panics (bugs, not user errors) are recovered and rewrapped
// as a tracerr-annotated error, matching the teacher's own
// Parser.Parse recover pattern.
func (p *Parser) Parse() (file *ast.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = tracerr.Wrap(rerr)
				return
			}
			panic(r)
		}
	}()

	f := &ast.File{Path: p.path}
	p.skipNewlines()
	for !p.at(token.EOF) {
		f.TopLevel = append(f.TopLevel, p.parseTopLevel())
		p.skipNewlines()
	}
	file = f
	return
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parsePublic() bool {
	if p.at(token.PUB) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) parseTopLevel() ast.TopLevel {
	public := p.parsePublic()
	switch {
	case p.at(token.DEF):
		return p.parseFuncDecl(public)
	case p.at(token.STRUCT):
		return p.parseStructDecl(public)
	case p.at(token.ENUM):
		return p.parseEnumDecl(public)
	case p.at(token.CLASS):
		return p.parseTraitDecl(public)
	case p.at(token.USE):
		return p.parseUseDecl(public)
	default:
		p.errorf(diag.ExpectedOneOf, "expected a top-level declaration, got %s", p.tok.Kind)
		p.advance()
		return ast.UseDecl{}
	}
}

func (p *Parser) parseIdent() ast.Ident {
	t := p.expect(token.IDENT)
	return ast.Ident{Name: t.Literal, Span: t.Span}
}

func (p *Parser) parseUseDecl(public bool) ast.TopLevel {
	start := p.tok.Span
	p.expect(token.USE)
	path := []string{p.expect(token.IDENT).Literal}
	for p.at(token.PERIOD) {
		p.advance()
		path = append(path, p.expect(token.IDENT).Literal)
	}
	var alias ast.Ident
	if p.at(token.AS) {
		p.advance()
		alias = p.parseIdent()
	}
	return ast.UseDecl{Path: path, Alias: alias, Public: public, Span: start}
}

func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.at(token.LBRACKET) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for !p.at(token.RBRACKET, token.EOF) {
		name := p.parseIdent()
		var constraint ast.Type
		if p.at(token.COLON) {
			p.advance()
			constraint = p.parseType()
		}
		params = append(params, ast.TypeParam{Name: name, Constraint: constraint})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return params
}

func (p *Parser) parseFuncDecl(public bool) ast.TopLevel {
	start := p.tok.Span
	p.expect(token.DEF)
	name := p.parseIdent()
	typeParams := p.parseTypeParams()
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.at(token.RPAREN, token.EOF) {
		pname := p.parseIdent()
		p.expect(token.COLON)
		kind := p.parseType()
		params = append(params, ast.Param{Name: pname, Kind: kind})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	var ret ast.Type
	if p.at(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	p.expect(token.COLON)
	body := p.parseBlock()

	return ast.FuncDecl{
		Name: name, TypeParams: typeParams, Params: params,
		Returns: ret, Body: body, Public: public, Span: start,
	}
}

func (p *Parser) parseFieldList() []ast.FieldDecl {
	p.expect(token.COLON)
	var fields []ast.FieldDecl
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	for !p.at(token.DEDENT, token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		name := p.parseIdent()
		p.expect(token.COLON)
		kind := p.parseType()
		fields = append(fields, ast.FieldDecl{Name: name, Kind: kind})
		if p.at(token.NEWLINE) {
			p.advance()
		}
	}
	p.expect(token.DEDENT)
	return fields
}

func (p *Parser) parseStructDecl(public bool) ast.TopLevel {
	p.expect(token.STRUCT)
	name := p.parseIdent()
	typeParams := p.parseTypeParams()
	fields := p.parseFieldList()
	return ast.StructDecl{Name: name, TypeParams: typeParams, Fields: fields, Public: public}
}

func (p *Parser) parseEnumDecl(public bool) ast.TopLevel {
	p.expect(token.ENUM)
	name := p.parseIdent()
	typeParams := p.parseTypeParams()
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	seen := map[string]bool{}
	var variants []ast.EnumVariant
	for !p.at(token.DEDENT, token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		vname := p.parseIdent()
		if seen[vname.Name] {
			p.diags.Add(diag.Diagnostic{Stage: diag.Parse, Code: diag.DuplicateVariant, Span: vname.Span,
				Message: "duplicate variant name " + vname.Name})
		}
		seen[vname.Name] = true
		var fields []ast.FieldDecl
		if p.at(token.LPAREN) {
			p.advance()
			for !p.at(token.RPAREN, token.EOF) {
				fname := p.parseIdent()
				p.expect(token.COLON)
				kind := p.parseType()
				fields = append(fields, ast.FieldDecl{Name: fname, Kind: kind})
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Fields: fields})
		if p.at(token.NEWLINE) {
			p.advance()
		}
	}
	p.expect(token.DEDENT)
	return ast.EnumDecl{Name: name, TypeParams: typeParams, Variants: variants, Public: public}
}

func (p *Parser) parseTraitDecl(public bool) ast.TopLevel {
	p.expect(token.CLASS)
	name := p.parseIdent()
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	var methods []ast.FuncDecl
	for !p.at(token.DEDENT, token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		m := p.parseFuncDecl(false)
		methods = append(methods, m.(ast.FuncDecl))
	}
	p.expect(token.DEDENT)
	return ast.TraitDecl{Name: name, Methods: methods, Public: public}
}

// parseType parses a possibly-generic, possibly-function type.
func (p *Parser) parseType() ast.Type {
	if p.at(token.LPAREN) {
		p.advance()
		var params []ast.Type
		for !p.at(token.RPAREN, token.EOF) {
			params = append(params, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		var ret ast.Type
		if p.at(token.ARROW) {
			p.advance()
			ret = p.parseType()
		}
		return ast.FunctionType{Params: params, Returns: ret}
	}

	name := p.parseIdent()
	nt := ast.NamedType{Name: name}
	if p.at(token.LBRACKET) {
		p.advance()
		for !p.at(token.RBRACKET, token.EOF) {
			nt.Args = append(nt.Args, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RBRACKET)
	}
	return nt
}

// ---- blocks and statements ----

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	var stmts []ast.Statement
	for !p.at(token.DEDENT, token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(token.DEDENT)
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.at(token.LET):
		return p.parseLetStmt()
	case p.at(token.RETURN):
		start := p.tok.Span
		p.advance()
		var val ast.Expression
		if !p.at(token.NEWLINE, token.EOF) {
			val = p.parseExpression()
		}
		p.expectStmtEnd()
		return ast.ReturnStmt{Value: val, Span: start}
	case p.at(token.BREAK):
		start := p.tok.Span
		p.advance()
		p.expectStmtEnd()
		return ast.BreakStmt{Span: start}
	case p.at(token.CONTINUE):
		start := p.tok.Span
		p.advance()
		p.expectStmtEnd()
		return ast.ContinueStmt{Span: start}
	case p.at(token.PASS):
		start := p.tok.Span
		p.advance()
		p.expectStmtEnd()
		return ast.PassStmt{Span: start}
	case p.at(token.RAISE):
		start := p.tok.Span
		p.advance()
		val := p.parseExpression()
		p.expectStmtEnd()
		return ast.RaiseStmt{Value: val, Span: start}
	case p.at(token.FOR):
		return p.parseForStmt()
	case p.at(token.WHILE):
		return p.parseWhileStmt()
	default:
		expr := p.parseExpression()
		p.expectStmtEnd()
		return ast.ExprStmt{X: expr}
	}
}

func (p *Parser) expectStmtEnd() {
	if p.at(token.NEWLINE) {
		p.advance()
		return
	}
	if p.at(token.EOF, token.DEDENT) {
		return
	}
	p.errorf(diag.ExpectedToken, "expected end of statement, got %s", p.tok.Kind)
}

func (p *Parser) parseLetStmt() ast.Statement {
	p.expect(token.LET)
	name := p.parseIdent()
	var kind ast.Type
	if p.at(token.COLON) {
		p.advance()
		kind = p.parseType()
	}
	p.expect(token.EQUALS)
	value := p.parseExpression()
	p.expectStmtEnd()
	return ast.LetStmt{Name: name, Kind: kind, Value: value}
}

func (p *Parser) parseForStmt() ast.Statement {
	p.expect(token.FOR)
	binding := p.parseIdent()
	p.expect(token.IN)
	iter := p.parseExpression()
	p.expect(token.COLON)
	body := p.parseBlock()
	return ast.ForStmt{Binding: binding, Iter: iter, Body: body}
}

func (p *Parser) parseWhileStmt() ast.Statement {
	p.expect(token.WHILE)
	cond := p.parseExpression()
	p.expect(token.COLON)
	body := p.parseBlock()
	return ast.WhileStmt{Cond: cond, Body: body}
}

// ---- expressions: Pratt-style precedence climbing ----

// precedence ladder, low to high: or, and, not, comparisons, |, + -, * / %, **, unary, postfix
func precedence(k token.Kind) int {
	switch k {
	case token.OR:
		return 1
	case token.AND:
		return 2
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return 3
	case token.PIPE:
		return 4
	case token.PLUS, token.MINUS:
		return 5
	case token.STAR, token.SLASH, token.PERCENT:
		return 6
	case token.STARSTAR:
		return 7
	}
	return -1
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		prec := precedence(p.tok.Kind)
		if prec < 0 || prec < minPrec {
			return left
		}
		op := p.tok.Kind
		span := p.tok.Span
		p.advance()
		nextMin := prec + 1
		if op == token.STARSTAR {
			nextMin = prec // right-associative
		}
		right := p.parseBinary(nextMin)
		left = ast.BinaryExpr{Op: op, Left: left, Right: right, Span: span}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	if p.at(token.MINUS, token.NOT) {
		op := p.tok.Kind
		span := p.tok.Span
		p.advance()
		x := p.parseUnary()
		return ast.UnaryExpr{Op: op, X: x, Span: span}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(token.PERIOD):
			p.advance()
			field := p.parseIdent()
			if p.at(token.EQUALS) {
				span := p.tok.Span
				p.advance()
				value := p.parseExpression()
				expr = ast.AssignExpr{Target: ast.FieldExpr{Of: expr, Field: field}, Value: value, Span: span}
				continue
			}
			expr = ast.FieldExpr{Of: expr, Field: field}
		case p.at(token.LPAREN):
			span := p.tok.Span
			p.advance()
			var args []ast.Expression
			for !p.at(token.RPAREN, token.EOF) {
				args = append(args, p.parseExpression())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
			expr = ast.CallExpr{Callee: expr, Arguments: args, Span: span}
		case p.at(token.LBRACKET):
			span := p.tok.Span
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			if p.at(token.EQUALS) {
				p.advance()
				value := p.parseExpression()
				expr = ast.AssignExpr{Target: ast.IndexExpr{Of: expr, Index: idx, Span: span}, Value: value, Span: span}
				continue
			}
			expr = ast.IndexExpr{Of: expr, Index: idx, Span: span}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch {
	case p.at(token.INT):
		lit := p.tok
		p.advance()
		v, err := strconv.ParseInt(lit.Literal, 10, 64)
		if err != nil {
			p.diags.Errorf(diag.Parse, diag.ExpectedToken, lit.Span, "invalid integer literal %q", lit.Literal)
		}
		return ast.LitExpr{Literal: ast.IntLiteral{Value: v, Span: lit.Span}}
	case p.at(token.FLOAT):
		lit := p.tok
		p.advance()
		v, err := strconv.ParseFloat(lit.Literal, 64)
		if err != nil {
			p.diags.Errorf(diag.Parse, diag.ExpectedToken, lit.Span, "invalid float literal %q", lit.Literal)
		}
		return ast.LitExpr{Literal: ast.FloatLiteral{Value: v, Span: lit.Span}}
	case p.at(token.STRING):
		lit := p.tok
		p.advance()
		return ast.LitExpr{Literal: ast.StringLiteral{Value: lit.Literal, Span: lit.Span}}
	case p.at(token.F_BEGIN):
		return p.parseFString()
	case p.at(token.IDENT):
		id := p.parseIdent()
		if p.at(token.LBRACE) {
			return p.parseStructLit(id)
		}
		if p.at(token.EQUALS) {
			span := p.tok.Span
			p.advance()
			value := p.parseExpression()
			return ast.AssignExpr{Target: ast.VarExpr{Name: id}, Value: value, Span: span}
		}
		return ast.VarExpr{Name: id}
	case p.at(token.LBRACKET):
		return p.parseArrayLit()
	case p.at(token.LBRACE):
		return p.parseDictLit()
	case p.at(token.LPAREN):
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr
	case p.at(token.IF):
		return p.parseIfExpr()
	case p.at(token.MATCH):
		return p.parseMatchExpr()
	case p.at(token.TRY):
		return p.parseTryExpr()
	case p.at(token.SPAWN):
		span := p.tok.Span
		p.advance()
		return ast.SpawnExpr{Body: p.parseExpression(), Span: span}
	case p.at(token.AWAIT):
		span := p.tok.Span
		p.advance()
		return ast.AwaitExpr{X: p.parseUnary(), Span: span}
	default:
		p.errorf(diag.ExpectedToken, "expected an expression, got %s", p.tok.Kind)
		tok := p.tok
		p.advance()
		return ast.LitExpr{Literal: ast.IntLiteral{Value: 0, Span: tok.Span}}
	}
}

func (p *Parser) parseFString() ast.Expression {
	start := p.tok.Span
	p.expect(token.F_BEGIN)
	var parts []ast.FStringPart
	for !p.at(token.F_END, token.EOF) {
		if p.at(token.STRING_PART) {
			if p.tok.Literal != "" {
				parts = append(parts, ast.FStringPart{Text: p.tok.Literal})
			}
			p.advance()
			continue
		}
		p.expect(token.EMBED_BEGIN)
		expr := p.parseExpression()
		p.expect(token.EMBED_END)
		parts = append(parts, ast.FStringPart{Expr: expr})
	}
	p.expect(token.F_END)
	return ast.LitExpr{Literal: ast.FStringLiteral{Parts: parts, Span: start}}
}

func (p *Parser) parseStructLit(name ast.Ident) ast.Expression {
	span := p.tok.Span
	p.expect(token.LBRACE)
	fields := map[string]ast.Expression{}
	for !p.at(token.RBRACE, token.EOF) {
		fname := p.parseIdent()
		p.expect(token.COLON)
		value := p.parseExpression()
		if _, dup := fields[fname.Name]; dup {
			p.diags.Add(diag.Diagnostic{Stage: diag.Parse, Code: diag.DuplicateField, Span: fname.Span,
				Message: "field " + fname.Name + " specified more than once"})
		}
		fields[fname.Name] = value
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return ast.StructLitExpr{Name: name, Fields: fields, Span: span}
}

func (p *Parser) parseArrayLit() ast.Expression {
	span := p.tok.Span
	p.expect(token.LBRACKET)
	var elems []ast.Expression
	for !p.at(token.RBRACKET, token.EOF) {
		elems = append(elems, p.parseExpression())
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return ast.ArrayExpr{Elements: elems, Span: span}
}

func (p *Parser) parseDictLit() ast.Expression {
	span := p.tok.Span
	p.expect(token.LBRACE)
	var keys, values []ast.Expression
	for !p.at(token.RBRACE, token.EOF) {
		k := p.parseExpression()
		p.expect(token.COLON)
		v := p.parseExpression()
		keys = append(keys, k)
		values = append(values, v)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return ast.DictExpr{Keys: keys, Values: values, Span: span}
}

func (p *Parser) parseIfExpr() ast.Expression {
	p.expect(token.IF)
	cond := p.parseExpression()
	p.expect(token.COLON)
	then := p.parseBlock()
	ifx := ast.IfExpr{Cond: cond, Then: then}
	for p.at(token.ELIF) {
		p.advance()
		ccond := p.parseExpression()
		p.expect(token.COLON)
		cbody := p.parseBlock()
		ifx.Elif = append(ifx.Elif, ast.ElifClause{Cond: ccond, Body: cbody})
	}
	if p.at(token.ELSE) {
		p.advance()
		p.expect(token.COLON)
		ifx.Else = p.parseBlock()
	}
	return ifx
}

// parseMatchExpr accepts both `case P:` block arms and `P => expr`
// expression arms within the same match, mixed freely (spec open
// question 1).
func (p *Parser) parseMatchExpr() ast.Expression {
	span := p.tok.Span
	p.expect(token.MATCH)
	subject := p.parseExpression()
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	var arms []ast.MatchArm
	for !p.at(token.DEDENT, token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		if p.at(token.CASE) {
			p.advance()
		}
		pat := p.parsePattern()
		var guard ast.Expression
		if p.at(token.IF) {
			p.advance()
			guard = p.parseExpression()
		}
		if p.at(token.FATARROW) {
			p.advance()
			expr := p.parseExpression()
			p.expectStmtEnd()
			arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Expr: expr})
			continue
		}
		p.expect(token.COLON)
		body := p.parseBlock()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
	}
	p.expect(token.DEDENT)
	return ast.MatchExpr{Subject: subject, Arms: arms, Span: span}
}

func (p *Parser) parsePattern() ast.Pattern {
	switch {
	case p.at(token.IDENT):
		lit := p.tok
		if lit.Literal == "_" {
			p.advance()
			return ast.WildcardPattern{Span: lit.Span}
		}
		name := p.parseIdent()
		if p.at(token.PERIOD) {
			p.advance()
			variant := p.parseIdent()
			var fields []ast.Pattern
			if p.at(token.LPAREN) {
				p.advance()
				for !p.at(token.RPAREN, token.EOF) {
					fields = append(fields, p.parsePattern())
					if p.at(token.COMMA) {
						p.advance()
					}
				}
				p.expect(token.RPAREN)
			}
			return ast.VariantPattern{Enum: name, Variant: variant, Fields: fields}
		}
		if p.at(token.LBRACE) {
			p.advance()
			fields := map[string]ast.Pattern{}
			for !p.at(token.RBRACE, token.EOF) {
				fname := p.parseIdent()
				p.expect(token.COLON)
				fields[fname.Name] = p.parsePattern()
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RBRACE)
			return ast.StructPattern{Name: name, Fields: fields}
		}
		return ast.BindingPattern{Name: name}
	case p.at(token.INT, token.STRING, token.FLOAT):
		expr := p.parsePrimary()
		litExpr, ok := expr.(ast.LitExpr)
		if !ok {
			p.errorf(diag.InvalidPattern, "invalid literal pattern")
			return ast.WildcardPattern{}
		}
		return ast.LiteralPattern{Literal: litExpr.Literal}
	default:
		p.errorf(diag.InvalidPattern, "invalid pattern, got %s", p.tok.Kind)
		span := p.tok.Span
		p.advance()
		return ast.WildcardPattern{Span: span}
	}
}

func (p *Parser) parseTryExpr() ast.Expression {
	p.expect(token.TRY)
	p.expect(token.COLON)
	body := p.parseBlock()
	var handlers []ast.ExceptClause
	for p.at(token.EXCEPT) {
		p.advance()
		pat := p.parsePattern()
		var binding ast.Ident
		if p.at(token.AS) {
			p.advance()
			binding = p.parseIdent()
		}
		p.expect(token.COLON)
		hbody := p.parseBlock()
		handlers = append(handlers, ast.ExceptClause{Pattern: pat, Binding: binding, Body: hbody})
	}
	var finally []ast.Statement
	if p.at(token.FINALLY) {
		p.advance()
		p.expect(token.COLON)
		finally = p.parseBlock()
	}
	return ast.TryExpr{Body: body, Handler: handlers, Finally: finally}
}
