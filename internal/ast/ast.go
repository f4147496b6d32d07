// Package ast defines OtterLang's abstract syntax tree. Each sum
// family (Type, Literal, Pattern, Expression, Statement, TopLevel)
// follows the closed-interface idiom: an interface with a private
// marker method, and one marker-method receiver per variant. The
// marker methods for generated leaf variants live in
// zz_generated_sumtypes.go (see cmd/astgen).
package ast

import "github.com/otterlang/otterc/internal/token"

type Ident struct {
	Name string
	Span token.Span
}

// ---- Type ----

type Type interface{ is_Type() }

type NamedType struct {
	Name Ident
	Args []Type // generic type arguments, e.g. List[Int]
}

type FunctionType struct {
	Params  []Type
	Returns Type // nil means no declared return type
}

type StructType struct {
	Fields []FieldDecl
}

type EnumType struct {
	Variants []EnumVariant
}

type FieldDecl struct {
	Name Ident
	Kind Type
}

type EnumVariant struct {
	Name   Ident
	Fields []FieldDecl // empty for a unit variant
}

// ---- Literal ----

type Literal interface{ is_Literal() }

type IntLiteral struct {
	Value int64
	Span  token.Span
}

type FloatLiteral struct {
	Value float64
	Span  token.Span
}

type StringLiteral struct {
	Value string
	Span  token.Span
}

type BoolLiteral struct {
	Value bool
	Span  token.Span
}

type FStringLiteral struct {
	Parts []FStringPart // STRING_PART text interleaved with EMBED expressions
	Span  token.Span
}

type FStringPart struct {
	Text string     // non-empty when this part is literal text
	Expr Expression // non-nil when this part is an embedded expression
}

// ---- Pattern ----

type Pattern interface{ is_Pattern() }

type WildcardPattern struct{ Span token.Span }

type LiteralPattern struct {
	Literal Literal
	Span    token.Span
}

type BindingPattern struct {
	Name Ident
}

type VariantPattern struct {
	Enum    Ident // may be empty if inferred from match subject type
	Variant Ident
	Fields  []Pattern
}

type StructPattern struct {
	Name   Ident
	Fields map[string]Pattern
}

// ---- Expression ----

type Expression interface{ is_Expression() }

type LitExpr struct{ Literal Literal }

type VarExpr struct{ Name Ident }

type ArrayExpr struct {
	Elements []Expression
	Span     token.Span
}

type DictExpr struct {
	Keys   []Expression
	Values []Expression
	Span   token.Span
}

type StructLitExpr struct {
	Name   Ident
	Fields map[string]Expression
	Span   token.Span
}

type FieldExpr struct {
	Of    Expression
	Field Ident
}

type IndexExpr struct {
	Of    Expression
	Index Expression
	Span  token.Span
}

type UnaryExpr struct {
	Op   token.Kind
	X    Expression
	Span token.Span
}

type BinaryExpr struct {
	Op    token.Kind
	Left  Expression
	Right Expression
	Span  token.Span
}

type CallExpr struct {
	Callee    Expression
	Arguments []Expression
	Span      token.Span
}

type LetExpr struct {
	Name  Ident
	Kind  Type // nil when elided
	Value Expression
}

type AssignExpr struct {
	Target Expression // VarExpr, FieldExpr, or IndexExpr
	Value  Expression
	Span   token.Span
}

type IfExpr struct {
	Cond Expression
	Then []Statement
	Elif []ElifClause
	Else []Statement
}

type ElifClause struct {
	Cond Expression
	Body []Statement
}

// MatchExpr supports both `case P:` block arms and `P => expr`
// expression arms within the same match (spec open question 1).
type MatchExpr struct {
	Subject Expression
	Arms    []MatchArm
	Span    token.Span
}

type MatchArm struct {
	Pattern Pattern
	Guard   Expression // nil when absent
	Body    []Statement
	Expr    Expression // non-nil for a `P => expr` arm; Body used otherwise
}

type TryExpr struct {
	Body    []Statement
	Handler []ExceptClause
	Finally []Statement
}

type ExceptClause struct {
	Pattern Pattern
	Binding Ident // zero value when `as n` absent
	Body    []Statement
}

type SpawnExpr struct {
	Body Expression
	Span token.Span
}

type AwaitExpr struct {
	X    Expression
	Span token.Span
}

// ---- Statement ----

type Statement interface{ is_Statement() }

type ExprStmt struct{ X Expression }

type LetStmt struct {
	Name  Ident
	Kind  Type // nil when elided
	Value Expression
}

type ReturnStmt struct {
	Value Expression // nil for bare return
	Span  token.Span
}

type BreakStmt struct{ Span token.Span }

type ContinueStmt struct{ Span token.Span }

type PassStmt struct{ Span token.Span }

type RaiseStmt struct {
	Value Expression
	Span  token.Span
}

type ForStmt struct {
	Binding Ident
	Iter    Expression
	Body    []Statement
}

type WhileStmt struct {
	Cond Expression
	Body []Statement
}

// ---- TopLevel ----

type TopLevel interface{ is_TopLevel() }

type Param struct {
	Name Ident
	Kind Type
}

type TypeParam struct {
	Name       Ident
	Constraint Type // nil when unconstrained
}

type FuncDecl struct {
	Name       Ident
	TypeParams []TypeParam
	Params     []Param
	Returns    Type // nil means inferred/unit
	Body       []Statement
	Public     bool
	Span       token.Span
}

type StructDecl struct {
	Name       Ident
	TypeParams []TypeParam
	Fields     []FieldDecl
	Public     bool
}

type EnumDecl struct {
	Name       Ident
	TypeParams []TypeParam
	Variants   []EnumVariant
	Public     bool
}

type TraitDecl struct {
	Name    Ident
	Methods []FuncDecl
	Public  bool
}

type UseDecl struct {
	Path   []string
	Alias  Ident // zero value when absent
	Public bool  // true for `pub use`
	Span   token.Span
}

// File is the root of one parsed module.
type File struct {
	Path     string
	TopLevel []TopLevel
}
