package ast

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// Variable is a `$name` reference. Name is stored without the sigil.
type Variable struct {
	Token token.Token
	Name  string
}

func (e *Variable) expressionNode() {}
func (e *Variable) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// IntLit is an integer literal.
type IntLit struct {
	Token token.Token
	Value int64
}

func (e *IntLit) expressionNode() {}
func (e *IntLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Token token.Token
	Value float64
}

func (e *FloatLit) expressionNode() {}
func (e *FloatLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// StringLit is a string literal.
type StringLit struct {
	Token token.Token
	Value string
}

func (e *StringLit) expressionNode() {}
func (e *StringLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Token token.Token
	Value bool
}

func (e *BoolLit) expressionNode() {}
func (e *BoolLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// NullLit is the `null` literal.
type NullLit struct {
	Token token.Token
}

func (e *NullLit) expressionNode() {}
func (e *NullLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// MagicConstKind enumerates the compile-time magic constants the loader
// can evaluate statically.
type MagicConstKind int

const (
	MagicFile MagicConstKind = iota
	MagicDir
	MagicLine
	MagicClass
	MagicFunction
	MagicMethod
	MagicNamespace
)

// MagicConst is `__FILE__`, `__DIR__` and friends.
type MagicConst struct {
	Token token.Token
	Kind  MagicConstKind
}

func (e *MagicConst) expressionNode() {}
func (e *MagicConst) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// ArrayItem is one element of an array literal or destructuring pattern.
// Value is nil for a skipped destructuring slot.
type ArrayItem struct {
	Token  token.Token
	Key    Expression
	Value  Expression
	ByRef  bool
	Unpack bool
}

// ArrayLit is an array literal. The same node doubles as the short
// destructuring pattern when it appears in write position.
type ArrayLit struct {
	Token token.Token
	Items []*ArrayItem
}

func (e *ArrayLit) expressionNode() {}
func (e *ArrayLit) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// ConstFetch references a named constant.
type ConstFetch struct {
	Token token.Token
	Name  *Name
}

func (e *ConstFetch) expressionNode() {}
func (e *ConstFetch) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Binary is a binary operation. The validator only inspects `===`, `!==`
// and `.`; all other operators just have their children walked.
type Binary struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (e *Binary) expressionNode() {}
func (e *Binary) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Unary is a prefix operation (!, -, +, ~).
type Unary struct {
	Token token.Token
	Op    string
	Expr  Expression
}

func (e *Unary) expressionNode() {}
func (e *Unary) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Assign is an assignment expression. Var is the write target; ByRef marks
// reference assignment (`$a = &$b`).
type Assign struct {
	Token token.Token
	Var   Expression
	Expr  Expression
	ByRef bool
}

func (e *Assign) expressionNode() {}
func (e *Assign) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Arg is one call-site argument. Name is set for named arguments.
type Arg struct {
	Token  token.Token
	Name   string
	Value  Expression
	Unpack bool
}

// FuncCall calls a free function. Name is nil when the callee is a dynamic
// expression, in which case Target carries it. CallableConvert marks the
// first-class callable form `f(...)`.
type FuncCall struct {
	Token           token.Token
	Name            *Name
	Target          Expression
	Args            []*Arg
	CallableConvert bool
}

func (e *FuncCall) expressionNode() {}
func (e *FuncCall) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// MethodCall calls an instance method. NameExpr is set instead of Name for
// a dynamic method name.
type MethodCall struct {
	Token    token.Token
	Receiver Expression
	Name     string
	NameExpr Expression
	Args     []*Arg
}

func (e *MethodCall) expressionNode() {}
func (e *MethodCall) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// StaticCall calls a static method. Class is nil when the class reference
// is a dynamic expression held in ClassExpr.
type StaticCall struct {
	Token     token.Token
	Class     *Name
	ClassExpr Expression
	Name      string
	Args      []*Arg
}

func (e *StaticCall) expressionNode() {}
func (e *StaticCall) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// New instantiates a class.
type New struct {
	Token     token.Token
	Class     *Name
	ClassExpr Expression
	Args      []*Arg
}

func (e *New) expressionNode() {}
func (e *New) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// PropertyFetch reads or writes an instance property.
type PropertyFetch struct {
	Token  token.Token
	Target Expression
	Name   string
}

func (e *PropertyFetch) expressionNode() {}
func (e *PropertyFetch) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// StaticPropertyFetch reads or writes a static property. Name is stored
// without the sigil.
type StaticPropertyFetch struct {
	Token     token.Token
	Class     *Name
	ClassExpr Expression
	Name      string
}

func (e *StaticPropertyFetch) expressionNode() {}
func (e *StaticPropertyFetch) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// ClassConstFetch reads a class constant, including `::class`.
type ClassConstFetch struct {
	Token     token.Token
	Class     *Name
	ClassExpr Expression
	Name      string
}

func (e *ClassConstFetch) expressionNode() {}
func (e *ClassConstFetch) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// IndexFetch is an array/string subscript. Index is nil for the append
// form `$a[]`.
type IndexFetch struct {
	Token  token.Token
	Target Expression
	Index  Expression
}

func (e *IndexFetch) expressionNode() {}
func (e *IndexFetch) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// ClosureUse is one captured variable of a closure.
type ClosureUse struct {
	Token token.Token
	Name  string
	ByRef bool
}

// Closure is an anonymous function literal.
type Closure struct {
	Token      token.Token
	Static     bool
	Params     []*Param
	Uses       []*ClosureUse
	ReturnType TypeExpr
	Body       []Statement
}

func (e *Closure) expressionNode() {}
func (e *Closure) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// ArrowFn is a single-expression closure with implicit by-value capture.
type ArrowFn struct {
	Token      token.Token
	Static     bool
	Params     []*Param
	ReturnType TypeExpr
	Expr       Expression
}

func (e *ArrowFn) expressionNode() {}
func (e *ArrowFn) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Instanceof tests an expression against a class name.
type Instanceof struct {
	Token     token.Token
	Expr      Expression
	Class     *Name
	ClassExpr Expression
}

func (e *Instanceof) expressionNode() {}
func (e *Instanceof) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Ternary is `a ? b : c`; Then is nil for the short form `a ?: c`.
type Ternary struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (e *Ternary) expressionNode() {}
func (e *Ternary) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// Yield marks the enclosing function as a generator.
type Yield struct {
	Token token.Token
	Key   Expression
	Value Expression
}

func (e *Yield) expressionNode() {}
func (e *Yield) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}
