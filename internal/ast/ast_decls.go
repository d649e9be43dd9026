package ast

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// Modifier is the bitmask of member and parameter modifiers.
type Modifier uint16

const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Abstract
	Final
	Readonly
)

// Has reports whether all bits of q are set.
func (m Modifier) Has(q Modifier) bool { return m&q == q }

// Visibility returns only the visibility bits, defaulting to Public when
// none are set.
func (m Modifier) Visibility() Modifier {
	v := m & (Public | Protected | Private)
	if v == 0 {
		return Public
	}
	return v
}

// Param is a declared parameter. A non-zero visibility in Modifiers marks
// constructor promotion.
type Param struct {
	Token     token.Token
	Name      string
	Type      TypeExpr
	Default   Expression
	ByRef     bool
	Variadic  bool
	Modifiers Modifier
}

func (p *Param) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDecl declares a named function, a method, or an interface
// method stub. Body is nil for abstract and interface methods.
type FunctionDecl struct {
	Token       token.Token
	Name        string
	Modifiers   Modifier
	Params      []*Param
	ReturnType  TypeExpr
	ByRefReturn bool
	Body        []Statement
	HasBody     bool // distinguishes an empty body from no body
}

func (s *FunctionDecl) statementNode() {}
func (s *FunctionDecl) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// ClassKind is the container kind of a ClassDecl.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ClassKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	}
	return "class"
}

// ClassDecl declares a class, interface, trait or enum.
type ClassDecl struct {
	Token       token.Token
	Kind        ClassKind
	Name        string
	Abstract    bool
	Final       bool
	Extends     *Name
	Implements  []*Name
	EnumBacking TypeExpr
	Body        []Statement
}

func (s *ClassDecl) statementNode() {}
func (s *ClassDecl) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// PropElem is one declared property of a property group.
type PropElem struct {
	Token   token.Token
	Name    string
	Default Expression
}

// PropertyDecl is a property group sharing modifiers and a type hint.
type PropertyDecl struct {
	Token     token.Token
	Modifiers Modifier
	Type      TypeExpr
	Props     []*PropElem
}

func (s *PropertyDecl) statementNode() {}
func (s *PropertyDecl) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// TraitAdaptation records one `insteadof` clause of a trait use.
type TraitAdaptation struct {
	Token     token.Token
	Trait     *Name
	Method    string
	InsteadOf []*Name
}

// UseTrait mixes traits into the enclosing class.
type UseTrait struct {
	Token       token.Token
	Traits      []*Name
	Adaptations []*TraitAdaptation
}

func (s *UseTrait) statementNode() {}
func (s *UseTrait) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// EnumCase declares one case of an enum. Value is nil for pure enums.
type EnumCase struct {
	Token token.Token
	Name  string
	Value Expression
}

func (s *EnumCase) statementNode() {}
func (s *EnumCase) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}
