package ast

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// NamedType is a single-name type annotation: a primitive tag or a class
// reference.
type NamedType struct {
	Token token.Token
	Name  *Name
}

func (t *NamedType) typeExprNode() {}
func (t *NamedType) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// NullableType is the `?T` wrapper.
type NullableType struct {
	Token token.Token
	Inner TypeExpr
}

func (t *NullableType) typeExprNode() {}
func (t *NullableType) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// UnionType is `A|B|...`.
type UnionType struct {
	Token   token.Token
	Members []TypeExpr
}

func (t *UnionType) typeExprNode() {}
func (t *UnionType) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// IntersectionType is `A&B&...`.
type IntersectionType struct {
	Token   token.Token
	Members []TypeExpr
}

func (t *IntersectionType) typeExprNode() {}
func (t *IntersectionType) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}
