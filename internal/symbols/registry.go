// Package symbols holds the global symbol registry filled by the loader
// and the per-file, per-scope Context the validator threads through the
// walk.
package symbols

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
)

// Constant is a user-declared constant registered by the loader. Its type
// is derived lazily from the default expression.
type Constant struct {
	Name  string // qualified, author spelling
	Value ast.Expression
	File  string
}

// Registry is the global symbol table. Class, function, constant and
// namespace identifiers are case-insensitive in the analyzed language, so
// all keys are lowercased qualified names; variable and property names
// stay case-sensitive and never appear here.
type Registry struct {
	Classes     map[string]*reflection.ClassInfo
	Functions   map[string]*reflection.FunctionSig
	Constants   map[string]*Constant
	LoadedFiles map[string]bool

	// ClassOrder and FunctionOrder preserve registration order so later
	// passes emit diagnostics in document order.
	ClassOrder    []*reflection.ClassInfo
	FunctionOrder []*reflection.FunctionSig

	// SelfCheck suppresses redeclaration diagnostics.
	SelfCheck bool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Classes:     make(map[string]*reflection.ClassInfo),
		Functions:   make(map[string]*reflection.FunctionSig),
		Constants:   make(map[string]*Constant),
		LoadedFiles: make(map[string]bool),
	}
}

// UserClass implements reflection.UserRegistry.
func (r *Registry) UserClass(lower string) *reflection.ClassInfo {
	return r.Classes[lower]
}

// UserFunction implements reflection.UserRegistry.
func (r *Registry) UserFunction(lower string) *reflection.FunctionSig {
	return r.Functions[lower]
}

// UserConstant implements reflection.UserRegistry.
func (r *Registry) UserConstant(lower string) (ast.Expression, bool) {
	c, ok := r.Constants[lower]
	if !ok {
		return nil, false
	}
	return c.Value, true
}

// AddClass registers a class entry. It reports false when the name is
// already taken, in which case the first definition wins.
func (r *Registry) AddClass(c *reflection.ClassInfo) bool {
	key := strings.ToLower(c.Name)
	if _, dup := r.Classes[key]; dup {
		return false
	}
	r.Classes[key] = c
	r.ClassOrder = append(r.ClassOrder, c)
	return true
}

// AddFunction registers a function signature, first definition wins.
func (r *Registry) AddFunction(f *reflection.FunctionSig) bool {
	key := strings.ToLower(f.Name)
	if _, dup := r.Functions[key]; dup {
		return false
	}
	r.Functions[key] = f
	r.FunctionOrder = append(r.FunctionOrder, f)
	return true
}

// AddConstant registers a constant, first definition wins.
func (r *Registry) AddConstant(c *Constant) bool {
	key := strings.ToLower(c.Name)
	if _, dup := r.Constants[key]; dup {
		return false
	}
	r.Constants[key] = c
	return true
}
