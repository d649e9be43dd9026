package reflection

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// UserRegistry is the view of user-defined symbols the facade needs. The
// symbols package implements it; keys are lowercased fully qualified
// names without a leading backslash.
type UserRegistry interface {
	UserClass(lower string) *ClassInfo
	UserFunction(lower string) *FunctionSig
	UserConstant(lower string) (ast.Expression, bool)
}

// Env is the reflection facade: one lookup surface over user-defined and
// host-provided symbols. It also implements typesystem.ClassLookup so the
// lattice can query inheritance.
type Env struct {
	Users UserRegistry // may be nil (lattice-only tests)
	host  *HostEnv
}

// NewEnv builds a facade over users and the built-in host environment.
func NewEnv(users UserRegistry) *Env {
	return &Env{Users: users, host: defaultHost()}
}

// normalize strips a leading backslash and lowercases.
func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "\\"))
}

// GetClass returns the class-like entry for name, user-defined first.
func (e *Env) GetClass(name string) *ClassInfo {
	key := normalize(name)
	if key == "" {
		return nil
	}
	if e.Users != nil {
		if c := e.Users.UserClass(key); c != nil {
			return c
		}
	}
	return e.host.classes[key]
}

// ClassExists reports whether name is a known class or enum.
func (e *Env) ClassExists(name string) bool {
	c := e.GetClass(name)
	return c != nil && (c.Kind == ast.KindClass || c.Kind == ast.KindEnum)
}

// InterfaceExists reports whether name is a known interface.
func (e *Env) InterfaceExists(name string) bool {
	c := e.GetClass(name)
	return c != nil && c.Kind == ast.KindInterface
}

// TraitExists reports whether name is a known trait.
func (e *Env) TraitExists(name string) bool {
	c := e.GetClass(name)
	return c != nil && c.Kind == ast.KindTrait
}

// FunctionExists reports whether name is a known free function.
func (e *Env) FunctionExists(name string) bool {
	return e.GetFunction(name) != nil
}

// GetFunction returns the signature of a free function.
func (e *Env) GetFunction(name string) *FunctionSig {
	key := normalize(name)
	if e.Users != nil {
		if f := e.Users.UserFunction(key); f != nil {
			return f
		}
	}
	return e.host.functions[key]
}

// UserConstantValue returns the registered default expression of a
// user-declared constant.
func (e *Env) UserConstantValue(name string) (ast.Expression, bool) {
	if e.Users == nil {
		return nil, false
	}
	return e.Users.UserConstant(normalize(name))
}

// HostConstantType returns the primitive type of a host constant.
func (e *Env) HostConstantType(name string) (typesystem.Type, bool) {
	t, ok := e.host.constants[normalize(name)]
	return t, ok
}

// ConstantExists reports whether name is a known constant anywhere.
func (e *Env) ConstantExists(name string) bool {
	if _, ok := e.UserConstantValue(name); ok {
		return true
	}
	_, ok := e.HostConstantType(name)
	return ok
}

// IsClassLike implements typesystem.ClassLookup.
func (e *Env) IsClassLike(name string) bool {
	if typesystem.IsPrimitive(name) && normalize(name) != "static" {
		return false
	}
	return e.GetClass(name) != nil
}

// HasAncestor implements typesystem.ClassLookup: ancestor is name itself,
// any class in its parent chain, or any interface in its closure.
func (e *Env) HasAncestor(name, ancestor string) bool {
	want := normalize(ancestor)
	seen := make(map[string]bool)
	for c := e.GetClass(name); c != nil; c = c.Parent {
		key := normalize(c.Name)
		if seen[key] {
			break
		}
		seen[key] = true
		if key == want {
			return true
		}
		if c.InterfaceClosure[want] {
			return true
		}
	}
	return false
}
