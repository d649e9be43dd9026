// Package reflection provides a uniform read-only view of classes,
// functions, methods, properties and constants, whether they come from
// analyzed source or from the host environment the checker embeds.
package reflection

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// Param describes one parameter of a function or method.
type Param struct {
	Name       string
	Type       typesystem.Type // nil when the parameter has no hint
	ByRef      bool
	Variadic   bool
	HasDefault bool
	Default    ast.Expression
}

// Optional reports whether a call may omit the parameter.
func (p *Param) Optional() bool {
	return p.HasDefault || p.Variadic
}

// FunctionSig describes a function or method signature.
type FunctionSig struct {
	Name           string // qualified name; methods use Class::name
	Params         []*Param
	ReturnType     typesystem.Type // nil when the function has no hint
	Variadic       bool
	Generator      bool
	Abstract       bool
	HasBody        bool
	Modifiers      ast.Modifier
	DeclaringClass string
	Host           bool

	// Declaration site, carried so the signature can be initialized
	// after all files are parsed with the aliases in force where it was
	// written. Nil/empty for host functions.
	Node        *ast.FunctionDecl
	File        string
	Namespace   string
	Aliases     map[string]string
	Initialized bool
}

// IsStatic reports whether the method carries the static modifier.
func (f *FunctionSig) IsStatic() bool {
	return f.Modifiers.Has(ast.Static)
}

// RequiredParams counts the leading parameters a call must provide.
func (f *FunctionSig) RequiredParams() int {
	n := 0
	for _, p := range f.Params {
		if !p.Optional() {
			n++
		}
	}
	return n
}

// IsReturnRequired reports whether the body must contain a return
// statement for the signature to be satisfied.
func (f *FunctionSig) IsReturnRequired() bool {
	if !f.HasBody || f.Abstract || f.Generator || f.ReturnType == nil {
		return false
	}
	if typesystem.IsNamed(f.ReturnType, "void") || typesystem.IsNamed(f.ReturnType, "never") {
		return false
	}
	return true
}

// PropInfo describes a declared property.
type PropInfo struct {
	Name      string
	Type      typesystem.Type // nil when untyped
	Default   ast.Expression
	Modifiers ast.Modifier
}

// ConstInfo describes a class constant or enum case.
type ConstInfo struct {
	Name      string
	Type      typesystem.Type // nil when not inferable
	Value     ast.Expression
	Modifiers ast.Modifier
}

// ClassInfo describes a class, interface, trait or enum. User-defined
// entries carry their declaration site so the resolver can re-align the
// context before touching type annotations; host entries are complete
// from construction.
type ClassInfo struct {
	Name     string // fully qualified, no leading backslash
	Kind     ast.ClassKind
	Abstract bool
	Final    bool

	ParentName     string // resolved FQN, empty when no parent
	Parent         *ClassInfo
	InterfaceNames []string // declared interfaces, resolved FQNs
	TraitNames     []string

	Properties map[string]*PropInfo  // case-sensitive names
	Constants  map[string]*ConstInfo // case-sensitive names
	Methods    map[string]*FunctionSig

	EnumBacking typesystem.Type

	// InterfaceClosure is the transitive closure of implemented and
	// extended interfaces, keyed by lowercased FQN.
	InterfaceClosure map[string]bool

	Host        bool
	Poisoned    bool
	Initialized bool
	Resolving   bool

	Node      *ast.ClassDecl
	File      string
	Namespace string
	Aliases   map[string]string
}

// NewClassInfo builds an empty, uninitialized entry.
func NewClassInfo(name string, kind ast.ClassKind) *ClassInfo {
	return &ClassInfo{
		Name:             name,
		Kind:             kind,
		Properties:       make(map[string]*PropInfo),
		Constants:        make(map[string]*ConstInfo),
		Methods:          make(map[string]*FunctionSig),
		InterfaceClosure: make(map[string]bool),
	}
}

// Method looks up a method by name, case-insensitively.
func (c *ClassInfo) Method(name string) *FunctionSig {
	return c.Methods[strings.ToLower(name)]
}

// HasMethod reports whether the class defines or inherits name.
func (c *ClassInfo) HasMethod(name string) bool {
	return c.Method(name) != nil
}

// Constructor returns the __construct method, if any.
func (c *ClassInfo) Constructor() *FunctionSig {
	return c.Method("__construct")
}

// IsConcrete reports whether the class can be instantiated as far as its
// own modifiers are concerned.
func (c *ClassInfo) IsConcrete() bool {
	return c.Kind == ast.KindClass && !c.Abstract
}
