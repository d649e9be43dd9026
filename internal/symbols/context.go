package symbols

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// DefinedVariable tracks one variable of the current scope together with
// its possible types. Types only widen; Unknown is absorbing.
type DefinedVariable struct {
	Name  string
	Types typesystem.PossibleTypes
}

// Context is the per-file, per-scope state threaded through analysis.
// Entering a nested scope clones the context; changes inside do not leak
// out. The registry and the diagnostics sink are shared across clones.
type Context struct {
	Registry *Registry
	Env      *reflection.Env
	Sink     *diagnostics.Sink

	File      string
	Namespace string
	Aliases   map[string]string // lower(alias) -> FQN

	CurrentClass    *reflection.ClassInfo
	CurrentFunction *reflection.FunctionSig

	DefinedVars     map[string]*DefinedVariable
	GlobalScopeVars map[string]*DefinedVariable

	HasReturn    bool
	InAssignment bool
}

// NewContext builds the root context of a run. The global scope starts
// with the super-globals predefined.
func NewContext(reg *Registry, env *reflection.Env, sink *diagnostics.Sink) *Context {
	c := &Context{
		Registry: reg,
		Env:      env,
		Sink:     sink,
		Aliases:  make(map[string]string),
	}
	c.DefinedVars = freshScopeVars()
	return c
}

func freshScopeVars() map[string]*DefinedVariable {
	vars := make(map[string]*DefinedVariable)
	arrayType := typesystem.PossibleTypes{typesystem.Named{Name: "array"}}
	for _, name := range config.SuperGlobals {
		vars[name] = &DefinedVariable{Name: name, Types: arrayType}
	}
	return vars
}

// Clone copies the context for a nested scope. Variable entries are
// copied so widening inside the child never mutates the parent's view.
func (c *Context) Clone() *Context {
	child := *c
	child.Aliases = make(map[string]string, len(c.Aliases))
	for k, v := range c.Aliases {
		child.Aliases[k] = v
	}
	child.DefinedVars = make(map[string]*DefinedVariable, len(c.DefinedVars))
	for k, v := range c.DefinedVars {
		child.DefinedVars[k] = &DefinedVariable{Name: v.Name, Types: v.Types}
	}
	return &child
}

// AddDefinedVariable records a write to name. A first write creates the
// variable; subsequent writes union the types, unless an earlier write
// already widened the variable to Unknown.
func (c *Context) AddDefinedVariable(name string, types typesystem.PossibleTypes) {
	v, ok := c.DefinedVars[name]
	if !ok {
		c.DefinedVars[name] = &DefinedVariable{Name: name, Types: types}
		return
	}
	if typesystem.ContainsUnknown(v.Types) {
		return
	}
	v.Types = typesystem.MergeSets(v.Types, types)
}

// SetDefinedVariable overwrites the variable's types, used for parameter
// binding and instanceof narrowing.
func (c *Context) SetDefinedVariable(name string, types typesystem.PossibleTypes) {
	c.DefinedVars[name] = &DefinedVariable{Name: name, Types: types}
}

// EnsureDefined marks name as defined with Unknown types when it is not
// defined yet. The pre-scan uses this so forward references inside the
// same scope are tolerated without disturbing already known types.
func (c *Context) EnsureDefined(name string) {
	if _, ok := c.DefinedVars[name]; !ok {
		c.DefinedVars[name] = &DefinedVariable{Name: name, Types: typesystem.UnknownSet()}
	}
}

// DefinedVariableTypes returns the possible types of name and whether the
// variable is defined in the current scope.
func (c *Context) DefinedVariableTypes(name string) (typesystem.PossibleTypes, bool) {
	v, ok := c.DefinedVars[name]
	if !ok {
		return nil, false
	}
	return v.Types, true
}

// ResetDefinedVariables snapshots the current variables as the global
// scope view, clears the map, and preloads the super-globals.
func (c *Context) ResetDefinedVariables() {
	c.GlobalScopeVars = c.DefinedVars
	c.DefinedVars = freshScopeVars()
}

// Report funnels a diagnostic into the shared sink against the current
// file.
func (c *Context) Report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	c.Sink.Add(c.File, diagnostics.NewError(code, tok, args...))
}

// ExpandName resolves a name reference to a qualified name: fully
// qualified names pass through, a leading segment matching a use-alias is
// substituted, anything else is prefixed with the current namespace.
func (c *Context) ExpandName(n *ast.Name) string {
	if n == nil || len(n.Parts) == 0 {
		return ""
	}
	if n.FullyQualified {
		return n.String()
	}
	if fqn, ok := c.Aliases[strings.ToLower(n.First())]; ok {
		if len(n.Parts) == 1 {
			return fqn
		}
		return fqn + "\\" + strings.Join(n.Parts[1:], "\\")
	}
	if c.Namespace != "" {
		return c.Namespace + "\\" + n.String()
	}
	return n.String()
}

// FQClassName resolves a class reference, handling the class-scoped
// keywords self, parent and static against the current class. It reports
// the scope errors itself when reportErrors is set.
func (c *Context) FQClassName(n *ast.Name, reportErrors bool) (string, bool) {
	if n == nil || len(n.Parts) == 0 {
		return "", false
	}
	if n.IsSpecial() {
		keyword := strings.ToLower(n.First())
		if c.CurrentClass == nil {
			if reportErrors {
				c.Report(diagnostics.ErrScopeOutsideClass, n.Token, keyword)
			}
			return "", false
		}
		if keyword == "parent" {
			if c.CurrentClass.ParentName == "" {
				if reportErrors {
					c.Report(diagnostics.ErrNoParentClass, n.Token, c.CurrentClass.Name)
				}
				return "", false
			}
			return c.CurrentClass.ParentName, true
		}
		return c.CurrentClass.Name, true
	}
	return c.ExpandName(n), true
}

// ResolveFunction resolves a function reference. Unlike classes,
// functions fall back to the global namespace when the namespaced lookup
// fails; the returned name is the one that matched (or the namespaced
// candidate when nothing did).
func (c *Context) ResolveFunction(n *ast.Name) (*reflection.FunctionSig, string) {
	candidate := c.ExpandName(n)
	if sig := c.Env.GetFunction(candidate); sig != nil {
		return sig, candidate
	}
	if !n.FullyQualified {
		global := n.String()
		if sig := c.Env.GetFunction(global); sig != nil {
			return sig, global
		}
	}
	return nil, candidate
}

// ResolveConstantName resolves a constant reference with the same global
// fallback as functions.
func (c *Context) ResolveConstantName(n *ast.Name) (string, bool) {
	candidate := c.ExpandName(n)
	if c.Env.ConstantExists(candidate) {
		return candidate, true
	}
	if !n.FullyQualified {
		global := n.String()
		if c.Env.ConstantExists(global) {
			return global, true
		}
	}
	return candidate, false
}
