package analyzer

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// PossibleTypes returns the set of statically possible types of an
// expression. It never reports diagnostics: {Unknown} means the analysis
// cannot tell, an empty set means the expression is known invalid (an
// undefined variable), and the validator decides what to report.
func (a *Analyzer) PossibleTypes(ctx *symbols.Context, expr ast.Expression) typesystem.PossibleTypes {
	switch e := expr.(type) {
	case nil:
		return typesystem.UnknownSet()
	case *ast.IntLit:
		return one("int")
	case *ast.FloatLit:
		return one("float")
	case *ast.StringLit:
		return one("string")
	case *ast.BoolLit:
		if e.Value {
			return one("true")
		}
		return one("false")
	case *ast.NullLit:
		return one("null")
	case *ast.ArrayLit:
		return one("array")
	case *ast.MagicConst:
		if e.Kind == ast.MagicLine {
			return one("int")
		}
		return one("string")
	case *ast.Variable:
		if types, ok := ctx.DefinedVariableTypes(e.Name); ok {
			return append(typesystem.PossibleTypes{}, types...)
		}
		return nil
	case *ast.ConstFetch:
		return a.constFetchTypes(ctx, e)
	case *ast.New:
		return a.newTypes(ctx, e)
	case *ast.FuncCall:
		return a.funcCallTypes(ctx, e)
	case *ast.MethodCall:
		return a.methodCallTypes(ctx, e)
	case *ast.StaticCall:
		return a.staticCallTypes(ctx, e)
	case *ast.PropertyFetch:
		return a.propertyFetchTypes(ctx, e)
	case *ast.StaticPropertyFetch:
		return a.staticPropertyTypes(ctx, e)
	case *ast.ClassConstFetch:
		return a.classConstTypes(ctx, e)
	case *ast.Assign:
		return a.PossibleTypes(ctx, e.Expr)
	case *ast.Binary:
		return a.binaryTypes(ctx, e)
	case *ast.Unary:
		return a.unaryTypes(ctx, e)
	case *ast.Ternary:
		thenTypes := a.PossibleTypes(ctx, e.Then)
		if e.Then == nil {
			thenTypes = a.PossibleTypes(ctx, e.Cond)
		}
		return typesystem.MergeSets(thenTypes, a.PossibleTypes(ctx, e.Else))
	case *ast.Closure, *ast.ArrowFn:
		return typesystem.PossibleTypes{typesystem.Named{Name: "Closure"}}
	case *ast.Instanceof:
		return one("bool")
	case *ast.IndexFetch:
		return typesystem.UnknownSet()
	}
	return typesystem.UnknownSet()
}

func one(name string) typesystem.PossibleTypes {
	return typesystem.PossibleTypes{typesystem.Named{Name: name}}
}

func (a *Analyzer) constFetchTypes(ctx *symbols.Context, e *ast.ConstFetch) typesystem.PossibleTypes {
	if e.Name == nil {
		return typesystem.UnknownSet()
	}
	switch strings.ToLower(e.Name.String()) {
	case "true":
		return one("true")
	case "false":
		return one("false")
	case "null":
		return one("null")
	}
	name, ok := ctx.ResolveConstantName(e.Name)
	if !ok {
		return typesystem.UnknownSet()
	}
	if value, isUser := ctx.Env.UserConstantValue(name); isUser {
		if lt := literalType(value); lt != nil {
			return typesystem.PossibleTypes{lt}
		}
		return typesystem.UnknownSet()
	}
	if t, isHost := ctx.Env.HostConstantType(name); isHost {
		return typesystem.PossibleTypes{t}
	}
	return typesystem.UnknownSet()
}

func (a *Analyzer) newTypes(ctx *symbols.Context, e *ast.New) typesystem.PossibleTypes {
	if e.Class == nil {
		return typesystem.UnknownSet()
	}
	fqn, ok := ctx.FQClassName(e.Class, false)
	if !ok {
		return typesystem.UnknownSet()
	}
	if info := ctx.Env.GetClass(fqn); info != nil {
		return typesystem.PossibleTypes{typesystem.Named{Name: info.Name}}
	}
	return typesystem.UnknownSet()
}

func (a *Analyzer) funcCallTypes(ctx *symbols.Context, e *ast.FuncCall) typesystem.PossibleTypes {
	if e.CallableConvert {
		return typesystem.PossibleTypes{typesystem.Named{Name: "Closure"}}
	}
	if e.Name == nil {
		return typesystem.UnknownSet()
	}
	sig, _ := ctx.ResolveFunction(e.Name)
	if sig == nil || sig.ReturnType == nil {
		return typesystem.UnknownSet()
	}
	return typesystem.PossibleTypes{sig.ReturnType}
}

// classCandidates maps a receiver type set to the concrete classes it may
// denote. The second result is false when the receiver is too vague to
// check (unknown, mixed, object, stdClass).
func (a *Analyzer) classCandidates(ctx *symbols.Context, types typesystem.PossibleTypes) ([]*reflection.ClassInfo, bool) {
	var out []*reflection.ClassInfo
	precise := true
	var collect func(t typesystem.Type)
	collect = func(t typesystem.Type) {
		switch v := t.(type) {
		case typesystem.Named:
			lower := strings.ToLower(v.Name)
			if lower == "mixed" || lower == "object" || lower == "stdclass" {
				precise = false
				return
			}
			if lower == "static" || lower == "self" {
				if ctx.CurrentClass != nil {
					out = append(out, ctx.CurrentClass)
				} else {
					precise = false
				}
				return
			}
			if typesystem.IsPrimitive(lower) {
				return
			}
			if info := ctx.Env.GetClass(v.Name); info != nil {
				out = append(out, info)
			} else {
				precise = false
			}
		case typesystem.Union:
			for _, m := range v.Members {
				collect(m)
			}
		case typesystem.Intersection:
			for _, m := range v.Members {
				collect(m)
			}
		default:
			precise = false
		}
	}
	for _, t := range types {
		collect(t)
	}
	return out, precise
}

func (a *Analyzer) methodCallTypes(ctx *symbols.Context, e *ast.MethodCall) typesystem.PossibleTypes {
	if e.Name == "" {
		return typesystem.UnknownSet()
	}
	receiver := a.PossibleTypes(ctx, e.Receiver)
	if typesystem.ContainsUnknown(receiver) || typesystem.ContainsMixed(receiver) {
		return typesystem.UnknownSet()
	}
	candidates, precise := a.classCandidates(ctx, receiver)
	if !precise || len(candidates) == 0 {
		return typesystem.UnknownSet()
	}
	var result typesystem.PossibleTypes
	for _, class := range candidates {
		if class.HasMethod("__call") {
			return typesystem.UnknownSet()
		}
		m := class.Method(e.Name)
		if m == nil || m.ReturnType == nil {
			return typesystem.UnknownSet()
		}
		result = typesystem.MergeSets(result, typesystem.PossibleTypes{a.bindReceiver(m.ReturnType, class, m)})
	}
	if len(result) == 0 {
		return typesystem.UnknownSet()
	}
	return result
}

func (a *Analyzer) staticCallTypes(ctx *symbols.Context, e *ast.StaticCall) typesystem.PossibleTypes {
	class := a.staticClassRef(ctx, e.Class, e.ClassExpr)
	if class == nil {
		return typesystem.UnknownSet()
	}
	if class.HasMethod("__callStatic") && class.Method(e.Name) == nil {
		return typesystem.UnknownSet()
	}
	m := class.Method(e.Name)
	if m == nil || m.ReturnType == nil {
		return typesystem.UnknownSet()
	}
	return typesystem.PossibleTypes{a.bindReceiver(m.ReturnType, class, m)}
}

// staticClassRef resolves the class part of a static call or fetch,
// through the typer when it is a dynamic expression.
func (a *Analyzer) staticClassRef(ctx *symbols.Context, name *ast.Name, classExpr ast.Expression) *reflection.ClassInfo {
	if name != nil {
		fqn, ok := ctx.FQClassName(name, false)
		if !ok {
			return nil
		}
		return ctx.Env.GetClass(fqn)
	}
	if classExpr == nil {
		return nil
	}
	types := a.PossibleTypes(ctx, classExpr)
	candidates, precise := a.classCandidates(ctx, types)
	if !precise || len(candidates) != 1 {
		return nil
	}
	return candidates[0]
}

// bindReceiver substitutes self/static/parent in a declared return type
// with the classes they denote at this call site.
func (a *Analyzer) bindReceiver(t typesystem.Type, receiver *reflection.ClassInfo, sig *reflection.FunctionSig) typesystem.Type {
	switch v := t.(type) {
	case typesystem.Named:
		switch strings.ToLower(v.Name) {
		case "static":
			v.Name = receiver.Name
		case "self":
			if sig.DeclaringClass != "" {
				v.Name = sig.DeclaringClass
			}
		case "parent":
			if decl := a.declaringClass(receiver, sig); decl != nil && decl.ParentName != "" {
				v.Name = decl.ParentName
			}
		}
		return v
	case typesystem.Union:
		members := make([]typesystem.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = a.bindReceiver(m, receiver, sig)
		}
		return typesystem.MakeUnion(members...)
	}
	return t
}

func (a *Analyzer) declaringClass(receiver *reflection.ClassInfo, sig *reflection.FunctionSig) *reflection.ClassInfo {
	if sig.DeclaringClass == "" {
		return receiver
	}
	for c := receiver; c != nil; c = c.Parent {
		if strings.EqualFold(c.Name, sig.DeclaringClass) {
			return c
		}
	}
	return receiver
}

func (a *Analyzer) propertyFetchTypes(ctx *symbols.Context, e *ast.PropertyFetch) typesystem.PossibleTypes {
	if e.Name == "" {
		return typesystem.UnknownSet()
	}
	receiver := a.PossibleTypes(ctx, e.Target)
	if typesystem.ContainsUnknown(receiver) || typesystem.ContainsMixed(receiver) {
		return typesystem.UnknownSet()
	}
	candidates, precise := a.classCandidates(ctx, receiver)
	if !precise || len(candidates) == 0 {
		return typesystem.UnknownSet()
	}
	var result typesystem.PossibleTypes
	for _, class := range candidates {
		if class.HasMethod("__get") || (ctx.InAssignment && class.HasMethod("__set")) {
			return typesystem.UnknownSet()
		}
		prop, ok := class.Properties[e.Name]
		if !ok || prop.Type == nil {
			return typesystem.UnknownSet()
		}
		result = typesystem.MergeSets(result, typesystem.PossibleTypes{prop.Type})
	}
	if len(result) == 0 {
		return typesystem.UnknownSet()
	}
	return result
}

func (a *Analyzer) staticPropertyTypes(ctx *symbols.Context, e *ast.StaticPropertyFetch) typesystem.PossibleTypes {
	class := a.staticClassRef(ctx, e.Class, e.ClassExpr)
	if class == nil {
		return typesystem.UnknownSet()
	}
	prop, ok := class.Properties[e.Name]
	if !ok || prop.Type == nil {
		return typesystem.UnknownSet()
	}
	return typesystem.PossibleTypes{prop.Type}
}

func (a *Analyzer) classConstTypes(ctx *symbols.Context, e *ast.ClassConstFetch) typesystem.PossibleTypes {
	if strings.EqualFold(e.Name, "class") {
		return one("string")
	}
	class := a.staticClassRef(ctx, e.Class, e.ClassExpr)
	if class == nil {
		return typesystem.UnknownSet()
	}
	c, ok := class.Constants[e.Name]
	if !ok {
		return typesystem.UnknownSet()
	}
	if c.Type != nil {
		return typesystem.PossibleTypes{c.Type}
	}
	if lt := literalType(c.Value); lt != nil {
		return typesystem.PossibleTypes{lt}
	}
	return typesystem.UnknownSet()
}

func (a *Analyzer) binaryTypes(ctx *symbols.Context, e *ast.Binary) typesystem.PossibleTypes {
	switch e.Op {
	case ".":
		return one("string")
	case "===", "!==", "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return one("bool")
	case "<=>":
		return one("int")
	case "??":
		left := a.PossibleTypes(ctx, e.Left)
		return typesystem.MergeSets(stripNull(left), a.PossibleTypes(ctx, e.Right))
	}
	return typesystem.UnknownSet()
}

func stripNull(set typesystem.PossibleTypes) typesystem.PossibleTypes {
	var out typesystem.PossibleTypes
	for _, t := range set {
		if typesystem.IsNamed(t, "null") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (a *Analyzer) unaryTypes(ctx *symbols.Context, e *ast.Unary) typesystem.PossibleTypes {
	switch e.Op {
	case "!":
		return one("bool")
	case "-", "+":
		operand := a.PossibleTypes(ctx, e.Expr)
		numeric := true
		for _, t := range operand {
			if !typesystem.IsNamed(t, "int") && !typesystem.IsNamed(t, "float") {
				numeric = false
			}
		}
		if numeric && len(operand) > 0 {
			return operand
		}
	}
	return typesystem.UnknownSet()
}
