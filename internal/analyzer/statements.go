package analyzer

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// ValidateFile walks one file, issuing diagnostics. The context is cloned
// per file; top-level variables do not leak across files.
func (a *Analyzer) ValidateFile(ctx *symbols.Context, file *ast.File) {
	fctx := ctx.Clone()
	fctx.File = file.Path
	fctx.Namespace = ""
	fctx.Aliases = make(map[string]string)
	a.stmts(fctx, file.Statements)
}

func (a *Analyzer) stmts(ctx *symbols.Context, list []ast.Statement) {
	for _, s := range list {
		a.stmt(ctx, s)
	}
}

func (a *Analyzer) stmt(ctx *symbols.Context, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		a.expr(ctx, s.Expr)
	case *ast.Namespace:
		if s.Body != nil {
			nctx := ctx.Clone()
			if s.Name != nil {
				nctx.Namespace = s.Name.String()
			} else {
				nctx.Namespace = ""
			}
			nctx.Aliases = make(map[string]string)
			a.stmts(nctx, s.Body)
			return
		}
		if s.Name != nil {
			ctx.Namespace = s.Name.String()
		} else {
			ctx.Namespace = ""
		}
		ctx.Aliases = make(map[string]string)
	case *ast.Use:
		for _, clause := range s.Uses {
			alias := clause.Alias
			if alias == "" && clause.Name != nil && len(clause.Name.Parts) > 0 {
				alias = clause.Name.Parts[len(clause.Name.Parts)-1]
			}
			if alias != "" && clause.Name != nil {
				ctx.Aliases[strings.ToLower(alias)] = clause.Name.String()
			}
		}
	case *ast.ConstDecl:
		for _, c := range s.Consts {
			a.expr(ctx, c.Value)
		}
	case *ast.FunctionDecl:
		a.validateTopLevelFunction(ctx, s)
	case *ast.ClassDecl:
		a.validateClass(ctx, s)
	case *ast.If:
		a.expr(ctx, s.Cond)
		a.stmts(ctx, s.Then)
		for _, ei := range s.ElseIfs {
			a.expr(ctx, ei.Cond)
			a.stmts(ctx, ei.Body)
		}
		a.stmts(ctx, s.Else)
	case *ast.While:
		a.expr(ctx, s.Cond)
		a.stmts(ctx, s.Body)
	case *ast.For:
		for _, e := range s.Init {
			a.expr(ctx, e)
		}
		for _, e := range s.Cond {
			a.expr(ctx, e)
		}
		for _, e := range s.Step {
			a.expr(ctx, e)
		}
		a.stmts(ctx, s.Body)
	case *ast.Foreach:
		a.validateForeach(ctx, s)
	case *ast.Return:
		a.validateReturn(ctx, s)
	case *ast.Throw:
		a.expr(ctx, s.Expr)
	case *ast.TryCatch:
		a.validateTryCatch(ctx, s)
	case *ast.Global:
		for _, name := range s.Vars {
			if v, ok := ctx.GlobalScopeVars[name]; ok {
				ctx.SetDefinedVariable(name, v.Types)
			} else {
				ctx.SetDefinedVariable(name, typesystem.UnknownSet())
			}
		}
	case *ast.StaticVars:
		for _, v := range s.Vars {
			if lt := literalType(v.Default); lt != nil {
				ctx.SetDefinedVariable(v.Name, typesystem.PossibleTypes{lt})
			} else {
				ctx.SetDefinedVariable(v.Name, typesystem.UnknownSet())
			}
		}
	case *ast.IncludeStmt:
		a.expr(ctx, s.Expr)
	case *ast.Block:
		a.stmts(ctx, s.Body)
	}
}

func (a *Analyzer) qualify(ctx *symbols.Context, name string) string {
	if ctx.Namespace == "" {
		return name
	}
	return ctx.Namespace + "\\" + name
}

func (a *Analyzer) validateTopLevelFunction(ctx *symbols.Context, decl *ast.FunctionDecl) {
	sig := ctx.Registry.Functions[strings.ToLower(a.qualify(ctx, decl.Name))]
	if sig == nil || sig.Node != decl {
		// Duplicate declaration; the first one wins and was validated.
		return
	}
	a.enterFunction(ctx, sig, decl, nil)
}

func (a *Analyzer) validateClass(ctx *symbols.Context, decl *ast.ClassDecl) {
	info := ctx.Env.GetClass(a.qualify(ctx, decl.Name))
	if info == nil || info.Node != decl || info.Poisoned {
		return
	}
	cctx := ctx.Clone()
	cctx.CurrentClass = info
	for _, stmt := range decl.Body {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			sig := info.Method(s.Name)
			if sig == nil || sig.Node != s {
				continue
			}
			a.enterFunction(cctx, sig, s, info)
		case *ast.PropertyDecl:
			for _, p := range s.Props {
				if p.Default != nil {
					a.expr(cctx, p.Default)
				}
			}
		case *ast.ConstDecl:
			for _, c := range s.Consts {
				a.expr(cctx, c.Value)
			}
		case *ast.EnumCase:
			if s.Value != nil {
				a.expr(cctx, s.Value)
			}
		}
	}
}

// enterFunction validates a function or method body in a fresh scope:
// clone, reset variables, bind parameters, seed $this, pre-scan, walk,
// and finally enforce the missing-return obligation.
func (a *Analyzer) enterFunction(ctx *symbols.Context, sig *reflection.FunctionSig, decl *ast.FunctionDecl, class *reflection.ClassInfo) {
	fctx := ctx.Clone()
	fctx.CurrentFunction = sig
	fctx.HasReturn = false
	fctx.ResetDefinedVariables()
	a.bindParams(fctx, sig)
	if class != nil && !sig.IsStatic() && class.Kind != ast.KindInterface {
		fctx.SetDefinedVariable("this", typesystem.PossibleTypes{typesystem.Named{Name: class.Name}})
	}
	if decl.Body == nil {
		return
	}
	a.Prescan(fctx, decl.Body)
	a.stmts(fctx, decl.Body)
	if sig.IsReturnRequired() && !fctx.HasReturn {
		ctx.Report(diagnostics.ErrMissingReturn, decl.Token, sig.Name)
	}
}

func (a *Analyzer) bindParams(ctx *symbols.Context, sig *reflection.FunctionSig) {
	for _, p := range sig.Params {
		if p.Type != nil {
			t := p.Type
			if p.Variadic {
				t = typesystem.Named{Name: "array"}
			}
			ctx.SetDefinedVariable(p.Name, typesystem.PossibleTypes{t})
		} else {
			ctx.SetDefinedVariable(p.Name, typesystem.UnknownSet())
		}
	}
}

func (a *Analyzer) validateReturn(ctx *symbols.Context, s *ast.Return) {
	if s.Expr != nil {
		a.expr(ctx, s.Expr)
	}
	defer func() { ctx.HasReturn = true }()
	f := ctx.CurrentFunction
	if f == nil || f.Generator {
		return
	}
	if f.ReturnType == nil {
		return
	}
	var returned typesystem.PossibleTypes
	if s.Expr == nil {
		returned = typesystem.PossibleTypes{typesystem.Named{Name: "void"}}
	} else {
		returned = a.PossibleTypes(ctx, s.Expr)
	}
	if len(returned) == 0 {
		return
	}
	if !typesystem.SetSatisfies(returned, f.ReturnType, ctx.Env) {
		ctx.Report(diagnostics.ErrReturnType, s.Token,
			typesystem.SetString(returned, false), typesystem.TypeString(f.ReturnType, false))
	}
}

func (a *Analyzer) validateForeach(ctx *symbols.Context, s *ast.Foreach) {
	a.expr(ctx, s.Expr)
	if s.KeyVar != nil {
		if !isWritableTarget(s.KeyVar) {
			ctx.Report(diagnostics.ErrNotWritable, s.KeyVar.GetToken())
		} else {
			a.assignTarget(ctx, s.KeyVar, typesystem.UnknownSet())
		}
	}
	if s.ValueVar != nil {
		if !isWritableTarget(s.ValueVar) {
			ctx.Report(diagnostics.ErrNotWritable, s.ValueVar.GetToken())
		} else {
			a.assignTarget(ctx, s.ValueVar, typesystem.UnknownSet())
		}
	}
	a.stmts(ctx, s.Body)
}

func (a *Analyzer) validateTryCatch(ctx *symbols.Context, s *ast.TryCatch) {
	a.stmts(ctx, s.Body)
	for _, c := range s.Catches {
		var caught typesystem.PossibleTypes
		for _, n := range c.Types {
			fqn, ok := ctx.FQClassName(n, true)
			if !ok {
				continue
			}
			info := ctx.Env.GetClass(fqn)
			if info == nil {
				ctx.Report(diagnostics.ErrUndefinedClass, n.Token, n.String())
				continue
			}
			caught = typesystem.MergeSets(caught, typesystem.PossibleTypes{typesystem.Named{Name: info.Name}})
		}
		if c.Var != "" {
			if len(caught) == 0 {
				caught = typesystem.UnknownSet()
			}
			ctx.AddDefinedVariable(c.Var, caught)
		}
		a.stmts(ctx, c.Body)
	}
	a.stmts(ctx, s.Finally)
}

// expr validates an expression tree, reporting defects, and maintains the
// assignment flag per the scoping rule: the flag is cleared when
// descending into nested variable, property or index nodes and restored
// on exit.
func (a *Analyzer) expr(ctx *symbols.Context, expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Variable:
		a.validateVariable(ctx, e)
	case *ast.Assign:
		a.validateAssign(ctx, e)
	case *ast.Binary:
		a.expr(ctx, e.Left)
		a.expr(ctx, e.Right)
		if e.Op == "===" || e.Op == "!==" {
			a.checkIdentityComparison(ctx, e)
		}
	case *ast.Unary:
		a.expr(ctx, e.Expr)
	case *ast.Ternary:
		a.expr(ctx, e.Cond)
		a.expr(ctx, e.Then)
		a.expr(ctx, e.Else)
	case *ast.ConstFetch:
		a.validateConstFetch(ctx, e)
	case *ast.FuncCall:
		a.validateFuncCall(ctx, e)
	case *ast.MethodCall:
		a.validateMethodCall(ctx, e)
	case *ast.StaticCall:
		a.validateStaticCall(ctx, e)
	case *ast.New:
		a.validateNew(ctx, e)
	case *ast.PropertyFetch:
		a.validatePropertyFetch(ctx, e, false)
	case *ast.StaticPropertyFetch:
		a.validateStaticPropertyFetch(ctx, e, false)
	case *ast.ClassConstFetch:
		a.validateClassConstFetch(ctx, e)
	case *ast.IndexFetch:
		saved := ctx.InAssignment
		ctx.InAssignment = false
		a.expr(ctx, e.Target)
		a.expr(ctx, e.Index)
		ctx.InAssignment = saved
	case *ast.ArrayLit:
		for _, item := range e.Items {
			a.expr(ctx, item.Key)
			a.expr(ctx, item.Value)
		}
	case *ast.Instanceof:
		a.validateInstanceof(ctx, e)
	case *ast.Closure:
		a.validateClosure(ctx, e)
	case *ast.ArrowFn:
		a.validateArrowFn(ctx, e)
	case *ast.Yield:
		a.expr(ctx, e.Key)
		a.expr(ctx, e.Value)
	}
}

// validateVariable reports a read of an undefined variable. After the
// report the variable is recorded as Unknown so one defect does not
// cascade through every later use.
func (a *Analyzer) validateVariable(ctx *symbols.Context, e *ast.Variable) {
	if _, ok := ctx.DefinedVariableTypes(e.Name); ok {
		return
	}
	ctx.Report(diagnostics.ErrUndefinedVariable, e.Token, e.Name)
	ctx.SetDefinedVariable(e.Name, typesystem.UnknownSet())
}

func (a *Analyzer) validateAssign(ctx *symbols.Context, e *ast.Assign) {
	if !isWritableTarget(e.Var) {
		ctx.Report(diagnostics.ErrNotWritable, e.Var.GetToken())
		a.expr(ctx, e.Expr)
		return
	}
	a.expr(ctx, e.Expr)
	rhs := a.PossibleTypes(ctx, e.Expr)
	if len(rhs) == 0 {
		rhs = typesystem.UnknownSet()
	}
	a.assignTarget(ctx, e.Var, rhs)
}

// assignTarget records a write to target. Destructuring patterns define
// each component with Unknown; typed property targets are checked for
// assignment compatibility.
func (a *Analyzer) assignTarget(ctx *symbols.Context, target ast.Expression, rhs typesystem.PossibleTypes) {
	switch t := target.(type) {
	case *ast.Variable:
		ctx.AddDefinedVariable(t.Name, rhs)
	case *ast.ArrayLit:
		for _, item := range t.Items {
			if item.Value == nil {
				continue
			}
			a.assignTarget(ctx, item.Value, typesystem.UnknownSet())
		}
	case *ast.PropertyFetch:
		saved := ctx.InAssignment
		ctx.InAssignment = true
		a.validatePropertyFetch(ctx, t, true)
		declared := a.PossibleTypes(ctx, t)
		ctx.InAssignment = saved
		a.checkAssignedTypes(ctx, t, rhs, declared)
	case *ast.StaticPropertyFetch:
		saved := ctx.InAssignment
		ctx.InAssignment = true
		a.validateStaticPropertyFetch(ctx, t, true)
		declared := a.PossibleTypes(ctx, t)
		ctx.InAssignment = saved
		a.checkAssignedTypes(ctx, t, rhs, declared)
	case *ast.IndexFetch:
		saved := ctx.InAssignment
		ctx.InAssignment = false
		a.expr(ctx, t.Target)
		a.expr(ctx, t.Index)
		ctx.InAssignment = saved
	}
}

func (a *Analyzer) checkAssignedTypes(ctx *symbols.Context, target ast.Expression, rhs, declared typesystem.PossibleTypes) {
	if len(declared) == 0 || typesystem.ContainsUnknown(declared) || typesystem.ContainsUnknown(rhs) {
		return
	}
	want := typesystem.MakeUnion(declared...)
	if !typesystem.SetSatisfies(rhs, want, ctx.Env) {
		ctx.Report(diagnostics.ErrAssignmentType, target.GetToken(),
			typesystem.SetString(rhs, false), typesystem.SetString(declared, false))
	}
}

func isWritableTarget(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Variable, *ast.ArrayLit, *ast.PropertyFetch, *ast.StaticPropertyFetch, *ast.IndexFetch:
		return true
	}
	return false
}

// checkIdentityComparison flags `===`/`!==` whose operand type sets are
// provably disjoint: such a condition is never (or always) fulfilled.
func (a *Analyzer) checkIdentityComparison(ctx *symbols.Context, e *ast.Binary) {
	left := a.PossibleTypes(ctx, e.Left)
	right := a.PossibleTypes(ctx, e.Right)
	if len(left) == 0 || len(right) == 0 {
		return
	}
	if typesystem.ContainsUnknown(left) || typesystem.ContainsUnknown(right) {
		return
	}
	if typesystem.ContainsMixed(left) || typesystem.ContainsMixed(right) {
		return
	}
	if !typesystem.SetsDisjoint(left, right, ctx.Env) {
		return
	}
	code := diagnostics.ErrConditionNever
	if e.Op == "!==" {
		code = diagnostics.ErrConditionAlways
	}
	ctx.Report(code, e.Token,
		typesystem.SetString(left, false), typesystem.SetString(right, false))
}

func (a *Analyzer) validateConstFetch(ctx *symbols.Context, e *ast.ConstFetch) {
	if e.Name == nil {
		return
	}
	switch strings.ToLower(e.Name.String()) {
	case "true", "false", "null":
		return
	}
	if _, ok := ctx.ResolveConstantName(e.Name); !ok {
		ctx.Report(diagnostics.ErrUndefinedConstant, e.Token, e.Name.String())
	}
}

func (a *Analyzer) validateFuncCall(ctx *symbols.Context, e *ast.FuncCall) {
	for _, arg := range e.Args {
		a.expr(ctx, arg.Value)
	}
	if e.Target != nil {
		a.expr(ctx, e.Target)
		return
	}
	if e.Name == nil {
		return
	}
	sig, _ := ctx.ResolveFunction(e.Name)
	if sig == nil {
		ctx.Report(diagnostics.ErrUndefinedFunction, e.Token, e.Name.String())
		return
	}
	if e.CallableConvert {
		return
	}
	a.validateArgs(ctx, sig, e.Name.String(), e.Args, e.Token)
}

func (a *Analyzer) validateMethodCall(ctx *symbols.Context, e *ast.MethodCall) {
	a.expr(ctx, e.Receiver)
	for _, arg := range e.Args {
		a.expr(ctx, arg.Value)
	}
	if e.NameExpr != nil {
		a.expr(ctx, e.NameExpr)
	}
	if e.Name == "" {
		return
	}
	receiver := a.PossibleTypes(ctx, e.Receiver)
	if typesystem.ContainsUnknown(receiver) || typesystem.ContainsMixed(receiver) {
		return
	}
	candidates, precise := a.classCandidates(ctx, receiver)
	if !precise || len(candidates) == 0 {
		return
	}
	var found []*reflection.FunctionSig
	for _, class := range candidates {
		if class.HasMethod("__call") {
			return
		}
		m := class.Method(e.Name)
		if m == nil {
			ctx.Report(diagnostics.ErrUndefinedMethod, e.Token, class.Name, e.Name)
			continue
		}
		found = append(found, m)
	}
	if len(found) == 1 {
		a.validateArgs(ctx, found[0], found[0].Name, e.Args, e.Token)
	}
}

func (a *Analyzer) validateStaticCall(ctx *symbols.Context, e *ast.StaticCall) {
	for _, arg := range e.Args {
		a.expr(ctx, arg.Value)
	}
	if e.ClassExpr != nil {
		a.expr(ctx, e.ClassExpr)
	}
	var info *reflection.ClassInfo
	keywordRef := false
	if e.Class != nil {
		keywordRef = e.Class.IsSpecial()
		fqn, ok := ctx.FQClassName(e.Class, true)
		if !ok {
			return
		}
		info = ctx.Env.GetClass(fqn)
		if info == nil {
			ctx.Report(diagnostics.ErrUndefinedClass, e.Class.Token, e.Class.String())
			return
		}
	} else {
		info = a.staticClassRef(ctx, nil, e.ClassExpr)
		if info == nil {
			return
		}
	}
	m := info.Method(e.Name)
	if m == nil {
		if info.HasMethod("__callStatic") {
			return
		}
		ctx.Report(diagnostics.ErrUndefinedMethod, e.Token, info.Name, e.Name)
		return
	}
	if !m.IsStatic() {
		// A non-static call through the class name is permitted from
		// inside the hierarchy: self::, parent::, or any ancestor.
		allowed := keywordRef
		if !allowed && ctx.CurrentClass != nil && ctx.Env.HasAncestor(ctx.CurrentClass.Name, info.Name) {
			allowed = true
		}
		if !allowed {
			ctx.Report(diagnostics.ErrStaticCallNonStatic, e.Token, info.Name, e.Name)
		}
	}
	a.validateArgs(ctx, m, info.Name+"::"+e.Name, e.Args, e.Token)
}

func (a *Analyzer) validateNew(ctx *symbols.Context, e *ast.New) {
	for _, arg := range e.Args {
		a.expr(ctx, arg.Value)
	}
	if e.ClassExpr != nil {
		a.expr(ctx, e.ClassExpr)
		return
	}
	if e.Class == nil {
		return
	}
	fqn, ok := ctx.FQClassName(e.Class, true)
	if !ok {
		return
	}
	info := ctx.Env.GetClass(fqn)
	if info == nil {
		ctx.Report(diagnostics.ErrUndefinedClass, e.Class.Token, e.Class.String())
		return
	}
	if info.Kind != ast.KindClass {
		ctx.Report(diagnostics.ErrInstantiateNonClass, e.Token, info.Kind.String(), info.Name)
		return
	}
	if info.Abstract {
		ctx.Report(diagnostics.ErrInstantiateAbstract, e.Token, info.Name)
		return
	}
	ctor := info.Constructor()
	if ctor == nil {
		if len(e.Args) > 0 {
			ctx.Report(diagnostics.ErrCtorArgsWithoutCtor, e.Token, info.Name)
		}
		return
	}
	a.validateArgs(ctx, ctor, info.Name, e.Args, e.Token)
}

func (a *Analyzer) validatePropertyFetch(ctx *symbols.Context, e *ast.PropertyFetch, writing bool) {
	saved := ctx.InAssignment
	ctx.InAssignment = false
	a.expr(ctx, e.Target)
	ctx.InAssignment = saved

	if e.Name == "" {
		return
	}
	receiver := a.PossibleTypes(ctx, e.Target)
	if typesystem.ContainsUnknown(receiver) || typesystem.ContainsMixed(receiver) {
		return
	}
	candidates, precise := a.classCandidates(ctx, receiver)
	if !precise || len(candidates) == 0 {
		return
	}
	for _, class := range candidates {
		if class.HasMethod("__get") || (writing && class.HasMethod("__set")) {
			continue
		}
		prop, ok := class.Properties[e.Name]
		if !ok {
			ctx.Report(diagnostics.ErrUndefinedProperty, e.Token, class.Name, e.Name)
			continue
		}
		if prop.Modifiers.Has(ast.Static) {
			ctx.Report(diagnostics.ErrStaticPropNonStatic, e.Token, class.Name, e.Name)
		}
	}
}

func (a *Analyzer) validateStaticPropertyFetch(ctx *symbols.Context, e *ast.StaticPropertyFetch, writing bool) {
	if e.ClassExpr != nil {
		a.expr(ctx, e.ClassExpr)
	}
	class := a.staticClassRef(ctx, e.Class, e.ClassExpr)
	if class == nil {
		if e.Class != nil && !e.Class.IsSpecial() {
			fqn, ok := ctx.FQClassName(e.Class, true)
			if ok && ctx.Env.GetClass(fqn) == nil {
				ctx.Report(diagnostics.ErrUndefinedClass, e.Class.Token, e.Class.String())
			}
		}
		return
	}
	if _, ok := class.Properties[e.Name]; !ok {
		ctx.Report(diagnostics.ErrUndefinedProperty, e.Token, class.Name, e.Name)
	}
}

func (a *Analyzer) validateClassConstFetch(ctx *symbols.Context, e *ast.ClassConstFetch) {
	if e.ClassExpr != nil {
		a.expr(ctx, e.ClassExpr)
	}
	if strings.EqualFold(e.Name, "class") {
		return
	}
	var class *reflection.ClassInfo
	if e.Class != nil {
		fqn, ok := ctx.FQClassName(e.Class, true)
		if !ok {
			return
		}
		class = ctx.Env.GetClass(fqn)
		if class == nil {
			ctx.Report(diagnostics.ErrUndefinedClass, e.Class.Token, e.Class.String())
			return
		}
	} else {
		class = a.staticClassRef(ctx, nil, e.ClassExpr)
		if class == nil {
			return
		}
	}
	if _, ok := class.Constants[e.Name]; !ok {
		ctx.Report(diagnostics.ErrUndefinedClassConstant, e.Token, class.Name, e.Name)
	}
}

// validateInstanceof narrows a variable operand to the tested class. The
// narrowing applies to the enclosing scope; there is no branch-sensitive
// restore.
func (a *Analyzer) validateInstanceof(ctx *symbols.Context, e *ast.Instanceof) {
	a.expr(ctx, e.Expr)
	if e.ClassExpr != nil {
		a.expr(ctx, e.ClassExpr)
		return
	}
	if e.Class == nil {
		return
	}
	fqn, ok := ctx.FQClassName(e.Class, true)
	if !ok {
		return
	}
	info := ctx.Env.GetClass(fqn)
	if info == nil {
		ctx.Report(diagnostics.ErrUndefinedClass, e.Class.Token, e.Class.String())
		return
	}
	if v, isVar := e.Expr.(*ast.Variable); isVar {
		ctx.SetDefinedVariable(v.Name, typesystem.PossibleTypes{typesystem.Named{Name: info.Name}})
	}
}

func (a *Analyzer) validateClosure(ctx *symbols.Context, e *ast.Closure) {
	sig := a.buildClosureSig(ctx, "{closure}", e.Params, e.ReturnType, e.Body)
	parentVars := ctx.DefinedVars

	cctx := ctx.Clone()
	cctx.CurrentFunction = sig
	cctx.HasReturn = false
	cctx.ResetDefinedVariables()
	a.bindParams(cctx, sig)

	for _, use := range e.Uses {
		if use.ByRef {
			// A by-reference capture springs into existence even when
			// the enclosing scope never wrote it.
			cctx.SetDefinedVariable(use.Name, typesystem.UnknownSet())
			continue
		}
		if v, ok := parentVars[use.Name]; ok {
			cctx.SetDefinedVariable(use.Name, v.Types)
		} else {
			ctx.Report(diagnostics.ErrUndefinedClosureUse, use.Token, use.Name)
			cctx.SetDefinedVariable(use.Name, typesystem.UnknownSet())
		}
	}
	if _, hasThis := parentVars["this"]; hasThis && !e.Static {
		cctx.SetDefinedVariable("this", parentVars["this"].Types)
	}

	a.Prescan(cctx, e.Body)
	a.stmts(cctx, e.Body)
	if sig.IsReturnRequired() && !cctx.HasReturn {
		ctx.Report(diagnostics.ErrMissingReturn, e.Token, "{closure}")
	}
}

func (a *Analyzer) validateArrowFn(ctx *symbols.Context, e *ast.ArrowFn) {
	sig := a.buildClosureSig(ctx, "{closure}", e.Params, e.ReturnType, nil)
	actx := ctx.Clone()
	actx.CurrentFunction = sig
	a.bindParams(actx, sig)
	a.expr(actx, e.Expr)
	if sig.ReturnType == nil {
		return
	}
	returned := a.PossibleTypes(actx, e.Expr)
	if len(returned) == 0 {
		return
	}
	if !typesystem.SetSatisfies(returned, sig.ReturnType, actx.Env) {
		ctx.Report(diagnostics.ErrReturnType, e.Token,
			typesystem.SetString(returned, false), typesystem.TypeString(sig.ReturnType, false))
	}
}
