package analyzer

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
)

// Prescan walks a function body and marks every variable the body will
// eventually write to as defined-with-Unknown, so forward references
// within the same scope are tolerated. It never descends into nested
// function or class declarations, and it enters closures only to pick up
// their by-reference use bindings, which create variables in the
// enclosing scope.
func (a *Analyzer) Prescan(ctx *symbols.Context, stmts []ast.Statement) {
	for _, s := range stmts {
		a.prescanStmt(ctx, s)
	}
}

func (a *Analyzer) prescanStmt(ctx *symbols.Context, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		a.prescanExpr(ctx, s.Expr)
	case *ast.Return:
		a.prescanExpr(ctx, s.Expr)
	case *ast.Throw:
		a.prescanExpr(ctx, s.Expr)
	case *ast.If:
		a.prescanExpr(ctx, s.Cond)
		a.Prescan(ctx, s.Then)
		for _, ei := range s.ElseIfs {
			a.prescanExpr(ctx, ei.Cond)
			a.Prescan(ctx, ei.Body)
		}
		a.Prescan(ctx, s.Else)
	case *ast.While:
		a.prescanExpr(ctx, s.Cond)
		a.Prescan(ctx, s.Body)
	case *ast.For:
		for _, e := range s.Init {
			a.prescanExpr(ctx, e)
		}
		for _, e := range s.Cond {
			a.prescanExpr(ctx, e)
		}
		for _, e := range s.Step {
			a.prescanExpr(ctx, e)
		}
		a.Prescan(ctx, s.Body)
	case *ast.Foreach:
		a.prescanExpr(ctx, s.Expr)
		a.prescanTarget(ctx, s.KeyVar)
		a.prescanTarget(ctx, s.ValueVar)
		a.Prescan(ctx, s.Body)
	case *ast.TryCatch:
		a.Prescan(ctx, s.Body)
		for _, c := range s.Catches {
			if c.Var != "" {
				ctx.EnsureDefined(c.Var)
			}
			a.Prescan(ctx, c.Body)
		}
		a.Prescan(ctx, s.Finally)
	case *ast.Global:
		for _, name := range s.Vars {
			ctx.EnsureDefined(name)
		}
	case *ast.StaticVars:
		for _, v := range s.Vars {
			ctx.EnsureDefined(v.Name)
		}
	case *ast.Block:
		a.Prescan(ctx, s.Body)
	case *ast.IncludeStmt:
		a.prescanExpr(ctx, s.Expr)
	}
}

// prescanTarget records a write destination.
func (a *Analyzer) prescanTarget(ctx *symbols.Context, target ast.Expression) {
	switch t := target.(type) {
	case *ast.Variable:
		ctx.EnsureDefined(t.Name)
	case *ast.ArrayLit:
		for _, item := range t.Items {
			a.prescanTarget(ctx, item.Value)
		}
	case *ast.IndexFetch:
		a.prescanTarget(ctx, t.Target)
	}
}

func (a *Analyzer) prescanExpr(ctx *symbols.Context, expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Assign:
		a.prescanTarget(ctx, e.Var)
		a.prescanExpr(ctx, e.Expr)
	case *ast.Binary:
		a.prescanExpr(ctx, e.Left)
		a.prescanExpr(ctx, e.Right)
	case *ast.Unary:
		a.prescanExpr(ctx, e.Expr)
	case *ast.Ternary:
		a.prescanExpr(ctx, e.Cond)
		a.prescanExpr(ctx, e.Then)
		a.prescanExpr(ctx, e.Else)
	case *ast.FuncCall:
		a.prescanCall(ctx, e)
	case *ast.MethodCall:
		a.prescanExpr(ctx, e.Receiver)
		for _, arg := range e.Args {
			a.prescanExpr(ctx, arg.Value)
		}
	case *ast.StaticCall:
		for _, arg := range e.Args {
			a.prescanExpr(ctx, arg.Value)
		}
	case *ast.New:
		for _, arg := range e.Args {
			a.prescanExpr(ctx, arg.Value)
		}
	case *ast.PropertyFetch:
		a.prescanExpr(ctx, e.Target)
	case *ast.IndexFetch:
		a.prescanExpr(ctx, e.Target)
		a.prescanExpr(ctx, e.Index)
	case *ast.ArrayLit:
		for _, item := range e.Items {
			a.prescanExpr(ctx, item.Key)
			a.prescanExpr(ctx, item.Value)
		}
	case *ast.Instanceof:
		a.prescanExpr(ctx, e.Expr)
	case *ast.Closure:
		// By-reference captures bind a variable in this scope even
		// before the closure runs; the body itself is a new scope.
		for _, use := range e.Uses {
			if use.ByRef {
				ctx.EnsureDefined(use.Name)
			}
		}
	case *ast.Yield:
		a.prescanExpr(ctx, e.Key)
		a.prescanExpr(ctx, e.Value)
	}
}

// prescanCall walks call arguments and records variables bound to
// by-reference parameters of a statically known callee.
func (a *Analyzer) prescanCall(ctx *symbols.Context, call *ast.FuncCall) {
	var params []*reflection.Param
	if call.Name != nil {
		if sig, _ := ctx.ResolveFunction(call.Name); sig != nil {
			params = sig.Params
		}
	}
	for i, arg := range call.Args {
		a.prescanExpr(ctx, arg.Value)
		if arg.Name != "" {
			continue
		}
		if i < len(params) && params[i].ByRef {
			if v, ok := arg.Value.(*ast.Variable); ok {
				ctx.EnsureDefined(v.Name)
			}
		}
	}
}
