package analyzer

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// initFunctionSig completes a lazily registered free-function signature.
// The context is re-aligned to the declaration's file, namespace and
// aliases before any annotation is resolved.
func (a *Analyzer) initFunctionSig(ctx *symbols.Context, sig *reflection.FunctionSig) {
	if sig.Initialized || sig.Host || sig.Node == nil {
		return
	}
	sig.Initialized = true
	fctx := ctx.Clone()
	fctx.File = sig.File
	fctx.Namespace = sig.Namespace
	if sig.Aliases != nil {
		fctx.Aliases = sig.Aliases
	}
	fctx.CurrentClass = nil
	a.fillSignature(fctx, sig, sig.Node)
}

// buildMethodSig constructs the signature of a method declared on class.
// The caller passes a context already aligned to the class declaration.
func (a *Analyzer) buildMethodSig(ctx *symbols.Context, class *reflection.ClassInfo, decl *ast.FunctionDecl) *reflection.FunctionSig {
	sig := &reflection.FunctionSig{
		Name:           class.Name + "::" + decl.Name,
		Modifiers:      decl.Modifiers,
		DeclaringClass: class.Name,
		Node:           decl,
		File:           ctx.File,
		Namespace:      ctx.Namespace,
		Initialized:    true,
	}
	a.fillSignature(ctx, sig, decl)
	return sig
}

// buildClosureSig constructs an anonymous-function signature in the
// current validation context.
func (a *Analyzer) buildClosureSig(ctx *symbols.Context, name string, params []*ast.Param, returnType ast.TypeExpr, body []ast.Statement) *reflection.FunctionSig {
	decl := &ast.FunctionDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		HasBody:    true,
	}
	sig := &reflection.FunctionSig{Name: name, Node: decl, Initialized: true}
	a.fillSignature(ctx, sig, decl)
	return sig
}

// fillSignature resolves parameters and the return type, applying the
// parameter rules: only the last parameter may be variadic, a variadic
// parameter may not carry a default, a default literal must fit the hint,
// and a null default makes a non-nullable hint implicitly nullable.
func (a *Analyzer) fillSignature(ctx *symbols.Context, sig *reflection.FunctionSig, decl *ast.FunctionDecl) {
	sig.Abstract = decl.Modifiers.Has(ast.Abstract)
	sig.HasBody = decl.HasBody || decl.Body != nil

	for i, p := range decl.Params {
		if p.Variadic {
			if p.Default != nil {
				ctx.Report(diagnostics.ErrVariadicDefault, p.Token, p.Name)
			}
			if i != len(decl.Params)-1 {
				ctx.Report(diagnostics.ErrVariadicNotLast, p.Token, sig.Name)
			}
			sig.Variadic = true
		}

		declared := a.resolveType(ctx, p.Type, true)
		if p.Default != nil && declared != nil {
			if lt := literalType(p.Default); lt != nil {
				if typesystem.IsNamed(lt, "null") && !acceptsNull(declared) {
					// `T $x = null` is a compatibility spelling of
					// `?T $x = null`; record the widened type
					// explicitly instead of hiding the quirk.
					declared = typesystem.MakeUnion(declared, typesystem.Named{Name: "null"})
				} else if !typesystem.Subtype(lt, declared, ctx.Env) {
					ctx.Report(diagnostics.ErrDefaultValueType, p.Token,
						typesystem.TypeString(lt, false), typesystem.TypeString(declared, false))
				}
			}
		}

		sig.Params = append(sig.Params, &reflection.Param{
			Name:       p.Name,
			Type:       declared,
			ByRef:      p.ByRef,
			Variadic:   p.Variadic,
			HasDefault: p.Default != nil,
			Default:    p.Default,
		})
	}

	sig.ReturnType = a.resolveType(ctx, decl.ReturnType, true)
	sig.Generator = bodyHasYield(decl.Body)
}

// acceptsNull reports whether the declared type already admits null.
func acceptsNull(t typesystem.Type) bool {
	return typesystem.Subtype(typesystem.Named{Name: "null"}, t, nil)
}

// bodyHasYield reports whether the statement list contains a yield
// outside of any nested function, closure or class.
func bodyHasYield(stmts []ast.Statement) bool {
	found := false
	var visitExpr func(e ast.Expression)
	var visitStmts func(s []ast.Statement)

	visitExpr = func(e ast.Expression) {
		if found || e == nil {
			return
		}
		switch v := e.(type) {
		case *ast.Yield:
			found = true
		case *ast.Assign:
			visitExpr(v.Var)
			visitExpr(v.Expr)
		case *ast.Binary:
			visitExpr(v.Left)
			visitExpr(v.Right)
		case *ast.Unary:
			visitExpr(v.Expr)
		case *ast.Ternary:
			visitExpr(v.Cond)
			visitExpr(v.Then)
			visitExpr(v.Else)
		case *ast.FuncCall:
			visitExpr(v.Target)
			for _, arg := range v.Args {
				visitExpr(arg.Value)
			}
		case *ast.MethodCall:
			visitExpr(v.Receiver)
			for _, arg := range v.Args {
				visitExpr(arg.Value)
			}
		case *ast.StaticCall:
			for _, arg := range v.Args {
				visitExpr(arg.Value)
			}
		case *ast.New:
			for _, arg := range v.Args {
				visitExpr(arg.Value)
			}
		case *ast.PropertyFetch:
			visitExpr(v.Target)
		case *ast.IndexFetch:
			visitExpr(v.Target)
			visitExpr(v.Index)
		case *ast.ArrayLit:
			for _, item := range v.Items {
				visitExpr(item.Key)
				visitExpr(item.Value)
			}
		case *ast.Instanceof:
			visitExpr(v.Expr)
		}
	}

	visitStmts = func(list []ast.Statement) {
		for _, s := range list {
			if found {
				return
			}
			switch v := s.(type) {
			case *ast.ExprStmt:
				visitExpr(v.Expr)
			case *ast.Return:
				visitExpr(v.Expr)
			case *ast.Throw:
				visitExpr(v.Expr)
			case *ast.If:
				visitExpr(v.Cond)
				visitStmts(v.Then)
				for _, ei := range v.ElseIfs {
					visitExpr(ei.Cond)
					visitStmts(ei.Body)
				}
				visitStmts(v.Else)
			case *ast.While:
				visitExpr(v.Cond)
				visitStmts(v.Body)
			case *ast.For:
				for _, e := range v.Init {
					visitExpr(e)
				}
				for _, e := range v.Cond {
					visitExpr(e)
				}
				for _, e := range v.Step {
					visitExpr(e)
				}
				visitStmts(v.Body)
			case *ast.Foreach:
				visitExpr(v.Expr)
				visitStmts(v.Body)
			case *ast.TryCatch:
				visitStmts(v.Body)
				for _, c := range v.Catches {
					visitStmts(c.Body)
				}
				visitStmts(v.Finally)
			case *ast.Block:
				visitStmts(v.Body)
			}
		}
	}

	visitStmts(stmts)
	return found
}
