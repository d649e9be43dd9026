package analyzer

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// validateArgs checks a call site against the callee's signature. A nil
// signature means the callable is unknown and nothing is checked. The
// argument expressions themselves are validated by the caller; this
// routine only matches them to parameters.
//
// A spread argument disables all further position checking for the call.
func (a *Analyzer) validateArgs(ctx *symbols.Context, sig *reflection.FunctionSig, displayName string, args []*ast.Arg, tok token.Token) {
	if sig == nil {
		return
	}
	variadicParam := (*reflection.Param)(nil)
	if len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Variadic {
		variadicParam = sig.Params[len(sig.Params)-1]
	}

	for i, arg := range args {
		if arg.Unpack {
			return
		}
		var param *reflection.Param
		if arg.Name != "" {
			param = paramByName(sig, arg.Name)
			if param == nil && variadicParam == nil {
				ctx.Report(diagnostics.ErrUnknownNamedArg, arg.Token, arg.Name, displayName)
				continue
			}
		} else if i < len(sig.Params) {
			param = sig.Params[i]
		} else if variadicParam != nil {
			param = nil // absorbed by the variadic tail, no declared check
		} else {
			ctx.Report(diagnostics.ErrTooManyArguments, arg.Token, displayName)
			break
		}
		if param == nil {
			continue
		}
		if param.ByRef && !isLValue(arg.Value) {
			ctx.Report(diagnostics.ErrByRefArgument, arg.Token, i+1, displayName)
		}
		if param.Type != nil {
			argTypes := a.PossibleTypes(ctx, arg.Value)
			if len(argTypes) > 0 && !typesystem.SetSatisfies(argTypes, param.Type, ctx.Env) {
				ctx.Report(diagnostics.ErrArgumentType, arg.Token, i+1, displayName,
					typesystem.TypeString(param.Type, false), typesystem.SetString(argTypes, false))
			}
		}
	}

	if len(args) < sig.RequiredParams() {
		ctx.Report(diagnostics.ErrTooFewArguments, tok, displayName)
	}
}

func paramByName(sig *reflection.FunctionSig, name string) *reflection.Param {
	for _, p := range sig.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// isLValue reports whether the expression denotes caller storage a
// by-reference parameter can bind to.
func isLValue(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Variable, *ast.PropertyFetch, *ast.StaticPropertyFetch, *ast.IndexFetch:
		return true
	}
	return false
}
