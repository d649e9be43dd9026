package analyzer

import (
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// resolveType turns a type annotation into a lattice type. Primitive tags
// are lowercased; class references are expanded against the context and
// checked for existence. self and parent resolve to the enclosing class;
// static stays late-bound. Returns nil for a nil annotation.
func (a *Analyzer) resolveType(ctx *symbols.Context, t ast.TypeExpr, reportErrors bool) typesystem.Type {
	switch v := t.(type) {
	case nil:
		return nil
	case *ast.NamedType:
		return a.resolveNamedType(ctx, v, reportErrors)
	case *ast.NullableType:
		inner := a.resolveType(ctx, v.Inner, reportErrors)
		return makeNullable(inner)
	case *ast.UnionType:
		var members []typesystem.Type
		for _, m := range v.Members {
			resolved := a.resolveType(ctx, m, reportErrors)
			if resolved == nil || resolved == typesystem.Unknown {
				// An invalid member was already reported; honor the
				// configured policy on validating the remainder.
				if !a.cfg.ValidateAllUnionMembers {
					return typesystem.Unknown
				}
				continue
			}
			members = append(members, resolved)
		}
		if len(members) == 0 {
			return typesystem.Unknown
		}
		return typesystem.MakeUnion(members...)
	case *ast.IntersectionType:
		var members []typesystem.Named
		for _, m := range v.Members {
			resolved := a.resolveType(ctx, m, reportErrors)
			named, ok := resolved.(typesystem.Named)
			if !ok || named.Nullable {
				continue
			}
			members = append(members, named)
		}
		if len(members) == 0 {
			return typesystem.Unknown
		}
		if len(members) == 1 {
			return members[0]
		}
		return typesystem.Intersection{Members: members}
	}
	return typesystem.Unknown
}

func (a *Analyzer) resolveNamedType(ctx *symbols.Context, v *ast.NamedType, reportErrors bool) typesystem.Type {
	if v.Name == nil || len(v.Name.Parts) == 0 {
		return typesystem.Unknown
	}
	raw := v.Name.String()
	lower := strings.ToLower(raw)
	if len(v.Name.Parts) == 1 && typesystem.IsPrimitive(lower) && !v.Name.FullyQualified {
		switch lower {
		case "self", "parent":
			fqn, ok := ctx.FQClassName(v.Name, reportErrors)
			if !ok {
				return typesystem.Unknown
			}
			return typesystem.Named{Name: fqn}
		case "static":
			if ctx.CurrentClass == nil {
				if reportErrors {
					ctx.Report(diagnostics.ErrScopeOutsideClass, v.Token, "static")
				}
				return typesystem.Unknown
			}
			return typesystem.Named{Name: "static"}
		}
		return typesystem.Named{Name: lower}
	}
	fqn := ctx.ExpandName(v.Name)
	if ctx.Env.GetClass(fqn) == nil {
		if reportErrors {
			ctx.Report(diagnostics.ErrUndefinedClass, v.Token, raw)
		}
		return typesystem.Unknown
	}
	return typesystem.Named{Name: fqn}
}

// makeNullable wraps a resolved type with the null alternative.
func makeNullable(t typesystem.Type) typesystem.Type {
	switch v := t.(type) {
	case nil:
		return nil
	case typesystem.Named:
		v.Nullable = true
		return v
	case typesystem.Union:
		return typesystem.MakeUnion(append(append([]typesystem.Type{}, v.Members...), typesystem.Named{Name: "null"})...)
	}
	return t
}

// literalType returns the primitive type of a literal expression, or nil
// when the expression is not a literal the checker evaluates.
func literalType(expr ast.Expression) typesystem.Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return typesystem.Named{Name: "int"}
	case *ast.FloatLit:
		return typesystem.Named{Name: "float"}
	case *ast.StringLit:
		return typesystem.Named{Name: "string"}
	case *ast.BoolLit:
		if e.Value {
			return typesystem.Named{Name: "true"}
		}
		return typesystem.Named{Name: "false"}
	case *ast.NullLit:
		return typesystem.Named{Name: "null"}
	case *ast.ArrayLit:
		return typesystem.Named{Name: "array"}
	case *ast.MagicConst:
		if e.Kind == ast.MagicLine {
			return typesystem.Named{Name: "int"}
		}
		return typesystem.Named{Name: "string"}
	case *ast.Unary:
		if e.Op == "-" || e.Op == "+" {
			return literalType(e.Expr)
		}
	}
	return nil
}
