package analyzer

import (
	"strings"
	"testing"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/loader"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// analyze registers the files and runs the full second pass, returning
// the collected diagnostics.
func analyze(t *testing.T, files ...*ast.File) *diagnostics.Sink {
	t.Helper()
	reg := symbols.NewRegistry()
	env := reflection.NewEnv(reg)
	sink := &diagnostics.Sink{}
	ctx := symbols.NewContext(reg, env, sink)
	ld := loader.New(ctx, nil, config.Default())
	asts := make([]*ast.File, 0, len(files))
	for _, f := range files {
		ld.RegisterFile(f)
		asts = append(asts, f)
	}
	New(config.Default()).Run(ctx, asts)
	return sink
}

// expectError asserts that at least one diagnostic with the given code
// was produced and returns the first match.
func expectError(t *testing.T, sink *diagnostics.Sink, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	for _, d := range sink.Diagnostics {
		if d.Code == code {
			return d
		}
	}
	var msgs []string
	for _, d := range sink.Diagnostics {
		msgs = append(msgs, string(d.Code)+": "+d.Message)
	}
	t.Fatalf("expected error %s, got:\n%s", code, strings.Join(msgs, "\n"))
	return nil
}

// expectMessage asserts a diagnostic with the exact message text.
func expectMessage(t *testing.T, sink *diagnostics.Sink, want string) {
	t.Helper()
	for _, d := range sink.Diagnostics {
		if d.Message == want {
			return
		}
	}
	var msgs []string
	for _, d := range sink.Diagnostics {
		msgs = append(msgs, d.Message)
	}
	t.Fatalf("expected message %q, got:\n%s", want, strings.Join(msgs, "\n"))
}

// expectNoErrors asserts that analysis produced no diagnostics.
func expectNoErrors(t *testing.T, sink *diagnostics.Sink) {
	t.Helper()
	if len(sink.Diagnostics) == 0 {
		return
	}
	var msgs []string
	for _, d := range sink.Diagnostics {
		msgs = append(msgs, string(d.Code)+": "+d.Message)
	}
	t.Fatalf("expected no errors, got:\n%s", strings.Join(msgs, "\n"))
}

func countErrors(sink *diagnostics.Sink, code diagnostics.ErrorCode) int {
	n := 0
	for _, d := range sink.Diagnostics {
		if d.Code == code {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// AST fixture builders. Tests construct parsed trees directly; the parser
// is an external collaborator.
// ---------------------------------------------------------------------------

func tk(line int) token.Token { return token.At(line) }

func file(stmts ...ast.Statement) *ast.File {
	return &ast.File{Path: "/src/main.php", Statements: stmts}
}

func nm(parts ...string) *ast.Name {
	return &ast.Name{Token: tk(1), Parts: parts}
}

func fqnm(parts ...string) *ast.Name {
	return &ast.Name{Token: tk(1), Parts: parts, FullyQualified: true}
}

func vr(name string) *ast.Variable { return &ast.Variable{Token: tk(1), Name: name} }

func inum(v int64) *ast.IntLit     { return &ast.IntLit{Token: tk(1), Value: v} }
func fnum(v float64) *ast.FloatLit { return &ast.FloatLit{Token: tk(1), Value: v} }
func str(v string) *ast.StringLit  { return &ast.StringLit{Token: tk(1), Value: v} }
func boolLit(v bool) *ast.BoolLit  { return &ast.BoolLit{Token: tk(1), Value: v} }
func nullLit() *ast.NullLit        { return &ast.NullLit{Token: tk(1)} }

func exprStmt(e ast.Expression) *ast.ExprStmt { return &ast.ExprStmt{Token: e.GetToken(), Expr: e} }

func assign(target, value ast.Expression) *ast.Assign {
	return &ast.Assign{Token: tk(1), Var: target, Expr: value}
}

func args(values ...ast.Expression) []*ast.Arg {
	out := make([]*ast.Arg, len(values))
	for i, v := range values {
		out[i] = &ast.Arg{Token: tk(1), Value: v}
	}
	return out
}

func callf(name string, argv ...ast.Expression) *ast.FuncCall {
	return &ast.FuncCall{Token: tk(1), Name: nm(name), Args: args(argv...)}
}

func tn(name string) *ast.NamedType {
	return &ast.NamedType{Token: tk(1), Name: nm(name)}
}

func param(name string, typ ast.TypeExpr) *ast.Param {
	return &ast.Param{Token: tk(1), Name: name, Type: typ}
}

func fn(name string, params []*ast.Param, ret ast.TypeExpr, body ...ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Token:      tk(1),
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		HasBody:    true,
	}
}

func method(mods ast.Modifier, name string, params []*ast.Param, ret ast.TypeExpr, body ...ast.Statement) *ast.FunctionDecl {
	m := fn(name, params, ret, body...)
	m.Modifiers = mods
	return m
}

// stub is a bodyless method (interface member or abstract method).
func stub(mods ast.Modifier, name string, params []*ast.Param, ret ast.TypeExpr) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Token:      tk(1),
		Name:       name,
		Modifiers:  mods,
		Params:     params,
		ReturnType: ret,
	}
}

func class(name string, body ...ast.Statement) *ast.ClassDecl {
	return &ast.ClassDecl{Token: tk(1), Kind: ast.KindClass, Name: name, Body: body}
}

func iface(name string, body ...ast.Statement) *ast.ClassDecl {
	return &ast.ClassDecl{Token: tk(1), Kind: ast.KindInterface, Name: name, Body: body}
}

func trait(name string, body ...ast.Statement) *ast.ClassDecl {
	return &ast.ClassDecl{Token: tk(1), Kind: ast.KindTrait, Name: name, Body: body}
}

func ret(e ast.Expression) *ast.Return { return &ast.Return{Token: tk(1), Expr: e} }

func prop(mods ast.Modifier, typ ast.TypeExpr, name string, def ast.Expression) *ast.PropertyDecl {
	return &ast.PropertyDecl{
		Token:     tk(1),
		Modifiers: mods,
		Type:      typ,
		Props:     []*ast.PropElem{{Token: tk(1), Name: name, Default: def}},
	}
}
