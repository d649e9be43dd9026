package analyzer

import (
	"testing"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/loader"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// analyzeContext is analyze with access to the resulting symbol state.
func analyzeContext(t *testing.T, files ...*ast.File) *symbols.Context {
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
	return ctx
}

func TestInterfaceConformanceParamTypes(t *testing.T) {
	// interface I { function m(int $x): void; }
	// class C implements I { function m(string $x): void {} }
	i := iface("I", stub(ast.Public, "m", []*ast.Param{param("x", tn("int"))}, tn("void")))
	c := class("C", method(ast.Public, "m", []*ast.Param{param("x", tn("string"))}, tn("void")))
	c.Implements = []*ast.Name{nm("I")}
	sink := analyze(t, file(i, c))
	expectMessage(t, sink, "Method `m` has different parameter types compared to the definition in the interface")
}

func TestInterfaceConformanceOk(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", []*ast.Param{param("x", tn("int"))}, tn("void")))
	c := class("C", method(ast.Public, "m", []*ast.Param{param("x", tn("int"))}, tn("void")))
	c.Implements = []*ast.Name{nm("I")}
	expectNoErrors(t, analyze(t, file(i, c)))
}

func TestInterfaceConformanceParamCount(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", []*ast.Param{param("x", tn("int")), param("y", tn("int"))}, tn("void")))
	c := class("C", method(ast.Public, "m", []*ast.Param{param("x", tn("int"))}, tn("void")))
	c.Implements = []*ast.Name{nm("I")}
	sink := analyze(t, file(i, c))
	expectError(t, sink, diagnostics.ErrInterfaceParamCount)
}

func TestInterfaceConformanceUnionOrderIrrelevant(t *testing.T) {
	// int|string vs string|int compare equal under sorted printing.
	iUnion := &ast.UnionType{Token: tk(1), Members: []ast.TypeExpr{tn("int"), tn("string")}}
	cUnion := &ast.UnionType{Token: tk(1), Members: []ast.TypeExpr{tn("string"), tn("int")}}
	i := iface("I", stub(ast.Public, "m", []*ast.Param{param("x", iUnion)}, tn("void")))
	c := class("C", method(ast.Public, "m", []*ast.Param{param("x", cUnion)}, tn("void")))
	c.Implements = []*ast.Name{nm("I")}
	expectNoErrors(t, analyze(t, file(i, c)))
}

func TestInterfaceConformanceReturnType(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", nil, tn("int")))
	c := class("C", method(ast.Public, "m", nil, tn("string"), ret(str("a"))))
	c.Implements = []*ast.Name{nm("I")}
	sink := analyze(t, file(i, c))
	expectMessage(t, sink, "Method `m` has a different return type compared to the definition in the interface")
}

func TestInterfaceConformanceStaticMismatch(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", nil, tn("void")))
	c := class("C", method(ast.Public|ast.Static, "m", nil, tn("void")))
	c.Implements = []*ast.Name{nm("I")}
	sink := analyze(t, file(i, c))
	expectError(t, sink, diagnostics.ErrInterfaceModifiers)
}

func TestConcreteClassMustImplementInterface(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", nil, tn("void")))
	c := class("C")
	c.Implements = []*ast.Name{nm("I")}
	sink := analyze(t, file(i, c))
	expectError(t, sink, diagnostics.ErrAbstractNotSatisfied)
}

func TestAbstractClassMayLeaveInterfaceUnimplemented(t *testing.T) {
	i := iface("I", stub(ast.Public, "m", nil, tn("void")))
	c := class("C")
	c.Abstract = true
	c.Implements = []*ast.Name{nm("I")}
	expectNoErrors(t, analyze(t, file(i, c)))
}

func TestConcreteSubclassInheritsAbstractObligation(t *testing.T) {
	base := class("Base", stub(ast.Public|ast.Abstract, "m", nil, tn("void")))
	base.Abstract = true
	sub := class("Sub")
	sub.Extends = nm("Base")
	sink := analyze(t, file(base, sub))
	expectError(t, sink, diagnostics.ErrAbstractNotSatisfied)
}

func TestConcreteSubclassImplementsAbstract(t *testing.T) {
	base := class("Base", stub(ast.Public|ast.Abstract, "m", nil, tn("void")))
	base.Abstract = true
	sub := class("Sub", method(ast.Public, "m", nil, tn("void")))
	sub.Extends = nm("Base")
	expectNoErrors(t, analyze(t, file(base, sub)))
}

func TestExtendFinalClass(t *testing.T) {
	b := class("B")
	b.Final = true
	c := class("C")
	c.Extends = nm("B")
	sink := analyze(t, file(b, c))
	expectMessage(t, sink, "Cannot extend final class `B`")
}

func TestOverrideFinalMethod(t *testing.T) {
	b := class("B", method(ast.Public|ast.Final, "m", nil, nil))
	c := class("C", method(ast.Public, "m", nil, nil))
	c.Extends = nm("B")
	sink := analyze(t, file(b, c))
	expectMessage(t, sink, "Cannot override final method `B::m`")
}

func TestInterfaceCannotDeclareProperties(t *testing.T) {
	i := iface("I", prop(ast.Public, tn("int"), "n", nil))
	sink := analyze(t, file(i))
	expectError(t, sink, diagnostics.ErrInterfaceProperty)
}

func TestInterfaceMethodWithBody(t *testing.T) {
	i := iface("I", method(ast.Public, "m", nil, tn("void")))
	sink := analyze(t, file(i))
	expectError(t, sink, diagnostics.ErrInterfaceMethodBody)
}

func TestInterfaceMethodMustBePublic(t *testing.T) {
	i := iface("I", stub(ast.Protected, "m", nil, tn("void")))
	sink := analyze(t, file(i))
	expectError(t, sink, diagnostics.ErrInterfaceMethodVis)
}

func TestAbstractMethodWithBody(t *testing.T) {
	c := class("C", method(ast.Public|ast.Abstract, "m", nil, tn("void")))
	c.Abstract = true
	sink := analyze(t, file(c))
	expectError(t, sink, diagnostics.ErrAbstractMethodBody)
}

func TestAbstractMethodCannotBePrivate(t *testing.T) {
	c := class("C", stub(ast.Private|ast.Abstract, "m", nil, tn("void")))
	c.Abstract = true
	sink := analyze(t, file(c))
	expectError(t, sink, diagnostics.ErrAbstractPrivate)
}

func TestReadonlyPropertyRequiresType(t *testing.T) {
	c := class("C", prop(ast.Public|ast.Readonly, nil, "n", nil))
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Readonly property `C::$n` must have a type hint")
}

func TestReadonlyPropertyRejectsDefault(t *testing.T) {
	c := class("C", prop(ast.Public|ast.Readonly, tn("int"), "n", inum(1)))
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Readonly property `C::$n` cannot have a default value")
}

func TestPropertyDefaultTypeMismatch(t *testing.T) {
	c := class("C", prop(ast.Public, tn("int"), "n", str("a")))
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Default value type `string` is incompatible with the type hint `int`")
}

func TestDuplicateProperty(t *testing.T) {
	c := class("C",
		prop(ast.Public, tn("int"), "n", nil),
		prop(ast.Public, tn("string"), "n", nil),
	)
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Cannot redeclare property `C::$n`")
}

func TestDuplicateMethod(t *testing.T) {
	c := class("C",
		method(ast.Public, "m", nil, nil),
		method(ast.Public, "M", nil, nil), // method names are case-insensitive
	)
	sink := analyze(t, file(c))
	expectError(t, sink, diagnostics.ErrRedeclaredMethod)
}

func TestConstructorPromotion(t *testing.T) {
	p := param("n", tn("int"))
	p.Modifiers = ast.Public
	ctor := method(ast.Public, "__construct", []*ast.Param{p}, nil)
	ctx := analyzeContext(t, file(
		class("C", ctor),
		exprStmt(assign(vr("c"), &ast.New{Token: tk(2), Class: nm("C"), Args: args(inum(1))})),
		exprStmt(&ast.PropertyFetch{Token: tk(3), Target: vr("c"), Name: "n"}),
	))
	if ctx.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Sink.Diagnostics)
	}
	info := ctx.Env.GetClass("C")
	promoted, ok := info.Properties["n"]
	if !ok {
		t.Fatal("constructor promotion should create property n")
	}
	if !typesystem.IsNamed(promoted.Type, "int") {
		t.Errorf("promoted property type = %v, want int", promoted.Type)
	}
}

func TestTraitMethodsMerge(t *testing.T) {
	tr := trait("Greets", method(ast.Public, "greet", nil, tn("string"), ret(str("hi"))))
	c := class("C", &ast.UseTrait{Token: tk(1), Traits: []*ast.Name{nm("Greets")}})
	sink := analyze(t, file(
		tr, c,
		exprStmt(assign(vr("c"), &ast.New{Token: tk(2), Class: nm("C")})),
		exprStmt(&ast.MethodCall{Token: tk(3), Receiver: vr("c"), Name: "greet"}),
	))
	expectNoErrors(t, sink)
}

func TestTraitMethodCollision(t *testing.T) {
	t1 := trait("T1", method(ast.Public, "m", nil, nil))
	t2 := trait("T2", method(ast.Public, "m", nil, nil))
	c := class("C", &ast.UseTrait{Token: tk(1), Traits: []*ast.Name{nm("T1"), nm("T2")}})
	sink := analyze(t, file(t1, t2, c))
	expectError(t, sink, diagnostics.ErrTraitMethodCollision)
}

func TestTraitInsteadofResolvesCollision(t *testing.T) {
	t1 := trait("T1", method(ast.Public, "m", nil, nil))
	t2 := trait("T2", method(ast.Public, "m", nil, nil))
	c := class("C", &ast.UseTrait{
		Token:  tk(1),
		Traits: []*ast.Name{nm("T1"), nm("T2")},
		Adaptations: []*ast.TraitAdaptation{{
			Token:     tk(1),
			Trait:     nm("T1"),
			Method:    "m",
			InsteadOf: []*ast.Name{nm("T2")},
		}},
	})
	sink := analyze(t, file(t1, t2, c))
	expectNoErrors(t, sink)
}

func TestLocalOverrideBeatsTraits(t *testing.T) {
	t1 := trait("T1", method(ast.Public, "m", nil, nil))
	t2 := trait("T2", method(ast.Public, "m", nil, nil))
	c := class("C",
		&ast.UseTrait{Token: tk(1), Traits: []*ast.Name{nm("T1"), nm("T2")}},
		method(ast.Public, "m", nil, nil),
	)
	sink := analyze(t, file(t1, t2, c))
	expectNoErrors(t, sink)
}

func TestUndefinedTrait(t *testing.T) {
	c := class("C", &ast.UseTrait{Token: tk(1), Traits: []*ast.Name{nm("Nope")}})
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Undefined trait `Nope`")
}

func TestToStringImpliesStringable(t *testing.T) {
	s := class("Page", method(ast.Public, "__toString", nil, tn("string"), ret(str("x"))))
	sink := analyze(t, file(
		s,
		fn("f", []*ast.Param{param("s", tn("string"))}, nil),
		exprStmt(callf("f", &ast.New{Token: tk(2), Class: nm("Page")})),
	))
	expectNoErrors(t, sink)
}

func TestEnumBackedCaseWithoutValue(t *testing.T) {
	e := &ast.ClassDecl{
		Token: tk(1), Kind: ast.KindEnum, Name: "Suit",
		EnumBacking: tn("string"),
		Body:        []ast.Statement{&ast.EnumCase{Token: tk(2), Name: "Hearts"}},
	}
	sink := analyze(t, file(e))
	expectMessage(t, sink, "Case `Hearts` of backed enum `Suit` must have a value")
}

func TestEnumPureCaseWithValue(t *testing.T) {
	e := &ast.ClassDecl{
		Token: tk(1), Kind: ast.KindEnum, Name: "Suit",
		Body: []ast.Statement{&ast.EnumCase{Token: tk(2), Name: "Hearts", Value: str("h")}},
	}
	sink := analyze(t, file(e))
	expectMessage(t, sink, "Case `Hearts` of pure enum `Suit` cannot have a value")
}

func TestEnumCaseValueTypeMismatch(t *testing.T) {
	e := &ast.ClassDecl{
		Token: tk(1), Kind: ast.KindEnum, Name: "Suit",
		EnumBacking: tn("string"),
		Body:        []ast.Statement{&ast.EnumCase{Token: tk(2), Name: "Hearts", Value: inum(1)}},
	}
	sink := analyze(t, file(e))
	expectMessage(t, sink, "Enum case value type `int` does not match the backing type `string`")
}

func TestBackedEnumSyntheticSurface(t *testing.T) {
	e := &ast.ClassDecl{
		Token: tk(1), Kind: ast.KindEnum, Name: "Suit",
		EnumBacking: tn("string"),
		Body:        []ast.Statement{&ast.EnumCase{Token: tk(2), Name: "Hearts", Value: str("h")}},
	}
	ctx := analyzeContext(t, file(e))
	if ctx.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Sink.Diagnostics)
	}
	info := ctx.Env.GetClass("Suit")
	value, ok := info.Properties["value"]
	if !ok {
		t.Fatal("backed enum should have a synthetic value property")
	}
	if !value.Modifiers.Has(ast.Readonly) {
		t.Error("synthetic value property should be readonly")
	}
	if !typesystem.IsNamed(value.Type, "string") {
		t.Errorf("value property type = %v, want string", value.Type)
	}
	from := info.Method("from")
	if from == nil {
		t.Fatal("backed enum should import BackedEnum::from")
	}
	if from.Abstract {
		t.Error("imported BackedEnum methods are pre-implemented")
	}
	if !typesystem.IsNamed(from.ReturnType, "Suit") {
		t.Errorf("from return type = %v, want Suit (static bound)", from.ReturnType)
	}
	if !ctx.Env.HasAncestor("Suit", "BackedEnum") {
		t.Error("backed enum should carry the BackedEnum marker")
	}
	case_, ok := info.Constants["Hearts"]
	if !ok {
		t.Fatal("enum case should be stored as a constant")
	}
	if !typesystem.IsNamed(case_.Type, "Suit") {
		t.Errorf("enum case type = %v, want Suit", case_.Type)
	}
}

func TestEnumCaseOutsideEnum(t *testing.T) {
	c := class("C", &ast.EnumCase{Token: tk(1), Name: "X"})
	sink := analyze(t, file(c))
	expectMessage(t, sink, "Case `X` can only be declared in an enum")
}

func TestInterfaceClosureIsTransitive(t *testing.T) {
	a := iface("A")
	b := iface("B")
	b.Extends = nm("A")
	c := class("C")
	c.Implements = []*ast.Name{nm("B")}
	ctx := analyzeContext(t, file(a, b, c))
	if ctx.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Sink.Diagnostics)
	}
	info := ctx.Env.GetClass("C")
	if !info.InterfaceClosure["b"] || !info.InterfaceClosure["a"] {
		t.Errorf("closure = %v, want both a and b", info.InterfaceClosure)
	}
	if !ctx.Env.HasAncestor("C", "A") {
		t.Error("C should have A in its ancestry")
	}
}

func TestVariadicParameterCannotHaveDefault(t *testing.T) {
	p := param("rest", tn("int"))
	p.Variadic = true
	p.Default = inum(1)
	sink := analyze(t, file(fn("f", []*ast.Param{p}, nil)))
	expectMessage(t, sink, "Variadic parameter `$rest` cannot have a default value")
}

func TestUndefinedTypeHint(t *testing.T) {
	sink := analyze(t, file(
		fn("f", []*ast.Param{param("x", tn("NoSuchClass"))}, nil),
	))
	expectMessage(t, sink, "Undefined class `NoSuchClass`")
}
