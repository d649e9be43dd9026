package reflection

import (
	"testing"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

func TestHostExceptionHierarchy(t *testing.T) {
	env := NewEnv(nil)
	exc := env.GetClass("Exception")
	if exc == nil {
		t.Fatal("Exception missing from host environment")
	}
	m := exc.Method("getMessage")
	if m == nil {
		t.Fatal("Exception::getMessage missing")
	}
	if !typesystem.IsNamed(m.ReturnType, "string") {
		t.Errorf("getMessage return type = %v, want string", m.ReturnType)
	}
	// TypeError inherits through Error.
	te := env.GetClass("typeerror")
	if te == nil {
		t.Fatal("TypeError missing (lookup must be case-insensitive)")
	}
	if te.Method("getCode") == nil {
		t.Error("TypeError should inherit getCode from Error")
	}
	if !env.HasAncestor("TypeError", "Throwable") {
		t.Error("TypeError should have Throwable in its closure")
	}
	if !env.HasAncestor("TypeError", "Stringable") {
		t.Error("Throwable extends Stringable; closure must be transitive")
	}
}

func TestHostInterfacesAndKinds(t *testing.T) {
	env := NewEnv(nil)
	if !env.InterfaceExists("Stringable") {
		t.Error("Stringable should be a known interface")
	}
	if env.ClassExists("Stringable") {
		t.Error("Stringable is not a class")
	}
	if !env.ClassExists("ArrayObject") {
		t.Error("ArrayObject should be a known class")
	}
	if !env.HasAncestor("ArrayObject", "Traversable") {
		t.Error("ArrayObject implements IteratorAggregate extends Traversable")
	}
}

func TestHostFunctions(t *testing.T) {
	env := NewEnv(nil)
	sig := env.GetFunction("strlen")
	if sig == nil {
		t.Fatal("strlen missing")
	}
	if sig.RequiredParams() != 1 {
		t.Errorf("strlen requires %d params, want 1", sig.RequiredParams())
	}
	if !typesystem.IsNamed(sig.ReturnType, "int") {
		t.Errorf("strlen return = %v, want int", sig.ReturnType)
	}
	push := env.GetFunction("array_push")
	if push == nil || !push.Params[0].ByRef {
		t.Error("array_push first parameter is by reference")
	}
	if !push.Variadic {
		t.Error("array_push is variadic")
	}
	if env.GetFunction("no_such_function") != nil {
		t.Error("unknown function should not resolve")
	}
}

func TestHostConstants(t *testing.T) {
	env := NewEnv(nil)
	typ, ok := env.HostConstantType("PHP_EOL")
	if !ok || !typesystem.IsNamed(typ, "string") {
		t.Errorf("PHP_EOL = %v (%v), want string", typ, ok)
	}
	if _, ok := env.HostConstantType("NOT_A_CONSTANT"); ok {
		t.Error("unknown constant should not resolve")
	}
}

func TestIsReturnRequired(t *testing.T) {
	cases := []struct {
		name string
		sig  FunctionSig
		want bool
	}{
		{"typed body", FunctionSig{HasBody: true, ReturnType: typesystem.Named{Name: "int"}}, true},
		{"void", FunctionSig{HasBody: true, ReturnType: typesystem.Named{Name: "void"}}, false},
		{"never", FunctionSig{HasBody: true, ReturnType: typesystem.Named{Name: "never"}}, false},
		{"no hint", FunctionSig{HasBody: true}, false},
		{"abstract", FunctionSig{Abstract: true, ReturnType: typesystem.Named{Name: "int"}}, false},
		{"generator", FunctionSig{HasBody: true, Generator: true, ReturnType: typesystem.Named{Name: "int"}}, false},
	}
	for _, c := range cases {
		if got := c.sig.IsReturnRequired(); got != c.want {
			t.Errorf("%s: IsReturnRequired = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassInfoMethodLookupCaseInsensitive(t *testing.T) {
	c := NewClassInfo("Foo", ast.KindClass)
	c.Methods["bar"] = &FunctionSig{Name: "Foo::bar"}
	if c.Method("BAR") == nil {
		t.Error("method lookup must ignore case")
	}
	if c.Method("baz") != nil {
		t.Error("unknown method should not resolve")
	}
}
