package diagnostics

import (
	"bytes"
	"testing"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

func TestNewErrorFormatsTemplate(t *testing.T) {
	d := NewError(ErrUndefinedVariable, token.Token{Line: 7}, "x")
	if d.Message != "Undefined variable `$x`" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Line != 7 {
		t.Errorf("line = %d, want 7", d.Line)
	}
	if d.Code != ErrUndefinedVariable {
		t.Errorf("code = %s", d.Code)
	}
}

func TestSinkOrderAndHasErrors(t *testing.T) {
	sink := &Sink{}
	if sink.HasErrors() {
		t.Error("fresh sink has no errors")
	}
	sink.Add("/src/a.php", NewError(ErrUndefinedVariable, token.Token{Line: 1}, "a"))
	sink.Add("/src/b.php", NewError(ErrUndefinedVariable, token.Token{Line: 2}, "b"))
	if !sink.HasErrors() {
		t.Error("sink must report errors after Add")
	}
	if sink.Diagnostics[0].File != "/src/a.php" || sink.Diagnostics[1].File != "/src/b.php" {
		t.Error("diagnostics must keep encounter order")
	}
}

func TestReporterBlockFormat(t *testing.T) {
	sink := &Sink{}
	sink.Add("/work/src/a.php", NewError(ErrUndefinedVariable, token.Token{Line: 3}, "x"))
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Cwd: "/work"}
	r.Print(sink)
	want := "`./src/a.php` line 3:\nUndefined variable `$x`\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestReporterAbsolutePathOutsideCwd(t *testing.T) {
	sink := &Sink{}
	sink.Add("/elsewhere/a.php", NewError(ErrUndefinedVariable, token.Token{Line: 1}, "x"))
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Cwd: "/work"}
	r.Print(sink)
	want := "`/elsewhere/a.php` line 1:\nUndefined variable `$x`\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestEveryCodeHasTemplate(t *testing.T) {
	codes := []ErrorCode{
		ErrParse, ErrUndefinedVariable, ErrUndefinedConstant, ErrUndefinedFunction,
		ErrUndefinedClass, ErrUndefinedMethod, ErrUndefinedProperty,
		ErrUndefinedClassConstant, ErrUndefinedTrait, ErrUndefinedInterface,
		ErrUndefinedClosureUse, ErrRedeclaredClass, ErrRedeclaredFunction,
		ErrRedeclaredConstant, ErrRedeclaredProperty, ErrRedeclaredMethod,
		ErrRedeclaredClassConstant, ErrReservedConstantName, ErrArgumentType,
		ErrReturnType, ErrAssignmentType, ErrDefaultValueType, ErrConstantType,
		ErrEnumCaseType, ErrTooFewArguments, ErrTooManyArguments,
		ErrUnknownNamedArg, ErrVariadicDefault, ErrByRefArgument, ErrVariadicNotLast,
		ErrScopeOutsideClass, ErrNoParentClass, ErrStaticCallNonStatic,
		ErrStaticPropNonStatic, ErrInterfaceProperty, ErrInterfaceMethodBody,
		ErrInterfaceMethodVis, ErrInterfaceAbstract, ErrAbstractMethodBody,
		ErrAbstractPrivate, ErrAbstractNotSatisfied, ErrExtendFinalClass,
		ErrOverrideFinalMethod, ErrInterfaceModifiers, ErrInterfaceParamCount,
		ErrInterfaceParamTypes, ErrInterfaceReturnType, ErrTraitMethodCollision,
		ErrConditionNever, ErrConditionAlways, ErrMissingReturn,
		ErrReadonlyNoType, ErrReadonlyDefault, ErrEnumCaseOutsideEnum,
		ErrBackedCaseNoValue, ErrPureCaseWithValue, ErrNotWritable,
		ErrInstantiateAbstract, ErrInstantiateNonClass, ErrCtorArgsWithoutCtor,
		ErrUnresolvableInclude, ErrIncludedFileMissing, ErrInternal,
	}
	for _, code := range codes {
		if _, ok := templates[code]; !ok {
			t.Errorf("code %s has no message template", code)
		}
	}
}
