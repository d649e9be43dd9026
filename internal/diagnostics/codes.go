package diagnostics

// ErrorCode identifies one diagnostic kind. Codes are stable so tests and
// baselines can match on them instead of message text.
type ErrorCode string

const (
	ErrParse ErrorCode = "T000"

	// Undefined names.
	ErrUndefinedVariable      ErrorCode = "T001"
	ErrUndefinedConstant      ErrorCode = "T002"
	ErrUndefinedFunction      ErrorCode = "T003"
	ErrUndefinedClass         ErrorCode = "T004"
	ErrUndefinedMethod        ErrorCode = "T005"
	ErrUndefinedProperty      ErrorCode = "T006"
	ErrUndefinedClassConstant ErrorCode = "T007"
	ErrUndefinedTrait         ErrorCode = "T008"
	ErrUndefinedInterface     ErrorCode = "T009"
	ErrUndefinedClosureUse    ErrorCode = "T010"

	// Redeclarations.
	ErrRedeclaredClass         ErrorCode = "T011"
	ErrRedeclaredFunction      ErrorCode = "T012"
	ErrRedeclaredConstant      ErrorCode = "T013"
	ErrRedeclaredProperty      ErrorCode = "T014"
	ErrRedeclaredMethod        ErrorCode = "T015"
	ErrRedeclaredClassConstant ErrorCode = "T016"
	ErrReservedConstantName    ErrorCode = "T017"

	// Type incompatibilities.
	ErrArgumentType     ErrorCode = "T020"
	ErrReturnType       ErrorCode = "T021"
	ErrAssignmentType   ErrorCode = "T022"
	ErrDefaultValueType ErrorCode = "T023"
	ErrConstantType     ErrorCode = "T024"
	ErrEnumCaseType     ErrorCode = "T025"

	// Arity.
	ErrTooFewArguments  ErrorCode = "T030"
	ErrTooManyArguments ErrorCode = "T031"
	ErrUnknownNamedArg  ErrorCode = "T032"
	ErrVariadicDefault  ErrorCode = "T033"
	ErrByRefArgument    ErrorCode = "T034"
	ErrVariadicNotLast  ErrorCode = "T035"

	// Scope misuse.
	ErrScopeOutsideClass    ErrorCode = "T040"
	ErrNoParentClass        ErrorCode = "T041"
	ErrStaticCallNonStatic  ErrorCode = "T042"
	ErrStaticPropNonStatic  ErrorCode = "T043"
	ErrInterfaceProperty    ErrorCode = "T044"
	ErrInterfaceMethodBody  ErrorCode = "T045"
	ErrInterfaceMethodVis   ErrorCode = "T046"
	ErrInterfaceAbstract    ErrorCode = "T047"
	ErrAbstractMethodBody   ErrorCode = "T048"
	ErrAbstractPrivate      ErrorCode = "T049"
	ErrAbstractNotSatisfied ErrorCode = "T050"

	// Inheritance.
	ErrExtendFinalClass     ErrorCode = "T051"
	ErrOverrideFinalMethod  ErrorCode = "T052"
	ErrInterfaceModifiers   ErrorCode = "T053"
	ErrInterfaceParamCount  ErrorCode = "T054"
	ErrInterfaceParamTypes  ErrorCode = "T055"
	ErrInterfaceReturnType  ErrorCode = "T056"
	ErrTraitMethodCollision ErrorCode = "T057"

	// Dataflow.
	ErrConditionNever  ErrorCode = "T060"
	ErrConditionAlways ErrorCode = "T061"
	ErrMissingReturn   ErrorCode = "T062"

	// Properties and enums.
	ErrReadonlyNoType       ErrorCode = "T070"
	ErrReadonlyDefault      ErrorCode = "T071"
	ErrEnumCaseOutsideEnum  ErrorCode = "T072"
	ErrBackedCaseNoValue    ErrorCode = "T073"
	ErrPureCaseWithValue    ErrorCode = "T074"
	ErrNotWritable          ErrorCode = "T075"
	ErrInstantiateAbstract  ErrorCode = "T076"
	ErrInstantiateNonClass  ErrorCode = "T077"
	ErrCtorArgsWithoutCtor  ErrorCode = "T078"
	ErrUnresolvableInclude  ErrorCode = "T080"
	ErrIncludedFileMissing  ErrorCode = "T081"
	ErrInternal             ErrorCode = "T099"
)

// templates maps each code to its user-visible message format.
var templates = map[ErrorCode]string{
	ErrParse: "%s",

	ErrUndefinedVariable:      "Undefined variable `$%s`",
	ErrUndefinedConstant:      "Undefined constant `%s`",
	ErrUndefinedFunction:      "Call to undefined function `%s`",
	ErrUndefinedClass:         "Undefined class `%s`",
	ErrUndefinedMethod:        "Call to undefined method `%s::%s`",
	ErrUndefinedProperty:      "Undefined property `%s::$%s`",
	ErrUndefinedClassConstant: "Undefined class constant `%s::%s`",
	ErrUndefinedTrait:         "Undefined trait `%s`",
	ErrUndefinedInterface:     "Undefined interface `%s`",
	ErrUndefinedClosureUse:    "Undefined variable `$%s` in closure use",

	ErrRedeclaredClass:         "Cannot redeclare class `%s`",
	ErrRedeclaredFunction:      "Cannot redeclare function `%s`",
	ErrRedeclaredConstant:      "Cannot redeclare constant `%s`",
	ErrRedeclaredProperty:      "Cannot redeclare property `%s::$%s`",
	ErrRedeclaredMethod:        "Cannot redeclare method `%s::%s`",
	ErrRedeclaredClassConstant: "Cannot redeclare class constant `%s::%s`",
	ErrReservedConstantName:    "Cannot declare constant with reserved name `%s`",

	ErrArgumentType:     "Argument %d of `%s` expects type `%s`, `%s` provided",
	ErrReturnType:       "Returned type `%s` is incompatible with the return type hint `%s`",
	ErrAssignmentType:   "Assigned type `%s` is incompatible with the declared type `%s`",
	ErrDefaultValueType: "Default value type `%s` is incompatible with the type hint `%s`",
	ErrConstantType:     "Constant value type `%s` is incompatible with the type hint `%s`",
	ErrEnumCaseType:     "Enum case value type `%s` does not match the backing type `%s`",

	ErrTooFewArguments:  "Too few arguments provided to function `%s`",
	ErrTooManyArguments: "Too many arguments provided to function `%s`",
	ErrUnknownNamedArg:  "Unknown named argument `%s` for function `%s`",
	ErrVariadicDefault:  "Variadic parameter `$%s` cannot have a default value",
	ErrByRefArgument:    "Argument %d of `%s` must be a variable, property or index expression",
	ErrVariadicNotLast:  "Only the last parameter of `%s` can be variadic",

	ErrScopeOutsideClass:    "Cannot use `%s` outside of a class",
	ErrNoParentClass:        "Cannot use `parent` because class `%s` has no parent",
	ErrStaticCallNonStatic:  "Non-static method `%s::%s` cannot be called statically",
	ErrStaticPropNonStatic:  "Static property `%s::$%s` cannot be accessed non-statically",
	ErrInterfaceProperty:    "Interface `%s` cannot declare properties",
	ErrInterfaceMethodBody:  "Interface method `%s::%s` cannot have a body",
	ErrInterfaceMethodVis:   "Interface method `%s::%s` must be public",
	ErrInterfaceAbstract:    "Method `%s::%s` must not be declared abstract in an interface",
	ErrAbstractMethodBody:   "Abstract method `%s::%s` cannot have a body",
	ErrAbstractPrivate:      "Abstract method `%s::%s` cannot be private",
	ErrAbstractNotSatisfied: "Non-abstract class `%s` does not implement abstract method `%s`",

	ErrExtendFinalClass:     "Cannot extend final class `%s`",
	ErrOverrideFinalMethod:  "Cannot override final method `%s::%s`",
	ErrInterfaceModifiers:   "Method `%s` has different modifiers compared to the definition in the interface",
	ErrInterfaceParamCount:  "Method `%s` has a different number of parameters compared to the definition in the interface",
	ErrInterfaceParamTypes:  "Method `%s` has different parameter types compared to the definition in the interface",
	ErrInterfaceReturnType:  "Method `%s` has a different return type compared to the definition in the interface",
	ErrTraitMethodCollision: "Trait method `%s` collides in class `%s`",

	ErrConditionNever:  "Condition is never fulfilled because of the type mismatch between `%s` and `%s`",
	ErrConditionAlways: "Condition is always fulfilled because of the type mismatch between `%s` and `%s`",
	ErrMissingReturn:   "Function `%s` has a non-void return type hint but lacks a return statement",

	ErrReadonlyNoType:      "Readonly property `%s::$%s` must have a type hint",
	ErrReadonlyDefault:     "Readonly property `%s::$%s` cannot have a default value",
	ErrEnumCaseOutsideEnum: "Case `%s` can only be declared in an enum",
	ErrBackedCaseNoValue:   "Case `%s` of backed enum `%s` must have a value",
	ErrPureCaseWithValue:   "Case `%s` of pure enum `%s` cannot have a value",
	ErrNotWritable:         "Expression is not writable",
	ErrInstantiateAbstract: "Cannot instantiate abstract class `%s`",
	ErrInstantiateNonClass: "Cannot instantiate %s `%s`",
	ErrCtorArgsWithoutCtor: "Class `%s` has no constructor but constructor arguments are provided",
	ErrUnresolvableInclude: "Include expression cannot be resolved statically",
	ErrIncludedFileMissing: "Included file `%s` does not exist",
	ErrInternal:            "Internal error: %s",
}
