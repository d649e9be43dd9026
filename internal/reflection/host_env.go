package reflection

import (
	"strings"
	"sync"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// HostEnv is the embedded description of the runtime environment: the
// classes, functions and constants the analyzed language ships with. It
// is a hand-maintained table, not an I/O boundary.
type HostEnv struct {
	classes   map[string]*ClassInfo
	functions map[string]*FunctionSig
	constants map[string]typesystem.Type
}

var (
	hostOnce sync.Once
	hostInst *HostEnv
)

func defaultHost() *HostEnv {
	hostOnce.Do(func() {
		hostInst = buildHost()
	})
	return hostInst
}

func named(n string) typesystem.Type          { return typesystem.Named{Name: n} }
func nullable(n string) typesystem.Type       { return typesystem.Named{Name: n, Nullable: true} }
func union(ts ...typesystem.Type) typesystem.Type { return typesystem.MakeUnion(ts...) }

func hp(name string, t typesystem.Type) *Param {
	return &Param{Name: name, Type: t}
}

func hpOpt(name string, t typesystem.Type) *Param {
	return &Param{Name: name, Type: t, HasDefault: true}
}

func hpRef(name string, t typesystem.Type) *Param {
	return &Param{Name: name, Type: t, ByRef: true}
}

func hpVariadic(name string, t typesystem.Type) *Param {
	return &Param{Name: name, Type: t, Variadic: true}
}

func hostFunc(name string, ret typesystem.Type, params ...*Param) *FunctionSig {
	variadic := false
	for _, p := range params {
		if p.Variadic {
			variadic = true
		}
	}
	return &FunctionSig{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Variadic:   variadic,
		HasBody:    true,
		Host:       true,
		Modifiers:  ast.Public,
	}
}

func hostMethod(class, name string, mods ast.Modifier, ret typesystem.Type, params ...*Param) *FunctionSig {
	sig := hostFunc(class+"::"+name, ret, params...)
	sig.Modifiers = mods | ast.Public
	sig.DeclaringClass = class
	sig.Abstract = mods.Has(ast.Abstract)
	sig.HasBody = !sig.Abstract
	return sig
}

func hostClass(name string, kind ast.ClassKind, parent string, ifaces []string, methods ...*FunctionSig) *ClassInfo {
	c := NewClassInfo(name, kind)
	c.Host = true
	c.ParentName = parent
	c.InterfaceNames = ifaces
	for _, m := range methods {
		c.Methods[strings.ToLower(m.Name[strings.LastIndex(m.Name, ":")+1:])] = m
	}
	return c
}

func buildHost() *HostEnv {
	h := &HostEnv{
		classes:   make(map[string]*ClassInfo),
		functions: make(map[string]*FunctionSig),
		constants: make(map[string]typesystem.Type),
	}

	add := func(c *ClassInfo) { h.classes[strings.ToLower(c.Name)] = c }

	add(hostClass("stdClass", ast.KindClass, "", nil))

	add(hostClass("Closure", ast.KindClass, "", nil,
		hostMethod("Closure", "bind", ast.Static, nullable("Closure"),
			hp("closure", named("Closure")), hp("newThis", nullable("object")), hpOpt("newScope", union(named("object"), named("string"), named("null")))),
		hostMethod("Closure", "bindTo", 0, nullable("Closure"),
			hp("newThis", nullable("object")), hpOpt("newScope", union(named("object"), named("string"), named("null")))),
		hostMethod("Closure", "call", 0, named("mixed"),
			hp("newThis", named("object")), hpVariadic("args", named("mixed"))),
		hostMethod("Closure", "fromCallable", ast.Static, named("Closure"),
			hp("callback", named("callable"))),
	))

	add(hostClass("Stringable", ast.KindInterface, "", nil,
		hostMethod("Stringable", "__toString", ast.Abstract, named("string")),
	))

	add(hostClass("Countable", ast.KindInterface, "", nil,
		hostMethod("Countable", "count", ast.Abstract, named("int")),
	))

	add(hostClass("Traversable", ast.KindInterface, "", nil))

	add(hostClass("Iterator", ast.KindInterface, "", []string{"Traversable"},
		hostMethod("Iterator", "current", ast.Abstract, named("mixed")),
		hostMethod("Iterator", "key", ast.Abstract, named("mixed")),
		hostMethod("Iterator", "next", ast.Abstract, named("void")),
		hostMethod("Iterator", "rewind", ast.Abstract, named("void")),
		hostMethod("Iterator", "valid", ast.Abstract, named("bool")),
	))

	add(hostClass("IteratorAggregate", ast.KindInterface, "", []string{"Traversable"},
		hostMethod("IteratorAggregate", "getIterator", ast.Abstract, named("Traversable")),
	))

	add(hostClass("ArrayAccess", ast.KindInterface, "", nil,
		hostMethod("ArrayAccess", "offsetExists", ast.Abstract, named("bool"), hp("offset", named("mixed"))),
		hostMethod("ArrayAccess", "offsetGet", ast.Abstract, named("mixed"), hp("offset", named("mixed"))),
		hostMethod("ArrayAccess", "offsetSet", ast.Abstract, named("void"), hp("offset", named("mixed")), hp("value", named("mixed"))),
		hostMethod("ArrayAccess", "offsetUnset", ast.Abstract, named("void"), hp("offset", named("mixed"))),
	))

	add(hostClass("Generator", ast.KindClass, "", []string{"Iterator"},
		hostMethod("Generator", "current", 0, named("mixed")),
		hostMethod("Generator", "key", 0, named("mixed")),
		hostMethod("Generator", "next", 0, named("void")),
		hostMethod("Generator", "rewind", 0, named("void")),
		hostMethod("Generator", "valid", 0, named("bool")),
		hostMethod("Generator", "send", 0, named("mixed"), hp("value", named("mixed"))),
		hostMethod("Generator", "getReturn", 0, named("mixed")),
	))

	add(hostClass("UnitEnum", ast.KindInterface, "", nil,
		hostMethod("UnitEnum", "cases", ast.Static|ast.Abstract, named("array")),
	))

	add(hostClass("BackedEnum", ast.KindInterface, "", []string{"UnitEnum"},
		hostMethod("BackedEnum", "cases", ast.Static|ast.Abstract, named("array")),
		hostMethod("BackedEnum", "from", ast.Static|ast.Abstract, named("static"), hp("value", union(named("int"), named("string")))),
		hostMethod("BackedEnum", "tryFrom", ast.Static|ast.Abstract, nullable("static"), hp("value", union(named("int"), named("string")))),
	))

	throwableMethods := func(class string, mods ast.Modifier) []*FunctionSig {
		return []*FunctionSig{
			hostMethod(class, "getMessage", mods, named("string")),
			hostMethod(class, "getCode", mods, named("int")),
			hostMethod(class, "getFile", mods, named("string")),
			hostMethod(class, "getLine", mods, named("int")),
			hostMethod(class, "getTrace", mods, named("array")),
			hostMethod(class, "getTraceAsString", mods, named("string")),
			hostMethod(class, "getPrevious", mods, nullable("Throwable")),
		}
	}

	add(hostClass("Throwable", ast.KindInterface, "", []string{"Stringable"},
		throwableMethods("Throwable", ast.Abstract)...))

	exceptionCtor := func(class string) *FunctionSig {
		return hostMethod(class, "__construct", 0, nil,
			hpOpt("message", named("string")),
			hpOpt("code", named("int")),
			hpOpt("previous", nullable("Throwable")))
	}

	add(hostClass("Exception", ast.KindClass, "", []string{"Throwable"},
		append(throwableMethods("Exception", 0),
			exceptionCtor("Exception"),
			hostMethod("Exception", "__toString", 0, named("string")))...))

	add(hostClass("Error", ast.KindClass, "", []string{"Throwable"},
		append(throwableMethods("Error", 0),
			exceptionCtor("Error"),
			hostMethod("Error", "__toString", 0, named("string")))...))

	add(hostClass("TypeError", ast.KindClass, "Error", nil))
	add(hostClass("ValueError", ast.KindClass, "Error", nil))
	add(hostClass("ArgumentCountError", ast.KindClass, "TypeError", nil))
	add(hostClass("ArithmeticError", ast.KindClass, "Error", nil))
	add(hostClass("DivisionByZeroError", ast.KindClass, "ArithmeticError", nil))
	add(hostClass("RuntimeException", ast.KindClass, "Exception", nil))
	add(hostClass("LogicException", ast.KindClass, "Exception", nil))
	add(hostClass("InvalidArgumentException", ast.KindClass, "LogicException", nil))
	add(hostClass("OutOfRangeException", ast.KindClass, "LogicException", nil))
	add(hostClass("UnexpectedValueException", ast.KindClass, "RuntimeException", nil))
	add(hostClass("JsonException", ast.KindClass, "Exception", nil))

	add(hostClass("ArrayObject", ast.KindClass, "", []string{"IteratorAggregate", "ArrayAccess", "Countable"},
		hostMethod("ArrayObject", "__construct", 0, nil,
			hpOpt("array", union(named("array"), named("object"))),
			hpOpt("flags", named("int"))),
		hostMethod("ArrayObject", "count", 0, named("int")),
		hostMethod("ArrayObject", "getIterator", 0, named("Iterator")),
		hostMethod("ArrayObject", "offsetExists", 0, named("bool"), hp("key", named("mixed"))),
		hostMethod("ArrayObject", "offsetGet", 0, named("mixed"), hp("key", named("mixed"))),
		hostMethod("ArrayObject", "offsetSet", 0, named("void"), hp("key", named("mixed")), hp("value", named("mixed"))),
		hostMethod("ArrayObject", "offsetUnset", 0, named("void"), hp("key", named("mixed"))),
	))

	linkHostClasses(h)

	for _, f := range hostFunctions() {
		h.functions[strings.ToLower(f.Name)] = f
	}

	for name, t := range hostConstants() {
		h.constants[strings.ToLower(name)] = t
	}

	return h
}

// linkHostClasses resolves parent pointers and interface closures inside
// the host table. The table is acyclic by construction.
func linkHostClasses(h *HostEnv) {
	var link func(c *ClassInfo)
	link = func(c *ClassInfo) {
		if c.Initialized {
			return
		}
		c.Initialized = true
		if c.ParentName != "" {
			if p := h.classes[strings.ToLower(c.ParentName)]; p != nil {
				link(p)
				c.Parent = p
				for k := range p.InterfaceClosure {
					c.InterfaceClosure[k] = true
				}
				for name, m := range p.Methods {
					if _, own := c.Methods[name]; !own {
						c.Methods[name] = m
					}
				}
			}
		}
		for _, iface := range c.InterfaceNames {
			ic := h.classes[strings.ToLower(iface)]
			if ic == nil {
				continue
			}
			link(ic)
			c.InterfaceClosure[strings.ToLower(ic.Name)] = true
			for k := range ic.InterfaceClosure {
				c.InterfaceClosure[k] = true
			}
		}
	}
	for _, c := range h.classes {
		link(c)
	}
}

func hostFunctions() []*FunctionSig {
	mixedT := named("mixed")
	return []*FunctionSig{
		hostFunc("strlen", named("int"), hp("string", named("string"))),
		hostFunc("count", named("int"), hp("value", union(named("Countable"), named("array"))), hpOpt("mode", named("int"))),
		hostFunc("in_array", named("bool"), hp("needle", mixedT), hp("haystack", named("array")), hpOpt("strict", named("bool"))),
		hostFunc("array_map", named("array"), hp("callback", nullable("callable")), hp("array", named("array")), hpVariadic("arrays", named("array"))),
		hostFunc("array_filter", named("array"), hp("array", named("array")), hpOpt("callback", nullable("callable")), hpOpt("mode", named("int"))),
		hostFunc("array_keys", named("array"), hp("array", named("array"))),
		hostFunc("array_values", named("array"), hp("array", named("array"))),
		hostFunc("array_merge", named("array"), hpVariadic("arrays", named("array"))),
		hostFunc("array_push", named("int"), hpRef("array", named("array")), hpVariadic("values", mixedT)),
		hostFunc("array_key_exists", named("bool"), hp("key", union(named("string"), named("int"))), hp("array", named("array"))),
		hostFunc("implode", named("string"), hp("separator", named("string")), hp("array", named("array"))),
		hostFunc("explode", named("array"), hp("separator", named("string")), hp("string", named("string")), hpOpt("limit", named("int"))),
		hostFunc("sprintf", named("string"), hp("format", named("string")), hpVariadic("values", mixedT)),
		hostFunc("printf", named("int"), hp("format", named("string")), hpVariadic("values", mixedT)),
		hostFunc("print", named("int"), hp("expression", named("string"))),
		hostFunc("print_r", union(named("string"), named("true")), hp("value", mixedT), hpOpt("return", named("bool"))),
		hostFunc("var_dump", named("void"), hp("value", mixedT), hpVariadic("values", mixedT)),
		hostFunc("is_string", named("bool"), hp("value", mixedT)),
		hostFunc("is_int", named("bool"), hp("value", mixedT)),
		hostFunc("is_float", named("bool"), hp("value", mixedT)),
		hostFunc("is_bool", named("bool"), hp("value", mixedT)),
		hostFunc("is_array", named("bool"), hp("value", mixedT)),
		hostFunc("is_null", named("bool"), hp("value", mixedT)),
		hostFunc("is_object", named("bool"), hp("value", mixedT)),
		hostFunc("is_callable", named("bool"), hp("value", mixedT)),
		hostFunc("is_numeric", named("bool"), hp("value", mixedT)),
		hostFunc("intval", named("int"), hp("value", mixedT), hpOpt("base", named("int"))),
		hostFunc("floatval", named("float"), hp("value", mixedT)),
		hostFunc("strval", named("string"), hp("value", union(named("string"), named("int"), named("float"), named("bool"), named("null"), named("Stringable")))),
		hostFunc("boolval", named("bool"), hp("value", mixedT)),
		hostFunc("abs", union(named("int"), named("float")), hp("num", union(named("int"), named("float")))),
		hostFunc("max", mixedT, hp("value", mixedT), hpVariadic("values", mixedT)),
		hostFunc("min", mixedT, hp("value", mixedT), hpVariadic("values", mixedT)),
		hostFunc("str_replace", union(named("string"), named("array")), hp("search", union(named("string"), named("array"))), hp("replace", union(named("string"), named("array"))), hp("subject", union(named("string"), named("array")))),
		hostFunc("str_contains", named("bool"), hp("haystack", named("string")), hp("needle", named("string"))),
		hostFunc("str_starts_with", named("bool"), hp("haystack", named("string")), hp("needle", named("string"))),
		hostFunc("substr", named("string"), hp("string", named("string")), hp("offset", named("int")), hpOpt("length", nullable("int"))),
		hostFunc("strpos", union(named("int"), named("false")), hp("haystack", named("string")), hp("needle", named("string")), hpOpt("offset", named("int"))),
		hostFunc("trim", named("string"), hp("string", named("string")), hpOpt("characters", named("string"))),
		hostFunc("strtolower", named("string"), hp("string", named("string"))),
		hostFunc("strtoupper", named("string"), hp("string", named("string"))),
		hostFunc("json_encode", union(named("string"), named("false")), hp("value", mixedT), hpOpt("flags", named("int")), hpOpt("depth", named("int"))),
		hostFunc("json_decode", mixedT, hp("json", named("string")), hpOpt("associative", nullable("bool")), hpOpt("depth", named("int")), hpOpt("flags", named("int"))),
		hostFunc("preg_match", union(named("int"), named("false")), hp("pattern", named("string")), hp("subject", named("string")), hpRef("matches", named("array")), hpOpt("flags", named("int")), hpOpt("offset", named("int"))),
		hostFunc("sort", named("true"), hpRef("array", named("array")), hpOpt("flags", named("int"))),
		hostFunc("usort", named("true"), hpRef("array", named("array")), hp("callback", named("callable"))),
		hostFunc("get_class", named("string"), hp("object", named("object"))),
		hostFunc("function_exists", named("bool"), hp("function", named("string"))),
		hostFunc("class_exists", named("bool"), hp("class", named("string")), hpOpt("autoload", named("bool"))),
		hostFunc("define", named("bool"), hp("constant_name", named("string")), hp("value", mixedT)),
		hostFunc("constant", mixedT, hp("name", named("string"))),
		hostFunc("file_get_contents", union(named("string"), named("false")), hp("filename", named("string"))),
		hostFunc("file_exists", named("bool"), hp("filename", named("string"))),
	}
}

func hostConstants() map[string]typesystem.Type {
	return map[string]typesystem.Type{
		"PHP_EOL":             named("string"),
		"PHP_VERSION":         named("string"),
		"PHP_OS":              named("string"),
		"PHP_OS_FAMILY":       named("string"),
		"PHP_INT_MAX":         named("int"),
		"PHP_INT_MIN":         named("int"),
		"PHP_INT_SIZE":        named("int"),
		"PHP_FLOAT_MAX":       named("float"),
		"PHP_FLOAT_MIN":       named("float"),
		"PHP_FLOAT_EPSILON":   named("float"),
		"PHP_FLOAT_DIG":       named("int"),
		"DIRECTORY_SEPARATOR": named("string"),
		"PATH_SEPARATOR":      named("string"),
		"M_PI":                named("float"),
		"M_E":                 named("float"),
		"E_ALL":               named("int"),
		"E_ERROR":             named("int"),
		"E_WARNING":           named("int"),
		"E_NOTICE":            named("int"),
		"E_DEPRECATED":        named("int"),
		"SORT_REGULAR":        named("int"),
		"SORT_NUMERIC":        named("int"),
		"SORT_STRING":         named("int"),
		"COUNT_NORMAL":        named("int"),
		"COUNT_RECURSIVE":     named("int"),
		"JSON_PRETTY_PRINT":   named("int"),
		"JSON_THROW_ON_ERROR": named("int"),
	}
}
