package config

// SourceFileExt is the extension of analyzed source files.
const SourceFileExt = ".php"

// SuperGlobals are preloaded as `array` variables in every new scope.
var SuperGlobals = []string{
	"_GET", "_ENV", "_POST", "_FILES", "_COOKIE",
	"_SERVER", "_GLOBALS", "_REQUEST", "_SESSION",
}

// ReservedConstants cannot be redeclared by user code.
var ReservedConstants = map[string]bool{
	"null":  true,
	"true":  true,
	"false": true,
}
