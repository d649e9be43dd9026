// Package parser defines the contract between the checker core and the
// source-language parser, which is an external collaborator. The core
// never inspects raw source text; it consumes the AST a registered parser
// produces.
package parser

import (
	"fmt"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
)

// Parser turns one source file into an AST.
type Parser interface {
	// Parse parses src. The returned file must have Path set to path.
	// A syntax error is reported as *Error.
	Parse(path string, src []byte) (*ast.File, error)
}

// Error is a parse failure with the position information the diagnostics
// layer needs.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Default is the parser the command-line front-end uses. A parser
// implementation registers itself here from its own package init or from
// the embedding program's main.
var Default Parser
