package diagnostics

import (
	"fmt"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// Diagnostic is one reported defect. All defects are recoverable; they
// are collected and analysis continues.
type Diagnostic struct {
	Code    ErrorCode
	File    string
	Line    int
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s line %d: %s", d.File, d.Line, d.Message)
}

// NewError builds a diagnostic from a code, the token that locates it,
// and the template arguments. The file is attached by the sink.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *Diagnostic {
	tmpl, ok := templates[code]
	if !ok {
		tmpl = string(code)
	}
	return &Diagnostic{
		Code:    code,
		Line:    tok.Line,
		Message: fmt.Sprintf(tmpl, args...),
	}
}

// Sink collects diagnostics in encounter order. A single sink is shared
// by every Context clone of a run, so ordering follows document order.
type Sink struct {
	Diagnostics []*Diagnostic
}

// Add records d against file.
func (s *Sink) Add(file string, d *Diagnostic) {
	d.File = file
	s.Diagnostics = append(s.Diagnostics, d)
}

// HasErrors reports whether any diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	return len(s.Diagnostics) > 0
}
