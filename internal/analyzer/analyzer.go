// Package analyzer implements the second analysis pass over a populated
// registry: class resolution, signature initialization, and per-file
// statement validation backed by the expression typer.
package analyzer

import (
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
)

// Analyzer drives class resolution and validation. It is stateless apart
// from configuration; all mutable analysis state lives in the Context.
type Analyzer struct {
	cfg *config.Config
}

// New builds an analyzer with cfg; nil selects the defaults.
func New(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Analyzer{cfg: cfg}
}

// Run resolves every registered class and function signature in
// registration order, then validates each file in load order. The loader
// must have completed before Run is called.
func (a *Analyzer) Run(ctx *symbols.Context, files []*ast.File) {
	for _, info := range ctx.Registry.ClassOrder {
		a.InitClass(ctx, info)
	}
	for _, sig := range ctx.Registry.FunctionOrder {
		a.initFunctionSig(ctx, sig)
	}
	for _, f := range files {
		a.ValidateFile(ctx, f)
	}
}
