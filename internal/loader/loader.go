// Package loader implements the first analysis pass: it parses each input
// file, walks the top level, registers classes, functions and constants
// in the global registry, and follows statically resolvable includes.
package loader

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/parser"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/utils"
)

// LoadedFile is one successfully parsed source file, in load order.
type LoadedFile struct {
	Path  string // canonical
	AST   *ast.File
	Lines int
}

type parseResult struct {
	file  *ast.File
	lines int
	err   error
}

// Loader drives the discovery pass. Parsing of the initial file set runs
// concurrently; registration is single-writer so registry state and
// diagnostic order stay deterministic.
type Loader struct {
	Ctx    *symbols.Context
	Parser parser.Parser
	Config *config.Config

	Files   []*LoadedFile // analyzed files in load order
	Ignored []string      // canonical paths excluded by prefix

	prefetched map[string]parseResult
}

// New builds a loader over ctx.
func New(ctx *symbols.Context, p parser.Parser, cfg *config.Config) *Loader {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Loader{
		Ctx:        ctx,
		Parser:     p,
		Config:     cfg,
		prefetched: make(map[string]parseResult),
	}
}

// LoadAll canonicalizes and loads every input path in order. The parse
// work for the initial set is done up front in parallel.
func (l *Loader) LoadAll(paths []string) {
	canonical := make([]string, 0, len(paths))
	for _, p := range paths {
		cp, err := utils.CanonicalPath(p)
		if err != nil {
			l.Ctx.Sink.Add(p, diagnostics.NewError(diagnostics.ErrIncludedFileMissing, token.Token{}, p))
			continue
		}
		canonical = append(canonical, cp)
	}
	l.prefetch(canonical)
	for _, p := range canonical {
		l.LoadFile(p)
	}
}

// prefetch parses paths concurrently into the cache.
func (l *Loader) prefetch(paths []string) {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, p := range paths {
		p := p
		g.Go(func() error {
			res := l.parse(p)
			mu.Lock()
			l.prefetched[p] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

func (l *Loader) parse(path string) parseResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return parseResult{err: err}
	}
	lines := strings.Count(string(src), "\n") + 1
	file, err := l.Parser.Parse(path, src)
	if err != nil {
		return parseResult{lines: lines, err: err}
	}
	return parseResult{file: file, lines: lines}
}

func (l *Loader) ignored(path string) bool {
	for _, prefix := range l.Config.IgnoreFilePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// LoadFile loads one canonical path: parse, register top-level symbols,
// follow includes. Files matching an ignore prefix are registered but not
// queued for validation. A parse failure aborts this file only.
func (l *Loader) LoadFile(path string) {
	if l.Ctx.Registry.LoadedFiles[path] {
		return
	}
	l.Ctx.Registry.LoadedFiles[path] = true

	res, ok := l.prefetched[path]
	if !ok {
		res = l.parse(path)
	}
	if res.err != nil {
		d := diagnostics.NewError(diagnostics.ErrParse, token.Token{}, res.err.Error())
		if pe, isParse := res.err.(*parser.Error); isParse {
			d = diagnostics.NewError(diagnostics.ErrParse, token.Token{Line: pe.Line}, pe.Message)
		}
		l.Ctx.Sink.Add(path, d)
		return
	}

	prevFile := l.Ctx.File
	l.Ctx.File = path
	l.walkTopLevel(res.file.Statements)
	l.Ctx.File = prevFile

	if l.ignored(path) {
		l.Ignored = append(l.Ignored, path)
		return
	}
	l.Files = append(l.Files, &LoadedFile{Path: path, AST: res.file, Lines: res.lines})
}

// RegisterFile registers the top level of an already parsed file without
// touching the file system. Includes inside it are still followed on
// disk.
func (l *Loader) RegisterFile(file *ast.File) {
	if l.Ctx.Registry.LoadedFiles[file.Path] {
		return
	}
	l.Ctx.Registry.LoadedFiles[file.Path] = true
	prevFile := l.Ctx.File
	l.Ctx.File = file.Path
	l.walkTopLevel(file.Statements)
	l.Ctx.File = prevFile
	l.Files = append(l.Files, &LoadedFile{Path: file.Path, AST: file})
}

func (l *Loader) walkTopLevel(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Namespace:
			name := ""
			if s.Name != nil {
				name = s.Name.String()
			}
			if s.Body != nil {
				prevNS, prevAliases := l.Ctx.Namespace, l.Ctx.Aliases
				l.Ctx.Namespace = name
				l.Ctx.Aliases = make(map[string]string)
				l.walkTopLevel(s.Body)
				l.Ctx.Namespace, l.Ctx.Aliases = prevNS, prevAliases
			} else {
				l.Ctx.Namespace = name
				l.Ctx.Aliases = make(map[string]string)
			}
		case *ast.Use:
			for _, clause := range s.Uses {
				alias := clause.Alias
				if alias == "" && clause.Name != nil && len(clause.Name.Parts) > 0 {
					alias = clause.Name.Parts[len(clause.Name.Parts)-1]
				}
				if alias != "" && clause.Name != nil {
					l.Ctx.Aliases[strings.ToLower(alias)] = clause.Name.String()
				}
			}
		case *ast.ConstDecl:
			l.registerConstants(s)
		case *ast.FunctionDecl:
			l.registerFunction(s)
		case *ast.ClassDecl:
			l.registerClass(s)
		case *ast.IncludeStmt:
			l.followInclude(s)
		case *ast.Block:
			l.walkTopLevel(s.Body)
		}
	}
}

func (l *Loader) qualify(name string) string {
	if l.Ctx.Namespace == "" {
		return name
	}
	return l.Ctx.Namespace + "\\" + name
}

func (l *Loader) registerConstants(s *ast.ConstDecl) {
	for _, c := range s.Consts {
		if config.ReservedConstants[strings.ToLower(c.Name)] {
			l.Ctx.Report(diagnostics.ErrReservedConstantName, c.Token, c.Name)
			continue
		}
		entry := &symbols.Constant{Name: l.qualify(c.Name), Value: c.Value, File: l.Ctx.File}
		if !l.Ctx.Registry.AddConstant(entry) && !l.Ctx.Registry.SelfCheck {
			l.Ctx.Report(diagnostics.ErrRedeclaredConstant, c.Token, entry.Name)
		}
	}
}

func (l *Loader) registerFunction(s *ast.FunctionDecl) {
	sig := &reflection.FunctionSig{
		Name:      l.qualify(s.Name),
		HasBody:   s.HasBody || s.Body != nil,
		Modifiers: s.Modifiers,
		Node:      s,
		File:      l.Ctx.File,
		Namespace: l.Ctx.Namespace,
		Aliases:   copyAliases(l.Ctx.Aliases),
	}
	if !l.Ctx.Registry.AddFunction(sig) && !l.Ctx.Registry.SelfCheck {
		l.Ctx.Report(diagnostics.ErrRedeclaredFunction, s.Token, sig.Name)
	}
}

func (l *Loader) registerClass(s *ast.ClassDecl) {
	info := reflection.NewClassInfo(l.qualify(s.Name), s.Kind)
	info.Abstract = s.Abstract
	info.Final = s.Final
	info.Node = s
	info.File = l.Ctx.File
	info.Namespace = l.Ctx.Namespace
	info.Aliases = copyAliases(l.Ctx.Aliases)
	if !l.Ctx.Registry.AddClass(info) {
		if !l.Ctx.Registry.SelfCheck {
			l.Ctx.Report(diagnostics.ErrRedeclaredClass, s.Token, info.Name)
		}
		info.Poisoned = true
	}
}

func (l *Loader) followInclude(s *ast.IncludeStmt) {
	target, ok := EvalStaticString(s.Expr, l.Ctx.File)
	if !ok {
		l.Ctx.Report(diagnostics.ErrUnresolvableInclude, s.Token)
		return
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(l.Ctx.File), target)
	}
	canonical, err := utils.CanonicalPath(target)
	if err != nil {
		l.Ctx.Report(diagnostics.ErrIncludedFileMissing, s.Token, target)
		return
	}
	prevNS, prevAliases := l.Ctx.Namespace, l.Ctx.Aliases
	l.Ctx.Namespace = ""
	l.Ctx.Aliases = make(map[string]string)
	l.LoadFile(canonical)
	l.Ctx.Namespace, l.Ctx.Aliases = prevNS, prevAliases
}

// EvalStaticString evaluates an include path expression that is a string
// literal, __FILE__/__DIR__, or a pure concatenation thereof.
func EvalStaticString(expr ast.Expression, currentFile string) (string, bool) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return e.Value, true
	case *ast.MagicConst:
		switch e.Kind {
		case ast.MagicFile:
			return currentFile, true
		case ast.MagicDir:
			return filepath.Dir(currentFile), true
		}
		return "", false
	case *ast.Binary:
		if e.Op != "." {
			return "", false
		}
		left, ok := EvalStaticString(e.Left, currentFile)
		if !ok {
			return "", false
		}
		right, ok := EvalStaticString(e.Right, currentFile)
		if !ok {
			return "", false
		}
		return left + right, true
	}
	return "", false
}

// TotalLines sums the line counts of the analyzed files.
func (l *Loader) TotalLines() int {
	n := 0
	for _, f := range l.Files {
		n += f.Lines
	}
	return n
}

// SortedIgnored returns the ignored paths in stable order for reporting.
func (l *Loader) SortedIgnored() []string {
	out := append([]string{}, l.Ignored...)
	sort.Strings(out)
	return out
}

func copyAliases(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
