// Package cli is the command-line front-end: argument parsing, file
// discovery, statistics, exit code. The analysis core is wired together
// here and nowhere else.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/analyzer"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/config"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/loader"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/parser"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/utils"
)

// EvalHook, when set by the embedding program, is invoked for every
// --eval argument before analysis proper. The core itself does not
// execute host bootstraps.
var EvalHook func(path string) error

type options struct {
	paths         []string
	ignorePrefixes []string
	evalFiles     []string
	configPath    string
	statistics    bool
	selfCheck     bool
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: phpstc [options] <file>...")
	fmt.Fprintln(w, "  --ignore-file-prefix <prefix>   exclude loaded files under prefix")
	fmt.Fprintln(w, "  --eval <file>                   run a host bootstrap before analysis")
	fmt.Fprintln(w, "  --config <file>                 configuration file (default phpstc.yml)")
	fmt.Fprintln(w, "  --statistics                    print line count and file lists")
	fmt.Fprintln(w, "  --self-check                    suppress redeclaration diagnostics")
}

func parseArgs(args []string, stderr io.Writer) (*options, bool) {
	opts := &options{}
	needValue := func(i int, flag string) (string, bool) {
		if i+1 >= len(args) {
			fmt.Fprintf(stderr, "missing value for %s\n", flag)
			return "", false
		}
		return args[i+1], true
	}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--ignore-file-prefix":
			v, ok := needValue(i, arg)
			if !ok {
				return nil, false
			}
			opts.ignorePrefixes = append(opts.ignorePrefixes, v)
			i++
		case "--eval":
			v, ok := needValue(i, arg)
			if !ok {
				return nil, false
			}
			opts.evalFiles = append(opts.evalFiles, v)
			i++
		case "--config":
			v, ok := needValue(i, arg)
			if !ok {
				return nil, false
			}
			opts.configPath = v
			i++
		case "--statistics":
			opts.statistics = true
		case "--self-check":
			opts.selfCheck = true
		case "--help", "-h":
			usage(stderr)
			return nil, false
		default:
			opts.paths = append(opts.paths, arg)
		}
	}
	if len(opts.paths) == 0 {
		usage(stderr)
		return nil, false
	}
	return opts, true
}

// Run executes the checker. It returns the process exit code: 0 when no
// diagnostic was emitted, 1 otherwise, 2 on usage or setup failure.
func Run(args []string, stdout, stderr io.Writer) int {
	opts, ok := parseArgs(args, stderr)
	if !ok {
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if parser.Default == nil {
		fmt.Fprintln(stderr, "no source parser is registered")
		return 2
	}

	for _, path := range opts.evalFiles {
		if EvalHook == nil {
			fmt.Fprintf(stderr, "--eval %s ignored: no host bootstrap available\n", path)
			continue
		}
		if err := EvalHook(path); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	registry := symbols.NewRegistry()
	registry.SelfCheck = cfg.SelfCheck
	env := reflection.NewEnv(registry)
	sink := &diagnostics.Sink{}
	ctx := symbols.NewContext(registry, env, sink)

	ld := loader.New(ctx, parser.Default, cfg)
	ld.LoadAll(opts.paths)

	files := make([]*ast.File, 0, len(ld.Files))
	for _, f := range ld.Files {
		files = append(files, f.AST)
	}
	analyzer.New(cfg).Run(ctx, files)

	cwd, _ := os.Getwd()
	reporter := diagnostics.NewReporter(stdout, cwd)
	if cfg.Color != nil {
		reporter.Color = *cfg.Color
	}
	reporter.Print(sink)

	if opts.statistics {
		printStatistics(stdout, cwd, ld)
	}

	if sink.HasErrors() {
		return 1
	}
	return 0
}

func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	optional := false
	if path == "" {
		path = config.DefaultFileName
		optional = true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}
	cfg.IgnoreFilePrefixes = append(cfg.IgnoreFilePrefixes, opts.ignorePrefixes...)
	if opts.selfCheck {
		cfg.SelfCheck = true
	}
	return cfg, nil
}

func printStatistics(w io.Writer, cwd string, ld *loader.Loader) {
	fmt.Fprintf(w, "Analyzed %d lines in %d files.\n", ld.TotalLines(), len(ld.Files))
	checked := make([]string, 0, len(ld.Files))
	for _, f := range ld.Files {
		checked = append(checked, utils.DisplayPath(f.Path, cwd))
	}
	sort.Strings(checked)
	for _, path := range checked {
		fmt.Fprintf(w, "checked: %s\n", path)
	}
	for _, path := range ld.SortedIgnored() {
		fmt.Fprintf(w, "ignored: %s\n", utils.DisplayPath(path, cwd))
	}
}
