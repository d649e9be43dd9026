package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/parser"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
)

// testParser produces a fixed AST per base name; unknown files parse to
// an empty program.
type testParser struct {
	files map[string]func(path string) *ast.File
}

func (p *testParser) Parse(path string, src []byte) (*ast.File, error) {
	if build, ok := p.files[filepath.Base(path)]; ok {
		return build(path), nil
	}
	return &ast.File{Path: path}, nil
}

func withParser(t *testing.T, p parser.Parser) {
	t.Helper()
	prev := parser.Default
	parser.Default = p
	t.Cleanup(func() { parser.Default = prev })
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("<?php\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func undefinedVarFile(path string) *ast.File {
	// print($x);
	return &ast.File{Path: path, Statements: []ast.Statement{
		&ast.ExprStmt{Token: token.At(1), Expr: &ast.FuncCall{
			Token: token.At(1),
			Name:  &ast.Name{Token: token.At(1), Parts: []string{"print"}},
			Args:  []*ast.Arg{{Token: token.At(1), Value: &ast.Variable{Token: token.At(1), Name: "x"}}},
		}},
	}}
}

func TestExitCodeZeroWhenClean(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "ok.php")
	withParser(t, &testParser{files: map[string]func(string) *ast.File{}})
	var out, errOut bytes.Buffer
	code := Run([]string{path}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s, stdout: %s)", code, errOut.String(), out.String())
	}
	if out.Len() != 0 {
		t.Errorf("clean run should print nothing, got %q", out.String())
	}
}

func TestExitCodeOneOnDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.php")
	withParser(t, &testParser{files: map[string]func(string) *ast.File{
		"bad.php": undefinedVarFile,
	}})
	var out, errOut bytes.Buffer
	code := Run([]string{path}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "Undefined variable `$x`") {
		t.Errorf("missing diagnostic in output: %q", out.String())
	}
	if !strings.Contains(out.String(), "line 1:") {
		t.Errorf("missing position header in output: %q", out.String())
	}
}

func TestOutputIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.php")
	b := writeSource(t, dir, "b.php")
	withParser(t, &testParser{files: map[string]func(string) *ast.File{
		"a.php": undefinedVarFile,
		"b.php": undefinedVarFile,
	}})
	run := func() string {
		var out, errOut bytes.Buffer
		Run([]string{a, b}, &out, &errOut)
		return out.String()
	}
	first := run()
	for i := 0; i < 3; i++ {
		if again := run(); again != first {
			t.Fatalf("output differs between runs:\n%q\n%q", first, again)
		}
	}
}

func TestStatisticsOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "ok.php")
	withParser(t, &testParser{files: map[string]func(string) *ast.File{}})
	var out, errOut bytes.Buffer
	code := Run([]string{"--statistics", path}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Analyzed") {
		t.Errorf("statistics header missing: %q", out.String())
	}
	if !strings.Contains(out.String(), "checked: ") {
		t.Errorf("checked file list missing: %q", out.String())
	}
}

func TestUsageErrors(t *testing.T) {
	withParser(t, &testParser{})
	var out, errOut bytes.Buffer
	if code := Run(nil, &out, &errOut); code != 2 {
		t.Errorf("no arguments: exit = %d, want 2", code)
	}
	if code := Run([]string{"--ignore-file-prefix"}, &out, &errOut); code != 2 {
		t.Errorf("missing flag value: exit = %d, want 2", code)
	}
}

func TestNoParserRegistered(t *testing.T) {
	withParser(t, nil)
	var out, errOut bytes.Buffer
	if code := Run([]string{"x.php"}, &out, &errOut); code != 2 {
		t.Errorf("exit = %d, want 2 when no parser is registered", code)
	}
	if !strings.Contains(errOut.String(), "no source parser") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestIgnoreFilePrefixFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.php")
	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	withParser(t, &testParser{files: map[string]func(string) *ast.File{
		"bad.php": undefinedVarFile,
	}})
	var out, errOut bytes.Buffer
	code := Run([]string{"--ignore-file-prefix", canonical, path}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d, want 0 when the only file is ignored (stdout: %s)", code, out.String())
	}
}
