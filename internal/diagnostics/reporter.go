package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/utils"
)

// Reporter prints collected diagnostics in the fixed block format:
//
//	`<path>` line <N>:
//	<message>
type Reporter struct {
	Out   io.Writer
	Cwd   string
	Color bool
}

// NewReporter builds a reporter for w. Color is enabled only when w is
// the process stdout attached to a terminal.
func NewReporter(w io.Writer, cwd string) *Reporter {
	useColor := false
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{Out: w, Cwd: cwd, Color: useColor}
}

// Print writes every diagnostic of the sink in encounter order.
func (r *Reporter) Print(sink *Sink) {
	header := color.New(color.FgHiWhite, color.Bold)
	for _, d := range sink.Diagnostics {
		path := utils.DisplayPath(d.File, r.Cwd)
		if r.Color {
			header.Fprintf(r.Out, "`%s` line %d:\n", path, d.Line)
		} else {
			fmt.Fprintf(r.Out, "`%s` line %d:\n", path, d.Line)
		}
		fmt.Fprintf(r.Out, "%s\n", d.Message)
	}
}
