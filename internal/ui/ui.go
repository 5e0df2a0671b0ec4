// Package ui provides stderr-based UI output for bundlegen.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papapumpkin/bundlegen/internal/aggregate"
	"github.com/papapumpkin/bundlegen/internal/ansi"
	"github.com/papapumpkin/bundlegen/internal/rjs"
)

// Printer writes human-readable progress and summaries.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a Printer writing to stderr, colored unless NO_COLOR is set.
func New() *Printer {
	return &Printer{w: os.Stderr, color: ansi.ColorEnabled()}
}

// NewWriter returns a Printer writing uncolored output to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if !p.color {
		text = ansi.Strip(text)
	}
	io.WriteString(p.w, text)
}

func (p *Printer) println(text string) {
	p.printf("%s\n", text)
}

func (p *Printer) Banner() {
	p.println(ansi.Bold+ansi.Cyan+"bundlegen"+ansi.Reset+ansi.Dim+" r.js module and bundle config"+ansi.Reset)
}

func (p *Printer) Info(msg string) {
	p.printf(ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

func (p *Printer) Success(msg string) {
	p.printf(ansi.Green+ansi.Bold+"✓ "+ansi.Reset+"%s\n", msg)
}

func (p *Printer) Error(msg string) {
	p.printf(ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

func (p *Printer) FileWritten(path string) {
	p.printf(ansi.Green+"  wrote "+ansi.Reset+"%s\n", path)
}

// Modules lists generated modules with their include and exclude counts.
func (p *Printer) Modules(modules []rjs.Module) {
	p.printf("\n"+ansi.Bold+ansi.Cyan+"modules (%d)"+ansi.Reset+"\n", len(modules))
	for _, m := range modules {
		name := m.Name
		if name == "" {
			name = ansi.Yellow + "(unnamed) " + m.Path + ansi.Reset
		}
		p.printf("  %s "+ansi.Dim+"include %d, exclude %d"+ansi.Reset+"\n",
			name, len(m.Include), len(m.Exclude))
	}
}

// Bundles lists every bundle and its members in name order.
func (p *Printer) Bundles(bundles rjs.Bundles) {
	p.printf("\n"+ansi.Bold+ansi.Cyan+"bundles (%d)"+ansi.Reset+"\n", len(bundles))
	for _, name := range bundles.Names() {
		members := bundles[name]
		p.printf("  "+ansi.Bold+"%s"+ansi.Reset+ansi.Dim+" (%d)"+ansi.Reset+"\n", name, len(members))
		for _, id := range members {
			p.printf("    %s\n", id)
		}
	}
}

// LoadOrder prints bundles in load order, each followed by the bundles it
// waits for.
func (p *Printer) LoadOrder(order []string, deps func(string) []string) {
	p.println("\n"+ansi.Bold+ansi.Cyan+"load order"+ansi.Reset)
	for i, name := range order {
		line := fmt.Sprintf("  %2d. %s", i+1, name)
		if after := deps(name); len(after) > 0 {
			line += ansi.Dim + " ← " + strings.Join(after, ", ") + ansi.Reset
		}
		p.println(line)
	}
}

// Aggregation summarizes an aggregation pass.
func (p *Printer) Aggregation(report aggregate.Report) {
	p.printf("\n"+ansi.Bold+ansi.Cyan+"aggregation files (%d/%d written)"+ansi.Reset+"\n",
		report.Written(), len(report.Folders))
	for _, f := range report.Folders {
		switch {
		case !f.Written:
			p.printf("  "+ansi.Dim+"- %s (no scripts)"+ansi.Reset+"\n", f.Name)
		case f.Kept:
			p.printf("  "+ansi.Green+"✓"+ansi.Reset+" %s "+ansi.Dim+"%d script(s), custom includes kept"+ansi.Reset+"\n", f.Name, f.Scripts)
		default:
			p.printf("  "+ansi.Green+"✓"+ansi.Reset+" %s "+ansi.Dim+"%d script(s)"+ansi.Reset+"\n", f.Name, f.Scripts)
		}
	}
}

// Dependencies prints the external dependencies declared by file.
func (p *Printer) Dependencies(file string, deps []string) {
	p.printf(ansi.Bold+"%s"+ansi.Reset+ansi.Dim+" (%d)"+ansi.Reset+"\n", file, len(deps))
	for _, d := range deps {
		p.printf("  %s\n", d)
	}
}
