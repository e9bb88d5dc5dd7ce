package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type Printer struct {
	out   io.Writer
	json  bool
	quiet bool
}

type Option func(*Printer)

func WithJSON(enabled bool) Option {
	return func(p *Printer) { p.json = enabled }
}

func WithQuiet(enabled bool) Option {
	return func(p *Printer) { p.quiet = enabled }
}

func WithOutput(out io.Writer) Option {
	return func(p *Printer) { p.out = out }
}

func New(opts ...Option) *Printer {
	p := &Printer{out: os.Stdout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) JSONMode() bool {
	return p.json
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...interface{}) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", color.CyanString("→"), fmt.Sprintf(format, args...))
}

func (p *Printer) Field(key, value string) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, "  %s: %s\n", color.HiBlackString(key), value)
}

// JSON prints v as indented JSON, regardless of quiet mode.
func (p *Printer) JSON(v interface{}) {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
