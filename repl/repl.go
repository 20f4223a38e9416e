package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"github.com/peterh/liner"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/lambda/compiler"
	"github.com/slowlang/lambda/compiler/analyze"
	"github.com/slowlang/lambda/compiler/format"
	"github.com/slowlang/lambda/compiler/lex"
	"github.com/slowlang/lambda/compiler/parse"
	"github.com/slowlang/lambda/host"
)

type (
	// State is how a turn ended.
	State int

	Driver struct {
		Env *host.Env
		Out io.Writer

		Verbose bool
	}

	LineReader interface {
		Prompt(prompt string) (string, error)
	}

	historian interface {
		AppendHistory(line string)
	}
)

const (
	Skipped State = iota
	SyntaxFailed
	Translated
	CompileFailed
	RuntimeFailed
	Done
)

const (
	Version = "0.3"
	Prompt  = "$ "
)

func New(env *host.Env, out io.Writer) *Driver {
	return &Driver{
		Env: env,
		Out: out,
	}
}

func Banner(full bool) string {
	b := "Lambda Interpreter v" + Version

	if full {
		b += " (starlark host, Ctrl-D to exit)"
	}

	return b
}

// Run reads lines from r and runs a turn for each until r returns io.EOF.
func (d *Driver) Run(ctx context.Context, r LineReader, prompt string) error {
	h, _ := r.(historian)

	for {
		line, err := r.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}

		st := d.Turn(ctx, line)

		if h != nil && st != Skipped {
			h.AppendHistory(line)
		}
	}
}

// Turn lexes, parses and translates line, then compiles and executes it
// if it has a trailing fragment. Every failure is reported to d.Out.
func (d *Driver) Turn(ctx context.Context, line string) (st State) {
	if strings.TrimSpace(line) == "" {
		return Skipped
	}

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "turn", "line", line)
	defer func() {
		tr.Finish("state", st)
	}()

	defer fmt.Fprintln(d.Out)

	u, err := compiler.Translate(ctx, line, func(e lex.IllegalCharError) {
		fmt.Fprintf(d.Out, "%v\n", e)
	})

	var se *parse.SyntaxError
	if errors.As(err, &se) {
		tr.Printw("syntax error", "detail", se.Detail(), "from", se.PC)

		fmt.Fprintf(d.Out, "%v\n", se)

		return SyntaxFailed
	}
	if err != nil {
		fmt.Fprintf(d.Out, "Error (%v)\n", err)

		return SyntaxFailed
	}

	if !u.Top.HasArg() {
		fmt.Fprintf(d.Out, "%s\n", u.Src)

		if d.Verbose {
			d.verbose(ctx, u, false)
		}

		return Translated
	}

	unit, err := d.Env.Compile(ctx, string(u.Src))
	if err != nil {
		fmt.Fprintf(d.Out, "Code (%s) did not compile\n", u.Src)

		return CompileFailed
	}

	if d.Verbose {
		d.verbose(ctx, u, true)
	}

	vals, err := d.Env.Exec(ctx, unit)

	for _, v := range vals {
		fmt.Fprintf(d.Out, "%v\n", v)
	}

	if err != nil {
		fmt.Fprintf(d.Out, "Runtime error (%v)\n", err)

		if d.Verbose {
			var re *host.RuntimeError
			if errors.As(err, &re) {
				fmt.Fprintf(d.Out, "%s\n", re.Backtrace())
			}
		}

		return RuntimeFailed
	}

	return Done
}

func (d *Driver) verbose(ctx context.Context, u compiler.Unit, src bool) {
	b, err := format.Format(ctx, nil, u.Top.Expr)
	if err == nil {
		b = append(b, '\n')
		b, err = format.DumpTop(ctx, b, u.Top)
	}
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("dump ast", "err", err)
		return
	}

	free, err := analyze.FreeVars(ctx, u.Top.Expr)
	if err == nil && free != 0 {
		b = hfmt.Appendf(b, "free %v\n", free)
	}

	if src {
		b = append(b, u.Src...)
		b = append(b, '\n')
	}

	_, err = d.Out.Write(b)
	if err != nil {
		tlog.SpanFromContext(ctx).Printw("write verbose dump", "err", err)
	}
}

func (s State) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case SyntaxFailed:
		return "syntax_failed"
	case Translated:
		return "translated"
	case CompileFailed:
		return "compile_failed"
	case RuntimeFailed:
		return "runtime_failed"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
