package host

import (
	"context"
	"fmt"
	"io"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Env is the persistent Starlark environment shared by all turns.
	Env struct {
		Opts    *syntax.FileOptions
		Globals starlark.StringDict

		// MaxSteps bounds one Exec call. Runaway recursion is cancelled
		// long before it exhausts the goroutine stack.
		MaxSteps uint64

		out io.Writer
	}

	// Unit is compiled source ready to run in Env.
	// It's either a sole expression or a chunk of statements.
	Unit struct {
		Src string

		fn   *starlark.Function
		file *syntax.File
	}

	CompileError struct {
		Src string
		Err error
	}

	RuntimeError struct {
		Err error
	}
)

const Filename = "<lambda>"

const DefaultMaxSteps = 200_000

func New(out io.Writer) *Env {
	return &Env{
		Opts: &syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
			Recursion:       true,
		},
		Globals:  starlark.StringDict{},
		MaxSteps: DefaultMaxSteps,
		out:      out,
	}
}

func (e *Env) Compile(ctx context.Context, src string) (u *Unit, err error) {
	f, err := e.Opts.Parse(Filename, src, 0)
	if err != nil {
		return nil, e.compileError(ctx, src, err)
	}

	u = &Unit{Src: src}

	if x := soleExpr(f); x != nil {
		u.fn, err = starlark.ExprFuncOptions(e.Opts, Filename, src, e.Globals)
		if err != nil {
			return nil, e.compileError(ctx, src, err)
		}

		return u, nil
	}

	// resolving annotates the tree, so check a copy and keep f for execution
	check, err := e.Opts.Parse(Filename, src, 0)
	if err != nil {
		return nil, e.compileError(ctx, src, err)
	}

	var predeclared starlark.StringDict

	err = resolve.REPLChunk(check, e.Globals.Has, predeclared.Has, starlark.Universe.Has)
	if err != nil {
		return nil, e.compileError(ctx, src, err)
	}

	u.file = f

	return u, nil
}

// Exec runs u on a fresh thread limited to e.MaxSteps steps.
// It returns the non-None values of its expression statements in order.
// Assignments of statement chunks bind globals into the environment.
func (e *Env) Exec(ctx context.Context, u *Unit) (vals []starlark.Value, err error) {
	th := e.thread()

	if u.fn != nil {
		v, err := starlark.Call(th, u.fn, nil, nil)
		if err != nil {
			return nil, e.runtimeError(ctx, u, err)
		}

		return appendValue(vals, v), nil
	}

	for _, st := range u.file.Stmts {
		if x, ok := st.(*syntax.ExprStmt); ok {
			v, err := starlark.EvalExprOptions(e.Opts, th, x.X, e.Globals)
			if err != nil {
				return vals, e.runtimeError(ctx, u, err)
			}

			vals = appendValue(vals, v)

			continue
		}

		f := &syntax.File{
			Path:    u.file.Path,
			Stmts:   []syntax.Stmt{st},
			Options: u.file.Options,
		}

		err = starlark.ExecREPLChunk(f, th, e.Globals)
		if err != nil {
			return vals, e.runtimeError(ctx, u, err)
		}
	}

	tlog.V("host").Printw("executed", "src", u.Src, "values", len(vals), "steps", th.ExecutionSteps(), "globals", len(e.Globals))

	return vals, nil
}

func (e *Env) thread() *starlark.Thread {
	out := e.out

	th := &starlark.Thread{
		Name: "lambda",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(out, msg)
		},
	}

	if e.MaxSteps != 0 {
		th.SetMaxExecutionSteps(e.MaxSteps)
	}

	return th
}

func (e *Env) runtimeError(ctx context.Context, u *Unit, err error) error {
	tlog.SpanFromContext(ctx).Printw("runtime error", "src", u.Src, "err", err)

	return &RuntimeError{Err: err}
}

func appendValue(vals []starlark.Value, v starlark.Value) []starlark.Value {
	if v == nil || v == starlark.None {
		return vals
	}

	return append(vals, v)
}

func (e *Env) compileError(ctx context.Context, src string, err error) error {
	tlog.SpanFromContext(ctx).Printw("compile error", "src", src, "err", err)

	return &CompileError{
		Src: src,
		Err: err,
	}
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) != 1 {
		return nil
	}

	if s, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
		return s.X
	}

	return nil
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("code (%s) did not compile: %v", e.Src, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (e *RuntimeError) Error() string {
	return e.Err.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Backtrace returns the Starlark call stack of the error if there is one.
func (e *RuntimeError) Backtrace() string {
	var ee *starlark.EvalError
	if errors.As(e.Err, &ee) {
		return ee.Backtrace()
	}

	return e.Err.Error()
}
