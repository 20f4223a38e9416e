package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/lambda/compiler"
	"github.com/slowlang/lambda/compiler/format"
	"github.com/slowlang/lambda/compiler/lex"
	"github.com/slowlang/lambda/compiler/parse"
	"github.com/slowlang/lambda/host"
	"github.com/slowlang/lambda/repl"
)

const historyFile = ".lambda_history"

func main() {
	replCmd := &cli.Command{
		Name:        "repl",
		Description: "run the interactive translator (default)",
		Action:      replAct,
	}

	translateCmd := &cli.Command{
		Name:        "translate",
		Description: "translate lambda expressions to starlark",
		Action:      translateAct,
		Args:        cli.Args{},
	}

	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print the token stream of expressions",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "print the syntax tree of expressions",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "lambda",
		Description: "lambda is an interactive lambda calculus to starlark translator",
		Before:      before,
		Action:      replAct,
		Flags: []*cli.Flag{
			cli.NewFlag("verbose,v", false, "verbose expression evaluation"),
			cli.NewFlag("logger,l", false, "log parsing process"),
			cli.NewFlag("verbosity", "", "tlog verbosity topics"),
			cli.NewFlag("history", defaultHistory(), "history file, empty to disable"),
			cli.NewFlag("banner", false, "print full banner"),
			cli.HelpFlag,
			cli.FlagfileFlag,
		},
		Commands: []*cli.Command{
			replCmd,
			translateCmd,
			tokensCmd,
			parseCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	v := c.String("verbosity")

	if c.Bool("logger") {
		if v != "" {
			v += ","
		}

		v += "lex,parse"
	}

	if v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func replAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	fmt.Println(repl.Banner(c.Bool("banner")))

	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)

	hist := c.String("history")

	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}

		defer func() {
			f, e := os.Create(hist)
			if e != nil {
				tlog.Printw("save history", "file", hist, "err", e)
				return
			}

			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	d := repl.New(host.New(os.Stdout), os.Stdout)
	d.Verbose = c.Bool("verbose")

	err = d.Run(ctx, ln, repl.Prompt)
	if err != nil {
		return errors.Wrap(err, "repl")
	}

	fmt.Println()

	return nil
}

func translateAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		u, err := compiler.Translate(ctx, a, printLexError)
		if err != nil {
			return errors.Wrap(err, "translate %q", a)
		}

		fmt.Printf("%s\n", u.Src)
	}

	return nil
}

func tokensAct(c *cli.Command) (err error) {
	ctx := context.Background()

	for _, a := range c.Args {
		for _, t := range lex.Lex(ctx, a, printLexError) {
			fmt.Printf("%v\n", t)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		top, err := parse.ParseLine(ctx, a, printLexError)
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}

		b, err := format.DumpTop(ctx, nil, top)
		if err != nil {
			return errors.Wrap(err, "dump %q", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func printLexError(e lex.IllegalCharError) {
	fmt.Printf("%v\n", e)
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, historyFile)
}
