package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/lambda/compiler/ast"
	"github.com/slowlang/lambda/compiler/gen"
	"github.com/slowlang/lambda/compiler/lex"
	"github.com/slowlang/lambda/compiler/parse"
)

type (
	// Unit is one translated line.
	Unit struct {
		Top ast.Top
		Src []byte // generated expression followed by the fragment
	}
)

// Translate lexes, parses and generates Starlark source for line.
// Lexical errors go to onErr and do not stop translation.
// Syntax errors are returned as *parse.SyntaxError.
func Translate(ctx context.Context, line string, onErr lex.ErrorFunc) (u Unit, err error) {
	toks := lex.Lex(ctx, line, onErr)

	u.Top, err = parse.Parse(ctx, toks)
	if err != nil {
		return u, errors.Wrap(err, "parse")
	}

	u.Src, err = gen.Top(ctx, nil, u.Top)
	if err != nil {
		return u, errors.Wrap(err, "generate")
	}

	if tlog.If("dump") {
		tlog.Printw("abstract syntax tree", "expr", u.Top.Expr, "has_arg", u.Top.HasArg())
	}

	tlog.SpanFromContext(ctx).Printw("translated", "tokens", len(toks), "src", u.Src)

	return u, nil
}
