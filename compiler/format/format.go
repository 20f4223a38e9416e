package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/lambda/compiler/ast"
)

// Format appends x in fully parenthesized lambda syntax.
// The result parses back to the same tree.
func Format(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Var:
		b = append(b, x.Name)
	case ast.Lambda:
		b = hfmt.Appendf(b, "(L%c.", x.Param)

		b, err = Format(ctx, b, x.Body)
		if err != nil {
			return nil, errors.Wrap(err, "lambda body")
		}

		b = append(b, ')')
	case ast.Call:
		b = append(b, '(')

		b, err = Format(ctx, b, x.Callee)
		if err != nil {
			return nil, errors.Wrap(err, "callee")
		}

		b = append(b, ' ')

		b, err = Format(ctx, b, x.Argument)
		if err != nil {
			return nil, errors.Wrap(err, "argument")
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported node: %T", x)
	}

	return b, nil
}

// Dump appends the tree one node per line, children indented one level deeper.
func Dump(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return dump(ctx, b, x, 0)
}

// DumpTop dumps the expression followed by the trailing argument.
func DumpTop(ctx context.Context, b []byte, t ast.Top) (_ []byte, err error) {
	b, err = dump(ctx, b, t.Expr, 0)
	if err != nil {
		return nil, err
	}

	if t.Arg == nil {
		return app(b, 0, "args none\n"), nil
	}

	return app(b, 0, "args %q\n", *t.Arg), nil
}

func dump(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Var:
		b = app(b, d, "var %c\n", x.Name)
	case ast.Lambda:
		b = app(b, d, "lambda %c\n", x.Param)

		b, err = dump(ctx, b, x.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "lambda body")
		}
	case ast.Call:
		b = app(b, d, "call\n")

		b, err = dump(ctx, b, x.Callee, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "callee")
		}

		b, err = dump(ctx, b, x.Argument, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "argument")
		}
	default:
		return nil, errors.New("unsupported node: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, "  "...)
	}

	b = hfmt.Appendf(b, f, args...)

	return b
}
