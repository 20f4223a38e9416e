package gen

import (
	"context"
	"fmt"
	"reflect"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/lambda/compiler/ast"
)

type (
	UnsupportedNodeError struct{ T ast.Node }
)

// Top appends the expression as a self-contained Starlark expression
// followed by the trailing fragment, if any, verbatim.
func Top(ctx context.Context, b []byte, t ast.Top) (_ []byte, err error) {
	b, err = Expr(ctx, b, t.Expr)
	if err != nil {
		return nil, err
	}

	if t.Arg != nil {
		b = append(b, *t.Arg...)
	}

	return b, nil
}

// Expr appends x so it composes as an operand of anything appended after it.
// Variables and lambdas already do, calls are parenthesized.
func Expr(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	if _, ok := x.(ast.Call); !ok {
		return Generate(ctx, b, x)
	}

	b = append(b, '(')

	b, err = Generate(ctx, b, x)
	if err != nil {
		return nil, err
	}

	return append(b, ')'), nil
}

// Generate appends x as nested single-parameter Starlark lambdas.
func Generate(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Var:
		b = append(b, x.Name)
	case ast.Lambda:
		b = hfmt.Appendf(b, "(lambda %c: (", x.Param)

		b, err = Generate(ctx, b, x.Body)
		if err != nil {
			return nil, errors.Wrap(err, "lambda %c", x.Param)
		}

		b = append(b, "))"...)
	case ast.Call:
		b, err = Generate(ctx, b, x.Callee)
		if err != nil {
			return nil, errors.Wrap(err, "callee")
		}

		b = append(b, '(')

		b, err = Generate(ctx, b, x.Argument)
		if err != nil {
			return nil, errors.Wrap(err, "argument")
		}

		b = append(b, ')')
	default:
		return nil, NewUnsupportedNode(x)
	}

	return b, nil
}

func NewUnsupportedNode(x ast.Node) UnsupportedNodeError {
	return UnsupportedNodeError{
		T: x,
	}
}

func (e UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.T))
}
