package analyze

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/lambda/compiler/ast"
)

type (
	// Vars is a set of variable names a-z.
	Vars uint32

	UnsupportedASTNodeError struct{ T ast.Node }
)

// FreeVars returns the variables of x not bound by an enclosing lambda.
// These are the names the host environment or trailing fragment must supply.
func FreeVars(ctx context.Context, x ast.Node) (Vars, error) {
	return free(ctx, x, 0)
}

func free(ctx context.Context, x ast.Node, bound Vars) (_ Vars, err error) {
	switch x := x.(type) {
	case ast.Var:
		if bound.Has(x.Name) {
			return 0, nil
		}

		return NewVars(x.Name), nil
	case ast.Lambda:
		v, err := free(ctx, x.Body, bound|NewVars(x.Param))
		if err != nil {
			return 0, errors.Wrap(err, "lambda body")
		}

		return v, nil
	case ast.Call:
		l, err := free(ctx, x.Callee, bound)
		if err != nil {
			return 0, errors.Wrap(err, "callee")
		}

		r, err := free(ctx, x.Argument, bound)
		if err != nil {
			return 0, errors.Wrap(err, "argument")
		}

		return l | r, nil
	default:
		return 0, NewUnsupportedASTNode(x)
	}
}

func NewVars(names ...byte) (v Vars) {
	for _, c := range names {
		if c < 'a' || c > 'z' {
			panic("bad variable name")
		}

		v |= 1 << (c - 'a')
	}

	return
}

func (v Vars) Has(c byte) bool {
	return c >= 'a' && c <= 'z' && v&(1<<(c-'a')) != 0
}

func (v Vars) Names() (r []string) {
	for c := byte('a'); c <= 'z'; c++ {
		if v.Has(c) {
			r = append(r, string(c))
		}
	}

	return r
}

func (v Vars) String() string {
	return strings.Join(v.Names(), " ")
}

func (v Vars) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, v.String())
}

func NewUnsupportedASTNode(x ast.Node) UnsupportedASTNodeError {
	return UnsupportedASTNodeError{
		T: x,
	}
}

func (e UnsupportedASTNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.T))
}
