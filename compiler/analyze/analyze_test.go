package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/lambda/compiler/ast"
	"github.com/slowlang/lambda/compiler/parse"
)

func freeOf(t *testing.T, line string) Vars {
	t.Helper()

	ctx := context.Background()

	top, err := parse.ParseLine(ctx, line, nil)
	require.NoError(t, err)

	v, err := FreeVars(ctx, top.Expr)
	require.NoError(t, err)

	return v
}

func TestFreeVars(t *testing.T) {
	assert.Equal(t, Vars(0), freeOf(t, "Lx.x"))
	assert.Equal(t, NewVars('x'), freeOf(t, "x"))
	assert.Equal(t, NewVars('f', 'y'), freeOf(t, "Lx.f x y"))
	assert.Equal(t, NewVars('x'), freeOf(t, "(Lx.x) x"))
	assert.Equal(t, Vars(0), freeOf(t, "Lf.(Lx.f x x)(Lx.Lv.(f x x) v)"))
}

func TestVarsString(t *testing.T) {
	v := NewVars('z', 'a', 'm')

	assert.True(t, v.Has('m'))
	assert.False(t, v.Has('b'))
	assert.False(t, v.Has('L'))
	assert.Equal(t, []string{"a", "m", "z"}, v.Names())
	assert.Equal(t, "a m z", v.String())
	assert.Equal(t, "", Vars(0).String())
}

func TestUnsupported(t *testing.T) {
	_, err := FreeVars(context.Background(), ast.Call{Callee: ast.Var{Name: 'f'}})

	var u UnsupportedASTNodeError
	assert.ErrorAs(t, err, &u)
}
