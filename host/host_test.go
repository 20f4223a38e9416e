package host

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

const factorial = `(lambda f:(lambda n:1 if n == 0 else n * f(n-1)))`

func run(t *testing.T, e *Env, src string) []string {
	t.Helper()

	ctx := context.Background()

	u, err := e.Compile(ctx, src)
	require.NoError(t, err, "src: %s", src)

	vals, err := e.Exec(ctx, u)
	require.NoError(t, err, "src: %s", src)

	return strs(vals)
}

func strs(vals []starlark.Value) (r []string) {
	for _, v := range vals {
		r = append(r, v.String())
	}

	return r
}

func TestIdentity(t *testing.T) {
	e := New(new(bytes.Buffer))

	assert.Equal(t, []string{"5"}, run(t, e, "(lambda x: (x))(5)"))
}

func TestZCombinatorFactorial(t *testing.T) {
	e := New(new(bytes.Buffer))

	z := "(lambda f: ((lambda x: (f(x(x))))((lambda x: ((lambda v: (f(x(x))(v))))))))"

	assert.Equal(t, []string{"120"}, run(t, e, z+factorial+"(5)"))
}

func TestReturnsFunction(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	u, err := e.Compile(ctx, "(lambda f: ((lambda x: ((lambda v: (f(x(x))(v)))))))"+factorial+"(5)")
	require.NoError(t, err)

	vals, err := e.Exec(ctx, u)
	require.NoError(t, err)
	require.Len(t, vals, 1)

	assert.Equal(t, "function", vals[0].Type())
}

func TestCompileError(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	for _, src := range []string{
		"(lambda x: (x)))(",
		"(lambda x: (x))(",
		"(lambda x: (x))(5); k ==",
		"(lambda x: (x))(nope)",
	} {
		_, err := e.Compile(ctx, src)

		var ce *CompileError
		require.True(t, errors.As(err, &ce), "src: %s", src)
		assert.Equal(t, src, ce.Src)
	}
}

func TestRuntimeError(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	u, err := e.Compile(ctx, "(lambda x: (x))(1//0)")
	require.NoError(t, err)

	_, err = e.Exec(ctx, u)

	var re *RuntimeError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Error(), "division by zero")
	assert.Contains(t, re.Backtrace(), "division by zero")
}

func TestRunawayRecursion(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	u, err := e.Compile(ctx, "(lambda x: (x(x)))(lambda y: y(y))")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = e.Exec(ctx, u)

		var re *RuntimeError
		require.True(t, errors.As(err, &re), "run %d", i)
		assert.Contains(t, re.Error(), "too many steps")
	}

	// steps are counted per Exec, not per Env
	assert.Equal(t, []string{"120"}, run(t, e,
		"(lambda f: ((lambda x: (f(x(x))))((lambda x: ((lambda v: (f(x(x))(v))))))))"+factorial+"(5)"))
}

func TestMaxSteps(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	z := "(lambda f: ((lambda x: (f(x(x))))((lambda x: ((lambda v: (f(x(x))(v))))))))"

	u, err := e.Compile(ctx, z+factorial+"(5)")
	require.NoError(t, err)

	e.MaxSteps = 10

	_, err = e.Exec(ctx, u)
	assert.ErrorContains(t, err, "too many steps")

	e.MaxSteps = 0

	vals, err := e.Exec(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"120"}, strs(vals))
}

func TestPersistentGlobals(t *testing.T) {
	e := New(new(bytes.Buffer))

	assert.Equal(t, []string{"1"}, run(t, e, "(lambda x: (x))(1); k = 7"))
	assert.Equal(t, []string{"7"}, run(t, e, "(lambda x: (x))(k)"))

	run(t, e, "(lambda x: (x))(1); k = k + 1")
	assert.Equal(t, []string{"8"}, run(t, e, "(lambda x: (x))(k)"))
}

func TestChunkEchoesExpressions(t *testing.T) {
	e := New(new(bytes.Buffer))

	assert.Equal(t, []string{"2", "9"}, run(t, e, "(lambda x: (x))(2); m = 3; m * m; None"))
}

func TestChunkRuntimeErrorKeepsEarlierValues(t *testing.T) {
	e := New(new(bytes.Buffer))
	ctx := context.Background()

	u, err := e.Compile(ctx, "(lambda x: (x))(4); 1//0")
	require.NoError(t, err)

	vals, err := e.Exec(ctx, u)
	assert.Equal(t, []string{"4"}, strs(vals))

	var re *RuntimeError
	assert.True(t, errors.As(err, &re))
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer

	e := New(&out)

	assert.Empty(t, run(t, e, `(lambda x: (x))(print("hi"))`))
	assert.Equal(t, "hi\n", out.String())
}
