package parse

import (
	"context"
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/lambda/compiler/ast"
	"github.com/slowlang/lambda/compiler/grammar"
	"github.com/slowlang/lambda/compiler/lex"
)

type (
	State struct {
		Table *grammar.Table

		toks []lex.Token
		i    int

		err error // first error, sticky
	}

	// SyntaxError is reported as a bare "Syntax error".
	// Position and expectation are kept for traces.
	SyntaxError struct {
		Tok      lex.Token
		Expected string
		PC       loc.PC
	}
)

func ParseLine(ctx context.Context, line string, onErr lex.ErrorFunc) (ast.Top, error) {
	toks := lex.Lex(ctx, line, onErr)

	return Parse(ctx, toks)
}

func Parse(ctx context.Context, toks []lex.Token) (ast.Top, error) {
	return New(toks).Parse(ctx)
}

func New(toks []lex.Token) *State {
	return &State{
		Table: grammar.Default,
		toks:  toks,
	}
}

// Parse derives Top := Expr Argument from the tokens.
func (s *State) Parse(ctx context.Context) (top ast.Top, err error) {
	if s.err != nil {
		return top, s.err
	}

	x, err := s.expr(ctx, "")
	if err != nil {
		return top, err
	}

	top.Expr = x

	if t := s.peek(); t.Kind == lex.Arg {
		a := t.Text
		top.Arg = &a

		s.i++
	}

	if t := s.peek(); t.Kind != lex.End {
		return ast.Top{}, s.fail(t, "end of line")
	}

	tlog.V("parse").Printw("top", "expr", top.Expr, "has_arg", top.HasArg())

	return top, nil
}

// expr parses an expression while the rule with precedence symbol rule is pending.
// Application is the only rule continuing a complete expression, so every
// expression-starting lookahead is a shift/reduce conflict resolved by the table.
func (s *State) expr(ctx context.Context, rule string) (x ast.Node, err error) {
	x, err = s.primary(ctx)
	if err != nil {
		return nil, err
	}

	for {
		t := s.peek()
		if !t.Kind.StartsExpr() {
			return x, nil
		}

		act := s.Table.Resolve(rule, t.Kind.String())

		tlog.V("parse").Printw("conflict", "rule", rule, "look", t, "action", act)

		switch act {
		case grammar.Reduce:
			return x, nil
		case grammar.Error:
			return nil, s.fail(t, "non-associative "+rule)
		}

		arg, err := s.expr(ctx, grammar.Application)
		if err != nil {
			return nil, err
		}

		x = ast.Call{
			Base: ast.Base{
				Pos: x.Span().Pos,
				End: arg.Span().End,
			},
			Callee:   x,
			Argument: arg,
		}

		tlog.V("parse").Printw("reduce", "rule", "application", "node", x)
	}
}

func (s *State) primary(ctx context.Context) (x ast.Node, err error) {
	t := s.next()

	switch t.Kind {
	case lex.Var:
		x = ast.Var{
			Base: ast.Base{Pos: t.Pos, End: t.End},
			Name: t.Text[0],
		}

		tlog.V("parse").Printw("reduce", "rule", "var", "node", x)

		return x, nil
	case lex.Lambda:
		p := s.next()
		if p.Kind != lex.Var {
			return nil, s.fail(p, "lambda parameter")
		}

		if d := s.next(); d.Kind != lex.Dot {
			return nil, s.fail(d, "'.'")
		}

		body, err := s.expr(ctx, ".")
		if err != nil {
			return nil, err
		}

		x = ast.Lambda{
			Base: ast.Base{
				Pos: t.Pos,
				End: body.Span().End,
			},
			Param: p.Text[0],
			Body:  body,
		}

		tlog.V("parse").Printw("reduce", "rule", "lambda", "node", x)

		return x, nil
	case lex.LParen:
		x, err = s.expr(ctx, "")
		if err != nil {
			return nil, err
		}

		if r := s.next(); r.Kind != lex.RParen {
			return nil, s.fail(r, "')'")
		}

		return x, nil
	default:
		return nil, s.fail(t, "expression")
	}
}

func (s *State) peek() lex.Token {
	if s.i < len(s.toks) {
		return s.toks[s.i]
	}

	return s.end()
}

func (s *State) next() (t lex.Token) {
	t = s.peek()

	if s.i < len(s.toks) {
		s.i++
	}

	return t
}

func (s *State) end() lex.Token {
	p := 0
	if l := len(s.toks); l != 0 {
		p = s.toks[l-1].End
	}

	return lex.Token{Kind: lex.End, Pos: p, End: p}
}

func (s *State) fail(t lex.Token, exp string) error {
	if s.err != nil {
		return s.err
	}

	e := &SyntaxError{
		Tok:      t,
		Expected: exp,
		PC:       loc.Caller(1),
	}

	tlog.V("parse").Printw("syntax error", "tok", t, "expected", exp, "from", e.PC)

	s.err = e

	return e
}

func (e *SyntaxError) Error() string {
	return "Syntax error"
}

// Detail describes the error position.
func (e *SyntaxError) Detail() string {
	return fmt.Sprintf("%v expected at %d, got %v", e.Expected, e.Tok.Pos, e.Tok.Kind)
}
