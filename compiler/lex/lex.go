package lex

import (
	"context"
	"fmt"
	"unicode/utf8"

	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Token struct {
		Kind Kind
		Pos  int
		End  int
		Text string // Var letter or Arg fragment
	}

	IllegalCharError struct {
		Char rune
		Pos  int
		Rest string
	}

	// ErrorFunc receives lexical errors. Lexing goes on after it returns.
	ErrorFunc func(IllegalCharError)

	Spaces uint64
)

const (
	End Kind = iota
	Lambda
	Var
	Arg
	Dot
	LParen
	RParen
)

var SpaceTab = NewSpaces(' ', '\t')

var kindNames = []string{
	End:    "END",
	Lambda: "LAMBDA",
	Var:    "VAR",
	Arg:    "ARG",
	Dot:    ".",
	LParen: "(",
	RParen: ")",
}

// Lex splits line into tokens. The result always ends with End.
func Lex(ctx context.Context, line string, onErr ErrorFunc) (toks []Token) {
	for i := 0; ; {
		i = SpaceTab.Skip(line, i)

		if i == len(line) {
			toks = append(toks, Token{Kind: End, Pos: i, End: i})

			return toks
		}

		t, end, err := token(line, i)
		if err != nil {
			tlog.V("lex").Printw("illegal char", "char", string(err.Char), "pos", err.Pos)

			if onErr != nil {
				onErr(*err)
			}

			i = end

			continue
		}

		tlog.V("lex").Printw("token", "tok", t)

		toks = append(toks, t)
		i = end
	}
}

func token(line string, st int) (t Token, i int, err *IllegalCharError) {
	c := line[st]

	switch {
	case c == 'L':
		return Token{Kind: Lambda, Pos: st, End: st + 1}, st + 1, nil
	case c >= 'a' && c <= 'z':
		return Token{Kind: Var, Pos: st, End: st + 1, Text: line[st : st+1]}, st + 1, nil
	case c == ':':
		return Token{Kind: Arg, Pos: st, End: len(line), Text: line[st+1:]}, len(line), nil
	case c == '.':
		return Token{Kind: Dot, Pos: st, End: st + 1}, st + 1, nil
	case c == '(':
		return Token{Kind: LParen, Pos: st, End: st + 1}, st + 1, nil
	case c == ')':
		return Token{Kind: RParen, Pos: st, End: st + 1}, st + 1, nil
	}

	r, w := utf8.DecodeRuneInString(line[st:])

	return Token{}, st + w, &IllegalCharError{
		Char: r,
		Pos:  st,
		Rest: line[st:],
	}
}

// StartsExpr reports whether an expression can begin with a token of this kind.
func (k Kind) StartsExpr() bool {
	return k == Var || k == Lambda || k == LParen
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (t Token) String() string {
	switch t.Kind {
	case Var, Arg:
		return fmt.Sprintf("%v %q %d:%d", t.Kind, t.Text, t.Pos, t.End)
	default:
		return fmt.Sprintf("%v %d:%d", t.Kind, t.Pos, t.End)
	}
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	n := 2
	if t.Kind == Var || t.Kind == Arg {
		n++
	}

	b = e.AppendMap(b, n)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, t.Kind.String())
	b = e.AppendKeyInt(b, "pos", t.Pos)

	if n == 3 {
		b = e.AppendString(b, "text")
		b = e.AppendString(b, t.Text)
	}

	return b
}

func (e IllegalCharError) Error() string {
	return fmt.Sprintf("Illegal character '%c' in '%s'", e.Char, e.Rest)
}

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b string, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}
