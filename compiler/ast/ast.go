package ast

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Node interface {
		Span() Base
		TlogAppend(b []byte) []byte
	}

	Base struct {
		Pos int
		End int
	}

	Var struct {
		Base `tlog:",embed"`

		Name byte
	}

	Lambda struct {
		Base `tlog:",embed"`

		Param byte
		Body  Node
	}

	Call struct {
		Base `tlog:",embed"`

		Callee   Node
		Argument Node
	}

	// Top is a parsed line: an expression and the raw text after ':', if any.
	Top struct {
		Expr Node
		Arg  *string
	}
)

func (b Base) Span() Base { return b }

func (x Var) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendString(b, "var")
	b = e.AppendString(b, string(x.Name))
	b = e.AppendKeyInt(b, "pos", x.Pos)

	return b
}

func (x Lambda) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendString(b, "lambda")
	b = e.AppendString(b, string(x.Param))
	b = e.AppendString(b, "body")
	b = appendNode(b, x.Body)

	return b
}

func (x Call) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendString(b, "callee")
	b = appendNode(b, x.Callee)
	b = e.AppendString(b, "arg")
	b = appendNode(b, x.Argument)

	return b
}

func appendNode(b []byte, x Node) []byte {
	if x == nil {
		var e tlwire.Encoder

		return e.AppendNil(b)
	}

	return x.TlogAppend(b)
}

// HasArg reports whether the line had a trailing fragment.
func (t Top) HasArg() bool { return t.Arg != nil }
