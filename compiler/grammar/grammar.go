package grammar

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	Assoc int

	Action int

	Level struct {
		Prec  int
		Assoc Assoc
	}

	// Table is a yacc style precedence table.
	// Levels are declared lowest first, one per line: `assoc symbol...`.
	Table struct {
		m map[string]Level
	}
)

const (
	NonAssoc Assoc = iota
	Left
	Right
)

const (
	Shift Action = iota
	Reduce
	Error
)

// Application is the pseudo symbol of the juxtaposition rule.
const Application = "APPLICATION"

const DefaultText = `# lowest first
right    .
right    APPLICATION
nonassoc VAR
nonassoc LAMBDA
right    (
`

var Default = Must(New(context.Background(), []byte(DefaultText)))

func New(ctx context.Context, text []byte) (*Table, error) {
	g := &Table{
		m: map[string]Level{},
	}

	s := bufio.NewScanner(bytes.NewReader(text))

	lnum := 0
	prec := 0
	for s.Scan() {
		lnum++

		line := s.Bytes()
		i := skipSpaces(line, 0)

		if i == len(line) || line[i] == '#' {
			continue
		}

		end := findChar(line, i, ' ')

		var a Assoc

		switch w := string(line[i:end]); w {
		case "left":
			a = Left
		case "right":
			a = Right
		case "nonassoc":
			a = NonAssoc
		default:
			return nil, errors.New("unknown associativity %q: line %d", w, lnum)
		}

		prec++
		i = skipSpaces(line, end)

		if i == len(line) {
			return nil, errors.New("no symbols in line: %v", lnum)
		}

		for i < len(line) {
			end = findChar(line, i, ' ')
			sym := string(line[i:end])

			if _, ok := g.m[sym]; ok {
				return nil, errors.New("duplicate symbol %q: line %d", sym, lnum)
			}

			g.m[sym] = Level{Prec: prec, Assoc: a}

			i = skipSpaces(line, end)
		}
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "scanner")
	}

	tlog.V("grammar").Printw("precedence table", "levels", prec, "symbols", len(g.m))

	return g, nil
}

func Must(g *Table, err error) *Table {
	if err != nil {
		panic(err)
	}

	return g
}

func (g *Table) Level(sym string) (l Level, ok bool) {
	l, ok = g.m[sym]
	return
}

// Resolve decides a shift/reduce conflict between reducing a rule
// with precedence symbol rule and shifting lookahead symbol look.
// Unknown symbols shift.
func (g *Table) Resolve(rule, look string) Action {
	r, ok := g.m[rule]
	if !ok {
		return Shift
	}

	l, ok := g.m[look]
	if !ok {
		return Shift
	}

	switch {
	case l.Prec > r.Prec:
		return Shift
	case l.Prec < r.Prec:
		return Reduce
	}

	switch r.Assoc {
	case Right:
		return Shift
	case Left:
		return Reduce
	default:
		return Error
	}
}

func (a Action) String() string {
	switch a {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}

	return i
}

func findChar(b []byte, i int, c byte) int {
	for i < len(b) && b[i] != c && b[i] != '\t' {
		i++
	}

	return i
}
