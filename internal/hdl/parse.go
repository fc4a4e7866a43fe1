// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses the pin and endpoint references used in board layouts.
//
// A reference is written
//
//	[$]label[.pin][[index]|[start..end]]
//
// where a leading '$' denotes a free junction instead of a component label.
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Type is the type of a lexed item.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Dot
	Dollar
	Int
	Range
)

var typeNames = [...]string{"end of input", "character", "identifier", "'['", "']'", "'.'", "'$'", "integer", "'..'"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Item is a lexed item.
//
type Item struct {
	Type  Type
	Pos   int
	Value string
}

func (i Item) String() string {
	switch i.Type {
	case EOF:
		return i.Type.String()
	case Ident, Int:
		return i.Type.String() + " " + strconv.Quote(i.Value)
	}
	return strconv.Quote(i.Value)
}

// Lexer splits its input into items.
//
type Lexer struct {
	input string
	pos   int // start of the current item
	next  int // position of the next rune
	state stateFn
	items []Item
}

type stateFn func(*Lexer) stateFn

// NewLexer returns a new lexer for the given input.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, state: lexInit}
}

// Lex returns the next item. Once the end of input is reached, it keeps
// returning EOF.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

const eof = -1

func (l *Lexer) read() rune {
	if l.next >= len(l.input) {
		l.next = len(l.input) + 1
		return eof
	}
	r, sz := utf8.DecodeRuneInString(l.input[l.next:])
	l.next += sz
	return r
}

func (l *Lexer) peek() rune {
	if l.next >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) emit(t Type) {
	end := l.next
	if end > len(l.input) {
		end = len(l.input)
	}
	l.items = append(l.items, Item{t, l.pos, l.input[l.pos:end]})
	l.pos = end
}

func (l *Lexer) acceptWhile(f func(rune) bool) {
	for r := l.peek(); r != eof && f(r); r = l.peek() {
		l.read()
	}
}

func lexInit(l *Lexer) stateFn {
	r := l.read()
	switch {
	case r == eof:
		return lexEOF
	case unicode.IsSpace(r):
		l.acceptWhile(unicode.IsSpace)
		l.pos = l.next
	case unicode.IsLetter(r) || r == '_':
		l.acceptWhile(isIdent)
		l.emit(Ident)
	case '0' <= r && r <= '9':
		l.acceptWhile(isDigit)
		l.emit(Int)
	case r == '[':
		l.emit(BracketOpen)
	case r == ']':
		l.emit(BracketClose)
	case r == '$':
		l.emit(Dollar)
	case r == '.':
		if l.peek() == '.' {
			l.read()
			l.emit(Range)
			break
		}
		l.emit(Dot)
	default:
		l.emit(Raw)
		return lexEOF
	}
	return lexInit
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *Lexer) stateFn {
	l.pos = len(l.input)
	l.items = append(l.items, Item{EOF, l.pos, ""})
	return lexEOF
}

func isIdent(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }
func isDigit(r rune) bool { return '0' <= r && r <= '9' }

// Ref is a parsed endpoint reference.
//
type Ref struct {
	Label string
	// Free is set for free junctions ($name).
	Free bool
	// Pin is the pin name, empty if omitted.
	Pin string
	// Start and End are the first and last bit of the reference, both -1 for
	// a whole pin. A single bit index has Start == End.
	Start, End int
}

// Whole returns true if r designates a whole pin.
//
func (r *Ref) Whole() bool { return r.Start < 0 }

// Bits returns the number of bits in r, 0 for a whole pin.
//
func (r *Ref) Bits() int {
	if r.Whole() {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Ref) String() string {
	s := r.Label
	if r.Free {
		s = "$" + s
	}
	if r.Pin != "" {
		s += "." + r.Pin
	}
	switch {
	case r.Whole():
	case r.Start == r.End:
		s += "[" + strconv.Itoa(r.Start) + "]"
	default:
		s += "[" + strconv.Itoa(r.Start) + ".." + strconv.Itoa(r.End) + "]"
	}
	return s
}

// ParseRef parses an endpoint reference.
//
func ParseRef(s string) (Ref, error) {
	r := Ref{Start: -1, End: -1}
	l := NewLexer(s)
	i := l.Lex()
	if i.Type == Dollar {
		r.Free = true
		i = l.Lex()
	}
	if i.Type != Ident {
		return r, parseError(s, i, "expected label")
	}
	r.Label = i.Value
	i = l.Lex()
	if i.Type == Dot {
		if r.Free {
			return r, parseError(s, i, "free junctions have no pins")
		}
		i = l.Lex()
		if i.Type != Ident {
			return r, parseError(s, i, "expected pin name after '.'")
		}
		r.Pin = i.Value
		i = l.Lex()
	}
	if i.Type == BracketOpen {
		if r.Free {
			return r, parseError(s, i, "free junctions cannot be indexed")
		}
		var err error
		if r.Start, r.End, i, err = parseIndex(s, l); err != nil {
			return r, err
		}
	}
	if i.Type != EOF {
		return r, parseError(s, i, "unexpected "+i.String())
	}
	return r, nil
}

// parseIndex parses "n]" or "n..m]" and returns the item following the
// closing bracket.
//
func parseIndex(s string, l *Lexer) (start, end int, next Item, err error) {
	i := l.Lex()
	if start, err = atoi(s, i); err != nil {
		return
	}
	end = start
	i = l.Lex()
	if i.Type == Range {
		if end, err = atoi(s, l.Lex()); err != nil {
			return
		}
		if end < start {
			err = errors.Errorf("in %q: invalid range %d..%d", s, start, end)
			return
		}
		i = l.Lex()
	}
	if i.Type != BracketClose {
		err = parseError(s, i, "closing ']' expected after index or range")
		return
	}
	return start, end, l.Lex(), nil
}

func atoi(s string, i Item) (int, error) {
	if i.Type != Int {
		return 0, parseError(s, i, "integer value expected")
	}
	n, err := strconv.Atoi(i.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "in %q at pos %d", s, i.Pos+1)
	}
	return n, nil
}

// ParseBus parses a bus declaration of the form name or name[width] and
// returns the name and width (1 if omitted).
//
func ParseBus(s string) (name string, width int, err error) {
	l := NewLexer(s)
	i := l.Lex()
	if i.Type != Ident {
		return "", 0, parseError(s, i, "expected bus name")
	}
	name, width = i.Value, 1
	i = l.Lex()
	if i.Type == BracketOpen {
		if width, err = atoi(s, l.Lex()); err != nil {
			return "", 0, err
		}
		if width < 1 {
			return "", 0, errors.Errorf("in %q: invalid bus width %d", s, width)
		}
		if i = l.Lex(); i.Type != BracketClose {
			return "", 0, parseError(s, i, "missing close bracket")
		}
		i = l.Lex()
	}
	if i.Type != EOF {
		return "", 0, parseError(s, i, "unexpected "+i.String())
	}
	return name, width, nil
}

func parseError(in string, i Item, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, i.Pos+1, msg)
}
