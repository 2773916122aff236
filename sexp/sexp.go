// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package sexp reads S-expressions in the SMT-LIB 2 concrete syntax.
//
// It is used both for formulas written by hand (problem files) and for
// the responses of solver processes, which are read incrementally from
// a stream.
package sexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sexp is either an atom or a list.
//
// Quoted symbols (|a b|) are stored without their bars.  String literals
// keep their double quotes so that they can be told apart from symbols;
// use Unquote to obtain their contents.
type Sexp struct {
	Atom   string
	List   []Sexp
	isList bool
}

// Atom makes an atom.
func Atom(a string) Sexp {
	return Sexp{Atom: a}
}

// List makes a list.
func List(xs ...Sexp) Sexp {
	if xs == nil {
		xs = []Sexp{}
	}
	return Sexp{List: xs, isList: true}
}

// IsList returns whether s is a list.
func (s Sexp) IsList() bool {
	return s.isList
}

// Is returns whether s is the atom a.
func (s Sexp) Is(a string) bool {
	return !s.isList && s.Atom == a
}

// Head returns the first element's atom of a non-empty list, or "".
func (s Sexp) Head() string {
	if !s.isList || len(s.List) == 0 || s.List[0].isList {
		return ""
	}
	return s.List[0].Atom
}

// IsString returns whether s is a string literal atom.
func (s Sexp) IsString() bool {
	return !s.isList && len(s.Atom) >= 2 && s.Atom[0] == '"' && s.Atom[len(s.Atom)-1] == '"'
}

// Unquote returns the contents of a string literal atom, or the atom
// itself if it is not a string literal.
func (s Sexp) Unquote() string {
	if !s.IsString() {
		return s.Atom
	}
	return strings.ReplaceAll(s.Atom[1:len(s.Atom)-1], `""`, `"`)
}

func (s Sexp) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s Sexp) write(sb *strings.Builder) {
	if !s.isList {
		sb.WriteString(s.Atom)
		return
	}
	sb.WriteByte('(')
	for i, x := range s.List {
		if i > 0 {
			sb.WriteByte(' ')
		}
		x.write(sb)
	}
	sb.WriteByte(')')
}

// Reader reads a stream of S-expressions.
type Reader struct {
	r    *bufio.Reader
	line int
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, line: 1}
}

// Read reads the next S-expression.  It returns io.EOF if the stream
// ends before any expression starts, and an error wrapping
// io.ErrUnexpectedEOF if it ends inside one.
func (r *Reader) Read() (Sexp, error) {
	c, e := r.skip()
	if e != nil {
		return Sexp{}, e
	}
	return r.read(c)
}

func (r *Reader) read(c byte) (Sexp, error) {
	switch c {
	case '(':
		xs := []Sexp{}
		for {
			d, e := r.skip()
			if e == io.EOF {
				return Sexp{}, r.errorf("%w: unclosed list", io.ErrUnexpectedEOF)
			}
			if e != nil {
				return Sexp{}, e
			}
			if d == ')' {
				return List(xs...), nil
			}
			x, e := r.read(d)
			if e != nil {
				return Sexp{}, e
			}
			xs = append(xs, x)
		}
	case ')':
		return Sexp{}, r.errorf("unexpected ')'")
	case '|':
		s, e := r.r.ReadString('|')
		if e != nil {
			return Sexp{}, r.errorf("%w: unclosed quoted symbol", io.ErrUnexpectedEOF)
		}
		r.line += strings.Count(s, "\n")
		return Atom(s[:len(s)-1]), nil
	case '"':
		return r.readString()
	}
	var sb strings.Builder
	sb.WriteByte(c)
	for {
		d, e := r.r.ReadByte()
		if e == io.EOF {
			break
		}
		if e != nil {
			return Sexp{}, e
		}
		if isSpace(d) || d == '(' || d == ')' || d == ';' || d == '"' || d == '|' {
			r.r.UnreadByte()
			break
		}
		sb.WriteByte(d)
	}
	return Atom(sb.String()), nil
}

func (r *Reader) readString() (Sexp, error) {
	var sb strings.Builder
	sb.WriteByte('"')
	for {
		d, e := r.r.ReadByte()
		if e != nil {
			return Sexp{}, r.errorf("%w: unclosed string", io.ErrUnexpectedEOF)
		}
		if d == '\n' {
			r.line++
		}
		sb.WriteByte(d)
		if d != '"' {
			continue
		}
		n, e := r.r.Peek(1)
		if e == nil && n[0] == '"' {
			r.r.ReadByte()
			sb.WriteByte('"')
			continue
		}
		return Atom(sb.String()), nil
	}
}

// skip skips white space and comments and returns the next byte.
func (r *Reader) skip() (byte, error) {
	for {
		c, e := r.r.ReadByte()
		if e != nil {
			return 0, e
		}
		switch {
		case c == '\n':
			r.line++
		case isSpace(c):
		case c == ';':
			if _, e := r.r.ReadString('\n'); e != nil {
				return 0, e
			}
			r.line++
		default:
			return c, nil
		}
	}
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("sexp: line %d: %w", r.line, fmt.Errorf(format, args...))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// ParseAll reads all S-expressions in src.
func ParseAll(src string) ([]Sexp, error) {
	r := NewReader(strings.NewReader(src))
	var res []Sexp
	for {
		s, e := r.Read()
		if e == io.EOF {
			return res, nil
		}
		if e != nil {
			return nil, e
		}
		res = append(res, s)
	}
}

// ErrTrailing is returned by Parse when src holds more than one expression.
var ErrTrailing = errors.New("sexp: trailing input")

// Parse reads exactly one S-expression from src.
func Parse(src string) (Sexp, error) {
	xs, e := ParseAll(src)
	if e != nil {
		return Sexp{}, e
	}
	switch len(xs) {
	case 0:
		return Sexp{}, fmt.Errorf("sexp: %w", io.ErrUnexpectedEOF)
	case 1:
		return xs[0], nil
	default:
		return Sexp{}, ErrTrailing
	}
}
