// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError is returned for malformed region and locset expressions.
type ParseError struct {

	// byte offset in the expression
	Pos int

	// what went wrong
	Msg string

	// full expression being parsed
	Expr string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("morph: parse error at %d in %q: %s", e.Pos, e.Expr, e.Msg)
}

type sexprKind int

const (
	sexprList sexprKind = iota
	sexprSymbol
	sexprNumber
	sexprString
)

// sexpr is a node of a parsed s-expression.
type sexpr struct {
	kind sexprKind
	pos  int
	sym  string
	num  float64
	list []*sexpr
}

func (sx *sexpr) head() string {
	if sx.kind != sexprList || len(sx.list) == 0 || sx.list[0].kind != sexprSymbol {
		return ""
	}
	return sx.list[0].sym
}

func (sx *sexpr) args() []*sexpr {
	if sx.kind != sexprList || len(sx.list) == 0 {
		return nil
	}
	return sx.list[1:]
}

type sexprLexer struct {
	src string
	pos int
}

func (lx *sexprLexer) errorf(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...), Expr: lx.src}
}

func (lx *sexprLexer) skipSpace() {
	for lx.pos < len(lx.src) && unicode.IsSpace(rune(lx.src[lx.pos])) {
		lx.pos++
	}
}

// parseSexpr parses exactly one s-expression from src.
func parseSexpr(src string) (*sexpr, error) {
	lx := &sexprLexer{src: src}
	sx, err := lx.parse()
	if err != nil {
		return nil, err
	}
	lx.skipSpace()
	if lx.pos != len(lx.src) {
		return nil, lx.errorf(lx.pos, "unexpected text after expression")
	}
	return sx, nil
}

func (lx *sexprLexer) parse() (*sexpr, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return nil, lx.errorf(lx.pos, "unexpected end of expression")
	}
	start := lx.pos
	switch c := lx.src[lx.pos]; {
	case c == '(':
		lx.pos++
		sx := &sexpr{kind: sexprList, pos: start}
		for {
			lx.skipSpace()
			if lx.pos >= len(lx.src) {
				return nil, lx.errorf(start, "unbalanced parenthesis")
			}
			if lx.src[lx.pos] == ')' {
				lx.pos++
				return sx, nil
			}
			el, err := lx.parse()
			if err != nil {
				return nil, err
			}
			sx.list = append(sx.list, el)
		}
	case c == ')':
		return nil, lx.errorf(start, "unexpected ')'")
	case c == '"':
		end := strings.IndexByte(lx.src[start+1:], '"')
		if end < 0 {
			return nil, lx.errorf(start, "unterminated string")
		}
		lx.pos = start + 1 + end + 1
		return &sexpr{kind: sexprString, pos: start, sym: lx.src[start+1 : start+1+end]}, nil
	default:
		for lx.pos < len(lx.src) {
			c := lx.src[lx.pos]
			if c == '(' || c == ')' || c == '"' || unicode.IsSpace(rune(c)) {
				break
			}
			lx.pos++
		}
		tok := lx.src[start:lx.pos]
		if num, err := strconv.ParseFloat(tok, 64); err == nil {
			return &sexpr{kind: sexprNumber, pos: start, num: num, sym: tok}, nil
		}
		return &sexpr{kind: sexprSymbol, pos: start, sym: tok}, nil
	}
}
