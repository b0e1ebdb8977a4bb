package score

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrEvaluation is returned when a raw score expression cannot be evaluated.
var ErrEvaluation = errors.New("score expression evaluation failed")

// maxMagnitude bounds every literal and the evaluated score. Larger values
// cannot be represented exactly during evaluation.
const maxMagnitude = math.MaxInt32

var (
	signRunRe   = regexp.MustCompile(`\+{2,}|-{2,}`)
	leadZeroRe  = regexp.MustCompile(`([+\-*/])0+(\d)`)
	exprTokenRe = regexp.MustCompile(`\d+|[+\-*/]`)
)

// NormalizeExpression evaluates a posted score expression ("+50-3", "--250", "300-05")
// to an integer. Only integers and the four arithmetic operators are accepted.
func NormalizeExpression(expr string) (int, error) {
	s := signRunRe.ReplaceAllStringFunc(expr, func(run string) string { return run[:1] })
	s = leadZeroRe.ReplaceAllString(s, "$1$2")

	tokens := exprTokenRe.FindAllString(s, -1)
	if len(tokens) == 0 || len(strings.Join(tokens, "")) != len(s) {
		return 0, fmt.Errorf("%w: %q", ErrEvaluation, expr)
	}

	p := &exprParser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrEvaluation, expr, err)
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("%w: %q: unexpected %q", ErrEvaluation, expr, p.tokens[p.pos])
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q: not a finite number", ErrEvaluation, expr)
	}
	if math.Abs(v) > maxMagnitude {
		return 0, fmt.Errorf("%w: %q: out of range", ErrEvaluation, expr)
	}
	return int(v), nil
}

type exprParser struct {
	tokens []string
	pos    int
}

func (p *exprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

// expr := term (("+"|"-") term)*
func (p *exprParser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for op := p.peek(); op == "+" || op == "-"; op = p.peek() {
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

// term := factor (("*"|"/") factor)*
func (p *exprParser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for op := p.peek(); op == "*" || op == "/"; op = p.peek() {
		p.pos++
		rhs, err := p.factor()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v *= rhs
			continue
		}
		if rhs == 0 {
			return 0, errors.New("division by zero")
		}
		v /= rhs
	}
	return v, nil
}

// factor := ("+"|"-") factor | number
func (p *exprParser) factor() (float64, error) {
	tok := p.peek()
	switch tok {
	case "":
		return 0, errors.New("unexpected end of expression")
	case "+", "-":
		p.pos++
		v, err := p.factor()
		if tok == "-" {
			v = -v
		}
		return v, err
	case "*", "/":
		return 0, fmt.Errorf("unexpected %q", tok)
	}
	p.pos++
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("number %q out of range", tok)
	}
	return float64(n), nil
}
