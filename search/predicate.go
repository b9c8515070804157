/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
)

// predicate evaluates compiled criteria against a single result.
type predicate func(r *Result) (bool, error)

func matchAll(*Result) (bool, error) { return true, nil }

// compile turns a criteria tree into a predicate. Like patterns are
// compiled here so malformed patterns fail before any record is read.
func compile(c query.Criteria) (predicate, error) {
	switch c := c.(type) {
	case nil:
		return matchAll, nil

	case query.Comparison:
		if err := requireProperty(c.Property); err != nil {
			return nil, err
		}
		if c.Op < query.OpEq || c.Op > query.OpLe {
			return nil, errors.NewTranslationError(c.Property, fmt.Sprintf("unsupported operator %s", c.Op))
		}
		return func(r *Result) (bool, error) {
			v, err := r.Attribute(c.Property)
			if err != nil {
				return false, err
			}
			return apply(c.Property, v, c.Op, c.Value)
		}, nil

	case query.Range:
		if err := requireProperty(c.Property); err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			v, err := r.Attribute(c.Property)
			if err != nil {
				return false, err
			}
			if ok, err := apply(c.Property, v, query.OpGe, c.Min); !ok || err != nil {
				return false, err
			}
			return apply(c.Property, v, query.OpLe, c.Max)
		}, nil

	case query.In:
		if err := requireProperty(c.Property); err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			v, err := r.Attribute(c.Property)
			if err != nil {
				return false, err
			}
			for _, candidate := range c.Values {
				if Equal(v, candidate) {
					return true, nil
				}
			}
			return false, nil
		}, nil

	case query.Like:
		if err := requireProperty(c.Property); err != nil {
			return nil, err
		}
		re, err := compileLike(c.Pattern)
		if err != nil {
			return nil, errors.WrapTranslationError(c.Property, err)
		}
		return func(r *Result) (bool, error) {
			v, err := r.Attribute(c.Property)
			if err != nil {
				return false, err
			}
			s, ok, err := likeSubject(c.Property, v)
			if !ok || err != nil {
				return false, err
			}
			return re.MatchString(s), nil
		}, nil

	case query.Null:
		if err := requireProperty(c.Property); err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			v, err := r.Attribute(c.Property)
			if err != nil {
				return false, err
			}
			n, _ := normalize(v)
			return (n == nil) != c.Negate, nil
		}, nil

	case query.And:
		preds, err := compileAll(c.Clauses)
		if err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			for _, p := range preds {
				if ok, err := p(r); !ok || err != nil {
					return false, err
				}
			}
			return true, nil
		}, nil

	case query.Or:
		preds, err := compileAll(c.Clauses)
		if err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			for _, p := range preds {
				ok, err := p(r)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		}, nil

	case query.Not:
		if c.Clause == nil {
			return nil, errors.NewTranslationError("", "NOT requires a clause")
		}
		inner, err := compile(c.Clause)
		if err != nil {
			return nil, err
		}
		return func(r *Result) (bool, error) {
			ok, err := inner(r)
			return !ok && err == nil, err
		}, nil

	default:
		return nil, errors.NewTranslationError("", fmt.Sprintf("unsupported criteria %T", c))
	}
}

func compileAll(clauses []query.Criteria) ([]predicate, error) {
	preds := make([]predicate, 0, len(clauses))
	for _, clause := range clauses {
		if clause == nil {
			continue
		}
		p, err := compile(clause)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func requireProperty(property string) error {
	if strings.TrimSpace(property) == "" {
		return errors.NewTranslationError("", "criteria property must not be empty")
	}
	return nil
}

func apply(property string, v any, op query.Operator, operand any) (bool, error) {
	switch op {
	case query.OpEq:
		return Equal(v, operand), nil
	case query.OpNe:
		return !Equal(v, operand), nil
	}

	c, err := Compare(v, operand)
	if err != nil {
		return false, errors.WrapTranslationError(property, err)
	}
	// nil never satisfies an ordering comparison
	if n, _ := normalize(v); n == nil {
		return false, nil
	}
	if n, _ := normalize(operand); n == nil {
		return false, nil
	}
	switch op {
	case query.OpGt:
		return c > 0, nil
	case query.OpGe:
		return c >= 0, nil
	case query.OpLt:
		return c < 0, nil
	case query.OpLe:
		return c <= 0, nil
	}
	return false, errors.NewTranslationError(property, fmt.Sprintf("unsupported operator %s", op))
}

func likeSubject(property string, v any) (string, bool, error) {
	switch s := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return s, true, nil
	case fmt.Stringer:
		return s.String(), true, nil
	}
	if n, ok := normalize(v); ok {
		if s, isString := n.(string); isString {
			return s, true, nil
		}
		if n == nil {
			return "", false, nil
		}
	}
	return "", false, errors.NewTranslationError(property, fmt.Sprintf("LIKE requires a string attribute, got %T", v))
}

// compileLike translates a wildcard pattern into an anchored,
// case-insensitive regular expression. '*' matches any run of characters,
// '?' exactly one, and a backslash escapes the next character.
func compileLike(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '\\':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("pattern %q ends with a dangling escape", pattern)
			}
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
