// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dsl

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
)

// Operator is a comparison in a predicate query.
type Operator string

const (
	OpLike Operator = "like"
	OpIs   Operator = "is"
	OpEq   Operator = "=="
	OpGte  Operator = ">="
	OpLte  Operator = "<="
	OpGt   Operator = ">"
	OpLt   Operator = "<"
	OpNe   Operator = "!="
)

// Operators in match priority order. When two operators start at the same
// position the earlier one wins, so "<=" is preferred over "<".
var Operators = []Operator{OpLike, OpIs, OpEq, OpGte, OpLte, OpGt, OpLt, OpNe}

// Query is a parsed DSL query. A bare query names only a group.
type Query struct {
	Group    string   `json:"group"`
	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// IsBare reports whether q selects a whole group without a predicate.
func (q Query) IsBare() bool { return q.Field == "" }

// String renders q as DSL text that parses back to q.
func (q Query) String() string {
	if q.IsBare() {
		return q.Group
	}
	v := q.Value
	if v == "" || strings.ContainsAny(v, " \t'") {
		v = "'" + v + "'"
	}
	return q.Group + "." + q.Field + " " + string(q.Operator) + " " + v
}

var (
	barePattern = regexp.MustCompile(`^[a-z_]+$`)

	// Word operators only match as whole tokens, so "fish" is not split
	// on "is".
	wordPatterns = map[Operator]*regexp.Regexp{
		OpLike: regexp.MustCompile(`(?i)(?:^|\s)(like)(?:\s|$)`),
		OpIs:   regexp.MustCompile(`(?i)(?:^|\s)(is)(?:\s|$)`),
	}
)

// Parse turns DSL text into a Query. Only syntax is checked; whether the
// operator suits the field's type is decided when the query runs.
//
//	lettuce                      → {Group: "lettuce"}
//	lettuce.weight >= 100        → {lettuce weight >= 100}
//	lettuce.grade is 'Premium'   → {lettuce grade is Premium}
func Parse(input string) (Query, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Query{}, parseError(input, "empty query", "try a group name such as cows")
	}

	op, start, end := findOperator(s)
	if op == "" {
		if !strings.Contains(s, ".") {
			if barePattern.MatchString(s) {
				return Query{Group: s}, nil
			}
			return Query{}, parseError(input, "invalid bare-query characters",
				"a bare query is a group name of lowercase letters and underscores")
		}
		return Query{}, parseError(input, "invalid operator",
			"use one of like, is, ==, >=, <=, >, <, !=")
	}

	left := strings.TrimSpace(s[:start])
	right := strings.TrimSpace(s[end:])
	if left == "" || right == "" {
		return Query{}, parseError(input, "missing operand", "write group.field OP value")
	}

	value := strings.TrimPrefix(right, "'")
	value = strings.TrimSuffix(value, "'")

	parts := strings.Split(left, ".")
	if len(parts) != 2 {
		return Query{}, parseError(input, "invalid field reference", "write group.field on the left of the operator")
	}
	group, field := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if group == "" || field == "" {
		return Query{}, parseError(input, "invalid field reference", "write group.field on the left of the operator")
	}

	return Query{Group: group, Field: field, Operator: op, Value: value}, nil
}

// findOperator returns the operator that starts earliest in s, breaking
// ties by priority, with the byte range it occupies. Position wins over
// priority so operators quoted inside the value are never split on.
func findOperator(s string) (Operator, int, int) {
	best, bestStart, bestEnd := Operator(""), -1, -1
	for _, op := range Operators {
		start, end := locate(s, op)
		if start < 0 {
			continue
		}
		if bestStart < 0 || start < bestStart {
			best, bestStart, bestEnd = op, start, end
		}
	}
	return best, bestStart, bestEnd
}

func locate(s string, op Operator) (int, int) {
	if re, ok := wordPatterns[op]; ok {
		m := re.FindStringSubmatchIndex(s)
		if m == nil {
			return -1, -1
		}
		return m[2], m[3]
	}
	i := strings.Index(s, string(op))
	if i < 0 {
		return -1, -1
	}
	return i, i + len(op)
}

func parseError(input, reason, hint string) error {
	err := apperr.WithQuery(apperr.New(apperr.KindParse, "%s", reason), input)
	return errors.WithHint(err, hint)
}
