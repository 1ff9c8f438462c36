// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/penny-vault/pvscreen/data"
)

type Operator string

const (
	GreaterThan Operator = "greater_than"
	LessThan    Operator = "less_than"
)

var (
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidCondition = errors.New("invalid condition")
)

// Operators lists the comparisons offered by the filter form
var Operators = []Operator{GreaterThan, LessThan}

// ParseOperator accepts either the operator name or its symbol
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case string(GreaterThan), ">":
		return GreaterThan, nil
	case string(LessThan), "<":
		return LessThan, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}
}

// Symbol returns the SQL comparison for the operator
func (op Operator) Symbol() string {
	if op == GreaterThan {
		return ">"
	}
	return "<"
}

// Condition compares one field against a threshold
type Condition struct {
	Field     *data.Field
	Operator  Operator
	Threshold float64
}

func (cond Condition) String() string {
	return fmt.Sprintf("%s %s %s", cond.Field.Key, cond.Operator.Symbol(), strconv.FormatFloat(cond.Threshold, 'f', -1, 64))
}

// Criteria is the conjunction of its conditions
type Criteria []Condition

// Where renders the conjunction as a SQL predicate with positional parameters
// starting at $(offset+1). An empty criteria yields an empty predicate.
func (criteria Criteria) Where(offset int) (string, []any) {
	if len(criteria) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for idx, cond := range criteria {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", cond.Field.Key, cond.Operator.Symbol(), offset+idx+1))
		args = append(args, cond.Threshold)
	}

	return strings.Join(clauses, " AND "), args
}

func (criteria Criteria) String() string {
	parts := make([]string, len(criteria))
	for idx, cond := range criteria {
		parts[idx] = cond.String()
	}
	return strings.Join(parts, " AND ")
}

// Parse reads a condition such as "free_cash_flow<30000" or
// "free_cash_flow greater_than 10"
func Parse(s string) (Condition, error) {
	s = strings.TrimSpace(s)

	for _, sep := range []string{string(GreaterThan), string(LessThan), ">", "<"} {
		idx := strings.Index(s, sep)
		if idx <= 0 {
			continue
		}

		field, err := data.FieldByKey(strings.TrimSpace(s[:idx]))
		if err != nil {
			return Condition{}, err
		}

		op, err := ParseOperator(sep)
		if err != nil {
			return Condition{}, err
		}

		threshold, err := strconv.ParseFloat(strings.TrimSpace(s[idx+len(sep):]), 64)
		if err != nil {
			return Condition{}, fmt.Errorf("%w: %q: %w", ErrInvalidCondition, s, err)
		}

		return Condition{Field: field, Operator: op, Threshold: threshold}, nil
	}

	return Condition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

// ParseAll parses each expression into one criteria
func ParseAll(exprs []string) (Criteria, error) {
	criteria := make(Criteria, 0, len(exprs))
	for _, expr := range exprs {
		cond, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, cond)
	}
	return criteria, nil
}

// Simple returns the two-field criteria of the basic screen: free and
// operating cash flow, both compared with less-than
func Simple(freeCashFlow, operatingCashFlow float64) Criteria {
	fcf, _ := data.FieldByKey("free_cash_flow")
	ocf, _ := data.FieldByKey("operating_cash_flow")

	return Criteria{
		{Field: fcf, Operator: LessThan, Threshold: freeCashFlow},
		{Field: ocf, Operator: LessThan, Threshold: operatingCashFlow},
	}
}
