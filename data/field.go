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
package data

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrUnknownProfile = errors.New("unknown field profile")
)

const (
	FullProfile     = "full"
	CashFlowProfile = "cashflow"
)

// Field describes one numeric column of the financials table and where its
// value comes from
type Field struct {
	Key       string
	Label     string
	Statement StatementKind

	// Sources are the provider row labels consulted in order. A later label is
	// only used when every earlier label is absent from the statement.
	Sources []string

	ref func(*FinancialRecord) **float64
}

// Value returns the field's value on the record
func (field *Field) Value(record *FinancialRecord) *float64 {
	return *field.ref(record)
}

// Set stores val on the record
func (field *Field) Set(record *FinancialRecord, val *float64) {
	*field.ref(record) = val
}

// Extract reads the field from a statement. The first source label present
// in the statement decides the result, even if its value is empty.
func (field *Field) Extract(statement *Statement) *float64 {
	for _, label := range field.Sources {
		val, ok := statement.Rows[label]
		if !ok {
			continue
		}

		if val == nil {
			return nil
		}

		out := *val
		return &out
	}

	return nil
}

// Fields lists every tracked field in table order
var Fields = []*Field{
	{
		Key:       "free_cash_flow",
		Label:     "Free Cash Flow",
		Statement: CashFlow,
		Sources:   []string{"Free Cash Flow"},
		ref:       func(r *FinancialRecord) **float64 { return &r.FreeCashFlow },
	},
	{
		Key:       "operating_cash_flow",
		Label:     "Operating Cash Flow",
		Statement: CashFlow,
		Sources:   []string{"Operating Cash Flow", "Total Cash From Operating Activities"},
		ref:       func(r *FinancialRecord) **float64 { return &r.OperatingCashFlow },
	},
	{
		Key:       "total_assets",
		Label:     "Total Assets",
		Statement: BalanceSheet,
		Sources:   []string{"Total Assets"},
		ref:       func(r *FinancialRecord) **float64 { return &r.TotalAssets },
	},
	{
		Key:       "total_debt",
		Label:     "Total Debt",
		Statement: BalanceSheet,
		Sources:   []string{"Total Debt"},
		ref:       func(r *FinancialRecord) **float64 { return &r.TotalDebt },
	},
	{
		Key:       "net_debt",
		Label:     "Net Debt",
		Statement: BalanceSheet,
		Sources:   []string{"Net Debt"},
		ref:       func(r *FinancialRecord) **float64 { return &r.NetDebt },
	},
	{
		Key:       "working_capital",
		Label:     "Working Capital",
		Statement: BalanceSheet,
		Sources:   []string{"Working Capital"},
		ref:       func(r *FinancialRecord) **float64 { return &r.WorkingCapital },
	},
	{
		Key:       "revenue",
		Label:     "Revenue",
		Statement: IncomeStatement,
		Sources:   []string{"Total Revenue"},
		ref:       func(r *FinancialRecord) **float64 { return &r.Revenue },
	},
	{
		Key:       "net_income",
		Label:     "Net Income",
		Statement: IncomeStatement,
		Sources:   []string{"Net Income"},
		ref:       func(r *FinancialRecord) **float64 { return &r.NetIncome },
	},
	{
		Key:       "gross_profit",
		Label:     "Gross Profit",
		Statement: IncomeStatement,
		Sources:   []string{"Gross Profit"},
		ref:       func(r *FinancialRecord) **float64 { return &r.GrossProfit },
	},
	{
		Key:       "ebit",
		Label:     "EBIT",
		Statement: IncomeStatement,
		Sources:   []string{"EBIT"},
		ref:       func(r *FinancialRecord) **float64 { return &r.EBIT },
	},
	{
		Key:       "normalized_ebitda",
		Label:     "Normalized EBITDA",
		Statement: IncomeStatement,
		Sources:   []string{"Normalized EBITDA"},
		ref:       func(r *FinancialRecord) **float64 { return &r.NormalizedEBITDA },
	},
}

// FieldByKey returns the field registered under key
func FieldByKey(key string) (*Field, error) {
	for _, field := range Fields {
		if field.Key == key {
			return field, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
}

// FieldsByKey resolves a list of keys in the order given
func FieldsByKey(keys ...string) ([]*Field, error) {
	fields := make([]*Field, 0, len(keys))
	for _, key := range keys {
		field, err := FieldByKey(strings.TrimSpace(key))
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// FieldsForColumns keeps the registered fields whose key is in columns, in
// registry order. Unknown columns (like ticker) are ignored.
func FieldsForColumns(columns []string) []*Field {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	fields := make([]*Field, 0, len(columns))
	for _, field := range Fields {
		if present[field.Key] {
			fields = append(fields, field)
		}
	}
	return fields
}

// Profile returns the field set for a named profile. The cashflow profile only
// needs the cash-flow statement.
func Profile(name string) ([]*Field, error) {
	switch name {
	case "", FullProfile:
		return Fields, nil
	case CashFlowProfile:
		return FieldsByKey("free_cash_flow", "operating_cash_flow")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
}

// Statements returns the distinct statement kinds needed by fields, in
// request order
func Statements(fields []*Field) []StatementKind {
	needed := make(map[StatementKind]bool, len(StatementKinds))
	for _, field := range fields {
		needed[field.Statement] = true
	}

	kinds := make([]StatementKind, 0, len(needed))
	for _, kind := range StatementKinds {
		if needed[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
