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
	"sort"

	"github.com/rs/zerolog"
)

type StatementKind string

const (
	CashFlow        StatementKind = "cash-flow"
	BalanceSheet    StatementKind = "balance-sheet"
	IncomeStatement StatementKind = "income-statement"
)

// StatementKinds lists every statement kind in the order they are requested
var StatementKinds = []StatementKind{CashFlow, BalanceSheet, IncomeStatement}

// FinancialRecord is one row of the financials table. A nil value means the
// provider did not report the field.
type FinancialRecord struct {
	Ticker            string   `db:"ticker" json:"ticker" csv:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FreeCashFlow      *float64 `db:"free_cash_flow" json:"free_cash_flow" csv:"free_cash_flow" parquet:"name=free_cash_flow, type=DOUBLE, repetitiontype=OPTIONAL"`
	OperatingCashFlow *float64 `db:"operating_cash_flow" json:"operating_cash_flow" csv:"operating_cash_flow" parquet:"name=operating_cash_flow, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAssets       *float64 `db:"total_assets" json:"total_assets" csv:"total_assets" parquet:"name=total_assets, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalDebt         *float64 `db:"total_debt" json:"total_debt" csv:"total_debt" parquet:"name=total_debt, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetDebt           *float64 `db:"net_debt" json:"net_debt" csv:"net_debt" parquet:"name=net_debt, type=DOUBLE, repetitiontype=OPTIONAL"`
	WorkingCapital    *float64 `db:"working_capital" json:"working_capital" csv:"working_capital" parquet:"name=working_capital, type=DOUBLE, repetitiontype=OPTIONAL"`
	Revenue           *float64 `db:"revenue" json:"revenue" csv:"revenue" parquet:"name=revenue, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetIncome         *float64 `db:"net_income" json:"net_income" csv:"net_income" parquet:"name=net_income, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrossProfit       *float64 `db:"gross_profit" json:"gross_profit" csv:"gross_profit" parquet:"name=gross_profit, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBIT              *float64 `db:"ebit" json:"ebit" csv:"ebit" parquet:"name=ebit, type=DOUBLE, repetitiontype=OPTIONAL"`
	NormalizedEBITDA  *float64 `db:"normalized_ebitda" json:"normalized_ebitda" csv:"normalized_ebitda" parquet:"name=normalized_ebitda, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// Complete reports whether every field in the set has a value
func (record *FinancialRecord) Complete(fields []*Field) bool {
	return len(record.Missing(fields)) == 0
}

// Missing returns the keys of fields in the set that have no value
func (record *FinancialRecord) Missing(fields []*Field) []string {
	missing := make([]string, 0)
	for _, field := range fields {
		if field.Value(record) == nil {
			missing = append(missing, field.Key)
		}
	}
	return missing
}

func (record *FinancialRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", record.Ticker)
	for _, field := range Fields {
		if val := field.Value(record); val != nil {
			e.Float64(field.Key, *val)
		}
	}
}

// Statement holds the rows a provider returned for one ticker and statement
// kind. Rows maps the provider's row label to the most recent value; a nil
// value means the label was present without a usable number.
type Statement struct {
	Ticker string
	Kind   StatementKind
	Rows   map[string]*float64
}

// NewStatement returns an empty statement ready to be filled by a provider
func NewStatement(ticker string, kind StatementKind) *Statement {
	return &Statement{
		Ticker: ticker,
		Kind:   kind,
		Rows:   make(map[string]*float64),
	}
}

// Lookup returns the value stored under label. The second return value is
// false when the label is absent or has no value.
func (statement *Statement) Lookup(label string) (float64, bool) {
	val, ok := statement.Rows[label]
	if !ok || val == nil {
		return 0, false
	}
	return *val, true
}

// Labels returns the row labels present in the statement
func (statement *Statement) Labels() []string {
	labels := make([]string, 0, len(statement.Rows))
	for label := range statement.Rows {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
