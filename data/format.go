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
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders val with thousands separators. Whole numbers are
// printed without a fractional part.
func FormatNumber(val *float64) string {
	if val == nil {
		return "-"
	}

	if *val == math.Trunc(*val) && math.Abs(*val) < math.MaxInt64 {
		return printer.Sprintf("%d", int64(*val))
	}

	return printer.Sprintf("%.2f", *val)
}

// DisplayRow converts a record into display strings: the ticker followed by
// one formatted value per field
func DisplayRow(record *FinancialRecord, fields []*Field) []string {
	row := make([]string, 0, len(fields)+1)
	row = append(row, record.Ticker)
	for _, field := range fields {
		row = append(row, FormatNumber(field.Value(record)))
	}
	return row
}

// DisplayHeaders returns the column titles matching DisplayRow
func DisplayHeaders(fields []*Field) []string {
	headers := make([]string, 0, len(fields)+1)
	headers = append(headers, "Ticker")
	for _, field := range fields {
		headers = append(headers, field.Label)
	}
	return headers
}
