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
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvscreen/data"
)

const NoMatches = "No stocks match the given criteria."

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// Table renders records as a bordered table with thousands separated values
func Table(fields []*data.Field, records []*data.FinancialRecord) string {
	if len(records) == 0 {
		return NoMatches
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, data.DisplayRow(record, fields))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(data.DisplayHeaders(fields)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cellStyle
			}
			return numberStyle
		}).
		Render()
}

// Dump returns the records as an indented JSON document wrapped in a markdown
// code block
func Dump(records []*data.FinancialRecord) (string, error) {
	if records == nil {
		records = []*data.FinancialRecord{}
	}

	doc, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("# Database contents\n\n```json\n%s\n```\n", doc), nil
}
