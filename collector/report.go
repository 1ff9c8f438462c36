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
package collector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hako/durafmt"
)

var (
	reportTitleStyle  = lipgloss.NewStyle().Bold(true)
	reportCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	reportBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	keptStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	droppedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Status returns the human readable outcome of a result
func (result *Result) Status() string {
	if result.Kept() {
		return "kept"
	}
	return string(result.Reason)
}

// Rows returns one row per ticker: ticker, status and detail
func (summary *RunSummary) Rows() [][]string {
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		rows = append(rows, []string{result.Ticker, result.Status(), result.Detail()})
	}
	return rows
}

// Duration formats how long the run took
func (summary *RunSummary) Duration() string {
	if summary.EndTime.IsZero() {
		return "incomplete"
	}
	return durafmt.Parse(summary.EndTime.Sub(summary.StartTime)).LimitFirstN(2).String()
}

// Report renders the run summary as a table of tickers with their outcome
func (summary *RunSummary) Report() string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(reportBorderStyle).
		Headers("Ticker", "Status", "Detail").
		Rows(summary.Rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return reportCellStyle
		})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\nRun ID: %s\nKept: %s\nDropped: %s\nElapsed: %s\n\n",
		reportTitleStyle.Render("COLLECTION SUMMARY"),
		summary.RunID.String(),
		keptStyle.Render(fmt.Sprintf("%d", len(summary.Records))),
		droppedStyle.Render(fmt.Sprintf("%d", summary.NumSkipped())),
		summary.Duration(),
	)
	sb.WriteString(tbl.Render())

	return sb.String()
}
