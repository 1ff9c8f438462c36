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
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/penny-vault/pvscreen/data"
	"github.com/penny-vault/pvscreen/provider"
	"github.com/rs/zerolog"
)

var ErrNoTickers = errors.New("no tickers configured")

// DefaultTickers is used when the configuration does not list any tickers
var DefaultTickers = []string{
	"TATACHEM.NS", "TATACOMM.NS", "RELIANCE.NS", "INFY.NS", "TCS.NS",
	"HDFCBANK.NS", "ICICIBANK.NS", "SBIN.NS", "BAJFINANCE.NS", "HINDUNILVR.NS",
}

// ParseTickers splits a comma or whitespace separated list into upper case
// tickers. Order is preserved.
func ParseTickers(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	tickers := make([]string, 0, len(parts))
	for _, part := range parts {
		tickers = append(tickers, strings.ToUpper(part))
	}
	return tickers
}

// ResolveTickers picks the tickers of a run: command line arguments first,
// then the configured list, then DefaultTickers. Entries may themselves hold
// comma separated lists, as they do when read from a TICKERS variable.
func ResolveTickers(args, configured []string) []string {
	for _, source := range [][]string{args, configured} {
		if tickers := ParseTickers(strings.Join(source, ",")); len(tickers) > 0 {
			return tickers
		}
	}
	return DefaultTickers
}

type SkipReason string

const (
	Kept          SkipReason = ""
	FetchFailed   SkipReason = "fetch-failed"
	MissingFields SkipReason = "missing-fields"
)

// Result is the outcome of collecting a single ticker
type Result struct {
	Ticker  string
	Record  *data.FinancialRecord
	Reason  SkipReason
	Err     error
	Missing []string
}

// Kept reports whether the record will be written to the table
func (result *Result) Kept() bool {
	return result.Reason == Kept
}

// Detail describes why a ticker was skipped
func (result *Result) Detail() string {
	switch result.Reason {
	case FetchFailed:
		return result.Err.Error()
	case MissingFields:
		return strings.Join(result.Missing, ", ")
	default:
		return ""
	}
}

// Writer replaces the destination table with a new record set
type Writer interface {
	Replace(ctx context.Context, fields []*data.Field, records []*data.FinancialRecord) error
}

// Monitor is notified when a run starts and how it ends
type Monitor interface {
	Start(ctx context.Context, runID uuid.UUID) error
	Success(ctx context.Context, runID uuid.UUID, body string) error
	Fail(ctx context.Context, runID uuid.UUID, err error) error
}

// Collector fetches one record per ticker from a provider
type Collector struct {
	Provider provider.Provider
	Fields   []*data.Field

	// Monitor is optional
	Monitor Monitor
}

// RunSummary describes a completed collector run
type RunSummary struct {
	RunID     uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Results   []*Result
	Records   []*data.FinancialRecord
}

// NumSkipped returns the number of tickers that were not written
func (summary *RunSummary) NumSkipped() int {
	return len(summary.Results) - len(summary.Records)
}

// Collect processes each ticker in order. A failure for one ticker never stops
// the others; it is reported on that ticker's result instead.
func (collector *Collector) Collect(ctx context.Context, tickers []string) []*Result {
	logger := zerolog.Ctx(ctx)
	results := make([]*Result, 0, len(tickers))

	for _, ticker := range tickers {
		record, err := collector.fetch(ctx, ticker)
		if err != nil {
			logger.Error().Err(err).Str("Ticker", ticker).Msg("failed to fetch data for ticker")
			results = append(results, &Result{
				Ticker: ticker,
				Reason: FetchFailed,
				Err:    err,
			})
			continue
		}

		results = append(results, &Result{
			Ticker: ticker,
			Record: record,
		})
	}

	return results
}

func (collector *Collector) fetch(ctx context.Context, ticker string) (*data.FinancialRecord, error) {
	logger := zerolog.Ctx(ctx)
	record := &data.FinancialRecord{Ticker: ticker}

	for _, kind := range data.Statements(collector.Fields) {
		statement, err := collector.Provider.Statement(ctx, ticker, kind)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", kind, err)
		}

		logger.Debug().Str("Ticker", ticker).Str("Statement", string(kind)).Strs("Labels", statement.Labels()).Msg("statement labels")

		for _, field := range collector.Fields {
			if field.Statement == kind {
				field.Set(record, field.Extract(statement))
			}
		}
	}

	return record, nil
}

// DropIncomplete marks every fetched result that lacks a tracked field as
// skipped and returns the records that remain, in ticker order
func DropIncomplete(results []*Result, fields []*data.Field) []*data.FinancialRecord {
	records := make([]*data.FinancialRecord, 0, len(results))
	for _, result := range results {
		if result.Reason != Kept {
			continue
		}

		if missing := result.Record.Missing(fields); len(missing) > 0 {
			result.Reason = MissingFields
			result.Missing = missing
			continue
		}

		records = append(records, result.Record)
	}
	return records
}

// Run collects every ticker, drops incomplete records and replaces the
// destination table. Only a failure to write the table is returned as an
// error.
func (collector *Collector) Run(ctx context.Context, tickers []string, writer Writer) (*RunSummary, error) {
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	summary := &RunSummary{
		RunID:     uuid.New(),
		StartTime: time.Now(),
	}

	logger := zerolog.Ctx(ctx).With().Str("RunID", summary.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Int("NumTickers", len(tickers)).Str("Provider", collector.Provider.Name()).Int("NumFields", len(collector.Fields)).Msg("collecting financial statements")

	if collector.Monitor != nil {
		if err := collector.Monitor.Start(ctx, summary.RunID); err != nil {
			logger.Warn().Err(err).Msg("health check start ping failed")
		}
	}

	summary.Results = collector.Collect(ctx, tickers)

	fetched := 0
	for _, result := range summary.Results {
		if result.Kept() {
			fetched++
			logger.Debug().Object("Record", result.Record).Msg("fetched record")
		}
	}
	logger.Info().Int("NumRecords", fetched).Msg("records before dropping rows with missing data")

	summary.Records = DropIncomplete(summary.Results, collector.Fields)
	for _, result := range summary.Results {
		if result.Reason == MissingFields {
			logger.Warn().Str("Ticker", result.Ticker).Strs("Missing", result.Missing).Msg("dropping record with missing data")
		}
	}
	logger.Info().Int("NumRecords", len(summary.Records)).Msg("records after dropping rows with missing data")

	if len(summary.Records) == 0 {
		logger.Warn().Int("NumTickers", len(tickers)).Int("NumFetched", fetched).Msg("no records survived; the table will be emptied")
	}

	if err := writer.Replace(ctx, collector.Fields, summary.Records); err != nil {
		if collector.Monitor != nil {
			if pingErr := collector.Monitor.Fail(ctx, summary.RunID, err); pingErr != nil {
				logger.Warn().Err(pingErr).Msg("health check fail ping failed")
			}
		}
		return summary, err
	}

	summary.EndTime = time.Now()

	if collector.Monitor != nil {
		body := fmt.Sprintf("kept %d of %d tickers", len(summary.Records), len(summary.Results))
		if err := collector.Monitor.Success(ctx, summary.RunID, body); err != nil {
			logger.Warn().Err(err).Msg("health check success ping failed")
		}
	}

	return summary, nil
}
