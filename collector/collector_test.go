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
package collector_test

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/penny-vault/pvscreen/collector"
	"github.com/penny-vault/pvscreen/data"
)

var errNetwork = errors.New("connection reset by peer")

type fakeProvider struct {
	statements map[string]map[data.StatementKind]map[string]*float64
	failures   map[string]error
	calls      []string
}

func (fake *fakeProvider) Name() string                         { return "fake" }
func (fake *fakeProvider) Description() string                  { return "" }
func (fake *fakeProvider) ConfigDescription() map[string]string { return nil }

func (fake *fakeProvider) Statement(ctx context.Context, ticker string, kind data.StatementKind) (*data.Statement, error) {
	fake.calls = append(fake.calls, ticker+"/"+string(kind))
	if err, ok := fake.failures[ticker]; ok {
		return nil, err
	}

	statement := data.NewStatement(ticker, kind)
	for label, val := range fake.statements[ticker][kind] {
		statement.Rows[label] = val
	}
	return statement, nil
}

type fakeWriter struct {
	tables [][]*data.FinancialRecord
	fields []*data.Field
	err    error
}

func (fake *fakeWriter) Replace(ctx context.Context, fields []*data.Field, records []*data.FinancialRecord) error {
	if fake.err != nil {
		return fake.err
	}
	fake.fields = fields
	fake.tables = append(fake.tables, records)
	return nil
}

func ptr(v float64) *float64 {
	return &v
}

func cashFlow(fcf, ocf *float64) map[data.StatementKind]map[string]*float64 {
	rows := map[string]*float64{}
	if fcf != nil {
		rows["Free Cash Flow"] = fcf
	}
	if ocf != nil {
		rows["Operating Cash Flow"] = ocf
	}
	return map[data.StatementKind]map[string]*float64{data.CashFlow: rows}
}

func fullStatements(base float64) map[data.StatementKind]map[string]*float64 {
	out := map[data.StatementKind]map[string]*float64{
		data.CashFlow:        {},
		data.BalanceSheet:    {},
		data.IncomeStatement: {},
	}
	for idx, field := range data.Fields {
		out[field.Statement][field.Sources[0]] = ptr(base + float64(idx))
	}
	return out
}

var _ = Describe("Collector", func() {
	var (
		fake     *fakeProvider
		writer   *fakeWriter
		cashflow []*data.Field
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		writer = &fakeWriter{}
		fake = &fakeProvider{
			statements: map[string]map[data.StatementKind]map[string]*float64{
				"TCS.NS":  cashFlow(ptr(50000), ptr(80000)),
				"INFY.NS": cashFlow(ptr(10000), ptr(20000)),
			},
			failures: map[string]error{},
		}

		var err error
		cashflow, err = data.Profile(data.CashFlowProfile)
		Expect(err).NotTo(HaveOccurred())
	})

	It("passes complete records through unchanged", func() {
		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		summary, err := coll.Run(ctx, []string{"TCS.NS", "INFY.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(writer.tables).To(HaveLen(1))
		Expect(writer.tables[0]).To(HaveLen(2))
		Expect(writer.tables[0][0].Ticker).To(Equal("TCS.NS"))
		Expect(writer.tables[0][0].FreeCashFlow).To(HaveValue(Equal(50000.0)))
		Expect(writer.tables[0][0].OperatingCashFlow).To(HaveValue(Equal(80000.0)))
		Expect(writer.tables[0][1].Ticker).To(Equal("INFY.NS"))
		Expect(writer.fields).To(Equal(cashflow))
		Expect(summary.NumSkipped()).To(Equal(0))
	})

	It("only requests the statements the field set needs", func() {
		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		_, err := coll.Run(ctx, []string{"TCS.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(fake.calls).To(Equal([]string{"TCS.NS/cash-flow"}))
	})

	It("drops tickers missing every cash-flow row", func() {
		fake.statements["SBIN.NS"] = cashFlow(nil, nil)

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		summary, err := coll.Run(ctx, []string{"TCS.NS", "SBIN.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(writer.tables[0]).To(HaveLen(1))
		Expect(writer.tables[0][0].Ticker).To(Equal("TCS.NS"))

		skipped := summary.Results[1]
		Expect(skipped.Ticker).To(Equal("SBIN.NS"))
		Expect(skipped.Reason).To(Equal(collector.MissingFields))
		Expect(skipped.Missing).To(ConsistOf("free_cash_flow", "operating_cash_flow"))
		Expect(skipped.Detail()).To(Equal("free_cash_flow, operating_cash_flow"))
	})

	It("drops records with a single missing field", func() {
		fake.statements["SBIN.NS"] = cashFlow(ptr(1), nil)

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		summary, err := coll.Run(ctx, []string{"SBIN.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.tables[0]).To(BeEmpty())
		Expect(summary.Results[0].Missing).To(Equal([]string{"operating_cash_flow"}))
	})

	It("uses the fallback row for operating cash flow", func() {
		fake.statements["SBIN.NS"] = map[data.StatementKind]map[string]*float64{
			data.CashFlow: {
				"Free Cash Flow":                       ptr(5),
				"Total Cash From Operating Activities": ptr(7),
			},
		}

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		_, err := coll.Run(ctx, []string{"SBIN.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.tables[0]).To(HaveLen(1))
		Expect(writer.tables[0][0].OperatingCashFlow).To(HaveValue(Equal(7.0)))
	})

	It("isolates fetch failures to the failing ticker", func() {
		fake.failures["RELIANCE.NS"] = errNetwork

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		summary, err := coll.Run(ctx, []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(writer.tables[0]).To(HaveLen(2))
		for _, record := range writer.tables[0] {
			Expect(record.Ticker).NotTo(Equal("RELIANCE.NS"))
		}

		failed := summary.Results[0]
		Expect(failed.Reason).To(Equal(collector.FetchFailed))
		Expect(failed.Err).To(MatchError(errNetwork))
		Expect(failed.Record).To(BeNil())
		Expect(summary.NumSkipped()).To(Equal(1))
	})

	It("discards a ticker when a later statement fails", func() {
		fake.statements["TCS.NS"] = fullStatements(100)
		failing := &failingKindProvider{fakeProvider: fake, kind: data.IncomeStatement}
		coll := &collector.Collector{Provider: failing, Fields: data.Fields}
		summary, err := coll.Run(ctx, []string{"TCS.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.tables[0]).To(BeEmpty())
		Expect(summary.Results[0].Reason).To(Equal(collector.FetchFailed))
	})

	It("collects all eleven fields from three statements", func() {
		fake.statements["TCS.NS"] = fullStatements(100)

		coll := &collector.Collector{Provider: fake, Fields: data.Fields}
		_, err := coll.Run(ctx, []string{"TCS.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(writer.tables[0]).To(HaveLen(1))
		record := writer.tables[0][0]
		for idx, field := range data.Fields {
			Expect(field.Value(record)).To(HaveValue(Equal(100+float64(idx))), field.Key)
		}
		Expect(fake.calls).To(Equal([]string{"TCS.NS/cash-flow", "TCS.NS/balance-sheet", "TCS.NS/income-statement"}))
	})

	It("writes the same table on repeated runs", func() {
		fake.statements["SBIN.NS"] = cashFlow(nil, ptr(3))
		tickers := []string{"TCS.NS", "SBIN.NS", "INFY.NS"}

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		_, err := coll.Run(ctx, tickers, writer)
		Expect(err).NotTo(HaveOccurred())
		_, err = coll.Run(ctx, tickers, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(writer.tables).To(HaveLen(2))
		Expect(writer.tables[1]).To(Equal(writer.tables[0]))
	})

	It("returns write failures", func() {
		writer.err = errors.New("disk full")

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		_, err := coll.Run(ctx, []string{"TCS.NS"}, writer)
		Expect(err).To(MatchError("disk full"))
	})

	It("reports success to the monitor with the run id", func() {
		monitor := &fakeMonitor{}
		fake.failures["INFY.NS"] = errNetwork

		coll := &collector.Collector{Provider: fake, Fields: cashflow, Monitor: monitor}
		summary, err := coll.Run(ctx, []string{"TCS.NS", "INFY.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(monitor.events).To(Equal([]string{"start", "success: kept 1 of 2 tickers"}))
		Expect(monitor.runIDs).To(HaveEach(summary.RunID))
	})

	It("reports write failures to the monitor", func() {
		monitor := &fakeMonitor{}
		writer.err = errors.New("disk full")

		coll := &collector.Collector{Provider: fake, Fields: cashflow, Monitor: monitor}
		_, err := coll.Run(ctx, []string{"TCS.NS"}, writer)
		Expect(err).To(MatchError("disk full"))
		Expect(monitor.events).To(Equal([]string{"start", "fail: disk full"}))
	})

	It("warns before emptying the table when every ticker fails", func() {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		ctx = logger.WithContext(ctx)

		fake.failures["TCS.NS"] = errNetwork
		fake.failures["INFY.NS"] = errNetwork

		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		summary, err := coll.Run(ctx, []string{"TCS.NS", "INFY.NS"}, writer)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Records).To(BeEmpty())
		Expect(writer.tables).To(Equal([][]*data.FinancialRecord{{}}))

		Expect(buf.String()).To(ContainSubstring(`"level":"warn"`))
		Expect(buf.String()).To(ContainSubstring("no records survived; the table will be emptied"))
		Expect(buf.String()).To(ContainSubstring(`"NumFetched":0`))
	})

	It("parses configured ticker lists", func() {
		Expect(collector.ParseTickers("tcs.ns, INFY.NS\nsbin.ns  ,")).To(Equal([]string{"TCS.NS", "INFY.NS", "SBIN.NS"}))
		Expect(collector.ParseTickers("")).To(BeEmpty())
	})

	It("refuses to run without tickers", func() {
		coll := &collector.Collector{Provider: fake, Fields: cashflow}
		_, err := coll.Run(ctx, nil, writer)
		Expect(err).To(MatchError(collector.ErrNoTickers))
		Expect(writer.tables).To(BeEmpty())
	})
})

type fakeMonitor struct {
	events []string
	runIDs []uuid.UUID
}

func (fake *fakeMonitor) Start(ctx context.Context, runID uuid.UUID) error {
	fake.events = append(fake.events, "start")
	fake.runIDs = append(fake.runIDs, runID)
	return nil
}

func (fake *fakeMonitor) Success(ctx context.Context, runID uuid.UUID, body string) error {
	fake.events = append(fake.events, "success: "+body)
	fake.runIDs = append(fake.runIDs, runID)
	return nil
}

func (fake *fakeMonitor) Fail(ctx context.Context, runID uuid.UUID, err error) error {
	fake.events = append(fake.events, "fail: "+err.Error())
	fake.runIDs = append(fake.runIDs, runID)
	return errors.New("ping endpoint unreachable")
}

type failingKindProvider struct {
	*fakeProvider
	kind data.StatementKind
}

func (failing *failingKindProvider) Statement(ctx context.Context, ticker string, kind data.StatementKind) (*data.Statement, error) {
	if kind == failing.kind {
		return nil, errNetwork
	}
	return failing.fakeProvider.Statement(ctx, ticker, kind)
}
