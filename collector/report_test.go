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
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvscreen/collector"
	"github.com/penny-vault/pvscreen/data"
)

var _ = Describe("Report", func() {
	var summary *collector.RunSummary

	BeforeEach(func() {
		kept := &data.FinancialRecord{Ticker: "TCS.NS", FreeCashFlow: ptr(1), OperatingCashFlow: ptr(2)}
		start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

		summary = &collector.RunSummary{
			RunID:     uuid.MustParse("0b6e2f5e-9a61-4d35-8a3f-3d1c1b1f2a10"),
			StartTime: start,
			EndTime:   start.Add(90 * time.Second),
			Results: []*collector.Result{
				{Ticker: "TCS.NS", Record: kept},
				{Ticker: "SBIN.NS", Reason: collector.MissingFields, Missing: []string{"free_cash_flow"}},
				{Ticker: "INFY.NS", Reason: collector.FetchFailed, Err: errNetwork},
			},
			Records: []*data.FinancialRecord{kept},
		}
	})

	It("lists every ticker with its outcome", func() {
		Expect(summary.Rows()).To(Equal([][]string{
			{"TCS.NS", "kept", ""},
			{"SBIN.NS", "missing-fields", "free_cash_flow"},
			{"INFY.NS", "fetch-failed", "connection reset by peer"},
		}))
	})

	It("renders the table", func() {
		report := summary.Report()
		Expect(report).To(ContainSubstring("COLLECTION SUMMARY"))
		Expect(report).To(ContainSubstring("0b6e2f5e-9a61-4d35-8a3f-3d1c1b1f2a10"))
		Expect(report).To(ContainSubstring("SBIN.NS"))
		Expect(report).To(ContainSubstring("connection reset by peer"))
	})

	It("formats the elapsed time", func() {
		Expect(summary.Duration()).To(Equal("1 minute 30 seconds"))
		Expect(summary.NumSkipped()).To(Equal(2))
	})

	It("marks runs that never finished", func() {
		summary.EndTime = time.Time{}
		Expect(summary.Duration()).To(Equal("incomplete"))
	})
})
