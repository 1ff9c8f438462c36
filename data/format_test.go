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
package data_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvscreen/data"
)

var _ = Describe("FormatNumber", func() {
	DescribeTable("thousands separators",
		func(val *float64, expected string) {
			Expect(data.FormatNumber(val)).To(Equal(expected))
		},
		Entry("small", ptr(999), "999"),
		Entry("thousands", ptr(50000), "50,000"),
		Entry("millions", ptr(1234567), "1,234,567"),
		Entry("negative", ptr(-20000), "-20,000"),
		Entry("missing", nil, "-"),
	)

	It("builds display rows in field order", func() {
		fields, err := data.Profile(data.CashFlowProfile)
		Expect(err).NotTo(HaveOccurred())

		record := &data.FinancialRecord{Ticker: "TCS.NS", FreeCashFlow: ptr(50000), OperatingCashFlow: ptr(80000)}
		Expect(data.DisplayHeaders(fields)).To(Equal([]string{"Ticker", "Free Cash Flow", "Operating Cash Flow"}))
		Expect(data.DisplayRow(record, fields)).To(Equal([]string{"TCS.NS", "50,000", "80,000"}))
	})
})
