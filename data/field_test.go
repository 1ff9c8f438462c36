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

func ptr(v float64) *float64 {
	return &v
}

var _ = Describe("Field", func() {
	var statement *data.Statement

	BeforeEach(func() {
		statement = data.NewStatement("TCS.NS", data.CashFlow)
	})

	Context("extracting values from a statement", func() {
		It("reads the primary label", func() {
			statement.Rows["Free Cash Flow"] = ptr(50000)
			field, err := data.FieldByKey("free_cash_flow")
			Expect(err).NotTo(HaveOccurred())
			Expect(field.Extract(statement)).To(HaveValue(Equal(50000.0)))
		})

		It("falls back when the primary label is absent", func() {
			statement.Rows["Total Cash From Operating Activities"] = ptr(80000)
			field, err := data.FieldByKey("operating_cash_flow")
			Expect(err).NotTo(HaveOccurred())
			Expect(field.Extract(statement)).To(HaveValue(Equal(80000.0)))
		})

		It("does not fall back when the primary label is present but empty", func() {
			statement.Rows["Operating Cash Flow"] = nil
			statement.Rows["Total Cash From Operating Activities"] = ptr(80000)
			field, err := data.FieldByKey("operating_cash_flow")
			Expect(err).NotTo(HaveOccurred())
			Expect(field.Extract(statement)).To(BeNil())
		})

		It("returns nil when no source label is present", func() {
			statement.Rows["Capital Expenditure"] = ptr(-100)
			for _, key := range []string{"free_cash_flow", "operating_cash_flow"} {
				field, err := data.FieldByKey(key)
				Expect(err).NotTo(HaveOccurred())
				Expect(field.Extract(statement)).To(BeNil())
			}
		})

		It("copies the value instead of aliasing the statement", func() {
			statement.Rows["Free Cash Flow"] = ptr(10)
			field, _ := data.FieldByKey("free_cash_flow")
			val := field.Extract(statement)
			*val = 20
			stored, ok := statement.Lookup("Free Cash Flow")
			Expect(ok).To(BeTrue())
			Expect(stored).To(Equal(10.0))
		})
	})

	Context("records", func() {
		It("sets and reads values through the registry", func() {
			record := &data.FinancialRecord{Ticker: "INFY.NS"}
			for idx, field := range data.Fields {
				field.Set(record, ptr(float64(idx)))
			}
			Expect(record.FreeCashFlow).To(HaveValue(Equal(0.0)))
			Expect(record.NormalizedEBITDA).To(HaveValue(Equal(10.0)))
			Expect(record.Complete(data.Fields)).To(BeTrue())
		})

		It("reports missing fields for the tracked set only", func() {
			record := &data.FinancialRecord{Ticker: "INFY.NS", FreeCashFlow: ptr(1), OperatingCashFlow: ptr(2)}
			cashflow, err := data.Profile(data.CashFlowProfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Complete(cashflow)).To(BeTrue())
			Expect(record.Complete(data.Fields)).To(BeFalse())
			Expect(record.Missing(data.Fields)).To(HaveLen(9))
			Expect(record.Missing(data.Fields)).To(ContainElement("normalized_ebitda"))
		})
	})

	Context("field sets", func() {
		It("rejects unknown keys", func() {
			_, err := data.FieldsByKey("free_cash_flow", "price")
			Expect(err).To(MatchError(data.ErrUnknownField))
		})

		It("rejects unknown profiles", func() {
			_, err := data.Profile("everything")
			Expect(err).To(MatchError(data.ErrUnknownProfile))
		})

		It("only needs the cash-flow statement for the cashflow profile", func() {
			fields, err := data.Profile(data.CashFlowProfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Statements(fields)).To(Equal([]data.StatementKind{data.CashFlow}))
		})

		It("needs all statements for the full profile", func() {
			Expect(data.Statements(data.Fields)).To(Equal(data.StatementKinds))
		})

		It("maps reflected columns back to fields in registry order", func() {
			fields := data.FieldsForColumns([]string{"ticker", "revenue", "free_cash_flow", "unrelated"})
			Expect(fields).To(HaveLen(2))
			Expect(fields[0].Key).To(Equal("free_cash_flow"))
			Expect(fields[1].Key).To(Equal("revenue"))
		})
	})
})
