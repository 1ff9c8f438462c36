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
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvscreen/collector"
)

var _ = Describe("Tickers", func() {
	It("splits a comma separated TICKERS variable", func() {
		Expect(os.Setenv("TICKERS", "TCS.NS,INFY.NS")).To(Succeed())
		DeferCleanup(os.Unsetenv, "TICKERS")

		conf := viper.New()
		conf.AutomaticEnv()

		Expect(collector.ResolveTickers(nil, conf.GetStringSlice("tickers"))).To(Equal([]string{"TCS.NS", "INFY.NS"}))
	})

	It("keeps a list from the config file as is", func() {
		Expect(collector.ResolveTickers(nil, []string{"TCS.NS", "sbin.ns"})).To(Equal([]string{"TCS.NS", "SBIN.NS"}))
	})

	It("prefers command line arguments", func() {
		Expect(collector.ResolveTickers([]string{"infy.ns,tcs.ns"}, []string{"SBIN.NS"})).To(Equal([]string{"INFY.NS", "TCS.NS"}))
	})

	It("falls back to the default tickers", func() {
		Expect(collector.ResolveTickers(nil, nil)).To(Equal(collector.DefaultTickers))
		Expect(collector.ResolveTickers([]string{" , "}, []string{""})).To(Equal(collector.DefaultTickers))
	})
})
