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
package backblaze_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvscreen/backblaze"
)

var _ = Describe("Upload", func() {
	It("places files under the directory", func() {
		Expect(backblaze.ObjectName("2024", "/tmp/out/financials.parquet")).To(Equal("2024/financials.parquet"))
		Expect(backblaze.ObjectName("", "/tmp/out/financials.csv")).To(Equal("financials.csv"))
	})

	It("requires credentials", func() {
		viper.Set("backblaze.application_id", "")
		viper.Set("backblaze.application_key", "")
		err := backblaze.Upload(context.Background(), "/tmp/out/financials.csv", "pvscreen", "")
		Expect(err).To(MatchError(backblaze.ErrNoCredentials))
	})
})
