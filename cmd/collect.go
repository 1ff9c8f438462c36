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
package cmd

import (
	"fmt"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvscreen/collector"
	"github.com/penny-vault/pvscreen/data"
	"github.com/penny-vault/pvscreen/healthcheck"
	"github.com/penny-vault/pvscreen/provider"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showReport bool

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [ticker...]",
	Short: "Fetch financial statements and replace the financials table",
	Long: `The collect sub-command fetches the statements needed by the configured field
set for each ticker, one ticker at a time. A ticker whose statements cannot be
fetched is skipped, and so is a ticker missing any tracked field. The remaining
records replace the contents of the financials table.

Tickers given as arguments override the configured list.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := loggerContext()

		fields, err := data.Profile(viper.GetString("fields"))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid field set")
		}

		dataProvider, err := provider.Get(viper.GetString("provider"))
		if err != nil {
			log.Fatal().Err(err).Strs("Available", provider.Names()).Msg("invalid provider")
		}

		tickers := collector.ResolveTickers(args, viper.GetStringSlice("tickers"))

		monitor, err := healthcheck.NewMonitor(viper.GetString("healthchecks.check_id"))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid health check configuration")
		}

		myLibrary := connect(ctx)
		defer myLibrary.Close()

		coll := &collector.Collector{
			Provider: dataProvider,
			Fields:   fields,
		}
		if monitor != nil {
			coll.Monitor = monitor
		}

		summary, err := coll.Run(ctx, tickers, myLibrary)
		if err != nil {
			event := log.Fatal().Err(err).Str("Table", myLibrary.Table)
			if summary != nil {
				event = event.Str("RunID", summary.RunID.String())
			}
			event.Msg("could not save records")
		}

		log.Info().
			Str("RunID", summary.RunID.String()).
			Str("RunTime", durafmt.Parse(summary.EndTime.Sub(summary.StartTime)).String()).
			Int("NumberSaved", len(summary.Records)).
			Int("NumberSkipped", summary.NumSkipped()).
			Msg("collection finished")

		if showReport && zerolog.GlobalLevel() <= zerolog.InfoLevel {
			fmt.Println(summary.Report())
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String("provider", "yahoo", "data provider to fetch statements from")
	if err := viper.BindPFlag("provider", collectCmd.Flags().Lookup("provider")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for provider failed")
	}

	collectCmd.Flags().String("fields", data.FullProfile, "field set to collect (full, cashflow)")
	if err := viper.BindPFlag("fields", collectCmd.Flags().Lookup("fields")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for fields failed")
	}

	collectCmd.Flags().BoolVar(&showReport, "report", true, "print a summary table of kept and dropped tickers")
}
