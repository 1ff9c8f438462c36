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
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvscreen/collector"
	"github.com/penny-vault/pvscreen/data"
	"github.com/penny-vault/pvscreen/healthcheck"
	"github.com/penny-vault/pvscreen/library"
	"github.com/penny-vault/pvscreen/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type dbConfig struct {
	URL   string `toml:"url"`
	Table string `toml:"table"`
}

type healthchecksConfig struct {
	CheckID string `toml:"check_id,omitempty"`
}

type configFile struct {
	Provider     string             `toml:"provider"`
	Fields       string             `toml:"fields"`
	Tickers      []string           `toml:"tickers"`
	DB           dbConfig           `toml:"db"`
	Healthchecks healthchecksConfig `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database and collector settings and save them to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := loggerContext()

		var (
			tickers   = strings.Join(collector.DefaultTickers, ", ")
			monitored bool
		)

		config := configFile{
			Provider: "yahoo",
			Fields:   data.FullProfile,
			DB: dbConfig{
				URL:   viper.GetString("db.url"),
				Table: library.DefaultTable,
			},
		}

		providerOptions := make([]huh.Option[string], 0, len(provider.Map))
		for _, name := range provider.Names() {
			providerOptions = append(providerOptions, huh.NewOption(provider.Map[name].Name(), name))
		}

		form := huh.NewForm(
			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&config.DB.URL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("What should the financials table be called?").
					Value(&config.DB.Table),
			),

			// Collector settings
			huh.NewGroup(
				huh.NewText().
					Title("Which tickers should be collected? (comma separated)").
					Value(&tickers),

				huh.NewSelect[string]().
					Title("Which data provider should statements come from?").
					Options(providerOptions...).
					Value(&config.Provider),

				huh.NewSelect[string]().
					Title("Which fields should be collected?").
					Options(
						huh.NewOption("All eleven fields (three statements)", data.FullProfile),
						huh.NewOption("Free and operating cash flow only", data.CashFlowProfile),
					).
					Value(&config.Fields),

				huh.NewConfirm().
					Title("Should a healthchecks.io monitor be created for the collector?").
					Value(&monitored),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		config.DB.Table = library.TableName(config.DB.Table)
		config.Tickers = collector.ParseTickers(tickers)

		if monitored {
			checkSlug := slug.Make(fmt.Sprintf("pvscreen collect %s", config.DB.Table))
			checkID, err := healthcheck.Create(ctx, fmt.Sprintf("pvscreen collect (%s)", config.DB.Table), checkSlug, []string{"pvscreen"}, "0 18 * * 1-5")
			if err != nil {
				log.Error().Err(err).Msg("could not create health check; continuing without monitoring")
			} else {
				config.Healthchecks.CheckID = checkID
			}
		}

		// save settings to config file
		configFN := cfgFile
		if configFN == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("could not determine user home directory")
			}
			configFN = filepath.Join(home, ".pvscreen.toml")
		}

		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Int("NumTickers", len(config.Tickers)).Msg("pvscreen has been initialized; run `pvscreen collect` to fill the table")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
