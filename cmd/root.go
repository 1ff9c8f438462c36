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
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/penny-vault/pvscreen/library"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvscreen",
	Short: "pvscreen collects company financials and screens them against thresholds",
	Long: `pvscreen is a command line utility for building a small table of company
financials and screening it. It has two halves that share one database table:

	* collect: fetch the cash-flow, balance-sheet and income statements of a
	  list of tickers, drop companies with missing data and replace the table
	* filter: pick a threshold and a direction for each column and list the
	  companies that pass every condition

Other sub-commands describe the table (info), write it to CSV or Parquet
(export) and create a configuration file (init).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvscreen.toml)")

	rootCmd.PersistentFlags().String("db-url", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db-url failed")
	}

	rootCmd.PersistentFlags().String("table", library.DefaultTable, "name of the financials table")
	if err := viper.BindPFlag("db.table", rootCmd.PersistentFlags().Lookup("table")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for table failed")
	}

	rootCmd.PersistentFlags().String("log-level", "info", "logging level (trace, debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// variables in .env are exported before viper looks at the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvscreen" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvscreen")
	}

	// DB_URL sets db.url, YAHOO_RATE_LIMIT sets yahoo.rate_limit
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}

	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Warn().Str("Level", viper.GetString("log.level")).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// connect opens the library configured by db.url and db.table
func connect(ctx context.Context) *library.Library {
	dbURL := viper.GetString("db.url")
	if dbURL == "" {
		log.Fatal().Msg("no database configured; set db.url or run `pvscreen init`")
	}

	myLibrary, err := library.New(ctx, dbURL, viper.GetString("db.table"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to library")
	}

	return myLibrary
}

// loggerContext attaches the global logger to a background context
func loggerContext() context.Context {
	return log.Logger.WithContext(context.Background())
}
