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
	"time"

	"github.com/penny-vault/pvscreen/backblaze"
	"github.com/penny-vault/pvscreen/export"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportFormat string
	exportOut    string
	exportUpload bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the financials table to a CSV or Parquet file",
	Long: `The export sub-command reads the whole financials table and writes it to a local
file. With --upload the file is also copied to the Backblaze B2 bucket named by
backblaze.bucket, in a directory named after the current year.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := loggerContext()

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid export format")
		}

		myLibrary := connect(ctx)
		defer myLibrary.Close()

		fields, err := myLibrary.Fields(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("Table", myLibrary.Table).Msg("could not read table columns")
		}

		records, err := myLibrary.All(ctx, fields)
		if err != nil {
			log.Fatal().Err(err).Str("Table", myLibrary.Table).Msg("could not read table contents")
		}

		fn := exportOut
		if fn == "" {
			fn = export.FileName(".", myLibrary.Table, format)
		}

		if err := export.Write(ctx, records, fn, format); err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("export failed")
		}

		if exportUpload {
			bucket := viper.GetString("backblaze.bucket")
			if err := backblaze.Upload(ctx, fn, bucket, time.Now().Format("2006")); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Str("BucketName", bucket).Msg("upload failed")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.CSV), "output format (csv, parquet)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default <table>.<format>)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "copy the file to Backblaze B2")
}
