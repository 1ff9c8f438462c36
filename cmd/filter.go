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
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/penny-vault/pvscreen/data"
	"github.com/penny-vault/pvscreen/filter"
	"github.com/penny-vault/pvscreen/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	simpleForm  bool
	whereExprs  []string
	showContent bool
)

// filterCmd represents the filter command
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Screen the financials table against thresholds",
	Long: `The filter sub-command reads the columns of the financials table and asks for a
threshold and a direction (greater than or less than) for each of them. Only
companies that satisfy every condition are listed. A threshold of zero is a
real condition: "greater than 0" keeps positive values only.

Use --simple to screen on free and operating cash flow with less-than only,
or pass one or more --where conditions to skip the form entirely:

    pvscreen filter --where "free_cash_flow<30000" --where "operating_cash_flow<90000"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := loggerContext()

		myLibrary := connect(ctx)
		defer myLibrary.Close()

		fields, err := myLibrary.Fields(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("Table", myLibrary.Table).Msg("could not read table columns")
		}

		if len(whereExprs) > 0 {
			criteria, err := filter.ParseAll(whereExprs)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid filter condition")
			}
			if err := checkColumns(fields, criteria); err != nil {
				log.Fatal().Err(err).Str("Table", myLibrary.Table).Msg("invalid filter condition")
			}
			if showContent {
				printContents(ctx, myLibrary, fields)
			}
			printMatches(ctx, myLibrary, fields, criteria)
			return
		}

		inputs := filter.NewInputs(fields)
		if simpleForm {
			inputs = filter.NewSimpleInputs()
			if err := checkColumns(fields, filter.Simple(0, 0)); err != nil {
				log.Fatal().Err(err).Str("Table", myLibrary.Table).Msg("table cannot be used with --simple")
			}
		}

		for {
			showAll := showContent
			if err := inputs.Form(&showAll).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return
				}
				log.Fatal().Err(err).Msg("failed to run filter form")
			}

			criteria, err := inputs.Criteria()
			if err != nil {
				log.Error().Err(err).Msg("invalid filter condition")
				continue
			}

			if showAll {
				printContents(ctx, myLibrary, fields)
			}

			printMatches(ctx, myLibrary, fields, criteria)

			again := true
			confirm := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Filter again?").
					Value(&again),
			))
			if err := confirm.Run(); err != nil || !again {
				return
			}
		}
	},
}

// checkColumns makes sure every condition refers to a column of the table
func checkColumns(fields []*data.Field, criteria filter.Criteria) error {
	present := make(map[string]bool, len(fields))
	for _, field := range fields {
		present[field.Key] = true
	}

	for _, cond := range criteria {
		if !present[cond.Field.Key] {
			return fmt.Errorf("%w: %s is not a column of the table", data.ErrUnknownField, cond.Field.Key)
		}
	}
	return nil
}

func printMatches(ctx context.Context, myLibrary *library.Library, fields []*data.Field, criteria filter.Criteria) {
	records, err := myLibrary.Filter(ctx, fields, criteria)
	if err != nil {
		log.Fatal().Err(err).Str("Criteria", criteria.String()).Msg("filter query failed")
	}

	log.Debug().Str("Criteria", criteria.String()).Int("NumRecords", len(records)).Msg("filtered records")
	fmt.Println(filter.Table(fields, records))
}

// printContents dumps the whole table, independent of the current filter
func printContents(ctx context.Context, myLibrary *library.Library, fields []*data.Field) {
	records, err := myLibrary.All(ctx, fields)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read table contents")
	}

	doc, err := filter.Dump(records)
	if err != nil {
		log.Fatal().Err(err).Msg("could not encode table contents")
	}

	fmt.Print(renderMarkdown(doc))
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().BoolVar(&simpleForm, "simple", false, "only screen free and operating cash flow, both with less-than")
	filterCmd.Flags().StringArrayVar(&whereExprs, "where", nil, "condition such as free_cash_flow<30000; skips the form (repeatable)")
	filterCmd.Flags().BoolVar(&showContent, "show-all", false, "dump the whole table before the results")
}
