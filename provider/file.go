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
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvscreen/data"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrNoFile = errors.New("file provider requires file.path")

// File serves statements from a CSV file with the columns
// ticker,statement,label,as_of,value
type File struct {
	// Path overrides file.path when set
	Path string

	once       sync.Once
	loadErr    error
	statements map[string]map[data.StatementKind]*fileStatement
}

type fileRow struct {
	Ticker    string `csv:"ticker"`
	Statement string `csv:"statement"`
	Label     string `csv:"label"`
	AsOf      string `csv:"as_of"`
	Value     string `csv:"value"`
}

type fileStatement struct {
	asOf map[string]string
	rows map[string]*float64
}

func (file *File) Name() string {
	return "CSV File"
}

func (file *File) ConfigDescription() map[string]string {
	return map[string]string{
		"file.path": "Path to a CSV file with the columns ticker,statement,label,as_of,value",
	}
}

func (file *File) Description() string {
	return `Reads financial statements from a local CSV file. Each line holds one reported value; when a label is reported for several dates the newest as_of wins. An empty value marks the label as reported without a number.`
}

func (file *File) load() error {
	file.once.Do(func() {
		path := file.Path
		if path == "" {
			path = viper.GetString("file.path")
		}
		if path == "" {
			file.loadErr = ErrNoFile
			return
		}

		fh, err := os.Open(path)
		if err != nil {
			file.loadErr = err
			return
		}
		defer fh.Close()

		rows := make([]*fileRow, 0)
		if err := gocsv.UnmarshalFile(fh, &rows); err != nil {
			file.loadErr = err
			return
		}

		file.statements = make(map[string]map[data.StatementKind]*fileStatement)
		for idx, row := range rows {
			if err := file.add(row); err != nil {
				file.loadErr = fmt.Errorf("%s line %d: %w", path, idx+2, err)
				return
			}
		}
	})

	return file.loadErr
}

func (file *File) add(row *fileRow) error {
	var val *float64
	if strings.TrimSpace(row.Value) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		val = &parsed
	}

	kinds, ok := file.statements[row.Ticker]
	if !ok {
		kinds = make(map[data.StatementKind]*fileStatement)
		file.statements[row.Ticker] = kinds
	}

	kind := data.StatementKind(row.Statement)
	statement, ok := kinds[kind]
	if !ok {
		statement = &fileStatement{
			asOf: make(map[string]string),
			rows: make(map[string]*float64),
		}
		kinds[kind] = statement
	}

	if prev, ok := statement.asOf[row.Label]; ok && row.AsOf < prev {
		return nil
	}

	statement.asOf[row.Label] = row.AsOf
	statement.rows[row.Label] = val

	return nil
}

func (file *File) Statement(ctx context.Context, ticker string, kind data.StatementKind) (*data.Statement, error) {
	if err := file.load(); err != nil {
		return nil, err
	}

	kinds, ok := file.statements[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	statement := data.NewStatement(ticker, kind)
	if stored, ok := kinds[kind]; ok {
		for label, val := range stored.rows {
			if val != nil {
				copied := *val
				val = &copied
			}
			statement.Rows[label] = val
		}
	}

	zerolog.Ctx(ctx).Debug().Str("Ticker", ticker).Str("Statement", string(kind)).Int("NumRows", len(statement.Rows)).Msg("read statement from file")

	return statement, nil
}
