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
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvscreen/data"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a format name in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case Parquet:
		return Parquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension, including the dot
func (format Format) Extension() string {
	return "." + string(format)
}

// FileName builds the default output name for a table
func FileName(dir, table string, format Format) string {
	return filepath.Join(dir, table+format.Extension())
}

// Write saves records to fn in the requested format
func Write(ctx context.Context, records []*data.FinancialRecord, fn string, format Format) error {
	switch format {
	case CSV:
		return writeCSV(ctx, records, fn)
	case Parquet:
		return writeParquet(ctx, records, fn)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeCSV(ctx context.Context, records []*data.FinancialRecord, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}

	if err := gocsv.MarshalFile(&records, fh); err != nil {
		fh.Close()
		zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("csv write failed")
		return err
	}

	if err := fh.Close(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("FileName", fn).Msg("csv close failed")
		return err
	}

	zerolog.Ctx(ctx).Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("csv write finished")
	return nil
}

func writeParquet(ctx context.Context, records []*data.FinancialRecord, fn string) error {
	logger := zerolog.Ctx(ctx)

	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.FinancialRecord), 4)
	if err != nil {
		logger.Error().Err(err).Msg("parquet write failed")
		return err
	}

	pw.PageSize = 8 * 1024
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, record := range records {
		if err := pw.Write(record); err != nil {
			logger.Error().Err(err).Str("Ticker", record.Ticker).Msg("parquet write failed for record")
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		logger.Error().Err(err).Msg("parquet write failed")
		return err
	}

	logger.Info().Int("NumRecords", len(records)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}
