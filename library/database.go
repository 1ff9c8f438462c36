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
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvscreen/data"
	"github.com/penny-vault/pvscreen/filter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTable     = "financials"
	collectedPrefix  = "collected_at="
	numericColumnSQL = "DOUBLE PRECISION"
)

var (
	ErrTableNotFound = errors.New("table not found")
)

// PgxIface is the subset of pgxpool.Pool used by the library
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type Library struct {
	DBUrl string
	Table string

	Pool PgxIface
}

// TableName normalises a configured table name into a lower case identifier
// made of letters, digits and underscores
func TableName(name string) string {
	tbl := strings.ReplaceAll(slug.Make(name), "-", "_")
	if tbl == "" {
		return DefaultTable
	}
	return tbl
}

// New connects to the database holding the financials table
func New(ctx context.Context, dbURL, table string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	return &Library{
		DBUrl: dbURL,
		Table: TableName(table),
		Pool:  pool,
	}, nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

func (myLibrary *Library) ident() string {
	return pgx.Identifier{myLibrary.Table}.Sanitize()
}

// Replace drops the table, recreates it with a column per field and bulk
// loads records. All steps run in one transaction so readers see either the
// previous or the new table.
func (myLibrary *Library) Replace(ctx context.Context, fields []*data.Field, records []*data.FinancialRecord) error {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				log.Error().Err(err).Msg("error rollingback tx")
			}
		}
	}()

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", myLibrary.ident())); err != nil {
		return err
	}

	schema := createTableSQL(myLibrary.ident(), fields)
	logger.Debug().Str("SQL", schema).Msg("creating table")
	if _, err := tx.Exec(ctx, schema); err != nil {
		return err
	}

	columns := Columns(fields)
	numRows, err := tx.CopyFrom(ctx, pgx.Identifier{myLibrary.Table}, columns,
		pgx.CopyFromSlice(len(records), func(idx int) ([]any, error) {
			record := records[idx]
			row := make([]any, 0, len(columns))
			row = append(row, record.Ticker)
			for _, field := range fields {
				row = append(row, field.Value(record))
			}
			return row, nil
		}))
	if err != nil {
		logger.Error().Err(err).Str("Table", myLibrary.Table).Msg("bulk copy of records failed")
		return err
	}

	collectedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(ctx, fmt.Sprintf("COMMENT ON TABLE %s IS '%s%s'", myLibrary.ident(), collectedPrefix, collectedAt)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().Str("Table", myLibrary.Table).Int64("NumRows", numRows).Msg("replaced table contents")

	return nil
}

func createTableSQL(ident string, fields []*data.Field) string {
	defs := make([]string, 0, len(fields)+1)
	defs = append(defs, "ticker TEXT NOT NULL")
	for _, field := range fields {
		defs = append(defs, fmt.Sprintf("%s %s", field.Key, numericColumnSQL))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
}

// Columns returns the table columns for a field set: ticker first, then one
// column per field
func Columns(fields []*data.Field) []string {
	columns := make([]string, 0, len(fields)+1)
	columns = append(columns, "ticker")
	for _, field := range fields {
		columns = append(columns, field.Key)
	}
	return columns
}

// Reflect reads the table's column names from the database catalog
func (myLibrary *Library) Reflect(ctx context.Context) ([]string, error) {
	var columns []string
	err := pgxscan.Select(ctx, myLibrary.Pool, &columns, `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`, myLibrary.Table)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, myLibrary.Table)
	}

	return columns, nil
}

// Fields returns the tracked fields present in the table
func (myLibrary *Library) Fields(ctx context.Context) ([]*data.Field, error) {
	columns, err := myLibrary.Reflect(ctx)
	if err != nil {
		return nil, err
	}
	return data.FieldsForColumns(columns), nil
}

// SelectSQL builds the read query for fields restricted by criteria
func (myLibrary *Library) SelectSQL(fields []*data.Field, criteria filter.Criteria) (string, []any) {
	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(Columns(fields), ", "), myLibrary.ident())

	where, args := criteria.Where(0)
	if where != "" {
		sql += " WHERE " + where
	}

	return sql + " ORDER BY ticker", args
}

// Filter returns the records matching every condition in criteria
func (myLibrary *Library) Filter(ctx context.Context, fields []*data.Field, criteria filter.Criteria) ([]*data.FinancialRecord, error) {
	sql, args := myLibrary.SelectSQL(fields, criteria)
	zerolog.Ctx(ctx).Debug().Str("SQL", sql).Interface("Args", args).Msg("filtering records")

	records := make([]*data.FinancialRecord, 0)
	if err := pgxscan.Select(ctx, myLibrary.Pool, &records, sql, args...); err != nil {
		return nil, err
	}

	return records, nil
}

// All returns every record in the table
func (myLibrary *Library) All(ctx context.Context, fields []*data.Field) ([]*data.FinancialRecord, error) {
	return myLibrary.Filter(ctx, fields, nil)
}

// NumRecords returns the number of rows in the table
func (myLibrary *Library) NumRecords(ctx context.Context) (int64, error) {
	var count int64
	err := myLibrary.Pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", myLibrary.ident())).Scan(&count)
	return count, err
}

// LastCollected returns when the table was last replaced; the zero time if
// it was not written by the collector
func (myLibrary *Library) LastCollected(ctx context.Context) (time.Time, error) {
	var comment string
	err := myLibrary.Pool.QueryRow(ctx, `SELECT coalesce(obj_description(c.oid, 'pg_class'), '') FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace WHERE n.nspname = current_schema() AND c.relname = $1`, myLibrary.Table).Scan(&comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	if !strings.HasPrefix(comment, collectedPrefix) {
		return time.Time{}, nil
	}

	collectedAt, err := time.Parse(time.RFC3339, strings.TrimPrefix(comment, collectedPrefix))
	if err != nil {
		return time.Time{}, nil
	}

	return collectedAt, nil
}
