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
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvscreen/data"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	yahooBaseURL        = "https://query2.finance.yahoo.com"
	yahooTimeseriesPath = "/ws/fundamentals-timeseries/v1/finance/timeseries/{ticker}"
	yahooSeriesPrefix   = "annual"
	yahooUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	yahooDefaultLimit   = 60
)

// Yahoo reads annual financial statements from the Yahoo Finance
// fundamentals-timeseries API
type Yahoo struct {
	// BaseURL overrides yahoo.base_url when set
	BaseURL string

	// RateLimit is the maximum number of requests per minute; overrides
	// yahoo.rate_limit when set
	RateLimit int

	once    sync.Once
	client  *resty.Client
	limiter *rate.Limiter
}

func (yahoo *Yahoo) Name() string {
	return "Yahoo Finance"
}

func (yahoo *Yahoo) ConfigDescription() map[string]string {
	return map[string]string{
		"yahoo.base_url":   "Base URL of the Yahoo Finance API",
		"yahoo.rate_limit": "What is the maximum number of requests per minute?",
		"yahoo.crumb":      "Optional crumb sent with each request",
	}
}

func (yahoo *Yahoo) Description() string {
	return `Yahoo Finance publishes annual cash-flow, balance sheet, and income statements for listed companies worldwide. Tickers use Yahoo's exchange suffixes (e.g. TCS.NS for the National Stock Exchange of India).`
}

func (yahoo *Yahoo) setup() {
	yahoo.once.Do(func() {
		baseURL := yahoo.BaseURL
		if baseURL == "" {
			baseURL = viper.GetString("yahoo.base_url")
		}
		if baseURL == "" {
			baseURL = yahooBaseURL
		}

		rateLimit := yahoo.RateLimit
		if rateLimit <= 0 {
			rateLimit = viper.GetInt("yahoo.rate_limit")
		}
		if rateLimit <= 0 {
			rateLimit = yahooDefaultLimit
		}

		yahoo.client = resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", yahooUserAgent).
			SetTimeout(30 * time.Second)

		if crumb := viper.GetString("yahoo.crumb"); crumb != "" {
			yahoo.client.SetQueryParam("crumb", crumb)
		}

		yahoo.limiter = rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1)
	})
}

// Statement requests every series the tracked fields of kind need and keeps
// the most recent reported value of each
func (yahoo *Yahoo) Statement(ctx context.Context, ticker string, kind data.StatementKind) (*data.Statement, error) {
	logger := zerolog.Ctx(ctx)
	yahoo.setup()

	seriesTypes := yahooSeriesTypes(kind)
	if len(seriesTypes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotServed, kind)
	}

	if err := yahoo.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParam("symbol", ticker).
		SetQueryParam("type", strings.Join(seriesTypes, ",")).
		SetQueryParam("period1", strconv.FormatInt(time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC).Unix(), 10)).
		SetQueryParam("period2", strconv.FormatInt(time.Now().Unix(), 10)).
		Get(yahooTimeseriesPath)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Ticker", ticker).Str("URL", resp.Request.URL).Msg("yahoo returned an invalid HTTP response")
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
	}

	return parseYahooTimeseries(ticker, kind, resp.String())
}

func parseYahooTimeseries(ticker string, kind data.StatementKind, body string) (*data.Statement, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}

	if desc := gjson.Get(body, "timeseries.error.description"); desc.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, desc.String())
	}

	results := gjson.Get(body, "timeseries.result")
	if !results.IsArray() {
		return nil, fmt.Errorf("%w: missing timeseries.result", ErrMalformedResponse)
	}

	statement := data.NewStatement(ticker, kind)
	for _, result := range results.Array() {
		seriesType := result.Get("meta.type.0").String()
		if seriesType == "" {
			continue
		}

		var (
			latestDate string
			latest     *float64
			present    bool
		)

		for _, obs := range result.Get(seriesType).Array() {
			if obs.Type == gjson.Null {
				continue
			}

			asOf := obs.Get("asOfDate").String()
			if present && asOf < latestDate {
				continue
			}

			present = true
			latestDate = asOf
			latest = nil

			if raw := obs.Get("reportedValue.raw"); raw.Type == gjson.Number {
				val := raw.Float()
				latest = &val
			}
		}

		if present {
			statement.Rows[CamelToTitle(strings.TrimPrefix(seriesType, yahooSeriesPrefix))] = latest
		}
	}

	return statement, nil
}

// yahooSeriesTypes lists the timeseries names covering every source label of
// the fields that live on the statement kind
func yahooSeriesTypes(kind data.StatementKind) []string {
	types := make([]string, 0)
	seen := make(map[string]bool)
	for _, field := range data.Fields {
		if field.Statement != kind {
			continue
		}

		for _, label := range field.Sources {
			seriesType := yahooSeriesPrefix + strings.ReplaceAll(label, " ", "")
			if !seen[seriesType] {
				seen[seriesType] = true
				types = append(types, seriesType)
			}
		}
	}
	return types
}

// CamelToTitle splits a camel case identifier into words, keeping acronyms
// together: "NormalizedEBITDA" becomes "Normalized EBITDA"
func CamelToTitle(s string) string {
	runes := []rune(s)

	var builder strings.Builder
	for idx, r := range runes {
		if idx > 0 && unicode.IsUpper(r) {
			prev := runes[idx-1]
			nextLower := idx+1 < len(runes) && unicode.IsLower(runes[idx+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				builder.WriteRune(' ')
			}
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
