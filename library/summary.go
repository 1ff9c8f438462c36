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
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the financials table in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Table)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Number of stored records
	numRecords, err := myLibrary.NumRecords(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Tickers: %d\n", numRecords)); err != nil {
		return "", err
	}

	// Last collected time
	lastCollected, err := myLibrary.LastCollected(ctx)
	if err != nil {
		return "", err
	}

	if lastCollected.Equal(time.Time{}) {
		if _, err := builder.WriteString("  * Last Collected: Unknown\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastCollected)
		if _, err := builder.WriteString(fmt.Sprintf("  * Last Collected: %s (%s)\n\n", age, lastCollected.Local().Format("01/02/2006 15:04"))); err != nil {
			return "", err
		}
	}

	// Columns
	if _, err := builder.WriteString("## Columns\n\n"); err != nil {
		return "", err
	}

	fields, err := myLibrary.Fields(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString("  * ticker\n"); err != nil {
		return "", err
	}

	for _, field := range fields {
		if _, err := builder.WriteString(fmt.Sprintf("  * %s (%s, %s)\n", field.Key, field.Label, field.Statement)); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
