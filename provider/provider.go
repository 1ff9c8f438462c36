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
	"sort"

	"github.com/penny-vault/pvscreen/data"
)

var (
	ErrProviderNotFound   = errors.New("provider not found")
	ErrInvalidStatusCode  = errors.New("invalid status code received")
	ErrMalformedResponse  = errors.New("malformed provider response")
	ErrTickerNotFound     = errors.New("ticker not found")
	ErrStatementNotServed = errors.New("statement not supported by provider")
)

type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string

	// Statement fetches the most recent values of one financial statement for
	// ticker. Rows the provider does not report are absent from the result.
	Statement(ctx context.Context, ticker string, kind data.StatementKind) (*data.Statement, error)
}

// Map lists the providers available to the collector by key
var Map = map[string]Provider{
	"yahoo": &Yahoo{},
	"file":  &File{},
}

// Get returns the provider registered under name
func Get(name string) (Provider, error) {
	if dataProvider, ok := Map[name]; ok {
		return dataProvider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// Names returns the sorted provider keys
func Names() []string {
	names := make([]string, 0, len(Map))
	for name := range Map {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
