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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	DefaultPingURL = "https://hc-ping.com"
	DefaultAPIURL  = "https://healthchecks.io/api/v3"
)

var (
	ErrStatus         = errors.New("status code is invalid")
	ErrInvalidCheckID = errors.New("health check id must be a uuid")
)

type createReq struct {
	APIKey      string `json:"api_key"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
	Grace       int    `json:"grace"`
	Schedule    string `json:"schedule"`
	Slug        string `json:"slug"`
	Tags        string `json:"tags"`
	Timezone    string `json:"tz"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

// Create a new healthchecks.io check and return the id
func Create(ctx context.Context, name string, slug string, tags []string, schedule string) (string, error) {
	apiURL := viper.GetString("healthchecks.api_url")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	command := createReq{
		APIKey:   viper.GetString("healthchecks.apikey"),
		Name:     name,
		Slug:     slug,
		Tags:     strings.Join(tags, " "),
		Grace:    3600,
		Schedule: schedule,
		Timezone: "Asia/Kolkata",
	}

	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(fmt.Sprintf("%s/checks/", strings.TrimRight(apiURL, "/")))

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// Monitor reports the progress of a collector run to a single check
type Monitor struct {
	PingURL string
	CheckID uuid.UUID

	client *resty.Client
}

// NewMonitor returns a monitor for checkID. An empty checkID disables
// monitoring and returns a nil monitor; all methods are safe on nil.
func NewMonitor(checkID string) (*Monitor, error) {
	if checkID == "" {
		return nil, nil
	}

	id, err := uuid.Parse(checkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckID, err)
	}

	pingURL := viper.GetString("healthchecks.ping_url")
	if pingURL == "" {
		pingURL = DefaultPingURL
	}

	return &Monitor{
		PingURL: strings.TrimRight(pingURL, "/"),
		CheckID: id,
		client:  resty.New(),
	}, nil
}

// Start signals that a run has begun
func (monitor *Monitor) Start(ctx context.Context, runID uuid.UUID) error {
	return monitor.ping(ctx, "/start", runID, "")
}

// Success signals that a run finished; body is attached to the ping
func (monitor *Monitor) Success(ctx context.Context, runID uuid.UUID, body string) error {
	return monitor.ping(ctx, "", runID, body)
}

// Fail signals that a run failed with err
func (monitor *Monitor) Fail(ctx context.Context, runID uuid.UUID, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return monitor.ping(ctx, "/fail", runID, msg)
}

func (monitor *Monitor) ping(ctx context.Context, suffix string, runID uuid.UUID, body string) error {
	if monitor == nil {
		return nil
	}

	resp, err := monitor.client.R().
		SetContext(ctx).
		SetQueryParam("rid", runID.String()).
		SetBody(body).
		Post(fmt.Sprintf("%s/%s%s", monitor.PingURL, monitor.CheckID.String(), suffix))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
