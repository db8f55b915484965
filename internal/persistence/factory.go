// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persistence

import (
	"database/sql"
	"fmt"
	"time"
)

// Options holds the knobs needed to build any of the supported adapters.
type Options struct {
	RedisAddr      string
	RedisMarkerTTL time.Duration
	PostgresDB     *sql.DB
}

// Build constructs an IdempotentPersister based on adapter, one of
// "mock", "redis", or "postgres".
func Build(adapter string, opts Options) (IdempotentPersister, error) {
	switch adapter {
	case "", "mock":
		return NewMockPersister(), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("persistence: redis adapter requires RedisAddr")
		}
		return NewRedisPersister(NewGoRedisEvaler(opts.RedisAddr), opts.RedisMarkerTTL), nil
	case "postgres":
		if opts.PostgresDB == nil {
			return nil, fmt.Errorf("persistence: postgres adapter requires an open *sql.DB")
		}
		return NewPostgresPersister(opts.PostgresDB), nil
	default:
		return nil, fmt.Errorf("persistence: unknown adapter %q", adapter)
	}
}
