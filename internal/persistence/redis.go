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
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client,
// so tests can substitute a fake without a live server.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// GoRedisEvaler wraps a real github.com/redis/go-redis/v9 client.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler dials addr (host:port) lazily; go-redis connects on
// first command.
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

// RedisPersister applies commits idempotently with a Lua script:
//  1. SETNX commit:<chainId>:<commitId> 1
//  2. If set, HSET result:<chainId> <stage> <digest>
//  3. EXPIRE the marker for leak protection.
//
// If SETNX fails (already applied) the script is a no-op.
type RedisPersister struct {
	client    RedisEvaler
	markerTTL time.Duration
}

// NewRedisPersister returns a persister with the given client and marker
// TTL; markerTTL defaults to 24h if non-positive.
func NewRedisPersister(client RedisEvaler, markerTTL time.Duration) *RedisPersister {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisPersister{client: client, markerTTL: markerTTL}
}

const redisLuaScript = `
local resultKey = KEYS[1]
local markerKey = KEYS[2]
local stage = ARGV[1]
local digest = ARGV[2]
local ttlSeconds = tonumber(ARGV[3])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('HSET', resultKey, stage, digest)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

func redisResultKey(chainID string) string { return fmt.Sprintf("result:%s", chainID) }

func redisMarkerKey(chainID, commitID string) string {
	return fmt.Sprintf("commit:%s:%s", chainID, commitID)
}

// CommitBatch applies each entry with one EVAL call.
func (r *RedisPersister) CommitBatch(ctx context.Context, entries []CommitEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.CommitID == "" {
			return errors.New("persistence: CommitEntry.CommitID must be set")
		}
		keys := []string{redisResultKey(e.ChainID), redisMarkerKey(e.ChainID, e.CommitID)}
		args := []interface{}{e.Stage, e.Digest, int(r.markerTTL.Seconds())}
		if _, err := r.client.Eval(ctx, redisLuaScript, keys, args...); err != nil {
			return fmt.Errorf("persistence: redis eval chain=%s commit=%s: %w", e.ChainID, e.CommitID, err)
		}
	}
	return nil
}
