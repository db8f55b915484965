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
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres schema (reference):
//
// CREATE TABLE IF NOT EXISTS chain_results (
//   chain_id TEXT NOT NULL,
//   stage TEXT NOT NULL,
//   digest TEXT NOT NULL,
//   PRIMARY KEY (chain_id, stage)
// );
//
// CREATE TABLE IF NOT EXISTS applied_commits (
//   commit_id TEXT PRIMARY KEY,
//   chain_id TEXT NOT NULL,
//   stage TEXT NOT NULL,
//   ts TIMESTAMPTZ NOT NULL DEFAULT now()
// );

// PostgresPersister applies commits idempotently using INSERT ... ON
// CONFLICT DO NOTHING keyed by commit id, within one transaction per
// batch.
type PostgresPersister struct {
	db             *sql.DB
	defaultTimeout time.Duration
}

// NewPostgresPersister wraps an already-configured *sql.DB.
func NewPostgresPersister(db *sql.DB) *PostgresPersister {
	return &PostgresPersister{db: db, defaultTimeout: 10 * time.Second}
}

// CommitBatch applies entries within a single transaction. An entry whose
// CommitID was already applied is skipped.
func (p *PostgresPersister) CommitBatch(ctx context.Context, entries []CommitEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && p.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.defaultTimeout)
		defer cancel()
	}

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		if e.CommitID == "" {
			return errors.New("persistence: CommitEntry.CommitID must be set")
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO applied_commits(commit_id, chain_id, stage) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			e.CommitID, e.ChainID, e.Stage)
		if err != nil {
			return fmt.Errorf("persistence: insert applied_commits(%s): %w", e.CommitID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("persistence: rows affected applied_commits(%s): %w", e.CommitID, err)
		} else if n == 0 {
			// Marker already existed: this commit was already applied.
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chain_results(chain_id, stage, digest) VALUES ($1,$2,$3)
			   ON CONFLICT (chain_id, stage) DO UPDATE SET digest = EXCLUDED.digest`,
			e.ChainID, e.Stage, e.Digest); err != nil {
			return fmt.Errorf("persistence: upsert chain_results(%s,%s): %w", e.ChainID, e.Stage, err)
		}
	}

	return tx.Commit()
}
