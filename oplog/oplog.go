// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oplog journals committed ledger operations into sqlite.
package oplog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ethereum/go-ethereum/rlp"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/acc"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staking/ledger"
)

var logger = log.WithContext("pkg", "oplog")

type OpLog struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open an operation log at given path.
func New(path string) (opLog *OpLog, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if opLog == nil {
			db.Close()
		}
	}()
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(recordTableSchema + legTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &OpLog{path, db, driverVer}, nil
}

// NewMem create an operation log in ram.
func NewMem() (*OpLog, error) {
	return New(":memory:")
}

// Truncate removes every entry.
func (o *OpLog) Truncate(ctx context.Context) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM leg; DELETE FROM record"); err != nil {
		return errors.Wrap(err, "truncate")
	}
	return tx.Commit()
}

func (o *OpLog) Close() error {
	return o.db.Close()
}

func (o *OpLog) Path() string {
	return o.path
}

// DriverVersion returns the sqlite library version.
func (o *OpLog) DriverVersion() string {
	return o.driverVersion
}

// Write stores records in one transaction. Records already stored are skipped.
func (o *OpLog) Write(ctx context.Context, records ...*ledger.Record) (err error) {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, r := range records {
		legs, err := rlp.EncodeToBytes(r.Legs)
		if err != nil {
			return errors.Wrap(err, "encode legs")
		}
		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return errors.Wrap(err, "encode fields")
		}
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO record(seq, variant, op, account, time, legs, fields) VALUES(?,?,?,?,?,?,?)",
			r.Seq, r.Variant, r.Op, r.Account.Bytes(), r.Time, legs, string(fields))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			continue
		}
		for i, leg := range r.Legs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO leg(seq, legIndex, asset, sender, recipient, amount) VALUES(?,?,?,?,?,?)",
				r.Seq, i, leg.Asset.Bytes(), leg.From.Bytes(), leg.To.Bytes(), int64(leg.Amount)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LastSeq returns the highest stored sequence, zero when empty.
func (o *OpLog) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := o.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM record").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

// Filter queries stored records.
func (o *OpLog) Filter(ctx context.Context, f *Filter) ([]*Entry, error) {
	if f == nil {
		f = &Filter{}
	}
	var args []any
	stmt := "SELECT seq, variant, op, account, time, legs, fields FROM record WHERE 1"
	if f.Account != nil {
		args = append(args, f.Account.Bytes())
		stmt += " AND account = ?"
	}
	if f.Op != "" {
		args = append(args, f.Op)
		stmt += " AND op = ?"
	}
	if f.From > 0 {
		args = append(args, f.From)
		stmt += " AND time >= ?"
	}
	if f.To > 0 && f.To >= f.From {
		args = append(args, f.To)
		stmt += " AND time <= ?"
	}
	if f.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if f.Limit > 0 {
		stmt += " LIMIT ?, ?"
		args = append(args, f.Offset, f.Limit)
	}

	rows, err := o.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e       Entry
			account []byte
			legs    []byte
			fields  string
		)
		if err := rows.Scan(&e.Seq, &e.Variant, &e.Op, &account, &e.Time, &legs, &fields); err != nil {
			return nil, err
		}
		e.Account = acc.BytesToAddress(account)
		if err := rlp.DecodeBytes(legs, &e.Legs); err != nil {
			return nil, errors.Wrapf(err, "decode legs of %d", e.Seq)
		}
		if fields != "" && fields != "null" {
			e.Fields = json.RawMessage(fields)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// FilterTransfers queries stored legs in sequence order.
func (o *OpLog) FilterTransfers(ctx context.Context, f *TransferFilter) ([]*Transfer, error) {
	if f == nil {
		f = &TransferFilter{}
	}
	var args []any
	stmt := "SELECT seq, legIndex, asset, sender, recipient, amount FROM leg WHERE 1"
	if f.Asset != nil {
		args = append(args, f.Asset.Bytes())
		stmt += " AND asset = ?"
	}
	if f.Account != nil {
		args = append(args, f.Account.Bytes(), f.Account.Bytes())
		stmt += " AND (sender = ? OR recipient = ?)"
	}
	stmt += " ORDER BY seq ASC, legIndex ASC"
	if f.Limit > 0 {
		stmt += " LIMIT ?, ?"
		args = append(args, f.Offset, f.Limit)
	}

	rows, err := o.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			t                        Transfer
			asset, sender, recipient []byte
			amount                   int64
		)
		if err := rows.Scan(&t.Seq, &t.Index, &asset, &sender, &recipient, &amount); err != nil {
			return nil, err
		}
		t.Asset = acc.BytesToAddress(asset)
		t.From = acc.BytesToAddress(sender)
		t.To = acc.BytesToAddress(recipient)
		t.Amount = uint64(amount)
		transfers = append(transfers, &t)
	}
	return transfers, rows.Err()
}

// Follow stores every record core commits until ctx is done.
func (o *OpLog) Follow(ctx context.Context, core *ledger.Core) error {
	ch := make(chan *ledger.Record, 256)
	sub := core.SubscribeRecords(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return o.drain(ch)
		case err := <-sub.Err():
			// the subscription closes when the core does
			if derr := o.drain(ch); derr != nil {
				return derr
			}
			return err
		case r := <-ch:
			if err := o.Write(context.Background(), r); err != nil {
				logger.Error("failed to journal operation", "seq", r.Seq, "op", r.Op, "error", err)
				return err
			}
		}
	}
}

// drain stores what is already buffered.
func (o *OpLog) drain(ch <-chan *ledger.Record) error {
	var batch []*ledger.Record
	for {
		select {
		case r := <-ch:
			batch = append(batch, r)
		default:
			if len(batch) == 0 {
				return nil
			}
			return o.Write(context.Background(), batch...)
		}
	}
}
