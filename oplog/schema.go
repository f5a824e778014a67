// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oplog

const recordTableSchema = `CREATE TABLE IF NOT EXISTS record (
	seq INTEGER PRIMARY KEY,
	variant TEXT NOT NULL,
	op TEXT NOT NULL,
	account BLOB(20) NOT NULL,
	time INTEGER NOT NULL,
	legs BLOB,
	fields TEXT
);

CREATE INDEX IF NOT EXISTS record_account ON record(account, seq);
CREATE INDEX IF NOT EXISTS record_time ON record(time);
`

const legTableSchema = `CREATE TABLE IF NOT EXISTS leg (
	seq INTEGER NOT NULL,
	legIndex INTEGER NOT NULL,
	asset BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount INTEGER NOT NULL,
	PRIMARY KEY (seq, legIndex)
);

CREATE INDEX IF NOT EXISTS leg_sender ON leg(sender);
CREATE INDEX IF NOT EXISTS leg_recipient ON leg(recipient);
`
