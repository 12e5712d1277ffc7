package store

import (
	"database/sql"
	"fmt"
	"strings"

	regnode "github.com/dogecoinfoundation/regnode/pkg"

	_ "github.com/mattn/go-sqlite3"
)

var SETUP_SQL string = `
CREATE TABLE IF NOT EXISTS block (
	hash TEXT NOT NULL UNIQUE,
	height INTEGER NOT NULL UNIQUE,
	prev_hash TEXT NOT NULL,
	time INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS block_tx (
	block_hash TEXT NOT NULL,
	n INTEGER NOT NULL,
	txid TEXT NOT NULL,
	PRIMARY KEY (block_hash, n)
);

CREATE INDEX IF NOT EXISTS block_tx_txid ON block_tx (txid);
`

// interface guard ensures SQLiteStore implements regnode.BlockIndex
var _ regnode.BlockIndex = SQLiteStore{}

// SQLiteStore is the persistent block index: every connected block is
// written through along with its txids, in connect order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the block index database.
// Use ":memory:" for a throwaway index in tests.
func NewSQLiteStore(fileName string) (SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return SQLiteStore{}, err
	}
	// init tables / indexes
	_, err = db.Exec(SETUP_SQL)
	if err != nil {
		return SQLiteStore{}, err
	}
	return SQLiteStore{db}, nil
}

// Defer this until shutdown
func (s SQLiteStore) Close() {
	s.db.Close()
}

func (s SQLiteStore) AddBlock(hash string, height int64, prev string, time uint32, txids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("block index: begin: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT OR IGNORE INTO block (hash, height, prev_hash, time) VALUES (?, ?, ?, ?)",
		hash, height, prev, time)
	if err != nil {
		return fmt.Errorf("block index: insert block: %v", err)
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO block_tx (block_hash, n, txid) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("block index: prepare: %v", err)
	}
	defer stmt.Close()
	for n, txid := range txids {
		if _, err := stmt.Exec(hash, n, txid); err != nil {
			return fmt.Errorf("block index: insert tx: %v", err)
		}
	}
	return tx.Commit()
}

func (s SQLiteStore) GetBlockHash(height int64) (string, error) {
	row := s.db.QueryRow("SELECT hash FROM block WHERE height = ?", height)
	var hash string
	err := row.Scan(&hash)
	if err == sql.ErrNoRows {
		return "", regnode.NewErr(regnode.NotFound, "no block at height %d", height)
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s SQLiteStore) GetBlockCount() (int64, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(height), 0) FROM block")
	var height int64
	if err := row.Scan(&height); err != nil {
		return 0, err
	}
	return height, nil
}

func (s SQLiteStore) GetBlockTxIDs(hash string) ([]string, error) {
	rows, err := s.db.Query("SELECT txid FROM block_tx WHERE block_hash = ? ORDER BY n", hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txids []string
	for rows.Next() {
		var txid string
		if err := rows.Scan(&txid); err != nil {
			return nil, err
		}
		txids = append(txids, txid)
	}
	return txids, rows.Err()
}

// FindBlockForTx returns the hash of the block containing txid, or
// NotFound if the transaction was never confirmed.
func (s SQLiteStore) FindBlockForTx(txid string) (string, error) {
	txid = strings.ToLower(txid)
	row := s.db.QueryRow("SELECT block_hash FROM block_tx WHERE txid = ?", txid)
	var hash string
	err := row.Scan(&hash)
	if err == sql.ErrNoRows {
		return "", regnode.NewErr(regnode.NotFound, "transaction not in any block: %s", txid)
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}
