package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CoinFlip/internal/model"
)

// SQLiteStore persists ledger accounts to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			address    TEXT PRIMARY KEY,
			lamports   TEXT NOT NULL,
			data       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			account_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveAccounts replaces the stored accounts with accts in one transaction.
// Lamports are stored as decimal text because SQLite integers are signed.
func (s *SQLiteStore) SaveAccounts(accts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO accounts (address, lamports, data, updated_at) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range accts {
		data := a.Data
		if data == nil {
			data = []byte{}
		}
		if _, err := stmt.Exec(string(a.Address), strconv.FormatUint(a.Lamports, 10), data, a.UpdatedAt.Unix()); err != nil {
			return fmt.Errorf("insert account %s: %w", a.Address, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO snapshots (timestamp, account_count) VALUES (?,?)`,
		time.Now().Unix(), len(accts)); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return tx.Commit()
}

// LoadAccounts returns every stored account ordered by address.
func (s *SQLiteStore) LoadAccounts() ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT address, lamports, data, updated_at FROM accounts ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var (
			addr, lamports string
			data           []byte
			updated        int64
		)
		if err := rows.Scan(&addr, &lamports, &data, &updated); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		l, err := strconv.ParseUint(lamports, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("account %s: bad lamports %q: %w", addr, lamports, err)
		}
		accts = append(accts, model.Account{
			Address:   model.Address(addr),
			Lamports:  l,
			Data:      data,
			UpdatedAt: time.Unix(updated, 0),
		})
	}
	return accts, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
