package store

import (
	"fmt"

	"CoinFlip/internal/model"
)

// Store persists ledger account snapshots.
type Store interface {
	SaveAccounts(accts []model.Account) error
	LoadAccounts() ([]model.Account, error)
	Close() error
}

// Open returns the store selected by driver: "sqlite", "file" or "none".
func Open(driver, sqlitePath, stateFile string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	case "file":
		return NewFileStore(stateFile), nil
	case "none", "":
		return NewNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
