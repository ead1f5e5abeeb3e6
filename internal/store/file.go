package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"CoinFlip/internal/model"
)

// FileStore keeps the ledger as a single JSON document.
type FileStore struct {
	filePath string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

type fileSnapshot struct {
	Accounts  []model.Account `json:"accounts"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LoadAccounts reads the snapshot. Returns no accounts if the file doesn't exist.
func (f *FileStore) LoadAccounts() ([]model.Account, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap.Accounts, nil
}

// SaveAccounts writes the snapshot to a temp file, then renames it into place.
func (f *FileStore) SaveAccounts(accts []model.Account) error {
	snap := fileSnapshot{Accounts: accts, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.filePath), 0o755); err != nil {
		return err
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.filePath)
}

func (f *FileStore) Close() error { return nil }
