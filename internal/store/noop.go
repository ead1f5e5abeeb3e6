package store

import "CoinFlip/internal/model"

// NoopStore keeps nothing; the ledger starts empty on every run.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveAccounts(_ []model.Account) error     { return nil }
func (n *NoopStore) LoadAccounts() ([]model.Account, error) { return nil, nil }
func (n *NoopStore) Close() error                            { return nil }
