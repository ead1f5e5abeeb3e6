package ledger

import (
	"bytes"

	"CoinFlip/internal/model"
)

// Transaction is a signed submission of one instruction against an escrow account.
type Transaction struct {
	ID        string        `json:"id"`
	Escrow    model.Address `json:"escrow"`
	Signer    model.Address `json:"signer"`
	Data      []byte        `json:"data"`
	Signature []byte        `json:"signature"`
}

// Message is the byte string the signer signs.
func (tx Transaction) Message() []byte {
	var b bytes.Buffer
	b.WriteString(tx.ID)
	b.WriteByte(0)
	b.WriteString(string(tx.Escrow))
	b.WriteByte(0)
	b.WriteString(string(tx.Signer))
	b.WriteByte(0)
	b.Write(tx.Data)
	return b.Bytes()
}

// Receipt is the result of submitting a Transaction.
type Receipt struct {
	ID         string            `json:"id"`
	Logs       []string          `json:"logs"`
	Settlement *model.Settlement `json:"settlement,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
}

// receiptSink collects processor output into a Receipt.
type receiptSink struct {
	r *Receipt
}

func (s receiptSink) Log(msg string) {
	s.r.Logs = append(s.r.Logs, msg)
}

func (s receiptSink) Settled(st model.Settlement) {
	s.r.Settlement = &st
}
