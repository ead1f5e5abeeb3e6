package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/ledger"
	"CoinFlip/internal/model"
	"CoinFlip/internal/store"
)

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Send(text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func newFixture(t *testing.T) (*Scheduler, *ledger.Ledger, store.Store, *recordingNotifier) {
	t.Helper()
	l := ledger.New(ledger.Options{})
	l.Restore([]model.Account{
		{Address: "escrow", Lamports: 2_000_000, Data: codec.EncodeState(model.EscrowState{IsInitialized: true, TotalBets: 4, TotalAmountWagered: 900})},
		{Address: "fresh", Lamports: 2_000_000, Data: make([]byte, codec.StateSize)},
		{Address: "wallet", Lamports: 1_500_000_000, Data: []byte{}},
	})
	st := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	n := &recordingNotifier{}
	return NewScheduler(context.Background(), l, st, n), l, st, n
}

func TestSnapshotNow(t *testing.T) {
	s, _, st, _ := newFixture(t)
	if err := s.SnapshotNow(); err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}
	got, err := st.LoadAccounts()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[0].Address != "escrow" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestReportTask_OnlyInitializedEscrows(t *testing.T) {
	s, _, _, n := newFixture(t)
	s.reportTask()
	if len(n.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(n.sent))
	}
	msg := n.sent[0]
	if !strings.Contains(msg, "Escrow escrow") || !strings.Contains(msg, "Total bets: 4") {
		t.Errorf("report = %s", msg)
	}
	if strings.Contains(msg, "fresh") || strings.Contains(msg, "wallet") {
		t.Errorf("report includes non-escrow accounts: %s", msg)
	}
}

func TestReportTask_NothingToReport(t *testing.T) {
	n := &recordingNotifier{}
	s := NewScheduler(context.Background(), ledger.New(ledger.Options{}), store.NewNoopStore(), n)
	s.reportTask()
	if len(n.sent) != 0 {
		t.Errorf("sent %v on an empty ledger", n.sent)
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _, _ := newFixture(t)
	tests := []struct {
		command string
		want    string
	}{
		{"/status", "Total wagered: 900 lamports"},
		{"/balance escrow", "Total bets: 4"},
		{"/balance wallet", "1,500,000,000 lamports"},
		{"/balance nobody", "not found"},
		{"/balance", "Usage: /balance"},
		{"hello", "Available commands"},
		{"", "Available commands"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(tt.command); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
		}
	}
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _ := newFixture(t)
	if err := s.RegisterAll("0 */1 * * * *", "0 0 9 * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if len(s.Cron.Entries()) != 2 {
		t.Errorf("entries = %d, want 2", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("bogus", "0 0 9 * * *"); err == nil {
		t.Error("expected bad cron expression to fail")
	}
}
