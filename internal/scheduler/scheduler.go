package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/model"
	"CoinFlip/internal/notifier"
	"CoinFlip/internal/store"
)

// Accounts is the read side of the ledger the scheduler needs.
type Accounts interface {
	Accounts() []model.Account
	Account(addr model.Address) (model.Account, bool)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Ledger   Accounts
	Store    store.Store
	Notifier notifier.Notifier
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, l Accounts, st store.Store, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Ledger:   l,
		Store:    st,
		Notifier: n,
		Ctx:      ctx,
	}
}

// RegisterAll registers the snapshot and report tasks.
func (s *Scheduler) RegisterAll(snapshotCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// SnapshotNow persists the ledger immediately (used on shutdown).
func (s *Scheduler) SnapshotNow() error {
	accts := s.Ledger.Accounts()
	if err := s.Store.SaveAccounts(accts); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Printf("[INFO] snapshot saved: %d accounts", len(accts))
	return nil
}

func (s *Scheduler) snapshotTask() {
	if err := s.SnapshotNow(); err != nil {
		log.Printf("[ERROR] snapshot: %v", err)
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running escrow report")
	report := s.statusReport()
	if report == "" {
		log.Println("[INFO] no initialized escrows, report skipped")
		return
	}
	s.trySend(report)
}

// statusReport renders every initialized escrow, or "" when there are none.
func (s *Scheduler) statusReport() string {
	var parts []string
	for _, acct := range s.Ledger.Accounts() {
		state, ok := escrowState(acct)
		if !ok {
			continue
		}
		parts = append(parts, notifier.FormatEscrowStatus(acct.Address, state, acct.Lamports))
	}
	return strings.Join(parts, "\n")
}

// escrowState decodes acct as an escrow record if it holds an initialized one.
func escrowState(acct model.Account) (model.EscrowState, bool) {
	if len(acct.Data) < codec.StateSize {
		return model.EscrowState{}, false
	}
	state, err := codec.DecodeState(acct.Data)
	if err != nil || !state.IsInitialized {
		return model.EscrowState{}, false
	}
	return state, true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage
	}
	switch fields[0] {
	case "/status":
		if report := s.statusReport(); report != "" {
			return report
		}
		return "No initialized escrows."
	case "/balance":
		if len(fields) != 2 {
			return "Usage: /balance <address>"
		}
		addr := model.Address(fields[1])
		acct, ok := s.Ledger.Account(addr)
		if !ok {
			return fmt.Sprintf("Account %s not found.", addr)
		}
		if state, ok := escrowState(acct); ok {
			return notifier.FormatEscrowStatus(addr, state, acct.Lamports)
		}
		return fmt.Sprintf("💰 %s\nBalance: %s", addr, notifier.FormatLamports(acct.Lamports))
	default:
		return usage
	}
}

const usage = "Available commands:\n• /status\n• /balance <address>"

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
