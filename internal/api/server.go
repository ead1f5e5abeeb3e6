// Package api exposes the host ledger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/bits"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/keys"
	"CoinFlip/internal/ledger"
	"CoinFlip/internal/model"
	"CoinFlip/internal/notifier"
	"CoinFlip/internal/processor"
)

// MaxAccountSpace bounds the storage a single account may allocate.
const MaxAccountSpace = 10 * 1024 * 1024

const maxBodyBytes = 1 << 20

// Server serves the node API.
type Server struct {
	Ledger         *ledger.Ledger
	Notifier       notifier.Notifier
	FaucetLamports uint64
	Ctx            context.Context

	pending sync.WaitGroup
}

// NewServer creates a Server. A nil notifier disables settlement notifications.
func NewServer(ctx context.Context, l *ledger.Ledger, n notifier.Notifier, faucetLamports uint64) *Server {
	return &Server{Ledger: l, Notifier: n, FaucetLamports: faucetLamports, Ctx: ctx}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/v1", func(api chi.Router) {
		api.Post("/accounts", s.createAccount)
		api.Get("/accounts/{address}", s.getAccount)
		api.Post("/airdrop", s.airdrop)
		api.Post("/transactions", s.submitTransaction)
		api.Get("/escrows/{address}", s.getEscrow)
	})
	return r
}

// Wait blocks until queued settlement notifications have been delivered or dropped.
func (s *Server) Wait() {
	s.pending.Wait()
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}
	if _, err := keys.ParseAddress(string(req.Address)); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}
	if req.Space < 0 || req.Space > MaxAccountSpace {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			fmt.Sprintf("space must be between 0 and %d bytes", MaxAccountSpace), nil)
		return
	}
	lamports, carry := bits.Add64(s.Ledger.MinimumBalance(req.Space), req.Bankroll, 0)
	if carry != 0 {
		writeErr(w, fmt.Errorf("create account %s: %w", req.Address, ledger.ErrBalanceOverflow), nil)
		return
	}
	acct, err := s.Ledger.CreateAccount(req.Address, lamports, req.Space)
	if err != nil {
		writeErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(chi.URLParam(r, "address"))
	acct, ok := s.Ledger.Account(addr)
	if !ok {
		writeErr(w, fmt.Errorf("account %s: %w", addr, ledger.ErrAccountNotFound), nil)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) airdrop(w http.ResponseWriter, r *http.Request) {
	var req AirdropRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}
	if _, err := keys.ParseAddress(string(req.Address)); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}
	if req.Lamports == 0 {
		req.Lamports = s.FaucetLamports
	}
	acct, err := s.Ledger.Airdrop(req.Address, req.Lamports)
	if err != nil {
		writeErr(w, err, nil)
		return
	}
	log.Printf("[INFO] airdrop %d lamports to %s", req.Lamports, req.Address)
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request) {
	var tx ledger.Transaction
	if err := readJSON(w, r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}
	receipt, err := s.Ledger.Submit(tx)
	if err != nil {
		var logs []string
		if receipt != nil {
			logs = receipt.Logs
		}
		writeErr(w, err, logs)
		return
	}
	if receipt.Settlement != nil {
		s.notifySettlement(*receipt.Settlement)
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) getEscrow(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(chi.URLParam(r, "address"))
	acct, ok := s.Ledger.Account(addr)
	if !ok {
		writeErr(w, fmt.Errorf("escrow %s: %w", addr, ledger.ErrAccountNotFound), nil)
		return
	}
	state, err := codec.DecodeState(acct.Data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(processor.CodeDecode), fmt.Sprintf("escrow %s: %v", addr, err), nil)
		return
	}
	writeJSON(w, http.StatusOK, EscrowView{Address: addr, Lamports: acct.Lamports, State: state})
}

func (s *Server) notifySettlement(st model.Settlement) {
	if s.Notifier == nil {
		return
	}
	text := notifier.FormatSettlement(&st)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Minute)
		defer cancel()
		if err := notifier.SendWithRetry(ctx, s.Notifier, text, 3); err != nil {
			log.Printf("[ERROR] settlement notification: %v", err)
		}
	}()
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
