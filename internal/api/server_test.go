package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/keys"
	"CoinFlip/internal/ledger"
	"CoinFlip/internal/model"
	"CoinFlip/internal/processor"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	l := ledger.New(ledger.Options{Clock: ledger.FixedClock(10), FaucetMaxLamports: 2 * model.LamportsPerSOL})
	s := NewServer(context.Background(), l, nil, model.LamportsPerSOL)
	return s, s.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return e
}

func newAddress(t *testing.T) model.Address {
	t.Helper()
	k, err := keys.Generate("test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return k.Address
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCreateAccount(t *testing.T) {
	_, h := newTestServer(t)
	addr := newAddress(t)

	rec := do(t, h, http.MethodPost, "/v1/accounts", fmt.Sprintf(`{"address":%q,"space":17,"bankroll":500}`, addr))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var acct model.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if acct.Lamports != 1_009_700 || len(acct.Data) != 17 {
		t.Errorf("account = %d lamports, %d bytes", acct.Lamports, len(acct.Data))
	}

	rec = do(t, h, http.MethodPost, "/v1/accounts", fmt.Sprintf(`{"address":%q,"space":17}`, addr))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != codeConflict {
		t.Errorf("second create = %d %s", rec.Code, rec.Body)
	}
}

func TestCreateAccountAfterAirdrop(t *testing.T) {
	s, h := newTestServer(t)
	addr := newAddress(t)

	if rec := do(t, h, http.MethodPost, "/v1/airdrop", fmt.Sprintf(`{"address":%q,"lamports":7}`, addr)); rec.Code != http.StatusOK {
		t.Fatalf("airdrop = %d %s", rec.Code, rec.Body)
	}
	rec := do(t, h, http.MethodPost, "/v1/accounts", fmt.Sprintf(`{"address":%q,"space":17,"bankroll":500}`, addr))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create after airdrop = %d %s", rec.Code, rec.Body)
	}
	if got := s.Ledger.Balance(addr); got != 1_009_707 {
		t.Errorf("balance = %d, want rent + bankroll + airdrop", got)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	_, h := newTestServer(t)
	addr := newAddress(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
		{"bad address", `{"address":"zz","space":17}`, http.StatusBadRequest},
		{"negative space", fmt.Sprintf(`{"address":%q,"space":-1}`, addr), http.StatusBadRequest},
		{"huge space", fmt.Sprintf(`{"address":%q,"space":%d}`, addr, MaxAccountSpace+1), http.StatusBadRequest},
		{"bankroll overflow", fmt.Sprintf(`{"address":%q,"space":17,"bankroll":18446744073709551615}`, addr), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/v1/accounts", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestAirdrop(t *testing.T) {
	s, h := newTestServer(t)
	addr := newAddress(t)

	if rec := do(t, h, http.MethodPost, "/v1/airdrop", fmt.Sprintf(`{"address":%q}`, addr)); rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if got := s.Ledger.Balance(addr); got != model.LamportsPerSOL {
		t.Errorf("balance = %d, want faucet default", got)
	}

	rec := do(t, h, http.MethodPost, "/v1/airdrop", fmt.Sprintf(`{"address":%q,"lamports":%d}`, addr, 3*model.LamportsPerSOL))
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != codeFaucet {
		t.Errorf("over limit = %d %s", rec.Code, rec.Body)
	}
}

func TestGetEscrow(t *testing.T) {
	s, h := newTestServer(t)
	addr := newAddress(t)
	if _, err := s.Ledger.CreateAccount(addr, 2_000_000, codec.StateSize); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/v1/escrows/"+string(addr), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var view EscrowView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.State.IsInitialized || view.Lamports != 2_000_000 {
		t.Errorf("view = %+v", view)
	}

	wallet := newAddress(t)
	if _, err := s.Ledger.Airdrop(wallet, 5); err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	rec = do(t, h, http.MethodGet, "/v1/escrows/"+string(wallet), "")
	if rec.Code != http.StatusUnprocessableEntity || decodeError(t, rec).Code != string(processor.CodeDecode) {
		t.Errorf("wallet as escrow = %d %s", rec.Code, rec.Body)
	}

	if rec := do(t, h, http.MethodGet, "/v1/escrows/"+string(newAddress(t)), ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing escrow = %d", rec.Code)
	}
}

func TestSubmitTransactionErrors(t *testing.T) {
	s, h := newTestServer(t)
	escrow := newAddress(t)
	if _, err := s.Ledger.CreateAccount(escrow, 1, codec.StateSize); err != nil {
		t.Fatalf("create: %v", err)
	}

	body, _ := json.Marshal(ledger.Transaction{ID: uuid.NewString(), Escrow: escrow, Data: []byte{0}})
	rec := do(t, h, http.MethodPost, "/v1/transactions", string(body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if e := decodeError(t, rec); e.Code != string(processor.CodeInsufficientCollateral) {
		t.Errorf("code = %q", e.Code)
	}

	// the same id again, after the program already ran once
	rec = do(t, h, http.MethodPost, "/v1/transactions", string(body))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != codeDuplicate {
		t.Errorf("resubmitted tx = %d %s", rec.Code, rec.Body)
	}

	body, _ = json.Marshal(ledger.Transaction{ID: "not-a-uuid", Escrow: escrow, Data: []byte{0}})
	rec = do(t, h, http.MethodPost, "/v1/transactions", string(body))
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != codeInvalidTx {
		t.Errorf("invalid tx = %d %s", rec.Code, rec.Body)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{processor.ErrUnauthorized, http.StatusUnauthorized, string(processor.CodeUnauthorized)},
		{fmt.Errorf("wrapped: %w", processor.ErrAlreadyInitialized), http.StatusConflict, string(processor.CodeAlreadyInitialized)},
		{processor.ErrOutcomeFailed, http.StatusServiceUnavailable, string(processor.CodeOutcomeFailed)},
		{fmt.Errorf("x: %w", ledger.ErrAccountNotFound), http.StatusNotFound, codeNotFound},
		{fmt.Errorf("submit: %w", ledger.ErrDuplicateTx), http.StatusConflict, codeDuplicate},
		{ledger.ErrInvalidTx, http.StatusBadRequest, codeInvalidTx},
		{errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}
