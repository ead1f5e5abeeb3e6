package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"CoinFlip/internal/ledger"
	"CoinFlip/internal/processor"
)

const (
	codeBadRequest = "BAD_REQUEST"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "ACCOUNT_EXISTS"
	codeFaucet     = "FAUCET_LIMIT"
	codeInvalidTx  = "INVALID_TRANSACTION"
	codeDuplicate  = "DUPLICATE_TRANSACTION"
	codeBalance    = "BALANCE_OVERFLOW"
	codeInternal   = "INTERNAL"
)

var programStatus = map[processor.Code]int{
	processor.CodeDecode:                 http.StatusBadRequest,
	processor.CodeInvalidAmount:          http.StatusBadRequest,
	processor.CodeUnauthorized:           http.StatusUnauthorized,
	processor.CodeAlreadyInitialized:     http.StatusConflict,
	processor.CodeUninitialized:          http.StatusConflict,
	processor.CodeInsufficientCollateral: http.StatusUnprocessableEntity,
	processor.CodeAmountOverflow:         http.StatusUnprocessableEntity,
	processor.CodeTransferFailed:         http.StatusUnprocessableEntity,
	processor.CodeCounterOverflow:        http.StatusUnprocessableEntity,
	processor.CodePayoutFailed:           http.StatusUnprocessableEntity,
	processor.CodeOutcomeFailed:          http.StatusServiceUnavailable,
}

// classify maps an error to an HTTP status and a stable code string.
func classify(err error) (int, string) {
	if code := processor.CodeOf(err); code != "" {
		if status, ok := programStatus[code]; ok {
			return status, string(code)
		}
		return http.StatusInternalServerError, string(code)
	}
	switch {
	case errors.Is(err, ledger.ErrDuplicateTx):
		return http.StatusConflict, codeDuplicate
	case errors.Is(err, ledger.ErrInvalidTx):
		return http.StatusBadRequest, codeInvalidTx
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, ledger.ErrAccountExists):
		return http.StatusConflict, codeConflict
	case errors.Is(err, ledger.ErrFaucetLimit):
		return http.StatusBadRequest, codeFaucet
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return http.StatusUnprocessableEntity, codeBalance
	}
	return http.StatusInternalServerError, codeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string, logs []string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Logs: logs})
}

func writeErr(w http.ResponseWriter, err error, logs []string) {
	status, code := classify(err)
	writeError(w, status, code, err.Error(), logs)
}
