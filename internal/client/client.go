// Package client talks to a coin flip node over its HTTP API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"CoinFlip/internal/api"
	"CoinFlip/internal/codec"
	"CoinFlip/internal/keys"
	"CoinFlip/internal/ledger"
	"CoinFlip/internal/model"
)

// Client is an HTTP client for the node API.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// APIError is a non-2xx reply from the node.
type APIError struct {
	Status   int
	Response api.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Code != "" {
		return fmt.Sprintf("node error %d %s: %s", e.Status, e.Response.Code, e.Response.Error)
	}
	return fmt.Sprintf("node error %d: %s", e.Status, e.Response.Error)
}

// New creates a client with optional proxy support.
func New(baseURL, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// CreateAccount allocates space bytes at addr funded with rent plus bankroll.
func (c *Client) CreateAccount(addr model.Address, space int, bankroll uint64) (model.Account, error) {
	var acct model.Account
	req := api.CreateAccountRequest{Address: addr, Space: space, Bankroll: bankroll}
	if err := c.do(http.MethodPost, "/v1/accounts", req, &acct); err != nil {
		return model.Account{}, fmt.Errorf("create account %s: %w", addr, err)
	}
	return acct, nil
}

// Airdrop asks the node faucet for lamports; zero requests the node default.
func (c *Client) Airdrop(addr model.Address, lamports uint64) (model.Account, error) {
	var acct model.Account
	if err := c.do(http.MethodPost, "/v1/airdrop", api.AirdropRequest{Address: addr, Lamports: lamports}, &acct); err != nil {
		return model.Account{}, fmt.Errorf("airdrop to %s: %w", addr, err)
	}
	return acct, nil
}

// Submit sends a signed transaction. A program failure comes back as *APIError with the program logs.
func (c *Client) Submit(tx ledger.Transaction) (*ledger.Receipt, error) {
	var receipt ledger.Receipt
	if err := c.do(http.MethodPost, "/v1/transactions", tx, &receipt); err != nil {
		return nil, fmt.Errorf("submit %s: %w", tx.ID, err)
	}
	return &receipt, nil
}

// Account fetches a raw account.
func (c *Client) Account(addr model.Address) (model.Account, error) {
	var acct model.Account
	if err := c.do(http.MethodGet, "/v1/accounts/"+url.PathEscape(string(addr)), nil, &acct); err != nil {
		return model.Account{}, fmt.Errorf("get account %s: %w", addr, err)
	}
	return acct, nil
}

// Escrow fetches an escrow account with its record decoded.
func (c *Client) Escrow(addr model.Address) (api.EscrowView, error) {
	var view api.EscrowView
	if err := c.do(http.MethodGet, "/v1/escrows/"+url.PathEscape(string(addr)), nil, &view); err != nil {
		return api.EscrowView{}, fmt.Errorf("get escrow %s: %w", addr, err)
	}
	return view, nil
}

func (c *Client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		bz, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(bz)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(respBody, &apiErr.Response) != nil || apiErr.Response.Error == "" {
			apiErr.Response.Error = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// NewTransaction builds and signs a transaction carrying ix against escrow.
func NewTransaction(key keys.StoredKey, escrow model.Address, ix model.Instruction) (ledger.Transaction, error) {
	data, err := codec.EncodeInstruction(ix)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("encode instruction: %w", err)
	}
	tx := ledger.Transaction{
		ID:     uuid.NewString(),
		Escrow: escrow,
		Signer: key.Address,
		Data:   data,
	}
	sig, err := key.Sign(tx.Message())
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("sign transaction: %w", err)
	}
	tx.Signature = sig
	return tx, nil
}
