package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"CoinFlip/internal/client"
	"CoinFlip/internal/codec"
	"CoinFlip/internal/config"
	"CoinFlip/internal/keys"
	"CoinFlip/internal/model"
	"CoinFlip/internal/notifier"
)

func cmdKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	name := fs.String("name", "user", "key name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := keys.Path(cfg.Keys.Dir, *name)
	key, created, err := keys.EnsureKey(path, *name)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("created key %s in %s\n", *name, path)
	} else {
		fmt.Printf("key %s already exists in %s\n", *name, path)
	}
	fmt.Printf("address: %s\n", key.Address)
	return nil
}

func cmdCreateEscrow(args []string) error {
	fs := flag.NewFlagSet("create-escrow", flag.ContinueOnError)
	name := fs.String("name", "escrow", "escrow key name")
	bankroll := fs.Uint64("bankroll", model.LamportsPerSOL, "lamports on top of the rent minimum")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, _, err := keys.EnsureKey(keys.Path(cfg.Keys.Dir, *name), *name)
	if err != nil {
		return err
	}
	acct, err := newClient(cfg).CreateAccount(key.Address, codec.StateSize, *bankroll)
	if err != nil {
		return err
	}
	fmt.Printf("escrow %s created with %s\n", acct.Address, notifier.FormatLamports(acct.Lamports))
	return nil
}

func cmdAirdrop(args []string) error {
	fs := flag.NewFlagSet("airdrop", flag.ContinueOnError)
	to := fs.String("to", "user", "key name or address")
	lamports := fs.Uint64("lamports", 0, "amount, 0 for the node default")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, err := resolveAddress(cfg, *to)
	if err != nil {
		return err
	}
	acct, err := newClient(cfg).Airdrop(addr, *lamports)
	if err != nil {
		return err
	}
	fmt.Printf("%s balance: %s\n", acct.Address, notifier.FormatLamports(acct.Lamports))
	return nil
}

func cmdInitialize(args []string) error {
	fs := flag.NewFlagSet("initialize", flag.ContinueOnError)
	escrow := fs.String("escrow", "escrow", "escrow key name or address")
	signer := fs.String("key", "user", "signing key name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return submit(cfg, *signer, *escrow, model.NewInitialize())
}

func cmdBet(args []string) error {
	fs := flag.NewFlagSet("bet", flag.ContinueOnError)
	escrow := fs.String("escrow", "escrow", "escrow key name or address")
	signer := fs.String("key", "user", "bettor key name")
	amount := fs.Uint64("amount", 0, "wager in lamports")
	sideFlag := fs.String("side", "heads", "heads or tails")
	if err := fs.Parse(args); err != nil {
		return err
	}
	side, ok := model.ParseSide(*sideFlag)
	if !ok {
		return fmt.Errorf("side must be heads or tails, got %q", *sideFlag)
	}
	if *amount == 0 {
		return errors.New("-amount is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return submit(cfg, *signer, *escrow, model.NewPlaceBet(*amount, side))
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	escrow := fs.String("escrow", "escrow", "escrow key name or address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, err := resolveAddress(cfg, *escrow)
	if err != nil {
		return err
	}
	view, err := newClient(cfg).Escrow(addr)
	if err != nil {
		return err
	}
	fmt.Print(notifier.FormatEscrowStatus(view.Address, view.State, view.Lamports))
	return nil
}

func submit(cfg *config.Config, signerName, escrow string, ix model.Instruction) error {
	key, err := keys.Load(keys.Path(cfg.Keys.Dir, signerName))
	if err != nil {
		return fmt.Errorf("key %s not found, run coinflip keygen -name %s: %w", signerName, signerName, err)
	}
	escrowAddr, err := resolveAddress(cfg, escrow)
	if err != nil {
		return err
	}
	tx, err := client.NewTransaction(key, escrowAddr, ix)
	if err != nil {
		return err
	}

	receipt, err := newClient(cfg).Submit(tx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			printLogs(apiErr.Response.Logs)
		}
		return err
	}
	printLogs(receipt.Logs)
	if s := receipt.Settlement; s != nil {
		fmt.Printf("called %s, landed %s", s.Side, s.Result)
		if s.Won {
			fmt.Printf(", paid %s", notifier.FormatLamports(s.Payout))
		}
		fmt.Println()
	}
	return nil
}

func printLogs(logs []string) {
	for _, line := range logs {
		fmt.Printf("  program log: %s\n", line)
	}
}

// resolveAddress accepts a raw address or the name of a stored key.
func resolveAddress(cfg *config.Config, nameOrAddr string) (model.Address, error) {
	nameOrAddr = strings.TrimSpace(nameOrAddr)
	if _, err := keys.ParseAddress(nameOrAddr); err == nil {
		return model.Address(nameOrAddr), nil
	}
	key, err := keys.Load(keys.Path(cfg.Keys.Dir, nameOrAddr))
	if err != nil {
		return "", fmt.Errorf("%q is neither an address nor a stored key: %w", nameOrAddr, err)
	}
	return key.Address, nil
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.Node.URL, cfg.Proxy)
}
