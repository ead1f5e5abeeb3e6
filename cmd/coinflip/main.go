package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinFlip/internal/api"
	"CoinFlip/internal/config"
	"CoinFlip/internal/ledger"
	"CoinFlip/internal/notifier"
	"CoinFlip/internal/scheduler"
	"CoinFlip/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	commands := map[string]func(args []string) error{
		"serve":         cmdServe,
		"keygen":        cmdKeygen,
		"create-escrow": cmdCreateEscrow,
		"airdrop":       cmdAirdrop,
		"initialize":    cmdInitialize,
		"bet":           cmdBet,
		"status":        cmdStatus,
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(1)
	}
	if err := cmd(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("coinflip serve | keygen | create-escrow | airdrop | initialize | bet | status")
}

func loadConfig() (*config.Config, error) {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func cmdServe(_ []string) error {
	log.Println("[INFO] coinflip node starting...")
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Init store and restore the last snapshot
	st, err := store.Open(cfg.Store.Driver, cfg.Store.SQLitePath, cfg.Store.StateFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	l := ledger.New(ledger.Options{
		Rent: ledger.Rent{
			LamportsPerByteYear:     cfg.Ledger.LamportsPerByteYear,
			ExemptionThresholdYears: cfg.Ledger.ExemptionThresholdYears,
		},
		FaucetMaxLamports: cfg.Ledger.FaucetMaxLamports,
	})
	accts, err := st.LoadAccounts()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	l.Restore(accts)
	log.Printf("[INFO] restored %d accounts from %s store", len(accts), cfg.Store.Driver)

	// Init notifier
	var n notifier.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications go to the log")
		n = notifier.NewLogNotifier()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiSrv := api.NewServer(ctx, l, n, cfg.Ledger.FaucetLamports)
	httpSrv := &http.Server{
		Addr:              cfg.Node.ListenAddr,
		Handler:           apiSrv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[INFO] node API listening on %s", cfg.Node.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, l, st, n)
	if err := sched.RegisterAll(cfg.Schedule.SnapshotCron, cfg.Schedule.ReportCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] coinflip node is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case runErr = <-serveErr:
		log.Printf("[ERROR] node API: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	sched.Stop()
	cancel()
	apiSrv.Wait()

	if err := sched.SnapshotNow(); err != nil {
		log.Printf("[ERROR] final snapshot: %v", err)
	}
	log.Println("[INFO] coinflip node stopped")
	return runErr
}
