package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Node struct {
		ListenAddr string `yaml:"listen_addr" env:"COINFLIP_LISTEN_ADDR"`
		URL        string `yaml:"url" env:"COINFLIP_NODE_URL"`
	} `yaml:"node"`
	Ledger struct {
		LamportsPerByteYear     uint64 `yaml:"lamports_per_byte_year" env:"COINFLIP_LAMPORTS_PER_BYTE_YEAR"`
		ExemptionThresholdYears uint64 `yaml:"exemption_threshold_years" env:"COINFLIP_EXEMPTION_THRESHOLD_YEARS"`
		FaucetLamports          uint64 `yaml:"faucet_lamports" env:"COINFLIP_FAUCET_LAMPORTS"`
		FaucetMaxLamports       uint64 `yaml:"faucet_max_lamports" env:"COINFLIP_FAUCET_MAX_LAMPORTS"`
	} `yaml:"ledger"`
	Store struct {
		Driver     string `yaml:"driver" env:"COINFLIP_STORE_DRIVER"`
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
		StateFile  string `yaml:"state_file" env:"COINFLIP_STATE_FILE"`
	} `yaml:"store"`
	Keys struct {
		Dir string `yaml:"dir" env:"COINFLIP_KEYS_DIR"`
	} `yaml:"keys"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron" env:"CRON_SNAPSHOT"`
		ReportCron   string `yaml:"report_cron" env:"CRON_REPORT"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy" env:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides; unset variables leave the file values alone.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Node.ListenAddr == "" {
		c.Node.ListenAddr = ":8899"
	}
	if c.Node.URL == "" {
		c.Node.URL = "http://localhost:8899"
	}
	if c.Ledger.LamportsPerByteYear == 0 {
		c.Ledger.LamportsPerByteYear = 3480
	}
	if c.Ledger.ExemptionThresholdYears == 0 {
		c.Ledger.ExemptionThresholdYears = 2
	}
	if c.Ledger.FaucetLamports == 0 {
		c.Ledger.FaucetLamports = 1_000_000_000
	}
	if c.Ledger.FaucetMaxLamports == 0 {
		c.Ledger.FaucetMaxLamports = 5_000_000_000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "data/coinflip.db"
	}
	if c.Store.StateFile == "" {
		c.Store.StateFile = "data/ledger_state.json"
	}
	if c.Keys.Dir == "" {
		c.Keys.Dir = "data/keys"
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 */1 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "file", "none":
	default:
		return fmt.Errorf("store.driver must be sqlite, file or none, got %q", c.Store.Driver)
	}
	if c.Ledger.FaucetLamports > c.Ledger.FaucetMaxLamports {
		return fmt.Errorf("ledger.faucet_lamports (%d) exceeds ledger.faucet_max_lamports (%d)",
			c.Ledger.FaucetLamports, c.Ledger.FaucetMaxLamports)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.SnapshotCron); err != nil {
		return fmt.Errorf("schedule.snapshot_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
		return fmt.Errorf("schedule.report_cron: %w", err)
	}
	return nil
}
