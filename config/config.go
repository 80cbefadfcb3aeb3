// Package config loads the YAML/JSON file that shapes a ledger run.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
	"github.com/rustyeddy/ledger/pkg/logger"
)

// Config represents the complete ledger configuration
type Config struct {
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Costs   CostsConfig   `json:"costs" yaml:"costs"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// LedgerConfig picks the record kind and how it matches exits.
type LedgerConfig struct {
	Name         string `json:"name" yaml:"name"`
	Kind         string `json:"kind" yaml:"kind"`                   // base, multi or live
	StartingSide string `json:"starting_side" yaml:"starting_side"` // buy or sell
	MatchPolicy  string `json:"match_policy" yaml:"match_policy"`
}

type CostsConfig struct {
	Transaction CostConfig `json:"transaction" yaml:"transaction"`
	Holding     CostConfig `json:"holding" yaml:"holding"`
}

// CostConfig names a cost model. Rate is a per-trade rate, a flat fee or a
// per-period borrowing rate depending on Type.
type CostConfig struct {
	Type string  `json:"type" yaml:"type"`
	Rate num.Num `json:"rate" yaml:"rate,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
	ExposureFile  string `json:"exposure_file,omitempty" yaml:"exposure_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

const (
	KindBase  = "base"
	KindMulti = "multi"
	KindLive  = "live"
)

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Ledger.Name) == "" {
		return fmt.Errorf("ledger.name is required")
	}
	if _, err := ledger.ParseSide(c.Ledger.StartingSide); err != nil {
		return fmt.Errorf("ledger.starting_side: %w", err)
	}
	policy, err := ledger.ParseMatchPolicy(c.Ledger.MatchPolicy)
	if err != nil {
		return fmt.Errorf("ledger.match_policy: %w", err)
	}

	switch c.Ledger.Kind {
	case KindBase:
	case KindMulti:
		if policy != ledger.FIFO && policy != ledger.LIFO {
			return fmt.Errorf("ledger.match_policy %s is not supported by a multi ledger", policy)
		}
	case KindLive:
		switch c.Costs.Transaction.Type {
		case "", "recorded":
		default:
			return fmt.Errorf("costs.transaction.type must be 'recorded' for a live ledger, fees come from fills")
		}
	default:
		return fmt.Errorf("ledger.kind must be 'base', 'multi' or 'live'")
	}

	if _, _, err := c.Costs.Models(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.PositionsFile == "" || c.Journal.ExposureFile == "" {
			return fmt.Errorf("journal positions_file and exposure_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Models builds the transaction and holding cost models.
func (c CostsConfig) Models() (transaction, holding ledger.CostModel, err error) {
	rate := func(name string, cc CostConfig) (num.Num, error) {
		if cc.Rate.IsNaN() || cc.Rate.IsNegative() {
			return num.Num{}, fmt.Errorf("costs.%s.rate must not be negative", name)
		}
		return cc.Rate, nil
	}

	r, err := rate("transaction", c.Transaction)
	if err != nil {
		return nil, nil, err
	}
	switch c.Transaction.Type {
	case "", "zero":
		transaction = ledger.ZeroCost{}
	case "linear":
		transaction = ledger.NewLinearTransactionCost(r)
	case "fixed":
		transaction = ledger.NewFixedTransactionCost(r)
	case "recorded":
		transaction = ledger.RecordedTradeCost{}
	default:
		return nil, nil, fmt.Errorf("costs.transaction.type must be 'zero', 'linear', 'fixed' or 'recorded'")
	}

	r, err = rate("holding", c.Holding)
	if err != nil {
		return nil, nil, err
	}
	switch c.Holding.Type {
	case "", "zero":
		holding = ledger.ZeroCost{}
	case "borrowing":
		holding = ledger.NewLinearBorrowingCost(r)
	default:
		return nil, nil, fmt.Errorf("costs.holding.type must be 'zero' or 'borrowing'")
	}
	return transaction, holding, nil
}

// Options turns the ledger and cost sections into record options.
func (c *Config) Options(log zerolog.Logger) ([]ledger.Option, error) {
	side, err := ledger.ParseSide(c.Ledger.StartingSide)
	if err != nil {
		return nil, err
	}
	policy, err := ledger.ParseMatchPolicy(c.Ledger.MatchPolicy)
	if err != nil {
		return nil, err
	}
	transaction, holding, err := c.Costs.Models()
	if err != nil {
		return nil, err
	}
	return []ledger.Option{
		ledger.WithName(c.Ledger.Name),
		ledger.WithStartingSide(side),
		ledger.WithMatchPolicy(policy),
		ledger.WithCostModels(transaction, holding),
		ledger.WithLogger(log.With().Str("component", "ledger").Str("record", c.Ledger.Name).Logger()),
	}, nil
}

// NewRecord builds the configured ledger. Extra options are applied last.
func (c *Config) NewRecord(log zerolog.Logger, extra ...ledger.Option) (ledger.Record, error) {
	opts, err := c.Options(log)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	switch c.Ledger.Kind {
	case KindBase:
		return ledger.NewBaseRecord(opts...), nil
	case KindMulti:
		r, err := ledger.NewMultiRecord(opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	case KindLive:
		return ledger.NewLiveRecord(opts...), nil
	}
	return nil, fmt.Errorf("unknown ledger kind %q", c.Ledger.Kind)
}

// OpenJournal opens the configured journal, or returns nil for "none".
func (c *Config) OpenJournal() (journal.Journal, error) {
	switch c.Journal.Type {
	case "", "none":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(c.Journal.PositionsFile, c.Journal.ExposureFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(c.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return j, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Journal.Type)
}

func (c *Config) Logger() zerolog.Logger {
	return logger.New(logger.Config{Level: c.Log.Level, Pretty: c.Log.Pretty})
}

// Default returns a live FIFO ledger journaling to CSV.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Name:         "default",
			Kind:         KindLive,
			StartingSide: "buy",
			MatchPolicy:  ledger.FIFO.String(),
		},
		Costs: CostsConfig{
			Transaction: CostConfig{Type: "recorded"},
			Holding:     CostConfig{Type: "zero"},
		},
		Journal: JournalConfig{
			Type:          "csv",
			PositionsFile: "./positions.csv",
			ExposureFile:  "./exposure.csv",
		},
		Log: LogConfig{Level: "info"},
	}
}
