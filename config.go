package dailydiesel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the whole configuration surface of the engine, constructed once
// at process start and passed into the constructors. Core logic never reads
// the environment; only secrets may be overridden by env variables here at
// load time.
type Config struct {
	// Provider selects the price source: "fred" (default) or "eia".
	Provider string `yaml:"provider"`

	FredAPIKey string `yaml:"fred_api_key"`
	EIAAPIKey  string `yaml:"eia_api_key"`

	// Series identifiers at the provider. Defaults are the FRED Brent spot
	// (USD/bbl) and NY Harbor ULSD (USD/gal) series.
	BrentSeries  string `yaml:"brent_series"`
	DieselSeries string `yaml:"diesel_series"`

	// DieselUnit is the diesel series' quotation unit, GAL or BBL.
	DieselUnit string `yaml:"diesel_unit"`

	LedgerPath    string `yaml:"ledger_path"`
	HeartbeatPath string `yaml:"heartbeat_path"`

	// EmailDay is the reporting weekday symbol (MON..SUN), default FRI.
	EmailDay string `yaml:"email_day"`
	// EmailBasis decides which date is tested against EmailDay:
	// "execution" (default) or "observation".
	EmailBasis string `yaml:"email_basis"`

	// LookbackDays bounds the window used to find the latest observation.
	LookbackDays int `yaml:"lookback_days"`

	SMTP       SMTPConfig `yaml:"smtp"`
	Recipients []string   `yaml:"recipients"`
}

// SMTPConfig carries the notifier's delivery settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Provider:      "fred",
		BrentSeries:   "DCOILBRENTEU",
		DieselSeries:  "DDFUELNYH",
		DieselUnit:    "GAL",
		LedgerPath:    "data/ledger.csv",
		HeartbeatPath: "runtime/heartbeat.json",
		EmailDay:      "FRI",
		EmailBasis:    "execution",
		LookbackDays:  60,
	}
}

// LoadConfig reads the YAML configuration file and applies env overrides for
// secrets (FRED_API_KEY, EIA_API_KEY, SMTP_PASSWORD). A missing file yields
// the defaults; a malformed file is a configuration error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return Config{}, fmt.Errorf("%w: read config %q: %v", ErrConfiguration, path, err)
	default:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse config %q: %v", ErrConfiguration, path, err)
		}
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.FredAPIKey = v
	}
	if v := os.Getenv("EIA_API_KEY"); v != "" {
		cfg.EIAAPIKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	return cfg, nil
}

// Schedule builds the reporting schedule from the configured weekday symbol
// and decision basis.
func (c Config) Schedule() Schedule {
	return Schedule{Weekday: ParseWeekday(c.EmailDay), Basis: ParseBasis(c.EmailBasis)}
}

// Unit resolves the diesel series' quotation unit.
func (c Config) Unit() (Unit, error) { return ParseUnit(c.DieselUnit) }

// Validate checks the settings required to fetch prices. Notifier settings
// are validated separately, only when sending is requested.
func (c Config) Validate() error {
	if _, err := c.Unit(); err != nil {
		return err
	}
	switch c.Provider {
	case "fred":
		if c.FredAPIKey == "" {
			return fmt.Errorf("%w: FRED_API_KEY is not set", ErrConfiguration)
		}
	case "eia":
		if c.EIAAPIKey == "" {
			return fmt.Errorf("%w: EIA_API_KEY is not set", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q (want fred or eia)", ErrConfiguration, c.Provider)
	}
	if c.BrentSeries == "" || c.DieselSeries == "" {
		return fmt.Errorf("%w: both series identifiers are required", ErrConfiguration)
	}
	if c.LedgerPath == "" || c.HeartbeatPath == "" {
		return fmt.Errorf("%w: ledger and heartbeat paths are required", ErrConfiguration)
	}
	return nil
}

// ValidateNotifier checks the settings required to send the weekly email.
func (c Config) ValidateNotifier() error {
	if c.SMTP.Host == "" || c.SMTP.Port == 0 {
		return fmt.Errorf("%w: smtp host and port are required to send email", ErrConfiguration)
	}
	if c.SMTP.From == "" {
		return fmt.Errorf("%w: smtp from address is required to send email", ErrConfiguration)
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required to send email", ErrConfiguration)
	}
	return nil
}
