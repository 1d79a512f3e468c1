package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration for the trading simulator.
type Config struct {
	Port               int
	LogLevel           string
	ExpirationInterval time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration

	// Market session. Open and close are offsets from local midnight.
	MarketOpen     time.Duration
	MarketClose    time.Duration
	MarketLocation *time.Location
	TradingDays    []time.Weekday

	CommissionRate  decimal.Decimal
	TaxRate         decimal.Decimal
	DefaultBrokerID string

	JournalDriver string
	JournalDSN    string

	SettingsFile string
	Settings     *Settings
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	expirationInterval, err := getDuration("EXPIRATION_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRATION_INTERVAL: %w", err)
	}
	if expirationInterval <= 0 {
		return nil, fmt.Errorf("invalid EXPIRATION_INTERVAL: must be > 0")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	marketOpen, err := getClock("MARKET_OPEN_TIME", "09:30")
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_OPEN_TIME: %w", err)
	}

	marketClose, err := getClock("MARKET_CLOSE_TIME", "16:00")
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_CLOSE_TIME: %w", err)
	}
	if marketClose <= marketOpen {
		return nil, fmt.Errorf("invalid MARKET_CLOSE_TIME: must be after MARKET_OPEN_TIME")
	}

	location, err := time.LoadLocation(getStr("MARKET_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_TIMEZONE: %w", err)
	}

	tradingDays, err := getWeekdays("MARKET_TRADING_DAYS", "mon,tue,wed,thu,fri")
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_TRADING_DAYS: %w", err)
	}

	commissionRate, err := getRate("COMMISSION_RATE", "0.001")
	if err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATE: %w", err)
	}

	taxRate, err := getRate("TAX_RATE", "0.0005")
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}

	journalDriver := getStr("JOURNAL_DRIVER", "memory")
	journalDSN := getStr("JOURNAL_DSN", "")
	switch journalDriver {
	case "memory":
	case "sqlite", "postgres":
		if journalDSN == "" {
			return nil, fmt.Errorf("invalid JOURNAL_DSN: required for JOURNAL_DRIVER=%s", journalDriver)
		}
	default:
		return nil, fmt.Errorf("invalid JOURNAL_DRIVER: %q, must be one of: memory, sqlite, postgres", journalDriver)
	}

	settingsFile := getStr("SETTINGS_FILE", "")
	settings := &Settings{}
	if settingsFile != "" {
		settings, err = LoadSettings(settingsFile)
		if err != nil {
			return nil, fmt.Errorf("invalid SETTINGS_FILE: %w", err)
		}
	}

	return &Config{
		Port:               port,
		LogLevel:           logLevel,
		ExpirationInterval: expirationInterval,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		ShutdownTimeout:    shutdownTimeout,
		MarketOpen:         marketOpen,
		MarketClose:        marketClose,
		MarketLocation:     location,
		TradingDays:        tradingDays,
		CommissionRate:     commissionRate,
		TaxRate:            taxRate,
		DefaultBrokerID:    getStr("DEFAULT_BROKER_ID", ""),
		JournalDriver:      journalDriver,
		JournalDSN:         journalDSN,
		SettingsFile:       settingsFile,
		Settings:           settings,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// getClock parses an HH:MM wall-clock time into an offset from midnight.
func getClock(key, defaultVal string) (time.Duration, error) {
	t, err := time.Parse("15:04", getStr(key, defaultVal))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getRate(key, defaultVal string) (decimal.Decimal, error) {
	r, err := decimal.NewFromString(getStr(key, defaultVal))
	if err != nil {
		return decimal.Zero, err
	}
	if err := checkRate(r); err != nil {
		return decimal.Zero, err
	}
	return r, nil
}

func checkRate(r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate %s must be in [0, 1)", r)
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func getWeekdays(key, defaultVal string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, s := range strings.Split(getStr(key, defaultVal), ",") {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", s)
		}
		days = append(days, wd)
	}
	return days, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
