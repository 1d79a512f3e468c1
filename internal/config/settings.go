package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Settings is the optional YAML file named by SETTINGS_FILE. It seeds the
// commission rate table and the broker assignments.
//
//	commission_rates:
//	  AAPL: "0.002"
//	broker_assignments:
//	  account-1: broker-1
type Settings struct {
	CommissionRates   map[string]decimal.Decimal
	BrokerAssignments map[string]string
}

type settingsFile struct {
	CommissionRates   map[string]string `yaml:"commission_rates"`
	BrokerAssignments map[string]string `yaml:"broker_assignments"`
}

// LoadSettings reads and validates the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSettings(raw)
}

// ParseSettings decodes settings YAML. Unknown keys are rejected.
func ParseSettings(raw []byte) (*Settings, error) {
	var f settingsFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	s := &Settings{
		CommissionRates:   make(map[string]decimal.Decimal, len(f.CommissionRates)),
		BrokerAssignments: make(map[string]string, len(f.BrokerAssignments)),
	}
	for symbol, v := range f.CommissionRates {
		r, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("commission rate for %s: %w", symbol, err)
		}
		if err := checkRate(r); err != nil {
			return nil, fmt.Errorf("commission rate for %s: %w", symbol, err)
		}
		s.CommissionRates[symbol] = r
	}
	for account, broker := range f.BrokerAssignments {
		if account == "" || broker == "" {
			return nil, fmt.Errorf("broker assignment %q: %q must name both sides", account, broker)
		}
		s.BrokerAssignments[account] = broker
	}
	return s, nil
}
