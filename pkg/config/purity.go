package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Purity describes a single fineness code usable on transactions and in the
// gold calculator.
type Purity struct {
	Code     string  `yaml:"code"`     // e.g. "916"
	Label    string  `yaml:"label"`    // e.g. "22K"
	Fineness float64 `yaml:"fineness"` // metal fraction, 0..1
	Metal    string  `yaml:"metal"`    // "gold" (default) or "silver"
}

// PurityConfig is the loaded purity table.
type PurityConfig struct {
	Purities []Purity `yaml:"purities"`
}

// defaultPurities matches the fixed set the shop has always used.
var defaultPurities = []Purity{
	{Code: "916", Label: "22K", Fineness: 0.916, Metal: "gold"},
	{Code: "750", Label: "18K", Fineness: 0.750, Metal: "gold"},
	{Code: "585", Label: "14K", Fineness: 0.585, Metal: "gold"},
	{Code: "999", Label: "24K", Fineness: 0.999, Metal: "gold"},
	{Code: "925", Label: "Silver 925", Fineness: 0.925, Metal: "silver"},
}

// DefaultPurityConfig returns the built-in purity table.
func DefaultPurityConfig() *PurityConfig {
	return &PurityConfig{Purities: defaultPurities}
}

// LoadPurityConfig loads the purity table from a YAML file. An empty path
// returns the built-in table.
func LoadPurityConfig(path string) (*PurityConfig, error) {
	if path == "" {
		return DefaultPurityConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read purity config: %w", err)
	}

	var cfg PurityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse purity config: %w", err)
	}

	if len(cfg.Purities) == 0 {
		return nil, fmt.Errorf("purity config %s defines no purities", path)
	}

	for _, p := range cfg.Purities {
		if p.Code == "" {
			return nil, fmt.Errorf("purity config %s contains an entry without a code", path)
		}
		if p.Fineness <= 0 || p.Fineness > 1 {
			return nil, fmt.Errorf("purity %s has fineness %v outside (0, 1]", p.Code, p.Fineness)
		}
	}

	return &cfg, nil
}

// Codes returns the purity codes in table order.
func (c *PurityConfig) Codes() []string {
	codes := make([]string, 0, len(c.Purities))
	for _, p := range c.Purities {
		codes = append(codes, p.Code)
	}
	return codes
}

// Get returns the purity entry for a code.
func (c *PurityConfig) Get(code string) (Purity, bool) {
	for _, p := range c.Purities {
		if p.Code == code {
			return p, true
		}
	}
	return Purity{}, false
}

// Fineness returns the metal fraction for a purity code.
func (c *PurityConfig) Fineness(code string) (float64, bool) {
	p, ok := c.Get(code)
	return p.Fineness, ok
}

// IsValidCode reports whether the purity code is known.
func (c *PurityConfig) IsValidCode(code string) bool {
	_, ok := c.Get(code)
	return ok
}
