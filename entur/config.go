package entur

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultNumberOfDepartures is used when Config.NumberOfDepartures is zero.
const DefaultNumberOfDepartures = 2

// Config is the constructor-time configuration of a Service.
type Config struct {
	// ClientName is sent in the ET-Client-Name header, e.g. "acme-homeassistant".
	ClientName string `yaml:"clientName" validate:"required"`
	// Endpoint overrides DefaultEndpoint.
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	Stops []string `yaml:"stops" validate:"dive,required"`
	Quays []string `yaml:"quays" validate:"dive,required"`
	// ExpandQuays makes Open discover the platforms of multi-platform stops.
	ExpandQuays bool `yaml:"expandQuays"`

	LineWhitelist []string `yaml:"lineWhitelist" validate:"dive,required"`
	// OmitNonBoarding drops calls where passengers cannot board. Nil means true.
	OmitNonBoarding    *bool `yaml:"omitNonBoarding"`
	NumberOfDepartures int   `yaml:"numberOfDepartures" validate:"gte=0,lte=100"`

	// RequestsPerMinute paces outgoing requests; zero disables pacing.
	RequestsPerMinute int `yaml:"requestsPerMinute" validate:"gte=0"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct constraints of cfg.
func (cfg Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// queryOptions resolves defaults into the options used to build queries.
func (cfg Config) queryOptions() QueryOptions {
	opts := QueryOptions{
		NumberOfDepartures: cfg.NumberOfDepartures,
		OmitNonBoarding:    true,
		LineWhitelist:      append([]string(nil), cfg.LineWhitelist...),
	}
	if opts.NumberOfDepartures == 0 {
		opts.NumberOfDepartures = DefaultNumberOfDepartures
	}
	if cfg.OmitNonBoarding != nil {
		opts.OmitNonBoarding = *cfg.OmitNonBoarding
	}
	return opts
}
