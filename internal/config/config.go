// Package config defines the input record for feasibility calculations, the
// default lookup tables, and the application configuration loading.
package config

import (
	"fmt"

	"github.com/ggtech/housing-feasibility/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for housing-feasibility.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Currency  CurrencyConfig  `yaml:"currency,omitempty"`
	Assistant AssistantConfig `yaml:"assistant,omitempty"`
	Quota     QuotaConfig     `yaml:"quota,omitempty"`
	Defaults  DefaultsConfig  `yaml:"defaults,omitempty"`
	Project   *Inputs         `yaml:"project,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// CurrencyConfig holds the USD/TRY rate provider settings.
type CurrencyConfig struct {
	URL                 string `yaml:"url,omitempty"`
	CacheTTLMinutes     int    `yaml:"cacheTTLMinutes,omitempty"`
	FetchTimeoutSeconds int    `yaml:"fetchTimeoutSeconds,omitempty"`
	Disabled            bool   `yaml:"disabled,omitempty"`
}

// AssistantConfig holds settings for the chat input extractor.
type AssistantConfig struct {
	Model string `yaml:"model,omitempty"`
}

// QuotaConfig holds the per-caller daily computation limit.
type QuotaConfig struct {
	DailyLimit int `yaml:"dailyLimit,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. All findings are advisory; defaults cover every gap.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Output.Format {
	case "", constants.OutputFormatPretty, constants.OutputFormatCSV:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown output format %q; falling back to %s",
			c.Output.Format, constants.OutputFormatPretty))
	}

	if c.Quota.DailyLimit < 0 {
		warnings = append(warnings, "quota dailyLimit is negative; treating as unlimited")
	}

	if c.Currency.CacheTTLMinutes < 0 {
		warnings = append(warnings, "currency cacheTTLMinutes is negative; using the default TTL")
	}

	if c.Project != nil {
		if c.Project.ParkingType != "" && !c.Project.ParkingType.Valid() {
			warnings = append(warnings, fmt.Sprintf("project parkingType %q is not recognized (expected OPEN or ENCLOSED)",
				c.Project.ParkingType))
		}
		if c.Project.HousingClass != "" && !c.Project.HousingClass.Valid() {
			warnings = append(warnings, fmt.Sprintf("project housingClass %q is not recognized (expected LOW, MID, or HIGH)",
				c.Project.HousingClass))
		}
	}

	return warnings
}
