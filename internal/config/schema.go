package config

import "github.com/pagelingo/pagelingo/internal/usage"

// Config holds pagelingo configuration.
// Stored at: ~/.pagelingo/config.yaml
type Config struct {
	Providers map[string]ProviderCfg        `mapstructure:"providers" yaml:"providers" json:"providers"`
	Pricing   map[string]usage.ModelPricing `mapstructure:"pricing" yaml:"pricing" json:"pricing"`
	Defaults  DefaultsCfg                   `mapstructure:"defaults" yaml:"defaults" json:"defaults"`
	Server    ServerCfg                     `mapstructure:"server" yaml:"server" json:"server"`
}

// ProviderCfg configures a generation provider.
type ProviderCfg struct {
	Type       string `mapstructure:"type" yaml:"type" json:"type"`                      // "gemini", "openai", "mock"
	ImageModel string `mapstructure:"image_model" yaml:"image_model" json:"image_model"` // redraw model
	TextModel  string `mapstructure:"text_model" yaml:"text_model" json:"text_model"`    // extraction/audit model
	APIKey     string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`             // API key (supports ${ENV_VAR} syntax)
	RPM        int    `mapstructure:"rpm" yaml:"rpm" json:"rpm"`                         // Requests per minute
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// DefaultsCfg specifies default translation settings.
type DefaultsCfg struct {
	Provider      string `mapstructure:"provider" yaml:"provider" json:"provider"`                   // Default generation provider
	TargetLang    string `mapstructure:"target_lang" yaml:"target_lang" json:"target_lang"`          // Default target language
	SourceLang    string `mapstructure:"source_lang" yaml:"source_lang" json:"source_lang"`          // Default source language
	Mode          string `mapstructure:"mode" yaml:"mode" json:"mode"`                               // "DIRECT" or "TWO_STEP"
	RetryAttempts int    `mapstructure:"retry_attempts" yaml:"retry_attempts" json:"retry_attempts"` // Total attempts per remote call
	RetryDelayMS  int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms" json:"retry_delay_ms"` // Fixed delay between attempts
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"gemini": {
				Type:       "gemini",
				ImageModel: "gemini-2.5-flash-image",
				TextModel:  "gemini-2.5-flash",
				APIKey:     "${GEMINI_API_KEY}",
				RPM:        10,
				Enabled:    true,
			},
			"openai": {
				Type:       "openai",
				ImageModel: "gpt-image-1",
				TextModel:  "gpt-4o",
				APIKey:     "${OPENAI_API_KEY}",
				RPM:        60,
				Enabled:    false,
			},
		},
		Pricing: map[string]usage.ModelPricing{
			"gemini-2.5-flash":       {InputPerMillion: 0.30, OutputPerMillion: 2.50},
			"gemini-2.5-flash-image": {InputPerMillion: 0.30, OutputPerMillion: 30.00},
			"gpt-4o":                 {InputPerMillion: 2.50, OutputPerMillion: 10.00},
			"gpt-image-1":            {InputPerMillion: 10.00, OutputPerMillion: 40.00},
		},
		Defaults: DefaultsCfg{
			Provider:      "gemini",
			SourceLang:    "auto-detect",
			Mode:          "TWO_STEP",
			RetryAttempts: 3,
			RetryDelayMS:  10000,
		},
		Server: ServerCfg{
			Addr: ":8585",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// PricingFor returns the pricing for a model, zero-valued when unpriced.
func (c *Config) PricingFor(model string) usage.ModelPricing {
	return c.Pricing[model]
}
