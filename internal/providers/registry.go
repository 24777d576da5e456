package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to generation clients. It supports
// config-driven instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]GenerationClient
	logger  *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]GenerationClient),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers a generation client by name.
func (r *Registry) Register(name string, client GenerationClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	if r.logger != nil {
		r.logger.Info("registered generation client", "name", name)
	}
}

// Unregister removes a generation client by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
	if r.logger != nil {
		r.logger.Info("unregistered generation client", "name", name)
	}
}

// Get returns a generation client by name.
func (r *Registry) Get(name string) (GenerationClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("generation client not found: %s", name)
	}
	return client, nil
}

// List returns all registered client names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Has checks if a generation client is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// Providers maps provider names to their config with resolved API keys.
	Providers map[string]ProviderConfig
}

// ProviderConfig matches config.ProviderCfg with resolved API key.
type ProviderConfig struct {
	Type       string // "gemini", "openai", "mock"
	ImageModel string // image generation model
	TextModel  string // structured extraction/audit model
	APIKey     string // Resolved API key
	RPM        int    // Requests per minute
	Enabled    bool
}

// NewRegistryFromConfig creates a registry with providers based on
// configuration. Only enabled providers with valid API keys are registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	for name, provCfg := range cfg.Providers {
		if !provCfg.Enabled || (provCfg.APIKey == "" && provCfg.Type != "mock") {
			continue
		}
		if client := createClient(provCfg); client != nil {
			r.clients[name] = client
		}
	}
	return r
}

// Reload updates the registry based on new configuration. Providers that
// are no longer configured are unregistered; providers with changed
// settings are re-registered.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)

	for name, provCfg := range cfg.Providers {
		if !provCfg.Enabled || (provCfg.APIKey == "" && provCfg.Type != "mock") {
			continue
		}
		want[name] = true

		existing, hasExisting := r.clients[name]
		if !hasExisting || needsUpdate(existing, provCfg) {
			client := createClient(provCfg)
			if client != nil {
				r.clients[name] = client
				if r.logger != nil {
					if hasExisting {
						r.logger.Info("updated generation client", "name", name, "type", provCfg.Type)
					} else {
						r.logger.Info("registered generation client", "name", name, "type", provCfg.Type)
					}
				}
			}
		}
	}

	for name := range r.clients {
		if !want[name] {
			delete(r.clients, name)
			if r.logger != nil {
				r.logger.Info("unregistered generation client", "name", name)
			}
		}
	}
}

// createClient creates a generation client based on provider type.
func createClient(cfg ProviderConfig) GenerationClient {
	switch cfg.Type {
	case "gemini":
		return NewGeminiClient(GeminiConfig{
			APIKey:     cfg.APIKey,
			ImageModel: cfg.ImageModel,
			TextModel:  cfg.TextModel,
			RPM:        cfg.RPM,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			ImageModel: cfg.ImageModel,
			TextModel:  cfg.TextModel,
			RPM:        cfg.RPM,
		})
	case "mock":
		return NewMockClient()
	default:
		return nil
	}
}

// needsUpdate checks if a client needs to be recreated.
func needsUpdate(client GenerationClient, cfg ProviderConfig) bool {
	switch c := client.(type) {
	case *GeminiClient:
		return c.apiKey != cfg.APIKey ||
			(cfg.ImageModel != "" && c.imageModel != cfg.ImageModel) ||
			(cfg.TextModel != "" && c.textModel != cfg.TextModel) ||
			(cfg.RPM != 0 && c.rpm != cfg.RPM)
	case *OpenAIClient:
		return c.apiKey != cfg.APIKey ||
			(cfg.ImageModel != "" && c.imageModel != cfg.ImageModel) ||
			(cfg.TextModel != "" && c.textModel != cfg.TextModel) ||
			(cfg.RPM != 0 && c.rpm != cfg.RPM)
	case *MockClient:
		return false
	default:
		return true
	}
}
