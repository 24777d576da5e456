package endpoints

import (
	"testing"

	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/session"
)

func TestRedactedMasksLiteralKeys(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderCfg{
			"gemini": {Type: "gemini", APIKey: "${GEMINI_API_KEY}"},
			"openai": {Type: "openai", APIKey: "sk-literal-secret"},
			"mock":   {Type: "mock"},
		},
	}

	got := redacted(cfg)
	if got.Providers["gemini"].APIKey != "${GEMINI_API_KEY}" {
		t.Errorf("env reference should pass through, got %q", got.Providers["gemini"].APIKey)
	}
	if got.Providers["openai"].APIKey != "<redacted>" {
		t.Errorf("literal key should be masked, got %q", got.Providers["openai"].APIKey)
	}
	if got.Providers["mock"].APIKey != "" {
		t.Errorf("empty key should stay empty, got %q", got.Providers["mock"].APIKey)
	}

	// Original is untouched.
	if cfg.Providers["openai"].APIKey != "sk-literal-secret" {
		t.Error("redaction mutated the source config")
	}
}

func TestControllerSettingsConversion(t *testing.T) {
	s := session.Settings{
		TargetLang: "Japanese",
		SourceLang: "English",
		Mode:       "TWO_STEP",
		Glossary:   "inc=株式会社",
	}

	got := controllerSettings(s)
	if got.TargetLang != "Japanese" || string(got.Mode) != "TWO_STEP" || got.Glossary != "inc=株式会社" {
		t.Errorf("converted settings = %+v", got)
	}
}
