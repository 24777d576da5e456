package session

import (
	"sync"
	"testing"
)

func TestMergeKeepsExistingOnEmptyOverride(t *testing.T) {
	base := Settings{Provider: "gemini", TargetLang: "Spanish", Mode: "TWO_STEP"}

	got := base.Merge(Settings{TargetLang: "French", Glossary: "chat=cat"})
	if got.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", got.Provider)
	}
	if got.TargetLang != "French" {
		t.Errorf("target lang = %q, want French", got.TargetLang)
	}
	if got.Mode != "TWO_STEP" {
		t.Errorf("mode = %q, want TWO_STEP", got.Mode)
	}
	if got.Glossary != "chat=cat" {
		t.Errorf("glossary = %q", got.Glossary)
	}
}

func TestUpdateSettingsAccumulates(t *testing.T) {
	s := New()
	s.SetSettings(Settings{TargetLang: "Spanish"})

	merged := s.UpdateSettings(Settings{Mode: "DIRECT"})
	if merged.TargetLang != "Spanish" || merged.Mode != "DIRECT" {
		t.Errorf("merged = %+v", merged)
	}
	if got := s.Settings(); got != merged {
		t.Errorf("Settings() = %+v, want %+v", got, merged)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.UpdateSettings(Settings{TargetLang: "German"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Document()
		}()
	}
	wg.Wait()

	if s.Settings().TargetLang != "German" {
		t.Errorf("target lang = %q", s.Settings().TargetLang)
	}
}
