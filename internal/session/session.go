// Package session holds the server's current document and translation
// settings. Page content itself lives in the pages store; this is the
// small bit of mutable identity around it.
package session

import "sync"

// Document identifies the ingested document the page store belongs to.
type Document struct {
	DocID     string `json:"doc_id"`
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
}

// Settings are the active translation parameters. They are set at ingest
// or project load and updated by each translate request, so retries and
// detached evaluations reuse the same parameters.
type Settings struct {
	Provider   string `json:"provider,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	SourceLang string `json:"source_lang,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Glossary   string `json:"glossary,omitempty"`
}

// Merge overlays non-empty fields of other onto s and returns the result.
func (s Settings) Merge(other Settings) Settings {
	if other.Provider != "" {
		s.Provider = other.Provider
	}
	if other.TargetLang != "" {
		s.TargetLang = other.TargetLang
	}
	if other.SourceLang != "" {
		s.SourceLang = other.SourceLang
	}
	if other.Mode != "" {
		s.Mode = other.Mode
	}
	if other.Glossary != "" {
		s.Glossary = other.Glossary
	}
	return s
}

// Session is safe for concurrent use by HTTP handlers.
type Session struct {
	mu       sync.RWMutex
	doc      Document
	settings Settings
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// SetDocument replaces the current document.
func (s *Session) SetDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Document returns the current document. A zero DocID means nothing has
// been ingested or loaded yet.
func (s *Session) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// SetSettings replaces the active settings.
func (s *Session) SetSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// UpdateSettings merges non-empty fields of overrides into the active
// settings and returns the merged result.
func (s *Session) UpdateSettings(overrides Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.Merge(overrides)
	return s.settings
}

// Settings returns the active settings.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
