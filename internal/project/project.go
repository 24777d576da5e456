// Package project persists the full translation state (pages plus
// settings) as versioned YAML documents under the home directory.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagelingo/pagelingo/internal/pages"
)

// Version is the current project file format version. Load rejects files
// written by a newer format.
const Version = 1

// Settings are the translation parameters saved with a project.
type Settings struct {
	TargetLang string `yaml:"target_lang"`
	SourceLang string `yaml:"source_lang"`
	Mode       string `yaml:"mode"`
	Glossary   string `yaml:"glossary,omitempty"`
	Provider   string `yaml:"provider,omitempty"`
}

// Project is the serialized document.
type Project struct {
	Version  int           `yaml:"version"`
	Name     string        `yaml:"name"`
	DocID    string        `yaml:"doc_id,omitempty"`
	Settings Settings      `yaml:"settings"`
	Pages    []*pages.Page `yaml:"pages"`
	SavedAt  time.Time     `yaml:"saved_at"`
}

// Save writes the project to path, creating parent directories as needed.
// The write goes through a temp file and rename so a crash cannot leave a
// truncated project behind.
func Save(path string, p *Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	p.Version = Version
	p.SavedAt = time.Now()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize project: %w", err)
	}
	return nil
}

// Load reads a project from path and checks its format version.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	if p.Version > Version {
		return nil, fmt.Errorf("project version %d is newer than supported version %d", p.Version, Version)
	}
	if p.Version == 0 {
		return nil, fmt.Errorf("project file has no version field")
	}
	return &p, nil
}

// List returns the names of all saved projects in dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".yaml" {
			names = append(names, name[:len(name)-len(".yaml")])
		}
	}
	return names, nil
}
