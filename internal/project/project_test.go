package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/usage"
)

func sampleProject() *Project {
	p1 := pages.NewPage(1, "source/page_0001.png")
	p1.Status = pages.StatusDone
	p1.TranslatedPath = "translated/page_0001.png"
	p1.Ledger.Append(usage.NewRecord(usage.StageTranslation, "gemini-2.5-flash-image", 100, 900,
		usage.ModelPricing{InputPerMillion: 0.3, OutputPerMillion: 30}))

	return &Project{
		Name:  "contract",
		DocID: "doc-123",
		Settings: Settings{
			TargetLang: "Spanish",
			SourceLang: "English",
			Mode:       "TWO_STEP",
			Glossary:   "party=parte",
		},
		Pages: []*pages.Page{p1, pages.NewPage(2, "source/page_0002.png")},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects", "contract.yaml")

	if err := Save(path, sampleProject()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != Version {
		t.Errorf("version = %d, want %d", got.Version, Version)
	}
	if got.Settings.TargetLang != "Spanish" || got.Settings.Glossary != "party=parte" {
		t.Errorf("settings = %+v", got.Settings)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(got.Pages))
	}
	if got.Pages[0].Status != pages.StatusDone {
		t.Errorf("page 1 status = %v", got.Pages[0].Status)
	}
	if got.Pages[0].Ledger.Total.TotalTokens != 1000 {
		t.Errorf("page 1 tokens = %d, want 1000", got.Pages[0].Ledger.Total.TotalTokens)
	}
	if got.Pages[1].Status != pages.StatusPending {
		t.Errorf("page 2 status = %v", got.Pages[1].Status)
	}
}

func TestLoadRejectsBadVersions(t *testing.T) {
	dir := t.TempDir()

	t.Run("newer version", func(t *testing.T) {
		path := filepath.Join(dir, "future.yaml")
		os.WriteFile(path, []byte("version: 99\nname: x\n"), 0o644)
		if _, err := Load(path); err == nil {
			t.Error("expected error for newer version")
		}
	})

	t.Run("missing version", func(t *testing.T) {
		path := filepath.Join(dir, "unversioned.yaml")
		os.WriteFile(path, []byte("name: x\n"), 0o644)
		if _, err := Load(path); err == nil {
			t.Error("expected error for missing version")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestSaveRequiresName(t *testing.T) {
	p := sampleProject()
	p.Name = ""
	if err := Save(filepath.Join(t.TempDir(), "x.yaml"), p); err == nil {
		t.Error("expected error for unnamed project")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	names, err := List(dir)
	if err != nil || len(names) != 0 {
		t.Fatalf("List(empty) = %v, %v", names, err)
	}

	Save(filepath.Join(dir, "alpha.yaml"), &Project{Name: "alpha"})
	Save(filepath.Join(dir, "beta.yaml"), &Project{Name: "beta"})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	names, err = List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List() = %v, want 2 projects", names)
	}

	if _, err := List(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("List(missing dir) error = %v, want nil", err)
	}
}
