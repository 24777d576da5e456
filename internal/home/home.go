package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the pagelingo home directory.
	DefaultDirName = ".pagelingo"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the pagelingo home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.pagelingo).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.path,
		d.ProjectsDir(),
		d.ExportsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// SourceImagesDir returns the directory for a document's source page images.
func (d *Dir) SourceImagesDir(docID string) string {
	return filepath.Join(d.path, "source_images", docID)
}

// SourceImagePath returns the path to a specific source page image.
// Page numbers are 1-indexed.
func (d *Dir) SourceImagePath(docID string, pageNum int) string {
	return filepath.Join(d.SourceImagesDir(docID), fmt.Sprintf("page_%04d.png", pageNum))
}

// TranslatedImagesDir returns the directory for a document's translated
// page images.
func (d *Dir) TranslatedImagesDir(docID string) string {
	return filepath.Join(d.path, "translated_images", docID)
}

// TranslatedImagePath returns the path to a specific translated page image.
func (d *Dir) TranslatedImagePath(docID string, pageNum int) string {
	return filepath.Join(d.TranslatedImagesDir(docID), fmt.Sprintf("page_%04d.png", pageNum))
}

// EnsureSourceImagesDir creates the source images directory for a document.
func (d *Dir) EnsureSourceImagesDir(docID string) error {
	return os.MkdirAll(d.SourceImagesDir(docID), 0o755)
}

// EnsureTranslatedImagesDir creates the translated images directory.
func (d *Dir) EnsureTranslatedImagesDir(docID string) error {
	return os.MkdirAll(d.TranslatedImagesDir(docID), 0o755)
}

// OriginalsDir returns the directory holding a document's original PDFs.
func (d *Dir) OriginalsDir(docID string) string {
	return filepath.Join(d.SourceImagesDir(docID), "originals")
}

// EnsureOriginalsDir creates the originals directory for a document.
func (d *Dir) EnsureOriginalsDir(docID string) error {
	return os.MkdirAll(d.OriginalsDir(docID), 0o755)
}

// ProjectsDir returns the directory for saved project files.
func (d *Dir) ProjectsDir() string {
	return filepath.Join(d.path, "projects")
}

// ProjectPath returns the path for a named project file.
func (d *Dir) ProjectPath(name string) string {
	return filepath.Join(d.ProjectsDir(), name+".yaml")
}

// ExportsDir returns the directory for exported PDFs.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, "exports")
}

// ExportPath returns the path for a named PDF export.
func (d *Dir) ExportPath(name string) string {
	return filepath.Join(d.ExportsDir(), name+".pdf")
}
