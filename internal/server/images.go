package server

import (
	"fmt"
	"os"

	"github.com/pagelingo/pagelingo/internal/home"
	"github.com/pagelingo/pagelingo/internal/session"
)

// diskImages stores page images under the home layout for the session's
// current document.
type diskImages struct {
	home *home.Dir
	sess *session.Session
}

func (d *diskImages) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (d *diskImages) WriteTranslated(pageNum int, image []byte) (string, error) {
	docID := d.sess.Document().DocID
	if docID == "" {
		return "", fmt.Errorf("no document loaded")
	}
	if err := d.home.EnsureTranslatedImagesDir(docID); err != nil {
		return "", fmt.Errorf("failed to create translated images directory: %w", err)
	}

	path := d.home.TranslatedImagePath(docID, pageNum)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("failed to write translated image: %w", err)
	}
	return path, nil
}
