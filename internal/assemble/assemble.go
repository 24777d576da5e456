// Package assemble builds the exported PDF from translated page images.
package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// importDescription fits each image to an A4 page, centered and scaled to
// fit while preserving aspect ratio, letterboxing the remainder.
const importDescription = "form:A4, pos:c, s:1.0 rel"

// Request names the images to assemble, in page order.
type Request struct {
	ImagePaths []string
	OutPath    string
	Logger     *slog.Logger
}

// Assemble writes a single PDF containing one page per input image.
func Assemble(req Request) error {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.ImagePaths) == 0 {
		return fmt.Errorf("no images to assemble")
	}
	if req.OutPath == "" {
		return fmt.Errorf("output path is required")
	}
	for _, p := range req.ImagePaths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("image not found: %s", p)
		}
	}

	if err := os.MkdirAll(filepath.Dir(req.OutPath), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	imp, err := api.Import(importDescription, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse import description: %w", err)
	}

	// Start from a fresh file so repeated exports don't append pages.
	if err := os.Remove(req.OutPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace existing export: %w", err)
	}

	if err := api.ImportImagesFile(req.ImagePaths, req.OutPath, imp, nil); err != nil {
		return fmt.Errorf("failed to assemble PDF: %w", err)
	}

	log.Info("assembled PDF", "pages", len(req.ImagePaths), "path", req.OutPath)
	return nil
}
