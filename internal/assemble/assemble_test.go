package assemble

import (
	"path/filepath"
	"testing"
)

func TestAssembleValidation(t *testing.T) {
	t.Run("no images", func(t *testing.T) {
		if err := Assemble(Request{OutPath: "/tmp/out.pdf"}); err == nil {
			t.Error("expected error for empty image list")
		}
	})

	t.Run("missing output path", func(t *testing.T) {
		if err := Assemble(Request{ImagePaths: []string{"a.png"}}); err == nil {
			t.Error("expected error for missing output path")
		}
	})

	t.Run("missing image file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.pdf")
		err := Assemble(Request{ImagePaths: []string{"/nonexistent/page.png"}, OutPath: out})
		if err == nil {
			t.Error("expected error for missing image")
		}
	})
}
