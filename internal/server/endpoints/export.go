package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/assemble"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// ExportRequest names the output PDF.
type ExportRequest struct {
	Name string `json:"name"`
}

// ExportResponse reports the written PDF.
type ExportResponse struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
}

// ExportEndpoint handles POST /api/export. It assembles every translated
// page, in page order, into a single PDF under the exports directory.
type ExportEndpoint struct{}

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/export", e.handler
}

func (e *ExportEndpoint) RequiresInit() bool { return true }

func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := svcctx.StoreFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	sess := svcctx.SessionFrom(r.Context())
	if store == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "export services not initialized")
		return
	}

	name := req.Name
	if name == "" && sess != nil {
		name = sess.Document().Title
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "export name is required")
		return
	}

	var imagePaths []string
	for _, p := range store.List() {
		if p.Status == pages.StatusDone && p.TranslatedPath != "" {
			imagePaths = append(imagePaths, p.TranslatedPath)
		}
	}
	if len(imagePaths) == 0 {
		writeError(w, http.StatusConflict, "no translated pages to export")
		return
	}

	outPath := homeDir.ExportPath(name)
	if err := assemble.Assemble(assemble.Request{
		ImagePaths: imagePaths,
		OutPath:    outPath,
		Logger:     svcctx.LoggerFrom(r.Context()),
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{Path: outPath, Pages: len(imagePaths)})
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Assemble translated pages into a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExportResponse
			if err := client.Post(cmd.Context(), "/api/export", ExportRequest{Name: name}, &resp); err != nil {
				return err
			}
			fmt.Printf("Exported %d pages to %s\n", resp.Pages, resp.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Export file name (default: document title)")
	return cmd
}
