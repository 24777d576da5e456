package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/ingest"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// IngestRequest loads one or more PDFs as the server's current document.
type IngestRequest struct {
	Paths []string `json:"paths"`
	Title string   `json:"title,omitempty"`
}

// IngestResponse describes the ingested document.
type IngestResponse struct {
	DocID     string `json:"doc_id"`
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
}

// IngestEndpoint handles POST /api/ingest. Ingesting replaces the current
// page store contents and resets the session document.
type IngestEndpoint struct{}

func (e *IngestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/ingest", e.handler
}

func (e *IngestEndpoint) RequiresInit() bool { return false }

func (e *IngestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "at least one PDF path is required")
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	store := svcctx.StoreFrom(r.Context())
	sess := svcctx.SessionFrom(r.Context())
	if homeDir == nil || store == nil || sess == nil {
		writeError(w, http.StatusServiceUnavailable, "ingest services not initialized")
		return
	}

	result, err := ingest.Ingest(r.Context(), homeDir, ingest.Request{
		PDFPaths: req.Paths,
		Title:    req.Title,
		Logger:   svcctx.LoggerFrom(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	store.Reset(result.Pages)
	sess.SetDocument(session.Document{
		DocID:     result.DocID,
		Title:     result.Title,
		PageCount: result.PageCount,
	})

	writeJSON(w, http.StatusOK, IngestResponse{
		DocID:     result.DocID,
		Title:     result.Title,
		PageCount: result.PageCount,
	})
}

func (e *IngestEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "ingest <pdf> [pdf...]",
		Short: "Rasterize PDFs into translatable pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp IngestResponse
			if err := client.Post(cmd.Context(), "/api/ingest", IngestRequest{Paths: args, Title: title}, &resp); err != nil {
				return err
			}
			fmt.Printf("Ingested %q: %d pages (doc %s)\n", resp.Title, resp.PageCount, resp.DocID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: derived from filename)")
	return cmd
}
