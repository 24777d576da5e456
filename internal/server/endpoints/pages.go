package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// ListPagesEndpoint handles GET /api/pages.
type ListPagesEndpoint struct{}

func (e *ListPagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/pages", e.handler
}

func (e *ListPagesEndpoint) RequiresInit() bool { return true }

func (e *ListPagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "page store not initialized")
		return
	}
	writeJSON(w, http.StatusOK, store.List())
}

func (e *ListPagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List all pages with their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var list []*pages.Page
			if err := client.Get(cmd.Context(), "/api/pages", &list); err != nil {
				return err
			}
			for _, p := range list {
				line := fmt.Sprintf("page %d: %s", p.Number, p.Status)
				if p.IsEvaluating {
					line += " (evaluating)"
				}
				if p.Evaluation != nil {
					line += fmt.Sprintf(" score=%.1f", p.Evaluation.AverageScore)
				}
				if p.Error != "" {
					line += " error=" + p.Error
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

// GetPageEndpoint handles GET /api/pages/{num}.
type GetPageEndpoint struct{}

func (e *GetPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/pages/{num}", e.handler
}

func (e *GetPageEndpoint) RequiresInit() bool { return true }

func (e *GetPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(r.PathValue("num"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page number must be an integer")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "page store not initialized")
		return
	}

	page, ok := store.Get(num)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("page %d not found", num))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (e *GetPageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "page <num>",
		Short: "Get a page by number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var page pages.Page
			if err := client.Get(cmd.Context(), "/api/pages/"+args[0], &page); err != nil {
				return err
			}
			return api.Output(page)
		},
	}
}
