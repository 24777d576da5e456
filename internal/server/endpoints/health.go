package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server    string                       `json:"server"`
	Providers []string                     `json:"providers"`
	Document  session.Document             `json:"document"`
	Settings  session.Settings             `json:"settings"`
	Pages     map[string]int               `json:"pages"`
	RateLimit *providers.RateLimiterStatus `json:"rate_limit,omitempty"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server: "running",
		Pages:  make(map[string]int),
	}

	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Providers = registry.List()
	}
	if sess := svcctx.SessionFrom(r.Context()); sess != nil {
		resp.Document = sess.Document()
		resp.Settings = sess.Settings()
	}
	if store := svcctx.StoreFrom(r.Context()); store != nil {
		for _, p := range store.List() {
			resp.Pages[string(p.Status)]++
		}
	}
	if ctrl := svcctx.ControllerFrom(r.Context()); ctrl != nil {
		resp.RateLimit = ctrl.RateLimit()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server: %s\n", resp.Server)
			if resp.Document.DocID != "" {
				fmt.Printf("Document: %s (%d pages)\n", resp.Document.Title, resp.Document.PageCount)
			}
			fmt.Printf("Providers: %v\n", resp.Providers)
			if rl := resp.RateLimit; rl != nil {
				fmt.Printf("Rate limit: %d/%d tokens available\n", rl.TokensAvailable, rl.TokensLimit)
			}
			for _, status := range []pages.Status{pages.StatusPending, pages.StatusTranslating, pages.StatusDone, pages.StatusError} {
				if n := resp.Pages[string(status)]; n > 0 {
					fmt.Printf("  %s: %d\n", status, n)
				}
			}
			return nil
		},
	}
}

// decodeJSON parses a JSON request body. An empty body is not an error;
// callers get the zero value.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
