package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// GetConfigEndpoint handles GET /api/config. API keys are redacted; env
// references like ${GEMINI_API_KEY} are passed through unresolved.
type GetConfigEndpoint struct{}

func (e *GetConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/config", e.handler
}

func (e *GetConfigEndpoint) RequiresInit() bool { return false }

func (e *GetConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cm := svcctx.ConfigManagerFrom(r.Context())
	if cm == nil {
		writeError(w, http.StatusServiceUnavailable, "config manager not initialized")
		return
	}

	writeJSON(w, http.StatusOK, redacted(cm.Get()))
}

// redacted returns a copy of cfg with literal API keys masked.
func redacted(cfg *config.Config) *config.Config {
	out := *cfg
	out.Providers = make(map[string]config.ProviderCfg, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.APIKey != "" && !strings.HasPrefix(p.APIKey, "${") {
			p.APIKey = "<redacted>"
		}
		out.Providers[name] = p
	}
	return &out
}

func (e *GetConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the server's active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var cfg config.Config
			if err := client.Get(cmd.Context(), "/api/config", &cfg); err != nil {
				return err
			}
			return api.Output(cfg)
		},
	}
}
