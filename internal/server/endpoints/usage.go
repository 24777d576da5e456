package endpoints

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/svcctx"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// UsageResponse is the aggregate usage report for the loaded document.
type UsageResponse struct {
	Totals  usage.Totals                 `json:"totals"`
	ByModel map[string]usage.ModelTotals `json:"by_model"`
	ByStage map[usage.Stage]usage.Totals `json:"by_stage"`
}

// UsageEndpoint handles GET /api/usage.
type UsageEndpoint struct{}

func (e *UsageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/usage", e.handler
}

func (e *UsageEndpoint) RequiresInit() bool { return true }

func (e *UsageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctrl := svcctx.ControllerFrom(r.Context())
	if ctrl == nil {
		writeError(w, http.StatusServiceUnavailable, "controller not initialized")
		return
	}

	writeJSON(w, http.StatusOK, UsageResponse{
		Totals:  ctrl.Totals(),
		ByModel: ctrl.ByModel(),
		ByStage: ctrl.ByStage(),
	})
}

func (e *UsageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show token usage and cost for the loaded document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp UsageResponse
			if err := client.Get(cmd.Context(), "/api/usage", &resp); err != nil {
				return err
			}

			fmt.Printf("Total: %d tokens ($%.4f)\n", resp.Totals.TotalTokens, resp.Totals.CostUSD)

			models := make([]string, 0, len(resp.ByModel))
			for m := range resp.ByModel {
				models = append(models, m)
			}
			sort.Strings(models)
			for _, m := range models {
				mt := resp.ByModel[m]
				fmt.Printf("  %s: %d calls, %d tokens ($%.4f)\n", m, mt.Calls, mt.TotalTokens, mt.CostUSD)
			}

			for _, stage := range []usage.Stage{usage.StageExtraction, usage.StageTranslation, usage.StageEvaluation} {
				if st, ok := resp.ByStage[stage]; ok {
					fmt.Printf("  %s: %d tokens ($%.4f)\n", stage, st.TotalTokens, st.CostUSD)
				}
			}
			return nil
		},
	}
}
