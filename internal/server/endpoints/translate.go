package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/controller"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/svcctx"
	"github.com/pagelingo/pagelingo/internal/translate"
)

// TranslateRequest starts a batch translation. Empty Pages means all pages.
// Settings fields left empty fall back to the session's active settings.
type TranslateRequest struct {
	Pages      []int  `json:"pages,omitempty"`
	Provider   string `json:"provider,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	SourceLang string `json:"source_lang,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Glossary   string `json:"glossary,omitempty"`
}

// TranslateResponse acknowledges a started batch.
type TranslateResponse struct {
	Started  bool             `json:"started"`
	Pages    int              `json:"pages"`
	Settings session.Settings `json:"settings"`
}

// TranslateEndpoint handles POST /api/translate. The batch runs in the
// background; poll /api/pages for progress.
type TranslateEndpoint struct{}

func (e *TranslateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/translate", e.handler
}

func (e *TranslateEndpoint) RequiresInit() bool { return true }

func (e *TranslateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := svcctx.SessionFrom(r.Context())
	ctrl := svcctx.ControllerFrom(r.Context())
	if sess == nil || ctrl == nil {
		writeError(w, http.StatusServiceUnavailable, "translation services not initialized")
		return
	}

	merged, err := applySettings(r.Context(), session.Settings{
		Provider:   req.Provider,
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
		Mode:       req.Mode,
		Glossary:   req.Glossary,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if merged.TargetLang == "" {
		writeError(w, http.StatusBadRequest, "target language is required")
		return
	}

	pageNums := req.Pages
	count := len(pageNums)
	if count == 0 {
		count = svcctx.StoreFrom(r.Context()).Len()
	}

	logger := svcctx.LoggerFrom(r.Context())
	settings := controllerSettings(merged)
	go func() {
		// The batch outlives this request.
		if err := ctrl.StartBatch(context.Background(), pageNums, settings); err != nil && logger != nil {
			logger.Error("batch translation failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, TranslateResponse{
		Started:  true,
		Pages:    count,
		Settings: merged,
	})
}

func (e *TranslateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req TranslateRequest
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Start batch translation of pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TranslateResponse
			if err := client.Post(cmd.Context(), "/api/translate", req, &resp); err != nil {
				return err
			}
			fmt.Printf("Started translation of %d pages to %s\n", resp.Pages, resp.Settings.TargetLang)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&req.Pages, "pages", nil, "Page numbers to translate (default: all)")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "Generation provider to use")
	cmd.Flags().StringVar(&req.TargetLang, "target-lang", "", "Target language")
	cmd.Flags().StringVar(&req.SourceLang, "source-lang", "", "Source language (default: auto-detect)")
	cmd.Flags().StringVar(&req.Mode, "mode", "", "Translation mode: DIRECT or TWO_STEP")
	cmd.Flags().StringVar(&req.Glossary, "glossary", "", "Terminology glossary passed to the model")
	return cmd
}

// RetryPageRequest re-translates one page with optional user feedback.
type RetryPageRequest struct {
	Feedback string `json:"feedback,omitempty"`
}

// RetryPageEndpoint handles POST /api/pages/{num}/retry. Like a batch, the
// retry runs in the background; poll the page for the refreshed result.
type RetryPageEndpoint struct{}

func (e *RetryPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pages/{num}/retry", e.handler
}

func (e *RetryPageEndpoint) RequiresInit() bool { return true }

func (e *RetryPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(r.PathValue("num"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page number must be an integer")
		return
	}
	var req RetryPageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := svcctx.SessionFrom(r.Context())
	ctrl := svcctx.ControllerFrom(r.Context())
	if sess == nil || ctrl == nil {
		writeError(w, http.StatusServiceUnavailable, "translation services not initialized")
		return
	}
	settings := sess.Settings()
	if settings.TargetLang == "" {
		writeError(w, http.StatusBadRequest, "no active translation settings; run translate first")
		return
	}
	page, ok := svcctx.StoreFrom(r.Context()).Get(num)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("page %d not found", num))
		return
	}

	logger := svcctx.LoggerFrom(r.Context())
	feedback := req.Feedback
	go func() {
		// The retry outlives this request.
		if err := ctrl.RetryPage(context.Background(), num, feedback, controllerSettings(settings)); err != nil && logger != nil {
			logger.Error("page retry failed", "page", num, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, page)
}

func (e *RetryPageEndpoint) Command(getServerURL func() string) *cobra.Command {
	var feedback string
	cmd := &cobra.Command{
		Use:   "retry <num>",
		Short: "Re-translate a page, carrying audit suggestions forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var page pages.Page
			path := fmt.Sprintf("/api/pages/%s/retry", args[0])
			if err := client.Post(cmd.Context(), path, RetryPageRequest{Feedback: feedback}, &page); err != nil {
				return err
			}
			fmt.Printf("Retry started for page %s; poll 'api page %s' for the result\n", args[0], args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "Corrections to apply to the redraw")
	return cmd
}

// RetryEvaluationEndpoint handles POST /api/pages/{num}/evaluate.
type RetryEvaluationEndpoint struct{}

func (e *RetryEvaluationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/pages/{num}/evaluate", e.handler
}

func (e *RetryEvaluationEndpoint) RequiresInit() bool { return true }

func (e *RetryEvaluationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(r.PathValue("num"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page number must be an integer")
		return
	}

	sess := svcctx.SessionFrom(r.Context())
	ctrl := svcctx.ControllerFrom(r.Context())
	if sess == nil || ctrl == nil {
		writeError(w, http.StatusServiceUnavailable, "translation services not initialized")
		return
	}

	if err := ctrl.RetryEvaluation(context.WithoutCancel(r.Context()), num, controllerSettings(sess.Settings())); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, _ := svcctx.StoreFrom(r.Context()).Get(num)
	writeJSON(w, http.StatusAccepted, page)
}

func (e *RetryEvaluationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <num>",
		Short: "Re-run the quality audit for a translated page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var page pages.Page
			path := fmt.Sprintf("/api/pages/%s/evaluate", args[0])
			if err := client.Post(cmd.Context(), path, nil, &page); err != nil {
				return err
			}
			return api.Output(page)
		},
	}
}

// applySettings merges overrides into the session and rebinds the
// controller's pipelines when the provider changed.
func applySettings(ctx context.Context, overrides session.Settings) (session.Settings, error) {
	sess := svcctx.SessionFrom(ctx)
	prev := sess.Settings().Provider
	merged := sess.UpdateSettings(overrides)

	if merged.Provider != "" && merged.Provider != prev {
		if err := bindProvider(ctx, merged.Provider); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// bindProvider points the controller's pipelines at the named provider.
func bindProvider(ctx context.Context, name string) error {
	registry := svcctx.RegistryFrom(ctx)
	cm := svcctx.ConfigManagerFrom(ctx)
	ctrl := svcctx.ControllerFrom(ctx)
	if registry == nil || cm == nil || ctrl == nil {
		return fmt.Errorf("translation services not initialized")
	}

	client, err := registry.Get(name)
	if err != nil {
		return err
	}

	cfg := cm.Get()
	translator, evaluator := controller.NewPipelines(client, cfg.Pricing, retryPolicyFrom(cfg), svcctx.LoggerFrom(ctx))
	ctrl.SetPipelines(translator, evaluator)
	return nil
}

func retryPolicyFrom(cfg *config.Config) retrier.Policy {
	var p retrier.Policy
	if cfg.Defaults.RetryAttempts > 0 {
		p.Attempts = uint(cfg.Defaults.RetryAttempts)
	}
	if cfg.Defaults.RetryDelayMS > 0 {
		p.Delay = time.Duration(cfg.Defaults.RetryDelayMS) * time.Millisecond
	}
	return p
}

func controllerSettings(s session.Settings) controller.Settings {
	return controller.Settings{
		TargetLang: s.TargetLang,
		SourceLang: s.SourceLang,
		Mode:       translate.Mode(s.Mode),
		Glossary:   s.Glossary,
	}
}
