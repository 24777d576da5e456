package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/project"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/svcctx"
)

// ProjectResponse summarizes a saved or loaded project.
type ProjectResponse struct {
	Name      string `json:"name"`
	DocID     string `json:"doc_id,omitempty"`
	PageCount int    `json:"page_count"`
	Path      string `json:"path,omitempty"`
}

// SaveProjectEndpoint handles POST /api/projects/{name}.
type SaveProjectEndpoint struct{}

func (e *SaveProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/projects/{name}", e.handler
}

func (e *SaveProjectEndpoint) RequiresInit() bool { return true }

func (e *SaveProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	store := svcctx.StoreFrom(r.Context())
	sess := svcctx.SessionFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	if store == nil || sess == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "project services not initialized")
		return
	}

	settings := sess.Settings()
	doc := sess.Document()
	p := &project.Project{
		Name:  name,
		DocID: doc.DocID,
		Settings: project.Settings{
			TargetLang: settings.TargetLang,
			SourceLang: settings.SourceLang,
			Mode:       settings.Mode,
			Glossary:   settings.Glossary,
			Provider:   settings.Provider,
		},
		Pages: store.List(),
	}

	path := homeDir.ProjectPath(name)
	if err := project.Save(path, p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ProjectResponse{
		Name:      name,
		DocID:     doc.DocID,
		PageCount: len(p.Pages),
		Path:      path,
	})
}

func (e *SaveProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current pages and settings as a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProjectResponse
			if err := client.Post(cmd.Context(), "/api/projects/"+args[0], nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Saved project %q (%d pages) to %s\n", resp.Name, resp.PageCount, resp.Path)
			return nil
		},
	}
}

// LoadProjectEndpoint handles POST /api/projects/{name}/load. Loading
// replaces the current page store contents and session settings.
type LoadProjectEndpoint struct{}

func (e *LoadProjectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/projects/{name}/load", e.handler
}

func (e *LoadProjectEndpoint) RequiresInit() bool { return false }

func (e *LoadProjectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	store := svcctx.StoreFrom(r.Context())
	sess := svcctx.SessionFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	if store == nil || sess == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "project services not initialized")
		return
	}

	path := homeDir.ProjectPath(name)
	p, err := project.Load(path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	store.Reset(p.Pages)
	sess.SetDocument(session.Document{
		DocID:     p.DocID,
		Title:     p.Name,
		PageCount: len(p.Pages),
	})
	sess.SetSettings(session.Settings{
		Provider:   p.Settings.Provider,
		TargetLang: p.Settings.TargetLang,
		SourceLang: p.Settings.SourceLang,
		Mode:       p.Settings.Mode,
		Glossary:   p.Settings.Glossary,
	})

	writeJSON(w, http.StatusOK, ProjectResponse{
		Name:      p.Name,
		DocID:     p.DocID,
		PageCount: len(p.Pages),
		Path:      path,
	})
}

func (e *LoadProjectEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Load a saved project as the current document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProjectResponse
			if err := client.Post(cmd.Context(), "/api/projects/"+args[0]+"/load", nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Loaded project %q (%d pages)\n", resp.Name, resp.PageCount)
			return nil
		},
	}
}

// ListProjectsEndpoint handles GET /api/projects.
type ListProjectsEndpoint struct{}

func (e *ListProjectsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/projects", e.handler
}

func (e *ListProjectsEndpoint) RequiresInit() bool { return false }

func (e *ListProjectsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "project services not initialized")
		return
	}

	names, err := project.List(homeDir.ProjectsDir())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (e *ListProjectsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List saved projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var names []string
			if err := client.Get(cmd.Context(), "/api/projects", &names); err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}
