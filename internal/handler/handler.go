package handler

import (
	"html/template"
	"net/http"

	"github.com/taskdesk-dev/taskdesk/internal/apiclient"
	"github.com/taskdesk-dev/taskdesk/internal/config"
	"github.com/taskdesk-dev/taskdesk/internal/draft"
	"github.com/taskdesk-dev/taskdesk/internal/progress"
	"github.com/taskdesk-dev/taskdesk/internal/textproc"
)

type Handler struct {
	Templates     map[string]*template.Template
	Public        config.Public
	TextProcessor *textproc.TextProcessor
	APIClient     *apiclient.APIClient
	Drafts        *draft.Store
	Progress      *progress.Registry

	gestures *gestureRegistry
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *textproc.TextProcessor, apiClient *apiclient.APIClient, drafts *draft.Store, uploads *progress.Registry) *Handler {
	return &Handler{
		Templates:     templates,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		APIClient:     apiClient,
		Drafts:        drafts,
		Progress:      uploads,
		gestures:      newGestureRegistry(),
	}
}

func FaviconHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/favicon.ico")
}
