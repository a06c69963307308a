package setup

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/taskdesk-dev/taskdesk/internal/apiclient"
	"github.com/taskdesk-dev/taskdesk/internal/config"
	"github.com/taskdesk-dev/taskdesk/internal/draft"
	"github.com/taskdesk-dev/taskdesk/internal/handler"
	"github.com/taskdesk-dev/taskdesk/internal/jwt"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
	"github.com/taskdesk-dev/taskdesk/internal/middleware"
	"github.com/taskdesk-dev/taskdesk/internal/progress"
	"github.com/taskdesk-dev/taskdesk/internal/textproc"
)

const (
	baseTemplate           = "base.html"
	tmplPath               = "templates"
	draftSweepInterval     = 10 * time.Minute
	templateReloadInterval = 5 * time.Second
)

type Dependencies struct {
	Handler    *handler.Handler
	Auth       *middleware.Auth
	Public     config.Public
	CancelFunc context.CancelFunc
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, cancel := context.WithCancel(context.Background())

	if err := os.MkdirAll(cfg.Public.SpoolDir, 0o700); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create spool dir: %w", err)
	}

	drafts := draft.NewStore(cfg.Public.SpoolDir, cfg.Public.MaxAttachments, cfg.Public.MaxAttachmentSize, cfg.Public.DraftTTL)
	drafts.StartSweeper(ctx, draftSweepInterval)

	templates := mustLoadTemplates(tmplPath)
	textProcessor := textproc.New()
	apiClient := apiclient.New(cfg.Public.BackendBaseURL)
	uploads := progress.NewRegistry()

	h := handler.New(templates, cfg.Public, textProcessor, apiClient, drafts, uploads)
	h.StartGestureSweeper(ctx)
	startTemplateReloader(h, tmplPath)

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.Public.SessionTTL)
	auth := middleware.NewAuth(jwtSvc, cfg.Public.SecureCookies)

	return &Dependencies{
		Handler:    h,
		Auth:       auth,
		Public:     cfg.Public,
		CancelFunc: cancel,
	}, nil
}

func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

func bytesToMB(bytes int64) int64 {
	return bytes / (1024 * 1024)
}

func dict(values ...any) (map[string]interface{}, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func mustLoadTemplates(tmplPath string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) == ".html" && f.Name() != baseTemplate && f.Name() != "partials.html" {
			templates[f.Name()] = template.Must(template.New(baseTemplate).Funcs(
				template.FuncMap{
					"sub":       sub,
					"add":       add,
					"dict":      dict,
					"bytesToMB": bytesToMB,
				},
			).ParseFiles(
				path.Join(tmplPath, baseTemplate),
				path.Join(tmplPath, f.Name()),
				path.Join(tmplPath, "partials.html"),
			),
			)
		}
	}
	return templates
}

func startTemplateReloader(h *handler.Handler, tmplPath string) {
	if os.Getenv("ENV") == "development" {
		ticker := time.NewTicker(templateReloadInterval)
		go func() {
			for range ticker.C {
				h.Templates = mustLoadTemplates(tmplPath)
			}
		}()
	}
}
