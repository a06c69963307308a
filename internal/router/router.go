package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskdesk-dev/taskdesk/internal/handler"
	"github.com/taskdesk-dev/taskdesk/internal/middleware/metrics"
	"github.com/taskdesk-dev/taskdesk/internal/setup"
)

func SetupRouter(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	auth := deps.Auth

	// Public routes
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/favicon.ico", handler.FaviconHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	r.Get("/login", h.LoginGetHandler)
	r.Post("/login", h.LoginPostHandler)
	r.Get("/logout", h.LogoutHandler)

	// The request flow serves guests and logged-in clients through the same
	// handlers; the session just switches the submission route.
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth())

		r.Get("/", h.IndexHandler)
		r.Get("/request", h.RequestGetHandler)
		r.Post("/request/contact", h.ContactPostHandler)
		r.Post("/request/files", h.FilesPostHandler)
		r.Post("/request/files/remove", h.FileRemovePostHandler)
		r.Post("/request/submit", h.SubmitPostHandler)
		r.Post("/request/reset", h.ResetPostHandler)
		r.Get("/request/progress", h.ProgressGetHandler)

		r.Post("/interact", h.InteractPostHandler)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.WithRedirect(auth.NeedAuth()))

		r.Get("/tasks", h.TasksGetHandler)
		r.Get("/download", h.DownloadGetHandler)
		r.Get("/profile", h.ProfileGetHandler)
		r.Post("/profile", h.ProfilePostHandler)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(auth.WithRedirect(auth.AdminOnly()))

		r.Get("/clients", h.ClientsGetHandler)
		r.Get("/clients/new", h.ClientCreateGetHandler)
		r.Post("/clients/new", h.ClientCreatePostHandler)
		r.Post("/clients/edit", h.ClientsEditPostHandler)
		r.Get("/clients/{id}/edit", h.ClientEditGetHandler)
		r.Post("/clients/{id}/edit", h.ClientEditPostHandler)
		r.Post("/clients/delete", h.ClientsDeletePostHandler)
	})

	return r
}
