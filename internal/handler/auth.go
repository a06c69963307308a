package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if session := sessionFor(r); session != nil {
		http.Redirect(w, r, h.homeFor(session.User.Role), http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, r, "login.html", nil)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	// One field for both: the backend resolves email or phone.
	identifier := r.FormValue("login")
	password := r.FormValue("password")

	session, err := h.APIClient.Login(identifier, password)
	if err != nil {
		if errors.Is(err, internal_errors.ErrBackendUnavailable) {
			logger.Log.Error("during login API call", "error", err)
			h.setFlash(w, flashCookieError, "Internal error: backend unavailable.")
		} else {
			h.setFlash(w, flashCookieError, template.HTMLEscapeString(err.Error()))
		}
		h.setFlash(w, loginPrefillCookie, identifier)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    session.Token,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.homeFor(session.User.Role), http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// IndexHandler routes the bare domain to whatever home the visitor has.
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if session := sessionFor(r); session != nil {
		http.Redirect(w, r, h.homeFor(session.User.Role), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/request", http.StatusSeeOther)
}

func (h *Handler) homeFor(role string) string {
	if role == domain.RoleAdmin {
		return "/clients"
	}
	return "/tasks"
}
