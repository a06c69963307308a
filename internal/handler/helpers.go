package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/middleware"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
	loginPrefillCookie = "login_prefill"
	draftCookie        = "draftId"
)

// setFlash stores a one-shot message, base64 encoded so special characters
// survive the cookie round trip.
func (h *Handler) setFlash(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.StdEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads a flash cookie and clears it.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, cookieName, message string) {
	h.setFlash(w, cookieName, message)
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// sessionFor returns the session placed in the context by auth middleware.
func sessionFor(r *http.Request) *domain.Session {
	return middleware.GetSessionFromContext(r)
}

// currentDraft returns the browser's draft, creating one and setting the
// cookie when missing or expired.
func (h *Handler) currentDraft(w http.ResponseWriter, r *http.Request) *draftRef {
	if cookie, err := r.Cookie(draftCookie); err == nil {
		if d, ok := h.Drafts.Get(cookie.Value); ok {
			return &draftRef{id: d.Id}
		}
	}
	d := h.Drafts.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    d.Id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return &draftRef{id: d.Id}
}

type draftRef struct {
	id string
}

func (h *Handler) clearDraftCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseIds decodes the repeated "ids" form values posted by the table
// checkboxes, preserving their order.
func parseIds(r *http.Request) []int64 {
	var ids []int64
	for _, raw := range r.Form["ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
