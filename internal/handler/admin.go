package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdesk-dev/taskdesk/internal/apiclient"
	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
	"github.com/taskdesk-dev/taskdesk/internal/selection"
)

var rowsOptions = []int{5, 10, 25}

type clientsPageData struct {
	Clients     []domain.User
	Page        int
	Rows        int
	TotalPages  int
	RowsOptions []int
}

// ClientsGetHandler renders the paginated client table.
func (h *Handler) ClientsGetHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	users, err := h.APIClient.GetUsers(session)
	if err != nil {
		logger.Log.Error("fetching users", "error", err)
		h.renderTemplateWithError(w, r, "clients.html", clientsPageData{RowsOptions: rowsOptions}, "Internal error: backend unavailable.")
		return
	}

	rows := h.Public.RowsPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("rows")); err == nil && validRows(v) {
		rows = v
	}

	totalPages := (len(users) + rows - 1) / rows
	if totalPages == 0 {
		totalPages = 1
	}

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * rows
	end := start + rows
	if end > len(users) {
		end = len(users)
	}

	h.renderTemplate(w, r, "clients.html", clientsPageData{
		Clients:     users[start:end],
		Page:        page,
		Rows:        rows,
		TotalPages:  totalPages,
		RowsOptions: rowsOptions,
	})
}

func validRows(v int) bool {
	for _, opt := range rowsOptions {
		if v == opt {
			return true
		}
	}
	return false
}

func (h *Handler) ClientCreateGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "client_form.html", nil)
}

func (h *Handler) ClientCreatePostHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	newUser := apiclient.NewUser{
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Company:  r.FormValue("company"),
		Password: r.FormValue("password"),
	}

	if err := h.APIClient.CreateUser(session, newUser); err != nil {
		logger.Log.Error("creating user", "error", err)
		h.redirectWithFlash(w, r, "/clients/new", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/clients", flashCookieSuccess, "Client created.")
}

// ClientsEditPostHandler receives the table selection and routes to the edit
// form. Editing only makes sense for exactly one selected row.
func (h *Handler) ClientsEditPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	sel := selection.FromIDs(parseIds(r))
	if !sel.CanEdit() {
		h.redirectWithFlash(w, r, "/clients", flashCookieError, "Select exactly one client to edit.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/clients/%d/edit", sel.IDs()[0]), http.StatusSeeOther)
}

func (h *Handler) ClientEditGetHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad client id", http.StatusBadRequest)
		return
	}

	users, err := h.APIClient.GetUsers(session)
	if err != nil {
		logger.Log.Error("fetching users", "error", err)
		h.redirectWithFlash(w, r, "/clients", flashCookieError, "Internal error: backend unavailable.")
		return
	}

	for _, u := range users {
		if u.Id == id {
			h.renderTemplate(w, r, "client_form.html", u)
			return
		}
	}
	http.NotFound(w, r)
}

func (h *Handler) ClientEditPostHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad client id", http.StatusBadRequest)
		return
	}

	update := apiclient.UserUpdate{
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Company: r.FormValue("company"),
	}

	if err := h.APIClient.UpdateUser(session, id, update); err != nil {
		logger.Log.Error("updating user", "id", id, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("/clients/%d/edit", id), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/clients", flashCookieSuccess, "Client updated.")
}

// ClientsDeletePostHandler deletes every selected client one by one. A
// partial failure still reports which deletions went through.
func (h *Handler) ClientsDeletePostHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	sel := selection.FromIDs(parseIds(r))
	if !sel.CanDelete() {
		h.redirectWithFlash(w, r, "/clients", flashCookieError, "Select at least one client to delete.")
		return
	}

	result := h.APIClient.DeleteUsers(session, sel.IDs())
	if result.AllSucceeded() {
		h.redirectWithFlash(w, r, "/clients", flashCookieSuccess,
			fmt.Sprintf("Deleted %d client(s).", len(result.Succeeded)))
		return
	}

	// The table is refetched on redirect, so rows that did get deleted
	// disappear even though the batch as a whole failed.
	h.redirectWithFlash(w, r, "/clients", flashCookieError,
		fmt.Sprintf("Deleted %d of %d. Some clients could not be deleted.",
			len(result.Succeeded), len(result.Succeeded)+len(result.Failed)))
}

func (h *Handler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)
	h.renderTemplate(w, r, "profile.html", session.User)
}

// ProfilePostHandler updates the admin's own record. The token still carries
// the old claims afterwards, so the session is dropped and the admin logs in
// again.
func (h *Handler) ProfilePostHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	update := apiclient.UserUpdate{
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}

	if err := h.APIClient.UpdateUser(session, session.User.Id, update); err != nil {
		logger.Log.Error("updating own profile", "error", err)
		h.redirectWithFlash(w, r, "/profile", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.redirectWithFlash(w, r, "/login", flashCookieSuccess, "Profile updated. Please log in again.")
}
