package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientsGetHandler_Pagination(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1,"email":"c1@x.com"},{"id":2,"email":"c2@x.com"},{"id":3,"email":"c3@x.com"},
			{"id":4,"email":"c4@x.com"},{"id":5,"email":"c5@x.com"},{"id":6,"email":"c6@x.com"},
			{"id":7,"email":"c7@x.com"}]`)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "first page default rows",
			query: "",
			want:  "c1@x.com;c2@x.com;c3@x.com;c4@x.com;c5@x.com;page=1/2",
		},
		{
			name:  "second page",
			query: "?page=2",
			want:  "c6@x.com;c7@x.com;page=2/2",
		},
		{
			name:  "larger page size",
			query: "?rows=10",
			want:  "c1@x.com;c2@x.com;c3@x.com;c4@x.com;c5@x.com;c6@x.com;c7@x.com;page=1/1",
		},
		{
			name:  "invalid rows falls back to default",
			query: "?rows=7",
			want:  "c1@x.com;c2@x.com;c3@x.com;c4@x.com;c5@x.com;page=1/2",
		},
		{
			name:  "page past the end clamps",
			query: "?page=99",
			want:  "c6@x.com;c7@x.com;page=2/2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withSession(httptest.NewRequest(http.MethodGet, "/clients"+tt.query, nil), adminSession())
			w := httptest.NewRecorder()

			h.ClientsGetHandler(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestClientsEditPostHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	t.Run("single selection routes to the edit form", func(t *testing.T) {
		r := withSession(formRequest("/clients/edit", url.Values{"ids": {"3"}}), adminSession())
		w := httptest.NewRecorder()

		h.ClientsEditPostHandler(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/clients/3/edit", w.Header().Get("Location"))
	})

	t.Run("multi selection is rejected", func(t *testing.T) {
		r := withSession(formRequest("/clients/edit", url.Values{"ids": {"3", "4"}}), adminSession())
		w := httptest.NewRecorder()

		h.ClientsEditPostHandler(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/clients", w.Header().Get("Location"))
		assert.Contains(t, flashValue(t, w, flashCookieError), "exactly one")
	})

	t.Run("empty selection is rejected", func(t *testing.T) {
		r := withSession(formRequest("/clients/edit", url.Values{}), adminSession())
		w := httptest.NewRecorder()

		h.ClientsEditPostHandler(w, r)

		assert.Equal(t, "/clients", w.Header().Get("Location"))
	})
}

func TestClientsDeletePostHandler_SequentialInSelectionOrder(t *testing.T) {
	var deleted []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	r := withSession(formRequest("/clients/delete", url.Values{"ids": {"3", "1", "2"}}), adminSession())
	w := httptest.NewRecorder()

	h.ClientsDeletePostHandler(w, r)

	assert.Equal(t, []string{"/users/3", "/users/1", "/users/2"}, deleted)
	assert.Equal(t, "/clients", w.Header().Get("Location"))
	assert.Contains(t, flashValue(t, w, flashCookieSuccess), "Deleted 3")
}

func TestClientsDeletePostHandler_PartialFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/2" {
			http.Error(w, "locked", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	r := withSession(formRequest("/clients/delete", url.Values{"ids": {"1", "2", "3"}}), adminSession())
	w := httptest.NewRecorder()

	h.ClientsDeletePostHandler(w, r)

	// Deletion continues past the failure; the flash names the split.
	assert.Contains(t, flashValue(t, w, flashCookieError), "Deleted 2 of 3")
}

func TestClientsDeletePostHandler_EmptySelection(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	r := withSession(formRequest("/clients/delete", url.Values{}), adminSession())
	w := httptest.NewRecorder()

	h.ClientsDeletePostHandler(w, r)

	assert.Equal(t, "/clients", w.Header().Get("Location"))
	assert.Contains(t, flashValue(t, w, flashCookieError), "at least one")
}

func TestProfilePostHandler_ForcesRelogin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/1", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	r := withSession(formRequest("/profile", url.Values{"email": {"new@x.com"}}), adminSession())
	w := httptest.NewRecorder()

	h.ProfilePostHandler(w, r)

	assert.Equal(t, "/login", w.Header().Get("Location"))

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "accessToken" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "accessToken cookie should be dropped")
}
