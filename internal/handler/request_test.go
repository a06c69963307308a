package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == draftCookie && c.MaxAge >= 0 {
			return c
		}
	}
	t.Fatal("no draft cookie set")
	return nil
}

func postFiles(t *testing.T, h *Handler, cookie *http.Cookie, source string, files map[string]string) (*httptest.ResponseRecorder, intakeResponse) {
	t.Helper()
	body, contentType := multipartBody(t, source, files)
	r := httptest.NewRequest(http.MethodPost, "/request/files", body)
	r.Header.Set("Content-Type", contentType)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()

	h.FilesPostHandler(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp intakeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w, resp
}

func TestFilesPostHandler_AcceptsBatchAndSetsDraftCookie(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	w, resp := postFiles(t, h, nil, "picker", map[string]string{"report.pdf": "abc"})

	cookie := draftCookieFrom(t, w)
	assert.NotEmpty(t, cookie.Value)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "report.pdf", resp.Files[0].Name)
	assert.Equal(t, int64(3), resp.Files[0].Size)
	assert.Empty(t, resp.Rejections)
}

func TestFilesPostHandler_AllSourcesShareOneIntake(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	w, _ := postFiles(t, h, nil, "picker", map[string]string{"a.txt": "a"})
	cookie := draftCookieFrom(t, w)
	_, resp := postFiles(t, h, cookie, "paste", map[string]string{"b.txt": "b"})

	// Both batches landed in the same accepted list.
	assert.Len(t, resp.Files, 2)
}

func TestFileRemovePostHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	w, _ := postFiles(t, h, nil, "drop", map[string]string{"a.txt": "a"})
	cookie := draftCookieFrom(t, w)
	_, resp := postFiles(t, h, cookie, "drop", map[string]string{"b.txt": "b"})
	require.Len(t, resp.Files, 2)

	r := formRequest("/request/files/remove", url.Values{"index": {"0"}})
	r.AddCookie(cookie)
	w2 := httptest.NewRecorder()

	h.FileRemovePostHandler(w2, r)
	require.Equal(t, http.StatusOK, w2.Code)

	var after intakeResponse
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&after))
	require.Len(t, after.Files, 1)
}

func TestFileRemovePostHandler_BadIndex(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	w, _ := postFiles(t, h, nil, "picker", map[string]string{"a.txt": "a"})
	cookie := draftCookieFrom(t, w)

	r := formRequest("/request/files/remove", url.Values{"index": {"5"}})
	r.AddCookie(cookie)
	w2 := httptest.NewRecorder()

	h.FileRemovePostHandler(w2, r)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestContactPostHandler_Validation(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	r := formRequest("/request/contact", url.Values{
		"organization": {"Acme"}, "name": {"Jane"}, "phone": {"+1000"}, "email": {"not-an-email"},
	})
	w := httptest.NewRecorder()

	h.ContactPostHandler(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, flashValue(t, w, flashCookieError), "contact")
}

func TestSubmitPostHandler_GuestNeedsContactFirst(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	r := formRequest("/request/submit", url.Values{"topic": {"tech"}, "priority": {"high"}})
	w := httptest.NewRecorder()

	h.SubmitPostHandler(w, r)

	assert.Equal(t, "/request", w.Header().Get("Location"))
	assert.Contains(t, flashValue(t, w, flashCookieError), "contact details")
}

func TestSubmitPostHandler_GuestFlow(t *testing.T) {
	var gotPath string
	var fields map[string][]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(32<<20))
		fields = r.MultipartForm.Value
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	// Contact step first.
	rc := formRequest("/request/contact", url.Values{
		"organization": {"Acme"}, "name": {"Jane"}, "phone": {"+1000"}, "email": {"j@x.com"},
	})
	wc := httptest.NewRecorder()
	h.ContactPostHandler(wc, rc)
	cookie := draftCookieFrom(t, wc)

	r := formRequest("/request/submit", url.Values{
		"topic": {"tech"}, "subtopic": {"printers"}, "priority": {"high"},
		"description": {"it broke"}, "uploadId": {"upl-1"},
	})
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	h.SubmitPostHandler(w, r)

	assert.Equal(t, "/tasks/guest", gotPath)
	assert.Equal(t, []string{"Acme"}, fields["organization"])
	assert.Equal(t, []string{"Technical question"}, fields["topic"])
	assert.Equal(t, []string{"10"}, fields["priority"])

	// Upload pinned at 100 for the poller.
	pct, ok := h.Progress.Get("upl-1")
	require.True(t, ok)
	assert.Equal(t, 100, pct)

	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, flashValue(t, w, flashCookieSuccess), "submitted")
}

func TestSubmitPostHandler_AuthenticatedRoutesToTasks(t *testing.T) {
	var gotPath, gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(32<<20))
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	r := withSession(formRequest("/request/submit", url.Values{
		"topic": {"bas"}, "priority": {"low"}, "description": {"ok"},
	}), adminSession())
	w := httptest.NewRecorder()

	h.SubmitPostHandler(w, r)

	assert.Equal(t, "/tasks/", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/tasks", w.Header().Get("Location"))
}

func TestSubmitPostHandler_PayloadTooLarge(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too big", http.StatusRequestEntityTooLarge)
	}))
	defer backend.Close()
	h := newTestHandler(t, backend.URL)

	r := withSession(formRequest("/request/submit", url.Values{"topic": {"bas"}, "priority": {"low"}}), adminSession())
	w := httptest.NewRecorder()

	h.SubmitPostHandler(w, r)

	assert.Contains(t, flashValue(t, w, flashCookieError), "too large")
}

func TestProgressGetHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")
	h.Progress.Start("upl-9")
	h.Progress.Set("upl-9", 42)

	r := httptest.NewRequest(http.MethodGet, "/request/progress?id=upl-9", nil)
	w := httptest.NewRecorder()
	h.ProgressGetHandler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"percent":42}`, w.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/request/progress?id=unknown", nil)
	w = httptest.NewRecorder()
	h.ProgressGetHandler(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestGetHandler_GuestView(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	r := httptest.NewRequest(http.MethodGet, "/request", nil)
	w := httptest.NewRecorder()
	h.RequestGetHandler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "guest=true"))
}

func TestRequestGetHandler_ExposesConfiguredSizeLimit(t *testing.T) {
	// The dropzone hint reads the limit off the page data, not a constant.
	h := newTestHandler(t, "http://unused")

	r := httptest.NewRequest(http.MethodGet, "/request", nil)
	w := httptest.NewRecorder()
	h.RequestGetHandler(w, r)

	assert.Contains(t, w.Body.String(), "maxsize=104857600")
}
