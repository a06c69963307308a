package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskdesk-dev/taskdesk/internal/apiclient"
	"github.com/taskdesk-dev/taskdesk/internal/config"
	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/draft"
	"github.com/taskdesk-dev/taskdesk/internal/middleware"
	"github.com/taskdesk-dev/taskdesk/internal/progress"
	"github.com/taskdesk-dev/taskdesk/internal/textproc"
)

// testTemplates holds just enough to render each page in tests.
func testTemplates() map[string]*template.Template {
	tmpl := func(name, body string) *template.Template {
		return template.Must(template.New(name).Parse(body))
	}
	return map[string]*template.Template{
		"clients.html": tmpl("clients.html", `{{range .Data.Clients}}{{.Email}};{{end}}page={{.Data.Page}}/{{.Data.TotalPages}}`),
		"tasks.html":   tmpl("tasks.html", `{{range .Data.Tasks}}{{.Title}}:{{.PriorityName}};{{end}}`),
		"request.html": tmpl("request.html", `guest={{.Data.Guest}} files={{len .Data.Files}} maxsize={{.Data.MaxFileSize}}`),
		"login.html":   tmpl("login.html", `login`),
	}
}

func newTestHandler(t *testing.T, backendURL string) *Handler {
	t.Helper()
	public := config.Public{
		BackendBaseURL:    backendURL,
		MaxAttachments:    10,
		MaxAttachmentSize: 100 << 20,
		RowsPerPage:       5,
	}
	drafts := draft.NewStore(t.TempDir(), public.MaxAttachments, public.MaxAttachmentSize, time.Hour)
	return New(testTemplates(), public, textproc.New(), apiclient.New(backendURL), drafts, progress.NewRegistry())
}

func adminSession() *domain.Session {
	return &domain.Session{Token: "test-token", User: domain.User{Id: 1, Email: "a@x.com", Role: domain.RoleAdmin}}
}

func withSession(r *http.Request, session *domain.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, session))
}

func formRequest(target string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func flashValue(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			decoded, err := base64.StdEncoding.DecodeString(c.Value)
			require.NoError(t, err)
			return string(decoded)
		}
	}
	return ""
}

// multipartBody builds an intake batch post with the given file names/contents.
func multipartBody(t *testing.T, source string, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("source", source))
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
