package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
	"github.com/taskdesk-dev/taskdesk/internal/progress"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// GetTasks fetches the caller's task list, normalized to a typed slice.
func (c *APIClient) GetTasks(session *domain.Session) ([]domain.Task, error) {
	resp, err := c.do("GET", "/tasks/", nil, session)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp, "failed to fetch tasks")
	}
	return decodeList[domain.Task](resp.Body), nil
}

// CreateTask submits an authenticated draft plus its accepted files as one
// multipart request. Files are not re-validated here; intake already gated
// them, and zero files is a valid submission.
func (c *APIClient) CreateTask(session *domain.Session, draft domain.TaskDraft, files []domain.PendingFile, onProgress func(percent int)) (domain.TaskId, error) {
	return c.submitTask("POST", "/tasks/", session, draft, files, onProgress)
}

// CreateGuestTask submits a guest draft to the unauthenticated endpoint. The
// body shape is identical apart from the contact fields; only the routing
// differs.
func (c *APIClient) CreateGuestTask(draft domain.TaskDraft, files []domain.PendingFile, onProgress func(percent int)) (domain.TaskId, error) {
	return c.submitTask("POST", "/tasks/guest", nil, draft, files, onProgress)
}

// UpdateTask replaces a task's topic, subtopic, priority and description and
// appends any new files.
func (c *APIClient) UpdateTask(session *domain.Session, id domain.TaskId, draft domain.TaskDraft, files []domain.PendingFile) error {
	_, err := c.submitTask("PUT", fmt.Sprintf("/tasks/%d", id), session, draft, files, nil)
	return err
}

func (c *APIClient) submitTask(method, path string, session *domain.Session, draft domain.TaskDraft, files []domain.PendingFile, onProgress func(percent int)) (domain.TaskId, error) {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	counter := progress.NewCounter(total, onProgress)

	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		defer pipeWriter.Close()
		defer writer.Close()

		fields := map[string]string{
			"topic":       draft.MainTopic.Label(),
			"subtopic":    draft.SubTopic,
			"description": draft.Description,
			"priority":    strconv.Itoa(draft.Priority.Ordinal()),
		}
		for _, field := range []string{"topic", "subtopic", "description", "priority"} {
			if err := writer.WriteField(field, fields[field]); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}

		if draft.Contact != nil {
			contact := map[string]string{
				"organization": draft.Contact.Organization,
				"name":         draft.Contact.Name,
				"phone":        draft.Contact.Phone,
				"email":        draft.Contact.Email,
			}
			for _, field := range []string{"organization", "name", "phone", "email"} {
				if err := writer.WriteField(field, contact[field]); err != nil {
					pipeWriter.CloseWithError(err)
					return
				}
			}
		}

		for _, pending := range files {
			if err := writeFilePart(writer, pending, counter); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
	}()

	req, err := http.NewRequest(method, c.BaseURL+path, pipeReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", internal_errors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		io.Copy(io.Discard, resp.Body)
		return 0, internal_errors.ErrPayloadTooLarge
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, errorFromResponse(resp, "task submission failed")
	}

	var created struct {
		Id domain.TaskId `json:"id"`
	}
	// The created-task id is informational; a body we can't parse is not a
	// failed submission.
	_ = json.NewDecoder(resp.Body).Decode(&created)
	return created.Id, nil
}

// writeFilePart streams one accepted file into a repeated "file" part, counting
// its bytes toward the upload total.
func writeFilePart(writer *multipart.Writer, pending domain.PendingFile, counter *progress.Counter) error {
	file, err := os.Open(pending.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(pending.Name)))
	if pending.MimeType != "" {
		h.Set("Content-Type", pending.MimeType)
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, counter.Wrap(file))
	return err
}

// DownloadFile fetches a stored attachment by its server-relative path. The
// caller turns the bytes into a client-side download.
func (c *APIClient) DownloadFile(session *domain.Session, wsPath string) ([]byte, error) {
	if !strings.HasPrefix(wsPath, "/") {
		wsPath = "/" + wsPath
	}
	resp, err := c.do("GET", wsPath, nil, session)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp, "failed to download file")
	}
	return io.ReadAll(resp.Body)
}
