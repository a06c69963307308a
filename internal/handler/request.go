package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/draft"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
	"github.com/taskdesk-dev/taskdesk/internal/intake"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
	"github.com/taskdesk-dev/taskdesk/internal/middleware/metrics"
)

type requestPageData struct {
	Form       domain.TaskDraft
	Files      []domain.PendingFile
	Rejections []domain.FileRejection
	Guest       bool
	MaxFiles    int
	MaxFileSize int64
}

// RequestGetHandler renders the request form. Guests see the contact step
// first; an authenticated client goes straight to the details.
func (h *Handler) RequestGetHandler(w http.ResponseWriter, r *http.Request) {
	ref := h.currentDraft(w, r)

	d, ok := h.Drafts.Get(ref.id)
	if !ok {
		http.Error(w, "draft expired", http.StatusInternalServerError)
		return
	}

	data := requestPageData{
		Form:       d.Form,
		Files:      d.Files.Files(),
		Rejections: d.Files.Rejections(),
		Guest:       sessionFor(r) == nil,
		MaxFiles:    h.Public.MaxAttachments,
		MaxFileSize: h.Public.MaxAttachmentSize,
	}
	h.renderTemplate(w, r, "request.html", data)
}

// ContactPostHandler stores the guest contact step.
func (h *Handler) ContactPostHandler(w http.ResponseWriter, r *http.Request) {
	ref := h.currentDraft(w, r)

	contact := domain.GuestContact{
		Organization: r.FormValue("organization"),
		Name:         r.FormValue("name"),
		Phone:        r.FormValue("phone"),
		Email:        r.FormValue("email"),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(contact); err != nil {
		h.redirectWithFlash(w, r, "/request", flashCookieError, "Please fill in all contact fields with a valid email.")
		return
	}

	h.Drafts.Mutate(ref.id, func(d *draft.Draft) {
		d.Form.Contact = &contact
	})
	http.Redirect(w, r, "/request", http.StatusSeeOther)
}

// multipartCandidate adapts an uploaded form file to the intake interface.
type multipartCandidate struct {
	header *multipart.FileHeader
}

func (m multipartCandidate) Name() string { return m.header.Filename }
func (m multipartCandidate) Size() int64  { return m.header.Size }
func (m multipartCandidate) Open() (io.ReadCloser, error) {
	return m.header.Open()
}

type intakeResponse struct {
	Files      []fileView             `json:"files"`
	Rejections []domain.FileRejection `json:"rejections"`
}

type fileView struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// FilesPostHandler is the single intake entry point. The page posts picker,
// drop and paste batches here identically; "source" is informational only.
func (h *Handler) FilesPostHandler(w http.ResponseWriter, r *http.Request) {
	ref := h.currentDraft(w, r)

	// 32 MiB is the in-memory threshold; parts beyond it spool to temp
	// files, so an oversized candidate still arrives and gets rejected by
	// the intake size check instead of killing the request.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart form", http.StatusBadRequest)
		return
	}

	var batch []intake.Candidate
	for _, header := range r.MultipartForm.File["files"] {
		batch = append(batch, multipartCandidate{header: header})
	}
	logger.Log.Debug("intake batch", "source", r.FormValue("source"), "count", len(batch))

	var resp intakeResponse
	ok := h.Drafts.Mutate(ref.id, func(d *draft.Draft) {
		d.Files.Accept(batch)
		resp = intakeViewOf(d)
	})
	if !ok {
		http.Error(w, "draft expired", http.StatusGone)
		return
	}

	writeJSON(w, resp)
}

// FileRemovePostHandler drops one accepted file by its position.
func (h *Handler) FileRemovePostHandler(w http.ResponseWriter, r *http.Request) {
	ref := h.currentDraft(w, r)

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}

	var resp intakeResponse
	var removeErr error
	ok := h.Drafts.Mutate(ref.id, func(d *draft.Draft) {
		removeErr = d.Files.Remove(index)
		resp = intakeViewOf(d)
	})
	if !ok {
		http.Error(w, "draft expired", http.StatusGone)
		return
	}
	if removeErr != nil {
		http.Error(w, removeErr.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, resp)
}

func intakeViewOf(d *draft.Draft) intakeResponse {
	resp := intakeResponse{Rejections: d.Files.Rejections()}
	for _, f := range d.Files.Files() {
		resp.Files = append(resp.Files, fileView{Name: f.Name, Size: f.SizeBytes})
	}
	return resp
}

// SubmitPostHandler sends the draft and its files to the backend as one
// multipart request, publishing progress under a fresh upload id.
func (h *Handler) SubmitPostHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)
	ref := h.currentDraft(w, r)

	var form domain.TaskDraft
	var files []domain.PendingFile
	ok := h.Drafts.Mutate(ref.id, func(d *draft.Draft) {
		d.Form.MainTopic = domain.Topic(r.FormValue("topic"))
		d.Form.SubTopic = r.FormValue("subtopic")
		d.Form.Priority = domain.Priority(r.FormValue("priority"))
		d.Form.Description = r.FormValue("description")
		form = d.Form
		files = d.Files.Files()
	})
	if !ok {
		http.Error(w, "draft expired", http.StatusGone)
		return
	}

	if session != nil {
		form.Contact = nil
	} else if form.Contact == nil {
		h.redirectWithFlash(w, r, "/request", flashCookieError, "Please fill in your contact details first.")
		return
	}

	// The page script mints the upload id up front so it can poll the
	// progress endpoint while this request is still in flight.
	uploadId := r.FormValue("uploadId")
	if uploadId == "" {
		uploadId = uuid.New().String()
	}
	h.Progress.Start(uploadId)

	report := func(pct int) { h.Progress.Set(uploadId, pct) }

	var id domain.TaskId
	var err error
	if session != nil {
		id, err = h.APIClient.CreateTask(session, form, files, report)
	} else {
		id, err = h.APIClient.CreateGuestTask(form, files, report)
	}
	if err != nil {
		h.Progress.Forget(uploadId)
		logger.Log.Error("task submission failed", "error", err)
		switch {
		case errors.Is(err, internal_errors.ErrPayloadTooLarge):
			h.redirectWithFlash(w, r, "/request", flashCookieError, "Attachments are too large for the server. Remove some files and try again.")
		default:
			h.redirectWithFlash(w, r, "/request", flashCookieError, "Could not submit the request. Please try again.")
		}
		return
	}

	var totalBytes int64
	for _, f := range files {
		totalBytes += f.SizeBytes
	}
	metrics.ObserveUploadBytes(totalBytes)

	h.Progress.Finish(uploadId)
	h.Drafts.Discard(ref.id)
	h.clearDraftCookie(w)

	logger.Log.Info("task submitted", "task_id", id, "files", len(files), "guest", session == nil)

	if session != nil {
		h.redirectWithFlash(w, r, "/tasks", flashCookieSuccess, "Request submitted.")
		return
	}
	h.redirectWithFlash(w, r, "/login", flashCookieSuccess, "Request submitted. We will contact you shortly.")
}

// ResetPostHandler discards the draft and its spooled files.
func (h *Handler) ResetPostHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(draftCookie); err == nil {
		h.Drafts.Discard(cookie.Value)
	}
	h.clearDraftCookie(w)
	http.Redirect(w, r, "/request", http.StatusSeeOther)
}

// ProgressGetHandler reports the latest percentage for a polled upload.
func (h *Handler) ProgressGetHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	pct, ok := h.Progress.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]int{"percent": pct})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("encoding json response", "error", err)
	}
}
