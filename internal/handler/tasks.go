package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"path"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

// taskView is the template-side shape of a task: description pre-rendered,
// priority mapped back to its display name.
type taskView struct {
	domain.Task
	PriorityName string
	Rendered     template.HTML
}

type tasksPageData struct {
	Tasks []taskView
}

func (h *Handler) TasksGetHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	tasks, err := h.APIClient.GetTasks(session)
	if err != nil {
		logger.Log.Error("fetching tasks", "error", err)
		h.renderTemplateWithError(w, r, "tasks.html", tasksPageData{}, "Internal error: backend unavailable.")
		return
	}

	data := tasksPageData{Tasks: make([]taskView, len(tasks))}
	for i, task := range tasks {
		data.Tasks[i] = taskView{
			Task:         task,
			PriorityName: domain.PriorityName(task.Priority),
			Rendered:     h.TextProcessor.RenderDescription(task.Description),
		}
	}

	h.renderTemplate(w, r, "tasks.html", data)
}

// DownloadGetHandler proxies one stored attachment to the browser as a
// download.
func (h *Handler) DownloadGetHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFor(r)

	wsPath := r.URL.Query().Get("path")
	if wsPath == "" {
		http.Error(w, "missing path", http.StatusBadRequest)
		return
	}

	blob, err := h.APIClient.DownloadFile(session, wsPath)
	if err != nil {
		logger.Log.Error("downloading attachment", "path", wsPath, "error", err)
		http.Error(w, "could not fetch file", http.StatusBadGateway)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = path.Base(wsPath)
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(blob)
}
