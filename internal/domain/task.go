package domain

type TaskId = int64

type TaskFile struct {
	Name   string `json:"name"`
	WsPath string `json:"wsPath"`
}

type Task struct {
	Id          TaskId     `json:"id"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority"`
	Status      string     `json:"status"`
	AuthorName  string     `json:"author_name"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Files       []TaskFile `json:"files"`
}

// Topic is the structured main-topic category of a request.
type Topic string

const (
	TopicBas     Topic = "bas"
	TopicTech    Topic = "tech"
	TopicGeneral Topic = "general"
)

// Label returns the human-readable form sent to the backend and shown in tables.
func (t Topic) Label() string {
	switch t {
	case TopicBas:
		return "BAS / 1C"
	case TopicTech:
		return "Technical question"
	case TopicGeneral:
		return "General / Other"
	}
	return string(t)
}

// Priority is the ordinal form of the low/medium/high choice. The backend stores
// the ordinal, the form works with the names.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Ordinal() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 5
	case PriorityHigh:
		return 10
	}
	return 1
}

// PriorityName maps a stored ordinal back to its display name.
func PriorityName(ordinal int) string {
	switch {
	case ordinal >= 10:
		return "high"
	case ordinal >= 5:
		return "medium"
	default:
		return "low"
	}
}
