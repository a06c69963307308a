package domain

// PendingFile is a candidate attachment accepted into a draft but not yet
// submitted. The spooled temp file at Path is owned exclusively by the draft
// until the file is removed or the draft is submitted or reset.
type PendingFile struct {
	Name        string
	SizeBytes   int64
	Path        string
	MimeType    string
	ImageWidth  *int
	ImageHeight *int
}

// FileRejection records one intake validation failure. Rejections are scoped to
// the most recent intake batch, never accumulated across a session.
type FileRejection struct {
	FileName string
	Reason   string
}

// GuestContact carries the contact fields a guest supplies inline instead of
// having an account.
type GuestContact struct {
	Organization string `validate:"required"`
	Name         string `validate:"required"`
	Phone        string `validate:"required"`
	Email        string `validate:"required,email"`
}

// TaskDraft is the form aggregate built up across the request flow and
// submitted as one multipart request.
type TaskDraft struct {
	MainTopic   Topic
	SubTopic    string
	Priority    Priority
	Description string
	Contact     *GuestContact // nil for authenticated submitters
}
