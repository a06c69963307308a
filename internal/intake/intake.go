// Package intake accumulates candidate attachments for a draft request and
// enforces the per-file and aggregate constraints before anything touches the
// network. All three intake sources (picker, drag-and-drop, clipboard paste)
// funnel into the same Accept operation; per-source divergence would be a bug.
package intake

import (
	"fmt"
	"io"
	"os"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
)

const (
	DefaultMaxFiles    = 10
	DefaultMaxFileSize = 100 << 20 // 100 MiB
)

// Candidate is a not-yet-validated file offered by the user. Open is called at
// most once, only after the candidate passes validation.
type Candidate interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// ValidateFile is the pure per-file size gate. It returns the rejection reason,
// or "" when the file is acceptable.
func ValidateFile(name string, sizeBytes, maxFileSize int64) string {
	if sizeBytes <= maxFileSize {
		return ""
	}
	return fmt.Sprintf("File %q is too large (%.2fMB). Maximum %dMB.",
		name, float64(sizeBytes)/(1<<20), maxFileSize>>20)
}

// Accumulator owns the accepted list and the most recent batch's rejections.
// It is owned exclusively by one draft; the draft store serializes access.
type Accumulator struct {
	spoolDir    string
	maxFiles    int
	maxFileSize int64
	files       []domain.PendingFile
	rejections  []domain.FileRejection
}

func New(spoolDir string, maxFiles int, maxFileSize int64) *Accumulator {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Accumulator{spoolDir: spoolDir, maxFiles: maxFiles, maxFileSize: maxFileSize}
}

// Accept runs one intake batch. Candidates are processed in order; once the
// accepted-count ceiling is hit one rejection is recorded and the rest of the
// batch is dropped. The rejection list is replaced with exactly this batch's
// rejections, so a clean batch clears earlier errors.
func (a *Accumulator) Accept(batch []Candidate) {
	var rejections []domain.FileRejection

	for _, c := range batch {
		if len(a.files) >= a.maxFiles {
			rejections = append(rejections, domain.FileRejection{
				FileName: c.Name(),
				Reason:   fmt.Sprintf("Maximum %d files allowed.", a.maxFiles),
			})
			break
		}

		if reason := ValidateFile(c.Name(), c.Size(), a.maxFileSize); reason != "" {
			rejections = append(rejections, domain.FileRejection{FileName: c.Name(), Reason: reason})
			continue
		}

		pending, err := a.spool(c)
		if err != nil {
			rejections = append(rejections, domain.FileRejection{
				FileName: c.Name(),
				Reason:   fmt.Sprintf("Could not store file %q. Please try again.", c.Name()),
			})
			continue
		}
		a.files = append(a.files, pending)
	}

	a.rejections = rejections
}

// spool copies the candidate into a temp file owned by the draft and probes
// its MIME type and, for images, dimensions.
func (a *Accumulator) spool(c Candidate) (domain.PendingFile, error) {
	src, err := c.Open()
	if err != nil {
		return domain.PendingFile{}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(a.spoolDir, "taskdesk-upload-*")
	if err != nil {
		return domain.PendingFile{}, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return domain.PendingFile{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return domain.PendingFile{}, err
	}

	pending := domain.PendingFile{
		Name:      c.Name(),
		SizeBytes: c.Size(),
		Path:      tmp.Name(),
		MimeType:  DetectMimeType(c.Name()),
	}
	pending.ImageWidth, pending.ImageHeight = probeImageDimensions(tmp.Name(), pending.MimeType)
	return pending, nil
}

// Remove deletes the accepted file at index. Files are addressed by position;
// the remainder keeps its relative order. The rejection list is untouched.
func (a *Accumulator) Remove(index int) error {
	if index < 0 || index >= len(a.files) {
		return fmt.Errorf("no accepted file at index %d", index)
	}
	os.Remove(a.files[index].Path)
	a.files = append(a.files[:index], a.files[index+1:]...)
	return nil
}

// Discard drops every accepted file and all intake state. Called on form reset
// and after successful submission.
func (a *Accumulator) Discard() {
	for _, f := range a.files {
		os.Remove(f.Path)
	}
	a.files = nil
	a.rejections = nil
}

func (a *Accumulator) Files() []domain.PendingFile {
	out := make([]domain.PendingFile, len(a.files))
	copy(out, a.files)
	return out
}

func (a *Accumulator) Rejections() []domain.FileRejection {
	out := make([]domain.FileRejection, len(a.rejections))
	copy(out, a.rejections)
	return out
}

// TotalSize is the byte count of every accepted file, used as the denominator
// for upload progress.
func (a *Accumulator) TotalSize() int64 {
	var total int64
	for _, f := range a.files {
		total += f.SizeBytes
	}
	return total
}
