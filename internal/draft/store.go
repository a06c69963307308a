// Package draft holds the in-flight request form state between page loads:
// the chosen topic fields, the guest contact step, and the accumulating
// attachment list. Each draft is owned by one browser via a cookie-carried id;
// abandoned drafts are swept so their spooled files do not pile up.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/intake"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

// Draft is one user's request form in progress.
type Draft struct {
	Id      string
	Form    domain.TaskDraft
	Files   *intake.Accumulator
	touched time.Time
}

type Store struct {
	mu          sync.Mutex
	drafts      map[string]*Draft
	spoolDir    string
	maxFiles    int
	maxFileSize int64
	ttl         time.Duration
}

func NewStore(spoolDir string, maxFiles int, maxFileSize int64, ttl time.Duration) *Store {
	return &Store{
		drafts:      make(map[string]*Draft),
		spoolDir:    spoolDir,
		maxFiles:    maxFiles,
		maxFileSize: maxFileSize,
		ttl:         ttl,
	}
}

// Create starts a fresh draft and returns it.
func (s *Store) Create() *Draft {
	d := &Draft{
		Id:      uuid.New().String(),
		Files:   intake.New(s.spoolDir, s.maxFiles, s.maxFileSize),
		touched: time.Now(),
	}
	d.Form.MainTopic = domain.TopicBas
	d.Form.Priority = domain.PriorityLow

	s.mu.Lock()
	s.drafts[d.Id] = d
	s.mu.Unlock()
	return d
}

// Get returns the draft with the given id, refreshing its TTL.
func (s *Store) Get(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if ok {
		d.touched = time.Now()
	}
	return d, ok
}

// Mutate runs fn against the draft under the store lock. All intake and form
// mutations go through here so the single-owner invariant holds even when a
// browser fires overlapping requests.
func (s *Store) Mutate(id string, fn func(*Draft)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return false
	}
	d.touched = time.Now()
	fn(d)
	return true
}

// Discard drops the draft and every file it spooled.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	d, ok := s.drafts[id]
	delete(s.drafts, id)
	s.mu.Unlock()

	if ok {
		d.Files.Discard()
	}
}

// StartSweeper periodically drops drafts idle longer than the TTL.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-ctx.Done():
				logger.Log.Info("draft sweeper shutting down")
				return
			}
		}
	}()
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Draft
	for id, d := range s.drafts {
		if d.touched.Before(cutoff) {
			expired = append(expired, d)
			delete(s.drafts, id)
		}
	}
	s.mu.Unlock()

	for _, d := range expired {
		d.Files.Discard()
	}
	if len(expired) > 0 {
		logger.Log.Info("swept abandoned drafts", "count", len(expired))
	}
}
