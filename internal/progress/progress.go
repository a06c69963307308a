// Package progress reports upload completion as a monotonically non-decreasing
// integer percentage. A Reader counts the bytes streamed into a multipart body
// and a Registry exposes the latest percentage per upload so the page can poll
// it while the submission is in flight.
package progress

import (
	"io"
	"math"
	"sync"
)

// Percent converts a byte count into a rounded 0-100 percentage. A zero total
// (a submission with no files) is immediately complete.
func Percent(sent, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(sent) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Counter accumulates bytes sent toward one total and reports each increase
// in percentage. One upload streams several file parts, so the counter is
// shared across every wrapped reader; reports only ever rise.
type Counter struct {
	mu     sync.Mutex
	total  int64
	sent   int64
	last   int
	report func(percent int)
}

func NewCounter(total int64, report func(percent int)) *Counter {
	return &Counter{total: total, report: report}
}

func (c *Counter) add(n int) {
	c.mu.Lock()
	c.sent += int64(n)
	pct := Percent(c.sent, c.total)
	fire := pct > c.last
	if fire {
		c.last = pct
	}
	c.mu.Unlock()

	if fire && c.report != nil {
		c.report(pct)
	}
}

// Wrap returns a reader that counts everything read from r against the total.
func (c *Counter) Wrap(r io.Reader) io.Reader {
	return &countingReader{r: r, counter: c}
}

// NewReader is the single-stream convenience: the whole payload goes through
// one reader.
func NewReader(r io.Reader, total int64, report func(percent int)) io.Reader {
	return NewCounter(total, report).Wrap(r)
}

type countingReader struct {
	r       io.Reader
	counter *Counter
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.counter.add(n)
	}
	return n, err
}

// Registry holds the latest percentage per upload id.
type Registry struct {
	mu      sync.RWMutex
	uploads map[string]int
}

func NewRegistry() *Registry {
	return &Registry{uploads: make(map[string]int)}
}

// Start registers an upload at 0%.
func (reg *Registry) Start(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.uploads[id] = 0
}

// Set records a new percentage. Regressions are ignored so pollers never see
// the number go down.
func (reg *Registry) Set(id string, percent int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if current, ok := reg.uploads[id]; !ok || percent > current {
		reg.uploads[id] = percent
	}
}

// Finish pins the upload at exactly 100.
func (reg *Registry) Finish(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.uploads[id] = 100
}

// Get returns the latest percentage and whether the upload is known.
func (reg *Registry) Get(id string) (int, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	pct, ok := reg.uploads[id]
	return pct, ok
}

// Forget drops a finished upload once the page stops polling.
func (reg *Registry) Forget(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.uploads, id)
}
