package redaction

import (
	"io"
	"sync"
)

// Writer wraps an io.Writer and redacts all data before writing.
// Thread-safe: can be used concurrently by multiple goroutines.
type Writer struct {
	underlying io.Writer
	redactor   *Redactor
	mu         sync.Mutex
}

// NewWriter creates a redacting writer. A nil redactor passes data through.
func NewWriter(w io.Writer, r *Redactor) *Writer {
	return &Writer{
		underlying: w,
		redactor:   r,
	}
}

// Write implements io.Writer, redacting data before passing it on.
func (w *Writer) Write(p []byte) (n int, err error) {
	data := p
	if w.redactor != nil {
		data = []byte(w.redactor.ScrubString(string(p)))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.underlying.Write(data); err != nil {
		return 0, err
	}
	// io.Writer callers expect len(p) even when redaction changed the length
	return len(p), nil
}
