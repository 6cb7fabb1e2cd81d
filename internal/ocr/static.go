package ocr

import (
	"context"
	"image"
	"sync"
)

// Static is an Engine returning canned text, for tests and dry runs. Each
// call pops the next queued response; the last one repeats once the queue
// is exhausted. A configured error is returned instead of text.
type Static struct {
	mu        sync.Mutex
	responses []string
	// Err, when set, is returned by every Recognize call.
	Err error
	// Calls counts Recognize invocations.
	Calls int
}

// NewStatic builds a Static engine that replies with the given responses
// in order.
func NewStatic(responses ...string) *Static {
	return &Static{responses: responses}
}

// Recognize returns the next canned response.
func (s *Static) Recognize(ctx context.Context, _ image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	text := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return text, nil
}
