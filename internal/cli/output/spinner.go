package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a message on w while a long operation runs.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a stopped spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"|", "/", "-", "\\"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start starts the animation.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Success stops the spinner and prints message as done.
func (s *Spinner) Success(message string) {
	s.finish("ok", message)
}

// Fail stops the spinner and prints message as failed.
func (s *Spinner) Fail(message string) {
	s.finish("failed", message)
}

// Stop stops the spinner and clears its line. Only the first of Stop,
// Success and Fail has an effect.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Fprint(s.w, "\r\033[K")
	})
}

func (s *Spinner) finish(status, message string) {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Fprintf(s.w, "\r\033[K%s: %s\n", status, message)
	})
}
