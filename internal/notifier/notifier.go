// Package notifier delivers the short confirmation messages raised by the
// habit store. Delivery is fire-and-forget: callers log failures and move on.
package notifier

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(string) error { return nil }

// Console prints each message as a styled line.
type Console struct {
	w     io.Writer
	style lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	return &Console{
		w: w,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true),
	}
}

func (c *Console) Notify(text string) error {
	_, err := fmt.Fprintln(c.w, c.style.Render("✓ "+text))
	return err
}

// Multi fans a message out to every notifier and returns the first error.
type Multi []Notifier

func (m Multi) Notify(text string) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(text); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder keeps every message it receives. The TUI drains it to show
// toasts, and tests use it to assert on notifications.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Drain returns and clears the recorded messages.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// ErrTrayNotRunning is returned by Tray when no tray app can be found.
var ErrTrayNotRunning = errors.New("streakly-tray is not running")
