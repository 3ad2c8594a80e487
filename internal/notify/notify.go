// ABOUTME: User-facing notifications emitted by the session and directory stores
// ABOUTME: Provides printer, queue, log and fan-out notifiers for CLI and TUI

package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// String returns the string representation of a Level
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a toast-style message with a title
type Notification struct {
	Level   Level
	Title   string
	Message string
	Time    time.Time
}

// Notifier receives notifications
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to the Notifier interface
type Func func(Notification)

// Notify calls f(n)
func (f Func) Notify(n Notification) { f(n) }

// Error builds an error notification
func Error(title, message string) Notification {
	return Notification{Level: LevelError, Title: title, Message: message, Time: time.Now()}
}

// Success builds a success notification
func Success(title, message string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Message: message, Time: time.Now()}
}

// Info builds an informational notification
func Info(title, message string) Notification {
	return Notification{Level: LevelInfo, Title: title, Message: message, Time: time.Now()}
}

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to several notifiers
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}

// Log writes notifications to a structured logger
func Log(logger *slog.Logger) Notifier {
	return Func(func(n Notification) {
		level := slog.LevelInfo
		if n.Level == LevelError {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "Notification", "level", n.Level.String(), "title", n.Title, "message", n.Message)
	})
}

var (
	titleStyles = map[Level]lipgloss.Style{
		LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true),
		LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	}
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Printer writes one styled line per notification, for the CLI
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Notify implements Notifier
func (p *Printer) Notify(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := titleStyles[n.Level].Render(n.Title)
	if n.Message == "" {
		fmt.Fprintln(p.w, title)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", title, messageStyle.Render(n.Message))
}

// Queue buffers notifications until a view drains them
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Notify implements Notifier
func (q *Queue) Notify(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns and removes every buffered notification, oldest first
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of buffered notifications
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
