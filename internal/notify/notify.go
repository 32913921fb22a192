package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
}

// NewNotifier creates a notifier. Notifications are skipped when disabled or
// when notify-send is not installed.
func NewNotifier(enabled bool) *Notifier {
	if _, err := exec.LookPath("notify-send"); err != nil {
		enabled = false
	}
	return &Notifier{
		enabled: enabled,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	// Add urgency
	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Add timeout (in milliseconds)
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	// Add icon if specified
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	// Add app name
	args = append(args, "-a", "timelog")

	// Add title and body
	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	// Execute notify-send
	cmd := exec.Command("notify-send", args...)
	return cmd.Run()
}

// SendSimple sends a simple notification with title and body
func (n *Notifier) SendSimple(title, body string) error {
	return n.Send(Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 5 * time.Second,
	})
}

// SendStopwatchStopped reports the time committed by the stopwatch
func (n *Notifier) SendStopwatchStopped(description string, d time.Duration) error {
	return n.Send(Notification{
		Title:   "Stopwatch stopped",
		Body:    fmt.Sprintf("%s: %s logged", description, formatDuration(d)),
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "alarm-symbolic",
	})
}

// SendTimerStopped reports the time committed by an entry timer
func (n *Notifier) SendTimerStopped(description string, total time.Duration) error {
	return n.Send(Notification{
		Title:   "Timer stopped",
		Body:    fmt.Sprintf("%s is now %s", description, formatDuration(total)),
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "appointment-soon-symbolic",
	})
}

// SendImportResult reports what a backup import did
func (n *Notifier) SendImportResult(added, skipped int) error {
	return n.Send(Notification{
		Title:   "Import complete",
		Body:    fmt.Sprintf("Imported %d entries (%d duplicates skipped)", added, skipped),
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "document-open-symbolic",
	})
}

// SendImportFailed reports a rejected backup
func (n *Notifier) SendImportFailed(err error) error {
	return n.Send(Notification{
		Title:   "Import failed",
		Body:    err.Error(),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}
