package notify

import (
	"errors"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		30 * time.Second:                      "0m 30s",
		5*time.Minute + 1500*time.Millisecond: "5m 02s",
		2*time.Hour + 7*time.Minute:           "2h 07m",
	}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	n := NewNotifier(false)
	if n.IsEnabled() {
		t.Fatal("expected notifier disabled")
	}
	if err := n.SendImportFailed(errors.New("bad file")); err != nil {
		t.Fatalf("expected disabled notifier to no-op, got %v", err)
	}
	if err := n.SendStopwatchStopped("work", time.Minute); err != nil {
		t.Fatalf("expected disabled notifier to no-op, got %v", err)
	}
}
