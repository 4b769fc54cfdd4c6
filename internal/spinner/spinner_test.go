package spinner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewSpinner(t *testing.T) {
	var buf bytes.Buffer
	spinner := New(context.Background(), &buf, "Summarizing themes")

	if spinner == nil {
		t.Fatal("New() returned nil")
	}
	if spinner.message != "Summarizing themes" {
		t.Errorf("Expected message %q, got %q", "Summarizing themes", spinner.message)
	}
	if len(spinner.frames) != 6 {
		t.Errorf("Expected 6 frames, got %d", len(spinner.frames))
	}
	if spinner.IsActive() {
		t.Error("Spinner should not be active initially")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	spinner := New(context.Background(), &buf, "Summarizing themes")

	spinner.Start()
	if !spinner.IsActive() {
		t.Error("Spinner should be active after Start()")
	}

	// a second Start is a no-op
	spinner.Start()

	time.Sleep(250 * time.Millisecond)
	spinner.Stop()

	if spinner.IsActive() {
		t.Error("Spinner should not be active after Stop()")
	}

	output := buf.String()
	if !strings.Contains(output, "Summarizing themes") {
		t.Error("Expected message to appear in output")
	}
	// bytes.Buffer is not a terminal, so the line is only returned to column 0
	if !strings.HasSuffix(output, "\r") {
		t.Error("Expected output to end with carriage return")
	}

	// a second Stop is a no-op
	spinner.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	spinner := New(context.Background(), &buf, "Testing...")

	spinner.Stop()

	if spinner.IsActive() {
		t.Error("Spinner should not be active after Stop() without Start()")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestSpinnerLine(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		done, total int
		frame       int
		want        string
	}{
		{
			name:    "message only",
			message: "Loading corpus",
			frame:   0,
			want:    "\r◜ Loading corpus",
		},
		{
			name:    "with progress",
			message: "Summarizing themes",
			done:    2,
			total:   5,
			frame:   7,
			want:    "\r◠ Summarizing themes (2/5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			spinner := New(context.Background(), &buf, "initial")
			spinner.UpdateMessage(tt.message)
			spinner.Progress(tt.done, tt.total)

			if got := spinner.line(tt.frame); got != tt.want {
				t.Errorf("line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	spinner := New(ctx, &buf, "Testing...")

	spinner.Start()
	cancel()

	// Stop must not block once the goroutine has exited on its own
	done := make(chan struct{})
	go func() {
		spinner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked after context cancellation")
	}
}

func TestEnabled(t *testing.T) {
	var buf bytes.Buffer
	if Enabled(&buf) {
		t.Error("Enabled() = true for a buffer")
	}
}
