package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerShowsStages(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Reading house.json...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stage("Extracting styles from %s...", "house.json")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	for _, want := range []string{"Reading house.json...", "Extracting styles from house.json..."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing stage %q:\n%q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Stop should clear the spinner line")
	}
	if s.Cancelled() {
		t.Error("Stop is not a cancellation of the command")
	}
}

func TestSpinnerCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Fetching prior template \"house\" from the library...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("cancelling the command should be reported")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Saving template as \"house\"...")

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
	if buf.Len() != 0 {
		t.Errorf("unstarted spinner wrote %q", buf.String())
	}
}

func TestNilSpinner(t *testing.T) {
	var s *Spinner
	s.Start()
	s.Stage("Extracting styles from %s...", "house.json")
	s.Stop()
	if s.Cancelled() {
		t.Error("nil spinner cannot be cancelled")
	}
}
