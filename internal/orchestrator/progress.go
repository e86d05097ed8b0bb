package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Send delivers a progress event, waiting for buffer space when the channel
// is full. Use it only when a subscriber is draining the channel.
func (pr *ProgressReporter) Send(event ProgressEvent) {
	pr.ch <- event
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ [%d] %s (pending)", event.Index, event.ID)
	case ProgressWorking:
		return fmt.Sprintf("  ● [%d] %s...", event.Index, event.ID)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ [%d] %s complete", event.Index, event.ID)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ [%d] %s failed: %s", event.Index, event.ID, event.Message)
	default:
		return fmt.Sprintf("  ? [%d] %s (unknown status)", event.Index, event.ID)
	}
}
