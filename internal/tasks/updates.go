package tasks

import "fmt"

// ProgressUpdate represents a progress event during a batch operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Completed items so far
	Total   int    // Items in the batch
	Message string // Human-readable message for display
	Err     error  // Set when the item failed
}

// Operation phase enumeration
type Phase int

const (
	Queue Phase = iota
	Summarize
	Upload
	Done
)

func (p Phase) String() string {
	switch p {
	case Queue:
		return "queue"
	case Summarize:
		return "summarize"
	case Upload:
		return "upload"
	case Done:
		return "done"
	default:
		return ""
	}
}

func queuedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Queue,
		Total:   total,
		Message: fmt.Sprintf("Queued %d recordings", total),
	}
}

func itemUpdate(phase Phase, step, total int, seq int, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] Recording %d done", step, total, seq)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] Recording %d failed: %v", step, total, seq, err)
	}
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: msg, Err: err}
}

func doneUpdate(total, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Finished %d recordings (%d failed)", total, failed),
	}
}
