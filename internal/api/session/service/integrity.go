package sessionService

import (
	"AIcruiter/internal/entity"
	"fmt"
	"sync"
)

const violationThreshold = 3

// IntegrityTracker keeps per-kind violation counts and decides when a count
// crosses its threshold. Counted kinds (tab switch, phone, book) terminate at
// three occurrences; multiple persons and phone+book terminate immediately.
type IntegrityTracker struct {
	mu     sync.Mutex
	counts map[entity.ViolationKind]int
}

func NewIntegrityTracker() *IntegrityTracker {
	return &IntegrityTracker{
		counts: make(map[entity.ViolationKind]int),
	}
}

// Record increments the count for kind and reports whether the session must
// terminate, with the human-readable reason when it must.
func (t *IntegrityTracker) Record(kind entity.ViolationKind) (count int, terminal bool, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[kind]++
	count = t.counts[kind]

	switch kind {
	case entity.ViolationMultiplePersons:
		return count, true, "Interview stopped: Multiple persons detected."
	case entity.ViolationPhoneAndBook:
		return count, true, "Interview stopped: Mobile phone and book detected together."
	case entity.ViolationTabSwitch:
		if count >= violationThreshold {
			return count, true, fmt.Sprintf("Interview stopped: Tab switching detected %d times.", violationThreshold)
		}
	case entity.ViolationPhoneDetected:
		if count >= violationThreshold {
			return count, true, fmt.Sprintf("Interview stopped: Mobile phone detected %d times.", violationThreshold)
		}
	case entity.ViolationBookDetected:
		if count >= violationThreshold {
			return count, true, fmt.Sprintf("Interview stopped: Book detected %d times.", violationThreshold)
		}
	}

	return count, false, ""
}

// WarningMessage is the overlay text shown to the candidate for a non-terminal
// violation.
func (t *IntegrityTracker) WarningMessage(kind entity.ViolationKind, count int) string {
	switch kind {
	case entity.ViolationTabSwitch:
		return fmt.Sprintf("Tab switching detected! Warning %d/%d", count, violationThreshold)
	case entity.ViolationPhoneDetected:
		return fmt.Sprintf("Mobile phone detected! Please remove it from view. Warning %d/%d", count, violationThreshold)
	case entity.ViolationBookDetected:
		return fmt.Sprintf("Book detected! Please remove it from view. Warning %d/%d", count, violationThreshold)
	case entity.ViolationMultiplePersons:
		return "Multiple persons detected! Interview will be stopped."
	case entity.ViolationPhoneAndBook:
		return "Multiple objects (mobile phone and book) detected! Interview will be stopped."
	default:
		return ""
	}
}

// Counts returns a copy of the violation counts.
func (t *IntegrityTracker) Counts() map[entity.ViolationKind]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[entity.ViolationKind]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}
