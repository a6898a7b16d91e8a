package sessionService

import (
	"AIcruiter/internal/entity"
	"strings"
	"testing"
)

func TestIntegrityTracker_CountedKindsTerminateAtThree(t *testing.T) {
	kinds := []struct {
		kind   entity.ViolationKind
		reason string
	}{
		{entity.ViolationTabSwitch, "Interview stopped: Tab switching detected 3 times."},
		{entity.ViolationPhoneDetected, "Interview stopped: Mobile phone detected 3 times."},
		{entity.ViolationBookDetected, "Interview stopped: Book detected 3 times."},
	}

	for _, tc := range kinds {
		t.Run(string(tc.kind), func(t *testing.T) {
			tracker := NewIntegrityTracker()

			for i := 1; i <= 2; i++ {
				count, terminal, _ := tracker.Record(tc.kind)
				if count != i {
					t.Errorf("expected count %d, got %d", i, count)
				}
				if terminal {
					t.Errorf("occurrence %d should not terminate", i)
				}
			}

			count, terminal, reason := tracker.Record(tc.kind)
			if count != 3 {
				t.Errorf("expected count 3, got %d", count)
			}
			if !terminal {
				t.Fatal("third occurrence should terminate")
			}
			if reason != tc.reason {
				t.Errorf("expected reason %q, got %q", tc.reason, reason)
			}
		})
	}
}

func TestIntegrityTracker_ImmediateKindsTerminateAtOne(t *testing.T) {
	kinds := []struct {
		kind   entity.ViolationKind
		reason string
	}{
		{entity.ViolationMultiplePersons, "Interview stopped: Multiple persons detected."},
		{entity.ViolationPhoneAndBook, "Interview stopped: Mobile phone and book detected together."},
	}

	for _, tc := range kinds {
		t.Run(string(tc.kind), func(t *testing.T) {
			tracker := NewIntegrityTracker()

			count, terminal, reason := tracker.Record(tc.kind)
			if count != 1 {
				t.Errorf("expected count 1, got %d", count)
			}
			if !terminal {
				t.Fatal("first occurrence should terminate")
			}
			if reason != tc.reason {
				t.Errorf("expected reason %q, got %q", tc.reason, reason)
			}
		})
	}
}

func TestIntegrityTracker_KindsCountIndependently(t *testing.T) {
	tracker := NewIntegrityTracker()

	tracker.Record(entity.ViolationTabSwitch)
	tracker.Record(entity.ViolationTabSwitch)
	tracker.Record(entity.ViolationPhoneDetected)

	counts := tracker.Counts()
	if counts[entity.ViolationTabSwitch] != 2 {
		t.Errorf("expected 2 tab switches, got %d", counts[entity.ViolationTabSwitch])
	}
	if counts[entity.ViolationPhoneDetected] != 1 {
		t.Errorf("expected 1 phone detection, got %d", counts[entity.ViolationPhoneDetected])
	}

	// Counts returns a copy, not the live map.
	counts[entity.ViolationTabSwitch] = 99
	if got := tracker.Counts()[entity.ViolationTabSwitch]; got != 2 {
		t.Errorf("mutating the returned map leaked into the tracker: %d", got)
	}
}

func TestIntegrityTracker_WarningMessages(t *testing.T) {
	tracker := NewIntegrityTracker()

	msg := tracker.WarningMessage(entity.ViolationTabSwitch, 2)
	if !strings.Contains(msg, "2/3") {
		t.Errorf("expected warning to carry 2/3 progress, got %q", msg)
	}

	msg = tracker.WarningMessage(entity.ViolationPhoneDetected, 1)
	if !strings.Contains(msg, "Mobile phone detected") {
		t.Errorf("unexpected phone warning: %q", msg)
	}

	if msg := tracker.WarningMessage("bogus", 1); msg != "" {
		t.Errorf("expected empty warning for unknown kind, got %q", msg)
	}
}
