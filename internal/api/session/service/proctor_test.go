package sessionService

import (
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/detector"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		predictions []detector.Prediction
		want        Classification
	}{
		{
			name: "two confident persons",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "person", Score: 0.8},
			},
			want: ClassificationMultiplePersons,
		},
		{
			name: "second person below confidence threshold",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "person", Score: 0.5},
			},
			want: ClassificationNone,
		},
		{
			name: "phone and book together",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "cell phone", Score: 0.4},
				{Class: "book", Score: 0.3},
			},
			want: ClassificationPhoneAndBook,
		},
		{
			name: "phone alone counts at any score",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "cell phone", Score: 0.1},
			},
			want: ClassificationPhone,
		},
		{
			name: "book alone",
			predictions: []detector.Prediction{
				{Class: "book", Score: 0.2},
			},
			want: ClassificationBook,
		},
		{
			name: "multiple persons outranks objects",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "person", Score: 0.75},
				{Class: "cell phone", Score: 0.9},
				{Class: "book", Score: 0.9},
			},
			want: ClassificationMultiplePersons,
		},
		{
			name: "irrelevant classes ignored",
			predictions: []detector.Prediction{
				{Class: "person", Score: 0.9},
				{Class: "laptop", Score: 0.95},
				{Class: "cup", Score: 0.9},
			},
			want: ClassificationNone,
		},
		{
			name:        "empty frame",
			predictions: nil,
			want:        ClassificationNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.predictions); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassificationViolation(t *testing.T) {
	pairs := map[Classification]entity.ViolationKind{
		ClassificationMultiplePersons: entity.ViolationMultiplePersons,
		ClassificationPhoneAndBook:    entity.ViolationPhoneAndBook,
		ClassificationPhone:           entity.ViolationPhoneDetected,
		ClassificationBook:            entity.ViolationBookDetected,
		ClassificationNone:            "",
	}
	for c, want := range pairs {
		if got := c.Violation(); got != want {
			t.Errorf("Classification %v maps to %q, want %q", c, got, want)
		}
	}
}

type fakeDetector struct {
	mu          sync.Mutex
	predictions []detector.Prediction
	err         error
	calls       int
}

func (d *fakeDetector) Load() error    { return nil }
func (d *fakeDetector) IsLoaded() bool { return true }
func (d *fakeDetector) Close() error   { return nil }

func (d *fakeDetector) Detect(frame []byte) ([]detector.Prediction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.predictions, nil
}

func (d *fakeDetector) set(predictions []detector.Prediction, err error) {
	d.mu.Lock()
	d.predictions = predictions
	d.err = err
	d.mu.Unlock()
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestProctorMonitor_ClassifiesLatestFrame(t *testing.T) {
	det := &fakeDetector{}
	det.set([]detector.Prediction{{Class: "cell phone", Score: 0.5}}, nil)

	results := make(chan Classification, 16)
	monitor := NewProctorMonitor(testLogger(), det, 5*time.Millisecond,
		func(c Classification, _ []byte) { results <- c },
		nil,
	)
	monitor.Start()
	defer monitor.Stop()

	monitor.SubmitFrame([]byte("frame-1"))

	select {
	case got := <-results:
		if got != ClassificationPhone {
			t.Errorf("expected phone classification, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor never reported a result")
	}
}

func TestProctorMonitor_ContinuesAfterDetectError(t *testing.T) {
	det := &fakeDetector{}
	det.set(nil, errors.New("inference backend unavailable"))

	results := make(chan Classification, 16)
	errs := make(chan error, 16)
	monitor := NewProctorMonitor(testLogger(), det, 5*time.Millisecond,
		func(c Classification, _ []byte) { results <- c },
		func(err error) { errs <- err },
	)
	monitor.Start()
	defer monitor.Stop()

	monitor.SubmitFrame([]byte("bad-frame"))

	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Fatal("monitor never reported the detect error")
	}

	// The loop survives the failure and processes the next frame.
	det.set([]detector.Prediction{{Class: "book", Score: 0.4}}, nil)
	monitor.SubmitFrame([]byte("good-frame"))

	select {
	case got := <-results:
		if got != ClassificationBook {
			t.Errorf("expected book classification, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor did not recover after detect error")
	}
}

func TestProctorMonitor_StopIsIdempotent(t *testing.T) {
	det := &fakeDetector{}
	monitor := NewProctorMonitor(testLogger(), det, 5*time.Millisecond,
		func(Classification, []byte) {}, nil)
	monitor.Start()

	monitor.Stop()
	monitor.Stop()

	// No frames processed after stop.
	time.Sleep(20 * time.Millisecond)
	det.mu.Lock()
	callsAtStop := det.calls
	det.mu.Unlock()

	monitor.SubmitFrame([]byte("late-frame"))
	time.Sleep(30 * time.Millisecond)

	det.mu.Lock()
	defer det.mu.Unlock()
	if det.calls != callsAtStop {
		t.Errorf("detector called after Stop: %d -> %d", callsAtStop, det.calls)
	}
}
