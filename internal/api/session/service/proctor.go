package sessionService

import (
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/detector"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const personScoreThreshold = 0.7

// Classification is the per-tick verdict over one camera frame.
type Classification uint8

const (
	ClassificationNone Classification = iota
	ClassificationMultiplePersons
	ClassificationPhoneAndBook
	ClassificationPhone
	ClassificationBook
)

// Violation maps a classification to its violation kind; ClassificationNone
// maps to the empty kind.
func (c Classification) Violation() entity.ViolationKind {
	switch c {
	case ClassificationMultiplePersons:
		return entity.ViolationMultiplePersons
	case ClassificationPhoneAndBook:
		return entity.ViolationPhoneAndBook
	case ClassificationPhone:
		return entity.ViolationPhoneDetected
	case ClassificationBook:
		return entity.ViolationBookDetected
	default:
		return ""
	}
}

// Classify turns raw detector predictions into a single verdict. Persons only
// count above the confidence threshold; phone and book count at any score.
// Multiple persons outranks phone+book, which outranks either object alone.
func Classify(predictions []detector.Prediction) Classification {
	personCount := 0
	phoneDetected := false
	bookDetected := false

	for _, pred := range predictions {
		switch pred.Class {
		case "person":
			if pred.Score > personScoreThreshold {
				personCount++
			}
		case "cell phone":
			phoneDetected = true
		case "book":
			bookDetected = true
		}
	}

	switch {
	case personCount > 1:
		return ClassificationMultiplePersons
	case phoneDetected && bookDetected:
		return ClassificationPhoneAndBook
	case phoneDetected:
		return ClassificationPhone
	case bookDetected:
		return ClassificationBook
	default:
		return ClassificationNone
	}
}

// ProctorMonitor classifies the most recent camera frame once per tick. Frame
// submission never blocks: only the latest frame is kept, older ones are
// replaced. A failed detection call is reported and the loop continues on the
// next tick.
type ProctorMonitor struct {
	log      *logrus.Logger
	detector detector.IDetector
	tick     time.Duration

	mu     sync.Mutex
	latest []byte

	onResult func(c Classification, frame []byte)
	onError  func(err error)

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewProctorMonitor(
	log *logrus.Logger,
	det detector.IDetector,
	tick time.Duration,
	onResult func(c Classification, frame []byte),
	onError func(err error),
) *ProctorMonitor {
	if tick <= 0 {
		tick = time.Second
	}
	return &ProctorMonitor{
		log:      log,
		detector: det,
		tick:     tick,
		onResult: onResult,
		onError:  onError,
		stopCh:   make(chan struct{}),
	}
}

// SubmitFrame stores the frame for the next tick, replacing any frame that
// was not yet processed.
func (m *ProctorMonitor) SubmitFrame(frame []byte) {
	m.mu.Lock()
	m.latest = frame
	m.mu.Unlock()
}

func (m *ProctorMonitor) Start() {
	go m.loop()
}

// Stop halts the tick loop. Idempotent.
func (m *ProctorMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

func (m *ProctorMonitor) loop() {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			frame := m.latest
			m.latest = nil
			m.mu.Unlock()

			if frame == nil {
				continue
			}

			predictions, err := m.detector.Detect(frame)
			if err != nil {
				m.log.WithField("error", err.Error()).Warn("Detection tick failed, continuing")
				if m.onError != nil {
					m.onError(err)
				}
				continue
			}

			m.onResult(Classify(predictions), frame)
		}
	}
}
