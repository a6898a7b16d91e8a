package detector

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDetectWithoutLoadFails(t *testing.T) {
	d := New(testLogger())

	if d.IsLoaded() {
		t.Fatal("new detector must not report loaded")
	}
	if _, err := d.Detect([]byte{0xff, 0xd8, 0xff}); err == nil {
		t.Fatal("Detect without a connection should fail")
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	d := New(testLogger())

	if err := d.Close(); err != nil {
		t.Fatalf("closing an unconnected detector: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("repeated close: %v", err)
	}
	if d.IsLoaded() {
		t.Error("detector must not report loaded after Close")
	}
}

func TestLoadRequiresConfiguredURL(t *testing.T) {
	t.Setenv("DETECTOR_WS_URL", "")

	d := New(testLogger())
	if err := d.Load(); err == nil {
		t.Fatal("Load without DETECTOR_WS_URL should fail")
	}
}
