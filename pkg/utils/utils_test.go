package utils

import (
	"bytes"
	"testing"
	"time"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("NewULIDFromTimestamp failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("expected 26-char ULID, got %q (%d chars)", id, len(id))
	}

	other, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("NewULIDFromTimestamp failed: %v", err)
	}
	if id == other {
		t.Error("consecutive ULIDs must differ")
	}
}

func TestValidateFrame(t *testing.T) {
	u := New()

	jpegFrame := append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x10}, 64)...)
	if err := u.ValidateFrame(jpegFrame); err != nil {
		t.Errorf("valid JPEG frame rejected: %v", err)
	}

	if err := u.ValidateFrame(nil); err == nil {
		t.Error("empty frame should be rejected")
	}

	if err := u.ValidateFrame([]byte("PNG-ish data")); err == nil {
		t.Error("non-JPEG frame should be rejected")
	}

	huge := append([]byte{0xFF, 0xD8, 0xFF}, make([]byte, 2*1024*1024)...)
	if err := u.ValidateFrame(huge); err == nil {
		t.Error("oversized frame should be rejected")
	}
}
