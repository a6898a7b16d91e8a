package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateFrame(frame []byte) error
}

type utils struct {
	maxFrameSize int
}

func New() IUtils {
	return &utils{
		maxFrameSize: 2 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// ValidateFrame rejects camera frames that are not JPEG or exceed the size
// limit before they reach the detection pipeline.
func (u *utils) ValidateFrame(frame []byte) error {
	if len(frame) == 0 {
		return errors.New("empty frame")
	}

	if len(frame) > u.maxFrameSize {
		return errors.New("frame size exceeds limit")
	}

	if !bytes.HasPrefix(frame, jpegMagic) {
		return errors.New("frame is not a JPEG image")
	}

	return nil
}
